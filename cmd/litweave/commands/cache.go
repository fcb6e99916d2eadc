package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/litweave/internal/cache"
)

// CacheCmd groups fragment cache maintenance subcommands.
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Show fragment cache statistics"`
	Clear CacheClearCmd `cmd:"" help:"Remove all cached fragments"`
}

// CacheStatsCmd prints entry count, size, and age of the cache.
type CacheStatsCmd struct{}

func (CacheStatsCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("entries: %d\n", stats.Entries)
	fmt.Printf("bytes:   %d\n", stats.Bytes)
	if !stats.Oldest.IsZero() {
		fmt.Printf("oldest:  %s\n", stats.Oldest.UTC().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// CacheClearCmd drops every cached fragment. Always safe: the cache is a
// pure performance optimization.
type CacheClearCmd struct{}

func (CacheClearCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("Fragment cache cleared")
	return nil
}

func openStore(root *CLI) (cache.Store, error) {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cache.NewSQLiteStore(cfg.Cache.Path)
}
