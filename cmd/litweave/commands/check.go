package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/litweave/internal/config"
	"git.home.luguber.info/inful/litweave/internal/document"
	"git.home.luguber.info/inful/litweave/internal/linkcheck"
	"git.home.luguber.info/inful/litweave/internal/metrics"
)

// CheckCmd implements the 'check' command: parse, verify include targets,
// render in memory, and verify links. Nothing is written to disk.
type CheckCmd struct {
	Source string `arg:"" help:"Literate document to check."`
	Links  bool   `default:"true" negatable:"" help:"Render in memory and verify local links."`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	doc, err := document.ParseFile(c.Source)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d blocks (%d chunks)\n", c.Source, len(doc.Blocks), len(doc.Chunks()))
	for _, b := range doc.Chunks() {
		switch b.Kind {
		case document.BlockInclude:
			fmt.Printf("  chunk %d: include %s (line %d)\n", b.Ordinal, b.IncludePath, b.Line)
		default:
			fmt.Printf("  chunk %d: %s eval=%v (line %d)\n", b.Ordinal, langOrPlain(b.Lang), b.Eval, b.Line)
		}
	}

	problems := 0
	baseDir := filepath.Dir(c.Source)
	for _, b := range doc.Chunks() {
		if b.Kind != document.BlockInclude {
			continue
		}
		target := filepath.Join(baseDir, filepath.FromSlash(b.IncludePath))
		if _, err := os.Stat(target); err != nil {
			fmt.Printf("  MISSING include: %s (chunk %d)\n", b.IncludePath, b.Ordinal)
			problems++
		}
	}

	if c.Links {
		// Render without executing chunks or touching the cache.
		renderer, _, err := buildRenderer(noEvalConfig(cfg), c.Source, true, metrics.NoopRecorder{})
		if err != nil {
			return err
		}
		rendered, err := renderer.Render(context.Background(), stripEval(doc))
		if err != nil {
			return err
		}
		links, err := linkcheck.ExtractLinks(bytes.NewReader(rendered.HTML()))
		if err != nil {
			return err
		}
		for _, p := range linkcheck.VerifyLocal(links, baseDir) {
			fmt.Printf("  BROKEN link: %s\n", p)
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("check found %d problem(s)", problems)
	}
	fmt.Println("Check passed")
	return nil
}

// stripEval returns a copy of the document with execution flags cleared,
// so check never runs engines.
func stripEval(doc *document.Document) *document.Document {
	out := &document.Document{Source: doc.Source, Meta: doc.Meta}
	out.Blocks = make([]document.Block, len(doc.Blocks))
	copy(out.Blocks, doc.Blocks)
	for i := range out.Blocks {
		out.Blocks[i].Eval = false
	}
	return out
}

func noEvalConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.Engines = nil
	return &c
}

func langOrPlain(lang string) string {
	if lang == "" {
		return "plain"
	}
	return lang
}
