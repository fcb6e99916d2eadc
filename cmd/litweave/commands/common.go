package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/litweave/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"litweave.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Render a literate document to HTML"`
	Check   CheckCmd   `cmd:"" help:"Parse a document and verify chunks, includes, and links without writing output"`
	Preview PreviewCmd `cmd:"" help:"Serve a document locally with live reload"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Cache   CacheCmd   `cmd:"" help:"Inspect or reset the fragment cache"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(c.Verbose),
	}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honors the verbose flag and the LITWEAVE_LOG_LEVEL
// environment variable (debug|info|warn|error); the flag wins.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("LITWEAVE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the config file, falling back to built-in defaults when
// the default path does not exist (rendering should work out of the box).
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Debug("No configuration file found, using defaults", "path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}
