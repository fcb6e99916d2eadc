package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/litweave/internal/cache"
	"git.home.luguber.info/inful/litweave/internal/config"
	"git.home.luguber.info/inful/litweave/internal/document"
	"git.home.luguber.info/inful/litweave/internal/gitmeta"
	"git.home.luguber.info/inful/litweave/internal/metrics"
	"git.home.luguber.info/inful/litweave/internal/render"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Source  string `arg:"" help:"Literate document to render."`
	Output  string `short:"o" help:"Output directory for the rendered document (overrides config)."`
	NoCache bool   `name:"no-cache" help:"Disable the fragment cache for this pass."`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	outputDir := cfg.Output.Directory
	if r.Output != "" {
		outputDir = r.Output
	}

	return runRender(context.Background(), cfg, r.Source, outputDir, r.NoCache, metrics.NoopRecorder{})
}

// runRender parses and renders one document, writing the page only on
// success. Shared with the preview server's rebuild path.
func runRender(ctx context.Context, cfg *config.Config, source, outputDir string, noCache bool, rec metrics.Recorder) error {
	slog.Info("Starting render", "source", source, "output", outputDir)

	parseStart := time.Now()
	doc, err := document.ParseFile(source)
	if err != nil {
		return err
	}
	rec.ObserveParseDuration(time.Since(parseStart))
	slog.Debug("Document parsed", "blocks", len(doc.Blocks), "chunks", len(doc.Chunks()))

	renderer, store, err := buildRenderer(cfg, source, noCache, rec)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("Failed to close fragment cache", "error", cerr)
			}
		}()
	}

	rendered, err := renderer.Render(ctx, doc)
	if err != nil {
		return err
	}

	outPath := render.OutputPath(outputDir, source)
	if cfg.Output.Clean {
		// Drop any stale artifact for this source before writing.
		_ = os.Remove(outPath)
	}
	if err := rendered.WriteFile(outPath); err != nil {
		return err
	}

	slog.Info("Document rendered", "output", outPath, "title", rendered.Title)
	return nil
}

// buildRenderer wires the renderer's collaborators from config: evaluator,
// fragment cache, git stamp, metrics.
func buildRenderer(cfg *config.Config, source string, noCache bool, rec metrics.Recorder) (*render.Renderer, cache.Store, error) {
	opts := []render.Option{
		render.WithRecorder(rec),
		render.WithTitle(cfg.Title),
	}

	if len(cfg.Engines) > 0 {
		opts = append(opts, render.WithEvaluator(render.NewExecEvaluator(cfg.Engines)))
	}

	var store cache.Store
	if cfg.Render.Cache && !noCache {
		s, err := cache.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open fragment cache: %w", err)
		}
		store = s
		opts = append(opts, render.WithCache(store))
	}

	stamp, err := gitmeta.Lookup(source)
	if err != nil {
		slog.Warn("Could not resolve git metadata", "source", source, "error", err)
	} else if stamp != nil {
		opts = append(opts, render.WithGitStamp(stamp))
	}

	ropts := cfg.Render
	if noCache {
		ropts.Cache = false
	}
	return render.New(ropts, opts...), store, nil
}
