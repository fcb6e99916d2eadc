package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/litweave/internal/metrics"
	"git.home.luguber.info/inful/litweave/internal/preview"
	"git.home.luguber.info/inful/litweave/internal/render"
)

// PreviewCmd starts a local server that re-renders the document on change.
type PreviewCmd struct {
	Source string `arg:"" help:"Literate document to preview."`
	Port   int    `help:"Preview server port (overrides config)."`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	port := cfg.Preview.Port
	if p.Port != 0 {
		port = p.Port
	}

	var interval time.Duration
	if cfg.Preview.RebuildInterval != "" {
		interval, err = time.ParseDuration(cfg.Preview.RebuildInterval)
		if err != nil {
			return fmt.Errorf("invalid preview.rebuild_interval: %w", err)
		}
	}

	outputDir, err := os.MkdirTemp("", "litweave-preview-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() { _ = os.RemoveAll(outputDir) }()
	fmt.Println("Preview output directory:", outputDir)

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler *metrics.PrometheusRecorder
	if cfg.Preview.Metrics {
		metricsHandler = metrics.NewPrometheusRecorder(nil)
		rec = metricsHandler
	}

	srv := &preview.Server{
		Port:      port,
		OutputDir: outputDir,
		Source:    p.Source,
		PageName:  filepath.Base(render.OutputPath(".", p.Source)),
		Rebuild: func(ctx context.Context) error {
			return runRender(ctx, cfg, p.Source, outputDir, false, rec)
		},
		RebuildInterval: interval,
	}
	if metricsHandler != nil {
		srv.Metrics = metricsHandler.Handler()
	}

	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return srv.Run(sigctx)
}
