// Package preview serves a rendered document over loopback HTTP, watching
// the source for changes and rebuilding with live reload.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Server is the local preview server.
type Server struct {
	Port      int
	OutputDir string
	Source    string
	PageName  string // file name of the rendered page within OutputDir

	// Rebuild re-renders the source; called on watch events and on the
	// periodic schedule.
	Rebuild func(ctx context.Context) error

	// RebuildInterval, when positive, schedules periodic full rebuilds as
	// a safety net for missed filesystem events.
	RebuildInterval time.Duration

	// Metrics, when set, is exposed at /metrics.
	Metrics http.Handler

	seq atomic.Uint64
}

// Run builds once, then serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	watcher, err := NewWatcher(s.Source, func() {
		if err := s.rebuild(ctx); err != nil {
			slog.Error("Rebuild failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	go watcher.Run(ctx)

	if s.RebuildInterval > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(s.RebuildInterval),
			gocron.NewTask(func() {
				if err := s.rebuild(ctx); err != nil {
					slog.Error("Scheduled rebuild failed", "error", err)
				}
			}),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", srv.Addr, "source", s.Source)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) rebuild(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}
	s.seq.Add(1)
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/__litweave/seq", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(seqBody(s.seq.Load())))
	})
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics)
	}
	mux.HandleFunc("/", s.servePage)
	return mux
}

// servePage serves files from the output directory, injecting the reload
// script into HTML pages. "/" serves the rendered document.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = s.PageName
	}

	path := filepath.Join(s.OutputDir, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(name, ".html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data = InjectReloadScript(data)
	}
	_, _ = w.Write(data)
}
