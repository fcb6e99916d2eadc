// Package render transforms a parsed Document into a RenderedDocument:
// a deterministic, linear pass over blocks given a fixed option store.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/litweave/internal/cache"
	"git.home.luguber.info/inful/litweave/internal/config"
	"git.home.luguber.info/inful/litweave/internal/document"
	"git.home.luguber.info/inful/litweave/internal/gitmeta"
	"git.home.luguber.info/inful/litweave/internal/metrics"
)

// Renderer holds the fixed collaborators for render passes. It keeps no
// per-document state; concurrent Render calls on distinct documents are safe.
type Renderer struct {
	opts  config.RenderOptions
	eval  Evaluator
	store cache.Store
	rec   metrics.Recorder
	stamp *gitmeta.Stamp
	title string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEvaluator supplies the pluggable chunk execution capability.
func WithEvaluator(e Evaluator) Option { return func(r *Renderer) { r.eval = e } }

// WithCache supplies the fragment cache. Without one (or with the cache
// option disabled) every executable chunk is recomputed.
func WithCache(s cache.Store) Option { return func(r *Renderer) { r.store = s } }

// WithRecorder supplies a metrics recorder.
func WithRecorder(m metrics.Recorder) Option { return func(r *Renderer) { r.rec = m } }

// WithGitStamp supplies the source revision stamp for the page footer.
func WithGitStamp(s *gitmeta.Stamp) Option { return func(r *Renderer) { r.stamp = s } }

// WithTitle sets the fallback page title used when the document's
// frontmatter has none.
func WithTitle(t string) Option { return func(r *Renderer) { r.title = t } }

// New creates a Renderer with the given base options.
func New(opts config.RenderOptions, options ...Option) *Renderer {
	r := &Renderer{opts: opts, rec: metrics.NoopRecorder{}, title: "Untitled"}
	for _, o := range options {
		o(r)
	}
	return r
}

// Render performs one pass over the document and assembles the page.
//
// The pass is all-or-nothing: the first failing block aborts it and no
// fragments are exposed. The document and options are not mutated.
func (r *Renderer) Render(ctx context.Context, doc *document.Document) (*RenderedDocument, error) {
	start := time.Now()
	passID := uuid.NewString()
	opts := config.OptionsForDocument(r.opts, doc.Meta)

	slog.Debug("Starting render pass",
		"pass_id", passID,
		"source", doc.Source,
		"blocks", len(doc.Blocks),
		"cache", opts.Cache)

	frags, err := r.renderBlocks(ctx, doc, opts, passID)
	if err != nil {
		r.rec.IncRenderOutcome(metrics.OutcomeFailed)
		return nil, err
	}

	title := doc.Title(r.title)
	page, err := buildPage(title, frags, r.stamp)
	if err != nil {
		r.rec.IncRenderOutcome(metrics.OutcomeFailed)
		return nil, err
	}

	r.rec.ObserveRenderDuration(time.Since(start))
	r.rec.IncRenderOutcome(metrics.OutcomeSuccess)
	slog.Info("Render pass completed",
		"pass_id", passID,
		"source", doc.Source,
		"fragments", len(frags),
		"duration", time.Since(start))

	return &RenderedDocument{Title: title, Fragments: frags, page: page}, nil
}

func (r *Renderer) renderBlocks(ctx context.Context, doc *document.Document, opts config.RenderOptions, passID string) ([]Fragment, error) {
	baseDir := filepath.Dir(doc.Source)
	frags := make([]Fragment, 0, len(doc.Blocks))

	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.BlockProse:
			h, err := proseHTML(b.Text)
			if err != nil {
				return nil, err
			}
			frags = append(frags, Fragment{Kind: FragmentProse, HTML: h})

		case document.BlockInclude:
			lang, text, err := readInclude(baseDir, b)
			if err != nil {
				return nil, err
			}
			frags = append(frags, codeFragment(b, lang, text, opts))

		case document.BlockCode:
			frags = append(frags, codeFragment(b, b.Lang, b.Text, opts))
			if !b.Eval {
				continue
			}
			out, err := r.evaluateChunk(ctx, b, opts, passID)
			if err != nil {
				return nil, err
			}
			frags = append(frags, outputFragment(out, opts))

		default:
			return nil, fmt.Errorf("unknown block kind %q", b.Kind)
		}
	}
	return frags, nil
}

// evaluateChunk produces the (digit-formatted) output for an executable
// chunk, consulting the fragment cache when enabled. Cache reuse is
// semantically transparent: a corrupt entry is invalidated and recomputed,
// never served.
func (r *Renderer) evaluateChunk(ctx context.Context, b document.Block, opts config.RenderOptions, passID string) (string, error) {
	if r.eval == nil {
		return "", &RenderError{
			Kind:  KindExecutionFailure,
			Block: refOf(b),
			Err:   errors.New("no evaluator configured"),
		}
	}

	key := cache.Fingerprint(b.Lang, b.Text, opts)
	useCache := opts.Cache && r.store != nil

	if useCache {
		out, ok, err := r.store.Get(ctx, key)
		switch {
		case err == nil && ok:
			r.rec.IncCacheResult(true)
			slog.Debug("Fragment cache hit", "pass_id", passID, "chunk", b.Ordinal)
			return out, nil
		case errors.Is(err, cache.ErrChecksumMismatch):
			slog.Warn("Discarding corrupt cache fragment", "pass_id", passID, "chunk", b.Ordinal)
			if derr := r.store.Delete(ctx, key); derr != nil {
				return "", &RenderError{Kind: KindCacheMismatch, Block: refOf(b), Err: derr}
			}
		case err != nil:
			// A broken cache must not fail the render; recompute instead.
			slog.Warn("Fragment cache lookup failed", "pass_id", passID, "chunk", b.Ordinal, "error", err)
		}
		r.rec.IncCacheResult(false)
	}

	evalStart := time.Now()
	raw, err := r.eval.Evaluate(ctx, b.Lang, b.Text)
	r.rec.ObserveEvalDuration(b.Lang, time.Since(evalStart))
	r.rec.IncEvalResult(b.Lang, err == nil)
	if err != nil {
		return "", &RenderError{Kind: KindExecutionFailure, Block: refOf(b), Err: err}
	}

	out := formatNumbers(raw, opts.Digits)

	if useCache {
		if perr := r.store.Put(ctx, key, b.Lang, out, passID); perr != nil {
			slog.Warn("Fragment cache store failed", "pass_id", passID, "chunk", b.Ordinal, "error", perr)
		}
	}
	return out, nil
}
