package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/litweave/internal/cache"
	"git.home.luguber.info/inful/litweave/internal/config"
	"git.home.luguber.info/inful/litweave/internal/document"
)

// countingEvaluator returns fixed output and counts invocations, so tests
// can observe cache transparency.
type countingEvaluator struct {
	out   string
	err   error
	calls int
}

func (e *countingEvaluator) Evaluate(_ context.Context, _, _ string) (string, error) {
	e.calls++
	return e.out, e.err
}

func TestRender_ProseThenInclude_InlinesFileWithoutExecution(t *testing.T) {
	dir := t.TempDir()
	model := "model { y ~ normal(a, sigma); }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "linreg.stan"), []byte(model+"\n"), 0o644))

	src := "Hello\n\n```{stan file=\"linreg.stan\"}\n```\n"
	doc := parseAt(t, dir, src)

	eval := &countingEvaluator{out: "should not run"}
	rendered, err := New(config.Default().Render, WithEvaluator(eval)).Render(context.Background(), doc)
	require.NoError(t, err)

	page := string(rendered.HTML())
	require.Contains(t, page, "Hello")
	require.Contains(t, page, "model { y ~ normal(a, sigma); }")
	require.Equal(t, 0, eval.calls)

	// Prose precedes the inlined model text.
	require.Less(t, strings.Index(page, "Hello"), strings.Index(page, "normal(a, sigma)"))
}

func TestRender_MissingIncludeFile_ReturnsMissingFile(t *testing.T) {
	doc := parseAt(t, t.TempDir(), "```{stan file=\"nope.stan\"}\n```\n")

	rendered, err := New(config.Default().Render).Render(context.Background(), doc)
	require.Nil(t, rendered)
	require.Error(t, err)
	require.True(t, IsRenderKind(err, KindMissingFile))

	var re *RenderError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "nope.stan", re.Path)
	require.Equal(t, 1, re.Block.Ordinal)
}

func TestRender_Deterministic_IdenticalSourceYieldsIdenticalBytes(t *testing.T) {
	dir := t.TempDir()
	src := "# Chapter\n\nSome *prose*.\n\n```stan\nmodel {}\n```\n"
	doc := parseAt(t, dir, src)

	r := New(config.Default().Render)
	first, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, first.HTML(), second.HTML())
}

func TestRender_ConcurrentPasses_IndependentAndIdentical(t *testing.T) {
	// The renderer keeps no per-document state; chunk labels in particular
	// must not share a title caser across passes. Run under -race.
	src := "# Chapter\n\n```stan\nmodel {}\n```\n\n```python\nx = 1\n```\n"
	doc := parseAt(t, t.TempDir(), src)
	r := New(config.Default().Render)

	const passes = 8
	pages := make([][]byte, passes)
	errs := make([]error, passes)

	var wg sync.WaitGroup
	for i := 0; i < passes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rendered, err := r.Render(context.Background(), doc)
			if err != nil {
				errs[i] = err
				return
			}
			pages[i] = rendered.HTML()
		}(i)
	}
	wg.Wait()

	for i := 0; i < passes; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, pages[0], pages[i])
	}
	require.Contains(t, string(pages[0]), "<summary>Stan</summary>")
	require.Contains(t, string(pages[0]), "<summary>Python</summary>")
}

func TestRender_CacheWarmAndCold_ProduceIdenticalOutput(t *testing.T) {
	store, err := cache.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	opts := config.Default().Render
	opts.Cache = true

	doc := parseAt(t, t.TempDir(), "```{python, eval=true}\nprint(3.14159)\n```\n")

	eval := &countingEvaluator{out: "3.14159\n"}
	r := New(opts, WithEvaluator(eval), WithCache(store))

	cold, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, eval.calls)

	warm, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, eval.calls, "warm render must reuse the cached fragment")

	require.Equal(t, cold.HTML(), warm.HTML(), "cache may only change latency, not output")
}

func TestRender_CacheDisabled_MatchesCacheEnabledOutput(t *testing.T) {
	store, err := cache.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	src := "```{python, eval=true}\nprint(2.71828)\n```\n"

	cachedOpts := config.Default().Render
	cachedOpts.Cache = true
	cached, err := New(cachedOpts, WithEvaluator(&countingEvaluator{out: "2.71828\n"}), WithCache(store)).
		Render(context.Background(), parseAt(t, t.TempDir(), src))
	require.NoError(t, err)

	plainOpts := config.Default().Render
	plainOpts.Cache = false
	plain, err := New(plainOpts, WithEvaluator(&countingEvaluator{out: "2.71828\n"})).
		Render(context.Background(), parseAt(t, t.TempDir(), src))
	require.NoError(t, err)

	require.Equal(t, plain.HTML(), cached.HTML())
}

// corruptStore reports a checksum mismatch on first Get and records whether
// the corrupt entry was invalidated before recomputation.
type corruptStore struct {
	cache.Store
	deleted bool
}

func (s *corruptStore) Get(context.Context, string) (string, bool, error) {
	return "", false, cache.ErrChecksumMismatch
}

func (s *corruptStore) Delete(ctx context.Context, key string) error {
	s.deleted = true
	return s.Store.Delete(ctx, key)
}

func TestRender_CorruptCacheEntry_RecomputesInsteadOfServingStale(t *testing.T) {
	backing, err := cache.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = backing.Close() }()
	store := &corruptStore{Store: backing}

	opts := config.Default().Render
	opts.Cache = true

	doc := parseAt(t, t.TempDir(), "```{python, eval=true}\nprint(1)\n```\n")

	eval := &countingEvaluator{out: "fresh\n"}
	rendered, err := New(opts, WithEvaluator(eval), WithCache(store)).Render(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, eval.calls)
	require.True(t, store.deleted, "corrupt entry must be invalidated")
	require.Contains(t, string(rendered.HTML()), "fresh")
	require.NotContains(t, string(rendered.HTML()), "stale")
}

// failingDeleteStore cannot invalidate its corrupt entry; the render must
// surface a cache mismatch rather than continue.
type failingDeleteStore struct{ cache.Store }

func (failingDeleteStore) Get(context.Context, string) (string, bool, error) {
	return "", false, cache.ErrChecksumMismatch
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("database is read-only")
}

func TestRender_CorruptEntryInvalidationFails_ReturnsCacheMismatch(t *testing.T) {
	backing, err := cache.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = backing.Close() }()

	opts := config.Default().Render
	opts.Cache = true

	doc := parseAt(t, t.TempDir(), "```{python, eval=true}\nprint(1)\n```\n")

	_, err = New(opts, WithEvaluator(&countingEvaluator{out: "x"}), WithCache(failingDeleteStore{backing})).
		Render(context.Background(), doc)
	require.Error(t, err)
	require.True(t, IsRenderKind(err, KindCacheMismatch))
}

func TestRender_EvalChunk_EchoesOutputWithMarkerAndDigits(t *testing.T) {
	opts := config.Default().Render
	opts.Digits = 3

	doc := parseAt(t, t.TempDir(), "```{python, eval=true}\nprint(x)\n```\n")
	eval := &countingEvaluator{out: "mean 3.14159 sd 0.271828\n"}

	rendered, err := New(opts, WithEvaluator(eval)).Render(context.Background(), doc)
	require.NoError(t, err)

	page := string(rendered.HTML())
	require.Contains(t, page, "#&gt; mean 3.14 sd 0.272")
}

func TestRender_EvalWithoutEvaluator_ReturnsExecutionFailure(t *testing.T) {
	doc := parseAt(t, t.TempDir(), "```{python, eval=true}\nprint(1)\n```\n")

	_, err := New(config.Default().Render).Render(context.Background(), doc)
	require.Error(t, err)
	require.True(t, IsRenderKind(err, KindExecutionFailure))
}

func TestRender_EvaluatorError_ReturnsExecutionFailureWithBlockIdentity(t *testing.T) {
	doc := parseAt(t, t.TempDir(), "Intro\n\n```{python, eval=true}\nboom()\n```\n")
	eval := &countingEvaluator{err: errors.New("interpreter exploded")}

	_, err := New(config.Default().Render, WithEvaluator(eval)).Render(context.Background(), doc)
	require.Error(t, err)
	require.True(t, IsRenderKind(err, KindExecutionFailure))
	require.Contains(t, err.Error(), "chunk 1 (python)")
	require.Contains(t, err.Error(), "interpreter exploded")
}

func TestRender_FrontmatterOverrides_ApplyToPass(t *testing.T) {
	src := "---\ntitle: Custom Title\ncomment_marker: \"##\"\n---\n```{python, eval=true}\nprint(1)\n```\n"
	doc := parseAt(t, t.TempDir(), src)

	rendered, err := New(config.Default().Render, WithEvaluator(&countingEvaluator{out: "one\n"})).
		Render(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, "Custom Title", rendered.Title)
	require.Contains(t, string(rendered.HTML()), "## one")
}

func TestOutputPath_DerivesHTMLNameFromSource(t *testing.T) {
	require.Equal(t, filepath.Join("site", "chapter.html"), OutputPath("site", "docs/chapter.md"))
	require.Equal(t, filepath.Join("out", "notes.html"), OutputPath("out", "notes.qmd"))
}

func parseAt(t *testing.T, dir, src string) *document.Document {
	t.Helper()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	doc, err := document.ParseFile(path)
	require.NoError(t, err)
	return doc
}
