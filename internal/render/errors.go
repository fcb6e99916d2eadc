package render

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/litweave/internal/document"
)

// RenderErrorKind classifies render failures.
type RenderErrorKind string

const (
	// KindMissingFile marks an include directive whose path does not resolve.
	KindMissingFile RenderErrorKind = "missing_file"

	// KindCacheMismatch marks a corrupt cache fragment that could not be
	// invalidated; stale content is never served in its place.
	KindCacheMismatch RenderErrorKind = "cache_mismatch"

	// KindExecutionFailure marks an evaluator failure for an executable chunk.
	KindExecutionFailure RenderErrorKind = "execution_failure"
)

// BlockRef identifies the failing block in user-facing error messages.
type BlockRef struct {
	Ordinal int
	Lang    string
	Line    int
}

func refOf(b document.Block) BlockRef {
	return BlockRef{Ordinal: b.Ordinal, Lang: b.Lang, Line: b.Line}
}

func (r BlockRef) String() string {
	lang := r.Lang
	if lang == "" {
		lang = "plain"
	}
	return fmt.Sprintf("chunk %d (%s) at line %d", r.Ordinal, lang, r.Line)
}

// RenderError is a fatal render failure. A single bad block fails the whole
// pass; no partial output is written.
type RenderError struct {
	Kind  RenderErrorKind
	Block BlockRef
	Path  string // include path, when relevant
	Err   error
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case KindMissingFile:
		return fmt.Sprintf("render: %s: include file missing: %s", e.Block, e.Path)
	case KindCacheMismatch:
		return fmt.Sprintf("render: %s: cache fragment mismatch: %v", e.Block, e.Err)
	default:
		return fmt.Sprintf("render: %s: execution failed: %v", e.Block, e.Err)
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsRenderKind reports whether err is a RenderError of the given kind.
func IsRenderKind(err error, kind RenderErrorKind) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Kind == kind
}
