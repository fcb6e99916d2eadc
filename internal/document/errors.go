package document

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies parse failures.
type ParseErrorKind string

const (
	// KindUnterminatedBlock marks a fence (code or frontmatter) that was
	// opened but never closed.
	KindUnterminatedBlock ParseErrorKind = "unterminated_block"

	// KindMalformedDirective marks an include directive with an unusable
	// path or conflicting chunk body.
	KindMalformedDirective ParseErrorKind = "malformed_directive"
)

// ParseError reports a fatal parse failure with the offending source line.
// A single bad block fails the whole parse; there is no recovery.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s at line %d: %s", e.Kind, e.Line, e.Detail)
}

// IsParseKind reports whether err is a ParseError of the given kind.
func IsParseKind(err error, kind ParseErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == kind
}
