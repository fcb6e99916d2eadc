package render

import (
	"strconv"
	"strings"
	"unicode"
)

// formatNumbers rewrites floating-point tokens in evaluator output to the
// requested display precision (%.*g). Integer tokens and anything that is
// not a standalone number pass through untouched, so identifiers like
// "sigma2" are never mangled.
func formatNumbers(s string, digits int) string {
	if digits <= 0 {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	var tok strings.Builder
	flush := func() {
		if tok.Len() == 0 {
			return
		}
		out.WriteString(formatToken(tok.String(), digits))
		tok.Reset()
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			out.WriteRune(r)
			continue
		}
		tok.WriteRune(r)
	}
	flush()
	return out.String()
}

func formatToken(tok string, digits int) string {
	// Only tokens with a fractional or exponent part qualify; integers keep
	// their exact text.
	if !strings.ContainsAny(tok, ".eE") || strings.Count(tok, ".") > 1 {
		return tok
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return tok
	}
	return strconv.FormatFloat(v, 'g', digits, 64)
}
