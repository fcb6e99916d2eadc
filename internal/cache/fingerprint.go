package cache

import (
	"fmt"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/litweave/internal/config"
)

// Fingerprint computes the content-derived cache key for an executable
// chunk: a hash over the chunk text plus every option value that can
// change its evaluated output.
//
// Options that only affect page chrome (code folding) are deliberately
// excluded so toggling them does not invalidate cached results.
func Fingerprint(lang, code string, opts config.RenderOptions) string {
	optPart := fmt.Sprintf("lang=%s\ndigits=%d\nmarker=%s", lang, opts.Digits, opts.CommentMarker)
	return mdfp.CalculateFingerprintFromParts(optPart, code)
}

// resultChecksum guards a stored fragment against corruption: the checksum
// binds the output bytes to the key they were stored under.
func resultChecksum(key, output string) string {
	return mdfp.CalculateFingerprintFromParts(key, output)
}
