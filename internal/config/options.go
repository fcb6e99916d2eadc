package config

import "strconv"

// OptionsForDocument overlays per-document frontmatter overrides onto the
// base render options. The result is fixed before rendering begins; a
// value the override cannot express (bad type, unknown folding mode) falls
// back to the base.
func OptionsForDocument(base RenderOptions, meta map[string]any) RenderOptions {
	opts := base

	if v, ok := metaBool(meta["cache"]); ok {
		opts.Cache = v
	}
	if v, ok := metaInt(meta["digits"]); ok && v >= 1 && v <= 15 {
		opts.Digits = v
	}
	if v, ok := meta["code_folding"].(string); ok {
		if v == FoldingShow || v == FoldingHide {
			opts.CodeFolding = v
		}
	}
	if v, ok := meta["comment_marker"].(string); ok && v != "" {
		opts.CommentMarker = v
	}

	return opts
}

func metaBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}

func metaInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}
