// Package document defines the literate-document model and its parser.
//
// A literate source interleaves Markdown prose with fenced code chunks.
// Chunks carry an info string in the RMarkdown shape `{lang, key=value}`;
// a chunk with a `file="path"` attribute and an empty body is an include
// directive that splices the referenced file in at render time.
package document

// BlockKind discriminates the Block variants.
type BlockKind string

const (
	BlockProse   BlockKind = "prose"
	BlockCode    BlockKind = "code"
	BlockInclude BlockKind = "include"
)

// Block is one parsed unit of a literate document.
//
// Blocks are owned by exactly one Document and their order is significant:
// rendering emits them in source order.
type Block struct {
	Kind BlockKind

	// Text holds prose markdown or verbatim chunk code (fences stripped).
	Text string

	// Lang is the chunk language tag ("stan", "python", ...). Empty for prose.
	Lang string

	// Name is the optional chunk label from the info string.
	Name string

	// Eval marks an executable chunk (eval=true in the info string).
	Eval bool

	// IncludePath is the referenced file for include directives,
	// relative to the source document.
	IncludePath string

	// Line is the 1-based source line where the block starts.
	Line int

	// Ordinal is the 1-based position among non-prose blocks, used in
	// error reporting and chunk anchors.
	Ordinal int
}

// Document is an immutable parse result: frontmatter metadata plus an
// ordered block sequence.
type Document struct {
	// Source is the path the document was read from, or "" for in-memory
	// input. Include paths resolve relative to its directory.
	Source string

	// Meta holds the YAML frontmatter fields (possibly empty, never nil).
	Meta map[string]any

	Blocks []Block
}

// Chunks returns the non-prose blocks in order.
func (d *Document) Chunks() []Block {
	out := make([]Block, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Kind != BlockProse {
			out = append(out, b)
		}
	}
	return out
}

// Title returns the frontmatter title, or fallback when unset.
func (d *Document) Title(fallback string) string {
	if t, ok := d.Meta["title"].(string); ok && t != "" {
		return t
	}
	return fallback
}
