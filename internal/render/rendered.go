package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// FragmentKind discriminates rendered fragment variants.
type FragmentKind string

const (
	FragmentProse  FragmentKind = "prose"
	FragmentCode   FragmentKind = "code"
	FragmentOutput FragmentKind = "output"
)

// Fragment is one rendered unit: resolved prose, a syntax-tagged code
// chunk, or echoed evaluator output.
type Fragment struct {
	Kind FragmentKind
	HTML string
}

// RenderedDocument is the result of one render pass. It is produced whole;
// a new render produces a new RenderedDocument.
type RenderedDocument struct {
	Title     string
	Fragments []Fragment

	page []byte
}

// HTML returns the assembled page bytes.
func (d *RenderedDocument) HTML() []byte { return d.page }

// WriteFile writes the assembled page to path, creating parent directories
// as needed. Callers invoke this only after a successful render, so no
// artifact ever exists for a failed pass.
func (d *RenderedDocument) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, d.page, 0o644); err != nil {
		return fmt.Errorf("write rendered document: %w", err)
	}
	return nil
}

// OutputPath derives the destination file for a source document: the
// source base name with an .html extension under outputDir.
func OutputPath(outputDir, sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return filepath.Join(outputDir, base[:len(base)-len(ext)]+".html")
}
