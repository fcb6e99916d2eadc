package render

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/litweave/internal/document"
)

// langByExtension infers a chunk language for included files whose
// directive does not name one.
var langByExtension = map[string]string{
	".stan": "stan",
	".py":   "python",
	".r":    "r",
	".sh":   "sh",
	".sql":  "sql",
	".go":   "go",
	".js":   "javascript",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
}

// readInclude resolves an include directive relative to baseDir and reads
// the referenced file in full. The file handle is scoped to the read and
// released on every path, including failure.
func readInclude(baseDir string, b document.Block) (lang, text string, err error) {
	path := filepath.Join(baseDir, filepath.FromSlash(b.IncludePath))
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return "", "", &RenderError{
			Kind:  KindMissingFile,
			Block: refOf(b),
			Path:  b.IncludePath,
			Err:   rerr,
		}
	}

	lang = b.Lang
	if lang == "" {
		lang = langByExtension[strings.ToLower(filepath.Ext(path))]
	}
	return lang, strings.TrimRight(string(data), "\n"), nil
}
