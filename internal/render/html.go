package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/litweave/internal/config"
	"git.home.luguber.info/inful/litweave/internal/document"
	"git.home.luguber.info/inful/litweave/internal/gitmeta"
)

var md = goldmark.New()

// proseHTML converts a prose block to an HTML fragment.
func proseHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// codeFragment renders a code chunk as a foldable, language-tagged block.
func codeFragment(b document.Block, lang, code string, opts config.RenderOptions) Fragment {
	var sb strings.Builder

	openAttr := " open"
	if opts.CodeFolding == config.FoldingHide {
		openAttr = ""
	}

	fmt.Fprintf(&sb, `<details class="chunk" id="chunk-%d"%s>`, b.Ordinal, openAttr)
	fmt.Fprintf(&sb, "<summary>%s</summary>", html.EscapeString(chunkLabel(b, lang)))
	if lang != "" {
		fmt.Fprintf(&sb, `<pre><code class="language-%s">`, html.EscapeString(lang))
	} else {
		sb.WriteString("<pre><code>")
	}
	sb.WriteString(html.EscapeString(code))
	sb.WriteString("</code></pre></details>\n")

	return Fragment{Kind: FragmentCode, HTML: sb.String()}
}

// outputFragment echoes evaluator output, each line prefixed with the
// comment marker.
func outputFragment(text string, opts config.RenderOptions) Fragment {
	var sb strings.Builder
	sb.WriteString(`<pre class="chunk-output"><code>`)
	for i, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(html.EscapeString(opts.CommentMarker + " " + line))
	}
	sb.WriteString("</code></pre>\n")
	return Fragment{Kind: FragmentOutput, HTML: sb.String()}
}

func chunkLabel(b document.Block, lang string) string {
	if b.Name != "" {
		return b.Name
	}
	if lang != "" {
		// cases.Caser carries internal state and is not safe for concurrent
		// use; construct one per call so concurrent renders stay independent.
		return cases.Title(language.English).String(lang)
	}
	return "Code"
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: serif; line-height: 1.5; }
pre { background: #f6f6f6; padding: 0.75rem; overflow-x: auto; }
details.chunk summary { cursor: pointer; font-family: sans-serif; font-size: 0.85rem; color: #555; }
pre.chunk-output { background: #fbfbfb; border-left: 3px solid #ccc; }
footer { margin-top: 3rem; font-size: 0.8rem; color: #888; }
</style>
</head>
<body>
{{range .Fragments}}{{.HTML | raw}}{{end}}<footer>Rendered by litweave{{if .Stamp}} &middot; source revision {{.Stamp}}{{end}}</footer>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"raw": func(s string) template.HTML { return template.HTML(s) },
}).Parse(pageTemplate))

// buildPage assembles the final document. Output is deterministic: it
// contains no timestamps or per-pass identifiers.
func buildPage(title string, frags []Fragment, stamp *gitmeta.Stamp) ([]byte, error) {
	data := struct {
		Title     string
		Fragments []Fragment
		Stamp     string
	}{Title: title, Fragments: frags}
	if stamp != nil {
		data.Stamp = stamp.Short()
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}
