package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile reads and parses a literate document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Source = path
	return doc, nil
}

// Parse splits raw source text into an ordered block sequence.
//
// It fails with ParseError when a fence is opened but never closed or when
// an include directive carries a malformed path. The returned Document is
// complete or nil; there is no partial result.
func Parse(content []byte) (*Document, error) {
	meta, body, lineOffset, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{Meta: meta}

	lines := strings.Split(string(body), "\n")
	var prose []string
	proseStart := 0
	ordinal := 0

	flushProse := func() {
		text := strings.Join(prose, "\n")
		if strings.TrimSpace(text) != "" {
			doc.Blocks = append(doc.Blocks, Block{
				Kind: BlockProse,
				Text: text,
				Line: proseStart + lineOffset + 1,
			})
		}
		prose = nil
	}

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(trimmed, "```") {
			if prose == nil {
				proseStart = i
			}
			prose = append(prose, lines[i])
			continue
		}

		flushProse()
		openLine := i + lineOffset + 1
		info := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))

		var code []string
		closed := false
		for i++; i < len(lines); i++ {
			l := strings.TrimRight(lines[i], "\r")
			if l == "```" {
				closed = true
				break
			}
			code = append(code, strings.TrimRight(lines[i], "\r"))
		}
		if !closed {
			return nil, &ParseError{
				Kind:   KindUnterminatedBlock,
				Line:   openLine,
				Detail: "code fence opened but never closed",
			}
		}

		block, err := buildChunk(info, strings.Join(code, "\n"), openLine)
		if err != nil {
			return nil, err
		}
		ordinal++
		block.Ordinal = ordinal
		doc.Blocks = append(doc.Blocks, block)
	}
	flushProse()

	return doc, nil
}

// buildChunk classifies a fenced chunk from its info string.
func buildChunk(info, code string, line int) (Block, error) {
	lang, name, file, eval, err := parseChunkInfo(info, line)
	if err != nil {
		return Block{}, err
	}

	if file != "" {
		if eval {
			return Block{}, &ParseError{
				Kind:   KindMalformedDirective,
				Line:   line,
				Detail: "include chunks cannot set eval",
			}
		}
		if strings.TrimSpace(code) != "" {
			return Block{}, &ParseError{
				Kind:   KindMalformedDirective,
				Line:   line,
				Detail: "include chunk must have an empty body",
			}
		}
		return Block{Kind: BlockInclude, Lang: lang, Name: name, IncludePath: file, Line: line}, nil
	}

	return Block{Kind: BlockCode, Lang: lang, Name: name, Text: code, Eval: eval, Line: line}, nil
}

// parseChunkInfo parses an RMarkdown-style info string: `{lang name, key=value}`
// with the braces, the name, and all attributes optional. Unknown attributes
// are ignored; knitr does the same for engine-specific options.
func parseChunkInfo(info string, line int) (lang, name, file string, eval bool, err error) {
	s := strings.TrimSpace(info)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return "", "", "", false, nil
	}

	for _, tok := range splitInfoTokens(s) {
		key, val, hasEq := strings.Cut(tok, "=")
		if !hasEq {
			switch {
			case lang == "":
				lang = strings.TrimPrefix(tok, ".")
			case name == "":
				name = tok
			}
			continue
		}

		val = unquote(strings.TrimSpace(val))
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "eval":
			eval = strings.EqualFold(val, "true")
		case "name", "label":
			name = val
		case "file":
			if val == "" {
				return "", "", "", false, &ParseError{
					Kind:   KindMalformedDirective,
					Line:   line,
					Detail: "include path is empty",
				}
			}
			if filepath.IsAbs(val) {
				return "", "", "", false, &ParseError{
					Kind:   KindMalformedDirective,
					Line:   line,
					Detail: "include path must be relative: " + val,
				}
			}
			file = filepath.ToSlash(val)
		}
	}
	return lang, name, file, eval, nil
}

// splitInfoTokens splits on spaces and commas while keeping quoted values
// (single or double) intact.
func splitInfoTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	var quote rune

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
