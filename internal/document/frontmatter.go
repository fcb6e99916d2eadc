package document

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading `---` delimited YAML block from the
// body and parses it into a field map.
//
// Documents without a leading delimiter get an empty map and the full input
// as body. An opening delimiter without a closing one is an unterminated
// block: the frontmatter fence counts like any other fence.
func splitFrontmatter(content []byte) (fields map[string]any, body []byte, linesConsumed int, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, 0, nil
	}

	rest := content[len(open):]

	var raw []byte
	switch {
	case bytes.HasPrefix(rest, []byte("---"+nl)):
		// Empty frontmatter block.
		raw = nil
		body = rest[len("---"+nl):]
	default:
		closeSeq := []byte(nl + "---" + nl)
		idx := bytes.Index(rest, closeSeq)
		if idx < 0 {
			return nil, nil, 0, &ParseError{
				Kind:   KindUnterminatedBlock,
				Line:   1,
				Detail: "frontmatter delimiter '---' is never closed",
			}
		}
		raw = rest[:idx+len(nl)]
		body = rest[idx+len(closeSeq):]
	}

	fields = map[string]any{}
	if len(raw) > 0 {
		if uerr := yaml.Unmarshal(raw, &fields); uerr != nil {
			return nil, nil, 0, &ParseError{
				Kind:   KindMalformedDirective,
				Line:   2,
				Detail: "invalid YAML frontmatter: " + uerr.Error(),
			}
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}

	// Opening line + content lines + closing line, so block line numbers in
	// the body can be reported against the original source.
	linesConsumed = 2 + bytes.Count(raw, []byte("\n"))
	return fields, body, linesConsumed, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
