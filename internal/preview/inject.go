package preview

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
)

// reloadScript polls the build sequence endpoint and reloads the page when
// a rebuild has completed.
const reloadScript = `(function(){var seq=null;setInterval(function(){fetch('/__litweave/seq').then(function(r){return r.text()}).then(function(s){if(seq===null){seq=s;return}if(s!==seq){location.reload()}}).catch(function(){})},1000)})();`

// InjectReloadScript parses the page and appends the live-reload script to
// its body. Pages that fail to parse are served unmodified.
func InjectReloadScript(page []byte) []byte {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return page
	}

	body := findElement(doc, "body")
	if body == nil {
		return page
	}

	script := &html.Node{Type: html.ElementNode, Data: "script"}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: reloadScript})
	body.AppendChild(script)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return page
	}
	return buf.Bytes()
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// seqBody formats the build sequence for the polling endpoint.
func seqBody(seq uint64) string { return fmt.Sprintf("%d", seq) }
