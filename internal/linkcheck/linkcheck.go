// Package linkcheck extracts links from rendered HTML and verifies that
// local targets exist. Used by the `check` command.
package linkcheck

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is one extracted link-like reference.
type Link struct {
	URL       string
	Tag       string // a, img, link, script
	Attribute string // href or src
}

// Problem reports a local link whose target does not exist.
type Problem struct {
	Link   Link
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s[%s=%q]: %s", p.Link.Tag, p.Link.Attribute, p.Link.URL, p.Reason)
}

// ExtractLinks walks an HTML tree and collects link-like attributes.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v := attr(n, "href"); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: "href"})
				}
			case "img", "script":
				if v := attr(n, "src"); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: "src"})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// VerifyLocal checks that every relative link resolves to an existing file
// under baseDir. Remote URLs, anchors, and special schemes are skipped.
func VerifyLocal(links []Link, baseDir string) []Problem {
	var problems []Problem
	for _, l := range links {
		if !isLocal(l.URL) {
			continue
		}
		target := filepath.Join(baseDir, filepath.FromSlash(strings.TrimPrefix(l.URL, "/")))
		if _, err := os.Stat(target); err != nil {
			problems = append(problems, Problem{Link: l, Reason: "target not found"})
		}
	}
	return problems
}

func isLocal(link string) bool {
	if link == "" || strings.HasPrefix(link, "#") ||
		strings.HasPrefix(link, "mailto:") || strings.HasPrefix(link, "data:") {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
