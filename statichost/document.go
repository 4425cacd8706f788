// Package statichost backs host.Document with a parsed, static HTML
// document, so the collector can run — and be unit tested — without a
// live browser. It leans on the same goquery construction idiom the
// teacher's web-scrape stage uses for fetched pages, plus cascadia for
// matching an optional injected stylesheet.
package statichost

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/domsnap/domsnap/host"
)

// Document is a host.Document backed by an in-memory parsed HTML tree.
// Attribute writes (including the collector's data-aipex-nodeid) mutate
// the underlying *html.Node in place, exactly like a live DOM.
type Document struct {
	root       *html.Node
	url        string
	stylesheet *Stylesheet
	idIndex    map[string]*html.Node
	activeID   string
}

// Parse builds a Document from r. url is recorded verbatim for
// host.Document.URL() — this package performs no network fetches of its
// own.
func Parse(r io.Reader, url string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("statichost: parse: %w", err)
	}
	if len(gq.Nodes) == 0 {
		return nil, fmt.Errorf("statichost: empty document")
	}
	d := &Document{root: gq.Nodes[0], url: url}
	d.reindex()
	return d, nil
}

// ParseString is Parse over an in-memory HTML string, convenient for
// tests and fixtures.
func ParseString(htmlSrc, url string) (*Document, error) {
	return Parse(strings.NewReader(htmlSrc), url)
}

// SetStylesheet attaches an optional injected stylesheet used to resolve
// computed style for properties this package cannot infer from inline
// style alone (spec.md §4.1's visibility/cursor checks over class-based
// CSS, e.g. scenario S6's `.cursor-pointer`).
func (d *Document) SetStylesheet(sheet *Stylesheet) {
	d.stylesheet = sheet
}

func (d *Document) reindex() {
	d.idIndex = make(map[string]*html.Node)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attrVal(n, "id"); id != "" {
				d.idIndex[id] = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) Body() host.Element {
	n := findFirst(d.root, "body")
	if n == nil {
		return nil
	}
	return wrapElement(n, d)
}

func (d *Document) DocumentElement() host.Element {
	n := findFirst(d.root, "html")
	if n == nil {
		return nil
	}
	return wrapElement(n, d)
}

func (d *Document) Title() string {
	n := findFirst(d.root, "title")
	if n == nil {
		return ""
	}
	return textContent(n)
}

func (d *Document) URL() string {
	return d.url
}

func (d *Document) GetElementByID(id string) (host.Element, bool) {
	n, ok := d.idIndex[id]
	if !ok {
		return nil, false
	}
	return wrapElement(n, d), true
}

// ActiveElement returns nil unless SetActiveElementByID was called: a
// static document has no intrinsic notion of focus.
func (d *Document) ActiveElement() host.Element {
	if d.activeID == "" {
		return nil
	}
	n, ok := d.idIndex[d.activeID]
	if !ok {
		return nil
	}
	return wrapElement(n, d)
}

// SetActiveElementByID is a test seam: static HTML carries no live focus
// state, so fixtures that need to exercise spec.md's focus-marking
// behavior declare which element is "focused" explicitly.
func (d *Document) SetActiveElementByID(id string) {
	d.activeID = id
}

func (d *Document) DefaultView() *host.Window {
	return &host.Window{
		GetComputedStyle: func(e host.Element) host.ComputedStyle {
			el, ok := e.(*element)
			if !ok {
				return nil
			}
			return resolveComputedStyle(el.node, d.stylesheet)
		},
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
