package statichost

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/domsnap/domsnap/host"
)

// element adapts an *html.Node (ElementNode) to host.Element.
type element struct {
	node *html.Node
	doc  *Document
}

func wrapElement(n *html.Node, doc *Document) *element {
	if n == nil {
		return nil
	}
	return &element{node: n, doc: doc}
}

func (e *element) TagName() string {
	return strings.ToLower(e.node.Data)
}

func (e *element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (e *element) Attrs() map[string]string {
	m := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		m[strings.ToLower(a.Key)] = a.Val
	}
	return m
}

// SetAttr mutates the live node, matching the real DOM's setAttribute
// semantics: overwrite in place if present, append otherwise.
func (e *element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	if strings.EqualFold(name, "id") {
		e.doc.idIndex[value] = e.node
	}
}

func (e *element) ChildNodes() []host.Node {
	var out []host.Node
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			out = append(out, wrapNode(c, e.doc))
		case html.TextNode:
			out = append(out, wrapNode(c, e.doc))
		}
	}
	return out
}

func (e *element) Children() []host.Element {
	var out []host.Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, wrapElement(c, e.doc))
		}
	}
	return out
}

func (e *element) Parent() host.Element {
	if e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return wrapElement(e.node.Parent, e.doc)
}

// IsContentEditable resolves the HTML contenteditable attribute, walking
// up through ancestors that explicitly say "inherit" the way the live DOM
// does. An element with no contenteditable attribute at all is not
// editable and does not inherit from its parent.
func (e *element) IsContentEditable() bool {
	for n := e.node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		raw, present := "", false
		for _, a := range n.Attr {
			if strings.EqualFold(a.Key, "contenteditable") {
				raw, present = a.Val, true
				break
			}
		}
		if !present {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "":
			return true
		case "false":
			return false
		case "inherit":
			continue
		default:
			return false
		}
	}
	return false
}

// node adapts either kind of *html.Node to host.Node.
type node struct {
	n   *html.Node
	doc *Document
}

func wrapNode(n *html.Node, doc *Document) host.Node {
	return &node{n: n, doc: doc}
}

func (n *node) Kind() host.NodeKind {
	if n.n.Type == html.TextNode {
		return host.TextNode
	}
	return host.ElementNode
}

func (n *node) Element() host.Element {
	if n.n.Type != html.ElementNode {
		return nil
	}
	return wrapElement(n.n, n.doc)
}

func (n *node) TextData() string {
	if n.n.Type != html.TextNode {
		return ""
	}
	return n.n.Data
}

// ContentDocument implements host.FrameElement for <iframe srcdoc="...">
// elements: its inline srcdoc markup is parsed lazily as a same-origin
// nested document. An <iframe src="..."> with no srcdoc has no content
// this package can resolve without a network fetch, so it reports
// ok=false — the same outcome spec.md §4.1 prescribes for a cross-origin
// frame whose access throws.
func (e *element) ContentDocument() (host.Document, bool) {
	if e.TagName() != "iframe" {
		return nil, false
	}
	srcdoc, ok := e.Attr("srcdoc")
	if !ok || strings.TrimSpace(srcdoc) == "" {
		return nil, false
	}
	nested, err := ParseString(srcdoc, e.doc.url)
	if err != nil {
		return nil, false
	}
	nested.stylesheet = e.doc.stylesheet
	return nested, true
}
