package cdphost

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/domsnap/domsnap/host"
)

// element adapts a *cdp.Node (NodeTypeElement) to host.Element.
type element struct {
	node *cdp.Node
	doc  *Document
}

func wrapElement(n *cdp.Node, doc *Document) *element {
	if n == nil {
		return nil
	}
	return &element{node: n, doc: doc}
}

func (e *element) TagName() string {
	return strings.ToLower(e.node.NodeName)
}

func (e *element) Attr(name string) (string, bool) {
	for i := 0; i+1 < len(e.node.Attributes); i += 2 {
		if strings.EqualFold(e.node.Attributes[i], name) {
			return e.node.Attributes[i+1], true
		}
	}
	return "", false
}

func (e *element) Attrs() map[string]string {
	m := make(map[string]string, len(e.node.Attributes)/2)
	for i := 0; i+1 < len(e.node.Attributes); i += 2 {
		m[strings.ToLower(e.node.Attributes[i])] = e.node.Attributes[i+1]
	}
	return m
}

// SetAttr writes the attribute both to the live tab (so it persists
// across future Session.Document snapshots, per spec.md §6.4) and to the
// in-memory node so this snapshot's subsequent Attr/Attrs calls see it
// immediately.
func (e *element) SetAttr(name, value string) {
	for i := 0; i+1 < len(e.node.Attributes); i += 2 {
		if strings.EqualFold(e.node.Attributes[i], name) {
			e.node.Attributes[i+1] = value
			e.pushAttribute(name, value)
			return
		}
	}
	e.node.Attributes = append(e.node.Attributes, name, value)
	e.pushAttribute(name, value)
	if strings.EqualFold(name, "id") {
		e.doc.idIndex[value] = e.node
	}
}

func (e *element) pushAttribute(name, value string) {
	nodeID := e.node.NodeID
	err := chromedp.Run(e.doc.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.SetAttributeValue(nodeID, name, value).Do(ctx)
	}))
	if err != nil {
		e.doc.log.Debug().Err(err).Str("attr", name).Msg("cdphost: SetAttr live write failed")
	}
}

func (e *element) ChildNodes() []host.Node {
	var out []host.Node
	for _, c := range e.node.Children {
		switch c.NodeType {
		case cdp.NodeTypeElement:
			out = append(out, wrapNode(c, e.doc))
		case cdp.NodeTypeText:
			out = append(out, wrapNode(c, e.doc))
		}
	}
	return out
}

func (e *element) Children() []host.Element {
	var out []host.Element
	for _, c := range e.node.Children {
		if c.NodeType == cdp.NodeTypeElement {
			out = append(out, wrapElement(c, e.doc))
		}
	}
	return out
}

func (e *element) Parent() host.Element {
	p, ok := e.doc.parentOf[e.node.NodeID]
	if !ok || p.NodeType != cdp.NodeTypeElement {
		return nil
	}
	return wrapElement(p, e.doc)
}

// IsContentEditable walks up via the parent index (cdp.Node itself has no
// back-pointer), honoring the HTML contenteditable "inherit" value the
// same way statichost does.
func (e *element) IsContentEditable() bool {
	for n := e.node; n != nil && n.NodeType == cdp.NodeTypeElement; n = e.doc.parentOf[n.NodeID] {
		raw := nodeAttr(n, "contenteditable")
		if raw == "" && !hasAttribute(n, "contenteditable") {
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

func hasAttribute(n *cdp.Node, name string) bool {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		if strings.EqualFold(n.Attributes[i], name) {
			return true
		}
	}
	return false
}

// ContentDocument implements host.FrameElement. dom.GetDocument's
// WithPierce(true) call already populated same-process iframe documents
// inline as node.ContentDocument; a frame CDP could not pierce (e.g. an
// out-of-process cross-origin frame) leaves it nil, which this package
// reports as ok=false — the same outcome spec.md §4.1 prescribes for a
// cross-origin iframe whose contentDocument access throws.
func (e *element) ContentDocument() (host.Document, bool) {
	if e.TagName() != "iframe" {
		return nil, false
	}
	if e.node.ContentDocument == nil {
		return nil, false
	}
	return newDocument(e.doc.ctx, e.node.ContentDocument, e.doc.url, e.doc.log), true
}

// node adapts either kind of *cdp.Node to host.Node.
type node struct {
	n   *cdp.Node
	doc *Document
}

func wrapNode(n *cdp.Node, doc *Document) host.Node {
	return &node{n: n, doc: doc}
}

func (n *node) Kind() host.NodeKind {
	if n.n.NodeType == cdp.NodeTypeText {
		return host.TextNode
	}
	return host.ElementNode
}

func (n *node) Element() host.Element {
	if n.n.NodeType != cdp.NodeTypeElement {
		return nil
	}
	return wrapElement(n.n, n.doc)
}

func (n *node) TextData() string {
	if n.n.NodeType != cdp.NodeTypeText {
		return ""
	}
	return n.n.NodeValue
}
