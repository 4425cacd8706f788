package cdphost

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/domsnap/domsnap/host"
)

// Document adapts one dom.GetDocument() snapshot (a *cdp.Node tree) to
// host.Document. It is a point-in-time capture: subsequent DOM mutations
// in the live tab are not reflected until Session.Document is called
// again, matching spec.md §5's "engine reads each node exactly once".
type Document struct {
	ctx  context.Context
	root *cdp.Node
	url  string
	log  zerolog.Logger

	// parentOf indexes cdp.Node.NodeID -> parent, since cdp.Node carries
	// no back-pointer (unlike golang.org/x/net/html's *Node.Parent).
	parentOf map[cdp.NodeID]*cdp.Node
	idIndex  map[string]*cdp.Node
}

func newDocument(ctx context.Context, root *cdp.Node, url string, log zerolog.Logger) *Document {
	d := &Document{
		ctx:      ctx,
		root:     root,
		url:      url,
		log:      log,
		parentOf: make(map[cdp.NodeID]*cdp.Node),
		idIndex:  make(map[string]*cdp.Node),
	}
	d.reindex(root)
	return d
}

func (d *Document) reindex(n *cdp.Node) {
	if id := nodeAttr(n, "id"); id != "" {
		d.idIndex[id] = n
	}
	for _, c := range n.Children {
		d.parentOf[c.NodeID] = n
		d.reindex(c)
	}
	if n.ContentDocument != nil {
		d.reindex(n.ContentDocument)
	}
}

func findByName(n *cdp.Node, name string) *cdp.Node {
	if strings.EqualFold(n.NodeName, name) {
		return n
	}
	for _, c := range n.Children {
		if found := findByName(c, name); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) Body() host.Element {
	n := findByName(d.root, "BODY")
	if n == nil {
		return nil
	}
	return wrapElement(n, d)
}

func (d *Document) DocumentElement() host.Element {
	n := findByName(d.root, "HTML")
	if n == nil {
		return nil
	}
	return wrapElement(n, d)
}

func (d *Document) Title() string {
	n := findByName(d.root, "TITLE")
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

// ActiveElement resolves document.activeElement in the live tab and maps
// it back to this snapshot's tree by NodeID. Returns nil if nothing is
// focused or the live page no longer matches the snapshot.
func (d *Document) ActiveElement() host.Element {
	var remote *runtime.RemoteObject
	err := chromedp.Run(d.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, _, err := runtime.Evaluate("document.activeElement").Do(ctx)
		if err != nil {
			return err
		}
		remote = obj
		return nil
	}))
	if err != nil || remote == nil || remote.ObjectID == "" {
		return nil
	}

	var nodeID cdp.NodeID
	err = chromedp.Run(d.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		id, err := dom.RequestNode(remote.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		nodeID = id
		return nil
	}))
	if err != nil || nodeID == 0 {
		return nil
	}

	n := findByNodeID(d.root, nodeID)
	if n == nil {
		return nil
	}
	return wrapElement(n, d)
}

func findByNodeID(n *cdp.Node, id cdp.NodeID) *cdp.Node {
	if n.NodeID == id {
		return n
	}
	for _, c := range n.Children {
		if found := findByNodeID(c, id); found != nil {
			return found
		}
	}
	if n.ContentDocument != nil {
		if found := findByNodeID(n.ContentDocument, id); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) DefaultView() *host.Window {
	return &host.Window{
		GetComputedStyle: func(e host.Element) host.ComputedStyle {
			el, ok := e.(*element)
			if !ok {
				return nil
			}
			return resolveComputedStyle(d.ctx, el.node)
		},
	}
}

func textContent(n *cdp.Node) string {
	var b strings.Builder
	var walk func(*cdp.Node)
	walk = func(n *cdp.Node) {
		if n.NodeType == cdp.NodeTypeText {
			b.WriteString(n.NodeValue)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// nodeAttr reads a value out of cdp.Node.Attributes, which CDP encodes as
// a flat [name1, value1, name2, value2, ...] slice rather than a map.
func nodeAttr(n *cdp.Node, name string) string {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		if strings.EqualFold(n.Attributes[i], name) {
			return n.Attributes[i+1]
		}
	}
	return ""
}
