// Package host defines the Document-shaped seam the snapshot engine
// consumes. It has no implementation of its own: domsnap/statichost backs
// it with a parsed static HTML document, domsnap/cdphost backs it with a
// live Chrome tab over the DevTools protocol.
package host

// NodeKind distinguishes the two kinds of DOM node the engine cares about.
type NodeKind int

const (
	// ElementNode is a tag node (Element() is non-nil).
	ElementNode NodeKind = iota
	// TextNode is a text node (TextData() is meaningful).
	TextNode
)

// Node is either an Element or a text node, matching childNodes semantics.
type Node interface {
	Kind() NodeKind
	Element() Element // nil unless Kind() == ElementNode
	TextData() string // "" unless Kind() == TextNode
}

// Element is a single DOM element.
type Element interface {
	TagName() string // lower-case, e.g. "div"
	Attr(name string) (string, bool)
	Attrs() map[string]string
	SetAttr(name, value string)

	// ChildNodes returns direct children in document order, element and
	// text nodes interleaved exactly as the live DOM would iterate them.
	ChildNodes() []Node
	// Children returns only the element children, in document order.
	Children() []Element
	Parent() Element

	// IsContentEditable reports the resolved contenteditable state.
	IsContentEditable() bool
}

// Window exposes the one host capability the engine needs beyond the tree:
// computed style. A nil Window (or one whose GetComputedStyle returns nil)
// means "host absent" per spec.md §7 — the engine treats the element as
// not hidden and not visibility:hidden.
type Window struct {
	GetComputedStyle func(e Element) ComputedStyle
}

// ComputedStyle answers individual CSS property queries. A nil
// ComputedStyle is equivalent to every property being its initial value.
type ComputedStyle interface {
	Get(property string) string
}

// FrameElement is implemented by <iframe>-like elements that can expose a
// nested document. Collect type-asserts for it; an element that doesn't
// implement it (or whose ContentDocument returns ok=false, e.g. a
// cross-origin frame whose access throws) is emitted with no children,
// per spec.md §4.1's iframe policy.
type FrameElement interface {
	ContentDocument() (Document, bool)
}

// Document is the root host object passed to Collect.
type Document interface {
	Body() Element
	DocumentElement() Element
	Title() string
	URL() string
	GetElementByID(id string) (Element, bool)
	ActiveElement() Element // nil if nothing is focused
	DefaultView() *Window   // nil if no computed-style capability exists
}
