package domsnap

import (
	"strconv"
	"strings"

	"github.com/domsnap/domsnap/host"
)

// skipTags are never visited — no text extraction, no children, no node.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
	"meta":     true,
	"link":     true,
}

func isSkipTag(tag string) bool {
	return skipTags[strings.ToLower(tag)]
}

// computedStyle resolves a style for el against win, tolerating a missing
// host capability (spec.md §7: "Host absent" -> not hidden, not
// visibility:hidden, and visible).
func computedStyle(win *host.Window, el host.Element) host.ComputedStyle {
	if win == nil || win.GetComputedStyle == nil {
		return nil
	}
	return win.GetComputedStyle(el)
}

func styleGet(cs host.ComputedStyle, prop string) string {
	if cs == nil {
		return ""
	}
	return cs.Get(prop)
}

func hasAttr(el host.Element, name string) bool {
	_, ok := el.Attr(name)
	return ok
}

func attrIs(el host.Element, name, value string) bool {
	v, ok := el.Attr(name)
	return ok && strings.EqualFold(v, value)
}

// isHardHidden implements spec.md §4.1's hard-hidden predicate.
func isHardHidden(win *host.Window, el host.Element) bool {
	if attrIs(el, "aria-hidden", "true") {
		return true
	}
	if hasAttr(el, "hidden") {
		return true
	}
	if hasAttr(el, "inert") {
		return true
	}
	cs := computedStyle(win, el)
	if cs == nil {
		return false
	}
	return styleGet(cs, "display") == "none"
}

// isVisibilityHidden implements the softer visibility predicate. It must
// not be used to prune eagerly — see walkElement's post-order check.
func isVisibilityHidden(win *host.Window, el host.Element) bool {
	cs := computedStyle(win, el)
	if cs == nil {
		return false
	}
	v := styleGet(cs, "visibility")
	return v == "hidden" || v == "collapse"
}

// weakShouldIncludeSelf is the "should include self" visibility check used
// only to decide whether to emit a node, never to prune its children.
func weakShouldIncludeSelf(win *host.Window, el host.Element) bool {
	cs := computedStyle(win, el)
	if cs == nil {
		return true
	}
	if styleGet(cs, "display") == "none" {
		return false
	}
	if v := styleGet(cs, "visibility"); v == "hidden" || v == "collapse" {
		return false
	}
	if op := styleGet(cs, "opacity"); op != "" {
		if f, err := strconv.ParseFloat(op, 64); err == nil && f == 0 {
			return false
		}
	}
	return true
}

// hasPointerCursor reports whether the element's computed cursor is
// "pointer" — spec.md §4.3 rule 5, catching CSS-driven clickable
// containers such as cards and rows.
func hasPointerCursor(win *host.Window, el host.Element) bool {
	cs := computedStyle(win, el)
	if cs == nil {
		return false
	}
	return styleGet(cs, "cursor") == "pointer"
}
