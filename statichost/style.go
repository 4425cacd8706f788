package statichost

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/domsnap/domsnap/host"
)

// Rule is one injected-stylesheet rule: a CSS selector matched with
// cascadia, plus the property declarations it asserts.
type Rule struct {
	Selector     string
	Declarations map[string]string

	sel cascadia.Selector
}

// Stylesheet is an ordered list of Rules. Later rules win over earlier
// ones for a given property on a given element — a deliberately simple
// source-order cascade (no specificity computation), sufficient for
// test fixtures that need a computed `cursor: pointer` or `display: none`
// resolved from a class selector rather than an inline style attribute.
type Stylesheet struct {
	rules []*Rule
}

// ParseStylesheet parses a minimal "selector { prop: value; ... }" CSS
// subset: no @-rules, no nesting, no combinators beyond what cascadia's
// selector grammar accepts. Malformed blocks are skipped rather than
// erroring, keeping stylesheet injection a best-effort convenience.
func ParseStylesheet(css string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	for _, block := range splitBlocks(css) {
		selPart, bodyPart, ok := strings.Cut(block, "{")
		if !ok {
			continue
		}
		selText := strings.TrimSpace(selPart)
		bodyText := strings.TrimSuffix(strings.TrimSpace(bodyPart), "}")
		if selText == "" {
			continue
		}
		sel, err := cascadia.Compile(selText)
		if err != nil {
			continue
		}
		decls := parseDeclarations(bodyText)
		if len(decls) == 0 {
			continue
		}
		sheet.rules = append(sheet.rules, &Rule{
			Selector:     selText,
			Declarations: decls,
			sel:          sel,
		})
	}
	return sheet, nil
}

func splitBlocks(css string) []string {
	var blocks []string
	var current strings.Builder
	depth := 0
	for _, r := range css {
		current.WriteRune(r)
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				blocks = append(blocks, current.String())
				current.Reset()
			}
		}
	}
	return blocks
}

func parseDeclarations(body string) map[string]string {
	decls := make(map[string]string)
	for _, decl := range strings.Split(body, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		decls[prop] = value
	}
	return decls
}

// computedStyle is a host.ComputedStyle backed by an inline style
// attribute overlaid on any injected stylesheet rules matching the node,
// inline always winning (matching real CSS cascade order for the
// properties this engine actually queries: display, visibility, opacity,
// cursor), plus ancestor inheritance for the properties among those that
// the CSS spec actually inherits (see inheritedStyleProps).
type computedStyle struct {
	props map[string]string
}

func (c *computedStyle) Get(property string) string {
	if c == nil {
		return ""
	}
	return c.props[strings.ToLower(property)]
}

// inheritedStyleProps is the subset of properties this engine queries
// that CSS actually inherits from an ancestor's computed value when not
// redeclared. `visibility` is the load-bearing one: spec.md §4.1's
// visibility-hidden predicate assumes a plain descendant with no style of
// its own reports its ancestor's hidden visibility, not "not hidden" —
// exactly the way IsContentEditable (element.go) walks ancestors for
// contenteditable's "inherit" value. `cursor` inherits too; `display` and
// `opacity` do not and are deliberately left out of this set.
var inheritedStyleProps = map[string]bool{
	"visibility": true,
	"cursor":     true,
}

// ownDeclaredStyle resolves n's own declared properties — stylesheet
// rules overlaid by inline style — with no ancestor walk.
func ownDeclaredStyle(n *html.Node, sheet *Stylesheet) map[string]string {
	props := make(map[string]string)

	if sheet != nil {
		for _, rule := range sheet.rules {
			if rule.sel.Match(n) {
				for prop, val := range rule.Declarations {
					props[prop] = val
				}
			}
		}
	}

	if inline := attrVal(n, "style"); inline != "" {
		for prop, val := range parseDeclarations(inline) {
			props[prop] = val
		}
	}

	return props
}

// inheritedStyleValue walks n and its ancestors (n.Parent chain, mirroring
// element.go's IsContentEditable walk) looking for the first one that
// declares prop, the way a real inherited CSS property resolves.
func inheritedStyleValue(n *html.Node, sheet *Stylesheet, prop string) (string, bool) {
	for ; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if v, ok := ownDeclaredStyle(n, sheet)[prop]; ok {
			return v, true
		}
	}
	return "", false
}

func resolveComputedStyle(n *html.Node, sheet *Stylesheet) host.ComputedStyle {
	props := ownDeclaredStyle(n, sheet)

	for prop := range inheritedStyleProps {
		if _, ok := props[prop]; ok {
			continue
		}
		if v, ok := inheritedStyleValue(n.Parent, sheet, prop); ok {
			props[prop] = v
		}
	}

	return &computedStyle{props: props}
}
