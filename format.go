package domsnap

import "strings"

// interactiveOrImageRoles is the "should emit in output" role set — the
// union of the interactive-role set (spec.md §4.2) with the image roles,
// used only to decide which lines the formatter prints, independently of
// shouldIncludeElement's tree-shape decision (spec.md §4.4).
var interactiveOrImageRoles = func() map[string]bool {
	m := make(map[string]bool, len(InteractiveRoles)+2)
	for role := range InteractiveRoles {
		m[role] = true
	}
	m["image"] = true
	m["img"] = true
	return m
}()

// Format renders a TextSnapshot into the bit-exact textual form described
// by spec.md §6.5. The grammar is stable by construction: attribute order
// is fixed, indentation is two spaces per level as mapped by indentLevel,
// and escaping is limited to inner double quotes.
func Format(ts *TextSnapshot) string {
	var b strings.Builder
	formatNode(&b, ts, ts.Root, 0)
	return b.String()
}

func formatNode(b *strings.Builder, ts *TextSnapshot, node *Node, depth int) {
	if shouldEmitLine(node) {
		b.WriteString(strings.Repeat("  ", indentLevel(depth)))
		b.WriteString(marker(ts, node))
		writeBody(b, node)
		b.WriteByte('\n')
	}

	for _, child := range node.Children {
		formatNode(b, ts, child, depth+1)
	}
}

// indentLevel maps tree depth to the number of two-space indentation
// units spec.md §4.4's worked example actually uses: the root (depth 0)
// and its direct children (depth 1) both render flush with the marker
// column, and indentation grows two spaces per level from there on.
func indentLevel(depth int) int {
	if depth <= 1 {
		return 0
	}
	return depth - 1
}

// shouldEmitLine implements spec.md §4.4's "should emit in output" filter.
func shouldEmitLine(node *Node) bool {
	if node.Role == RoleRootWebArea {
		return true
	}
	if interactiveOrImageRoles[node.Role] {
		return true
	}
	trimmedName := strings.TrimSpace(node.Name)
	if node.Role == RoleStaticText {
		return len(trimmedName) >= 2
	}
	return len(trimmedName) > 1
}

// marker implements spec.md §4.4's line-marker column. It returns a string
// since "→" is multi-byte in UTF-8.
func marker(ts *TextSnapshot, node *Node) string {
	if node.Focused != nil && *node.Focused {
		return "*"
	}
	if ts.IsFocusAncestor(node.ID) {
		return "→"
	}
	return " "
}

// writeBody writes everything after the marker: uid=, role, name, tag and
// attributes in the fixed order from spec.md §6.5's ATTRS grammar.
func writeBody(b *strings.Builder, node *Node) {
	if node.Role != RoleStaticText {
		b.WriteString("uid=")
		b.WriteString(node.ID)
		b.WriteByte(' ')
	}
	b.WriteString(node.Role)

	b.WriteString(` "`)
	b.WriteString(escapeQuotes(node.Name))
	b.WriteByte('"')

	if node.TagName != "" {
		b.WriteString(" <")
		b.WriteString(node.TagName)
		b.WriteByte('>')
	}

	if node.Value != "" {
		writeAttr(b, "value", node.Value)
	}
	if node.Description != "" {
		writeAttr(b, "desc", node.Description)
	}
	if node.Placeholder != "" {
		writeAttr(b, "placeholder", node.Placeholder)
	}
	if node.Checked != nil {
		writeAttr(b, "checked", string(*node.Checked))
	}
	if node.Pressed != nil {
		writeAttr(b, "pressed", string(*node.Pressed))
	}
	if node.Disabled != nil && *node.Disabled {
		b.WriteString(" disabled")
	}
	if node.Selected != nil && *node.Selected {
		b.WriteString(" selected")
	}
	if node.Expanded != nil && *node.Expanded {
		b.WriteString(" expanded")
	}
	if node.Focused != nil && *node.Focused {
		b.WriteString(" focused")
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(escapeQuotes(value))
	b.WriteByte('"')
}

func escapeQuotes(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	return strings.ReplaceAll(s, `"`, `\"`)
}
