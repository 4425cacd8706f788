package domsnap

import (
	"strings"
	"time"

	"github.com/domsnap/domsnap/host"
	"github.com/rs/zerolog"
)

// nowMillisFunc is a seam for tests; production code always uses wall time.
var nowMillisFunc = func() int64 { return time.Now().UnixMilli() }

// Collect walks doc and produces a Snapshot (spec.md §6.1). It never
// returns an error: malformed subtrees produce empty subtrees.
func Collect(doc host.Document, partial *PartialCollectorOptions) *Snapshot {
	return CollectWithLogger(doc, partial, zerolog.Nop())
}

// CollectWithLogger is Collect with an explicit logger (zero value disables
// logging, matching zerolog's own convention — see SPEC_FULL.md §B).
func CollectWithLogger(doc host.Document, partial *PartialCollectorOptions, log zerolog.Logger) *Snapshot {
	opts := ResolveOptions(partial)
	now := nowMillisFunc()

	c := &collector{
		doc:      doc,
		win:      doc.DefaultView(),
		opts:     opts,
		now:      now,
		idToNode: make(map[string]*Node),
		log:      log,
	}

	rootEl := doc.Body()
	if rootEl == nil {
		rootEl = doc.DocumentElement()
	}

	root := &Node{Role: RoleRootWebArea}
	if rootEl != nil {
		root.ID = assignElementID(rootEl, now)
		root.TagName = strings.ToLower(rootEl.TagName())
		children, _ := c.gatherChildren(rootEl, root.ID)
		root.Children = children
	}
	c.idToNode[root.ID] = root

	log.Debug().Int("nodes", len(c.idToNode)).Msg("collect complete")

	return &Snapshot{
		Root:       root,
		IDToNode:   c.idToNode,
		TotalNodes: len(c.idToNode),
		Timestamp:  now,
		Metadata: Metadata{
			Title:       doc.Title(),
			URL:         doc.URL(),
			CollectedAt: time.UnixMilli(now).UTC().Format(time.RFC3339),
			Options:     opts,
		},
	}
}

type collector struct {
	doc      host.Document
	win      *host.Window
	opts     CollectorOptions
	now      int64
	idToNode map[string]*Node
	log      zerolog.Logger
}

// walkElement implements spec.md §4.3's per-element walk, returning the
// nodes that replace el at its position in the parent's child list (zero,
// one, or — for a collapsed wrapper with multiple surviving children — a
// synthetic node) plus whether any retained descendant asserted
// visibility:visible.
func (c *collector) walkElement(el host.Element) ([]*Node, bool) {
	tag := strings.ToLower(el.TagName())

	if isSkipTag(tag) {
		return nil, false
	}
	if !c.opts.IncludeHidden && isHardHidden(c.win, el) {
		return nil, false
	}

	elID := assignElementID(el, c.now)

	var children []*Node
	var hasVis bool
	if tag == "iframe" {
		children, hasVis = c.gatherIframeChildren(el)
	} else {
		children, hasVis = c.gatherChildren(el, elID)
	}

	selfVisHidden := isVisibilityHidden(c.win, el)
	subtreeHasVisible := !selfVisHidden || hasVis
	if selfVisHidden && !hasVis {
		return nil, false
	}

	role := resolveRole(el)
	name := resolveAccessibleName(c.doc, el, role)

	includeSelf := c.shouldIncludeElement(el, role, name)

	if !includeSelf {
		switch len(children) {
		case 0:
			return nil, subtreeHasVisible
		case 1:
			return children, subtreeHasVisible
		default:
			synthetic := &Node{
				ID:        elID,
				Role:      role,
				TagName:   tag,
				Children:  children,
				Synthetic: true,
			}
			c.idToNode[elID] = synthetic
			return []*Node{synthetic}, subtreeHasVisible
		}
	}

	node := c.buildNode(el, elID, tag, role, name)
	node.Children = children
	c.idToNode[elID] = node
	return []*Node{node}, subtreeHasVisible
}

// gatherChildren recurses into el's element children (document order) and,
// if enabled, appends StaticText leaves extracted from el's direct text
// node children — element children first, text children after, per
// spec.md invariant 4.
func (c *collector) gatherChildren(el host.Element, elID string) ([]*Node, bool) {
	var children []*Node
	hasVis := false

	for _, childEl := range el.Children() {
		nodes, vis := c.walkElement(childEl)
		children = append(children, nodes...)
		hasVis = hasVis || vis
	}

	if c.opts.CaptureTextNodes {
		for k, child := range el.ChildNodes() {
			if child.Kind() != host.TextNode {
				continue
			}
			text := normalizeText(child.TextData())
			if text == "" {
				continue
			}
			tid := textNodeID(elID, k)
			textNode := &Node{ID: tid, Role: RoleStaticText, Name: text}
			c.idToNode[tid] = textNode
			children = append(children, textNode)
		}
	}

	return children, hasVis
}

// gatherIframeChildren implements spec.md §4.1's iframe policy: same-origin
// frames recurse into their own document (to arbitrary depth), cross-origin
// access failures (ContentDocument returning ok=false) yield no children.
func (c *collector) gatherIframeChildren(el host.Element) ([]*Node, bool) {
	fe, ok := el.(host.FrameElement)
	if !ok {
		return nil, false
	}
	contentDoc, ok := fe.ContentDocument()
	if !ok || contentDoc == nil {
		return nil, false
	}

	rootEl := contentDoc.Body()
	if rootEl == nil {
		rootEl = contentDoc.DocumentElement()
	}
	if rootEl == nil {
		return nil, false
	}

	nested := &collector{
		doc:      contentDoc,
		win:      contentDoc.DefaultView(),
		opts:     c.opts,
		now:      c.now,
		idToNode: c.idToNode,
		log:      c.log,
	}
	rootID := assignElementID(rootEl, c.now)
	return nested.gatherChildren(rootEl, rootID)
}

// shouldIncludeElement implements spec.md §4.3's nine-rule "retain self"
// predicate, short-circuiting on the first satisfied rule.
func (c *collector) shouldIncludeElement(el host.Element, role, name string) bool {
	if !c.opts.IncludeHidden && !weakShouldIncludeSelf(c.win, el) {
		return false
	}

	if InteractiveRoles[role] {
		return true
	}
	if InteractiveTags[strings.ToLower(el.TagName())] {
		return true
	}
	if el.IsContentEditable() {
		return true
	}
	if hasPointerCursor(c.win, el) {
		return true
	}
	if role == "image" {
		if alt, ok := el.Attr("alt"); ok && alt != "" {
			return true
		}
	}
	if hasExplicitLabel(c.doc, el) {
		return true
	}
	if !LayoutRoles[role] && len(strings.TrimSpace(name)) > 1 {
		return true
	}
	if !LayoutRoles[role] && len(normalizeText(visibleTextContent(el))) >= 2 {
		return true
	}

	return false
}

// buildNode populates every field the field-population rules (spec.md
// §4.3, §3.1) define for a retained element node. Children are attached by
// the caller.
func (c *collector) buildNode(el host.Element, id, tag, role, name string) *Node {
	node := &Node{
		ID:      id,
		Role:    role,
		Name:    name,
		TagName: tag,
	}

	if title, ok := el.Attr("title"); ok {
		node.Title = title
	}
	node.Disabled = resolveDisabled(el)
	node.Pressed = resolveAriaTriState(el, "aria-pressed")
	node.Expanded = resolveAriaBool(el, "aria-expanded")
	node.Selected = resolveAriaBool(el, "aria-selected")
	node.Focused = resolveFocused(c.doc, el)

	switch tag {
	case "input":
		c.populateInput(el, node)
	case "textarea":
		c.populateTextarea(el, node)
	case "select":
		c.populateSelect(el, node)
	case "a":
		if href, ok := el.Attr("href"); ok {
			node.Href = href
		}
	case "img":
		if alt, ok := el.Attr("alt"); ok {
			node.Description = alt
		}
	}

	if el.IsContentEditable() {
		node.Value = normalizeText(visibleTextContent(el))
	}

	if isInteractive(el, role) {
		visible := normalizeText(visibleTextContent(el))
		if visible != strings.TrimSpace(name) {
			node.TextContent = truncate(visible, c.opts.MaxTextLength)
			node.HasText = true
		}
	}

	return node
}

func (c *collector) populateInput(el host.Element, node *Node) {
	inputType := normalizedInputType(el)
	node.InputType = inputType

	if placeholder, ok := el.Attr("placeholder"); ok {
		node.Placeholder = placeholder
	}

	value, _ := el.Attr("value")
	switch inputType {
	case "password":
		node.Value = strings.Repeat("*", len([]rune(value)))
	case "checkbox", "radio":
		node.Checked = resolveChecked(el)
	default:
		node.Value = value
	}

	if (inputType == "submit" || inputType == "button") && strings.TrimSpace(node.Name) == "" {
		if value != "" {
			node.Name = value
		} else {
			node.Name = "Submit"
		}
	}
}

func (c *collector) populateTextarea(el host.Element, node *Node) {
	node.InputType = "textarea"
	if placeholder, ok := el.Attr("placeholder"); ok {
		node.Placeholder = placeholder
	}
	if value, ok := el.Attr("value"); ok && value != "" {
		node.Value = value
	} else {
		node.Value = normalizeText(visibleTextContent(el))
	}
}

func (c *collector) populateSelect(el host.Element, node *Node) {
	node.InputType = "select"
	options := findOptions(el)

	var selected []host.Element
	for _, opt := range options {
		if hasAttr(opt, "selected") {
			selected = append(selected, opt)
		}
	}
	if len(selected) == 0 && len(options) > 0 {
		selected = options[:1]
	}

	var values, names []string
	for _, opt := range selected {
		if v, ok := opt.Attr("value"); ok {
			values = append(values, v)
		}
		label := opt.Attrs()["label"]
		if label == "" {
			label = normalizeText(visibleTextContent(opt))
		}
		if label != "" {
			names = append(names, label)
		}
	}

	node.Value = strings.Join(values, ", ")
	if joined := strings.Join(names, ", "); joined != "" {
		node.Name = joined
	}
}

// findOptions finds descendant <option> elements (recursing through
// <optgroup> wrappers), in document order.
func findOptions(el host.Element) []host.Element {
	var result []host.Element
	for _, child := range el.Children() {
		if strings.EqualFold(child.TagName(), "option") {
			result = append(result, child)
			continue
		}
		result = append(result, findOptions(child)...)
	}
	return result
}

func resolveDisabled(el host.Element) *bool {
	if v, ok := el.Attr("aria-disabled"); ok {
		b := strings.EqualFold(v, "true")
		return &b
	}
	if hasAttr(el, "disabled") {
		t := true
		return &t
	}
	return nil
}

func resolveAriaBool(el host.Element, attr string) *bool {
	v, ok := el.Attr(attr)
	if !ok {
		return nil
	}
	b := strings.EqualFold(v, "true")
	return &b
}

func resolveAriaTriState(el host.Element, attr string) *TriState {
	v, ok := el.Attr(attr)
	if !ok {
		return nil
	}
	var ts TriState
	switch strings.ToLower(v) {
	case "true":
		ts = TriTrue
	case "mixed":
		ts = TriMixed
	default:
		ts = TriFalse
	}
	return &ts
}

func resolveChecked(el host.Element) *TriState {
	if v, ok := el.Attr("aria-checked"); ok {
		var ts TriState
		switch strings.ToLower(v) {
		case "true":
			ts = TriTrue
		case "mixed":
			ts = TriMixed
		default:
			ts = TriFalse
		}
		return &ts
	}
	var ts TriState
	if hasAttr(el, "indeterminate") {
		ts = TriMixed
	} else if hasAttr(el, "checked") {
		ts = TriTrue
	} else {
		ts = TriFalse
	}
	return &ts
}

func resolveFocused(doc host.Document, el host.Element) *bool {
	active := doc.ActiveElement()
	if active == nil {
		return nil
	}
	// Hosts hand out a fresh wrapper per lookup, so identity is decided by
	// the stable id both wrappers read from the same underlying element.
	focused := active == el
	if !focused {
		if activeID, ok := active.Attr(StableIDAttr); ok && activeID != "" {
			elID, _ := el.Attr(StableIDAttr)
			focused = activeID == elID
		}
	}
	if !focused {
		return nil
	}
	return &focused
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

// GetSnapshotStats returns operational telemetry about a Snapshot, ported
// from the teacher's GetSnapshotStats for the new Node/Snapshot shape
// (SPEC_FULL.md §D.4).
func GetSnapshotStats(snap *Snapshot) map[string]int {
	interactive := 0
	for _, node := range snap.IDToNode {
		if InteractiveRoles[node.Role] {
			interactive++
		}
	}
	return map[string]int{
		"nodes":        snap.TotalNodes,
		"interactive":  interactive,
		"tokensApprox": approxTokens(snap),
	}
}

func approxTokens(snap *Snapshot) int {
	chars := 0
	for _, node := range snap.IDToNode {
		chars += len(node.Name) + len(node.TextContent) + len(node.Value)
	}
	return chars / 4
}
