package domsnap

// OrderedNodeMap is an insertion-order-preserving id→*Node lookup, used by
// TextSnapshot (spec.md §3.1: "idToNode is a lookup structure preserving
// insertion-order semantics").
type OrderedNodeMap struct {
	order []string
	byID  map[string]*Node
}

func newOrderedNodeMap() *OrderedNodeMap {
	return &OrderedNodeMap{byID: make(map[string]*Node)}
}

// Set inserts or overwrites id. Overwriting an existing id does not move it
// in iteration order.
func (m *OrderedNodeMap) Set(id string, node *Node) {
	if _, exists := m.byID[id]; !exists {
		m.order = append(m.order, id)
	}
	m.byID[id] = node
}

// Get looks up a node by id in O(1).
func (m *OrderedNodeMap) Get(id string) (*Node, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// Keys returns ids in insertion order.
func (m *OrderedNodeMap) Keys() []string {
	return m.order
}

// Len returns the number of entries.
func (m *OrderedNodeMap) Len() int {
	return len(m.order)
}

// BuildTextOptions mirrors the spec.md §6.2 signature's optional tabId,
// which is meaningful only to the (out-of-scope) browser-extension host
// that dispatches interactions to a specific tab; the text builder itself
// does not use it.
type BuildTextOptions struct {
	TabID string
}

// TextSnapshot is the working form BuildText derives from a Snapshot: the
// same tree, with description backfilled from placeholder where absent,
// plus a pre-computed focus-ancestor set for marker rendering.
type TextSnapshot struct {
	Root     *Node
	Index    *OrderedNodeMap
	Metadata Metadata

	// focusAncestors holds the ids of every ancestor (to the root) of any
	// focused node (spec.md §4.4's "Focus-ancestor set").
	focusAncestors map[string]bool
}

// IsFocusAncestor reports whether id is an ancestor of some focused node
// (and is not itself focused — that distinction is the caller's to make).
func (t *TextSnapshot) IsFocusAncestor(id string) bool {
	return t.focusAncestors[id]
}

// BuildText clones snap's tree into the working TextSnapshot form
// (spec.md §6.2 / §4.4 "Build step").
func BuildText(snap *Snapshot, opts *BuildTextOptions) *TextSnapshot {
	ts := &TextSnapshot{
		Index:          newOrderedNodeMap(),
		Metadata:       snap.Metadata,
		focusAncestors: make(map[string]bool),
	}

	var path []string
	ts.Root = cloneInto(snap.Root, ts, &path)
	return ts
}

// cloneInto performs the pre-order clone: copy serializable fields,
// backfill description from placeholder, insert into the index in
// traversal order, and maintain a path stack so that when a focused node
// is reached every id currently on the stack is recorded as a focus
// ancestor — this is the "parent map" design note's top-down alternative,
// avoiding back-pointers entirely (spec.md §9).
func cloneInto(node *Node, ts *TextSnapshot, path *[]string) *Node {
	clone := *node
	if clone.Description == "" && clone.Placeholder != "" {
		clone.Description = clone.Placeholder
	}
	clone.Children = nil

	ts.Index.Set(clone.ID, &clone)

	if clone.Focused != nil && *clone.Focused {
		for _, ancestorID := range *path {
			ts.focusAncestors[ancestorID] = true
		}
	}

	*path = append(*path, clone.ID)
	for _, child := range node.Children {
		clone.Children = append(clone.Children, cloneInto(child, ts, path))
	}
	*path = (*path)[:len(*path)-1]

	return &clone
}
