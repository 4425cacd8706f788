// Package domsnap produces a compact, stable, textual representation of a
// live HTML document for consumption by an LLM driving browser automation,
// and supports targeted substring/glob queries over that representation.
//
// The engine is a pure, total transformer: collect walks a host.Document
// once and emits a Snapshot; BuildText/Format turn a Snapshot into the
// canonical text form; SearchSnapshotText/SearchAndFormat query that text.
// None of it ever panics or returns an error for malformed input — a
// malformed subtree produces an empty subtree, not a failure.
package domsnap

// TriState models the three-valued ARIA states (checked, pressed) where
// "mixed" is distinct from both true and false.
type TriState string

const (
	TriTrue  TriState = "true"
	TriFalse TriState = "false"
	TriMixed TriState = "mixed"
)

// Node is the unit of the semantic tree. Only ID, Role and Children are
// always meaningful; every other field is the empty value when absent.
type Node struct {
	ID          string
	Role        string
	Name        string
	Value       string
	Description string
	TextContent string
	HasText     bool // TextContent was populated (distinguishes "" from absent)
	TagName     string
	InputType   string
	Placeholder string
	Href        string
	Title       string

	Checked  *TriState
	Pressed  *TriState
	Disabled *bool
	Expanded *bool
	Selected *bool
	Focused  *bool

	Children []*Node

	// Synthetic marks a node the collector created to hold multiple
	// lifted children of a non-retained wrapper (spec.md §4.3 step 7).
	Synthetic bool
}

// RoleStaticText is the pseudo-role for a bare text-node leaf.
const RoleStaticText = "StaticText"

// RoleRootWebArea is the snapshot root's role.
const RoleRootWebArea = "RootWebArea"

// Metadata captures the context a Snapshot was collected under.
type Metadata struct {
	Title       string
	URL         string
	CollectedAt string // ISO-8601
	Options     CollectorOptions
}

// Snapshot is a whole-document capture produced by Collect.
type Snapshot struct {
	Root       *Node
	IDToNode   map[string]*Node
	TotalNodes int
	Timestamp  int64 // epoch ms
	Metadata   Metadata
}

// CollectorOptions configures Collect. Zero value is not meaningful on its
// own — use DefaultCollectorOptions or ResolveOptions.
type CollectorOptions struct {
	MaxTextLength    int
	IncludeHidden    bool
	CaptureTextNodes bool
}

// PartialCollectorOptions mirrors CollectorOptions but every field is a
// pointer, so a nil field means "use the default" and a non-nil field
// means "caller override" — this is how spec.md §4.3's "options passed
// with undefined fields preserve defaults" is expressed in Go.
type PartialCollectorOptions struct {
	MaxTextLength    *int
	IncludeHidden    *bool
	CaptureTextNodes *bool
}

// DefaultCollectorOptions returns the spec.md §4.3 defaults.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		MaxTextLength:    160,
		IncludeHidden:    false,
		CaptureTextNodes: true,
	}
}

// ResolveOptions merges opts over the defaults, leaving every nil field at
// its default value.
func ResolveOptions(opts *PartialCollectorOptions) CollectorOptions {
	resolved := DefaultCollectorOptions()
	if opts == nil {
		return resolved
	}
	if opts.MaxTextLength != nil {
		resolved.MaxTextLength = *opts.MaxTextLength
	}
	if opts.IncludeHidden != nil {
		resolved.IncludeHidden = *opts.IncludeHidden
	}
	if opts.CaptureTextNodes != nil {
		resolved.CaptureTextNodes = *opts.CaptureTextNodes
	}
	return resolved
}
