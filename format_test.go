package domsnap_test

import (
	"strings"
	"testing"

	"github.com/domsnap/domsnap"
)

func TestFormat_AttributeOrderAndEscaping(t *testing.T) {
	disabled := true
	checked := domsnap.TriTrue
	node := &domsnap.Node{
		ID:          "dom_x1",
		Role:        "textbox",
		Name:        `say "hi"`,
		TagName:     "input",
		Value:       "v",
		Description: "d",
		Placeholder: "p",
		Checked:     &checked,
		Disabled:    &disabled,
	}
	snap := &domsnap.Snapshot{Root: node, IDToNode: map[string]*domsnap.Node{node.ID: node}}
	line := domsnap.Format(domsnap.BuildText(snap, nil))

	want := ` uid=dom_x1 textbox "say \"hi\"" <input> value="v" desc="d" placeholder="p" checked="true" disabled` + "\n"
	if line != want {
		t.Errorf("Format() =\n%q\nwant\n%q", line, want)
	}
}

func TestFormat_SkipsEmptyGenericButRecursesIntoChildren(t *testing.T) {
	leaf := &domsnap.Node{ID: "dom_leaf", Role: domsnap.RoleStaticText, Name: "visible text"}
	wrapper := &domsnap.Node{ID: "dom_wrap", Role: "generic", TagName: "div", Children: []*domsnap.Node{leaf}}
	snap := &domsnap.Snapshot{
		Root:     wrapper,
		IDToNode: map[string]*domsnap.Node{wrapper.ID: wrapper, leaf.ID: leaf},
	}

	text := domsnap.Format(domsnap.BuildText(snap, nil))
	if strings.Contains(text, "uid=dom_wrap") {
		t.Errorf("expected the empty-named generic wrapper to be skipped, got:\n%s", text)
	}
	if !strings.Contains(text, "visible text") {
		t.Errorf("expected the StaticText child to still be rendered, got:\n%s", text)
	}
}

func TestFormat_StaticTextOmitsUID(t *testing.T) {
	leaf := &domsnap.Node{ID: "dom_leaf::text-0", Role: domsnap.RoleStaticText, Name: "hello world"}
	root := &domsnap.Node{ID: "dom_root", Role: domsnap.RoleRootWebArea, TagName: "body", Children: []*domsnap.Node{leaf}}
	snap := &domsnap.Snapshot{Root: root, IDToNode: map[string]*domsnap.Node{root.ID: root, leaf.ID: leaf}}

	text := domsnap.Format(domsnap.BuildText(snap, nil))
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.Contains(line, "hello world") && strings.Contains(line, "uid=") {
			t.Errorf("StaticText line must not carry uid=, got %q", line)
		}
	}
}
