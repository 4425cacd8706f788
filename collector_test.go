package domsnap_test

import (
	"strings"
	"testing"

	"github.com/domsnap/domsnap"
	"github.com/domsnap/domsnap/statichost"
)

func snapshotText(t *testing.T, htmlSrc string) string {
	t.Helper()
	doc, err := statichost.ParseString(htmlSrc, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	snap := domsnap.Collect(doc, nil)
	return domsnap.Format(domsnap.BuildText(snap, nil))
}

// TestCollect_HiddenSubtreePruning is scenario S1.
func TestCollect_HiddenSubtreePruning(t *testing.T) {
	text := snapshotText(t, `<html><body>
		<button>Visible button</button>
		<div aria-hidden="true"><span>Hidden text</span><button>Hidden button</button></div>
	</body></html>`)

	if !strings.Contains(text, "Visible button") {
		t.Errorf("expected output to contain %q, got:\n%s", "Visible button", text)
	}
	if strings.Contains(text, "Hidden text") {
		t.Errorf("output unexpectedly contains %q:\n%s", "Hidden text", text)
	}
	if strings.Contains(text, "Hidden button") {
		t.Errorf("output unexpectedly contains %q:\n%s", "Hidden button", text)
	}
}

// TestCollect_VisibilityOverrideAcrossLevels is scenario S2.
func TestCollect_VisibilityOverrideAcrossLevels(t *testing.T) {
	html := `<html><body>
		<div style="visibility:visible">
		  <button>Visible L1</button>
		  <div style="visibility:hidden">
		    <button>Hidden L2</button>
		    <div style="visibility:visible">
		      <button>Visible L3</button>
		      <div style="visibility:hidden">
		        <button>Hidden L4</button>
		        <div style="visibility:visible">
		          <button>Visible L5</button>
		        </div>
		      </div>
		    </div>
		  </div>
		</div>
	</body></html>`

	doc, err := statichost.ParseString(html, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	snap := domsnap.Collect(doc, nil)
	text := domsnap.Format(domsnap.BuildText(snap, nil))

	for _, want := range []string{"Visible L1", "Visible L3", "Visible L5"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
	for _, notWant := range []string{"Hidden L2", "Hidden L4"} {
		if strings.Contains(text, notWant) {
			t.Errorf("output unexpectedly contains %q:\n%s", notWant, text)
		}
	}

	foundStableID := false
	for _, node := range snap.IDToNode {
		if node.Name == "Visible L1" && strings.HasPrefix(node.ID, "dom_") {
			foundStableID = true
		}
	}
	if !foundStableID {
		t.Error("expected the Visible L1 button node to carry an engine-assigned dom_ id")
	}
}

// TestCollect_SelectElement is scenario S3.
func TestCollect_SelectElement(t *testing.T) {
	text := snapshotText(t, `<html><body>
		<select><option value="1">First</option><option value="2" selected>Second</option></select>
	</body></html>`)

	if !strings.Contains(text, `<select> value="2"`) {
		t.Errorf("expected output to contain select/value=2 token, got:\n%s", text)
	}
	if !strings.Contains(text, `"Second"`) {
		t.Errorf("expected output to contain quoted name Second, got:\n%s", text)
	}
}

// TestCollect_FocusMarking is scenario S4.
func TestCollect_FocusMarking(t *testing.T) {
	doc, err := statichost.ParseString(`<html><body>
		<button id="b1">First</button>
		<button id="b2">Second</button>
	</body></html>`, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	doc.SetActiveElementByID("b2")

	snap := domsnap.Collect(doc, nil)
	text := domsnap.Format(domsnap.BuildText(snap, nil))

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var rootLine, firstLine, secondLine string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "RootWebArea"):
			rootLine = line
		case strings.Contains(line, `button "First"`):
			firstLine = line
		case strings.Contains(line, `button "Second"`):
			secondLine = line
		}
	}

	if !strings.HasPrefix(secondLine, "*") {
		t.Errorf("second button line should start with '*', got %q", secondLine)
	}
	if !strings.HasPrefix(firstLine, " ") {
		t.Errorf("first button line should start with a space marker, got %q", firstLine)
	}
	if !strings.HasPrefix(rootLine, "→") {
		t.Errorf("root line should be marked as a focus ancestor with '→', got %q", rootLine)
	}
}

// TestCollect_CSSPointerClickableCard is scenario S6.
func TestCollect_CSSPointerClickableCard(t *testing.T) {
	sheet, err := statichost.ParseStylesheet(`.cursor-pointer { cursor: pointer; }`)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	doc, err := statichost.ParseString(
		`<html><body><div class="cursor-pointer"><span>Left half </span><span>right half</span></div></body></html>`, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	doc.SetStylesheet(sheet)

	snap := domsnap.Collect(doc, nil)

	foundDiv := false
	for _, node := range snap.IDToNode {
		if node.TagName == "div" && strings.HasPrefix(node.ID, "dom_") {
			foundDiv = true
		}
	}
	if !foundDiv {
		t.Fatal("expected the cursor-pointer div to be retained with its own stable id")
	}

	result := domsnap.SearchAndFormat(snap, "right half", 0, domsnap.SearchOptions{})
	if result == nil {
		t.Fatal("SearchAndFormat returned nil")
	}
	if !strings.Contains(*result, "right half") {
		t.Errorf("expected result to contain matched text, got:\n%s", *result)
	}
	if !strings.Contains(*result, "✓") {
		t.Errorf("expected result to contain the check-mark prefix, got:\n%s", *result)
	}
}
