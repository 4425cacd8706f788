package domsnap_test

import (
	"strings"
	"testing"

	"github.com/domsnap/domsnap"
	"github.com/domsnap/domsnap/statichost"
)

func buildSnapshotFromHTML(t *testing.T, htmlSrc string) *domsnap.Snapshot {
	t.Helper()
	doc, err := statichost.ParseString(htmlSrc, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return domsnap.Collect(doc, nil)
}

// fixedText is the textual snapshot given verbatim in spec.md §8.2's S5.
const fixedText = "" +
	"→uid=root RootWebArea \"Test Page\" <body>\n" +
	" uid=btn1 button \"Submit Form\" <button>\n" +
	" uid=btn2 button \"Cancel\" <button>\n" +
	" uid=input1 textbox \"Email\" <input> desc=\"Enter your email\"\n"

// TestSearchSnapshotText_AlternationWithContext is scenario S5.
func TestSearchSnapshotText_AlternationWithContext(t *testing.T) {
	result := domsnap.SearchSnapshotText(fixedText, "Submit | Cancel", domsnap.SearchOptions{})

	if result.TotalMatches != 2 {
		t.Fatalf("TotalMatches = %d, want 2", result.TotalMatches)
	}
	if !containsInt(result.MatchedLines, 1) || !containsInt(result.MatchedLines, 2) {
		t.Fatalf("MatchedLines = %v, want lines 1 and 2 (btn1, btn2)", result.MatchedLines)
	}

	withContext := domsnap.SearchSnapshotText(fixedText, "Submit | Cancel", domsnap.SearchOptions{ContextLevels: 1})
	if !containsInt(withContext.ContextLines, 0) {
		t.Errorf("ContextLines = %v, want it to include line 0 (root)", withContext.ContextLines)
	}
	if !containsInt(withContext.ContextLines, 3) {
		t.Errorf("ContextLines = %v, want it to include line 3 (input)", withContext.ContextLines)
	}
}

func TestSearchSnapshotText_CaseInsensitiveByDefault(t *testing.T) {
	mixed := domsnap.SearchSnapshotText(fixedText, "submit", domsnap.SearchOptions{})
	exact := domsnap.SearchSnapshotText(strings.ToLower(fixedText), "submit", domsnap.SearchOptions{CaseSensitive: true})
	if mixed.TotalMatches != exact.TotalMatches {
		t.Errorf("case-insensitive default diverged from lower-cased exact match: %d vs %d", mixed.TotalMatches, exact.TotalMatches)
	}
}

func TestSearchSnapshotText_GlobAlternation(t *testing.T) {
	result := domsnap.SearchSnapshotText(fixedText, `*{Submit,Cancel}*`, domsnap.SearchOptions{})
	if result.TotalMatches != 2 {
		t.Fatalf("TotalMatches = %d, want 2 for brace-alternation glob", result.TotalMatches)
	}
}

func TestSearchSnapshotText_EmptyQuery(t *testing.T) {
	result := domsnap.SearchSnapshotText(fixedText, "", domsnap.SearchOptions{})
	if result.TotalMatches != 0 {
		t.Errorf("empty query should produce no matches, got %d", result.TotalMatches)
	}
}

func TestSearchAndFormat_NoMatches(t *testing.T) {
	snap := buildSnapshotFromHTML(t, `<html><body><button>Hello</button></body></html>`)
	result := domsnap.SearchAndFormat(snap, "zzz-not-present", 0, domsnap.SearchOptions{})
	if result == nil || !strings.HasPrefix(*result, "No matches found") {
		t.Fatalf("expected a \"No matches found\" result, got %v", result)
	}
}

func TestSearchAndFormat_NilSnapshot(t *testing.T) {
	if result := domsnap.SearchAndFormat(nil, "anything", 0, domsnap.SearchOptions{}); result != nil {
		t.Errorf("expected nil for a nil snapshot, got %v", *result)
	}
}

func containsInt(xs []int, want int) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
