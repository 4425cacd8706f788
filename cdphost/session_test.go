package cdphost_test

import (
	"testing"

	"github.com/domsnap/domsnap"
	"github.com/domsnap/domsnap/cdphost"
)

// TestSession_NavigateAndCollect is an integration test: it launches a
// real headless Chrome, so it is skipped in short mode the same way the
// teacher's backend tests skip browser-dependent cases.
func TestSession_NavigateAndCollect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	session, err := cdphost.Launch(cdphost.LaunchOptions{Headless: true})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	defer session.Close()

	doc, err := session.Navigate("data:text/html,<html><body><button>Submit</button></body></html>")
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	snap := domsnap.Collect(doc, nil)
	if snap.TotalNodes == 0 {
		t.Fatal("Collect() returned an empty snapshot")
	}

	found := false
	for _, n := range snap.IDToNode {
		if n.Role == "button" && n.Name == "Submit" {
			found = true
		}
	}
	if !found {
		t.Error("expected a button node named Submit in the snapshot")
	}
}
