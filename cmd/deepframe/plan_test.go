package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	f := planFlags{
		imageW: 4000, imageH: 3000,
		viewportW: 1000, viewportH: 1000,
		scale: 1, maxLevel: 5,
		photoID: "abc", quality: 85,
	}
	if err := printPlan(&buf, f); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	// Grid is 4000 * 0.25 = 1000px, level ceil(log2(1000/256)) = 2.
	if !strings.Contains(out, "level 2, grid 1000.0px at 0.0,0.0, tiles active: false") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if got := strings.Count(out, "/thumbnailer/tile/abc/2/"); got != 16 {
		t.Errorf("printed %d tiles, want 16:\n%s", got, out)
	}
}

func TestPrintPlanNotReady(t *testing.T) {
	var buf bytes.Buffer
	if err := printPlan(&buf, planFlags{imageW: 100, imageH: 100, scale: 1}); err == nil {
		t.Error("printPlan with a zero viewport succeeded")
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"view", "serve", "plan", "catalog", "remote"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("Find(%s) = %v, %v", name, c, err)
		}
	}
}
