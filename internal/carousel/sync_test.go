package carousel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// navigate moves the window the way the browser does and drops tag state
// of recycled slots.
func navigate(m *Manager, loads *TagLoads, prev, cur string) Transition {
	tr := NewTransition(m.SetCurrent(photos, cur), prev, cur)
	for _, id := range tr.Mounted {
		loads.Forget(id)
	}
	return tr
}

func TestTransitionResetsOnCurrentChange(t *testing.T) {
	var (
		m     Manager
		loads TagLoads
	)
	sortInts := cmpopts.SortSlices(func(a, b int) bool { return a < b })

	first := navigate(&m, &loads, "", "C")
	if len(first.Reset) != 0 {
		t.Errorf("initial Reset = %v, want none", first.Reset)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D", "E"}, first.Mounted); diff != "" {
		t.Errorf("initial Mounted (-want +got):\n%s", diff)
	}

	// C is zoomed, then D becomes current: both views return to identity.
	next := navigate(&m, &loads, "C", "D")
	if diff := cmp.Diff([]int{2, 3}, next.Reset, sortInts); diff != "" {
		t.Errorf("Reset after advancing (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"F"}, next.Mounted); diff != "" {
		t.Errorf("Mounted after advancing (-want +got):\n%s", diff)
	}

	// Back to C, still in slot 2.
	back := navigate(&m, &loads, "D", "C")
	if diff := cmp.Diff([]int{2, 3}, back.Reset, sortInts); diff != "" {
		t.Errorf("Reset after going back (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A"}, back.Mounted); diff != "" {
		t.Errorf("Mounted after going back (-want +got):\n%s", diff)
	}

	same := navigate(&m, &loads, "C", "C")
	if len(same.Reset) != 0 || len(same.Mounted) != 0 {
		t.Errorf("unchanged current: %+v", same)
	}
}

func TestTagsRequestedAgainAfterSlotRecycled(t *testing.T) {
	var (
		m     Manager
		loads TagLoads
	)
	navigate(&m, &loads, "", "A")
	if !loads.Want("A") {
		t.Fatal("first request for A refused")
	}
	loads.Done("A", true)

	// A stays mounted while B is current.
	navigate(&m, &loads, "A", "B")
	navigate(&m, &loads, "B", "A")
	if loads.Want("A") {
		t.Error("tags of A requested again while its slot was kept")
	}

	// Walking to D frees A's slot.
	prev := "A"
	for _, id := range []string{"B", "C", "D"} {
		navigate(&m, &loads, prev, id)
		prev = id
	}
	if _, ok := m.SlotOf("A"); ok {
		t.Fatal("A still mounted at D")
	}
	for _, id := range []string{"C", "B", "A"} {
		navigate(&m, &loads, prev, id)
		prev = id
	}
	if !loads.Want("A") {
		t.Error("tags of A not requested after its slot was recycled")
	}
}

func TestTagLoads(t *testing.T) {
	var loads TagLoads
	if !loads.Want("x") {
		t.Fatal("first Want refused")
	}
	if loads.Want("x") {
		t.Error("duplicate request while one is in flight")
	}
	loads.Done("x", false)
	if !loads.Want("x") {
		t.Error("failed request not retried")
	}
	loads.Done("x", true)
	if loads.Want("x") {
		t.Error("loaded tags requested again")
	}
	loads.Forget("x")
	if !loads.Want("x") {
		t.Error("edited tags not requested again")
	}
}
