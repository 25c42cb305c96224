// Package carousel keeps a five-wide window of photos around the current one
// mounted in stable rendering slots and turns horizontal scrolling into
// navigation.
package carousel

import "fmt"

const (
	// Slots is the number of rendering slots.
	Slots = 5
	// Radius is how many neighbours are kept on each side of the current photo.
	Radius = 2
)

// Window returns up to radius ids on each side of currentID together with
// the index of currentID inside the window. It returns -1 when currentID is
// not in ids.
func Window(ids []string, currentID string, radius int) ([]string, int) {
	idx := -1
	for i, id := range ids {
		if id == currentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, -1
	}
	lo := max(0, idx-radius)
	hi := min(len(ids), idx+radius+1)
	out := make([]string, hi-lo)
	copy(out, ids[lo:hi])
	return out, idx - lo
}

// Arena is a fixed pool of slots.
type Arena struct {
	ids  [Slots]string
	used [Slots]bool
}

// SlotOf returns the slot held by id.
func (a *Arena) SlotOf(id string) (int, bool) {
	for i := range a.ids {
		if a.used[i] && a.ids[i] == id {
			return i, true
		}
	}
	return -1, false
}

// Allocate gives id the lowest free slot, or returns the slot it already
// holds. It reports false when every slot is taken.
func (a *Arena) Allocate(id string) (int, bool) {
	if s, ok := a.SlotOf(id); ok {
		return s, true
	}
	for i := range a.used {
		if !a.used[i] {
			a.used[i] = true
			a.ids[i] = id
			return i, true
		}
	}
	return -1, false
}

// Free releases the slot held by id.
func (a *Arena) Free(id string) bool {
	s, ok := a.SlotOf(id)
	if !ok {
		return false
	}
	a.used[s] = false
	a.ids[s] = ""
	return true
}

// Occupied returns the number of slots in use.
func (a *Arena) Occupied() int {
	n := 0
	for _, u := range a.used {
		if u {
			n++
		}
	}
	return n
}

// Assignment places one photo of the window. Slot is its rendering identity;
// Position is its left-to-right layout order.
type Assignment struct {
	PhotoID  string
	Slot     int
	Position int
	// Fresh is set when the slot was (re)assigned to this photo by the
	// update that produced the assignment.
	Fresh bool
}

// Manager assigns slots to a moving window of ids.
type Manager struct {
	arena   Arena
	window  []string
	current int
}

// SetCurrent moves the window to currentID. Ids that stay in the window keep
// their slot, ids that left free theirs, and new ids take the lowest free
// slot. Assignments are returned in Position order. An unknown currentID
// empties the window.
func (m *Manager) SetCurrent(ids []string, currentID string) []Assignment {
	window, pos := Window(ids, currentID, Radius)
	in := make(map[string]bool, len(window))
	for _, id := range window {
		in[id] = true
	}
	for _, id := range m.window {
		if !in[id] {
			m.arena.Free(id)
		}
	}

	out := make([]Assignment, 0, len(window))
	for i, id := range window {
		_, held := m.arena.SlotOf(id)
		s, ok := m.arena.Allocate(id)
		if !ok {
			panic(fmt.Sprintf("carousel: no free slot for %q (window %v)", id, window))
		}
		out = append(out, Assignment{PhotoID: id, Slot: s, Position: i, Fresh: !held})
	}
	m.window = window
	m.current = pos
	return out
}

// Window returns the ids of the current window in layout order.
func (m *Manager) Window() []string { return m.window }

// SlotOf returns the slot rendering id.
func (m *Manager) SlotOf(id string) (int, bool) { return m.arena.SlotOf(id) }

// CurrentPosition is the layout position of the current photo, or -1.
func (m *Manager) CurrentPosition() int { return m.current }

// At returns the id at a layout position.
func (m *Manager) At(pos int) (string, bool) {
	if pos < 0 || pos >= len(m.window) {
		return "", false
	}
	return m.window[pos], true
}
