package carousel

// Transition is the slot work implied by one window update.
type Transition struct {
	// Reset holds slots that kept their photo but whose view must return to
	// identity: the photo that just became current and the one that stopped
	// being current.
	Reset []int
	// Mounted holds photos (re)assigned to a slot by the update. Anything
	// loaded for them before is gone.
	Mounted []string
}

// NewTransition compares assignments produced by SetCurrent with the
// previously current photo.
func NewTransition(as []Assignment, prevCurrent, current string) Transition {
	var t Transition
	for _, a := range as {
		if a.Fresh {
			t.Mounted = append(t.Mounted, a.PhotoID)
			continue
		}
		if prevCurrent != current && (a.PhotoID == current || a.PhotoID == prevCurrent) {
			t.Reset = append(t.Reset, a.Slot)
		}
	}
	return t
}

// TagLoads tracks which photos have their detection tags mounted and which
// tag requests are in flight.
type TagLoads struct {
	loaded   map[string]bool
	inflight map[string]bool
}

func (t *TagLoads) init() {
	if t.loaded == nil {
		t.loaded = make(map[string]bool)
		t.inflight = make(map[string]bool)
	}
}

// Want reports whether tags of id must be requested and, if so, marks the
// request in flight.
func (t *TagLoads) Want(id string) bool {
	t.init()
	if t.loaded[id] || t.inflight[id] {
		return false
	}
	t.inflight[id] = true
	return true
}

// Done records a finished request. A failed request may be retried.
func (t *TagLoads) Done(id string, ok bool) {
	t.init()
	delete(t.inflight, id)
	if ok {
		t.loaded[id] = true
	}
}

// Forget drops what is known about id, after its slot was recycled or its
// tags were edited.
func (t *TagLoads) Forget(id string) {
	t.init()
	delete(t.loaded, id)
	delete(t.inflight, id)
}
