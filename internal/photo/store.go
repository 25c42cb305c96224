package photo

import (
	"sync"

	"github.com/electronjoe/deepframe/internal/bbox"
)

// Store is the ordered photo list being browsed, each photo's rotation and
// the current index. Observers are told about every change.
type Store struct {
	mu       sync.RWMutex
	ids      []string
	entries  map[string]Entry
	rotation map[string]int
	index    int

	nextSub int
	subs    map[int]func()
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		entries:  make(map[string]Entry),
		rotation: make(map[string]int),
		subs:     make(map[int]func()),
	}
}

// SetPhotos replaces the list. The current photo stays current when it is
// still present; otherwise the index is clamped into the new list.
func (s *Store) SetPhotos(entries []Entry) {
	s.mu.Lock()
	var current string
	if s.index >= 0 && s.index < len(s.ids) {
		current = s.ids[s.index]
	}
	s.ids = make([]string, 0, len(entries))
	s.entries = make(map[string]Entry, len(entries))
	s.rotation = make(map[string]int, len(entries))
	for _, e := range entries {
		if _, dup := s.entries[e.ID]; dup {
			continue
		}
		s.ids = append(s.ids, e.ID)
		s.entries[e.ID] = e
		s.rotation[e.ID] = bbox.Normalize(e.Rotation)
	}
	s.index = clampIndex(s.index, len(s.ids))
	for i, id := range s.ids {
		if id == current {
			s.index = i
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// IDs returns a copy of the ordered ids.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len is the number of photos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Index is the current index.
func (s *Store) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Current returns the current photo.
func (s *Store) Current() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ids) == 0 {
		return Entry{}, false
	}
	return s.entryLocked(s.ids[s.index]), true
}

// Entry returns a photo by id with its current rotation.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.entries[id]; !ok {
		return Entry{}, false
	}
	return s.entryLocked(id), true
}

func (s *Store) entryLocked(id string) Entry {
	e := s.entries[id]
	e.Rotation = s.rotation[id]
	return e
}

// SetIndex makes the photo at i current.
func (s *Store) SetIndex(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.ids) || i == s.index {
		s.mu.Unlock()
		return false
	}
	s.index = i
	s.mu.Unlock()
	s.notify()
	return true
}

// SetCurrentID makes id current.
func (s *Store) SetCurrentID(id string) bool {
	s.mu.RLock()
	idx := -1
	for i, v := range s.ids {
		if v == id {
			idx = i
			break
		}
	}
	s.mu.RUnlock()
	if idx < 0 {
		return false
	}
	return s.SetIndex(idx)
}

// Next moves one photo forward, wrapping to the start when wrap is set.
func (s *Store) Next(wrap bool) bool {
	n, i := s.Len(), s.Index()
	if i+1 < n {
		return s.SetIndex(i + 1)
	}
	if wrap {
		return s.SetIndex(0)
	}
	return false
}

// Prev moves one photo back, wrapping to the end when wrap is set.
func (s *Store) Prev(wrap bool) bool {
	n, i := s.Len(), s.Index()
	if i > 0 {
		return s.SetIndex(i - 1)
	}
	if wrap {
		return s.SetIndex(n - 1)
	}
	return false
}

// Rotation returns the rotation of id in degrees.
func (s *Store) Rotation(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotation[id]
}

// SetRotation records a rotation edit for id.
func (s *Store) SetRotation(id string, deg int) bool {
	s.mu.Lock()
	if _, ok := s.entries[id]; !ok {
		s.mu.Unlock()
		return false
	}
	deg = bbox.Normalize(deg)
	if s.rotation[id] == deg {
		s.mu.Unlock()
		return false
	}
	s.rotation[id] = deg
	s.mu.Unlock()
	s.notify()
	return true
}

// Subscribe registers fn to run after every change.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
