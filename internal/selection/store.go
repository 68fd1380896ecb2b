// Package selection owns the set of selected seats, its capacity cap and its
// persistence in the local store.
package selection

import (
	"errors"
	"sync"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/storage"
)

const (
	// MaxSelections is the capacity cap.
	MaxSelections = 8

	// StorageKey is the local-store key holding the persisted selection.
	StorageKey = "seat-selections"
)

// ChangeKind describes a selection mutation.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Cleared
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// Change is delivered to subscribers after every effective mutation.
type Change struct {
	Kind   ChangeKind
	SeatID string // empty for Cleared
	Count  int
	Max    int
}

// Store is the selection set. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	ids   []string
	index map[string]bool

	backend storage.Store
	log     *logging.Logger

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for restore and write failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore restores the selection from backend. Restore is best-effort: a
// missing key starts empty, and an undecodable value is removed from the
// backend before starting empty. Errors are logged, never returned.
func NewStore(backend storage.Store, opts ...Option) *Store {
	s := &Store{
		index:   make(map[string]bool),
		backend: backend,
		log:     logging.Discard(),
		subs:    make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = storage.NewMemoryStore()
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	raw, err := s.backend.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Warn("read persisted selection: %v", err)
		return
	}

	decoded, err := Decode([]byte(raw))
	if err != nil {
		s.log.Warn("discarding persisted selection: %v", err)
		if err := s.backend.Remove(StorageKey); err != nil {
			s.log.Error("remove persisted selection: %v", err)
		}
		return
	}

	for _, id := range decoded.IDs {
		if s.index[id] {
			continue
		}
		if len(s.ids) == MaxSelections {
			s.log.Warn("persisted selection exceeds %d seats, truncating", MaxSelections)
			break
		}
		s.ids = append(s.ids, id)
		s.index[id] = true
	}
	s.log.Debug("restored %d seats (%s format)", len(s.ids), decoded.Format)
}

// Toggle removes id if selected, otherwise adds it when below the cap. At
// the cap it is a no-op. It reports whether membership changed.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	var change Change
	switch {
	case s.index[id]:
		delete(s.index, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		change = Change{Kind: Removed, SeatID: id}
	case len(s.ids) < MaxSelections:
		s.ids = append(s.ids, id)
		s.index[id] = true
		change = Change{Kind: Added, SeatID: id}
	default:
		s.mu.Unlock()
		s.log.Debug("toggle %s ignored: selection full", id)
		return false
	}
	change.Count, change.Max = len(s.ids), MaxSelections
	s.persistLocked()
	s.mu.Unlock()

	s.notify(change)
	return true
}

// Clear empties the selection and removes the persisted value.
func (s *Store) Clear() {
	s.mu.Lock()
	s.ids = nil
	s.index = make(map[string]bool)
	if err := s.backend.Remove(StorageKey); err != nil {
		s.log.Error("remove persisted selection: %v", err)
	}
	s.mu.Unlock()

	s.notify(Change{Kind: Cleared, Max: MaxSelections})
}

// IsSelected reports whether id is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index[id]
}

// Len returns the number of selected seats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Max returns the capacity cap.
func (s *Store) Max() int { return MaxSelections }

// Full reports whether the cap has been reached.
func (s *Store) Full() bool { return s.Len() >= MaxSelections }

// IDs returns a copy of the selected IDs in selection order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Ordered returns the selected seats present in l, in venue order. IDs with
// no seat in the layout are skipped.
func (s *Store) Ordered(l *layout.Layout) []layout.PositionedSeat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []layout.PositionedSeat
	for _, seat := range l.Seats() {
		if s.index[seat.ID] {
			out = append(out, seat)
		}
	}
	return out
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// persistLocked writes the current IDs. Failures are logged; the in-memory
// set stays authoritative. Callers hold s.mu.
func (s *Store) persistLocked() {
	data, err := Encode(s.ids)
	if err != nil {
		s.log.Error("encode selection: %v", err)
		return
	}
	if err := s.backend.Set(StorageKey, string(data)); err != nil {
		s.log.Error("persist selection: %v", err)
	}
}
