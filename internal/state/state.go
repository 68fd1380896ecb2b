// Package state provides thread-safe session state for the application: the
// loaded venue, its projected layout and a log of booking activity.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/venue"
)

// EventType represents the type of session event.
type EventType string

const (
	EventVenueLoaded      EventType = "VENUE_LOADED"
	EventLoadFailed       EventType = "LOAD_FAILED"
	EventStatusChanged    EventType = "STATUS_CHANGED"
	EventSeatSelected     EventType = "SEAT_SELECTED"
	EventSeatReleased     EventType = "SEAT_RELEASED"
	EventSelectionClear   EventType = "SELECTION_CLEARED"
	EventLimitReached     EventType = "LIMIT_REACHED"
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
)

// Event represents a change in the session.
type Event struct {
	Type      EventType    `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	SeatID    string       `json:"seat_id,omitempty"`
	OldStatus venue.Status `json:"old_status,omitempty"`
	NewStatus venue.Status `json:"new_status,omitempty"`
	Detail    string       `json:"detail,omitempty"`
}

// Manager handles all shared session state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current       *venue.Document
	layout        *layout.Layout
	source        string
	lastFetch     time.Time
	lastError     error
	fetchDuration time.Duration
	loads         int

	projector layout.Projector

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50, // Last 50 events
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		now:       time.Now,
	}
}

// Update atomically records the result of a venue load. A failed load keeps
// the previously loaded venue.
func (m *Manager) Update(res venue.FetchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFetch = m.now()
	m.lastError = res.Error
	m.fetchDuration = res.Duration
	m.source = res.Source

	if res.Error != nil {
		m.addEvent(Event{Type: EventLoadFailed, Timestamp: m.lastFetch, Detail: res.Error.Error()})
		return
	}
	if res.Document == nil {
		return
	}

	// Detect events before updating current state
	m.detectStatusChanges(res.Document)

	m.current = res.Document
	m.layout = m.projector.Layout(res.Document)
	m.loads++
	m.addEvent(Event{Type: EventVenueLoaded, Timestamp: m.lastFetch, Detail: res.Document.Name})
}

// detectStatusChanges compares seat availability between the previous and
// the new document of the same venue.
func (m *Manager) detectStatusChanges(next *venue.Document) {
	if m.current == nil || m.layout == nil || m.current.VenueID != next.VenueID {
		return
	}
	now := m.now()
	for _, section := range next.Sections {
		for _, row := range section.Rows {
			for _, seat := range row.Seats {
				prev, ok := m.layout.Seat(seat.ID)
				if !ok || prev.Status == seat.Status {
					continue
				}
				m.addEvent(Event{
					Type:      EventStatusChanged,
					Timestamp: now,
					SeatID:    seat.ID,
					OldStatus: prev.Status,
					NewStatus: seat.Status,
				})
			}
		}
	}
}

// Record appends a session event, stamping it when Timestamp is zero.
func (m *Manager) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	m.addEvent(e)
}

// RecordSelection logs a selection change. It fits selection.Store.Subscribe.
func (m *Manager) RecordSelection(c selection.Change) {
	var typ EventType
	switch c.Kind {
	case selection.Added:
		typ = EventSeatSelected
	case selection.Removed:
		typ = EventSeatReleased
	case selection.Cleared:
		typ = EventSelectionClear
	}
	m.Record(Event{
		Type:   typ,
		SeatID: c.SeatID,
		Detail: fmt.Sprintf("%d/%d", c.Count, c.Max),
	})
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Document      *venue.Document
	Layout        *layout.Layout
	Source        string
	LastFetch     time.Time
	LastError     error
	FetchDuration time.Duration
	Loads         int
	StatusCounts  map[venue.Status]int
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Document:      m.current,
		Layout:        m.layout,
		Source:        m.source,
		LastFetch:     m.lastFetch,
		LastError:     m.lastError,
		FetchDuration: m.fetchDuration,
		Loads:         m.loads,
		StatusCounts:  m.current.StatusCounts(),
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Layout returns the projected layout of the current venue, or nil.
func (m *Manager) Layout() *layout.Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// HasData returns true if we have loaded at least one venue.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
