package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/storage"
	"github.com/litescript/ls-seats/internal/venue"
)

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if m.Layout() != nil {
		t.Error("Layout should be nil before the first load")
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	doc := venue.Demo()

	m.Update(venue.FetchResult{Document: doc, Source: "demo", Duration: 100 * time.Millisecond})

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()

	if snap.Document != doc {
		t.Error("Snapshot Document doesn't match")
	}
	if snap.Layout == nil || snap.Layout.Len() != doc.SeatCount() {
		t.Error("Snapshot Layout should project the document")
	}
	if snap.FetchDuration != 100*time.Millisecond {
		t.Errorf("FetchDuration = %v, want 100ms", snap.FetchDuration)
	}
	if snap.LastError != nil {
		t.Errorf("LastError = %v, want nil", snap.LastError)
	}
	if len(snap.Events) != 1 || snap.Events[0].Type != EventVenueLoaded {
		t.Errorf("events = %+v, want one VENUE_LOADED", snap.Events)
	}
}

func TestManager_UpdateWithError(t *testing.T) {
	m := NewManager(DefaultConfig())
	doc := venue.Demo()
	m.Update(venue.FetchResult{Document: doc})

	testErr := errors.New("fetch failed")
	m.Update(venue.FetchResult{Error: testErr, Duration: 50 * time.Millisecond})

	snap := m.Snapshot()

	if snap.Document != doc {
		t.Error("a failed reload must keep the previous venue")
	}
	if snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}
	last := snap.Events[len(snap.Events)-1]
	if last.Type != EventLoadFailed || last.Detail != "fetch failed" {
		t.Errorf("last event = %+v", last)
	}
}

func TestManager_LayoutReusedForSameDocument(t *testing.T) {
	m := NewManager(DefaultConfig())
	doc := venue.Demo()
	m.Update(venue.FetchResult{Document: doc})
	first := m.Layout()
	m.Update(venue.FetchResult{Document: doc})
	if m.Layout() != first {
		t.Error("reloading the same document should reuse its layout")
	}
}

func TestManager_StatusChangeDetection(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(venue.FetchResult{Document: venue.Demo()})

	next := venue.Demo()
	seat := &next.Sections[0].Rows[0].Seats[0]
	old := seat.Status
	seat.Status = venue.StatusSold
	if old == venue.StatusSold {
		seat.Status = venue.StatusAvailable
	}
	m.Update(venue.FetchResult{Document: next})

	var changed *Event
	for _, e := range m.RecentEvents(10) {
		if e.Type == EventStatusChanged {
			e := e
			changed = &e
		}
	}
	if changed == nil {
		t.Fatal("no STATUS_CHANGED event")
	}
	if changed.SeatID != seat.ID || changed.OldStatus != old || changed.NewStatus != seat.Status {
		t.Errorf("event = %+v", changed)
	}

	// A different venue is not diffed.
	other := venue.Demo()
	other.VenueID = "elsewhere"
	other.Sections[0].Rows[0].Seats[1].Status = venue.StatusHeld
	before := len(m.RecentEvents(100))
	m.Update(venue.FetchResult{Document: other})
	if got := len(m.RecentEvents(100)); got != before+1 {
		t.Errorf("expected only a VENUE_LOADED event, got %d new", got-before)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	m := NewManager(Config{MaxEvents: 3})
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		m.Record(Event{Type: EventSeatSelected, SeatID: id})
	}

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i, want := range []string{"C", "D", "E"} {
		if events[i].SeatID != want {
			t.Errorf("events[%d] = %s, want %s", i, events[i].SeatID, want)
		}
		if events[i].Timestamp.IsZero() {
			t.Errorf("events[%d] not stamped", i)
		}
	}

	if got := m.RecentEvents(1); len(got) != 1 || got[0].SeatID != "E" {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(venue.FetchResult{Document: venue.Demo(), Duration: time.Duration(i) * time.Millisecond})
			m.Record(Event{Type: EventSeatSelected, SeatID: "A-1-1"})
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.Layout()
				_ = m.RecentEvents(5)
			}
		}()
	}

	wg.Wait()
}

func TestManager_RecordSelection(t *testing.T) {
	m := NewManager(DefaultConfig())
	sel := selection.NewStore(storage.NewMemoryStore())
	sel.Subscribe(m.RecordSelection)

	sel.Toggle("A-1-1")
	sel.Toggle("A-1-2")
	sel.Toggle("A-1-1")
	sel.Clear()

	want := []struct {
		typ    EventType
		seat   string
		detail string
	}{
		{EventSeatSelected, "A-1-1", "1/8"},
		{EventSeatSelected, "A-1-2", "2/8"},
		{EventSeatReleased, "A-1-1", "1/8"},
		{EventSelectionClear, "", "0/8"},
	}
	events := m.RecentEvents(10)
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, w := range want {
		e := events[i]
		if e.Type != w.typ || e.SeatID != w.seat || e.Detail != w.detail {
			t.Errorf("event %d = %s %q %q, want %s %q %q", i, e.Type, e.SeatID, e.Detail, w.typ, w.seat, w.detail)
		}
	}
}
