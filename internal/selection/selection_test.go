package selection

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/storage"
	"github.com/litescript/ls-seats/internal/venue"
)

// failingStore rejects every write.
type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(string, string) error { return errors.New("disk full") }

func seatIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("A-1-%d", i+1)
	}
	return ids
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		format  Format
		ids     []string
		wantErr bool
	}{
		{"id list", `["A-1-1","A-1-2"]`, FormatIDList, []string{"A-1-1", "A-1-2"}, false},
		{"empty list", `[]`, FormatIDList, []string{}, false},
		{"records", `[{"seatId":"B-2-3","timestamp":1700000000000},{"seatId":"B-2-4","timestamp":"2024-01-01"}]`,
			FormatRecords, []string{"B-2-3", "B-2-4"}, false},
		{"wrapper", `{"selectedSeats":["C-1-1"],"venueId":"x"}`, FormatWrapper, []string{"C-1-1"}, false},
		{"padded", "  [\"A-1-1\"]\n", FormatIDList, []string{"A-1-1"}, false},

		{"invalid json", `["A-1-1"`, 0, nil, true},
		{"empty", ``, 0, nil, true},
		{"mixed array", `["A-1-1",{"seatId":"A-1-2"}]`, 0, nil, true},
		{"record without seatId", `[{"timestamp":1}]`, 0, nil, true},
		{"numbers", `[1,2,3]`, 0, nil, true},
		{"wrapper without key", `{"seats":["A-1-1"]}`, 0, nil, true},
		{"wrapper null", `{"selectedSeats":null}`, 0, nil, true},
		{"wrapper of numbers", `{"selectedSeats":[1]}`, 0, nil, true},
		{"bare string", `"A-1-1"`, 0, nil, true},
		{"null", `null`, 0, nil, true},
		{"null element", `[null]`, 0, nil, true},
		{"empty id", `["A-1-1",""]`, 0, nil, true},
		{"wrapper with null element", `{"selectedSeats":[null,"A-1-1"]}`, 0, nil, true},
		{"record with empty seatId", `[{"seatId":""}]`, 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognizedFormat) {
					t.Fatalf("Decode(%s) err = %v, want ErrUnrecognizedFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%s): %v", tt.input, err)
			}
			if got.Format != tt.format {
				t.Errorf("format = %s, want %s", got.Format, tt.format)
			}
			if !reflect.DeepEqual(got.IDs, tt.ids) {
				t.Errorf("ids = %v, want %v", got.IDs, tt.ids)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(nil)
	if err != nil || string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, %v", data, err)
	}
	data, _ = Encode([]string{"A-1-1", "A-1-2"})
	if string(data) != `["A-1-1","A-1-2"]` {
		t.Errorf("Encode = %s", data)
	}
}

func TestToggle_CapacityScenario(t *testing.T) {
	backend := storage.NewMemoryStore()
	s := NewStore(backend)

	ids := seatIDs(9)
	for i, id := range ids {
		changed := s.Toggle(id)
		if want := i < MaxSelections; changed != want {
			t.Errorf("Toggle(%s) changed = %v, want %v", id, changed, want)
		}
		if s.Len() > MaxSelections {
			t.Fatalf("size %d exceeds cap after %s", s.Len(), id)
		}
	}

	if s.Len() != MaxSelections {
		t.Fatalf("Len = %d, want %d", s.Len(), MaxSelections)
	}
	if !reflect.DeepEqual(s.IDs(), ids[:8]) {
		t.Errorf("IDs = %v, want first 8", s.IDs())
	}
	if s.IsSelected(ids[8]) {
		t.Error("9th seat must not be selected")
	}

	raw, _ := backend.Get(StorageKey)
	if raw != `["A-1-1","A-1-2","A-1-3","A-1-4","A-1-5","A-1-6","A-1-7","A-1-8"]` {
		t.Errorf("persisted = %s", raw)
	}
}

func TestToggle_FullStoreStillReleases(t *testing.T) {
	s := NewStore(nil)
	for _, id := range seatIDs(8) {
		s.Toggle(id)
	}
	if !s.Full() {
		t.Fatal("expected full store")
	}
	if !s.Toggle("A-1-3") || s.IsSelected("A-1-3") {
		t.Error("deselecting at capacity must work")
	}
	if !s.Toggle("Z-9-9") {
		t.Error("should accept a new seat after freeing one")
	}
}

func TestToggle_DoubleToggleIsIdentity(t *testing.T) {
	s := NewStore(nil)
	s.Toggle("A-1-1")
	s.Toggle("A-1-2")
	before := s.IDs()

	for _, id := range []string{"A-1-1", "B-1-1"} {
		s.Toggle(id)
		s.Toggle(id)
		got := map[string]bool{}
		for _, v := range s.IDs() {
			got[v] = true
		}
		if len(got) != len(before) {
			t.Fatalf("membership changed after double toggle of %s: %v", id, s.IDs())
		}
		for _, v := range before {
			if !got[v] {
				t.Fatalf("lost %s after double toggle of %s", v, id)
			}
		}
	}
}

func TestClearThenToggle(t *testing.T) {
	backend := storage.NewMemoryStore()
	s := NewStore(backend)
	for _, id := range seatIDs(5) {
		s.Toggle(id)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len after Clear = %d", s.Len())
	}
	if _, err := backend.Get(StorageKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Clear should remove the persisted key, got err = %v", err)
	}

	s.Toggle("Q-1-1")
	if !reflect.DeepEqual(s.IDs(), []string{"Q-1-1"}) {
		t.Errorf("IDs = %v, want [Q-1-1]", s.IDs())
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		want    []string
		keyKept bool
	}{
		{"id list", `["A-1-1","A-1-2"]`, []string{"A-1-1", "A-1-2"}, true},
		{"records", `[{"seatId":"A-1-1","timestamp":1}]`, []string{"A-1-1"}, true},
		{"wrapper", `{"selectedSeats":["A-1-2"]}`, []string{"A-1-2"}, true},
		{"duplicates", `["A-1-1","A-1-1"]`, []string{"A-1-1"}, true},
		{"null element", `{"selectedSeats":[null,"A-1-1"]}`, []string{}, false},
		{"over cap", `["1","2","3","4","5","6","7","8","9","10"]`,
			[]string{"1", "2", "3", "4", "5", "6", "7", "8"}, true},
		{"invalid json", `{not json`, []string{}, false},
		{"unknown shape", `{"seats":[]}`, []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := storage.NewMemoryStore()
			_ = backend.Set(StorageKey, tt.stored)

			s := NewStore(backend)
			if !reflect.DeepEqual(s.IDs(), tt.want) {
				t.Errorf("IDs = %v, want %v", s.IDs(), tt.want)
			}
			if s.Len() != len(tt.want) {
				t.Errorf("Len = %d, want %d", s.Len(), len(tt.want))
			}

			_, err := backend.Get(StorageKey)
			if kept := err == nil; kept != tt.keyKept {
				t.Errorf("key kept = %v, want %v", kept, tt.keyKept)
			}
		})
	}
}

func TestRestore_FromFileStore(t *testing.T) {
	path := t.TempDir() + "/storage.json"
	fs, err := storage.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(fs)
	s.Toggle("B-2-2")
	s.Toggle("B-2-3")

	reopened, err := storage.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := NewStore(reopened).IDs(); !reflect.DeepEqual(got, []string{"B-2-2", "B-2-3"}) {
		t.Errorf("restored IDs = %v", got)
	}
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.LevelDebug)
	log.SetOutput(&buf)

	s := NewStore(failingStore{storage.NewMemoryStore()}, WithLogger(log))
	if !s.Toggle("A-1-1") {
		t.Fatal("toggle should still apply in memory")
	}
	if !s.IsSelected("A-1-1") {
		t.Error("in-memory state must stay authoritative")
	}
	if !strings.Contains(buf.String(), "persist selection") {
		t.Errorf("expected logged write failure, got %q", buf.String())
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore(nil)
	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	s.Toggle("A-1-1")
	s.Toggle("A-1-1")
	for _, id := range seatIDs(9) {
		s.Toggle(id)
	}
	s.Clear()
	unsubscribe()
	s.Toggle("A-1-1")

	// 2 + 8 effective toggles (the 9th is a no-op) + 1 clear.
	if len(got) != 11 {
		t.Fatalf("got %d changes, want 11", len(got))
	}
	if got[0].Kind != Added || got[1].Kind != Removed {
		t.Errorf("first kinds = %s, %s", got[0].Kind, got[1].Kind)
	}
	if last := got[9]; last.Count != MaxSelections || last.Max != MaxSelections {
		t.Errorf("8th add = %+v", last)
	}
	if got[10].Kind != Cleared || got[10].Count != 0 {
		t.Errorf("clear change = %+v", got[10])
	}
}

func TestOrdered(t *testing.T) {
	l := layout.Project(venue.Demo())
	s := NewStore(nil)
	// Select in reverse venue order plus an unknown ID.
	s.Toggle("B-1-2")
	s.Toggle("ghost")
	s.Toggle("A-1-3")

	got := s.Ordered(l)
	if len(got) != 2 || got[0].ID != "A-1-3" || got[1].ID != "B-1-2" {
		ids := make([]string, len(got))
		for i, p := range got {
			ids[i] = p.ID
		}
		t.Errorf("Ordered = %v, want [A-1-3 B-1-2]", ids)
	}
}
