package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-seats/internal/config"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/state"
	"github.com/litescript/ls-seats/internal/storage"
	"github.com/litescript/ls-seats/internal/venue"
)

func headlessFixture(t *testing.T) (*state.Manager, *selection.Store) {
	t.Helper()
	stateMgr := state.NewManager(state.DefaultConfig())
	sel := selection.NewStore(storage.NewMemoryStore())
	sel.Subscribe(recordSelection(stateMgr, logging.Discard()))
	return stateMgr, sel
}

func TestRunHeadless_Summary(t *testing.T) {
	stateMgr, sel := headlessFixture(t)
	sel.Toggle("A-1-1")

	var out bytes.Buffer
	cfg := config.Config{Summary: true}
	if err := runHeadless(context.Background(), cfg, venue.NewFetcher(), stateMgr, sel, &out); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	for _, want := range []string{"Metropolitan Arena", "Selected (1):", "A-1-1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestRunHeadless_ExportLayoutToFile(t *testing.T) {
	stateMgr, sel := headlessFixture(t)
	path := filepath.Join(t.TempDir(), "layout.json")

	cfg := config.Config{ExportLayout: path}
	if err := runHeadless(context.Background(), cfg, venue.NewFetcher(), stateMgr, sel, &bytes.Buffer{}); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		VenueID string            `json:"venue_id"`
		Seats   []json.RawMessage `json:"seats"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.VenueID != "demo-arena" || len(decoded.Seats) != venue.Demo().SeatCount() {
		t.Errorf("export = %s with %d seats", decoded.VenueID, len(decoded.Seats))
	}
}

func TestRunHeadless_ExportSVGToStdout(t *testing.T) {
	stateMgr, sel := headlessFixture(t)

	var out bytes.Buffer
	cfg := config.Config{ExportSVG: "-"}
	if err := runHeadless(context.Background(), cfg, venue.NewFetcher(), stateMgr, sel, &out); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if !strings.Contains(out.String(), "<svg") {
		t.Error("expected SVG output")
	}
}

func TestRunHeadless_ClearSelection(t *testing.T) {
	stateMgr, sel := headlessFixture(t)
	sel.Toggle("A-1-1")
	sel.Toggle("A-1-2")

	var out bytes.Buffer
	if err := runHeadless(context.Background(), config.Config{ClearSelection: true}, venue.NewFetcher(), stateMgr, sel, &out); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if sel.Len() != 0 {
		t.Errorf("Len = %d after clear", sel.Len())
	}
	if !strings.Contains(out.String(), "Cleared 2 selected seats") {
		t.Errorf("output = %q", out.String())
	}
	if stateMgr.HasData() {
		t.Error("clear alone should not load the venue")
	}

	events := stateMgr.RecentEvents(3)
	want := []state.EventType{state.EventSeatSelected, state.EventSeatSelected, state.EventSelectionClear}
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, e := range events {
		if e.Type != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.Type, want[i])
		}
	}
}

func TestRunHeadless_LoadError(t *testing.T) {
	stateMgr, sel := headlessFixture(t)
	fetcher := venue.NewFetcher(venue.WithSource(filepath.Join(t.TempDir(), "missing.json")))

	err := runHeadless(context.Background(), config.Config{Summary: true}, fetcher, stateMgr, sel, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error for a missing venue file")
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		store string
		path  string
	}{
		{config.StoreFile, filepath.Join(dir, "storage.json")},
		{config.StoreSQLite, filepath.Join(dir, "storage.db")},
	}
	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			s, err := openStore(config.Config{Store: tt.store, StorePath: tt.path}, logging.Discard())
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer s.Close()
			if err := s.Set("k", "v"); err != nil {
				t.Fatalf("Set: %v", err)
			}
		})
	}
}

func TestOpenStore_CorruptFileStarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte(`{"seat-selections": ["A-1-1"`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := openStore(config.Config{Store: config.StoreFile, StorePath: path}, logging.Discard())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer s.Close()

	sel := selection.NewStore(s)
	if sel.Len() != 0 {
		t.Errorf("Len = %d, want empty selection after recovery", sel.Len())
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file should be kept aside: %v", err)
	}
}
