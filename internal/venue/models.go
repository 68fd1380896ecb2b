// Package venue provides the venue document types, loading and the static
// price-tier table.
package venue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the presentation-only availability of a seat.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
	StatusHeld      Status = "held"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusHeld:
		return true
	}
	return false
}

// TierRef references a price tier. Venue documents use either the numeric
// tier ID (1) or a tier name ("premium"); both decode to the same string form.
type TierRef string

// UnmarshalJSON accepts a JSON number or string.
func (r *TierRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TierRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price tier must be a number or string: %w", err)
	}
	*r = TierRef(n.String())
	return nil
}

// MarshalJSON writes numeric refs as numbers so documents round-trip.
func (r TierRef) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.Atoi(string(r)); err == nil {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// ID returns the numeric tier ID, if the ref is numeric.
func (r TierRef) ID() (int, bool) {
	n, err := strconv.Atoi(string(r))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Key returns the lowercased ref for name-based lookups.
func (r TierRef) Key() string {
	return strings.ToLower(strings.TrimSpace(string(r)))
}

// Seat is a single seat. Seats are immutable leaf data.
type Seat struct {
	ID        string  `json:"id"`
	Section   string  `json:"section"`
	Row       string  `json:"row"`
	Number    string  `json:"number"`
	Col       int     `json:"col,omitempty"`
	Status    Status  `json:"status"`
	PriceTier TierRef `json:"priceTier,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

// Column returns the 1-based column, treating an absent column as 1.
func (s Seat) Column() int {
	if s.Col < 1 {
		return 1
	}
	return s.Col
}

// Available reports whether the seat can be selected.
func (s Seat) Available() bool {
	return s.Status == StatusAvailable
}

// NumberLabel returns the short label drawn on the seat: the third
// dash-separated part of the ID, falling back to Number.
func (s Seat) NumberLabel() string {
	parts := strings.Split(s.ID, "-")
	if len(parts) >= 3 && parts[2] != "" {
		return parts[2]
	}
	return s.Number
}

// Row is an ordered run of seats within a section.
type Row struct {
	Index int    `json:"index"`
	Seats []Seat `json:"seats"`
}

// Transform places a section on the map.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Section is a labelled block of rows.
type Section struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Transform Transform `json:"transform"`
	Rows      []Row     `json:"rows"`
}

// MapSize is the canvas size of the venue map.
type MapSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the root venue document. It is immutable once loaded.
type Document struct {
	VenueID  string    `json:"venueId"`
	Name     string    `json:"name"`
	Map      MapSize   `json:"map"`
	Sections []Section `json:"sections"`
}

// SeatCount returns the total number of seats across all sections.
func (d *Document) SeatCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, section := range d.Sections {
		for _, row := range section.Rows {
			n += len(row.Seats)
		}
	}
	return n
}

// StatusCounts tallies seats by status.
func (d *Document) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	if d == nil {
		return counts
	}
	for _, section := range d.Sections {
		for _, row := range section.Rows {
			for _, seat := range row.Seats {
				counts[seat.Status]++
			}
		}
	}
	return counts
}
