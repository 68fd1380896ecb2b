package venue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDocument wraps every validation failure.
var ErrInvalidDocument = errors.New("invalid venue document")

// Parse decodes and validates a venue document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode venue JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural invariants the projector and selection
// store rely on.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if d.Map.Width <= 0 || d.Map.Height <= 0 {
		return fmt.Errorf("%w: map size %.0fx%.0f", ErrInvalidDocument, d.Map.Width, d.Map.Height)
	}

	seen := make(map[string]bool)
	for _, section := range d.Sections {
		if section.Transform.Scale <= 0 {
			return fmt.Errorf("%w: section %q has non-positive scale %v",
				ErrInvalidDocument, section.ID, section.Transform.Scale)
		}
		for _, row := range section.Rows {
			for _, seat := range row.Seats {
				if seat.ID == "" {
					return fmt.Errorf("%w: seat without id in section %q row %d",
						ErrInvalidDocument, section.ID, row.Index)
				}
				if seen[seat.ID] {
					return fmt.Errorf("%w: duplicate seat id %q", ErrInvalidDocument, seat.ID)
				}
				seen[seat.ID] = true
				if !seat.Status.Valid() {
					return fmt.Errorf("%w: seat %q has unknown status %q",
						ErrInvalidDocument, seat.ID, seat.Status)
				}
			}
		}
	}
	return nil
}
