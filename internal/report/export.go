// Package report renders venue layouts and selections for headless use:
// JSON export, a plain-text summary and an SVG drawing.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-seats/internal/checkout"
	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/venue"
)

// LayoutExport is the JSON-serializable form of a projected venue.
type LayoutExport struct {
	VenueID    string                  `json:"venue_id"`
	Name       string                  `json:"name"`
	Source     string                  `json:"source,omitempty"`
	ExportedAt time.Time               `json:"exported_at"`
	Bounds     layout.Rect             `json:"bounds"`
	Sections   []SectionExport         `json:"sections"`
	Seats      []layout.PositionedSeat `json:"seats"`
	Selected   []string                `json:"selected"`
}

// SectionExport is a section label with its seat tally.
type SectionExport struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Seats     int     `json:"seats"`
	Available int     `json:"available"`
}

// ExportLayout converts a layout to its exportable form. selected is kept
// in the order given.
func ExportLayout(l *layout.Layout, source string, selected []string, exportedAt time.Time) *LayoutExport {
	export := &LayoutExport{
		Source:     source,
		ExportedAt: exportedAt,
		Seats:      []layout.PositionedSeat{},
		Selected:   append([]string{}, selected...),
	}
	if l == nil {
		return export
	}
	if doc := l.Document(); doc != nil {
		export.VenueID = doc.VenueID
		export.Name = doc.Name
	}
	export.Bounds = l.Bounds()
	export.Seats = append(export.Seats, l.Seats()...)

	for i, lbl := range l.SectionLabels() {
		sec := SectionExport{ID: lbl.ID, Label: lbl.Label, X: lbl.X, Y: lbl.Y}
		for _, s := range l.Seats() {
			if s.SectionIndex != i {
				continue
			}
			sec.Seats++
			if s.Available() {
				sec.Available++
			}
		}
		export.Sections = append(export.Sections, sec)
	}
	return export
}

// WriteJSON writes the export as indented JSON.
func (e *LayoutExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummary writes a text overview of the venue and the current
// selection with its price breakdown.
func WriteSummary(w io.Writer, l *layout.Layout, selected []layout.PositionedSeat, tiers venue.TierTable, timestamp time.Time) {
	name := "(no venue)"
	var doc *venue.Document
	if l != nil {
		doc = l.Document()
	}
	if doc != nil {
		name = doc.Name
	}

	fmt.Fprintf(w, "%s @ %s\n", name, timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 64))

	if doc == nil || l.Len() == 0 {
		fmt.Fprintln(w, "No seats")
		return
	}

	fmt.Fprintf(w, "%-20s %6s %9s %8s %8s %6s\n", "Section", "Seats", "Available", "Reserved", "Sold", "Held")
	fmt.Fprintln(w, strings.Repeat("─", 64))
	for i, section := range doc.Sections {
		counts := make(map[venue.Status]int)
		total := 0
		for _, s := range l.Seats() {
			if s.SectionIndex == i {
				counts[s.Status]++
				total++
			}
		}
		fmt.Fprintf(w, "%-20s %6d %9d %8d %8d %6d\n",
			truncateStr(section.Label, 20),
			total,
			counts[venue.StatusAvailable],
			counts[venue.StatusReserved],
			counts[venue.StatusSold],
			counts[venue.StatusHeld],
		)
	}
	counts := doc.StatusCounts()
	fmt.Fprintf(w, "\nTotal: %d seats, %d available\n", l.Len(), counts[venue.StatusAvailable])

	fmt.Fprintln(w)
	if len(selected) == 0 {
		fmt.Fprintln(w, "No seats selected")
		return
	}

	quote := checkout.Quote(selected, tiers)
	fmt.Fprintf(w, "Selected (%d):\n", len(selected))
	for _, line := range quote.Lines {
		fmt.Fprintf(w, "  %-12s %-20s %-9s %9.2f\n", line.SeatID, truncateStr(line.Section, 20), line.TierName, line.Price)
	}
	fmt.Fprintf(w, "  %-43s %9.2f\n", "Subtotal", quote.Subtotal)
	fmt.Fprintf(w, "  %-43s %9.2f\n", "Service fee", quote.ServiceFee)
	fmt.Fprintf(w, "  %-43s %9.2f\n", "Convenience fee", quote.ConvenienceFee)
	fmt.Fprintf(w, "  %-43s %9.2f\n", "Tax", quote.Tax)
	fmt.Fprintf(w, "  %-43s %9.2f\n", "Total", quote.Total)
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
