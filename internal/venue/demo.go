package venue

import "fmt"

// demoSection describes one generated block of the demo venue.
type demoSection struct {
	id    string
	label string
	tier  TierRef
	rows  int
	cols  int
	scale float64
}

var demoSections = []demoSection{
	{id: "A", label: "Premium Stalls", tier: "1", rows: 4, cols: 12, scale: 1},
	{id: "B", label: "Standard Stalls", tier: "2", rows: 4, cols: 14, scale: 1},
	{id: "C", label: "Rear Stalls", tier: "3", rows: 4, cols: 14, scale: 1},
	{id: "D", label: "Balcony", tier: "4", rows: 3, cols: 16, scale: 0.8},
}

// Demo returns the built-in demo venue. Seat statuses follow a fixed pattern
// so the map always shows a mix of sold, reserved and held seats.
func Demo() *Document {
	doc := &Document{
		VenueID: "demo-arena",
		Name:    "Metropolitan Arena",
		Map:     MapSize{Width: 1200, Height: 900},
	}

	for _, ds := range demoSections {
		section := Section{
			ID:        ds.id,
			Label:     ds.label,
			Transform: Transform{X: 60, Y: 60, Scale: ds.scale},
		}
		for r := 1; r <= ds.rows; r++ {
			row := Row{Index: r - 1}
			for c := 1; c <= ds.cols; c++ {
				row.Seats = append(row.Seats, Seat{
					ID:        fmt.Sprintf("%s-%d-%d", ds.id, r, c),
					Section:   ds.id,
					Row:       fmt.Sprint(r),
					Number:    fmt.Sprint(c),
					Col:       c,
					Status:    demoStatus(r, c),
					PriceTier: ds.tier,
				})
			}
			section.Rows = append(section.Rows, row)
		}
		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

func demoStatus(row, col int) Status {
	k := row*7 + col*3
	switch {
	case k%11 == 0:
		return StatusSold
	case k%13 == 0:
		return StatusReserved
	case k%17 == 5:
		return StatusHeld
	default:
		return StatusAvailable
	}
}
