package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-seats/internal/venue"
)

// Seat colors.
const (
	fillSelected    = "#3b82f6"
	fillHighlighted = "#f59e0b"
	fillAvailable   = "#10b981"
	fillUnavailable = "#6b7280"

	strokeSelected    = "#1d4ed8"
	strokeHighlighted = "#d97706"
	strokeAvailable   = "#059669"
	strokeUnavailable = "#4b5563"
	strokeUnknownTier = "#6b7280"

	selectedMark = "✓"
)

// heatStroke maps tier names to heat-map outline colors.
var heatStroke = map[string]string{
	"premium":  "#dc2626",
	"vip":      "#ea580c",
	"standard": "#059669",
	"economy":  "#2563eb",
	"balcony":  "#7c3aed",
}

// SeatState is the per-seat input to DeriveSeatVisual.
type SeatState struct {
	Selected    bool
	Highlighted bool
	HeatMap     bool
}

// SeatVisual is the derived look of a seat.
type SeatVisual struct {
	Fill        string
	Stroke      string
	Label       string
	Interactive bool
}

// DeriveSeatVisual computes a seat's colors and label. Precedence is
// selected, then highlighted, then heat-map tier, then availability.
func DeriveSeatVisual(seat venue.Seat, tiers venue.TierTable, st SeatState) SeatVisual {
	available := seat.Available()
	tier := tiers.Lookup(seat.PriceTier)

	v := SeatVisual{Interactive: available}

	switch {
	case st.Selected:
		v.Fill = fillSelected
	case st.Highlighted:
		v.Fill = fillHighlighted
	case st.HeatMap:
		v.Fill = tier.Color
	case available:
		v.Fill = fillAvailable
	default:
		v.Fill = fillUnavailable
	}

	switch {
	case st.Selected:
		v.Stroke = strokeSelected
	case st.Highlighted:
		v.Stroke = strokeHighlighted
	case st.HeatMap:
		v.Stroke = heatStrokeFor(seat.PriceTier, tiers)
	case available:
		v.Stroke = strokeAvailable
	default:
		v.Stroke = strokeUnavailable
	}

	switch {
	case st.Selected:
		v.Label = selectedMark
	case st.HeatMap:
		v.Label = formatPrice(tier.Price)
	default:
		v.Label = seat.NumberLabel()
	}

	return v
}

// heatStrokeFor resolves the outline color for a tier ref. Numeric refs go
// through the tier table name; an empty ref reads as "standard".
//
// The stroke map is keyed by name only. Looking up a numeric ref such as "1"
// directly would miss every entry and draw all numbered tiers gray, so the
// name lookup must stay ahead of the map.
func heatStrokeFor(ref venue.TierRef, tiers venue.TierTable) string {
	name := ref.Key()
	if name == "" {
		name = "standard"
	} else if _, numeric := ref.ID(); numeric {
		tier, ok := tiers.Find(ref)
		if !ok {
			return strokeUnknownTier
		}
		name = strings.ToLower(tier.Name)
	}
	if c, ok := heatStroke[name]; ok {
		return c
	}
	return strokeUnknownTier
}

// Style renders the visual as a terminal cell style: the fill becomes the
// background and the stroke the foreground.
func (v SeatVisual) Style() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(v.Fill)).
		Foreground(lipgloss.Color(v.Stroke)).
		Bold(v.Label == selectedMark)
}

// Cell fits the label into width cells, centered. Prices that do not fit
// are rounded to whole units.
func (v SeatVisual) Cell(width int) string {
	label := v.Label
	if lipgloss.Width(label) > width && strings.Contains(label, ".") {
		if f, err := parsePrice(label); err == nil {
			label = fmt.Sprintf("%d", int(math.Round(f)))
		}
	}
	if lipgloss.Width(label) > width {
		r := []rune(label)
		label = string(r[len(r)-width:])
	}
	pad := width - lipgloss.Width(label)
	left := pad / 2
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", pad-left)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

func parsePrice(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	return f, err
}
