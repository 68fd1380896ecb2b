package report

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/venue"
)

// Seat drawing, in map units.
const (
	seatSize   = 30.0
	seatRadius = 6.0
	gridStep   = 100.0
	mapMargin  = 60.0
)

// SVG colors. These match the terminal seat map.
const (
	svgAvailable   = "#10b981"
	svgUnavailable = "#6b7280"
	svgSelected    = "#3b82f6"
	svgStroke      = "#059669"
	svgStrokeOff   = "#4b5563"
	svgStrokeSel   = "#1d4ed8"
)

// SVGOptions control what the drawing shows.
type SVGOptions struct {
	HeatMap  bool
	Dark     bool
	Selected []string
	Tiers    venue.TierTable
}

// SVGRenderer draws a projected layout as a standalone SVG document.
type SVGRenderer struct {
	opts SVGOptions
}

// NewSVGRenderer creates a renderer. Missing tiers fall back to the default
// table.
func NewSVGRenderer(opts SVGOptions) *SVGRenderer {
	if len(opts.Tiers) == 0 {
		opts.Tiers = venue.DefaultTiers
	}
	return &SVGRenderer{opts: opts}
}

// Render builds the SVG for l.
func (r *SVGRenderer) Render(l *layout.Layout) (string, error) {
	if l == nil || l.Document() == nil {
		return "", errors.New("layout is empty")
	}
	doc := l.Document()
	width, height := r.mapSize(l)

	background, grid, label := "#f9fafb", "#e5e7eb", "#374151"
	if r.opts.Dark {
		background, grid, label = "#111827", "#1f2937", "#d1d5db"
	}

	var elements []string
	elements = append(elements,
		fmt.Sprintf(`<rect x="0" y="0" width="%s" height="%s" fill="%s" />`,
			formatFloat(width), formatFloat(height), background),
		`<defs><pattern id="grid" width="100" height="100" patternUnits="userSpaceOnUse">`+
			fmt.Sprintf(`<path d="M %s 0 L 0 0 0 %s" fill="none" stroke="%s" stroke-width="1" />`,
				formatFloat(gridStep), formatFloat(gridStep), grid)+
			`</pattern></defs>`,
		fmt.Sprintf(`<rect x="0" y="0" width="%s" height="%s" fill="url(#grid)" />`,
			formatFloat(width), formatFloat(height)),
	)
	elements = append(elements, r.renderLabels(l, label)...)
	elements = append(elements, r.renderSeats(l)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" aria-label="%s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height),
		html.EscapeString(doc.Name+" seating map")))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	builder.WriteString("\n")
	return builder.String(), nil
}

// mapSize uses the document's map size, or the seat bounds plus a margin
// when the document leaves it out.
func (r *SVGRenderer) mapSize(l *layout.Layout) (float64, float64) {
	m := l.Document().Map
	if m.Width > 0 && m.Height > 0 {
		return m.Width, m.Height
	}
	b := l.Bounds()
	if l.Len() == 0 {
		return 1000, 1000
	}
	return b.MaxX + seatSize + mapMargin, b.MaxY + seatSize + mapMargin
}

func (r *SVGRenderer) renderLabels(l *layout.Layout, color string) []string {
	var out []string
	for _, lbl := range l.SectionLabels() {
		out = append(out, fmt.Sprintf(`<text x="%s" y="%s" fill="%s" font-size="14" font-weight="bold">%s</text>`,
			formatFloat(lbl.X), formatFloat(lbl.Y), color, html.EscapeString(lbl.Label)))
	}
	return out
}

func (r *SVGRenderer) renderSeats(l *layout.Layout) []string {
	selected := make(map[string]bool, len(r.opts.Selected))
	for _, id := range r.opts.Selected {
		selected[id] = true
	}

	var out []string
	for _, s := range l.Seats() {
		tier := r.opts.Tiers.Lookup(s.PriceTier)
		fill, stroke := svgUnavailable, svgStrokeOff
		switch {
		case selected[s.ID]:
			fill, stroke = svgSelected, svgStrokeSel
		case r.opts.HeatMap:
			fill, stroke = tier.Color, tier.Color
		case s.Available():
			fill, stroke = svgAvailable, svgStroke
		}

		text := s.NumberLabel()
		fontSize := "10"
		if r.opts.HeatMap {
			text = "₹" + formatFloat(tier.Price)
			fontSize = "8"
		}

		var g strings.Builder
		g.WriteString(fmt.Sprintf(`<g id="%s" transform="translate(%s, %s)">`,
			html.EscapeString(s.ID), formatFloat(s.AbsoluteX), formatFloat(s.AbsoluteY)))
		g.WriteString(fmt.Sprintf(`<title>%s</title>`, html.EscapeString(fmt.Sprintf("%s Row %s Seat %s (%s)", s.SectionLabel, s.Row, s.NumberLabel(), s.Status))))
		g.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="2" />`,
			formatFloat(seatSize), formatFloat(seatSize), formatFloat(seatRadius), fill, stroke))
		if selected[s.ID] {
			g.WriteString(`<rect x="-3" y="-3" width="36" height="36" rx="9" fill="none" stroke="#3b82f6" stroke-width="3" stroke-dasharray="4" />`)
		} else {
			g.WriteString(fmt.Sprintf(`<text x="15" y="19" text-anchor="middle" fill="white" font-size="%s" font-weight="bold">%s</text>`,
				fontSize, html.EscapeString(text)))
		}
		g.WriteString(`</g>`)
		out = append(out, g.String())
	}
	return out
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
