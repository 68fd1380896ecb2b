// Package layout projects venue documents onto a flat 2D seat layout and
// provides the viewport and spatial navigation math that operate on it.
package layout

import (
	"math"
	"sync"

	"github.com/litescript/ls-seats/internal/venue"
)

// Layout constants, in map units.
const (
	SeatGap              = 40.0
	RowGap               = 35.0
	SectionGap           = 180.0
	SectionHorizontalGap = 100.0
	AisleGap             = 20.0
	AisleEvery           = 4

	// sectionLabelLift is how far a section label sits above its first row.
	sectionLabelLift = 16.0
)

// PositionedSeat is a seat with its computed absolute map position.
type PositionedSeat struct {
	venue.Seat
	SectionLabel string  `json:"sectionLabel"`
	SectionIndex int     `json:"sectionIndex"`
	RowIndex     int     `json:"rowIndex"`
	AbsoluteX    float64 `json:"absoluteX"`
	AbsoluteY    float64 `json:"absoluteY"`
}

// SectionLabel is a section caption anchored on the map.
type SectionLabel struct {
	ID    string
	Label string
	X, Y  float64
}

// Rect is an axis-aligned box in map units.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Layout is the flattened, positioned form of a venue document. It is
// read-only once built.
type Layout struct {
	doc    *venue.Document
	seats  []PositionedSeat
	index  map[string]int
	labels []SectionLabel
}

// Project flattens doc into positioned seats in Section -> Row -> Seat order.
func Project(doc *venue.Document) *Layout {
	l := &Layout{
		doc:   doc,
		index: make(map[string]int, doc.SeatCount()),
	}
	if doc == nil {
		return l
	}

	for si, section := range doc.Sections {
		t := section.Transform
		l.labels = append(l.labels, SectionLabel{
			ID:    section.ID,
			Label: section.Label,
			X:     t.X + float64(si)*SectionHorizontalGap,
			Y:     t.Y + float64(si)*SectionGap - sectionLabelLift,
		})

		for ri, row := range section.Rows {
			for _, seat := range row.Seats {
				x, y := seatPosition(t, si, ri, seat.Column())
				l.index[seat.ID] = len(l.seats)
				l.seats = append(l.seats, PositionedSeat{
					Seat:         seat,
					SectionLabel: section.Label,
					SectionIndex: si,
					RowIndex:     ri,
					AbsoluteX:    x,
					AbsoluteY:    y,
				})
			}
		}
	}

	return l
}

// seatPosition places a seat at 1-based column col of row ri in section si.
func seatPosition(t venue.Transform, si, ri, col int) (float64, float64) {
	aisles := (col - 1) / AisleEvery
	x := t.X +
		float64(si)*SectionHorizontalGap +
		float64(col-1)*SeatGap*t.Scale +
		float64(aisles)*AisleGap*t.Scale
	y := t.Y +
		float64(si)*SectionGap +
		float64(ri)*RowGap*t.Scale
	return x, y
}

// Document returns the source document.
func (l *Layout) Document() *venue.Document { return l.doc }

// Seats returns the positioned seats in traversal order. The slice is shared
// and must not be modified.
func (l *Layout) Seats() []PositionedSeat { return l.seats }

// Len returns the number of positioned seats.
func (l *Layout) Len() int { return len(l.seats) }

// Seat looks up a positioned seat by ID.
func (l *Layout) Seat(id string) (PositionedSeat, bool) {
	i, ok := l.index[id]
	if !ok {
		return PositionedSeat{}, false
	}
	return l.seats[i], true
}

// IndexOf returns the traversal index of a seat, or -1.
func (l *Layout) IndexOf(id string) int {
	if i, ok := l.index[id]; ok {
		return i
	}
	return -1
}

// SectionLabels returns the label anchors, one per section.
func (l *Layout) SectionLabels() []SectionLabel { return l.labels }

// Bounds returns the box enclosing every seat position. An empty layout
// yields the zero Rect.
func (l *Layout) Bounds() Rect {
	if len(l.seats) == 0 {
		return Rect{}
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, s := range l.seats {
		r.MinX = math.Min(r.MinX, s.AbsoluteX)
		r.MinY = math.Min(r.MinY, s.AbsoluteY)
		r.MaxX = math.Max(r.MaxX, s.AbsoluteX)
		r.MaxY = math.Max(r.MaxY, s.AbsoluteY)
	}
	return r
}

// Projector memoizes Project by document identity.
type Projector struct {
	mu     sync.Mutex
	doc    *venue.Document
	layout *Layout
}

// Layout returns the projection of doc, reusing the previous result when doc
// is the same document as last time.
func (p *Projector) Layout(doc *venue.Document) *Layout {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.layout != nil && p.doc == doc {
		return p.layout
	}
	p.doc = doc
	p.layout = Project(doc)
	return p.layout
}
