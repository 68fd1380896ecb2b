package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/litescript/ls-seats/internal/venue"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

// twoSectionDoc builds 2 sections × 1 row × seatsPerRow seats.
func twoSectionDoc(scale float64, seatsPerRow int) *venue.Document {
	doc := &venue.Document{VenueID: "t", Map: venue.MapSize{Width: 800, Height: 600}}
	for _, id := range []string{"A", "B"} {
		section := venue.Section{
			ID:        id,
			Label:     "Section " + id,
			Transform: venue.Transform{X: 10, Y: 20, Scale: scale},
		}
		row := venue.Row{Index: 0}
		for c := 1; c <= seatsPerRow; c++ {
			row.Seats = append(row.Seats, venue.Seat{
				ID:     fmt.Sprintf("%s-1-%d", id, c),
				Col:    c,
				Status: venue.StatusAvailable,
			})
		}
		section.Rows = []venue.Row{row}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func TestProject_CountAndOrder(t *testing.T) {
	doc := venue.Demo()
	l := Project(doc)

	if l.Len() != doc.SeatCount() {
		t.Fatalf("Len = %d, want %d", l.Len(), doc.SeatCount())
	}

	i := 0
	for _, section := range doc.Sections {
		for _, row := range section.Rows {
			for _, seat := range row.Seats {
				if l.Seats()[i].ID != seat.ID {
					t.Fatalf("seat %d = %s, want %s", i, l.Seats()[i].ID, seat.ID)
				}
				i++
			}
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	doc := venue.Demo()
	a, b := Project(doc), Project(doc)
	for i := range a.Seats() {
		sa, sb := a.Seats()[i], b.Seats()[i]
		if sa.AbsoluteX != sb.AbsoluteX || sa.AbsoluteY != sb.AbsoluteY {
			t.Fatalf("seat %s moved between projections", sa.ID)
		}
		if math.IsNaN(sa.AbsoluteX) || math.IsInf(sa.AbsoluteY, 0) {
			t.Fatalf("seat %s has non-finite position", sa.ID)
		}
	}
}

func TestProject_AisleGap(t *testing.T) {
	for _, scale := range []float64{1, 0.5, 2} {
		t.Run(fmt.Sprint(scale), func(t *testing.T) {
			l := Project(twoSectionDoc(scale, 5))
			for _, section := range []string{"A", "B"} {
				c3, _ := l.Seat(section + "-1-3")
				c4, _ := l.Seat(section + "-1-4")
				c5, _ := l.Seat(section + "-1-5")

				if got := c4.AbsoluteX - c3.AbsoluteX; !approx(got, SeatGap*scale) {
					t.Errorf("%s col3->col4 gap = %v, want %v", section, got, SeatGap*scale)
				}
				want := SeatGap*scale + AisleGap*scale
				if got := c5.AbsoluteX - c4.AbsoluteX; !approx(got, want) {
					t.Errorf("%s col4->col5 gap = %v, want %v", section, got, want)
				}
			}
		})
	}
}

func TestProject_SectionOffsets(t *testing.T) {
	l := Project(twoSectionDoc(1, 1))
	a, _ := l.Seat("A-1-1")
	b, _ := l.Seat("B-1-1")

	if !approx(a.AbsoluteX, 10) || !approx(a.AbsoluteY, 20) {
		t.Errorf("A-1-1 at (%v,%v), want (10,20)", a.AbsoluteX, a.AbsoluteY)
	}
	if !approx(b.AbsoluteX-a.AbsoluteX, SectionHorizontalGap) {
		t.Errorf("horizontal section gap = %v", b.AbsoluteX-a.AbsoluteX)
	}
	if !approx(b.AbsoluteY-a.AbsoluteY, SectionGap) {
		t.Errorf("vertical section gap = %v", b.AbsoluteY-a.AbsoluteY)
	}
	if b.SectionIndex != 1 || b.SectionLabel != "Section B" {
		t.Errorf("unexpected section metadata: %+v", b)
	}
}

func TestProject_RowGapAndMissingCol(t *testing.T) {
	doc := &venue.Document{
		Map: venue.MapSize{Width: 100, Height: 100},
		Sections: []venue.Section{{
			ID:        "A",
			Transform: venue.Transform{Scale: 0.5},
			Rows: []venue.Row{
				{Index: 0, Seats: []venue.Seat{{ID: "A-1-1", Col: 0}}},
				{Index: 1, Seats: []venue.Seat{{ID: "A-2-1", Col: 1}}},
			},
		}},
	}
	l := Project(doc)
	r1, _ := l.Seat("A-1-1")
	r2, _ := l.Seat("A-2-1")
	if !approx(r1.AbsoluteX, r2.AbsoluteX) {
		t.Errorf("col 0 should sit at col 1: %v vs %v", r1.AbsoluteX, r2.AbsoluteX)
	}
	if !approx(r2.AbsoluteY-r1.AbsoluteY, RowGap*0.5) {
		t.Errorf("row gap = %v, want %v", r2.AbsoluteY-r1.AbsoluteY, RowGap*0.5)
	}
}

func TestProjector_Memoizes(t *testing.T) {
	var p Projector
	doc := venue.Demo()

	first := p.Layout(doc)
	if p.Layout(doc) != first {
		t.Error("same document should reuse the cached layout")
	}
	other := venue.Demo()
	if p.Layout(other) == first {
		t.Error("a different document should be reprojected")
	}
}

func TestSectionLabelsAndBounds(t *testing.T) {
	l := Project(twoSectionDoc(1, 5))
	labels := l.SectionLabels()
	if len(labels) != 2 {
		t.Fatalf("labels = %d, want 2", len(labels))
	}
	if !approx(labels[1].Y, 20+SectionGap-16) {
		t.Errorf("label B y = %v", labels[1].Y)
	}

	b := l.Bounds()
	if !approx(b.MinX, 10) || !approx(b.MinY, 20) {
		t.Errorf("bounds min = (%v,%v)", b.MinX, b.MinY)
	}
	if b.Width() <= 0 || b.Height() <= 0 {
		t.Errorf("bounds should be non-degenerate: %+v", b)
	}

	if (Project(nil).Bounds() != Rect{}) {
		t.Error("empty layout should have zero bounds")
	}
}

func TestFindClosestSeat(t *testing.T) {
	l := Project(twoSectionDoc(1, 5))

	tests := []struct {
		name   string
		origin string
		dir    Direction
		want   string
	}{
		{"right", "A-1-2", Right, "A-1-3"},
		{"left", "A-1-2", Left, "A-1-1"},
		{"right across aisle", "A-1-4", Right, "A-1-5"},
		// Nothing below in section A: the heuristic picks the nearest
		// seat to the target point rather than failing.
		{"down from first row", "A-1-1", Down, "A-1-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Move(tt.origin, tt.dir)
			if !ok {
				t.Fatal("expected a seat")
			}
			if got.ID != tt.want {
				t.Errorf("Move(%s, %s) = %s, want %s", tt.origin, tt.dir, got.ID, tt.want)
			}
		})
	}
}

func TestFindClosestSeat_NeverOrigin(t *testing.T) {
	l := Project(venue.Demo())
	for _, s := range l.Seats()[:40] {
		for _, d := range []Direction{Up, Down, Left, Right} {
			got, ok := l.Move(s.ID, d)
			if !ok {
				t.Fatalf("no seat from %s", s.ID)
			}
			if got.ID == s.ID {
				t.Fatalf("Move(%s, %s) returned the origin", s.ID, d)
			}
		}
		// A zero step targets the origin itself; it still must not win.
		if got, _ := l.FindClosestSeat(s.ID, 0, 0); got.ID == s.ID {
			t.Fatalf("zero step returned origin %s", s.ID)
		}
	}
}

func TestFindClosestSeat_None(t *testing.T) {
	single := &venue.Document{
		Map: venue.MapSize{Width: 10, Height: 10},
		Sections: []venue.Section{{
			ID: "A", Transform: venue.Transform{Scale: 1},
			Rows: []venue.Row{{Seats: []venue.Seat{{ID: "A-1-1", Col: 1}}}},
		}},
	}
	l := Project(single)
	if _, ok := l.FindClosestSeat("A-1-1", Step, 0); ok {
		t.Error("a lone seat has no neighbour")
	}
	if _, ok := l.FindClosestSeat("missing", Step, 0); ok {
		t.Error("unknown origin should yield none")
	}
}

func TestFindClosestSeat_TieGoesToFirst(t *testing.T) {
	// A zero step from A-1-2 leaves A-1-1 and A-1-3 equidistant.
	l := Project(twoSectionDoc(1, 3))
	got, ok := l.FindClosestSeat("A-1-2", 0, 0)
	if !ok || got.ID != "A-1-1" {
		t.Errorf("tie broke to %s, want A-1-1", got.ID)
	}
}

func TestViewport_Clamp(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 50; i++ {
		v.Wheel(Point{}, -1)
	}
	if v.Scale() != MaxScale {
		t.Errorf("scale = %v, want %v", v.Scale(), MaxScale)
	}
	for i := 0; i < 100; i++ {
		v.ZoomOut()
	}
	if v.Scale() != MinScale {
		t.Errorf("scale = %v, want %v", v.Scale(), MinScale)
	}
}

func TestViewport_ZoomRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		start  ViewportState
		cursor Point
		factor float64
	}{
		{"origin", ViewportState{Scale: 1}, Point{0, 0}, 1.1},
		{"offset", ViewportState{Scale: 1.5, Offset: Point{-40, 25}}, Point{320, 180}, 1.25},
		{"zoomed out", ViewportState{Scale: 0.5, Offset: Point{100, 100}}, Point{12, 900}, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewport()
			v.state = tt.start

			v.ZoomAt(tt.cursor, tt.factor)
			v.ZoomAt(tt.cursor, 1/tt.factor)

			got := v.State()
			if math.Abs(got.Scale-tt.start.Scale) > 1e-9 ||
				math.Abs(got.Offset.X-tt.start.Offset.X) > 1e-9 ||
				math.Abs(got.Offset.Y-tt.start.Offset.Y) > 1e-9 {
				t.Errorf("after round trip %+v, want %+v", got, tt.start)
			}
		})
	}
}

func TestViewport_ZoomAtOffsetFormula(t *testing.T) {
	v := NewViewport()
	v.state = ViewportState{Scale: 1, Offset: Point{10, 10}}
	cursor := Point{110, 60}

	v.ZoomAt(cursor, 2)
	// offset' = cursor - (cursor - offset) * 2
	if !approx(v.Offset().X, 110-100*2) || !approx(v.Offset().Y, 60-50*2) {
		t.Errorf("offset = %+v", v.Offset())
	}
	if v.Scale() != 2 {
		t.Errorf("scale = %v", v.Scale())
	}

	// The map point that was under the cursor does not stay there.
	if s := v.ToScreen(Point{120, 70}); approx(s.X, cursor.X) && approx(s.Y, cursor.Y) {
		t.Errorf("ToScreen = %+v; offset formula changed", s)
	}
}

func TestViewport_WheelDirection(t *testing.T) {
	v := NewViewport()
	v.Wheel(Point{}, 120)
	if !approx(v.Scale(), 0.9) {
		t.Errorf("positive delta should zoom out, scale = %v", v.Scale())
	}
	v.Reset()
	v.Wheel(Point{}, -120)
	if !approx(v.Scale(), 1.1) {
		t.Errorf("negative delta should zoom in, scale = %v", v.Scale())
	}
}

func TestViewport_Pan(t *testing.T) {
	v := NewViewport()
	v.PointerMove(Point{50, 50})
	if v.Offset() != (Point{}) {
		t.Error("move while idle must not pan")
	}

	v.ZoomIn() // 1.2
	v.ZoomIn() // 1.44
	scale := v.Scale()

	v.PointerDown(Point{100, 100})
	if !v.Panning() {
		t.Fatal("expected panning state")
	}
	v.PointerMove(Point{130, 80})
	v.PointerMove(Point{160, 60})
	v.PointerUp()

	if !approx(v.Offset().X, 60/scale) || !approx(v.Offset().Y, -40/scale) {
		t.Errorf("offset = %+v, want (%v,%v)", v.Offset(), 60/scale, -40/scale)
	}

	v.PointerMove(Point{500, 500})
	if !approx(v.Offset().X, 60/scale) {
		t.Error("move after release must not pan")
	}
}

func TestViewport_Touch(t *testing.T) {
	v := NewViewport()
	v.TouchStart([]Point{{0, 0}, {10, 10}})
	if v.Panning() {
		t.Fatal("two-finger touch must not start a pan")
	}
	v.TouchStart([]Point{{0, 0}})
	v.TouchMove([]Point{{10, 0}, {20, 0}})
	if v.Offset() != (Point{}) {
		t.Error("multi-touch move must be ignored")
	}
	v.TouchMove([]Point{{10, 5}})
	v.TouchEnd()
	if v.Offset() != (Point{10, 5}) || v.Panning() {
		t.Errorf("offset = %+v panning = %v", v.Offset(), v.Panning())
	}
}

func TestViewport_ResetAndViewBox(t *testing.T) {
	v := NewViewport()
	v.ZoomAt(Point{40, 40}, 2)
	v.PointerDown(Point{})
	v.PointerMove(Point{10, 10})

	vb := v.ViewBox(800, 600)
	if !approx(vb.Width, 400) || !approx(vb.Height, 300) {
		t.Errorf("viewbox = %+v", vb)
	}
	if vb.X != v.Offset().X || vb.Y != v.Offset().Y {
		t.Errorf("viewbox origin %v,%v != offset %+v", vb.X, vb.Y, v.Offset())
	}

	v.Reset()
	if v.State() != (ViewportState{Scale: 1}) || v.Panning() {
		t.Errorf("after Reset: %+v panning=%v", v.State(), v.Panning())
	}
}

func TestViewport_ToScreen(t *testing.T) {
	v := NewViewport()
	v.ZoomAt(Point{30, 70}, 1.7)
	// offset is now (-21, -49)
	got := v.ToScreen(Point{123.5, -42})
	if math.Abs(got.X-245.65) > 1e-6 || math.Abs(got.Y-11.9) > 1e-6 {
		t.Errorf("ToScreen = %+v, want {245.65 11.9}", got)
	}
}
