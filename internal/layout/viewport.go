package layout

// Zoom limits and step factors.
const (
	MinScale = 0.1
	MaxScale = 3.0

	WheelZoomIn   = 1.1
	WheelZoomOut  = 0.9
	ButtonZoomIn  = 1.2
	ButtonZoomOut = 0.8
)

// Point is a 2D point in map units.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// ViewBox is the visible region of the map: origin plus extent, in map units.
type ViewBox struct {
	X, Y          float64
	Width, Height float64
}

// ViewportState is the pan offset and zoom scale.
type ViewportState struct {
	Scale  float64
	Offset Point
}

// Viewport owns pan and zoom for a map surface. The zero value is not ready
// for use; call NewViewport.
type Viewport struct {
	state   ViewportState
	panning bool
	anchor  Point
}

// NewViewport returns a viewport at scale 1 and the origin.
func NewViewport() *Viewport {
	return &Viewport{state: ViewportState{Scale: 1}}
}

// State returns the current scale and offset.
func (v *Viewport) State() ViewportState { return v.state }

// Scale returns the current zoom.
func (v *Viewport) Scale() float64 { return v.state.Scale }

// Offset returns the current pan offset.
func (v *Viewport) Offset() Point { return v.state.Offset }

// Panning reports whether a drag is in progress.
func (v *Viewport) Panning() bool { return v.panning }

// PointerDown starts a pan anchored at p.
func (v *Viewport) PointerDown(p Point) {
	v.panning = true
	v.anchor = p
}

// PointerMove translates the offset by the cursor delta divided by the
// scale, so drag speed does not depend on zoom. Ignored when idle.
func (v *Viewport) PointerMove(p Point) {
	if !v.panning {
		return
	}
	d := p.Sub(v.anchor)
	v.PanBy(d.X, d.Y)
	v.anchor = p
}

// PanBy moves the offset by (dx, dy) surface units.
func (v *Viewport) PanBy(dx, dy float64) {
	v.state.Offset.X += dx / v.state.Scale
	v.state.Offset.Y += dy / v.state.Scale
}

// PointerUp ends a pan.
func (v *Viewport) PointerUp() {
	v.panning = false
}

// TouchStart starts a pan when exactly one touch is down.
func (v *Viewport) TouchStart(touches []Point) {
	if len(touches) != 1 {
		return
	}
	v.PointerDown(touches[0])
}

// TouchMove pans with a single touch; multi-touch moves are ignored.
func (v *Viewport) TouchMove(touches []Point) {
	if len(touches) != 1 {
		return
	}
	v.PointerMove(touches[0])
}

// TouchEnd ends a touch pan.
func (v *Viewport) TouchEnd() {
	v.PointerUp()
}

// Wheel zooms at cursor: out for positive deltaY, in otherwise.
func (v *Viewport) Wheel(cursor Point, deltaY float64) {
	factor := WheelZoomIn
	if deltaY > 0 {
		factor = WheelZoomOut
	}
	v.ZoomAt(cursor, factor)
}

// ZoomAt multiplies the scale by factor and moves the offset by
// offset' = cursor - (cursor-offset)*ratio. Under ToScreen this does not pin
// the map point under the cursor; the formula is the required one, keep it.
func (v *Viewport) ZoomAt(cursor Point, factor float64) {
	old := v.state.Scale
	next := clampScale(old * factor)
	ratio := next / old
	v.state.Offset.X = cursor.X - (cursor.X-v.state.Offset.X)*ratio
	v.state.Offset.Y = cursor.Y - (cursor.Y-v.state.Offset.Y)*ratio
	v.state.Scale = next
}

// ZoomIn zooms in by the button step without moving the offset.
func (v *Viewport) ZoomIn() {
	v.state.Scale = clampScale(v.state.Scale * ButtonZoomIn)
}

// ZoomOut zooms out by the button step without moving the offset.
func (v *Viewport) ZoomOut() {
	v.state.Scale = clampScale(v.state.Scale * ButtonZoomOut)
}

// Reset returns to scale 1 at the origin.
func (v *Viewport) Reset() {
	v.state = ViewportState{Scale: 1}
	v.panning = false
}

// ViewBox returns the visible region for a map of the given size.
func (v *Viewport) ViewBox(mapW, mapH float64) ViewBox {
	return ViewBox{
		X:      v.state.Offset.X,
		Y:      v.state.Offset.Y,
		Width:  mapW / v.state.Scale,
		Height: mapH / v.state.Scale,
	}
}

// ToScreen converts a map point to surface coordinates.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{
		X: (p.X - v.state.Offset.X) * v.state.Scale,
		Y: (p.Y - v.state.Offset.Y) * v.state.Scale,
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
