package layout

import "math"

// Step is the keyboard navigation step, in map units.
const Step = 40.0

// Direction is a compass direction for keyboard navigation.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Vector returns the navigation step for d.
func (d Direction) Vector() (dx, dy float64) {
	switch d {
	case Up:
		return 0, -Step
	case Down:
		return 0, Step
	case Left:
		return -Step, 0
	case Right:
		return Step, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// FindClosestSeat returns the seat nearest to the origin seat's position
// offset by (dx, dy). The origin itself is never returned. Ties go to the
// seat earliest in traversal order. The step only hints at a direction: in
// sparse layouts the result may lie elsewhere.
func (l *Layout) FindClosestSeat(originID string, dx, dy float64) (PositionedSeat, bool) {
	origin, ok := l.Seat(originID)
	if !ok {
		return PositionedSeat{}, false
	}
	tx, ty := origin.AbsoluteX+dx, origin.AbsoluteY+dy

	best := -1
	bestDist := math.Inf(1)
	for i := range l.seats {
		s := &l.seats[i]
		if s.ID == originID {
			continue
		}
		d := math.Hypot(s.AbsoluteX-tx, s.AbsoluteY-ty)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return PositionedSeat{}, false
	}
	return l.seats[best], true
}

// Move is FindClosestSeat with a compass direction.
func (l *Layout) Move(originID string, d Direction) (PositionedSeat, bool) {
	dx, dy := d.Vector()
	return l.FindClosestSeat(originID, dx, dy)
}
