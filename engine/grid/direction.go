package grid

import "github.com/nathoo/tilequest/types"

// Direction is one of the four movement directions.
type Direction int

// Direction constants, in neighbour expansion order.
const (
	Up Direction = iota
	Right
	Down
	Left
)

// AllDirections returns the directions in expansion order: up, right, down, left.
func AllDirections() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Delta returns the x and y offsets of one step.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// Step returns the position one cell away in direction d.
func Step(p types.Position, d Direction) types.Position {
	dx, dy := d.Delta()
	return types.Position{X: p.X + dx, Y: p.Y + dy}
}

// ParseDirection maps a direction name to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "right":
		return Right, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	}
	return 0, false
}

// Manhattan returns the 4-connected distance between two positions.
func Manhattan(a, b types.Position) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
