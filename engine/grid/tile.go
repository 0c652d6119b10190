// Package grid implements the tile board: typed cells, bounds-checked
// access, start discovery and element scanning.
package grid

// Tile is a single cell code as written in board files.
type Tile string

// Tile codes.
const (
	None        Tile = "" // out-of-bounds sentinel
	Wall        Tile = "w"
	Floor       Tile = "."
	PlayerStart Tile = "p"
	Crystal     Tile = "c"
	Exit        Tile = "x"
	Block       Tile = "m"
	Hole        Tile = "h"
	Door        Tile = "d"
	OneWayUp    Tile = "ou"
	OneWayDown  Tile = "od"
	OneWayLeft  Tile = "ol"
	OneWayRight Tile = "or"

	// HoleBridged marks a hole proven fillable. It only appears in search
	// snapshots and is treated as floor.
	HoleBridged Tile = "hb"
)

// IsWalkable reports whether pathfinding may step onto the tile. Movable
// blocks count as walkable here even though gameplay pushes them.
func (t Tile) IsWalkable() bool {
	switch t {
	case Floor, Crystal, Exit, Block, Door, HoleBridged,
		OneWayUp, OneWayDown, OneWayLeft, OneWayRight:
		return true
	}
	return false
}

// IsOneWay reports whether the tile is a one-way door.
func (t Tile) IsOneWay() bool {
	switch t {
	case OneWayUp, OneWayDown, OneWayLeft, OneWayRight:
		return true
	}
	return false
}

// OneWayDirection returns the only direction a one-way door may be entered in.
func (t Tile) OneWayDirection() (Direction, bool) {
	switch t {
	case OneWayUp:
		return Up, true
	case OneWayDown:
		return Down, true
	case OneWayLeft:
		return Left, true
	case OneWayRight:
		return Right, true
	}
	return 0, false
}

// IsEmptyFloor reports whether a pushed block may slide onto the tile.
func (t Tile) IsEmptyFloor() bool {
	return t == Floor || t == HoleBridged
}
