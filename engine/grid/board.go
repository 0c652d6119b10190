package grid

import (
	"errors"

	"github.com/nathoo/tilequest/types"
)

// Load-time validation failures.
var (
	ErrInvalidBoard = errors.New("Invalid board data")
	ErrNoStart      = errors.New("No valid starting position found on the board")
)

// Board is a grid plus the player start and crystal requirement. It keeps
// the definition it was built from so it can be reset.
type Board struct {
	*Grid
	Start            types.Position
	RequiredCrystals int

	original types.BoardDef
}

// Elements are the notable cells of a board, recomputed on every call.
type Elements struct {
	Start    types.Position
	Crystals []types.Position
	Holes    []types.Position
	Blocks   []types.Position
	Exit     *types.Position
}

// NewBoard validates def and builds a board from it. The first player-start
// marker becomes the start and is replaced by floor; without one the first
// floor cell is used.
func NewBoard(def types.BoardDef) (*Board, error) {
	if len(def.Tiles) == 0 || len(def.Tiles[0]) == 0 {
		return nil, ErrInvalidBoard
	}
	b := &Board{
		RequiredCrystals: def.RequiredCrystals,
		original:         CloneDef(def),
	}
	if b.RequiredCrystals < 0 {
		b.RequiredCrystals = 0
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) build() error {
	g := FromRows(b.original.Tiles)
	start, ok := findStart(g)
	if !ok {
		return ErrNoStart
	}
	b.Grid = g
	b.Start = start
	return nil
}

func findStart(g *Grid) (types.Position, bool) {
	var firstFloor *types.Position
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			switch g.Get(x, y) {
			case PlayerStart:
				g.Set(x, y, Floor)
				return types.Position{X: x, Y: y}, true
			case Floor:
				if firstFloor == nil {
					firstFloor = &types.Position{X: x, Y: y}
				}
			}
		}
	}
	if firstFloor != nil {
		return *firstFloor, true
	}
	return types.Position{}, false
}

// Reset restores the tiles and start position the board was created with.
func (b *Board) Reset() {
	// The original already passed validation, so build cannot fail.
	_ = b.build()
}

// Original returns a copy of the definition the board was built from.
func (b *Board) Original() types.BoardDef {
	return CloneDef(b.original)
}

// RemoveCrystal turns a crystal cell into floor.
func (b *Board) RemoveCrystal(p types.Position) {
	if b.At(p) == Crystal {
		b.SetAt(p, Floor)
	}
}

// Elements scans the board in row-major order.
func (b *Board) Elements() Elements {
	return ScanElements(b.Grid, b.Start)
}

// ScanElements collects crystals, holes, blocks and the exit of g. When a
// board has several exits the last one scanned wins.
func ScanElements(g *Grid, start types.Position) Elements {
	el := Elements{Start: start}
	g.Each(func(p types.Position, t Tile) {
		switch t {
		case Crystal:
			el.Crystals = append(el.Crystals, p)
		case Hole:
			el.Holes = append(el.Holes, p)
		case Block:
			el.Blocks = append(el.Blocks, p)
		case Exit:
			exit := p
			el.Exit = &exit
		}
	})
	return el
}
