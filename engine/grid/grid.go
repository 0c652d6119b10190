package grid

import (
	"strings"

	"github.com/nathoo/tilequest/types"
)

// Grid is a rectangular array of tiles. Reads outside the grid return None
// and writes outside it are ignored, so neighbour probing never needs a
// bounds check at the call site.
type Grid struct {
	cells  [][]Tile
	width  int
	height int
}

// FromRows builds a grid from board-file rows. Width is taken from the
// first row.
func FromRows(rows [][]string) *Grid {
	g := &Grid{height: len(rows)}
	if len(rows) > 0 {
		g.width = len(rows[0])
	}
	g.cells = make([][]Tile, len(rows))
	for y, row := range rows {
		g.cells[y] = make([]Tile, len(row))
		for x, code := range row {
			g.cells[y][x] = Tile(code)
		}
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return y >= 0 && y < g.height && x >= 0 && x < g.width && x < len(g.cells[y])
}

// Get returns the tile at (x, y), or None when out of bounds.
func (g *Grid) Get(x, y int) Tile {
	if !g.InBounds(x, y) {
		return None
	}
	return g.cells[y][x]
}

// At returns the tile at p.
func (g *Grid) At(p types.Position) Tile {
	return g.Get(p.X, p.Y)
}

// Set stores t at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, t Tile) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y][x] = t
}

// SetAt stores t at p.
func (g *Grid) SetAt(p types.Position, t Tile) {
	g.Set(p.X, p.Y, t)
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([][]Tile, len(g.cells))}
	for y, row := range g.cells {
		c.cells[y] = append([]Tile(nil), row...)
	}
	return c
}

// Rows returns the grid in board-file form.
func (g *Grid) Rows() [][]string {
	rows := make([][]string, len(g.cells))
	for y, row := range g.cells {
		rows[y] = make([]string, len(row))
		for x, t := range row {
			rows[y][x] = string(t)
		}
	}
	return rows
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(p types.Position, t Tile)) {
	for y, row := range g.cells {
		for x, t := range row {
			fn(types.Position{X: x, Y: y}, t)
		}
	}
}

// String renders the grid one row per line, one character per cell.
// One-way doors render as arrows.
func (g *Grid) String() string {
	var b strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, t := range row {
			b.WriteString(Glyph(t))
		}
	}
	return b.String()
}

// Glyph returns the single-character console form of a tile.
func Glyph(t Tile) string {
	switch t {
	case Wall:
		return "#"
	case Floor, HoleBridged:
		return "."
	case Crystal:
		return "*"
	case Exit:
		return "X"
	case Block:
		return "B"
	case Hole:
		return "O"
	case Door:
		return "D"
	case OneWayUp:
		return "^"
	case OneWayDown:
		return "v"
	case OneWayLeft:
		return "<"
	case OneWayRight:
		return ">"
	case PlayerStart:
		return "p"
	default:
		return "?"
	}
}
