package reach

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

// Tiles is the read-only grid view the search runs over.
type Tiles interface {
	Get(x, y int) grid.Tile
	Width() int
	Height() int
}

type change struct {
	idx  int
	tile grid.Tile
}

// Snapshot is a base grid plus a small sorted list of overridden cells.
// Snapshots are values: With returns a new snapshot and never mutates the
// receiver, so sibling search branches share the base and their common
// prefix of changes.
type Snapshot struct {
	base    Tiles
	changes []change
	key     string
}

// NewSnapshot wraps base with an empty overlay.
func NewSnapshot(base Tiles) Snapshot {
	return Snapshot{base: base}
}

// Width returns the base width.
func (s Snapshot) Width() int { return s.base.Width() }

// Height returns the base height.
func (s Snapshot) Height() int { return s.base.Height() }

// Get returns the overlaid tile at (x, y).
func (s Snapshot) Get(x, y int) grid.Tile {
	if x < 0 || y < 0 || x >= s.base.Width() || y >= s.base.Height() {
		return grid.None
	}
	idx := y*s.base.Width() + x
	i := sort.Search(len(s.changes), func(i int) bool { return s.changes[i].idx >= idx })
	if i < len(s.changes) && s.changes[i].idx == idx {
		return s.changes[i].tile
	}
	return s.base.Get(x, y)
}

// At returns the overlaid tile at p.
func (s Snapshot) At(p types.Position) grid.Tile {
	return s.Get(p.X, p.Y)
}

// With returns a snapshot where p holds t. Writes outside the grid return
// the receiver unchanged.
func (s Snapshot) With(p types.Position, t grid.Tile) Snapshot {
	w := s.base.Width()
	if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= s.base.Height() {
		return s
	}
	idx := p.Y*w + p.X
	i := sort.Search(len(s.changes), func(i int) bool { return s.changes[i].idx >= idx })

	next := make([]change, 0, len(s.changes)+1)
	next = append(next, s.changes[:i]...)
	if i < len(s.changes) && s.changes[i].idx == idx {
		i++
	}
	if s.base.Get(p.X, p.Y) != t {
		next = append(next, change{idx: idx, tile: t})
	}
	next = append(next, s.changes[i:]...)
	return Snapshot{base: s.base, changes: next, key: encode(next)}
}

// Key identifies the overlay. Two snapshots of the same base with the same
// key hold identical tiles.
func (s Snapshot) Key() string { return s.key }

// Changes returns the number of overridden cells.
func (s Snapshot) Changes() int { return len(s.changes) }

func encode(changes []change) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(strconv.Itoa(c.idx))
		b.WriteByte('=')
		b.WriteString(string(c.tile))
		b.WriteByte(';')
	}
	return b.String()
}
