// Package generate builds random boards and keeps only the ones a player
// can finish.
package generate

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/reach"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// ErrNoSolvableLevel is returned when every attempt produced a board that
// could not be finished.
var ErrNoSolvableLevel = errors.New("no solvable level found")

// Feature sizes and densities.
const (
	roomSize      = 5
	depotSize     = 4
	depotBlock    = 0.7
	depotWall     = 0.3
	searchRetries = 100
	minSize       = roomSize + 2
)

// Options controls generation.
type Options struct {
	Width       int
	Height      int
	Passes      int
	MaxAttempts int
	// BudgetFactor bounds each solvability query; zero uses the default.
	BudgetFactor int
}

// DefaultOptions returns a 22x16 board with five feature passes.
func DefaultOptions() Options {
	return Options{Width: 22, Height: 16, Passes: 5, MaxAttempts: 50}
}

// Generate lays out boards until one passes the push-aware solvability
// check or MaxAttempts is used up.
func Generate(opts Options, rng *engine.RNG) (types.BoardDef, error) {
	if opts.Width < minSize || opts.Height < minSize {
		return types.BoardDef{}, fmt.Errorf("board must be at least %dx%d, got %dx%d", minSize, minSize, opts.Width, opts.Height)
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		l := newLayout(opts.Width, opts.Height, rng)
		for p := 0; p < opts.Passes; p++ {
			if rng.Intn(2) == 0 {
				l.addProtectedCrystal()
			} else {
				l.addBlockDepot()
			}
		}
		if !l.addPlayerAndExit() {
			continue
		}
		if l.solvable(opts.BudgetFactor) {
			logger.Log.WithFields(logrus.Fields{"attempt": i, "crystals": l.crystals}).Debug("level generated")
			return types.BoardDef{Tiles: l.rows(), RequiredCrystals: l.crystals}, nil
		}
		logger.Log.WithField("attempt", i).Debug("generated level rejected")
	}
	return types.BoardDef{}, ErrNoSolvableLevel
}

type layout struct {
	g        *grid.Grid
	rng      *engine.RNG
	crystals int
	start    types.Position
	exit     types.Position
}

// newLayout is a floor rectangle inside a wall border.
func newLayout(w, h int, rng *engine.RNG) *layout {
	cells := make([][]string, h)
	for y := range cells {
		cells[y] = make([]string, w)
		for x := range cells[y] {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				cells[y][x] = string(grid.Wall)
			} else {
				cells[y][x] = string(grid.Floor)
			}
		}
	}
	return &layout{g: grid.FromRows(cells), rng: rng}
}

// addProtectedCrystal walls a crystal into a room with one doorway and
// puts one to three holes beside it, placing a block elsewhere on the
// board for each hole.
func (l *layout) addProtectedCrystal() {
	origin, ok := l.findEmptyArea(roomSize, roomSize)
	if !ok {
		return
	}
	for dy := 0; dy < roomSize; dy++ {
		for dx := 0; dx < roomSize; dx++ {
			t := grid.Floor
			if dx == 0 || dy == 0 || dx == roomSize-1 || dy == roomSize-1 {
				t = grid.Wall
			}
			l.g.Set(origin.X+dx, origin.Y+dy, t)
		}
	}

	center := types.Position{X: origin.X + roomSize/2, Y: origin.Y + roomSize/2}
	dirs := grid.AllDirections()
	l.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	// Holes take the first directions; the doorway the last.
	door := center
	for i := 0; i < roomSize/2; i++ {
		door = grid.Step(door, dirs[len(dirs)-1])
	}
	l.g.SetAt(door, grid.Floor)
	l.g.SetAt(center, grid.Crystal)
	l.crystals++

	holes := l.rng.Between(1, 3)
	for i := 0; i < holes; i++ {
		l.g.SetAt(grid.Step(center, dirs[i]), grid.Hole)
		if p, ok := l.findEmptySpace(); ok {
			l.g.SetAt(p, grid.Block)
		}
	}
}

// addBlockDepot scatters blocks and a few walls over a 4x4 area.
func (l *layout) addBlockDepot() {
	origin, ok := l.findEmptyArea(depotSize, depotSize)
	if !ok {
		return
	}
	for dy := 0; dy < depotSize; dy++ {
		for dx := 0; dx < depotSize; dx++ {
			switch {
			case l.rng.Chance(depotBlock):
				l.g.Set(origin.X+dx, origin.Y+dy, grid.Block)
			case l.rng.Chance(depotWall):
				l.g.Set(origin.X+dx, origin.Y+dy, grid.Wall)
			}
		}
	}
}

func (l *layout) addPlayerAndExit() bool {
	start, ok := l.findEmptySpace()
	if !ok {
		return false
	}
	l.start = start
	l.g.SetAt(start, grid.PlayerStart)

	exit, ok := l.findEmptySpace()
	if !ok {
		return false
	}
	l.exit = exit
	l.g.SetAt(exit, grid.Exit)
	return true
}

func (l *layout) findEmptySpace() (types.Position, bool) {
	w, h := l.g.Width(), l.g.Height()
	for i := 0; i < searchRetries; i++ {
		p := types.Position{X: l.rng.Between(1, w-2), Y: l.rng.Between(1, h-2)}
		if l.g.At(p) == grid.Floor {
			return p, true
		}
	}
	return types.Position{}, false
}

func (l *layout) findEmptyArea(w, h int) (types.Position, bool) {
	maxX, maxY := l.g.Width()-w-1, l.g.Height()-h-1
	if maxX < 1 || maxY < 1 {
		return types.Position{}, false
	}
	for i := 0; i < searchRetries; i++ {
		p := types.Position{X: l.rng.Between(1, maxX), Y: l.rng.Between(1, maxY)}
		if l.areaEmpty(p, w, h) {
			return p, true
		}
	}
	return types.Position{}, false
}

func (l *layout) areaEmpty(origin types.Position, w, h int) bool {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if l.g.Get(origin.X+dx, origin.Y+dy) != grid.Floor {
				return false
			}
		}
	}
	return true
}

// solvable checks each crystal and the exit with pushing and hole bridging.
func (l *layout) solvable(budget int) bool {
	b, err := grid.NewBoard(types.BoardDef{Tiles: l.rows(), RequiredCrystals: l.crystals})
	if err != nil {
		return false
	}
	opts := reach.Options{AllowPushing: true, HoleBridging: true, BudgetFactor: budget}
	el := b.Elements()
	for _, c := range el.Crystals {
		if !reach.PathExists(b, b.Start, c, opts) {
			return false
		}
	}
	return reach.PathExists(b, b.Start, l.exit, opts)
}

func (l *layout) rows() [][]string {
	return l.g.Rows()
}
