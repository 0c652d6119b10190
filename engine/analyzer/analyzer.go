// Package analyzer decides whether a board can be completed: every crystal
// and the exit must be reachable, and every hole that cuts a needed path
// must be fillable by a reachable, pushable block.
package analyzer

import (
	"github.com/leonelquinteros/gotext"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/reach"
	"github.com/nathoo/tilequest/types"
)

// Options tunes the searches the analyzer runs.
type Options struct {
	BudgetFactor int
	// HoleBridging enables the bridge pre-pass for the push-aware queries
	// used by Report.
	HoleBridging bool
}

// DefaultOptions returns the options used by Analyze.
func DefaultOptions() Options {
	return Options{BudgetFactor: reach.DefaultBudgetFactor, HoleBridging: true}
}

// Fill lists the blocks that can be pushed into one critical hole.
type Fill struct {
	Hole   types.Position   `json:"hole"`
	Blocks []types.Position `json:"blocks"`
}

// Result is the verdict for one board.
type Result struct {
	Playable      bool             `json:"playable"`
	Reasons       []string         `json:"reasons"`
	CriticalHoles []types.Position `json:"criticalHoles"`
	Pushable      []Fill           `json:"pushable"`
}

// Analyzer runs playability checks. The zero value is not usable; call New.
type Analyzer struct {
	opts Options
}

// New returns an analyzer using opts.
func New(opts Options) *Analyzer {
	if opts.BudgetFactor <= 0 {
		opts.BudgetFactor = reach.DefaultBudgetFactor
	}
	return &Analyzer{opts: opts}
}

// Analyze checks b with DefaultOptions.
func Analyze(b *grid.Board) Result {
	return New(DefaultOptions()).Analyze(b)
}

func (a *Analyzer) plain() reach.Options {
	return reach.Options{BudgetFactor: a.opts.BudgetFactor}
}

func (a *Analyzer) pushing() reach.Options {
	return reach.Options{AllowPushing: true, HoleBridging: a.opts.HoleBridging, BudgetFactor: a.opts.BudgetFactor}
}

// Analyze checks b. The board is not modified.
func (a *Analyzer) Analyze(b *grid.Board) Result {
	el := b.Elements()
	res := Result{Reasons: []string{}, CriticalHoles: []types.Position{}, Pushable: []Fill{}}

	for _, c := range el.Crystals {
		if !reach.PathExists(b, el.Start, c, a.plain()) {
			res.Reasons = append(res.Reasons, gotext.Get("Player cannot reach crystal at (%d, %d)", c.X, c.Y))
		}
	}
	if el.Exit != nil && !reach.PathExists(b, el.Start, *el.Exit, a.plain()) {
		res.Reasons = append(res.Reasons, gotext.Get("Player cannot reach exit at (%d, %d)", el.Exit.X, el.Exit.Y))
	}

	res.CriticalHoles = a.criticalHoles(b, el)
	if len(res.CriticalHoles) > len(el.Blocks) {
		res.Reasons = append(res.Reasons, gotext.Get("Not enough movable blocks (%d) to fill critical holes (%d)", len(el.Blocks), len(res.CriticalHoles)))
	}

	reachable := reach.Reachable(b, el.Start)
	for _, h := range res.CriticalHoles {
		fill := Fill{Hole: h, Blocks: []types.Position{}}
		for _, blk := range el.Blocks {
			if reachable.Has(blk) && CanPushInto(b, blk, h) {
				fill.Blocks = append(fill.Blocks, blk)
			}
		}
		res.Pushable = append(res.Pushable, fill)
		if len(fill.Blocks) == 0 {
			res.Reasons = append(res.Reasons, gotext.Get("Hole at (%d, %d) cannot be filled by any movable block", h.X, h.Y))
		}
	}

	res.Playable = len(res.Reasons) == 0
	return res
}

// criticalHoles finds the holes that cut a path to a crystal or the exit.
// A target counts when it is unreachable as is but reachable once every
// hole is removed. With holes treated as floor, dead-end branches that hold
// neither the start nor a cut target are pruned away; each remaining hole
// is critical unless a reachable block sits next to it.
func (a *Analyzer) criticalHoles(b *grid.Board, el grid.Elements) []types.Position {
	if len(el.Holes) == 0 {
		return []types.Position{}
	}
	open := reach.NewSnapshot(b)
	for _, h := range el.Holes {
		open = open.With(h, grid.Floor)
	}

	targets := append([]types.Position{}, el.Crystals...)
	if el.Exit != nil {
		targets = append(targets, *el.Exit)
	}
	keep := mapset.New[types.Position]()
	keep.Put(el.Start)
	for _, t := range targets {
		if !reach.PathExists(b, el.Start, t, a.plain()) && reach.PathExists(open, el.Start, t, a.plain()) {
			keep.Put(t)
		}
	}
	if keep.Size() == 1 {
		return []types.Position{}
	}

	reachable := reach.Reachable(b, el.Start)
	onPath := pruneDeadEnds(reach.Reachable(open, el.Start), keep)
	critical := []types.Position{}
	for _, h := range el.Holes {
		if !onPath.Has(h) || hasAdjacentBlock(b, h, reachable) {
			continue
		}
		critical = append(critical, h)
	}
	return critical
}

// pruneDeadEnds repeatedly removes cells of area with at most one
// neighbor in area, except the cells in keep. What is left are the cells
// that can lie on a route between kept cells.
func pruneDeadEnds(area, keep mapset.Set[types.Position]) mapset.Set[types.Position] {
	degree := map[types.Position]int{}
	var leaves []types.Position
	area.Each(func(p types.Position) {
		for _, n := range reach.Neighbors(p) {
			if area.Has(n) {
				degree[p]++
			}
		}
	})
	area.Each(func(p types.Position) {
		if degree[p] <= 1 && !keep.Has(p) {
			leaves = append(leaves, p)
		}
	})
	for len(leaves) > 0 {
		p := leaves[len(leaves)-1]
		leaves = leaves[:len(leaves)-1]
		if !area.Has(p) {
			continue
		}
		area.Remove(p)
		for _, n := range reach.Neighbors(p) {
			if !area.Has(n) {
				continue
			}
			degree[n]--
			if degree[n] <= 1 && !keep.Has(n) {
				leaves = append(leaves, n)
			}
		}
	}
	return area
}

func hasAdjacentBlock(t reach.Tiles, h types.Position, reachable mapset.Set[types.Position]) bool {
	for _, d := range grid.AllDirections() {
		n := grid.Step(h, d)
		if t.Get(n.X, n.Y) == grid.Block && reachable.Has(n) {
			return true
		}
	}
	return false
}

// CanPushInto reports whether the block at blk can be shoved into hole,
// possibly through a chain of pushes across empty floor. Each push needs a
// walkable, block-free cell behind the block for the player to stand on.
func CanPushInto(t reach.Tiles, blk, hole types.Position) bool {
	visited := mapset.New[types.Position]()
	return canPush(reach.NewSnapshot(t), blk, hole, &visited)
}

func canPush(s reach.Snapshot, blk, hole types.Position, visited *mapset.Set[types.Position]) bool {
	visited.Put(blk)
	for _, d := range grid.AllDirections() {
		stand := grid.Step(blk, d.Opposite())
		if st := s.At(stand); !st.IsWalkable() || st == grid.Block {
			continue
		}
		target := grid.Step(blk, d)
		if target == hole {
			return true
		}
		if !s.At(target).IsEmptyFloor() || visited.Has(target) {
			continue
		}
		moved := s.With(blk, grid.Floor).With(target, grid.Block)
		if canPush(moved, target, hole, visited) {
			return true
		}
	}
	return false
}
