// Package reach answers "is there a path from A to B" over a tile grid,
// optionally modelling blocks that the walker pushes ahead of itself.
package reach

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

// DefaultBudgetFactor is the number of node expansions allowed per grid cell.
const DefaultBudgetFactor = 64

// Options controls a reachability query.
type Options struct {
	// AllowPushing makes blocks obstacles that can be shoved one cell into
	// empty floor or a hole instead of walkable cells.
	AllowPushing bool
	// HoleBridging treats holes with an adjacent reachable block as floor.
	HoleBridging bool
	// BudgetFactor caps expansions at width*height*BudgetFactor. Zero means
	// DefaultBudgetFactor.
	BudgetFactor int
}

type node struct {
	pos  types.Position
	snap Snapshot
	g    int
	f    int
	seq  int
}

type nodeKey struct {
	pos     types.Position
	overlay string
}

func (n node) key() nodeKey {
	return nodeKey{pos: n.pos, overlay: n.snap.Key()}
}

// PathExists reports whether end can be reached from start by 4-directional
// steps. The search is A* with a Manhattan heuristic; among equal f values
// the earliest discovered node is expanded first. Exhausting the open set or
// the iteration budget yields false.
func PathExists(t Tiles, start, end types.Position, opts Options) bool {
	if start == end {
		return true
	}
	w, h := t.Width(), t.Height()
	if w <= 0 || h <= 0 {
		return false
	}

	snap := NewSnapshot(t)
	if opts.HoleBridging {
		snap = BridgeHoles(snap, start)
	}

	factor := opts.BudgetFactor
	if factor <= 0 {
		factor = DefaultBudgetFactor
	}
	budget := w * h * factor

	open := heap.New(func(a, b node) bool {
		if a.f != b.f {
			return a.f < b.f
		}
		return a.seq < b.seq
	})
	best := map[nodeKey]int{}
	closed := mapset.New[nodeKey]()
	seqOf := map[nodeKey]int{}

	seq := 0
	push := func(n node) {
		k := n.key()
		if g, ok := best[k]; ok && g <= n.g {
			return
		}
		best[k] = n.g
		// A node re-opened with a lower cost keeps its discovery order.
		s, ok := seqOf[k]
		if !ok {
			s = seq
			seq++
			seqOf[k] = s
		}
		n.seq = s
		n.f = n.g + grid.Manhattan(n.pos, end)
		open.Push(n)
	}
	push(node{pos: start, snap: snap})

	for iterations := 0; iterations < budget; iterations++ {
		cur, ok := open.Pop()
		if !ok {
			return false
		}
		k := cur.key()
		if closed.Has(k) || best[k] < cur.g {
			continue
		}
		if cur.pos == end {
			return true
		}
		closed.Put(k)

		for _, d := range grid.AllDirections() {
			next, ok := step(cur.snap, cur.pos, d, opts.AllowPushing)
			if !ok {
				continue
			}
			next.g = cur.g + 1
			if closed.Has(next.key()) {
				continue
			}
			push(next)
		}
	}
	return false
}

// step tries to move from p one cell in direction d.
func step(s Snapshot, p types.Position, d grid.Direction, pushing bool) (node, bool) {
	to := grid.Step(p, d)
	t := s.At(to)
	if !t.IsWalkable() {
		return node{}, false
	}
	if t != grid.Block || !pushing {
		return node{pos: to, snap: s}, true
	}

	beyond := grid.Step(to, d)
	switch bt := s.At(beyond); {
	case bt.IsEmptyFloor():
		return node{pos: to, snap: s.With(to, grid.Floor).With(beyond, grid.Block)}, true
	case bt == grid.Hole:
		return node{pos: to, snap: s.With(to, grid.Floor).With(beyond, grid.Floor)}, true
	}
	return node{}, false
}

// Reachable flood-fills the cells walkable from start, treating blocks as
// walkable.
func Reachable(t Tiles, start types.Position) mapset.Set[types.Position] {
	seen := mapset.New[types.Position]()
	if t.Get(start.X, start.Y) == grid.None {
		return seen
	}
	queue := []types.Position{start}
	seen.Put(start)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(cur) {
			if seen.Has(n) || !t.Get(n.X, n.Y).IsWalkable() {
				continue
			}
			seen.Put(n)
			queue = append(queue, n)
		}
	}
	return seen
}

// Neighbors returns the four cells around p: up, right, down, left.
func Neighbors(p types.Position) [4]types.Position {
	return [4]types.Position{
		{X: p.X, Y: p.Y - 1},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X - 1, Y: p.Y},
	}
}

// Walkable reports whether p holds a tile pathfinding may step onto.
func Walkable(t Tiles, p types.Position) bool {
	return t.Get(p.X, p.Y).IsWalkable()
}

// BridgeHoles marks every hole that has a movable block next to it, with
// that block reachable from start, as HoleBridged.
func BridgeHoles(s Snapshot, start types.Position) Snapshot {
	reachable := Reachable(s, start)
	out := s
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != grid.Hole {
				continue
			}
			hole := types.Position{X: x, Y: y}
			for _, n := range Neighbors(hole) {
				if s.At(n) == grid.Block && reachable.Has(n) {
					out = out.With(hole, grid.HoleBridged)
					break
				}
			}
		}
	}
	return out
}
