// Package world links boards into a world through transitions and keeps
// track of where the player has been.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

// ErrUnknownBoard is returned for board ids missing from the world.
var ErrUnknownBoard = errors.New("Unknown board")

// Transition types.
const (
	TransitionExit = "exit"
	TransitionDoor = "door"
)

// Transition moves the player from a cell on one board to a cell on another.
type Transition struct {
	FromBoard string
	From      types.Position
	Type      string
	ToBoard   string
	To        types.Position
}

type cellKey struct {
	board string
	pos   types.Position
}

// BoardSource reads the board file a world references.
type BoardSource interface {
	ReadBoard(file string) (types.BoardDef, error)
}

// Graph is the board graph of one world.
type Graph struct {
	start       string
	boards      map[string]types.BoardRef
	transitions []Transition
	index       map[cellKey]int
	source      BoardSource
	cache       map[string]types.BoardDef
}

// NewGraph indexes def. Boards are read through src on first use. When two
// transitions start on the same cell the later one wins.
func NewGraph(def types.WorldDef, src BoardSource) *Graph {
	g := &Graph{
		start:  def.StartBoard,
		boards: map[string]types.BoardRef{},
		index:  map[cellKey]int{},
		source: src,
		cache:  map[string]types.BoardDef{},
	}
	for id, ref := range def.Boards {
		g.boards[id] = ref
	}
	for _, t := range def.Transitions {
		tr := Transition{
			FromBoard: t.From.Board,
			From:      types.Position{X: t.From.X, Y: t.From.Y},
			Type:      t.From.Type,
			ToBoard:   t.To.Board,
			To:        types.Position{X: t.To.X, Y: t.To.Y},
		}
		if tr.Type == "" {
			tr.Type = TransitionDoor
		}
		key := cellKey{tr.FromBoard, tr.From}
		if i, ok := g.index[key]; ok {
			g.transitions[i] = tr
			continue
		}
		g.index[key] = len(g.transitions)
		g.transitions = append(g.transitions, tr)
	}
	return g
}

// StartBoard returns the id of the first board.
func (g *Graph) StartBoard() string { return g.start }

// Board returns the reference for id.
func (g *Graph) Board(id string) (types.BoardRef, bool) {
	ref, ok := g.boards[id]
	return ref, ok
}

// BoardIDs returns every board id, sorted.
func (g *Graph) BoardIDs() []string {
	ids := make([]string, 0, len(g.boards))
	for id := range g.boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TransitionAt returns the transition starting at p on board.
func (g *Graph) TransitionAt(board string, p types.Position) (Transition, bool) {
	i, ok := g.index[cellKey{board, p}]
	if !ok {
		return Transition{}, false
	}
	return g.transitions[i], true
}

// TransitionsFor returns the transitions leaving board in declaration order.
func (g *Graph) TransitionsFor(board string) []Transition {
	var out []Transition
	for _, t := range g.transitions {
		if t.FromBoard == board {
			out = append(out, t)
		}
	}
	return out
}

// Transitions returns every transition.
func (g *Graph) Transitions() []Transition {
	return append([]Transition(nil), g.transitions...)
}

// Connected returns the boards linked to board in either direction, sorted.
func (g *Graph) Connected(board string) []string {
	set := mapset.New[string]()
	for _, t := range g.transitions {
		if t.FromBoard == board {
			set.Put(t.ToBoard)
		}
		if t.ToBoard == board {
			set.Put(t.FromBoard)
		}
	}
	out := make([]string, 0, set.Size())
	set.Each(func(id string) { out = append(out, id) })
	sort.Strings(out)
	return out
}

// LoadBoard returns a fresh copy of board id. The file is read once and
// cached; every call gets its own copy so a visit never sees changes made
// during an earlier one.
func (g *Graph) LoadBoard(id string) (types.BoardDef, error) {
	ref, ok := g.boards[id]
	if !ok {
		return types.BoardDef{}, fmt.Errorf("%w: %s", ErrUnknownBoard, id)
	}
	def, ok := g.cache[id]
	if !ok {
		if g.source == nil {
			return types.BoardDef{}, fmt.Errorf("loading board %s: no board source", id)
		}
		var err error
		def, err = g.source.ReadBoard(ref.File)
		if err != nil {
			return types.BoardDef{}, fmt.Errorf("loading board %s: %w", id, err)
		}
		g.cache[id] = def
	}
	return grid.CloneDef(def), nil
}
