package world

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// PlayerState records the current board and every board visited.
type PlayerState struct {
	current string
	visited mapset.Set[string]
}

// NewPlayerState starts the player on start.
func NewPlayerState(start string) *PlayerState {
	p := &PlayerState{current: start, visited: mapset.New[string]()}
	if start != "" {
		p.visited.Put(start)
	}
	return p
}

// Current returns the board the player is on.
func (p *PlayerState) Current() string { return p.current }

// EnterBoard moves the player to id.
func (p *PlayerState) EnterBoard(id string) {
	p.current = id
	p.visited.Put(id)
}

// HasVisited reports whether the player has been on id.
func (p *PlayerState) HasVisited(id string) bool {
	return p.visited.Has(id)
}

// PlayerSnapshot is the saved form of PlayerState.
type PlayerSnapshot struct {
	CurrentBoardID string   `json:"currentBoardId"`
	VisitedBoards  []string `json:"visitedBoards"`
}

// Snapshot captures the state with visited boards sorted.
func (p *PlayerState) Snapshot() PlayerSnapshot {
	visited := make([]string, 0, p.visited.Size())
	p.visited.Each(func(id string) { visited = append(visited, id) })
	sort.Strings(visited)
	return PlayerSnapshot{CurrentBoardID: p.current, VisitedBoards: visited}
}

// RestorePlayerState rebuilds a PlayerState from snap.
func RestorePlayerState(snap PlayerSnapshot) *PlayerState {
	p := &PlayerState{current: snap.CurrentBoardID, visited: mapset.New[string]()}
	for _, id := range snap.VisitedBoards {
		p.visited.Put(id)
	}
	return p
}
