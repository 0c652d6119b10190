package engine

import (
	"fmt"

	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/save"
	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/types"
)

// Save serializes the session.
func (s *Session) Save() ([]byte, error) {
	if s.board == nil {
		return nil, fmt.Errorf("saving: no board entered")
	}
	d := save.Data{
		Board:     s.boardID,
		Position:  s.pos,
		Crystals:  s.crystals,
		Flags:     s.World.Snapshot(),
		Quests:    s.Quests.Snapshot(),
		FiredOnce: s.Triggers.FiredOnce(),
		Inventory: s.Inventory.Snapshot(),
		Player:    s.Player.Snapshot(),
		Tiles:     s.board.Rows(),
	}
	for _, def := range s.board.Original().Entities {
		if e, ok := s.entities.Get(def.ID); !ok || !e.Active {
			d.Consumed = append(d.Consumed, def.ID)
		}
	}
	return save.Marshal(d)
}

// Load restores a session written by Save. The saved board is placed
// without emitting board:enter, so no trigger or quest objective runs again;
// the restored state equals the saved state.
func (s *Session) Load(raw []byte) (types.Result, error) {
	d, err := save.Load(raw)
	if err != nil {
		return types.Result{}, err
	}
	if _, ok := s.Graph.Board(d.Board); !ok {
		return types.Result{}, fmt.Errorf("loading save: %w: %s", world.ErrUnknownBoard, d.Board)
	}

	res := s.record(func() {
		pos := d.Position
		if err = s.place(d.Board, &pos); err != nil {
			return
		}
		s.World.Deserialize(d.Flags)
		s.Quests.Restore(d.Quests)
		s.Triggers.RestoreFiredOnce(d.FiredOnce)
		s.Inventory.Restore(d.Inventory)
		s.Player = world.RestorePlayerState(d.Player)

		if len(d.Tiles) > 0 {
			s.board.Grid = grid.FromRows(d.Tiles)
		}
		for _, id := range d.Consumed {
			if e, ok := s.entities.Get(id); ok {
				e.Active = false
			}
		}
		s.entities.Cleanup()
		s.crystals = d.Crystals
		s.Reactor.ApplyAll()
	})
	return res, err
}
