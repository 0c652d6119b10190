package engine

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// PlayerGlyph marks the player on rendered boards.
const PlayerGlyph = "@"

// Cell is one rendered board cell. Color is a hex colour or empty.
type Cell struct {
	Glyph string
	Color string
}

// View returns the current board with entities and the player drawn over
// the tiles, one row per line.
func (s *Session) View() [][]Cell {
	if s.board == nil {
		return nil
	}
	rows := make([][]Cell, s.board.Height())
	for y := range rows {
		rows[y] = make([]Cell, s.board.Width())
		for x := range rows[y] {
			rows[y][x] = Cell{Glyph: grid.Glyph(s.board.Get(x, y))}
		}
	}
	for _, e := range s.entities.All() {
		if !e.Present() || !s.board.InBounds(e.Pos.X, e.Pos.Y) {
			continue
		}
		rows[e.Pos.Y][e.Pos.X] = Cell{Glyph: firstRune(e.Glyph), Color: e.Color}
	}
	rows[s.pos.Y][s.pos.X] = Cell{Glyph: PlayerGlyph}
	return rows
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return "?"
}

// Render returns View as plain text.
func (s *Session) Render() string {
	var b strings.Builder
	for y, row := range s.View() {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteString(c.Glyph)
		}
	}
	return b.String()
}

// Snapshot returns the live board as an analyzable board: the current
// tiles, the player position as start and the crystals still needed.
func (s *Session) Snapshot() (*grid.Board, error) {
	if s.board == nil {
		return nil, grid.ErrInvalidBoard
	}
	need := s.board.RequiredCrystals - s.crystals
	if need < 0 {
		need = 0
	}
	b, err := grid.NewBoard(types.BoardDef{Tiles: s.board.Rows(), RequiredCrystals: need})
	if err != nil {
		return nil, err
	}
	b.Start = s.pos
	return b, nil
}

// Analyze checks whether the board can still be finished from here.
func (s *Session) Analyze() (analyzer.Result, error) {
	b, err := s.Snapshot()
	if err != nil {
		return analyzer.Result{}, err
	}
	res := s.Analyzer.Analyze(b)
	logger.Log.WithFields(logrus.Fields{"board": s.boardID, "playable": res.Playable}).Debug("board analyzed")
	return res, nil
}

// Report returns the detailed analysis of the live board.
func (s *Session) Report() (analyzer.Report, error) {
	b, err := s.Snapshot()
	if err != nil {
		return analyzer.Report{}, err
	}
	return s.Analyzer.Report(b), nil
}

// Fixes returns repair suggestions for the live board.
func (s *Session) Fixes() ([]string, error) {
	b, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Analyzer.SuggestFixes(b), nil
}

// Status is a one-line summary for status bars.
type Status struct {
	Board    string
	Crystals int
	Required int
	Quest    string
	Stage    string
}

// Status summarises the current board and the first active quest.
func (s *Session) Status() Status {
	st := Status{Board: s.BoardName(), Crystals: s.crystals}
	if s.board != nil {
		st.Required = s.board.RequiredCrystals
	}
	if active := s.Quests.ActiveQuests(); len(active) > 0 {
		st.Quest = active[0].Name
		st.Stage = active[0].StageDescription
	}
	return st
}
