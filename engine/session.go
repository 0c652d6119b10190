// Package engine provides the Session that owns every subsystem of a
// running world and turns player input into moves, interactions and events.
package engine

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/engine/dialogue"
	"github.com/nathoo/tilequest/engine/effects"
	"github.com/nathoo/tilequest/engine/entities"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/quests"
	"github.com/nathoo/tilequest/engine/reactor"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/engine/triggers"
	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// WorldSource is the trigger source of world-level triggers.
const WorldSource = "world"

// Messages shown by the session itself.
const (
	MsgFellIntoHole  = "Oh snap! You fell into a hole."
	MsgDied          = "You died! The level has been reset."
	MsgLevelComplete = "Level Complete!"
)

// Options configures a Session.
type Options struct {
	Analyzer analyzer.Options
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Analyzer: analyzer.DefaultOptions()}
}

// Session holds a loaded world and the mutable state of one play-through.
type Session struct {
	Graph     *world.Graph
	Bus       *events.Bus
	World     *state.World
	Quests    *quests.System
	Triggers  *triggers.System
	Reactor   *reactor.Reactor
	Dialogue  *dialogue.System
	Inventory *entities.Inventory
	Player    *world.PlayerState
	Analyzer  *analyzer.Analyzer

	boardID  string
	board    *grid.Board
	entities *entities.Registry
	pos      types.Position
	entry    *types.Position
	crystals int
	complete bool

	recording bool
	events    []types.Event
	output    []string
}

// NewSession wires the subsystems around graph. World-level triggers are
// registered once and survive board changes; quests are loaded and the
// autoStart ones begin immediately. Call Start to enter the first board.
func NewSession(graph *world.Graph, questDefs []types.QuestDef, triggerDefs []types.TriggerDef, opts Options) *Session {
	bus := events.NewBus()
	ws := state.New(bus)
	s := &Session{
		Graph:     graph,
		Bus:       bus,
		World:     ws,
		Quests:    quests.New(bus, ws),
		Triggers:  triggers.New(bus, ws),
		Reactor:   reactor.New(bus, ws),
		Dialogue:  dialogue.New(),
		Inventory: entities.NewInventory(),
		Player:    world.NewPlayerState(graph.StartBoard()),
		Analyzer:  analyzer.New(opts.Analyzer),
	}
	bus.OnAny(s.tap)
	s.installContext()

	s.Triggers.RegisterTriggers(triggerDefs, WorldSource)
	s.Quests.LoadQuests(questDefs)
	// Autostart messages belong to nobody's step.
	s.Dialogue.TakeShown()
	return s
}

func (s *Session) installContext() {
	ctx := effects.Context{
		World:     s.World,
		Bus:       s.Bus,
		Inventory: s.Inventory,
		Messages:  s.Dialogue,
		Quests:    s.Quests,
	}
	s.Triggers.SetContext(ctx)
	s.Quests.SetContext(ctx)
}

func (s *Session) tap(event string, data map[string]any) {
	if !s.recording {
		return
	}
	cp := make(map[string]any, len(data))
	for k, v := range data {
		cp[k] = v
	}
	s.events = append(s.events, types.Event{Type: event, Data: cp})
}

// record runs fn and collects the events it caused and the lines it showed.
func (s *Session) record(fn func()) types.Result {
	s.recording = true
	s.events = nil
	s.output = nil
	fn()
	s.flushDialogue()
	s.recording = false
	res := types.Result{Events: s.events, Output: s.output}
	s.events, s.output = nil, nil
	return res
}

func (s *Session) say(format string, args ...any) {
	s.flushDialogue()
	s.output = append(s.output, fmt.Sprintf(format, args...))
}

func (s *Session) flushDialogue() {
	for _, l := range s.Dialogue.TakeShown() {
		s.output = append(s.output, FormatLine(l))
	}
}

// FormatLine renders a dialogue line for a text console.
func FormatLine(l dialogue.Line) string {
	var b strings.Builder
	if l.Speaker != "" {
		b.WriteString(l.Speaker)
		b.WriteString(": ")
	}
	b.WriteString(l.Text)
	for i, c := range l.Choices {
		marker := " "
		if i == l.Selected {
			marker = ">"
		}
		fmt.Fprintf(&b, "\n %s %d) %s", marker, i+1, c)
	}
	return b.String()
}

// Start enters the world's start board at its start position.
func (s *Session) Start() (types.Result, error) {
	var err error
	res := s.record(func() {
		err = s.enter(s.Graph.StartBoard(), nil)
	})
	return res, err
}

// Enter moves the player to board id. A nil spawn uses the board's start.
func (s *Session) Enter(id string, spawn *types.Position) (types.Result, error) {
	var err error
	res := s.record(func() {
		err = s.enter(id, spawn)
	})
	return res, err
}

// enter places the player on board id and announces it with board:enter.
func (s *Session) enter(id string, spawn *types.Position) error {
	if err := s.place(id, spawn); err != nil {
		return err
	}
	s.Bus.Emit(events.BoardEnter, map[string]any{"boardId": id})
	return nil
}

// place loads the board before touching any state, so a failed load
// leaves the session on its previous board. It emits nothing.
func (s *Session) place(id string, spawn *types.Position) error {
	def, err := s.Graph.LoadBoard(id)
	if err != nil {
		return err
	}
	b, err := grid.NewBoard(def)
	if err != nil {
		return fmt.Errorf("board %s: %w", id, err)
	}

	if s.boardID != "" {
		s.Triggers.ClearBySource(s.boardID)
	}
	s.boardID = id
	s.board = b
	s.entities = entities.FromDefinitions(def.Entities)
	s.Reactor.Track(s.entities)
	s.Triggers.RegisterTriggers(def.Triggers, id)

	s.Player.EnterBoard(id)
	s.installContext()

	s.entry = nil
	s.pos = b.Start
	if spawn != nil {
		p := *spawn
		s.entry = &p
		s.pos = p
	}
	s.crystals = 0
	s.complete = false

	logger.Log.WithFields(logrus.Fields{"board": id, "x": s.pos.X, "y": s.pos.Y}).Info("board entered")
	return nil
}

// reset restores the current board to its loaded state and puts the
// player back where they entered it. Flags, quests and inventory stay.
func (s *Session) reset() {
	s.board.Reset()
	s.entities = entities.FromDefinitions(s.board.Original().Entities)
	s.Reactor.Track(s.entities)
	s.Reactor.ApplyAll()
	s.pos = s.board.Start
	if s.entry != nil {
		s.pos = *s.entry
	}
	s.crystals = 0
	s.complete = false
	logger.Log.WithField("board", s.boardID).Debug("board reset")
}

// Reset restarts the current board.
func (s *Session) Reset() types.Result {
	return s.record(func() {
		if s.board != nil {
			s.reset()
		}
	})
}

// Move tries to move the player one cell in d.
func (s *Session) Move(d grid.Direction) types.Result {
	return s.record(func() {
		if s.board == nil {
			return
		}
		if s.Dialogue.Active() {
			s.Dialogue.Close()
		}
		if s.complete {
			s.say(MsgLevelComplete)
			return
		}
		s.move(d)
	})
}

func (s *Session) move(d grid.Direction) {
	target := grid.Step(s.pos, d)
	if !s.board.InBounds(target.X, target.Y) {
		return
	}
	if e := s.entities.At(target); e != nil && e.Blocking {
		s.interact(e)
		s.entities.Cleanup()
		return
	}

	tile := s.board.At(target)
	switch tile {
	case grid.Floor, grid.Door:
		s.step(target, false)

	case grid.Crystal:
		s.board.RemoveCrystal(target)
		s.crystals++
		s.step(target, false)

	case grid.Exit:
		if s.crystals < s.board.RequiredCrystals {
			s.say("The exit is sealed. Crystals: %d/%d.", s.crystals, s.board.RequiredCrystals)
			return
		}
		s.step(target, true)

	case grid.Block:
		beyond := grid.Step(target, d)
		if s.entities.At(beyond) != nil {
			return
		}
		switch s.board.At(beyond) {
		case grid.Floor:
			s.board.SetAt(beyond, grid.Block)
			s.board.SetAt(target, grid.Floor)
		case grid.Hole:
			s.board.SetAt(beyond, grid.Floor)
			s.board.SetAt(target, grid.Floor)
		default:
			return
		}
		s.step(target, false)

	case grid.Hole:
		s.say(MsgFellIntoHole)
		s.reset()

	default:
		if want, ok := tile.OneWayDirection(); ok && want == d {
			s.step(target, false)
		}
	}
}

// step puts the player on p, picks up an item there, follows a transition
// and then gives enemies their turn.
func (s *Session) step(p types.Position, exit bool) {
	s.pos = p
	if e := s.entities.At(p); e != nil && !e.Blocking {
		s.interact(e)
		s.entities.Cleanup()
	}
	s.Bus.Emit(events.PlayerMove, map[string]any{"x": p.X, "y": p.Y})

	tile := s.board.At(p)
	if exit || tile == grid.Door {
		if tr, ok := s.Graph.TransitionAt(s.boardID, p); ok {
			to := tr.To
			if err := s.enter(tr.ToBoard, &to); err != nil {
				logger.Log.WithError(err).WithField("board", tr.ToBoard).Warn("transition failed")
				s.say("The way is blocked.")
			}
			return
		}
		if exit {
			s.complete = true
			logger.Log.WithField("board", s.boardID).Info("level complete")
			s.say(MsgLevelComplete)
			return
		}
	}

	s.enemyTurn()
}

func (s *Session) enemyTurn() {
	s.entities.UpdateAll(s.board, s.pos)
	for _, e := range s.entities.OfKind(entities.KindEnemy) {
		if e.Present() && e.Pos == s.pos {
			s.say(MsgDied)
			s.reset()
			return
		}
	}
}

// Advance moves an open dialogue past its current node.
func (s *Session) Advance() types.Result {
	return s.record(func() { s.Dialogue.Advance() })
}

// Choose picks choice n (zero-based) of the open dialogue.
func (s *Session) Choose(n int) types.Result {
	return s.record(func() { s.Dialogue.Choose(n) })
}

// Emit publishes an arbitrary event, as scripted content or a console would.
func (s *Session) Emit(event string, data map[string]any) types.Result {
	return s.record(func() { s.Bus.Emit(event, data) })
}

// SetFlag writes a world flag.
func (s *Session) SetFlag(key string, value any) types.Result {
	return s.record(func() { s.World.Set(key, value) })
}

// BoardID returns the current board id.
func (s *Session) BoardID() string { return s.boardID }

// Board returns the current board, nil before Start.
func (s *Session) Board() *grid.Board { return s.board }

// Entities returns the current board's entities.
func (s *Session) Entities() *entities.Registry { return s.entities }

// Position returns the player position.
func (s *Session) Position() types.Position { return s.pos }

// Crystals returns the crystals collected on the current board.
func (s *Session) Crystals() int { return s.crystals }

// Complete reports whether the current board's exit has been reached
// without a transition to follow.
func (s *Session) Complete() bool { return s.complete }

// BoardName returns the display name of the current board.
func (s *Session) BoardName() string {
	if ref, ok := s.Graph.Board(s.boardID); ok && ref.Name != "" {
		return ref.Name
	}
	return s.boardID
}
