// Package quests tracks staged quests. Objectives are satisfied by bus
// events; when a stage's objectives are all met the quest advances and the
// stage's completion actions run.
package quests

import (
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/tilequest/engine/effects"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// ObjectiveEvents maps each objective type to the event that can satisfy it.
var ObjectiveEvents = map[string]string{
	"interact":   events.EntityInteract,
	"pickup":     events.ItemPickup,
	"defeat":     events.EntityDefeat,
	"enterBoard": events.BoardEnter,
	"flag":       events.FlagChanged,
}

// subscribed lists the objective events in a fixed order.
var subscribed = []string{
	events.EntityInteract,
	events.ItemPickup,
	events.EntityDefeat,
	events.BoardEnter,
	events.FlagChanged,
}

type progress struct {
	stage int
	done  []mapset.Set[int]
}

// System is the quest tracker.
type System struct {
	bus   *events.Bus
	world *state.World
	ctx   effects.Context

	defs      map[string]types.QuestDef
	active    map[string]*progress
	order     []string // active ids in start order
	completed []string
	isDone    mapset.Set[string]
	subs      []events.Subscription
}

// New returns an empty quest system.
func New(bus *events.Bus, world *state.World) *System {
	s := &System{
		bus:    bus,
		world:  world,
		defs:   map[string]types.QuestDef{},
		active: map[string]*progress{},
		isDone: mapset.New[string](),
	}
	s.ctx = effects.Context{World: world, Bus: bus, Quests: s}
	return s
}

// SetContext installs the context stage actions run against. Nil World,
// Bus and Quests default to the system's own.
func (s *System) SetContext(ctx effects.Context) {
	if ctx.World == nil {
		ctx.World = s.world
	}
	if ctx.Bus == nil {
		ctx.Bus = s.bus
	}
	if ctx.Quests == nil {
		ctx.Quests = s
	}
	s.ctx = ctx
}

// LoadQuests stores defs, subscribes to the objective events and starts
// every autoStart quest that is neither active nor completed.
func (s *System) LoadQuests(defs []types.QuestDef) {
	for _, d := range defs {
		s.defs[d.ID] = d
	}
	s.subscribe()
	for _, d := range defs {
		if d.AutoStart {
			s.StartQuest(d.ID)
		}
	}
}

func (s *System) subscribe() {
	s.unsubscribe()
	for _, ev := range subscribed {
		ev := ev
		s.subs = append(s.subs, s.bus.On(ev, func(data map[string]any) {
			s.check(ev, data)
		}))
	}
}

func (s *System) unsubscribe() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

// Close removes the event subscriptions.
func (s *System) Close() {
	s.unsubscribe()
}

// StartQuest activates id at its first stage. Already active, completed
// or unknown ids are ignored.
func (s *System) StartQuest(id string) {
	if _, ok := s.active[id]; ok || s.isDone.Has(id) {
		return
	}
	def, ok := s.defs[id]
	if !ok {
		return
	}
	s.active[id] = newProgress(len(def.Stages))
	s.order = append(s.order, id)
	logger.Log.WithFields(logrus.Fields{"quest": id}).Info("quest started")
	s.bus.Emit(events.QuestStart, map[string]any{"questId": id, "name": def.Name})
}

func newProgress(stages int) *progress {
	p := &progress{done: make([]mapset.Set[int], stages)}
	for i := range p.done {
		p.done[i] = mapset.New[int]()
	}
	return p
}

// check marks the objectives of every active quest that ev satisfies.
// Quests started while the check runs are not evaluated against ev.
func (s *System) check(ev string, data map[string]any) {
	ids := append([]string(nil), s.order...)
	for _, id := range ids {
		p, ok := s.active[id]
		if !ok {
			continue
		}
		def := s.defs[id]
		if p.stage >= len(def.Stages) {
			continue
		}
		stage := def.Stages[p.stage]
		done := p.done[p.stage]
		for i, obj := range stage.Objectives {
			if done.Has(i) || ObjectiveEvents[obj.Type] != ev {
				continue
			}
			if !objectiveMatches(obj, data) {
				continue
			}
			if !s.world.CheckAll(obj.RequiredFlags) {
				continue
			}
			done.Put(i)
		}
		if done.Size() >= len(stage.Objectives) {
			s.completeStage(id)
		}
	}
}

func objectiveMatches(obj types.Objective, data map[string]any) bool {
	if data == nil {
		return false
	}
	switch obj.Type {
	case "interact", "defeat":
		return state.Equal(data["entityId"], obj.EntityID)
	case "pickup":
		return state.Equal(data["itemId"], obj.ItemID)
	case "enterBoard":
		return state.Equal(data["boardId"], obj.BoardID)
	case "flag":
		if !state.Equal(data["flag"], obj.Flag) {
			return false
		}
		return obj.Value == nil || state.Equal(data["value"], obj.Value)
	}
	return false
}

// completeStage finishes the current stage of id. The stage index moves
// on before the stage's actions run, so events those actions emit are
// checked against the next stage and cannot complete this one again.
func (s *System) completeStage(id string) {
	p, ok := s.active[id]
	if !ok {
		return
	}
	def := s.defs[id]
	stage := def.Stages[p.stage]

	p.stage++
	if p.stage >= len(def.Stages) {
		s.CompleteQuest(id)
	} else {
		logger.Log.WithFields(logrus.Fields{"quest": id, "stage": p.stage}).Info("quest advanced")
		s.bus.Emit(events.QuestAdvance, map[string]any{"questId": id, "stageIndex": p.stage})
	}

	if len(stage.OnComplete) > 0 {
		effects.Apply(s.ctx, stage.OnComplete, map[string]any{})
	}
}

// AdvanceQuest skips the current stage of id without checking objectives
// or running its actions.
func (s *System) AdvanceQuest(id string) {
	p, ok := s.active[id]
	if !ok {
		return
	}
	p.stage++
	if p.stage >= len(s.defs[id].Stages) {
		s.CompleteQuest(id)
	}
}

// CompleteQuest marks id completed and emits quest:complete. Completed
// and unknown ids are ignored.
func (s *System) CompleteQuest(id string) {
	def, ok := s.defs[id]
	if !ok || s.isDone.Has(id) {
		return
	}
	s.removeActive(id)
	s.isDone.Put(id)
	s.completed = append(s.completed, id)
	logger.Log.WithFields(logrus.Fields{"quest": id}).Info("quest completed")
	s.bus.Emit(events.QuestComplete, map[string]any{"questId": id, "name": def.Name})
}

func (s *System) removeActive(id string) {
	delete(s.active, id)
	for i, a := range s.order {
		if a == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}

// IsActive reports whether id is in progress.
func (s *System) IsActive(id string) bool {
	_, ok := s.active[id]
	return ok
}

// IsCompleted reports whether id has been completed.
func (s *System) IsCompleted(id string) bool {
	return s.isDone.Has(id)
}

// StageIndex returns the current stage of an active quest.
func (s *System) StageIndex(id string) (int, bool) {
	p, ok := s.active[id]
	if !ok {
		return 0, false
	}
	return p.stage, true
}

// Def returns the definition of id.
func (s *System) Def(id string) (types.QuestDef, bool) {
	d, ok := s.defs[id]
	return d, ok
}
