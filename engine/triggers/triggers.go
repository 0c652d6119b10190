// Package triggers runs data-defined rules: when a named event fires and
// the rule's conditions hold, its actions are applied.
package triggers

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/tilequest/engine/effects"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

type entry struct {
	def    types.TriggerDef
	source string
	sub    events.Subscription
}

// System owns the registered triggers and the fired-once record.
type System struct {
	bus       *events.Bus
	world     *state.World
	ctx       effects.Context
	active    map[string]*entry
	order     []string
	firedOnce mapset.Set[string]
}

// New returns a system listening on bus and checking flags in world.
func New(bus *events.Bus, world *state.World) *System {
	return &System{
		bus:       bus,
		world:     world,
		ctx:       effects.Context{World: world, Bus: bus},
		active:    map[string]*entry{},
		firedOnce: mapset.New[string](),
	}
}

// SetContext installs the context actions run against. World and Bus
// default to the system's own when left nil.
func (s *System) SetContext(ctx effects.Context) {
	if ctx.World == nil {
		ctx.World = s.world
	}
	if ctx.Bus == nil {
		ctx.Bus = s.bus
	}
	s.ctx = ctx
}

// RegisterTriggers subscribes every definition under source. The first
// registration of an id wins; later duplicates are dropped.
func (s *System) RegisterTriggers(defs []types.TriggerDef, source string) {
	for _, def := range defs {
		if _, ok := s.active[def.ID]; ok {
			logger.Log.WithFields(logrus.Fields{"trigger": def.ID, "source": source}).Debug("duplicate trigger id ignored")
			continue
		}
		e := &entry{def: def, source: source}
		e.sub = s.bus.On(def.Event, func(data map[string]any) {
			s.handle(e, data)
		})
		s.active[def.ID] = e
		s.order = append(s.order, def.ID)
	}
}

func (s *System) handle(e *entry, data map[string]any) {
	def := e.def
	if def.Once && s.firedOnce.Has(def.ID) {
		return
	}
	if def.Conditions != nil {
		if !MatchEvent(def.Conditions.EventMatch, data) {
			return
		}
		if !s.world.CheckAll(def.Conditions.Flags) {
			return
		}
	}
	if def.Once {
		s.firedOnce.Put(def.ID)
	}
	logger.Log.WithFields(logrus.Fields{"trigger": def.ID, "event": def.Event, "source": e.source}).Debug("trigger fired")
	effects.Apply(s.ctx, def.Actions, data)
}

// MatchEvent reports whether every key in match is present in data with
// an equal value. An empty match holds.
func MatchEvent(match map[string]any, data map[string]any) bool {
	for k, want := range match {
		got, ok := data[k]
		if !ok || !state.Equal(got, want) {
			return false
		}
	}
	return true
}

// ClearBySource removes the triggers registered under source.
func (s *System) ClearBySource(source string) {
	kept := s.order[:0]
	for _, id := range s.order {
		e := s.active[id]
		if e.source == source {
			e.sub.Unsubscribe()
			delete(s.active, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// ClearAll removes every trigger. The fired-once record is kept.
func (s *System) ClearAll() {
	for _, e := range s.active {
		e.sub.Unsubscribe()
	}
	s.active = map[string]*entry{}
	s.order = nil
}

// Registered returns the trigger ids in registration order.
func (s *System) Registered() []string {
	return append([]string(nil), s.order...)
}

// HasFired reports whether the once trigger id has fired.
func (s *System) HasFired(id string) bool {
	return s.firedOnce.Has(id)
}

// FiredOnce returns the ids of once triggers that have fired, sorted.
func (s *System) FiredOnce() []string {
	out := make([]string, 0, s.firedOnce.Size())
	s.firedOnce.Each(func(id string) {
		out = append(out, id)
	})
	sort.Strings(out)
	return out
}

// RestoreFiredOnce replaces the fired-once record.
func (s *System) RestoreFiredOnce(ids []string) {
	s.firedOnce = mapset.New[string]()
	for _, id := range ids {
		s.firedOnce.Put(id)
	}
}
