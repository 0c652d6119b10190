// Package reactor re-derives entity visibility, NPC dialogue and object
// text from world flags whenever a board is entered or a flag changes.
package reactor

import (
	"github.com/nathoo/tilequest/engine/entities"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
)

type baseline struct {
	dialogue    []string
	hasDialogue bool
	text        string
	hasText     bool
}

// Reactor watches one registry at a time.
type Reactor struct {
	world     *state.World
	registry  *entities.Registry
	baselines map[*entities.Entity]*baseline
	subs      []events.Subscription
}

// New subscribes a reactor to board:enter and flag:changed on bus.
func New(bus *events.Bus, world *state.World) *Reactor {
	r := &Reactor{world: world, baselines: map[*entities.Entity]*baseline{}}
	apply := func(map[string]any) { r.ApplyAll() }
	r.subs = append(r.subs,
		bus.On(events.BoardEnter, apply),
		bus.On(events.FlagChanged, apply),
	)
	return r
}

// Track points the reactor at reg, usually the registry of the board
// being entered. Baselines of the previous registry are dropped.
func (r *Reactor) Track(reg *entities.Registry) {
	r.registry = reg
	r.baselines = map[*entities.Entity]*baseline{}
}

// ApplyAll re-evaluates every entity of the tracked registry. Running it
// twice with unchanged flags changes nothing the second time.
func (r *Reactor) ApplyAll() {
	if r.registry == nil {
		return
	}
	r.registry.Each(func(e *entities.Entity) {
		r.applyVisibility(e)
		r.applyDialogue(e)
		r.applyText(e)
	})
}

func (r *Reactor) applyVisibility(e *entities.Entity) {
	c := e.Props.Conditions
	if c == nil || c.Visible == nil {
		return
	}
	e.Hidden = !r.world.CheckAll(c.Visible)
}

func (r *Reactor) base(e *entities.Entity) *baseline {
	b, ok := r.baselines[e]
	if !ok {
		b = &baseline{}
		r.baselines[e] = b
	}
	return b
}

func (r *Reactor) applyDialogue(e *entities.Entity) {
	if e.Kind != entities.KindNPC || len(e.Props.ConditionalDialogue) == 0 {
		return
	}
	b := r.base(e)
	if !b.hasDialogue {
		b.dialogue = e.Props.Dialogue
		b.hasDialogue = true
	}
	for _, entry := range e.Props.ConditionalDialogue {
		if r.world.CheckAll(entry.Conditions) {
			e.Props.Dialogue = entry.Dialogue
			if npc, ok := e.Behavior.(*entities.NPC); ok {
				npc.DialogueIndex = 0
			}
			return
		}
	}
	e.Props.Dialogue = b.dialogue
}

func (r *Reactor) applyText(e *entities.Entity) {
	if e.Kind != entities.KindInteractive || len(e.Props.ConditionalText) == 0 {
		return
	}
	b := r.base(e)
	if !b.hasText {
		b.text = e.Props.Text
		b.hasText = true
	}
	for _, entry := range e.Props.ConditionalText {
		if r.world.CheckAll(entry.Conditions) {
			e.Props.Text = entry.Text
			return
		}
	}
	e.Props.Text = b.text
}

// Close removes the reactor's subscriptions.
func (r *Reactor) Close() {
	for _, s := range r.subs {
		s.Unsubscribe()
	}
	r.subs = nil
}
