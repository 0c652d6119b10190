// Package entities implements the things that stand on a board on top of
// the tiles: NPCs, enemies, items and interactive objects.
package entities

import (
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

// Entity kinds as written in board files.
const (
	KindNPC         = "npc"
	KindEnemy       = "enemy"
	KindItem        = "item"
	KindInteractive = "interactive"
)

// Interactive object types.
const (
	ObjectSign  = "sign"
	ObjectChest = "chest"
	ObjectLever = "lever"
)

var defaultGlyphs = map[string]string{
	KindNPC:         "N",
	KindEnemy:       "E",
	KindItem:        "$",
	KindInteractive: "?",
}

var objectGlyphs = map[string]string{
	ObjectSign:  "S",
	ObjectChest: "C",
	ObjectLever: "L",
}

var defaultColors = map[string]string{
	KindNPC:         "#4a90d9",
	KindEnemy:       "#d94a4a",
	KindItem:        "#d9d94a",
	KindInteractive: "#8B4513",
}

// Entity is one placed entity. Props is owned by the entity: the reactor
// swaps Dialogue and Text in place.
type Entity struct {
	ID       string
	Kind     string
	Pos      types.Position
	Glyph    string
	Color    string
	Blocking bool
	Props    types.EntityProps

	// Active is false once the entity is consumed or defeated.
	Active bool
	// Hidden is set by the world reactor when visibility conditions fail.
	Hidden bool

	Behavior Behavior
}

// Present reports whether the entity is on the board for the player.
func (e *Entity) Present() bool {
	return e.Active && !e.Hidden
}

// Interact runs the entity's interaction. Entities of unknown kind return nil.
func (e *Entity) Interact() *Outcome {
	if e.Behavior == nil {
		return nil
	}
	return e.Behavior.Interact(e)
}

// Update runs the entity's per-turn behaviour.
func (e *Entity) Update(ctx UpdateContext) {
	if e.Behavior != nil {
		e.Behavior.Update(e, ctx)
	}
}

// New builds an entity from its definition, filling default glyph and
// colour and choosing the behaviour variant from the kind.
func New(def types.EntityDef) *Entity {
	e := &Entity{
		ID:       def.ID,
		Kind:     def.Type,
		Pos:      types.Position{X: def.X, Y: def.Y},
		Glyph:    def.Glyph,
		Color:    def.Color,
		Blocking: true,
		Props:    grid.CloneEntity(def).Properties,
		Active:   true,
	}
	if e.Glyph == "" {
		e.Glyph = defaultGlyph(def)
	}
	if e.Color == "" {
		e.Color = defaultColors[def.Type]
	}

	switch def.Type {
	case KindNPC:
		e.Behavior = &NPC{}
	case KindEnemy:
		en := &Enemy{Health: def.Properties.Health, Damage: def.Properties.Damage}
		if en.Health <= 0 {
			en.Health = 1
		}
		if en.Damage <= 0 {
			en.Damage = 1
		}
		e.Behavior = en
	case KindItem:
		e.Blocking = false
		e.Behavior = &Item{}
	case KindInteractive:
		e.Behavior = &Interactive{}
	}
	return e
}

func defaultGlyph(def types.EntityDef) string {
	if def.Type == KindInteractive {
		if g, ok := objectGlyphs[def.Properties.ObjectType]; ok {
			return g
		}
	}
	return defaultGlyphs[def.Type]
}
