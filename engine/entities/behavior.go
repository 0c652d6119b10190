package entities

import (
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

// OutcomeKind classifies what an interaction did.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeDialogue OutcomeKind = "dialogue"
	OutcomePickup   OutcomeKind = "pickup"
	OutcomeCombat   OutcomeKind = "combat"
	OutcomeLever    OutcomeKind = "lever"
)

// Outcome describes the result of interacting with an entity. Only the
// fields for its Kind are set.
type Outcome struct {
	Kind OutcomeKind

	// dialogue
	Speaker string
	Text    string

	// pickup
	ItemID      string
	Description string

	// combat
	Defeated bool
	EnemyID  string

	// lever
	LeverID   string
	Activated bool
}

// Terrain is the tile view enemies move over.
type Terrain interface {
	Get(x, y int) grid.Tile
}

// UpdateContext is what a per-turn update may look at.
type UpdateContext struct {
	Terrain  Terrain
	Registry *Registry
	Player   types.Position
}

// Behavior is the closed set of entity variants.
type Behavior interface {
	Interact(e *Entity) *Outcome
	Update(e *Entity, ctx UpdateContext)
	behavior()
}

// NPC cycles through its dialogue lines.
type NPC struct {
	DialogueIndex int
}

func (*NPC) behavior() {}

// Interact returns the next dialogue line, or nil when there are none.
func (n *NPC) Interact(e *Entity) *Outcome {
	lines := e.Props.Dialogue
	if len(lines) == 0 {
		return nil
	}
	if n.DialogueIndex >= len(lines) {
		n.DialogueIndex = 0
	}
	text := lines[n.DialogueIndex]
	n.DialogueIndex = (n.DialogueIndex + 1) % len(lines)

	speaker := e.Props.Name
	if speaker == "" {
		speaker = e.ID
	}
	return &Outcome{Kind: OutcomeDialogue, Speaker: speaker, Text: text}
}

// Update does nothing; NPCs stand still.
func (*NPC) Update(*Entity, UpdateContext) {}

// Enemy chases the player and loses one health per hit.
type Enemy struct {
	Health int
	Damage int
}

func (*Enemy) behavior() {}

// Interact is the player attacking.
func (en *Enemy) Interact(e *Entity) *Outcome {
	en.Health--
	defeated := en.Health <= 0
	if defeated {
		e.Active = false
	}
	return &Outcome{Kind: OutcomeCombat, Defeated: defeated, EnemyID: e.ID}
}

// chaseOrder is the order enemies consider steps in; the first of equally
// good steps wins.
var chaseOrder = []grid.Direction{grid.Up, grid.Down, grid.Left, grid.Right}

// Update takes one greedy step that minimises Manhattan distance to the
// player. Walls, blocks, holes, the outside of the board and cells held by
// other entities are skipped; the player's own cell is allowed.
func (*Enemy) Update(e *Entity, ctx UpdateContext) {
	if ctx.Terrain == nil || ctx.Registry == nil {
		return
	}
	best := -1
	var bestPos types.Position
	for _, d := range chaseOrder {
		next := grid.Step(e.Pos, d)
		switch ctx.Terrain.Get(next.X, next.Y) {
		case grid.None, grid.Wall, grid.Block, grid.Hole:
			continue
		}
		if next != ctx.Player {
			if other := ctx.Registry.At(next); other != nil && other.ID != e.ID {
				continue
			}
		}
		dist := grid.Manhattan(next, ctx.Player)
		if best < 0 || dist < best {
			best = dist
			bestPos = next
		}
	}
	if best >= 0 {
		ctx.Registry.Move(e.ID, bestPos)
	}
}

// Item is picked up when the player steps on it.
type Item struct{}

func (*Item) behavior() {}

// DefaultItemDescription is used when an item has no description.
const DefaultItemDescription = "Picked up an item"

// Interact picks the item up and removes it from the board.
func (*Item) Interact(e *Entity) *Outcome {
	e.Active = false
	id := e.Props.ItemID
	if id == "" {
		id = e.ID
	}
	desc := e.Props.Description
	if desc == "" {
		desc = DefaultItemDescription
	}
	return &Outcome{Kind: OutcomePickup, ItemID: id, Description: desc}
}

// Update does nothing.
func (*Item) Update(*Entity, UpdateContext) {}

// Interactive is a sign, chest or lever.
type Interactive struct {
	Opened    bool
	Activated bool
}

func (*Interactive) behavior() {}

// Interact dispatches on the object type. Unknown types return nil.
func (it *Interactive) Interact(e *Entity) *Outcome {
	switch e.Props.ObjectType {
	case ObjectSign:
		return &Outcome{Kind: OutcomeDialogue, Speaker: "Sign", Text: e.Props.Text}

	case ObjectChest:
		if it.Opened {
			return &Outcome{Kind: OutcomeDialogue, Speaker: "Chest", Text: "The chest is empty."}
		}
		it.Opened = true
		e.Glyph = e.Props.OpenedGlyph
		if e.Glyph == "" {
			e.Glyph = "_"
		}
		id := e.Props.ItemID
		if id == "" {
			id = "unknown"
		}
		desc := e.Props.Description
		if desc == "" {
			desc = "Found something in the chest!"
		}
		return &Outcome{Kind: OutcomePickup, ItemID: id, Description: desc}

	case ObjectLever:
		it.Activated = !it.Activated
		return &Outcome{Kind: OutcomeLever, LeverID: e.ID, Activated: it.Activated}
	}
	return nil
}

// Update does nothing.
func (*Interactive) Update(*Entity, UpdateContext) {}
