package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine/entities"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// interact runs e's interaction, publishes entity:interact and then turns
// the outcome into dialogue, inventory changes and events.
func (s *Session) interact(e *entities.Entity) {
	out := e.Interact()
	logger.Log.WithFields(logrus.Fields{"entity": e.ID, "kind": e.Kind}).Debug("interact")
	s.Bus.Emit(events.EntityInteract, map[string]any{"entityId": e.ID, "type": e.Kind})
	if out == nil {
		return
	}

	switch out.Kind {
	case entities.OutcomeDialogue:
		s.Dialogue.StartSimple(out.Speaker, out.Text)

	case entities.OutcomePickup:
		s.Inventory.Add(out.ItemID, 1)
		s.say("%s", out.Description)
		s.Bus.Emit(events.ItemPickup, map[string]any{"itemId": out.ItemID})

	case entities.OutcomeCombat:
		name := entityName(e)
		if !out.Defeated {
			s.say("You strike the %s.", name)
			return
		}
		s.say("You defeated the %s.", name)
		s.Bus.Emit(events.EntityDefeat, map[string]any{"entityId": out.EnemyID})

	case entities.OutcomeLever:
		state := "off"
		if out.Activated {
			state = "on"
		}
		s.say("The lever clicks %s.", state)
		s.Bus.Emit(events.LeverToggle, map[string]any{"leverId": out.LeverID, "activated": out.Activated})
	}
}

func entityName(e *entities.Entity) string {
	if e.Props.Name != "" {
		return e.Props.Name
	}
	return e.ID
}

// UseItem spends one of itemID and publishes item:use.
func (s *Session) UseItem(itemID string) types.Result {
	return s.record(func() {
		if !s.Inventory.Remove(itemID, 1) {
			s.say("You have no %s.", itemID)
			return
		}
		s.Bus.Emit(events.ItemUse, map[string]any{"itemId": itemID})
	})
}
