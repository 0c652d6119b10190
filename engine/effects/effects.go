// Package effects executes the shared action vocabulary used by triggers
// and quest stages. Every action type is one operation against the
// explicit Context it is given.
package effects

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// Messenger shows one-line messages to the player.
type Messenger interface {
	StartSimple(speaker, text string)
}

// Inventory holds item counts.
type Inventory interface {
	Add(itemID string, count int)
	Remove(itemID string, count int) bool
}

// QuestRunner performs scripted quest transitions.
type QuestRunner interface {
	StartQuest(id string)
	AdvanceQuest(id string)
	CompleteQuest(id string)
}

// Context is everything an action may touch. Nil members disable the
// actions that need them.
type Context struct {
	World     *state.World
	Bus       *events.Bus
	Inventory Inventory
	Messages  Messenger
	Quests    QuestRunner
}

// DefaultSpeaker is used by showMessage when no speaker is given.
const DefaultSpeaker = "System"

// Apply runs actions in order. event is the payload of the event that
// caused them and fills {event.<field>} placeholders in message text.
// Unknown action types are ignored.
func Apply(ctx Context, actions []types.Action, event map[string]any) {
	for _, a := range actions {
		switch a.Type {
		case "setFlag":
			if ctx.World != nil {
				ctx.World.Set(a.Flag, a.Value)
			}

		case "showMessage":
			if ctx.Messages == nil {
				continue
			}
			speaker := a.Speaker
			if speaker == "" {
				speaker = DefaultSpeaker
			}
			ctx.Messages.StartSimple(speaker, interpolate(a.Text, ctx.World, event))

		case "giveItem":
			if ctx.Inventory != nil {
				ctx.Inventory.Add(a.ItemID, count(a))
			}

		case "removeItem":
			if ctx.Inventory != nil && !ctx.Inventory.Remove(a.ItemID, count(a)) {
				logger.Log.WithFields(logrus.Fields{"item": a.ItemID, "count": count(a)}).Debug("removeItem: not enough in inventory")
			}

		case "startQuest":
			if ctx.Quests != nil {
				ctx.Quests.StartQuest(a.QuestID)
			}

		case "advanceQuest":
			if ctx.Quests != nil {
				ctx.Quests.AdvanceQuest(a.QuestID)
			}

		case "completeQuest":
			if ctx.Quests != nil {
				ctx.Quests.CompleteQuest(a.QuestID)
			}

		case "emit":
			if ctx.Bus == nil || a.Event == "" {
				continue
			}
			data := make(map[string]any, len(a.Data))
			for k, v := range a.Data {
				data[k] = v
			}
			ctx.Bus.Emit(a.Event, data)
		}
	}
}

// KnownTypes lists the action types Apply understands.
var KnownTypes = []string{
	"setFlag", "showMessage", "giveItem", "removeItem",
	"startQuest", "advanceQuest", "completeQuest", "emit",
}

// IsKnown reports whether t is an action type Apply understands.
func IsKnown(t string) bool {
	for _, k := range KnownTypes {
		if k == t {
			return true
		}
	}
	return false
}

func count(a types.Action) int {
	if a.Count == nil {
		return 1
	}
	return *a.Count
}

// interpolate replaces {event.<field>} and {flag.<name>} placeholders.
// Unknown placeholders are left as written.
func interpolate(text string, world *state.World, event map[string]any) string {
	if !strings.Contains(text, "{") {
		return text
	}
	var b strings.Builder
	for {
		open := strings.Index(text, "{")
		if open < 0 {
			break
		}
		end := strings.Index(text[open:], "}")
		if end < 0 {
			break
		}
		end += open
		b.WriteString(text[:open])
		key := text[open+1 : end]
		if v, ok := lookup(key, world, event); ok {
			b.WriteString(v)
		} else {
			b.WriteString(text[open : end+1])
		}
		text = text[end+1:]
	}
	b.WriteString(text)
	return b.String()
}

func lookup(key string, world *state.World, event map[string]any) (string, bool) {
	switch {
	case strings.HasPrefix(key, "event."):
		v, ok := event[strings.TrimPrefix(key, "event.")]
		if !ok {
			return "", false
		}
		return format(v), true
	case strings.HasPrefix(key, "flag.") && world != nil:
		name := strings.TrimPrefix(key, "flag.")
		if !world.Has(name) {
			return "", false
		}
		return format(world.Get(name, nil)), true
	}
	return "", false
}

func format(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
