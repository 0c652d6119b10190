package reactor

import (
	"reflect"
	"testing"

	"github.com/nathoo/tilequest/engine/entities"
	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/types"
)

func setup(defs ...types.EntityDef) (*Reactor, *events.Bus, *state.World, *entities.Registry) {
	bus := events.NewBus()
	world := state.New(bus)
	r := New(bus, world)
	reg := entities.FromDefinitions(defs)
	r.Track(reg)
	return r, bus, world, reg
}

func TestVisibility_FollowsFlag(t *testing.T) {
	_, bus, world, reg := setup(types.EntityDef{
		ID: "ghost", Type: entities.KindNPC, X: 1, Y: 1,
		Properties: types.EntityProps{Conditions: &types.EntityConditions{
			Visible: []types.FlagCondition{{Flag: "x", Value: true}},
		}},
	})
	ghost, _ := reg.Get("ghost")

	bus.Emit(events.BoardEnter, map[string]any{"boardId": "b1"})
	if !ghost.Hidden {
		t.Error("expected ghost hidden before x is set")
	}
	world.Set("x", true)
	if ghost.Hidden {
		t.Error("expected ghost visible after x=true")
	}
	world.Set("x", false)
	if !ghost.Hidden {
		t.Error("expected ghost hidden after x=false")
	}
	if !ghost.Active {
		t.Error("visibility must not touch Active")
	}
}

func TestVisibility_NoConditionsAlwaysVisible(t *testing.T) {
	_, _, world, reg := setup(types.EntityDef{ID: "plain", Type: entities.KindNPC})
	world.Set("anything", 1)
	if e, _ := reg.Get("plain"); e.Hidden {
		t.Error("entity without visibility conditions should stay visible")
	}
}

func TestConditionalDialogue_FirstMatchAndRestore(t *testing.T) {
	_, bus, world, reg := setup(types.EntityDef{
		ID: "elder", Type: entities.KindNPC,
		Properties: types.EntityProps{
			Dialogue: []string{"Hello, stranger."},
			ConditionalDialogue: []types.ConditionalDialogue{
				{Conditions: []types.FlagCondition{{Flag: "hero"}}, Dialogue: []string{"Welcome, hero."}},
				{Conditions: []types.FlagCondition{{Flag: "met"}}, Dialogue: []string{"Hello again."}},
			},
		},
	})
	elder, _ := reg.Get("elder")
	npc := elder.Behavior.(*entities.NPC)

	bus.Emit(events.BoardEnter, nil)
	if !reflect.DeepEqual(elder.Props.Dialogue, []string{"Hello, stranger."}) {
		t.Errorf("unexpected dialogue %v", elder.Props.Dialogue)
	}

	npc.DialogueIndex = 1
	world.Set("met", true)
	world.Set("hero", true)
	if !reflect.DeepEqual(elder.Props.Dialogue, []string{"Welcome, hero."}) {
		t.Errorf("expected the first matching entry, got %v", elder.Props.Dialogue)
	}
	if npc.DialogueIndex != 0 {
		t.Errorf("dialogue index should reset, got %d", npc.DialogueIndex)
	}

	world.Set("hero", false)
	world.Set("met", false)
	if !reflect.DeepEqual(elder.Props.Dialogue, []string{"Hello, stranger."}) {
		t.Errorf("expected original dialogue restored, got %v", elder.Props.Dialogue)
	}
}

func TestConditionalText(t *testing.T) {
	_, _, world, reg := setup(types.EntityDef{
		ID: "sign", Type: entities.KindInteractive,
		Properties: types.EntityProps{
			ObjectType: entities.ObjectSign,
			Text:       "The bridge is out.",
			ConditionalText: []types.ConditionalText{
				{Conditions: []types.FlagCondition{{Flag: "bridge", Value: "fixed"}}, Text: "The bridge is fixed."},
			},
		},
	})
	sign, _ := reg.Get("sign")

	world.Set("bridge", "fixed")
	if sign.Props.Text != "The bridge is fixed." {
		t.Errorf("unexpected text %q", sign.Props.Text)
	}
	world.Set("bridge", "broken")
	if sign.Props.Text != "The bridge is out." {
		t.Errorf("expected original text restored, got %q", sign.Props.Text)
	}
}

func TestApplyAll_Idempotent(t *testing.T) {
	r, _, world, reg := setup(types.EntityDef{
		ID: "elder", Type: entities.KindNPC,
		Properties: types.EntityProps{
			Dialogue:            []string{"a"},
			Conditions:          &types.EntityConditions{Visible: []types.FlagCondition{{Flag: "v"}}},
			ConditionalDialogue: []types.ConditionalDialogue{{Conditions: []types.FlagCondition{{Flag: "v"}}, Dialogue: []string{"b"}}},
		},
	})
	world.Set("v", true)
	elder, _ := reg.Get("elder")
	before := *elder
	beforeProps := elder.Props

	r.ApplyAll()
	r.ApplyAll()
	if elder.Hidden != before.Hidden || !reflect.DeepEqual(elder.Props, beforeProps) {
		t.Error("re-applying with unchanged flags changed the entity")
	}
}

func TestTrackAndClose(t *testing.T) {
	r, bus, world, _ := setup()
	other := entities.FromDefinitions([]types.EntityDef{{
		ID: "x", Type: entities.KindItem,
		Properties: types.EntityProps{Conditions: &types.EntityConditions{Visible: []types.FlagCondition{{Flag: "show"}}}},
	}})
	r.Track(other)
	bus.Emit(events.BoardEnter, nil)
	x, _ := other.Get("x")
	if !x.Hidden {
		t.Error("expected newly tracked registry to be evaluated")
	}

	r.Close()
	world.Set("show", true)
	if !x.Hidden {
		t.Error("closed reactor should not react")
	}
	if bus.ListenerCount(events.FlagChanged) != 0 {
		t.Error("Close left subscriptions")
	}
}
