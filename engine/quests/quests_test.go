package quests

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/engine/state"
	"github.com/nathoo/tilequest/types"
)

func newTestSystem() (*System, *events.Bus, *state.World) {
	bus := events.NewBus()
	world := state.New(bus)
	return New(bus, world), bus, world
}

// record captures quest lifecycle events and the given extra events in
// emission order.
func record(bus *events.Bus, extra ...string) *[]string {
	var got []string
	for _, ev := range append([]string{events.QuestStart, events.QuestAdvance, events.QuestComplete}, extra...) {
		ev := ev
		bus.On(ev, func(map[string]any) { got = append(got, ev) })
	}
	return &got
}

func interact(id string) types.Objective {
	return types.Objective{Type: "interact", EntityID: id}
}

func testQuests() []types.QuestDef {
	return []types.QuestDef{
		{
			ID:   "q1",
			Name: "Talk It Over",
			Stages: []types.StageDef{{
				Description: "Talk to the elder",
				Objectives:  []types.Objective{interact("npc1")},
				OnComplete:  []types.Action{{Type: "setFlag", Flag: "done", Value: true}},
			}},
		},
		{
			ID:          "q2",
			Name:        "Two Steps",
			Description: "A quest with two stages.",
			Stages: []types.StageDef{
				{Description: "Find the key", Objectives: []types.Objective{{Type: "pickup", ItemID: "key"}}},
				{Description: "Open the gate", Objectives: []types.Objective{{Type: "flag", Flag: "gate", Value: "open"}}},
			},
		},
	}
}

func TestQuest_InteractCompletesAndRunsActions(t *testing.T) {
	sys, bus, world := newTestSystem()
	sys.LoadQuests(testQuests())
	sys.StartQuest("q1")

	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})
	if world.Get("done", nil) != true {
		t.Error("expected done flag to be set")
	}
	if !sys.IsCompleted("q1") || sys.IsActive("q1") {
		t.Error("expected q1 completed")
	}
}

func TestStartQuest_Idempotent(t *testing.T) {
	sys, bus, _ := newTestSystem()
	got := record(bus)
	sys.LoadQuests(testQuests())

	sys.StartQuest("q1")
	sys.StartQuest("q1")
	sys.StartQuest("nope")
	if !reflect.DeepEqual(*got, []string{events.QuestStart}) {
		t.Errorf("expected one quest:start, got %v", *got)
	}

	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})
	sys.StartQuest("q1")
	if len(*got) != 2 {
		t.Errorf("starting a completed quest should do nothing, got %v", *got)
	}
}

func TestQuest_TwoStagesEventOrder(t *testing.T) {
	sys, bus, world := newTestSystem()
	// Record before the quest system subscribes so each triggering event is
	// logged ahead of the transition it causes.
	got := record(bus, events.ItemPickup, events.FlagChanged)
	sys.LoadQuests(testQuests())
	sys.StartQuest("q2")

	bus.Emit(events.ItemPickup, map[string]any{"itemId": "coin"})
	if idx, _ := sys.StageIndex("q2"); idx != 0 {
		t.Fatalf("wrong item advanced the quest to %d", idx)
	}
	bus.Emit(events.ItemPickup, map[string]any{"itemId": "key"})
	world.Set("gate", "closed")
	world.Set("gate", "open")

	want := []string{
		events.QuestStart,
		events.ItemPickup,
		events.ItemPickup, events.QuestAdvance,
		events.FlagChanged,
		events.FlagChanged, events.QuestComplete,
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestQuest_OnCompleteReentryHitsNextStage(t *testing.T) {
	sys, bus, _ := newTestSystem()
	got := record(bus)
	sys.LoadQuests([]types.QuestDef{{
		ID: "echo",
		Stages: []types.StageDef{
			{
				Objectives: []types.Objective{interact("npc1")},
				OnComplete: []types.Action{{Type: "emit", Event: events.EntityInteract, Data: map[string]any{"entityId": "npc1"}}},
			},
			{Objectives: []types.Objective{interact("npc1")}},
			{Objectives: []types.Objective{interact("npc2")}},
		},
	}})
	sys.StartQuest("echo")

	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})
	// The re-emitted interaction satisfies stage 2 only; stage 1 is not
	// completed twice.
	if idx, _ := sys.StageIndex("echo"); idx != 2 {
		t.Errorf("expected stage 2, got %d", idx)
	}
	want := []string{events.QuestStart, events.QuestAdvance, events.QuestAdvance}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestQuest_RequiredFlags(t *testing.T) {
	sys, bus, world := newTestSystem()
	sys.LoadQuests([]types.QuestDef{{
		ID: "gated",
		Stages: []types.StageDef{{Objectives: []types.Objective{{
			Type: "defeat", EntityID: "boss", RequiredFlags: []types.FlagCondition{{Flag: "has_sword"}},
		}}}},
	}})
	sys.StartQuest("gated")

	bus.Emit(events.EntityDefeat, map[string]any{"entityId": "boss"})
	if sys.IsCompleted("gated") {
		t.Fatal("objective should need has_sword")
	}
	world.Set("has_sword", true)
	bus.Emit(events.EntityDefeat, map[string]any{"entityId": "boss"})
	if !sys.IsCompleted("gated") {
		t.Error("expected quest completed once flag holds")
	}
}

func TestQuest_MultipleObjectivesAccumulate(t *testing.T) {
	sys, bus, _ := newTestSystem()
	sys.LoadQuests([]types.QuestDef{{
		ID: "tour",
		Stages: []types.StageDef{{Objectives: []types.Objective{
			{Type: "enterBoard", BoardID: "cave"},
			{Type: "enterBoard", BoardID: "forest"},
		}}},
	}})
	sys.StartQuest("tour")

	bus.Emit(events.BoardEnter, map[string]any{"boardId": "cave"})
	bus.Emit(events.BoardEnter, map[string]any{"boardId": "cave"})
	if sys.IsCompleted("tour") {
		t.Fatal("one board should not complete the stage")
	}
	bus.Emit(events.BoardEnter, map[string]any{"boardId": "forest"})
	if !sys.IsCompleted("tour") {
		t.Error("expected both boards to complete the stage")
	}
}

func TestQuest_StartedMidCheckIgnoresCurrentEvent(t *testing.T) {
	sys, bus, _ := newTestSystem()
	sys.LoadQuests([]types.QuestDef{
		{ID: "a", Stages: []types.StageDef{{
			Objectives: []types.Objective{interact("npc1")},
			OnComplete: []types.Action{{Type: "startQuest", QuestID: "b"}},
		}}},
		{ID: "b", Stages: []types.StageDef{{Objectives: []types.Objective{interact("npc1")}}}},
	})
	sys.StartQuest("a")

	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})
	if !sys.IsCompleted("a") || !sys.IsActive("b") {
		t.Fatal("expected a completed and b started")
	}
	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})
	if !sys.IsCompleted("b") {
		t.Error("expected b to complete on the next interaction")
	}
}

func TestAdvanceAndCompleteQuest(t *testing.T) {
	sys, bus, _ := newTestSystem()
	sys.LoadQuests(testQuests())
	sys.StartQuest("q2")
	got := record(bus)

	sys.AdvanceQuest("q2")
	if idx, ok := sys.StageIndex("q2"); !ok || idx != 1 {
		t.Errorf("expected stage 1, got %d", idx)
	}
	if len(*got) != 0 {
		t.Errorf("forced advance should not emit quest:advance, got %v", *got)
	}
	sys.AdvanceQuest("q2")
	if !sys.IsCompleted("q2") {
		t.Error("advancing past the last stage should complete")
	}

	sys.StartQuest("q1")
	sys.CompleteQuest("q1")
	sys.CompleteQuest("q1")
	sys.CompleteQuest("unknown")
	want := []string{events.QuestComplete, events.QuestStart, events.QuestComplete}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
	if !reflect.DeepEqual(sys.CompletedQuests(), []CompletedQuest{{ID: "q2", Name: "Two Steps"}, {ID: "q1", Name: "Talk It Over"}}) {
		t.Errorf("unexpected completed list %v", sys.CompletedQuests())
	}
}

func TestLoadQuests_AutoStartAndSingleSubscription(t *testing.T) {
	sys, bus, _ := newTestSystem()
	defs := testQuests()
	defs[1].AutoStart = true
	sys.LoadQuests(defs)
	sys.LoadQuests(defs)

	if bus.ListenerCount(events.EntityInteract) != 1 {
		t.Errorf("expected a single subscription, got %d", bus.ListenerCount(events.EntityInteract))
	}
	active := sys.ActiveQuests()
	want := []ActiveQuest{{ID: "q2", Name: "Two Steps", Description: "A quest with two stages.", StageDescription: "Find the key"}}
	if !reflect.DeepEqual(active, want) {
		t.Errorf("expected %v, got %v", want, active)
	}

	sys.Close()
	if bus.ListenerCount(events.EntityInteract) != 0 {
		t.Error("Close should unsubscribe")
	}
}

func TestSnapshotRestore(t *testing.T) {
	sys, bus, _ := newTestSystem()
	sys.LoadQuests([]types.QuestDef{
		{ID: "tour", Stages: []types.StageDef{{Objectives: []types.Objective{
			{Type: "enterBoard", BoardID: "cave"},
			{Type: "enterBoard", BoardID: "forest"},
		}}}},
		testQuests()[0],
	})
	sys.StartQuest("tour")
	sys.StartQuest("q1")
	bus.Emit(events.BoardEnter, map[string]any{"boardId": "forest"})
	bus.Emit(events.EntityInteract, map[string]any{"entityId": "npc1"})

	raw, err := json.Marshal(sys.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(snap.Active["tour"].CompletedObjectives, [][]int{{1}}) {
		t.Errorf("unexpected saved objectives %v", snap.Active["tour"].CompletedObjectives)
	}

	bus2 := events.NewBus()
	restored := New(bus2, state.New(bus2))
	restored.LoadQuests(nil)
	restored.LoadQuests([]types.QuestDef{
		{ID: "tour", Stages: []types.StageDef{{Objectives: []types.Objective{
			{Type: "enterBoard", BoardID: "cave"},
			{Type: "enterBoard", BoardID: "forest"},
		}}}},
		testQuests()[0],
	})
	restored.Restore(snap)

	if !restored.IsCompleted("q1") || !restored.IsActive("tour") {
		t.Fatal("restore lost quest states")
	}
	if bus2.ListenerCount(events.BoardEnter) != 1 {
		t.Errorf("expected one subscription after restore, got %d", bus2.ListenerCount(events.BoardEnter))
	}
	bus2.Emit(events.BoardEnter, map[string]any{"boardId": "cave"})
	if !restored.IsCompleted("tour") {
		t.Error("restored progress should let the last objective finish the quest")
	}
}
