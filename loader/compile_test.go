package loader

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileQuest(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Quest "rescue" {
			name = "Rescue",
			description = "Save the cat.",
			autoStart = true,
			stages = {
				{
					description = "Go to the tree.",
					objectives = { EnterBoard("forest"), FlagObjective("ladder", 2) },
					onComplete = { StartQuest("other") },
				},
				{
					description = "Fetch the cat.",
					objectives = { Interact("cat", { Flag("ladder"), Flag("mood", "calm") }), Defeat("dog") },
				},
			},
		}
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.quests) != 1 {
		t.Fatalf("expected 1 quest, got %d", len(coll.quests))
	}

	q, err := compileQuest(coll.quests[0])
	if err != nil {
		t.Fatal(err)
	}
	if q.ID != "rescue" || q.Name != "Rescue" || q.Description != "Save the cat." || !q.AutoStart {
		t.Errorf("quest header = %+v", q)
	}
	if len(q.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(q.Stages))
	}

	s0 := q.Stages[0]
	if s0.Objectives[0].Type != "enterBoard" || s0.Objectives[0].BoardID != "forest" {
		t.Errorf("objective 0 = %+v", s0.Objectives[0])
	}
	if s0.Objectives[1].Type != "flag" || s0.Objectives[1].Flag != "ladder" || s0.Objectives[1].Value != 2 {
		t.Errorf("objective 1 = %+v", s0.Objectives[1])
	}
	if len(s0.OnComplete) != 1 || s0.OnComplete[0].Type != "startQuest" || s0.OnComplete[0].QuestID != "other" {
		t.Errorf("onComplete = %+v", s0.OnComplete)
	}

	s1 := q.Stages[1]
	inter := s1.Objectives[0]
	if inter.Type != "interact" || inter.EntityID != "cat" {
		t.Errorf("interact objective = %+v", inter)
	}
	if len(inter.RequiredFlags) != 2 {
		t.Fatalf("expected 2 required flags, got %d", len(inter.RequiredFlags))
	}
	if inter.RequiredFlags[0].Flag != "ladder" || inter.RequiredFlags[0].Value != nil {
		t.Errorf("required flag 0 = %+v", inter.RequiredFlags[0])
	}
	if inter.RequiredFlags[1].Value != "calm" {
		t.Errorf("required flag 1 = %+v", inter.RequiredFlags[1])
	}
	if s1.Objectives[1].Type != "defeat" || s1.Objectives[1].EntityID != "dog" {
		t.Errorf("defeat objective = %+v", s1.Objectives[1])
	}
}

func TestCompileQuest_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no stages", `Quest "q" { name = "Q" }`},
		{"empty stages", `Quest "q" { stages = {} }`},
		{"stage without objectives", `Quest "q" { stages = { { description = "x" } } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L, coll := newTestVM()
			defer L.Close()
			if err := L.DoString(tt.src); err != nil {
				t.Fatal(err)
			}
			if _, err := compile(coll); err == nil {
				t.Error("expected compile error")
			}
		})
	}
}

func TestCompileTrigger(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Trigger "lever_door" {
			event = "lever:toggle",
			once = true,
			match = { leverId = "l1", activated = true },
			flags = { Flag("power") },
			actions = { SetFlag("door_open"), ShowMessage("A door grinds open.") },
		}
		Trigger "plain" {
			event = "player:move",
			actions = { SetFlag("moved", false) },
		}
	`); err != nil {
		t.Fatal(err)
	}

	out, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(out.Triggers))
	}

	tr := out.Triggers[0]
	if tr.ID != "lever_door" || tr.Event != "lever:toggle" || !tr.Once {
		t.Errorf("trigger header = %+v", tr)
	}
	if tr.Conditions == nil {
		t.Fatal("expected conditions")
	}
	if tr.Conditions.EventMatch["leverId"] != "l1" || tr.Conditions.EventMatch["activated"] != true {
		t.Errorf("eventMatch = %v", tr.Conditions.EventMatch)
	}
	if len(tr.Conditions.Flags) != 1 || tr.Conditions.Flags[0].Flag != "power" {
		t.Errorf("flags = %+v", tr.Conditions.Flags)
	}
	if len(tr.Actions) != 2 || tr.Actions[0].Value != true {
		t.Errorf("actions = %+v", tr.Actions)
	}

	plain := out.Triggers[1]
	if plain.Conditions != nil {
		t.Errorf("expected nil conditions, got %+v", plain.Conditions)
	}
	if plain.Actions[0].Value != false {
		t.Errorf("SetFlag value = %v, want false", plain.Actions[0].Value)
	}
}

func TestCompileTrigger_MissingEvent(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`Trigger "t" { actions = {} }`); err != nil {
		t.Fatal(err)
	}
	if _, err := compile(coll); err == nil {
		t.Error("expected error for trigger without event")
	}
}

func TestCompileActions_AllHelpers(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		return {
			SetFlag("f", "v"),
			ShowMessage("hello"),
			ShowMessage("Guard", "halt"),
			GiveItem("key"),
			GiveItem("coin", 3),
			RemoveItem("key"),
			StartQuest("q"),
			AdvanceQuest("q"),
			CompleteQuest("q"),
			Emit("custom:event", { n = 1 }),
			Emit("bare"),
		}
	`); err != nil {
		t.Fatal(err)
	}
	actions := compileActions(L.CheckTable(-1))

	wantTypes := []string{
		"setFlag", "showMessage", "showMessage", "giveItem", "giveItem", "removeItem",
		"startQuest", "advanceQuest", "completeQuest", "emit", "emit",
	}
	if len(actions) != len(wantTypes) {
		t.Fatalf("expected %d actions, got %d", len(wantTypes), len(actions))
	}
	for i, want := range wantTypes {
		if actions[i].Type != want {
			t.Errorf("action %d type = %q, want %q", i, actions[i].Type, want)
		}
	}

	if actions[0].Flag != "f" || actions[0].Value != "v" {
		t.Errorf("setFlag = %+v", actions[0])
	}
	if actions[1].Speaker != "" || actions[1].Text != "hello" {
		t.Errorf("showMessage = %+v", actions[1])
	}
	if actions[2].Speaker != "Guard" || actions[2].Text != "halt" {
		t.Errorf("showMessage with speaker = %+v", actions[2])
	}
	if actions[3].Count != nil {
		t.Errorf("GiveItem without count should leave Count nil, got %d", *actions[3].Count)
	}
	if actions[4].Count == nil || *actions[4].Count != 3 {
		t.Errorf("GiveItem count = %v, want 3", actions[4].Count)
	}
	if actions[9].Event != "custom:event" || actions[9].Data["n"] != 1 {
		t.Errorf("emit = %+v", actions[9])
	}
	if actions[10].Data != nil {
		t.Errorf("bare emit data = %v, want nil", actions[10].Data)
	}
}

func TestToGoValue(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`return { 1, 2.5, "x", true }, { a = 1, b = { c = "d" } }`); err != nil {
		t.Fatal(err)
	}

	arr, ok := toGoValue(L.Get(-2)).([]any)
	if !ok || len(arr) != 4 {
		t.Fatalf("array = %v", toGoValue(L.Get(-2)))
	}
	if arr[0] != 1 || arr[1] != 2.5 || arr[2] != "x" || arr[3] != true {
		t.Errorf("array values = %v", arr)
	}

	m, ok := toGoValue(L.Get(-1)).(map[string]any)
	if !ok {
		t.Fatalf("map = %v", toGoValue(L.Get(-1)))
	}
	inner, ok := m["b"].(map[string]any)
	if m["a"] != 1 || !ok || inner["c"] != "d" {
		t.Errorf("map values = %v", m)
	}
}
