package command

import (
	"reflect"
	"testing"

	"github.com/nathoo/tilequest/engine/grid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{"empty string", "", Command{}},
		{"whitespace only", "   ", Command{}},

		// Direction shortcuts
		{"up", "up", Command{Verb: Move, Dir: grid.Up}},
		{"u", "u", Command{Verb: Move, Dir: grid.Up}},
		{"north", "NORTH", Command{Verb: Move, Dir: grid.Up}},
		{"k", "k", Command{Verb: Move, Dir: grid.Up}},
		{"j", "j", Command{Verb: Move, Dir: grid.Down}},
		{"s", "s", Command{Verb: Move, Dir: grid.Down}},
		{"west", "west", Command{Verb: Move, Dir: grid.Left}},
		{"h", "h", Command{Verb: Move, Dir: grid.Left}},
		{"l", "l", Command{Verb: Move, Dir: grid.Left}},
		{"e", "e", Command{Verb: Move, Dir: grid.Right}},
		{"r", "r", Command{Verb: Move, Dir: grid.Right}},
		{"go left", "go left", Command{Verb: Move, Args: []string{"left"}, Dir: grid.Left}},
		{"go nowhere", "go nowhere", Command{Verb: Move, Args: []string{"nowhere"}, Dir: NoDirection}},
		{"bare go", "go", Command{Verb: Move, Args: []string{}, Dir: NoDirection}},

		// Verbs and aliases
		{"look", "look", Command{Verb: Look, Args: []string{}}},
		{"analyse", "analyse", Command{Verb: Analyze, Args: []string{}}},
		{"i", "i", Command{Verb: Inventory, Args: []string{}}},
		{"choose", "choose 2", Command{Verb: Choose, Args: []string{"2"}}},
		{"flag keeps case", "flag DoorOpen true", Command{Verb: Flag, Args: []string{"DoorOpen", "true"}}},
		{"unknown verb", "dance wildly", Command{Verb: "dance", Args: []string{"wildly"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_EmitKeepsPayload(t *testing.T) {
	cmd := Parse(`emit item:pickup  {"itemId": "Gem"}`)
	if cmd.Verb != Emit || cmd.Args[0] != "item:pickup" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	data, err := cmd.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if data["itemId"] != "Gem" {
		t.Errorf("expected itemId Gem, got %v", data)
	}

	empty, err := Parse("emit board:enter").Data()
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty data, got %v, %v", empty, err)
	}
	if _, err := Parse("emit x [1,2]").Data(); err == nil {
		t.Error("expected error for non-object payload")
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"3", 3.0},
		{`"quoted"`, "quoted"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Value(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Value(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Parse("quests").Known() {
		t.Error("expected quests to be known")
	}
	if Parse("dance").Known() {
		t.Error("expected dance to be unknown")
	}
}
