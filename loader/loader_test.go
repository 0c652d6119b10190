package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/types"
)

func TestLoad_DemoWorld(t *testing.T) {
	w, err := Load("testdata/demo")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Def.StartBoard != "village" {
		t.Errorf("StartBoard = %q, want %q", w.Def.StartBoard, "village")
	}
	if got := w.Graph.BoardIDs(); len(got) != 2 || got[0] != "cave" || got[1] != "village" {
		t.Errorf("BoardIDs = %v, want [cave village]", got)
	}
	if len(w.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", w.Warnings)
	}

	// One quest from world.lua.
	if len(w.Quests) != 1 {
		t.Fatalf("expected 1 quest, got %d", len(w.Quests))
	}
	q := w.Quests[0]
	if q.ID != "elders_request" || !q.AutoStart {
		t.Errorf("quest = %+v", q)
	}
	if len(q.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(q.Stages))
	}
	if q.Stages[1].Objectives[0].Type != "pickup" || q.Stages[1].Objectives[0].ItemID != "rare_crystal" {
		t.Errorf("stage 2 objective = %+v", q.Stages[1].Objectives[0])
	}

	// JSON trigger first, then the scripted ones in file order.
	var ids []string
	for _, tr := range w.Triggers {
		ids = append(ids, tr.ID)
	}
	if strings.Join(ids, ",") != "village_greeting,cave_welcome,crystal_story" {
		t.Errorf("trigger ids = %v", ids)
	}
}

func TestLoad_DemoBoardsResolveRelativeToDir(t *testing.T) {
	w, err := Load("testdata/demo")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def, err := w.Graph.LoadBoard("cave")
	if err != nil {
		t.Fatalf("LoadBoard failed: %v", err)
	}
	if def.RequiredCrystals != 1 {
		t.Errorf("RequiredCrystals = %d, want 1", def.RequiredCrystals)
	}
	if len(def.Entities) != 1 || def.Entities[0].ID != "rare_crystal" {
		t.Errorf("entities = %+v", def.Entities)
	}
	if tr, ok := w.Graph.TransitionAt("village", types.Position{X: 5, Y: 1}); !ok || tr.ToBoard != "cave" {
		t.Errorf("village door transition = %+v, %v", tr, ok)
	}
}

func TestLoad_DemoPlaythrough(t *testing.T) {
	w, err := Load("testdata/demo")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := engine.NewSession(w.Graph, w.Quests, w.Triggers, engine.DefaultOptions())
	res, err := s.Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !hasLine(res.Output, "Welcome to the village.") {
		t.Errorf("expected greeting, got %v", res.Output)
	}

	s.Move(grid.Right)
	s.Move(grid.Down)
	res = s.Move(grid.Right) // bump the elder
	if !hasLine(res.Output, "Elder: Bring me the rare crystal from the cave.") {
		t.Errorf("expected elder request, got %v", res.Output)
	}
	if !s.World.Check("elder_asked") {
		t.Fatal("expected elder_asked after talking")
	}

	s.Move(grid.Up)
	s.Move(grid.Right)
	s.Move(grid.Right)
	res = s.Move(grid.Right) // village door
	if s.BoardID() != "cave" {
		t.Fatalf("expected cave, got %s", s.BoardID())
	}
	if !hasLine(res.Output, "The air is cold and damp.") {
		t.Errorf("expected cave welcome, got %v", res.Output)
	}

	s.Move(grid.Down)
	if !s.Inventory.Has("rare_crystal") || s.Inventory.Count("torch") != 2 {
		t.Fatalf("expected crystal and torches, got %v", s.Inventory.All())
	}
	if !s.World.Check("crystal_taken") {
		t.Error("expected board trigger to set crystal_taken")
	}

	s.Move(grid.Up)
	s.Move(grid.Left) // cave door
	if s.BoardID() != "village" {
		t.Fatalf("expected village, got %s", s.BoardID())
	}
	s.Move(grid.Down)
	s.Move(grid.Left) // the elder again
	if !s.Quests.IsCompleted("elders_request") {
		t.Fatal("expected quest complete")
	}
	if s.Inventory.Has("rare_crystal") || !s.Inventory.Has("elder_amulet") {
		t.Errorf("expected crystal swapped for amulet, got %v", s.Inventory.All())
	}
}

func hasLine(out []string, want string) bool {
	for _, l := range out {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, want := range []string{
		`start board "nowhere"`,
		`unknown board "attic"`,
		`board "lost"`,
		`duplicate quest ID "dup"`,
		`unknown objective type "teleport"`,
		`unknown action type "explode"`,
		`undefined quest "ghost"`,
	} {
		assertContains(t, ve.Errors, want)
	}
}

func TestLoad_Warnings(t *testing.T) {
	w, err := Load("testdata/warnings")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertContains(t, w.Warnings, "not on a door or exit")
	assertContains(t, w.Warnings, "not playable")
	assertContains(t, w.Warnings, `unknown type "phantom"`)
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
	if !strings.Contains(err.Error(), "broken.lua") {
		t.Errorf("error = %q, expected the script name", err.Error())
	}
}

func TestLoad_NoWorldFile_Fails(t *testing.T) {
	_, err := Load("testdata/no_world")
	if err == nil {
		t.Fatal("expected error for missing world.json")
	}
	if !strings.Contains(err.Error(), "reading world file") {
		t.Errorf("error = %q, expected 'reading world file'", err.Error())
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	// os library should not be available.
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`os.execute("echo pwned")`); err == nil {
		t.Fatal("expected sandbox to block os.execute")
	}
	if err := L.DoString(`require("io")`); err == nil {
		t.Fatal("expected sandbox to block require")
	}
	if err := L.DoString(`math.random(1, 6)`); err == nil {
		t.Fatal("expected sandbox to block math.random")
	}
}

func TestLoadBoardFile(t *testing.T) {
	def, err := LoadBoardFile("testdata/demo/village.json")
	if err != nil {
		t.Fatalf("LoadBoardFile failed: %v", err)
	}
	if len(def.Tiles) != 4 || len(def.Tiles[0]) != 7 {
		t.Errorf("tiles = %dx%d, want 7x4", len(def.Tiles[0]), len(def.Tiles))
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{tiles"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBoardFile(bad); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadBoardFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected read error")
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"triggers.lua", "world.lua", "items.lua", "npcs.lua"})
	want := []string{"world.lua", "items.lua", "npcs.lua", "triggers.lua"}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

// assertContains checks that at least one string in the slice contains substr.
func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
