// Package loader reads a world directory: world.json, the board files it
// names, and optional Lua scripts declaring quests and triggers. The Lua VM
// is discarded after loading.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

// WorldFile is the name of the world definition inside a world directory.
const WorldFile = "world.json"

// World is a loaded, validated world.
type World struct {
	Dir      string
	Def      types.WorldDef
	Graph    *world.Graph
	Quests   []types.QuestDef
	Triggers []types.TriggerDef
	Warnings []string
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	quests   []rawQuest
	triggers []rawTrigger
}

// Load reads dir, runs its scripts (world.lua first, then the rest in
// name order), validates references and returns the world. Warnings are
// logged and kept on the result; any error fails.
func Load(dir string) (*World, error) {
	def, err := readWorld(filepath.Join(dir, WorldFile))
	if err != nil {
		return nil, err
	}

	luaFiles, err := findScripts(dir)
	if err != nil {
		return nil, err
	}
	coll := &collector{}
	if len(luaFiles) > 0 {
		if err := runScripts(dir, luaFiles, coll); err != nil {
			return nil, err
		}
	}

	scripted, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling world scripts: %w", err)
	}
	def.Quests = append(def.Quests, scripted.Quests...)
	def.Triggers = append(def.Triggers, scripted.Triggers...)

	src := NewDirSource(dir)
	warnings, err := validate(def, src)
	for _, w := range warnings {
		logger.Log.WithField("world", dir).Warn(w)
	}
	if err != nil {
		return nil, err
	}

	return &World{
		Dir:      dir,
		Def:      def,
		Graph:    world.NewGraph(def, src),
		Quests:   def.Quests,
		Triggers: def.Triggers,
		Warnings: warnings,
	}, nil
}

func readWorld(path string) (types.WorldDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.WorldDef{}, fmt.Errorf("reading world file: %w", err)
	}
	var def types.WorldDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return types.WorldDef{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if def.Boards == nil {
		def.Boards = map[string]types.BoardRef{}
	}
	return def, nil
}

func findScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading world directory %s: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	return sortedLuaFiles(luaFiles), nil
}

// sortedLuaFiles returns the script names with world.lua first and the
// rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var first string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			first = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if first != "" {
		return append([]string{first}, others...)
	}
	return others
}

func runScripts(dir string, files []string, coll *collector) error {
	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Scripts declare content; they never roll dice.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

// DirSource reads board files relative to a world directory.
type DirSource struct {
	Dir string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) DirSource {
	return DirSource{Dir: dir}
}

// ReadBoard implements world.BoardSource.
func (d DirSource) ReadBoard(file string) (types.BoardDef, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Dir, file)
	}
	return LoadBoardFile(path)
}

// LoadBoardFile reads one board JSON file.
func LoadBoardFile(path string) (types.BoardDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.BoardDef{}, fmt.Errorf("reading board file: %w", err)
	}
	var def types.BoardDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return types.BoardDef{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return def, nil
}
