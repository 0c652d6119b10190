package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tilequest/types"
)

// rawQuest holds a quest table before compilation.
type rawQuest struct {
	id    string
	table *lua.LTable
}

// rawTrigger holds a trigger table before compilation.
type rawTrigger struct {
	id    string
	table *lua.LTable
}

// scripted is what the world scripts contribute.
type scripted struct {
	Quests   []types.QuestDef
	Triggers []types.TriggerDef
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) (float64, bool) {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n), true
	}
	return 0, false
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		// Otherwise treat as map.
		return tableToAnyMap(val)
	default:
		return nil
	}
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// eachTable calls fn for the table elements of the array part of tbl.
func eachTable(tbl *lua.LTable, fn func(i int, t *lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			fn(i, t)
		}
	}
}

// compile converts all collected Lua data into definitions.
func compile(coll *collector) (scripted, error) {
	var out scripted
	for _, raw := range coll.quests {
		q, err := compileQuest(raw)
		if err != nil {
			return scripted{}, fmt.Errorf("compiling quest %s: %w", raw.id, err)
		}
		out.Quests = append(out.Quests, q)
	}
	for _, raw := range coll.triggers {
		t, err := compileTrigger(raw)
		if err != nil {
			return scripted{}, fmt.Errorf("compiling trigger %s: %w", raw.id, err)
		}
		out.Triggers = append(out.Triggers, t)
	}
	return out, nil
}

func compileQuest(raw rawQuest) (types.QuestDef, error) {
	tbl := raw.table
	q := types.QuestDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		AutoStart:   getBool(tbl, "autoStart", false),
	}
	stages := getTable(tbl, "stages")
	if stages == nil || stages.MaxN() == 0 {
		return types.QuestDef{}, fmt.Errorf("quest has no stages")
	}
	var err error
	eachTable(stages, func(i int, st *lua.LTable) {
		if err != nil {
			return
		}
		stage := types.StageDef{
			Description: getString(st, "description"),
			OnComplete:  compileActions(getTable(st, "onComplete")),
		}
		eachTable(getTable(st, "objectives"), func(_ int, o *lua.LTable) {
			stage.Objectives = append(stage.Objectives, compileObjective(o))
		})
		if len(stage.Objectives) == 0 {
			err = fmt.Errorf("stage %d has no objectives", i)
			return
		}
		q.Stages = append(q.Stages, stage)
	})
	if err != nil {
		return types.QuestDef{}, err
	}
	return q, nil
}

func compileObjective(tbl *lua.LTable) types.Objective {
	return types.Objective{
		Type:          getString(tbl, "type"),
		EntityID:      getString(tbl, "entityId"),
		ItemID:        getString(tbl, "itemId"),
		BoardID:       getString(tbl, "boardId"),
		Flag:          getString(tbl, "flag"),
		Value:         toGoValue(tbl.RawGetString("value")),
		RequiredFlags: compileFlags(getTable(tbl, "requiredFlags")),
	}
}

func compileTrigger(raw rawTrigger) (types.TriggerDef, error) {
	tbl := raw.table
	t := types.TriggerDef{
		ID:      raw.id,
		Event:   getString(tbl, "event"),
		Once:    getBool(tbl, "once", false),
		Actions: compileActions(getTable(tbl, "actions")),
	}
	if t.Event == "" {
		return types.TriggerDef{}, fmt.Errorf("trigger has no event")
	}
	match := tableToAnyMap(getTable(tbl, "match"))
	flags := compileFlags(getTable(tbl, "flags"))
	if len(match) > 0 || len(flags) > 0 {
		t.Conditions = &types.TriggerConditions{EventMatch: match, Flags: flags}
	}
	return t, nil
}

func compileFlags(tbl *lua.LTable) []types.FlagCondition {
	var conds []types.FlagCondition
	eachTable(tbl, func(_ int, c *lua.LTable) {
		conds = append(conds, types.FlagCondition{
			Flag:  getString(c, "flag"),
			Value: toGoValue(c.RawGetString("value")),
		})
	})
	return conds
}

func compileActions(tbl *lua.LTable) []types.Action {
	var actions []types.Action
	eachTable(tbl, func(_ int, a *lua.LTable) {
		actions = append(actions, compileAction(a))
	})
	return actions
}

func compileAction(tbl *lua.LTable) types.Action {
	a := types.Action{
		Type:    getString(tbl, "type"),
		Flag:    getString(tbl, "flag"),
		Value:   toGoValue(tbl.RawGetString("value")),
		Speaker: getString(tbl, "speaker"),
		Text:    getString(tbl, "text"),
		ItemID:  getString(tbl, "itemId"),
		QuestID: getString(tbl, "questId"),
		Event:   getString(tbl, "event"),
		Data:    tableToAnyMap(getTable(tbl, "data")),
	}
	if n, ok := getNumber(tbl, "count"); ok {
		c := int(n)
		a.Count = &c
	}
	return a
}
