package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerActionHelpers(L)
	registerObjectiveHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Quest "id" { ... }: curried, Quest("id") returns a function that takes a table.
	L.SetGlobal("Quest", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.quests = append(coll.quests, rawQuest{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Trigger "id" { event = "...", ... }
	L.SetGlobal("Trigger", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.triggers = append(coll.triggers, rawTrigger{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// Flag("name") or Flag("name", value)
	L.SetGlobal("Flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("flag", lua.LString(flag))
		if L.GetTop() >= 2 {
			tbl.RawSetString("value", L.Get(2))
		}
		L.Push(tbl)
		return 1
	}))
}

func registerActionHelpers(L *lua.LState) {
	// SetFlag("flag", value), value defaults to true.
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("setFlag"))
		tbl.RawSetString("flag", lua.LString(flag))
		if L.GetTop() >= 2 {
			tbl.RawSetString("value", L.Get(2))
		} else {
			tbl.RawSetString("value", lua.LTrue)
		}
		L.Push(tbl)
		return 1
	}))

	// ShowMessage("text") or ShowMessage("speaker", "text")
	L.SetGlobal("ShowMessage", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("showMessage"))
		if L.GetTop() >= 2 {
			tbl.RawSetString("speaker", lua.LString(L.CheckString(1)))
			tbl.RawSetString("text", lua.LString(L.CheckString(2)))
		} else {
			tbl.RawSetString("text", lua.LString(L.CheckString(1)))
		}
		L.Push(tbl)
		return 1
	}))

	// GiveItem("id") or GiveItem("id", count)
	L.SetGlobal("GiveItem", L.NewFunction(itemAction("giveItem")))
	// RemoveItem("id") or RemoveItem("id", count)
	L.SetGlobal("RemoveItem", L.NewFunction(itemAction("removeItem")))

	L.SetGlobal("StartQuest", L.NewFunction(questAction("startQuest")))
	L.SetGlobal("AdvanceQuest", L.NewFunction(questAction("advanceQuest")))
	L.SetGlobal("CompleteQuest", L.NewFunction(questAction("completeQuest")))

	// Emit("event") or Emit("event", { ... })
	L.SetGlobal("Emit", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("emit"))
		tbl.RawSetString("event", lua.LString(event))
		if data := L.OptTable(2, nil); data != nil {
			tbl.RawSetString("data", data)
		}
		L.Push(tbl)
		return 1
	}))
}

func itemAction(kind string) lua.LGFunction {
	return func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(kind))
		tbl.RawSetString("itemId", lua.LString(item))
		if L.GetTop() >= 2 {
			tbl.RawSetString("count", L.CheckNumber(2))
		}
		L.Push(tbl)
		return 1
	}
}

func questAction(kind string) lua.LGFunction {
	return func(L *lua.LState) int {
		quest := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(kind))
		tbl.RawSetString("questId", lua.LString(quest))
		L.Push(tbl)
		return 1
	}
}

func registerObjectiveHelpers(L *lua.LState) {
	// Interact("entity") or Interact("entity", { Flag(...) })
	L.SetGlobal("Interact", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("interact"))
		tbl.RawSetString("entityId", lua.LString(L.CheckString(1)))
		if req := L.OptTable(2, nil); req != nil {
			tbl.RawSetString("requiredFlags", req)
		}
		L.Push(tbl)
		return 1
	}))

	// Pickup("item")
	L.SetGlobal("Pickup", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("pickup"))
		tbl.RawSetString("itemId", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// Defeat("entity")
	L.SetGlobal("Defeat", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("defeat"))
		tbl.RawSetString("entityId", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// EnterBoard("board")
	L.SetGlobal("EnterBoard", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("enterBoard"))
		tbl.RawSetString("boardId", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// FlagObjective("flag") or FlagObjective("flag", value)
	L.SetGlobal("FlagObjective", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag"))
		tbl.RawSetString("flag", lua.LString(L.CheckString(1)))
		if L.GetTop() >= 2 {
			tbl.RawSetString("value", L.Get(2))
		}
		L.Push(tbl)
		return 1
	}))
}
