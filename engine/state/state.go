// Package state holds the world flags: a key/value store that announces
// every change on the event bus.
package state

import (
	"sort"

	"github.com/nathoo/tilequest/engine/events"
	"github.com/nathoo/tilequest/types"
)

// World is the flag store. A nil bus is allowed; changes are then silent.
type World struct {
	bus   *events.Bus
	flags map[string]any
}

// New returns an empty store publishing on bus.
func New(bus *events.Bus) *World {
	return &World{bus: bus, flags: map[string]any{}}
}

// Set stores value under key and emits flag:changed. Writing the value
// already stored does nothing.
func (w *World) Set(key string, value any) {
	old, had := w.flags[key]
	if had && Equal(old, value) {
		return
	}
	w.flags[key] = value
	if w.bus != nil {
		w.bus.Emit(events.FlagChanged, map[string]any{
			"flag":     key,
			"value":    value,
			"oldValue": old,
		})
	}
}

// Get returns the value stored under key, or def when unset.
func (w *World) Get(key string, def any) any {
	if v, ok := w.flags[key]; ok {
		return v
	}
	return def
}

// Has reports whether key has ever been set.
func (w *World) Has(key string) bool {
	_, ok := w.flags[key]
	return ok
}

// Check reports whether key holds a truthy value.
func (w *World) Check(key string) bool {
	return Truthy(w.flags[key])
}

// CheckValue reports whether key is set and equal to value.
func (w *World) CheckValue(key string, value any) bool {
	v, ok := w.flags[key]
	return ok && Equal(v, value)
}

// CheckAll reports whether every condition holds. An empty list holds.
// A condition without a value is a truthiness check; an explicit null
// only matches a flag set to nil.
func (w *World) CheckAll(conds []types.FlagCondition) bool {
	for _, c := range conds {
		if c.Value == nil && !c.HasValue {
			if !w.Check(c.Flag) {
				return false
			}
			continue
		}
		if !w.CheckValue(c.Flag, c.Value) {
			return false
		}
	}
	return true
}

// Keys returns the flag names in sorted order.
func (w *World) Keys() []string {
	keys := make([]string, 0, len(w.flags))
	for k := range w.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every flag.
func (w *World) Snapshot() map[string]any {
	out := make(map[string]any, len(w.flags))
	for k, v := range w.flags {
		out[k] = v
	}
	return out
}

// Serialize is Snapshot under the name the save layer uses.
func (w *World) Serialize() map[string]any {
	return w.Snapshot()
}

// Deserialize replaces every flag with data without emitting events.
func (w *World) Deserialize(data map[string]any) {
	w.flags = make(map[string]any, len(data))
	for k, v := range data {
		w.flags[k] = v
	}
}
