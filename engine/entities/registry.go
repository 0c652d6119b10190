package entities

import (
	"github.com/nathoo/tilequest/types"
)

// Registry holds the entities of one board with a position index.
type Registry struct {
	byID  map[string]*Entity
	order []string
	byPos map[types.Position]*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:  map[string]*Entity{},
		byPos: map[types.Position]*Entity{},
	}
}

// FromDefinitions builds a registry with one entity per definition.
func FromDefinitions(defs []types.EntityDef) *Registry {
	r := NewRegistry()
	for _, d := range defs {
		r.Add(New(d))
	}
	return r
}

// Add inserts e, replacing any entity with the same id.
func (r *Registry) Add(e *Entity) {
	if _, ok := r.byID[e.ID]; ok {
		r.Remove(e.ID)
	}
	r.byID[e.ID] = e
	r.order = append(r.order, e.ID)
	if e.Active {
		r.byPos[e.Pos] = e
	}
}

// Remove deletes the entity with id.
func (r *Registry) Remove(id string) {
	e, ok := r.byID[id]
	if !ok {
		return
	}
	if r.byPos[e.Pos] == e {
		delete(r.byPos, e.Pos)
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the entity with id, present or not.
func (r *Registry) Get(id string) (*Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// At returns the entity standing at p, or nil. Inactive and hidden
// entities are not returned.
func (r *Registry) At(p types.Position) *Entity {
	e := r.byPos[p]
	if e == nil || !e.Present() {
		return nil
	}
	return e
}

// Move relocates an active entity.
func (r *Registry) Move(id string, to types.Position) {
	e, ok := r.byID[id]
	if !ok || !e.Active {
		return
	}
	if r.byPos[e.Pos] == e {
		delete(r.byPos, e.Pos)
	}
	e.Pos = to
	r.byPos[to] = e
}

// Each calls fn for every entity, active or not, in insertion order.
func (r *Registry) Each(fn func(e *Entity)) {
	for _, id := range append([]string(nil), r.order...) {
		if e, ok := r.byID[id]; ok {
			fn(e)
		}
	}
}

// All returns the active entities in insertion order.
func (r *Registry) All() []*Entity {
	var out []*Entity
	for _, id := range r.order {
		if e := r.byID[id]; e.Active {
			out = append(out, e)
		}
	}
	return out
}

// OfKind returns the active entities of kind.
func (r *Registry) OfKind(kind string) []*Entity {
	var out []*Entity
	for _, e := range r.All() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// UpdateAll runs one turn for every present entity.
func (r *Registry) UpdateAll(terrain Terrain, player types.Position) {
	ctx := UpdateContext{Terrain: terrain, Registry: r, Player: player}
	r.Each(func(e *Entity) {
		if e.Present() {
			e.Update(ctx)
		}
	})
}

// Cleanup drops inactive entities.
func (r *Registry) Cleanup() {
	r.Each(func(e *Entity) {
		if !e.Active {
			r.Remove(e.ID)
		}
	})
}

// Len returns the number of entities held.
func (r *Registry) Len() int {
	return len(r.byID)
}
