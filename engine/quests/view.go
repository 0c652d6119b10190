package quests

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// ActiveQuest describes a quest in progress.
type ActiveQuest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	StageDescription string `json:"stageDescription"`
}

// CompletedQuest names a finished quest.
type CompletedQuest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActiveQuests lists the quests in progress in start order.
func (s *System) ActiveQuests() []ActiveQuest {
	out := []ActiveQuest{}
	for _, id := range s.order {
		def, ok := s.defs[id]
		if !ok {
			continue
		}
		q := ActiveQuest{ID: id, Name: def.Name, Description: def.Description}
		if p := s.active[id]; p.stage < len(def.Stages) {
			q.StageDescription = def.Stages[p.stage].Description
		}
		out = append(out, q)
	}
	return out
}

// CompletedQuests lists finished quests in completion order.
func (s *System) CompletedQuests() []CompletedQuest {
	out := []CompletedQuest{}
	for _, id := range s.completed {
		name := id
		if def, ok := s.defs[id]; ok {
			name = def.Name
		}
		out = append(out, CompletedQuest{ID: id, Name: name})
	}
	return out
}

// Progress is the saved state of one active quest.
type Progress struct {
	StageIndex          int     `json:"stageIndex"`
	CompletedObjectives [][]int `json:"completedObjectives"`
}

// Snapshot is the saved state of the whole system.
type Snapshot struct {
	Active    map[string]Progress `json:"active"`
	Completed []string            `json:"completed"`
	// Order keeps start order across a save; absent in older saves.
	Order []string `json:"order,omitempty"`
}

// Snapshot captures the quest state.
func (s *System) Snapshot() Snapshot {
	snap := Snapshot{
		Active:    map[string]Progress{},
		Completed: append([]string{}, s.completed...),
		Order:     append([]string{}, s.order...),
	}
	for id, p := range s.active {
		pr := Progress{StageIndex: p.stage, CompletedObjectives: make([][]int, len(p.done))}
		for i, set := range p.done {
			idx := []int{}
			set.Each(func(n int) { idx = append(idx, n) })
			sort.Ints(idx)
			pr.CompletedObjectives[i] = idx
		}
		snap.Active[id] = pr
	}
	return snap
}

// Restore replaces the quest state with snap and subscribes to events the
// same way LoadQuests does. Definitions must already be loaded; nothing is
// emitted.
func (s *System) Restore(snap Snapshot) {
	s.active = map[string]*progress{}
	s.order = nil
	s.completed = append([]string(nil), snap.Completed...)
	s.isDone = mapset.New[string]()
	for _, id := range snap.Completed {
		s.isDone.Put(id)
	}

	ids := make([]string, 0, len(snap.Active))
	seen := mapset.New[string]()
	for _, id := range snap.Order {
		if _, ok := snap.Active[id]; ok && !seen.Has(id) {
			ids = append(ids, id)
			seen.Put(id)
		}
	}
	var rest []string
	for id := range snap.Active {
		if !seen.Has(id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	ids = append(ids, rest...)

	for _, id := range ids {
		pr := snap.Active[id]
		stages := len(s.defs[id].Stages)
		if len(pr.CompletedObjectives) > stages {
			stages = len(pr.CompletedObjectives)
		}
		p := newProgress(stages)
		p.stage = pr.StageIndex
		for i, idx := range pr.CompletedObjectives {
			for _, n := range idx {
				p.done[i].Put(n)
			}
		}
		s.active[id] = p
		s.order = append(s.order, id)
	}
	s.subscribe()
}
