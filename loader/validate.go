package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/engine/effects"
	"github.com/nathoo/tilequest/engine/entities"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/quests"
	"github.com/nathoo/tilequest/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var knownEntityKinds = map[string]bool{
	entities.KindNPC:         true,
	entities.KindEnemy:       true,
	entities.KindItem:        true,
	entities.KindInteractive: true,
}

// boardReader is the subset of world.BoardSource validation needs.
type boardReader interface {
	ReadBoard(file string) (types.BoardDef, error)
}

// validate checks def and every board it names for referential integrity
// and playability. It returns the warnings in every case and a
// *ValidationError when anything is fatal.
func validate(def types.WorldDef, src boardReader) ([]string, error) {
	ve := &ValidationError{}

	if def.StartBoard == "" {
		ve.errorf("startBoard is required")
	} else if _, ok := def.Boards[def.StartBoard]; !ok {
		ve.errorf("start board %q not found in boards", def.StartBoard)
	}

	ids := make([]string, 0, len(def.Boards))
	for id := range def.Boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	boards := map[string]*grid.Board{}
	for _, id := range ids {
		ref := def.Boards[id]
		if ref.File == "" {
			ve.errorf("board %q has no file", id)
			continue
		}
		bd, err := src.ReadBoard(ref.File)
		if err != nil {
			ve.errorf("board %q: %v", id, err)
			continue
		}
		b, err := grid.NewBoard(bd)
		if err != nil {
			ve.errorf("board %q: %v", id, err)
			continue
		}
		boards[id] = b
		validateBoard(id, bd, b, ve)
	}

	for i, tr := range def.Transitions {
		if _, ok := def.Boards[tr.From.Board]; !ok {
			ve.errorf("transition %d references unknown board %q", i, tr.From.Board)
		}
		if _, ok := def.Boards[tr.To.Board]; !ok {
			ve.errorf("transition %d references unknown board %q", i, tr.To.Board)
		}
		b, ok := boards[tr.From.Board]
		if !ok {
			continue
		}
		t := b.At(types.Position{X: tr.From.X, Y: tr.From.Y})
		if t != grid.Door && t != grid.Exit {
			ve.warnf("transition %d from %s (%d, %d) is not on a door or exit",
				i, tr.From.Board, tr.From.X, tr.From.Y)
		}
	}

	questIDs := map[string]bool{}
	for _, q := range def.Quests {
		if questIDs[q.ID] {
			ve.errorf("duplicate quest ID %q", q.ID)
		}
		questIDs[q.ID] = true
	}
	for _, q := range def.Quests {
		for si, st := range q.Stages {
			for _, o := range st.Objectives {
				if _, ok := quests.ObjectiveEvents[o.Type]; !ok {
					ve.errorf("quest %q stage %d: unknown objective type %q", q.ID, si, o.Type)
				}
			}
			validateActions(fmt.Sprintf("quest %q stage %d", q.ID, si), st.OnComplete, questIDs, ve)
		}
	}

	validateTriggers("world", def.Triggers, questIDs, ve)
	for _, id := range ids {
		if b, ok := boards[id]; ok {
			validateTriggers("board "+id, b.Original().Triggers, questIDs, ve)
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateBoard(id string, bd types.BoardDef, b *grid.Board, ve *ValidationError) {
	if res := analyzer.Analyze(b); !res.Playable {
		ve.warnf("board %q is not playable: %s", id, strings.Join(res.Reasons, "; "))
	}
	seen := map[string]bool{}
	for _, e := range bd.Entities {
		if !knownEntityKinds[e.Type] {
			ve.warnf("board %q entity %q has unknown type %q", id, e.ID, e.Type)
		}
		if seen[e.ID] {
			ve.warnf("board %q has duplicate entity ID %q", id, e.ID)
		}
		seen[e.ID] = true
		if !b.InBounds(e.X, e.Y) {
			ve.warnf("board %q entity %q is out of bounds", id, e.ID)
		}
	}
}

func validateTriggers(scope string, defs []types.TriggerDef, questIDs map[string]bool, ve *ValidationError) {
	seen := map[string]bool{}
	for _, t := range defs {
		if t.Event == "" {
			ve.errorf("%s trigger %q has no event", scope, t.ID)
		}
		if t.ID != "" && seen[t.ID] {
			ve.warnf("%s has duplicate trigger ID %q", scope, t.ID)
		}
		seen[t.ID] = true
		validateActions(fmt.Sprintf("%s trigger %q", scope, t.ID), t.Actions, questIDs, ve)
	}
}

func validateActions(where string, actions []types.Action, questIDs map[string]bool, ve *ValidationError) {
	for _, a := range actions {
		if !effects.IsKnown(a.Type) {
			ve.errorf("%s: unknown action type %q", where, a.Type)
			continue
		}
		switch a.Type {
		case "startQuest", "advanceQuest", "completeQuest":
			if !questIDs[a.QuestID] {
				ve.errorf("%s: action %s references undefined quest %q", where, a.Type, a.QuestID)
			}
		}
	}
}

// AsValidationError unwraps err to a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
