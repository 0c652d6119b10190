// Package resolve maps names typed at the console to entities on the board.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/tilequest/engine/entities"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Resolve finds the present entity of reg called name. An exact id wins
// outright; otherwise names match case-insensitively, whole or by word.
func Resolve(reg *entities.Registry, name string) (*entities.Entity, error) {
	name = strings.TrimSpace(name)
	if e, ok := reg.Get(name); ok && e.Present() {
		return e, nil
	}

	nameLower := strings.ToLower(name)
	var matches []*entities.Entity
	for _, e := range reg.All() {
		if e.Present() && matchesName(e, nameLower) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, &AmbiguityError{Name: name, Candidates: ids}
	}
}

// matchesName checks the display name and the id.
// Supports exact match, word-based partial match, and underscore ids.
func matchesName(e *entities.Entity, nameLower string) bool {
	if e.Props.Name != "" {
		entityNameLower := strings.ToLower(e.Props.Name)
		if entityNameLower == nameLower {
			return true
		}
		// "elder" matches "Village Elder".
		for _, word := range strings.Fields(entityNameLower) {
			if word == nameLower {
				return true
			}
		}
	}
	idLower := strings.ToLower(e.ID)
	if idLower == nameLower {
		return true
	}
	// "rusty key" matches entity ID "rusty_key".
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}

// Describe is the one-line look text for e.
func Describe(e *entities.Entity) string {
	name := e.Props.Name
	if name == "" {
		name = e.ID
	}
	desc := e.Props.Description
	if desc == "" {
		desc = e.Props.Text
	}
	line := fmt.Sprintf("%s (%s) at (%d, %d)", name, e.Kind, e.Pos.X, e.Pos.Y)
	if desc != "" {
		line += ": " + desc
	}
	return line
}
