// Package command parses console lines into Commands and runs them
// against a Session. One verb, then whitespace-separated arguments.
package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nathoo/tilequest/engine/grid"
)

// Verbs.
const (
	Move      = "move"
	Look      = "look"
	Map       = "map"
	Analyze   = "analyze"
	Report    = "report"
	Fixes     = "fixes"
	Flags     = "flags"
	Flag      = "flag"
	Emit      = "emit"
	Quests    = "quests"
	Inventory = "inventory"
	Use       = "use"
	Next      = "next"
	Choose    = "choose"
	Reset     = "reset"
	Help      = "help"
)

// NoDirection is the Dir of a move command without a valid direction.
const NoDirection grid.Direction = -1

var directionAliases = map[string]grid.Direction{
	"up": grid.Up, "u": grid.Up, "north": grid.Up, "n": grid.Up, "k": grid.Up,
	"down": grid.Down, "d": grid.Down, "south": grid.Down, "s": grid.Down, "j": grid.Down,
	"left": grid.Left, "l": grid.Left, "west": grid.Left, "w": grid.Left, "h": grid.Left,
	"right": grid.Right, "r": grid.Right, "east": grid.Right, "e": grid.Right,
}

var verbAliases = map[string]string{
	// Movement
	"go":   Move,
	"walk": Move,
	"step": Move,

	// Analysis
	"analyse": Analyze,
	"check":   Analyze,
	"fix":     Fixes,
	"detail":  Report,

	// Dialogue
	"continue": Next,
	"ok":       Next,
	"pick":     Choose,
	"select":   Choose,

	// Miscellaneous
	"inv":     Inventory,
	"i":       Inventory,
	"x":       Look,
	"restart": Reset,
	"world":   Map,
	"minimap": Map,
	"?":       Help,
}

var known = map[string]bool{
	Move: true, Look: true, Map: true, Analyze: true, Report: true, Fixes: true,
	Flags: true, Flag: true, Emit: true, Quests: true, Inventory: true, Use: true,
	Next: true, Choose: true, Reset: true, Help: true,
}

// Command is one parsed console line.
type Command struct {
	Verb string
	Args []string
	// Dir is set when Verb is Move.
	Dir grid.Direction
	// Rest is the raw text after the first argument, used by emit.
	Rest string
}

// Parse converts a console line into a Command. An empty line gives an
// empty Verb; an unrecognised verb is returned unchanged so callers can
// report it.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}
	}

	words := strings.Fields(input)
	verb := strings.ToLower(words[0])
	args := words[1:]

	// Bare direction shortcut: "u", "left", ...
	if d, ok := directionAliases[verb]; ok && len(args) == 0 {
		return Command{Verb: Move, Dir: d}
	}

	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	cmd := Command{Verb: verb, Args: args}
	switch verb {
	case Move:
		if len(args) == 0 {
			return Command{Verb: Move, Args: args, Dir: NoDirection}
		}
		d, ok := directionAliases[strings.ToLower(args[0])]
		if !ok {
			return Command{Verb: Move, Args: args, Dir: NoDirection}
		}
		cmd.Dir = d
	case Emit:
		cmd.Rest = restAfter(input, 2)
	}
	return cmd
}

// Known reports whether c's verb is one of the console verbs.
func (c Command) Known() bool {
	return known[c.Verb]
}

// restAfter returns input with its first n fields removed.
func restAfter(input string, n int) string {
	s := input
	for i := 0; i < n; i++ {
		s = strings.TrimLeft(s, " \t")
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			return ""
		}
		s = s[idx:]
	}
	return strings.TrimSpace(s)
}

// Value converts a console argument to a flag value: JSON literals
// (true, false, null, numbers, quoted strings, objects) decode as JSON,
// anything else is the plain string.
func Value(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// Data decodes the JSON payload of an emit command. An empty payload is
// an empty map.
func (c Command) Data() (map[string]any, error) {
	if c.Rest == "" {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(c.Rest), &data); err != nil {
		return nil, fmt.Errorf("event data must be a JSON object: %w", err)
	}
	return data, nil
}
