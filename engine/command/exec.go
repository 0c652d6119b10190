package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/resolve"
	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/types"
)

// Usage lists the console verbs, one per line.
var Usage = []string{
	"up/down/left/right (u/d/l/r, n/s/e/w, hjkl)  Move",
	"look [name]           Describe the board or something on it",
	"map                   Show visited boards",
	"analyze               Can this board still be finished?",
	"report                Detailed board breakdown",
	"fixes                 Suggestions for an unfinishable board",
	"flags                 List world flags",
	"flag <name> [value]   Show or set a flag",
	"emit <event> [json]   Publish an event",
	"quests                Active and completed quests",
	"inventory (i)         What you carry",
	"use <item>            Use an item",
	"next / choose <n>     Advance or answer a dialogue",
	"reset                 Restart the board",
}

// Execute runs c against s and returns what it produced. Informational
// verbs only fill Output.
func Execute(s *engine.Session, c Command) types.Result {
	switch c.Verb {
	case "":
		return types.Result{}

	case Move:
		if c.Dir == NoDirection {
			return say("Move where? Try up, down, left or right.")
		}
		return s.Move(c.Dir)

	case Look:
		return look(s, c.Args)

	case Map:
		return say(world.Minimap(s.Graph, s.Player))

	case Analyze:
		res, err := s.Analyze()
		if err != nil {
			return say(err.Error())
		}
		if res.Playable {
			return say("Board is playable.")
		}
		return types.Result{Output: append([]string{"Board is NOT playable:"}, indent(res.Reasons)...)}

	case Report:
		r, err := s.Report()
		if err != nil {
			return say(err.Error())
		}
		return types.Result{Output: []string{
			fmt.Sprintf("Size: %dx%d, required crystals: %d", r.Dimensions.Width, r.Dimensions.Height, r.RequiredCrystals),
			fmt.Sprintf("Crystals: %d (%d reachable, %d unreachable, %d need pushing)",
				r.Elements.CrystalsCount, len(r.Paths.ReachableCrystals), len(r.Paths.UnreachableCrystals), len(r.Paths.PushOnlyCrystals)),
			fmt.Sprintf("Holes: %d (%d critical)", r.Elements.HolesCount, len(r.CriticalHoles)),
			fmt.Sprintf("Blocks: %d (%d reachable, %d can fill a hole)",
				r.Elements.BlocksCount, len(r.Blocks.ReachableBlocks), len(r.Blocks.PushableToHole)),
			fmt.Sprintf("Exit reachable: %v", r.Paths.ExitReachable),
		}}

	case Fixes:
		fixes, err := s.Fixes()
		if err != nil {
			return say(err.Error())
		}
		return types.Result{Output: fixes}

	case Flags:
		return flags(s)

	case Flag:
		if len(c.Args) == 0 {
			return say("Usage: flag <name> [value]")
		}
		if len(c.Args) == 1 {
			return say(fmt.Sprintf("%s = %s", c.Args[0], formatValue(s.World.Get(c.Args[0], nil))))
		}
		return s.SetFlag(c.Args[0], Value(strings.Join(c.Args[1:], " ")))

	case Emit:
		if len(c.Args) == 0 {
			return say("Usage: emit <event> [json]")
		}
		data, err := c.Data()
		if err != nil {
			return say(err.Error())
		}
		return s.Emit(c.Args[0], data)

	case Quests:
		return questLog(s)

	case Inventory:
		stacks := s.Inventory.All()
		if len(stacks) == 0 {
			return say("You carry nothing.")
		}
		out := []string{"You carry:"}
		for _, st := range stacks {
			out = append(out, fmt.Sprintf("  %s x%d", st.ItemID, st.Count))
		}
		return types.Result{Output: out}

	case Use:
		if len(c.Args) == 0 {
			return say("Use what?")
		}
		return s.UseItem(c.Args[0])

	case Next:
		if !s.Dialogue.Active() {
			return say("Nobody is talking.")
		}
		return s.Advance()

	case Choose:
		if len(c.Args) == 0 {
			return say("Choose which option?")
		}
		n, err := strconv.Atoi(c.Args[0])
		if err != nil || n < 1 {
			return say(fmt.Sprintf("Not a choice: %s", c.Args[0]))
		}
		return s.Choose(n - 1)

	case Reset:
		res := s.Reset()
		res.Output = append(res.Output, "The board has been reset.")
		return res

	case Help:
		return types.Result{Output: append([]string(nil), Usage...)}
	}
	return say(fmt.Sprintf("Unknown command: %s. Type help for commands.", c.Verb))
}

func say(line string) types.Result {
	return types.Result{Output: []string{line}}
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}

func look(s *engine.Session, args []string) types.Result {
	if len(args) == 0 {
		st := s.Status()
		out := []string{fmt.Sprintf("%s. Crystals: %d/%d.", st.Board, st.Crystals, st.Required)}
		if s.Entities() != nil {
			for _, e := range s.Entities().All() {
				if e.Present() {
					out = append(out, "  "+resolve.Describe(e))
				}
			}
		}
		return types.Result{Output: out}
	}
	if s.Entities() == nil {
		return say("There is nothing here.")
	}
	e, err := resolve.Resolve(s.Entities(), strings.Join(args, " "))
	if err != nil {
		return say(capitalize(err.Error()) + ".")
	}
	return say(resolve.Describe(e))
}

func flags(s *engine.Session) types.Result {
	snap := s.World.Snapshot()
	if len(snap) == 0 {
		return say("No flags set.")
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s = %s", k, formatValue(snap[k]))
	}
	return types.Result{Output: out}
}

func questLog(s *engine.Session) types.Result {
	active := s.Quests.ActiveQuests()
	done := s.Quests.CompletedQuests()
	if len(active) == 0 && len(done) == 0 {
		return say("No quests.")
	}
	var out []string
	for _, q := range active {
		out = append(out, fmt.Sprintf("[ ] %s: %s", q.Name, q.StageDescription))
	}
	for _, q := range done {
		out = append(out, fmt.Sprintf("[x] %s", q.Name))
	}
	return types.Result{Output: out}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(unset)"
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprint(val)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
