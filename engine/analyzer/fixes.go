package analyzer

import (
	"github.com/leonelquinteros/gotext"

	"github.com/nathoo/tilequest/engine/grid"
)

// SuggestFixes checks b with DefaultOptions and returns advice.
func SuggestFixes(b *grid.Board) []string {
	return New(DefaultOptions()).SuggestFixes(b)
}

// SuggestFixes returns human-readable advice for making b playable.
func (a *Analyzer) SuggestFixes(b *grid.Board) []string {
	if a.Analyze(b).Playable {
		return []string{gotext.Get("Board is already playable. No fixes needed.")}
	}

	r := a.Report(b)
	var out []string

	if len(r.Paths.UnreachableCrystals) > 0 {
		out = append(out, gotext.Get("Unreachable crystals detected. Consider:"))
		for _, c := range r.Paths.UnreachableCrystals {
			out = append(out, gotext.Get("- Create a path to the crystal at (%d, %d)", c.X, c.Y))
		}
		out = append(out, gotext.Get("- Or reduce the required crystal count"))
	}

	if r.Elements.Exit != nil && !r.Paths.ExitReachable {
		out = append(out, gotext.Get("Exit is unreachable. Consider creating a path to the exit."))
	}

	if len(r.CriticalHoles) > len(r.Blocks.PushableToHole) {
		out = append(out,
			gotext.Get("Not enough pushable blocks for critical holes. Consider:"),
			gotext.Get("- Add more movable blocks (need at least %d)", len(r.CriticalHoles)),
			gotext.Get("- Reduce the number of holes blocking critical paths"),
			gotext.Get("- Create alternative paths that don't require filling holes"),
		)
	}

	if len(r.Blocks.UnreachableBlocks) > 0 {
		out = append(out, gotext.Get("Some blocks are unreachable. Consider:"))
		for _, blk := range r.Blocks.UnreachableBlocks {
			out = append(out, gotext.Get("- Create a path to the block at (%d, %d)", blk.X, blk.Y))
		}
	}

	if r.Elements.BlocksCount > len(r.Blocks.PushableToHole) && r.Elements.HolesCount > 0 {
		out = append(out,
			gotext.Get("Some blocks can't be pushed to any hole. Consider:"),
			gotext.Get("- Rearrange blocks and holes to allow pushing"),
			gotext.Get("- Ensure there's space around blocks for the player to push them"),
		)
	}
	return out
}
