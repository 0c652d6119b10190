package analyzer

import (
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/reach"
	"github.com/nathoo/tilequest/types"
)

// Dimensions of the analysed board.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ElementSummary lists the board elements with counts.
type ElementSummary struct {
	PlayerStart   types.Position   `json:"playerStart"`
	Crystals      []types.Position `json:"crystals"`
	CrystalsCount int              `json:"crystalsCount"`
	Holes         []types.Position `json:"holes"`
	HolesCount    int              `json:"holesCount"`
	Blocks        []types.Position `json:"movableBlocks"`
	BlocksCount   int              `json:"movableBlocksCount"`
	Exit          *types.Position  `json:"exit"`
}

// PathAnalysis splits targets by how they can be reached.
type PathAnalysis struct {
	ReachableCrystals   []types.Position `json:"reachableCrystals"`
	UnreachableCrystals []types.Position `json:"unreachableCrystals"`
	// PushOnlyCrystals are unreachable on foot but reachable once blocks
	// are pushed.
	PushOnlyCrystals []types.Position `json:"pushOnlyCrystals"`
	ExitReachable    bool             `json:"exitReachable"`
}

// BlockHole pairs a block with the first hole it can be pushed into.
type BlockHole struct {
	Block types.Position `json:"block"`
	Hole  types.Position `json:"hole"`
}

// BlockAnalysis describes the movable blocks.
type BlockAnalysis struct {
	ReachableBlocks   []types.Position `json:"reachableBlocks"`
	UnreachableBlocks []types.Position `json:"unreachableBlocks"`
	PushableToHole    []BlockHole      `json:"pushableToHole"`
}

// Report is the detailed board breakdown shown by the editor.
type Report struct {
	Dimensions       Dimensions       `json:"boardDimensions"`
	Elements         ElementSummary   `json:"elements"`
	RequiredCrystals int              `json:"requiredCrystals"`
	Paths            PathAnalysis     `json:"pathAnalysis"`
	Blocks           BlockAnalysis    `json:"blockAnalysis"`
	CriticalHoles    []types.Position `json:"criticalHoles"`
}

// Report builds the detailed breakdown of b.
func (a *Analyzer) Report(b *grid.Board) Report {
	el := b.Elements()
	r := Report{
		Dimensions: Dimensions{Width: b.Width(), Height: b.Height()},
		Elements: ElementSummary{
			PlayerStart:   el.Start,
			Crystals:      orEmpty(el.Crystals),
			CrystalsCount: len(el.Crystals),
			Holes:         orEmpty(el.Holes),
			HolesCount:    len(el.Holes),
			Blocks:        orEmpty(el.Blocks),
			BlocksCount:   len(el.Blocks),
			Exit:          el.Exit,
		},
		RequiredCrystals: b.RequiredCrystals,
		Paths: PathAnalysis{
			ReachableCrystals:   []types.Position{},
			UnreachableCrystals: []types.Position{},
			PushOnlyCrystals:    []types.Position{},
		},
		Blocks: BlockAnalysis{
			ReachableBlocks:   []types.Position{},
			UnreachableBlocks: []types.Position{},
			PushableToHole:    []BlockHole{},
		},
	}

	for _, c := range el.Crystals {
		switch {
		case reach.PathExists(b, el.Start, c, a.plain()):
			r.Paths.ReachableCrystals = append(r.Paths.ReachableCrystals, c)
		case reach.PathExists(b, el.Start, c, a.pushing()):
			r.Paths.UnreachableCrystals = append(r.Paths.UnreachableCrystals, c)
			r.Paths.PushOnlyCrystals = append(r.Paths.PushOnlyCrystals, c)
		default:
			r.Paths.UnreachableCrystals = append(r.Paths.UnreachableCrystals, c)
		}
	}
	if el.Exit != nil {
		r.Paths.ExitReachable = reach.PathExists(b, el.Start, *el.Exit, a.plain())
	}

	for _, blk := range el.Blocks {
		reachable := reach.PathExists(b, el.Start, blk, a.plain())
		if reachable {
			r.Blocks.ReachableBlocks = append(r.Blocks.ReachableBlocks, blk)
		} else {
			r.Blocks.UnreachableBlocks = append(r.Blocks.UnreachableBlocks, blk)
			continue
		}
		for _, h := range el.Holes {
			if CanPushInto(b, blk, h) {
				r.Blocks.PushableToHole = append(r.Blocks.PushableToHole, BlockHole{Block: blk, Hole: h})
				break
			}
		}
	}

	r.CriticalHoles = a.criticalHoles(b, el)
	return r
}

func orEmpty(ps []types.Position) []types.Position {
	if ps == nil {
		return []types.Position{}
	}
	return ps
}
