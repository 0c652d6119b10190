package grid

import "github.com/nathoo/tilequest/types"

// CloneDef deep-copies a board definition so that mutating the copy's
// tiles or entity properties never reaches the source.
func CloneDef(def types.BoardDef) types.BoardDef {
	out := types.BoardDef{RequiredCrystals: def.RequiredCrystals}
	if def.Tiles != nil {
		out.Tiles = make([][]string, len(def.Tiles))
		for y, row := range def.Tiles {
			out.Tiles[y] = append([]string(nil), row...)
		}
	}
	if def.Entities != nil {
		out.Entities = make([]types.EntityDef, len(def.Entities))
		for i, e := range def.Entities {
			out.Entities[i] = CloneEntity(e)
		}
	}
	if def.Triggers != nil {
		out.Triggers = append([]types.TriggerDef(nil), def.Triggers...)
	}
	return out
}

// CloneEntity deep-copies one entity definition.
func CloneEntity(e types.EntityDef) types.EntityDef {
	p := e.Properties
	p.Dialogue = append([]string(nil), p.Dialogue...)
	if p.Conditions != nil {
		c := *p.Conditions
		c.Visible = append([]types.FlagCondition(nil), c.Visible...)
		p.Conditions = &c
	}
	if p.ConditionalDialogue != nil {
		cd := make([]types.ConditionalDialogue, len(p.ConditionalDialogue))
		for i, entry := range p.ConditionalDialogue {
			cd[i] = types.ConditionalDialogue{
				Conditions: append([]types.FlagCondition(nil), entry.Conditions...),
				Dialogue:   append([]string(nil), entry.Dialogue...),
			}
		}
		p.ConditionalDialogue = cd
	}
	if p.ConditionalText != nil {
		p.ConditionalText = append([]types.ConditionalText(nil), p.ConditionalText...)
	}
	e.Properties = p
	return e
}
