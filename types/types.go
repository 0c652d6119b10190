// Package types defines the shared data structures for the tilequest engine.
// This package contains only type definitions and their JSON hooks.
package types

import "encoding/json"

// Position is a grid coordinate. X grows right, Y grows down.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoardDef is the on-disk form of a single board.
type BoardDef struct {
	Tiles            [][]string   `json:"tiles"`
	RequiredCrystals int          `json:"required_crystals"`
	Entities         []EntityDef  `json:"entities,omitempty"`
	Triggers         []TriggerDef `json:"triggers,omitempty"`
}

// FlagCondition checks one world-state flag. Without a value it is a
// truthiness check; otherwise the flag must be set and equal Value.
// HasValue marks an explicit null decoded from JSON.
type FlagCondition struct {
	Flag     string `json:"flag"`
	Value    any    `json:"value,omitempty"`
	HasValue bool   `json:"-"`
}

// UnmarshalJSON records whether "value" was present at all.
func (c *FlagCondition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Flag  string          `json:"flag"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = FlagCondition{Flag: raw.Flag, HasValue: raw.Value != nil}
	if raw.Value == nil {
		return nil
	}
	return json.Unmarshal(raw.Value, &c.Value)
}

// MarshalJSON keeps an explicit null value.
func (c FlagCondition) MarshalJSON() ([]byte, error) {
	if c.HasValue && c.Value == nil {
		return json.Marshal(struct {
			Flag  string `json:"flag"`
			Value any    `json:"value"`
		}{c.Flag, nil})
	}
	type plain FlagCondition
	return json.Marshal(plain(c))
}

// EntityDef is the declaration of an entity placed on a board.
type EntityDef struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"` // "npc", "enemy", "item", "interactive"
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Glyph      string      `json:"glyph,omitempty"`
	Color      string      `json:"color,omitempty"`
	Properties EntityProps `json:"properties"`
}

// EntityProps holds the type-specific entity properties.
type EntityProps struct {
	Name                string                `json:"name,omitempty"`
	Dialogue            []string              `json:"dialogue,omitempty"`
	Health              int                   `json:"health,omitempty"`
	Damage              int                   `json:"damage,omitempty"`
	ItemID              string                `json:"itemId,omitempty"`
	Description         string                `json:"description,omitempty"`
	ObjectType          string                `json:"objectType,omitempty"` // "sign", "chest", "lever"
	Text                string                `json:"text,omitempty"`
	OpenedGlyph         string                `json:"openedGlyph,omitempty"`
	Conditions          *EntityConditions     `json:"conditions,omitempty"`
	ConditionalDialogue []ConditionalDialogue `json:"conditionalDialogue,omitempty"`
	ConditionalText     []ConditionalText     `json:"conditionalText,omitempty"`
}

// EntityConditions gates entity presentation on world state.
type EntityConditions struct {
	Visible []FlagCondition `json:"visible,omitempty"`
}

// ConditionalDialogue replaces an NPC's dialogue while its conditions hold.
type ConditionalDialogue struct {
	Conditions []FlagCondition `json:"conditions"`
	Dialogue   []string        `json:"dialogue"`
}

// ConditionalText replaces an interactive object's text while its conditions hold.
type ConditionalText struct {
	Conditions []FlagCondition `json:"conditions"`
	Text       string          `json:"text"`
}

// Action is one instruction from the shared action vocabulary.
type Action struct {
	Type    string         `json:"type"`
	Flag    string         `json:"flag,omitempty"`
	Value   any            `json:"value,omitempty"`
	Speaker string         `json:"speaker,omitempty"`
	Text    string         `json:"text,omitempty"`
	ItemID  string         `json:"itemId,omitempty"`
	Count   *int           `json:"count,omitempty"`
	QuestID string         `json:"questId,omitempty"`
	Event   string         `json:"event,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// TriggerConditions must all hold for a trigger to fire.
type TriggerConditions struct {
	EventMatch map[string]any  `json:"eventMatch,omitempty"`
	Flags      []FlagCondition `json:"flags,omitempty"`
}

// TriggerDef is a standing rule: event + conditions -> actions.
type TriggerDef struct {
	ID         string             `json:"id"`
	Event      string             `json:"event"`
	Conditions *TriggerConditions `json:"conditions,omitempty"`
	Actions    []Action           `json:"actions"`
	Once       bool               `json:"once,omitempty"`
}

// Objective is a single event-driven goal inside a quest stage.
type Objective struct {
	Type          string          `json:"type"` // "interact", "pickup", "defeat", "enterBoard", "flag"
	EntityID      string          `json:"entityId,omitempty"`
	ItemID        string          `json:"itemId,omitempty"`
	BoardID       string          `json:"boardId,omitempty"`
	Flag          string          `json:"flag,omitempty"`
	Value         any             `json:"value,omitempty"`
	RequiredFlags []FlagCondition `json:"requiredFlags,omitempty"`
}

// StageDef is one ordered phase of a quest.
type StageDef struct {
	Description string      `json:"description"`
	Objectives  []Objective `json:"objectives"`
	OnComplete  []Action    `json:"onComplete,omitempty"`
}

// QuestDef is the immutable definition of a quest.
type QuestDef struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Stages      []StageDef `json:"stages"`
	AutoStart   bool       `json:"autoStart,omitempty"`
}

// BoardRef points at a board file inside a world.
type BoardRef struct {
	File         string   `json:"file"`
	Name         string   `json:"name"`
	GridPosition Position `json:"gridPosition"`
}

// TransitionFrom is the source cell of a transition.
type TransitionFrom struct {
	Board string `json:"board"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Type  string `json:"type"` // "exit" or "door"
}

// TransitionTo is the arrival cell of a transition.
type TransitionTo struct {
	Board string `json:"board"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// TransitionDef links a cell on one board to a cell on another.
type TransitionDef struct {
	From TransitionFrom `json:"from"`
	To   TransitionTo   `json:"to"`
}

// WorldDef is the top-level world file.
type WorldDef struct {
	StartBoard  string              `json:"startBoard"`
	Boards      map[string]BoardRef `json:"boards"`
	Transitions []TransitionDef     `json:"transitions"`
	Quests      []QuestDef          `json:"quests,omitempty"`
	Triggers    []TriggerDef        `json:"triggers,omitempty"`
}

// Event is a named occurrence published on the event bus.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single session step.
type Result struct {
	Events []Event
	Output []string
}
