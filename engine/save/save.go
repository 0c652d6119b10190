// Package save implements JSON serialization and deserialization of session state.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/tilequest/engine/quests"
	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/types"
)

// Version of the save format written by Marshal.
const Version = "1"

// Data is the JSON-serializable save format.
type Data struct {
	Version   string               `json:"version"`
	Board     string               `json:"board"`
	Position  types.Position       `json:"position"`
	Crystals  int                  `json:"crystals"`
	Flags     map[string]any       `json:"flags"`
	Quests    quests.Snapshot      `json:"quests"`
	FiredOnce []string             `json:"fired_once"`
	Inventory map[string]int       `json:"inventory"`
	Player    world.PlayerSnapshot `json:"player"`
	// Tiles is the live board; absent means the board as loaded.
	Tiles [][]string `json:"tiles,omitempty"`
	// Consumed lists entities of the board already picked up or defeated.
	Consumed []string `json:"consumed,omitempty"`
}

// Marshal serializes d to indented JSON, stamping the current version.
func Marshal(d Data) ([]byte, error) {
	d.Version = Version
	return json.MarshalIndent(d, "", "  ")
}

// Load deserializes JSON bytes into Data.
func Load(raw []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if d.Board == "" {
		return nil, fmt.Errorf("decoding save: missing board")
	}
	// Ensure maps are never nil after load.
	if d.Flags == nil {
		d.Flags = map[string]any{}
	}
	if d.Inventory == nil {
		d.Inventory = map[string]int{}
	}
	if d.FiredOnce == nil {
		d.FiredOnce = []string{}
	}
	if d.Quests.Active == nil {
		d.Quests.Active = map[string]quests.Progress{}
	}
	if d.Quests.Completed == nil {
		d.Quests.Completed = []string{}
	}
	if d.Player.CurrentBoardID == "" {
		d.Player.CurrentBoardID = d.Board
	}
	if d.Player.VisitedBoards == nil {
		d.Player.VisitedBoards = []string{d.Board}
	}
	return &d, nil
}
