package save

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSlot is the slot used when no name is given.
const DefaultSlot = "quicksave"

// Store keeps named save slots as JSON files in Dir.
type Store struct {
	Dir string
}

func slot(name string) string {
	if name == "" {
		return DefaultSlot
	}
	return name
}

// Path returns the file behind slot name.
func (s Store) Path(name string) string {
	return filepath.Join(s.Dir, slot(name)+".json")
}

// Write stores raw in slot name, creating Dir when needed, and returns the
// slot written.
func (s Store) Write(name string, raw []byte) (string, error) {
	name = slot(name)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return name, fmt.Errorf("creating save directory: %w", err)
	}
	if err := os.WriteFile(s.Path(name), raw, 0o644); err != nil {
		return name, err
	}
	return name, nil
}

// Read returns the contents of slot name and the slot read.
func (s Store) Read(name string) ([]byte, string, error) {
	name = slot(name)
	raw, err := os.ReadFile(s.Path(name))
	return raw, name, err
}
