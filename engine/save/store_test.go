package save

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_WriteRead(t *testing.T) {
	s := Store{Dir: filepath.Join(t.TempDir(), "nested", "saves")}

	name, err := s.Write("", []byte(`{"board":"hall"}`))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if name != DefaultSlot {
		t.Errorf("slot = %q, want %q", name, DefaultSlot)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "quicksave.json")); err != nil {
		t.Errorf("expected quicksave.json: %v", err)
	}

	raw, name, err := s.Read("")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if name != DefaultSlot || string(raw) != `{"board":"hall"}` {
		t.Errorf("Read = %q from %q", raw, name)
	}
}

func TestStore_ReadMissing(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	_, name, err := s.Read("nothing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
	if name != "nothing" {
		t.Errorf("slot = %q, want nothing", name)
	}
}
