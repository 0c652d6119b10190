package grid

import (
	"errors"
	"testing"

	"github.com/nathoo/tilequest/types"
)

func testDef() types.BoardDef {
	return types.BoardDef{
		Tiles: [][]string{
			{"w", "w", "w", "w", "w"},
			{"w", "p", "c", "x", "w"},
			{"w", "m", "h", ".", "w"},
			{"w", "w", "w", "w", "w"},
		},
		RequiredCrystals: 1,
	}
}

func TestNewBoard_FindsStartAndReplacesMarker(t *testing.T) {
	b, err := NewBoard(testDef())
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	if b.Start != (types.Position{X: 1, Y: 1}) {
		t.Errorf("Start = %v, want (1,1)", b.Start)
	}
	if got := b.Get(1, 1); got != Floor {
		t.Errorf("start cell = %q, want floor", got)
	}
	if b.Width() != 5 || b.Height() != 4 {
		t.Errorf("dimensions = %dx%d, want 5x4", b.Width(), b.Height())
	}
	if b.RequiredCrystals != 1 {
		t.Errorf("RequiredCrystals = %d, want 1", b.RequiredCrystals)
	}
}

func TestNewBoard_FallsBackToFirstFloor(t *testing.T) {
	def := types.BoardDef{Tiles: [][]string{
		{"w", "w", "w"},
		{"w", "c", "."},
	}}
	b, err := NewBoard(def)
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	if b.Start != (types.Position{X: 2, Y: 1}) {
		t.Errorf("Start = %v, want (2,1)", b.Start)
	}
}

func TestNewBoard_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  types.BoardDef
		want error
	}{
		{"nil tiles", types.BoardDef{}, ErrInvalidBoard},
		{"empty first row", types.BoardDef{Tiles: [][]string{{}}}, ErrInvalidBoard},
		{"no start", types.BoardDef{Tiles: [][]string{{"w", "c"}, {"h", "w"}}}, ErrNoStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoard(tt.def)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGrid_OutOfBounds(t *testing.T) {
	b, _ := NewBoard(testDef())
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 4}} {
		if got := b.Get(p[0], p[1]); got != None {
			t.Errorf("Get(%d,%d) = %q, want None", p[0], p[1], got)
		}
		b.Set(p[0], p[1], Wall) // must not panic
	}
}

func TestBoard_ResetRestoresOriginal(t *testing.T) {
	b, _ := NewBoard(testDef())
	b.RemoveCrystal(types.Position{X: 2, Y: 1})
	b.Set(2, 2, Floor)
	b.Reset()
	if b.Get(2, 1) != Crystal {
		t.Errorf("crystal not restored, got %q", b.Get(2, 1))
	}
	if b.Get(2, 2) != Hole {
		t.Errorf("hole not restored, got %q", b.Get(2, 2))
	}
	if b.Original().Tiles[1][1] != "p" {
		t.Errorf("original lost player marker: %q", b.Original().Tiles[1][1])
	}
}

func TestBoard_OriginalIsACopy(t *testing.T) {
	def := testDef()
	b, _ := NewBoard(def)
	def.Tiles[1][2] = "."
	orig := b.Original()
	orig.Tiles[1][3] = "w"
	if b.Original().Tiles[1][2] != "c" || b.Original().Tiles[1][3] != "x" {
		t.Error("board definition shares memory with caller")
	}
}

func TestElements(t *testing.T) {
	b, _ := NewBoard(testDef())
	el := b.Elements()
	if el.Start != (types.Position{X: 1, Y: 1}) {
		t.Errorf("Start = %v", el.Start)
	}
	if len(el.Crystals) != 1 || el.Crystals[0] != (types.Position{X: 2, Y: 1}) {
		t.Errorf("Crystals = %v", el.Crystals)
	}
	if len(el.Blocks) != 1 || el.Blocks[0] != (types.Position{X: 1, Y: 2}) {
		t.Errorf("Blocks = %v", el.Blocks)
	}
	if len(el.Holes) != 1 || el.Holes[0] != (types.Position{X: 2, Y: 2}) {
		t.Errorf("Holes = %v", el.Holes)
	}
	if el.Exit == nil || *el.Exit != (types.Position{X: 3, Y: 1}) {
		t.Errorf("Exit = %v", el.Exit)
	}
}

func TestTile_Classification(t *testing.T) {
	walkable := []Tile{Floor, Crystal, Exit, Block, Door, HoleBridged, OneWayUp, OneWayDown, OneWayLeft, OneWayRight}
	for _, tile := range walkable {
		if !tile.IsWalkable() {
			t.Errorf("%q should be walkable", tile)
		}
	}
	for _, tile := range []Tile{Wall, Hole, None, PlayerStart} {
		if tile.IsWalkable() {
			t.Errorf("%q should not be walkable", tile)
		}
	}
	if d, ok := OneWayLeft.OneWayDirection(); !ok || d != Left {
		t.Errorf("ol direction = %v, %v", d, ok)
	}
}

func TestDirection_OppositeAndDelta(t *testing.T) {
	for _, d := range AllDirections() {
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		if dx != -ox || dy != -oy {
			t.Errorf("%v opposite delta mismatch", d)
		}
	}
}

func TestGrid_String(t *testing.T) {
	b, _ := NewBoard(testDef())
	want := "#####\n#.*X#\n#BO.#\n#####"
	if got := b.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}
