package grid

import (
	"errors"
	"strings"
	"testing"
)

func TestHashMatchesReferenceVectors(t *testing.T) {
	if got := Mix64(0); got != 0xe220a8397b1dcdaf {
		t.Fatalf("Mix64(0) = %#x", got)
	}

	tests := []struct {
		seed int64
		x, y int
		want uint64
	}{
		{seed: 0, x: 0, y: 0, want: 0x238275bc38fcbe91},
		{seed: 1, x: 0, y: 0, want: 0xb18a02f46d8d86c3},
		{seed: 42, x: 3, y: 7, want: 0xab2f97746e2ea953},
		{seed: 1337, x: -1, y: 5, want: 0x88d6eb5fea9a6dd8},
		{seed: 7, x: 100, y: 200, want: 0xd16f04554b701776},
	}
	for _, tt := range tests {
		if got := Hash(tt.seed, tt.x, tt.y); got != tt.want {
			t.Fatalf("Hash(%d,%d,%d) = %#x, want %#x", tt.seed, tt.x, tt.y, got, tt.want)
		}
	}

	if got := Pick(42, 3, 7, 3); got != 2 {
		t.Fatalf("Pick(42,3,7,3) = %d, want 2", got)
	}
	if got := Pick(1337, -1, 5, 2); got != 0 {
		t.Fatalf("Pick(1337,-1,5,2) = %d, want 0", got)
	}
}

func TestNeighborFollowsCanonicalOffsets(t *testing.T) {
	shape, err := NewShape(3, 3)
	if err != nil {
		t.Fatalf("NewShape: %v", err)
	}
	center := shape.Index(1, 1)
	want := map[Dir8]int{
		DirE:  shape.Index(2, 1),
		DirSE: shape.Index(2, 2),
		DirS:  shape.Index(1, 2),
		DirSW: shape.Index(0, 2),
		DirW:  shape.Index(0, 1),
		DirNW: shape.Index(0, 0),
		DirN:  shape.Index(1, 0),
		DirNE: shape.Index(2, 0),
	}
	for _, d := range Dirs8 {
		got, ok := shape.Neighbor(center, d)
		if !ok || got != want[d] {
			t.Fatalf("Neighbor(center, %s) = %d,%v want %d", d, got, ok, want[d])
		}
		if d.Opposite().Opposite() != d {
			t.Fatalf("opposite of opposite %s mismatch", d)
		}
	}

	if _, ok := shape.Neighbor(0, DirN); ok {
		t.Fatalf("expected north of origin to be out of bounds")
	}
	if _, ok := shape.Neighbor(0, DirNone); ok {
		t.Fatalf("expected DirNone to have no neighbour")
	}
	if DirNone.String() != "none" || DirSW.String() != "SW" {
		t.Fatalf("unexpected direction labels %q %q", DirNone, DirSW)
	}
}

func TestNewShapeRejectsEmptyGrid(t *testing.T) {
	if _, err := NewShape(0, 4); err == nil {
		t.Fatalf("expected error for zero width")
	}
	shape, err := NewShape(4, 2)
	if err != nil {
		t.Fatalf("NewShape: %v", err)
	}
	if shape.Size != 8 {
		t.Fatalf("size = %d, want 8", shape.Size)
	}
	if x, y := shape.Coord(6); x != 2 || y != 1 {
		t.Fatalf("Coord(6) = (%d,%d)", x, y)
	}
}

func TestComponentsRowMajorOrder(t *testing.T) {
	shape, _ := NewShape(4, 3)
	mask := []bool{
		false, true, false, true,
		false, true, false, false,
		true, false, false, true,
	}

	comps4, labels4 := Components(shape, mask, Dirs4[:])
	if len(comps4) != 4 {
		t.Fatalf("expected 4 four-connected components, got %d", len(comps4))
	}
	if comps4[0].Tiles[0] != 1 || len(comps4[0].Tiles) != 2 {
		t.Fatalf("unexpected first component %+v", comps4[0])
	}
	if labels4[0] != -1 || labels4[3] != 1 {
		t.Fatalf("unexpected labels %v", labels4)
	}

	comps8, _ := Components(shape, mask, Dirs8[:])
	if len(comps8) != 3 {
		t.Fatalf("expected 3 eight-connected components, got %d", len(comps8))
	}
	if len(comps8[0].Tiles) != 3 {
		t.Fatalf("diagonal tile should join the first component: %+v", comps8[0])
	}
}

func TestInvariantErrorWrapsSentinel(t *testing.T) {
	err := CheckLength("hydrology", "slope", 3, 4)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if !strings.Contains(err.Error(), "slope has 3 entries, expected 4") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if CheckLength("hydrology", "slope", 4, 4) != nil {
		t.Fatalf("matching lengths should pass")
	}

	at := InvariantAt("flow", "direction-in-bounds", 7, "dir=%s", DirN)
	if !strings.Contains(at.Error(), "at index 7") {
		t.Fatalf("expected index in message, got %q", at.Error())
	}
}
