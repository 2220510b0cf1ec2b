package grid

// Dir8 is a compass direction in canonical order. The y axis grows
// southward, so S is (0, +1).
type Dir8 uint8

const (
	DirE Dir8 = iota
	DirSE
	DirS
	DirSW
	DirW
	DirNW
	DirN
	DirNE

	// DirNone marks a tile with no outgoing direction (a local sink).
	DirNone Dir8 = 255
)

// Dirs8 lists every compass direction in canonical order.
var Dirs8 = [8]Dir8{DirE, DirSE, DirS, DirSW, DirW, DirNW, DirN, DirNE}

// Dirs4 lists the cardinal directions in canonical order.
var Dirs4 = [4]Dir8{DirE, DirS, DirW, DirN}

var dirOffsets = [8]struct{ dx, dy int }{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var dirNames = [8]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}

func (d Dir8) Valid() bool { return d < 8 }

// Diagonal reports whether the direction moves along both axes.
func (d Dir8) Diagonal() bool { return d.Valid() && d%2 == 1 }

func (d Dir8) Opposite() Dir8 {
	if !d.Valid() {
		return DirNone
	}
	return (d + 4) % 8
}

// Offset returns the (dx, dy) step for the direction.
func (d Dir8) Offset() (int, int) {
	if !d.Valid() {
		return 0, 0
	}
	off := dirOffsets[d]
	return off.dx, off.dy
}

func (d Dir8) String() string {
	if !d.Valid() {
		return "none"
	}
	return dirNames[d]
}
