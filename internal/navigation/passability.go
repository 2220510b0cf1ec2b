package navigation

import (
	"terrainkit/internal/grid"
)

const stageNavigation = "navigation"

// Passability classifies a single directed move.
type Passability uint8

const (
	Passable Passability = iota
	Difficult
	Blocked
)

// invalidCode is the one 2-bit value no Passability maps to.
const invalidCode = 3

func (p Passability) String() string {
	switch p {
	case Passable:
		return "passable"
	case Difficult:
		return "difficult"
	case Blocked:
		return "blocked"
	default:
		return "invalid"
	}
}

// Packed stores the passability of all eight directions of a tile, two bits
// per direction in canonical order starting at the low bits.
type Packed uint16

// Pack encodes one passability per canonical direction.
func Pack(dirs [8]Passability) Packed {
	var p Packed
	for d, v := range dirs {
		p |= Packed(v&0x3) << (2 * d)
	}
	return p
}

// At decodes the passability towards d. Code 3 is an invariant violation.
func (p Packed) At(d grid.Dir8) (Passability, error) {
	if !d.Valid() {
		return Blocked, grid.Invariant(stageNavigation, "passability-direction", "direction %d is not a compass direction", d)
	}
	code := (p >> (2 * uint(d))) & 0x3
	if code == invalidCode {
		return Blocked, grid.Invariant(stageNavigation, "passability-code", "packed value %#04x holds invalid code %d for %s", uint16(p), code, d)
	}
	return Passability(code), nil
}

// Unpack decodes every direction.
func (p Packed) Unpack() ([8]Passability, error) {
	var out [8]Passability
	for _, d := range grid.Dirs8 {
		v, err := p.At(d)
		if err != nil {
			return out, err
		}
		out[d] = v
	}
	return out, nil
}

// CliffEdge marks, one bit per canonical direction, moves that drop or
// climb at least the steep block delta.
type CliffEdge uint8

func (c CliffEdge) Has(d grid.Dir8) bool {
	return d.Valid() && c&(1<<d) != 0
}
