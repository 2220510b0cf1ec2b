package grid

import "fmt"

// Shape describes a bounded rectangular grid. Every map in the pipeline is a
// flat row-major slice of length Size.
type Shape struct {
	Width  int
	Height int
	Size   int
}

// NewShape validates the dimensions and returns the grid descriptor.
func NewShape(width, height int) (Shape, error) {
	if width <= 0 || height <= 0 {
		return Shape{}, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	return Shape{Width: width, Height: height, Size: width * height}, nil
}

// Index returns the linear slice index for coordinates (x, y).
func (s Shape) Index(x, y int) int { return y*s.Width + x }

// Coord returns the (x, y) coordinates of a linear index.
func (s Shape) Coord(i int) (int, int) { return i % s.Width, i / s.Width }

func (s Shape) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

// Neighbor returns the index reached by stepping once in dir from i. The
// second value is false when the step leaves the grid or dir is not a
// compass direction.
func (s Shape) Neighbor(i int, dir Dir8) (int, bool) {
	if !dir.Valid() {
		return -1, false
	}
	x, y := s.Coord(i)
	off := dirOffsets[dir]
	nx, ny := x+off.dx, y+off.dy
	if !s.InBounds(nx, ny) {
		return -1, false
	}
	return s.Index(nx, ny), true
}

// Interior reports whether (x, y) lies at least inset tiles away from every
// edge of the grid.
func (s Shape) Interior(x, y, inset int) bool {
	return x >= inset && y >= inset && x < s.Width-inset && y < s.Height-inset
}
