package terrain

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

// Landform is the coarse shape class of a tile.
type Landform uint8

const (
	LandformFlat Landform = iota
	LandformSlope
	LandformBasin
	LandformRidge
)

func (l Landform) String() string {
	switch l {
	case LandformFlat:
		return "flat"
	case LandformSlope:
		return "slope"
	case LandformBasin:
		return "basin"
	case LandformRidge:
		return "ridge"
	default:
		return "unknown"
	}
}

// landformRadius is the half-width of the window used for the topographic
// position index.
const landformRadius = 2

// Topography bundles the height-derived fields consumed by hydrology.
type Topography struct {
	Height   []float64
	Slope    []float64
	Landform []Landform
}

// DeriveTopography computes slope magnitude and landform for a height field.
func DeriveTopography(shape grid.Shape, h []float64, cfg config.TerrainConfig) (*Topography, error) {
	if err := grid.CheckLength("topography", "height", len(h), shape.Size); err != nil {
		return nil, err
	}
	slope := SlopeMagnitude(shape, h, cfg.CellSize)
	return &Topography{
		Height:   h,
		Slope:    slope,
		Landform: ClassifyLandform(shape, h, slope, cfg),
	}, nil
}

// SlopeMagnitude returns rise over run per tile using central differences,
// falling back to one-sided differences on the grid edge.
func SlopeMagnitude(shape grid.Shape, h []float64, cellSize float64) []float64 {
	out := make([]float64, shape.Size)
	if cellSize <= 0 {
		cellSize = 1
	}
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			dx := axisGradient(shape, h, x, y, 1, 0)
			dy := axisGradient(shape, h, x, y, 0, 1)
			out[shape.Index(x, y)] = math.Hypot(dx, dy) / cellSize
		}
	}
	return out
}

func axisGradient(shape grid.Shape, h []float64, x, y, ox, oy int) float64 {
	x0, y0 := x-ox, y-oy
	x1, y1 := x+ox, y+oy
	span := 2.0
	if !shape.InBounds(x0, y0) {
		x0, y0 = x, y
		span--
	}
	if !shape.InBounds(x1, y1) {
		x1, y1 = x, y
		span--
	}
	if span == 0 {
		return 0
	}
	return (h[shape.Index(x1, y1)] - h[shape.Index(x0, y0)]) / span
}

// ClassifyLandform labels tiles by their topographic position relative to
// the surrounding window mean.
func ClassifyLandform(shape grid.Shape, h, slope []float64, cfg config.TerrainConfig) []Landform {
	out := make([]Landform, shape.Size)
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			i := shape.Index(x, y)
			sum, n := 0.0, 0
			for wy := y - landformRadius; wy <= y+landformRadius; wy++ {
				for wx := x - landformRadius; wx <= x+landformRadius; wx++ {
					if (wx == x && wy == y) || !shape.InBounds(wx, wy) {
						continue
					}
					sum += h[shape.Index(wx, wy)]
					n++
				}
			}
			tpi := 0.0
			if n > 0 {
				tpi = h[i] - sum/float64(n)
			}
			switch {
			case tpi <= -cfg.LandformRelief && cfg.LandformRelief > 0:
				out[i] = LandformBasin
			case tpi >= cfg.LandformRelief && cfg.LandformRelief > 0:
				out[i] = LandformRidge
			case slope[i] <= cfg.FlatSlope:
				out[i] = LandformFlat
			default:
				out[i] = LandformSlope
			}
		}
	}
	return out
}
