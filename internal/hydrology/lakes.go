package hydrology

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/terrain"
)

// LakeCandidates marks flat, well-fed basin tiles. All thresholds are
// inclusive.
func LakeCandidates(shape grid.Shape, slope, fan []float64, landform []terrain.Landform, cfg config.LakeConfig) []bool {
	mask := make([]bool, shape.Size)
	for i := range mask {
		mask[i] = landform[i] == terrain.LandformBasin &&
			slope[i] <= cfg.FlatSlopeThreshold &&
			fan[i] >= cfg.AccumThreshold
	}
	return mask
}

// GrowLakes expands each 4-connected lake component outward for up to
// steps rounds. A neighbour is admitted only when its height is within delta
// of the component's reference minimum, which keeps a lake from climbing a
// slope one terrace at a time. Components grow in row-major order and see
// the tiles claimed by earlier ones.
func GrowLakes(shape grid.Shape, h []float64, mask []bool, steps int, delta float64) []bool {
	out := make([]bool, len(mask))
	copy(out, mask)
	if steps <= 0 {
		return out
	}

	comps, _ := grid.Components(shape, mask, grid.Dirs4[:])
	for _, comp := range comps {
		ref := math.Inf(1)
		for _, t := range comp.Tiles {
			ref = math.Min(ref, h[t])
		}
		limit := ref + delta

		frontier := append([]int(nil), comp.Tiles...)
		for step := 0; step < steps && len(frontier) > 0; step++ {
			var next []int
			for _, t := range frontier {
				for _, d := range grid.Dirs4 {
					n, ok := shape.Neighbor(t, d)
					if !ok || out[n] || h[n] > limit {
						continue
					}
					out[n] = true
					next = append(next, n)
				}
			}
			frontier = next
		}
	}
	return out
}

// LakeComponents labels the final lake mask (8-connected) and returns the
// component id and surface height per tile. Off-lake tiles get -1 and NaN.
func LakeComponents(shape grid.Shape, h []float64, mask []bool) ([]int32, []float64, []grid.Component) {
	comps, labels := grid.Components(shape, mask, grid.Dirs8[:])
	surface := make([]float64, shape.Size)
	for i := range surface {
		surface[i] = math.NaN()
	}
	for _, comp := range comps {
		lo := math.Inf(1)
		for _, t := range comp.Tiles {
			lo = math.Min(lo, h[t])
		}
		for _, t := range comp.Tiles {
			surface[t] = lo
		}
	}
	return labels, surface, comps
}
