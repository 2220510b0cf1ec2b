package hydrology

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

const stageFlow = "flow"

// DeriveFlowDirection assigns every tile its steepest strictly-downhill
// neighbour. Drops within cfg.TieEps of the maximum tie, and ties are broken
// by the coordinate hash over the candidates in canonical order. Tiles with
// no qualifying drop get grid.DirNone.
func DeriveFlowDirection(shape grid.Shape, h []float64, seed int64, cfg config.FlowConfig) ([]grid.Dir8, error) {
	if err := grid.CheckLength(stageFlow, "height", len(h), shape.Size); err != nil {
		return nil, err
	}

	fd := make([]grid.Dir8, shape.Size)
	var (
		drops      [8]float64
		candidates [8]grid.Dir8
	)
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			i := shape.Index(x, y)
			maxDrop := math.Inf(-1)
			for _, d := range grid.Dirs8 {
				drops[d] = math.NaN()
				n, ok := shape.Neighbor(i, d)
				if !ok {
					continue
				}
				drop := h[i] - h[n]
				if drop <= 0 || drop < cfg.MinDropThreshold {
					continue
				}
				drops[d] = drop
				if drop > maxDrop {
					maxDrop = drop
				}
			}

			count := 0
			for _, d := range grid.Dirs8 {
				if math.IsNaN(drops[d]) {
					continue
				}
				if maxDrop-drops[d] <= cfg.TieEps {
					candidates[count] = d
					count++
				}
			}

			switch count {
			case 0:
				fd[i] = grid.DirNone
			case 1:
				fd[i] = candidates[0]
			default:
				fd[i] = candidates[grid.Pick(seed, x, y, count)]
			}
		}
	}
	return fd, nil
}

// DeriveFlowAccumulation counts, for every tile, itself plus all tiles that
// drain through it. The direction graph is processed in topological order
// (Kahn's algorithm, FIFO queue seeded in row-major order); a cycle or an
// out-of-grid direction is an internal invariant violation.
func DeriveFlowAccumulation(shape grid.Shape, fd []grid.Dir8) ([]int32, error) {
	if err := grid.CheckLength(stageFlow, "flowDirection", len(fd), shape.Size); err != nil {
		return nil, err
	}

	downstream := make([]int32, shape.Size)
	indegree := make([]int32, shape.Size)
	for i, d := range fd {
		downstream[i] = -1
		if d == grid.DirNone {
			continue
		}
		if !d.Valid() {
			return nil, grid.InvariantAt(stageFlow, "direction-code", i, "unknown direction code %d", d)
		}
		n, ok := shape.Neighbor(i, d)
		if !ok {
			x, y := shape.Coord(i)
			return nil, grid.InvariantAt(stageFlow, "direction-in-bounds", i, "direction %s from (%d,%d) leaves %dx%d grid", d, x, y, shape.Width, shape.Height)
		}
		downstream[i] = int32(n)
		indegree[n]++
	}

	acc := make([]int32, shape.Size)
	queue := make([]int32, 0, shape.Size)
	for i := range acc {
		acc[i] = 1
		if indegree[i] == 0 {
			queue = append(queue, int32(i))
		}
	}

	processed := 0
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		processed++
		next := downstream[cur]
		if next < 0 {
			continue
		}
		acc[next] += acc[cur]
		indegree[next]--
		if indegree[next] == 0 {
			queue = append(queue, next)
		}
	}

	if processed != shape.Size {
		return nil, grid.Invariant(stageFlow, "acyclic", "flow direction graph contains a cycle: processed=%d size=%d", processed, shape.Size)
	}
	return acc, nil
}

// NormalizeAccumulation log-scales accumulation into [0,1] using the grid's
// min and max. A uniform field normalises to all zeros.
func NormalizeAccumulation(acc []int32) []float64 {
	out := make([]float64, len(acc))
	if len(acc) == 0 {
		return out
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	logs := make([]float64, len(acc))
	for i, a := range acc {
		v := math.Log(float64(a))
		logs[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return out
	}
	span := hi - lo
	for i, v := range logs {
		out[i] = (v - lo) / span
	}
	return out
}

// Downstream returns the index a tile drains into, or -1 for sinks.
func Downstream(shape grid.Shape, fd []grid.Dir8, i int) int {
	n, ok := shape.Neighbor(i, fd[i])
	if !ok {
		return -1
	}
	return n
}
