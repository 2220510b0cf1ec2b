package hydrology

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

const stageCoherence = "coherence"

// CoherenceMetrics summarises the lake mask after the coherence pass.
type CoherenceMetrics struct {
	Components       int     `json:"components"`
	Singletons       int     `json:"singletons"`
	LargestShare     float64 `json:"largestShare"`
	LakeShare        float64 `json:"lakeShare"`
	ViolationsBefore int     `json:"boundaryViolationsBefore"`
	ViolationsAfter  int     `json:"boundaryViolationsAfter"`
	MicroRemoved     int     `json:"microRemoved"`
	MicroMerged      int     `json:"microMerged"`
	Bridges          int     `json:"bridges"`
	Trimmed          int     `json:"trimmed"`
}

// ApplyCoherence repairs a lake mask in a fixed order: micro-lake policy,
// component bridging, then boundary realism trimmed to a fixed point. A final
// sweep removes micro components created by trimming, and the result is
// validated. With coherence disabled the mask is returned unchanged.
func ApplyCoherence(shape grid.Shape, h []float64, mask []bool, cfg config.CoherenceConfig) ([]bool, CoherenceMetrics, error) {
	out := make([]bool, len(mask))
	copy(out, mask)

	var m CoherenceMetrics
	if !cfg.Enabled {
		m.ViolationsBefore = len(perchedTiles(shape, h, out, cfg.BoundaryEps))
		m.ViolationsAfter = m.ViolationsBefore
		m.summarise(shape, out)
		return out, m, nil
	}

	switch cfg.MicroLakePolicy {
	case config.MicroLakeRemove:
		m.MicroRemoved += removeMicroLakes(shape, out, cfg.MicroLakeMaxSize)
	case config.MicroLakeMerge:
		m.MicroMerged += mergeMicroLakes(shape, h, out, cfg)
		m.MicroRemoved += removeMicroLakes(shape, out, cfg.MicroLakeMaxSize)
	}

	m.Bridges += bridgeComponents(shape, h, out, cfg, -1)

	m.ViolationsBefore = len(perchedTiles(shape, h, out, cfg.BoundaryEps))
	for {
		perched := perchedTiles(shape, h, out, cfg.BoundaryEps)
		if len(perched) == 0 {
			break
		}
		for _, t := range perched {
			out[t] = false
		}
		m.Trimmed += len(perched)
	}

	if cfg.MicroLakePolicy != config.MicroLakeKeep {
		m.MicroRemoved += removeMicroLakes(shape, out, cfg.MicroLakeMaxSize)
	}

	if err := validateCoherence(shape, h, out, cfg); err != nil {
		return nil, m, err
	}
	m.summarise(shape, out)
	return out, m, nil
}

func (m *CoherenceMetrics) summarise(shape grid.Shape, mask []bool) {
	comps, _ := grid.Components(shape, mask, grid.Dirs8[:])
	m.Components = len(comps)
	total, largest := 0, 0
	for _, c := range comps {
		n := len(c.Tiles)
		total += n
		if n == 1 {
			m.Singletons++
		}
		if n > largest {
			largest = n
		}
	}
	if total > 0 {
		m.LargestShare = float64(largest) / float64(total)
	}
	m.LakeShare = float64(total) / float64(shape.Size)
}

func removeMicroLakes(shape grid.Shape, mask []bool, maxSize int) int {
	removed := 0
	comps, _ := grid.Components(shape, mask, grid.Dirs8[:])
	for _, c := range comps {
		if len(c.Tiles) > maxSize {
			continue
		}
		for _, t := range c.Tiles {
			mask[t] = false
		}
		removed++
	}
	return removed
}

// mergeMicroLakes bridges every micro component to its nearest neighbour
// component when one lies within the bridge distance.
func mergeMicroLakes(shape grid.Shape, h []float64, mask []bool, cfg config.CoherenceConfig) int {
	merged := 0
	comps, _ := grid.Components(shape, mask, grid.Dirs8[:])
	for _, c := range comps {
		if len(c.Tiles) > cfg.MicroLakeMaxSize {
			continue
		}
		merged += bridgeComponents(shape, h, mask, cfg, c.Tiles[0])
	}
	return merged
}

// bridgeComponents connects lake components whose gap is at most
// MaxBridgeDistance tiles. Each source component runs a multi-source BFS
// (8-connected, canonical order) through dry tiles no higher than its
// surface plus BridgeHeightDelta, and fills the first gap found to every
// component it is not yet connected to. When fromTile >= 0, only the
// component containing that tile is a source, it must still be a micro
// component, and it stops after its first bridge.
func bridgeComponents(shape grid.Shape, h []float64, mask []bool, cfg config.CoherenceConfig, fromTile int) int {
	if cfg.MaxBridgeDistance <= 0 {
		return 0
	}
	comps, labels := grid.Components(shape, mask, grid.Dirs8[:])
	if len(comps) < 2 {
		return 0
	}
	only := -1
	if fromTile >= 0 {
		only = int(labels[fromTile])
		if only < 0 || len(comps[only].Tiles) > cfg.MicroLakeMaxSize {
			return 0
		}
	}

	joined := newUnionFind(len(comps))
	for i := range comps {
		joined.activate(i)
	}

	depth := make([]int32, shape.Size)
	pred := make([]int32, shape.Size)
	stamp := make([]int32, shape.Size) // BFS generation that visited the tile
	for i := range stamp {
		stamp[i] = -1
	}

	bridges := 0
	for _, src := range comps {
		if only >= 0 && src.ID != only {
			continue
		}
		limit := math.Inf(1)
		for _, t := range src.Tiles {
			limit = math.Min(limit, h[t])
		}
		limit += cfg.BridgeHeightDelta

		gen := int32(src.ID)
		queue := make([]int, 0, len(src.Tiles))
		for _, t := range src.Tiles {
			stamp[t] = gen
			depth[t] = 0
			pred[t] = -1
			queue = append(queue, t)
		}

		done := false
		for head := 0; head < len(queue) && !done; head++ {
			cur := queue[head]
			for _, d := range grid.Dirs8 {
				n, ok := shape.Neighbor(cur, d)
				if !ok {
					continue
				}
				if mask[n] {
					other := int(labels[n])
					if other < 0 || joined.find(other) == joined.find(src.ID) || depth[cur] == 0 {
						continue
					}
					for t := cur; t >= 0 && !mask[t]; t = int(pred[t]) {
						mask[t] = true
						labels[t] = int32(src.ID)
					}
					joined.attach(joined.find(other), joined.find(src.ID))
					bridges++
					if only >= 0 {
						done = true
						break
					}
					continue
				}
				if stamp[n] == gen || h[n] > limit || int(depth[cur]) >= cfg.MaxBridgeDistance {
					continue
				}
				stamp[n] = gen
				depth[n] = depth[cur] + 1
				pred[n] = int32(cur)
				queue = append(queue, n)
			}
		}
	}
	return bridges
}

// perchedTiles returns lake boundary tiles (at least one dry 8-neighbour)
// that sit more than eps above their lowest lake neighbour, in row-major
// order. Tiles with no lake neighbour are never perched.
func perchedTiles(shape grid.Shape, h []float64, mask []bool, eps float64) []int {
	var perched []int
	for i := 0; i < shape.Size; i++ {
		if !mask[i] {
			continue
		}
		boundary := false
		lowest := math.Inf(1)
		for _, d := range grid.Dirs8 {
			n, ok := shape.Neighbor(i, d)
			if !ok {
				continue
			}
			if !mask[n] {
				boundary = true
				continue
			}
			lowest = math.Min(lowest, h[n])
		}
		if boundary && !math.IsInf(lowest, 1) && h[i]-lowest > eps {
			perched = append(perched, i)
		}
	}
	return perched
}

func validateCoherence(shape grid.Shape, h []float64, mask []bool, cfg config.CoherenceConfig) error {
	if perched := perchedTiles(shape, h, mask, cfg.BoundaryEps); len(perched) > 0 {
		return grid.InvariantAt(stageCoherence, "boundary-realism", perched[0], "%d lake boundary tiles exceed boundaryEps=%g after repair", len(perched), cfg.BoundaryEps)
	}
	if cfg.MicroLakePolicy == config.MicroLakeKeep {
		return nil
	}
	comps, _ := grid.Components(shape, mask, grid.Dirs8[:])
	for _, c := range comps {
		if len(c.Tiles) <= cfg.MicroLakeMaxSize {
			return grid.InvariantAt(stageCoherence, "micro-lake", c.Tiles[0], "component of %d tiles survives microLakeMaxSize=%d", len(c.Tiles), cfg.MicroLakeMaxSize)
		}
	}
	return nil
}
