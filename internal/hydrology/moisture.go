package hydrology

import (
	"math"
	"sort"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

// DistanceField returns the 8-connected step distance from every tile to
// the nearest source, capped at maxDist. Without any source every tile sits
// at the cap.
func DistanceField(shape grid.Shape, sources []bool, maxDist int) []int32 {
	dist := make([]int32, shape.Size)
	queue := make([]int, 0, shape.Size)
	for i := range dist {
		dist[i] = int32(maxDist)
		if sources[i] {
			dist[i] = 0
			queue = append(queue, i)
		}
	}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		next := dist[cur] + 1
		if int(next) >= maxDist {
			continue
		}
		for _, d := range grid.Dirs8 {
			n, ok := shape.Neighbor(cur, d)
			if !ok || dist[n] <= next {
				continue
			}
			dist[n] = next
			queue = append(queue, n)
		}
	}
	return dist
}

// MoistureTerms keeps the per-tile decomposition of the moisture blend.
type MoistureTerms struct {
	Accum     []float64
	Flat      []float64
	Proximity []float64
	Retention []float64 // nil unless retention blending is enabled
}

// DeriveMoisture blends accumulation, flatness and water proximity into a
// [0,1] wetness per tile, optionally mixing in basin retention.
func DeriveMoisture(shape grid.Shape, h, fan, slope []float64, distWater []int32, ws *Watershed, cfg config.MoistureConfig) ([]float64, *MoistureTerms, error) {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"height", len(h)},
		{"flowAccumNorm", len(fan)},
		{"slope", len(slope)},
		{"distWater", len(distWater)},
	} {
		if err := grid.CheckLength("moisture", m.name, m.n, shape.Size); err != nil {
			return nil, nil, err
		}
	}

	terms := &MoistureTerms{
		Accum:     make([]float64, shape.Size),
		Flat:      make([]float64, shape.Size),
		Proximity: make([]float64, shape.Size),
	}
	moisture := make([]float64, shape.Size)
	for i := 0; i < shape.Size; i++ {
		terms.Accum[i] = clamp01((fan[i] - cfg.AccumStart) / (1 - cfg.AccumStart))
		terms.Flat[i] = clamp01((cfg.FlatnessThreshold - slope[i]) / cfg.FlatnessThreshold)
		terms.Proximity[i] = clamp01(1 - float64(distWater[i])/float64(cfg.WaterProxMaxDist))
		moisture[i] = clamp01(cfg.AccumWeight*terms.Accum[i] + cfg.FlatWeight*terms.Flat[i] + cfg.ProximityWeight*terms.Proximity[i])
	}

	if cfg.Retention.Enabled && ws != nil {
		terms.Retention = RetentionField(h, ws, cfg.Retention)
		w := cfg.Retention.Weight
		for i := range moisture {
			moisture[i] = clamp01((1-w)*moisture[i] + w*terms.Retention[i])
		}
	}
	return moisture, terms, nil
}

// RetentionField measures how much water a tile would hold: its depth below
// the basin spill height for persistent basins, normalised by mode.
func RetentionField(h []float64, ws *Watershed, cfg config.RetentionConfig) []float64 {
	raw := make([]float64, len(h))
	for i := range raw {
		spill := ws.BasinSpillH[i]
		if !ws.BasinLike[i] || math.IsNaN(spill) {
			continue
		}
		raw[i] = math.Max(0, spill-h[i])
	}

	out := make([]float64, len(raw))
	switch cfg.Mode {
	case config.RetentionMinMax:
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range raw {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi > lo {
			for i, v := range raw {
				out[i] = (v - lo) / (hi - lo)
			}
		}
	case config.RetentionQuantile:
		if len(raw) < 2 {
			return out
		}
		sorted := append([]float64(nil), raw...)
		sort.Float64s(sorted)
		denom := float64(len(raw) - 1)
		for i, v := range raw {
			below := sort.SearchFloat64s(sorted, v)
			out[i] = float64(below) / denom
		}
	default:
		for i, v := range raw {
			out[i] = clamp01(v / cfg.DepthScale)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
