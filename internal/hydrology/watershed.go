package hydrology

import (
	"math"
	"sort"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

const stageWatershed = "watershed"

// Watershed holds, per tile, the basin minimum it belongs to and the peak
// maximum it hangs from, together with the persistence of each.
type Watershed struct {
	BasinMinIdx      []int32
	BasinMinH        []float64
	BasinSpillH      []float64
	BasinPersistence []float64
	BasinLike        []bool
	BasinUnresolved  []bool

	PeakMaxIdx      []int32
	PeakMaxH        []float64
	PeakSaddleH     []float64
	PeakPersistence []float64
	RidgeLike       []bool
	PeakUnresolved  []bool

	basinTiles []int32
	peakTiles  []int32
}

// BasinSize returns how many tiles drain to the basin whose minimum is minIdx.
func (w *Watershed) BasinSize(minIdx int) int {
	if minIdx < 0 || minIdx >= len(w.basinTiles) {
		return 0
	}
	return int(w.basinTiles[minIdx])
}

// PeakSize returns how many tiles belong to the peak whose maximum is maxIdx.
func (w *Watershed) PeakSize(maxIdx int) int {
	if maxIdx < 0 || maxIdx >= len(w.peakTiles) {
		return 0
	}
	return int(w.peakTiles[maxIdx])
}

// DeriveWatershed runs the ascending basin pass and the descending peak
// pass over the height field.
func DeriveWatershed(shape grid.Shape, h []float64, cfg config.WatershedConfig) (*Watershed, error) {
	if err := grid.CheckLength(stageWatershed, "height", len(h), shape.Size); err != nil {
		return nil, err
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range h {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	ws := &Watershed{}
	basin := sweepLevels(shape, h, cfg.HEps, true)
	ws.BasinMinIdx = basin.extreme
	ws.basinTiles = basin.tiles
	ws.BasinMinH, ws.BasinSpillH, ws.BasinPersistence, ws.BasinLike, ws.BasinUnresolved =
		basin.persistence(h, cfg, hi, true)

	peak := sweepLevels(shape, h, cfg.HEps, false)
	ws.PeakMaxIdx = peak.extreme
	ws.peakTiles = peak.tiles
	ws.PeakMaxH, ws.PeakSaddleH, ws.PeakPersistence, ws.RidgeLike, ws.PeakUnresolved =
		peak.persistence(h, cfg, lo, false)

	return ws, nil
}

type levelSweep struct {
	extreme []int32   // per tile: extremum index of its lineage
	mergeH  []float64 // per extremum index: height of first merge
	merged  []bool
	tiles   []int32 // per extremum index: tiles attributed to it
}

// sweepLevels activates tiles band by band (heights within hEps share a
// band), ascending for basins and descending for peaks, and unions each
// band tile with its already-active neighbours in canonical order. The set
// with the better extremum wins; the loser's lineage records the merge
// height the first time it loses.
func sweepLevels(shape grid.Shape, h []float64, hEps float64, ascending bool) *levelSweep {
	n := shape.Size
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ha, hb := h[order[a]], h[order[b]]
		if ha != hb {
			if ascending {
				return ha < hb
			}
			return ha > hb
		}
		return order[a] < order[b]
	})

	better := func(a, b int32) bool {
		ha, hb := h[a], h[b]
		if math.Abs(ha-hb) > hEps {
			if ascending {
				return ha < hb
			}
			return ha > hb
		}
		return a < b
	}

	sw := &levelSweep{
		extreme: make([]int32, n),
		mergeH:  make([]float64, n),
		merged:  make([]bool, n),
		tiles:   make([]int32, n),
	}
	uf := newUnionFind(n)

	for start := 0; start < n; {
		end := start + 1
		for end < n && math.Abs(h[order[end]]-h[order[start]]) <= hEps {
			end++
		}
		band := order[start:end]
		for _, i := range band {
			uf.activate(i)
		}
		for _, i := range band {
			for _, d := range grid.Dirs8 {
				nb, ok := shape.Neighbor(i, d)
				if !ok || !uf.active(nb) {
					continue
				}
				ri, rn := uf.find(i), uf.find(nb)
				if ri == rn {
					continue
				}
				ei, en := uf.extreme[ri], uf.extreme[rn]
				loser := ei
				if better(ei, en) {
					uf.attach(rn, ri)
					loser = en
				} else {
					uf.attach(ri, rn)
				}
				if !sw.merged[loser] {
					sw.merged[loser] = true
					sw.mergeH[loser] = h[i]
				}
			}
		}
		for _, i := range band {
			ext := uf.extreme[uf.find(i)]
			sw.extreme[i] = ext
			sw.tiles[ext]++
		}
		start = end
	}
	return sw
}

// persistence resolves per-tile extremum height, merge height and
// persistence. Lineages that never merged follow the unresolved policy:
// NaN merge height with zero persistence, or the opposite grid extreme.
func (sw *levelSweep) persistence(h []float64, cfg config.WatershedConfig, fallback float64, basin bool) (extH, mergeH, pers []float64, like, unresolved []bool) {
	n := len(h)
	extH = make([]float64, n)
	mergeH = make([]float64, n)
	pers = make([]float64, n)
	like = make([]bool, n)
	unresolved = make([]bool, n)

	for i := 0; i < n; i++ {
		ext := sw.extreme[i]
		extH[i] = h[ext]
		var m float64
		switch {
		case sw.merged[ext]:
			m = sw.mergeH[ext]
		case cfg.UnresolvedSpill == config.SpillNaN:
			unresolved[i] = true
			mergeH[i] = math.NaN()
			continue
		default:
			unresolved[i] = true
			m = fallback
		}
		mergeH[i] = m
		p := m - h[ext]
		if !basin {
			p = h[ext] - m
		}
		if p < 0 {
			p = 0
		}
		pers[i] = p
		like[i] = p >= cfg.PersistenceMin
	}
	return extH, mergeH, pers, like, unresolved
}
