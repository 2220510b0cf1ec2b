package hydrology

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

// Reasons a terminal sink was not admitted as a lake.
const (
	RejectUnresolved  = "unresolved_denied"
	RejectPersistence = "shallow_persistence"
	RejectInflow      = "low_inflow"
	RejectBasinSize   = "small_basin"
	RejectCoherence   = "coherence_removed"
)

// StreamCandidates marks non-lake tiles with enough accumulation and slope.
func StreamCandidates(shape grid.Shape, fan, slope []float64, lake []bool, cfg config.StreamConfig) []bool {
	mask := make([]bool, shape.Size)
	for i := range mask {
		mask[i] = !lake[i] && fan[i] >= cfg.AccumThreshold && slope[i] >= cfg.MinSlopeThreshold
	}
	return mask
}

// streamTrace is the outcome of walking the flow graph from stream sources.
type streamTrace struct {
	stream  []bool
	sinks   []int // terminal tiles reached by stream flow, in discovery order
	sources int
}

// traceStreams walks downstream from every source (a candidate that no
// other candidate drains into) until the walk enters a lake, joins an
// already traced stream, or stops at a terminal sink. Sources are visited
// in row-major order. Terminal sinks are reported, not marked as stream.
func traceStreams(shape grid.Shape, fd []grid.Dir8, candidate, lake []bool) *streamTrace {
	fed := make([]bool, shape.Size)
	for i, c := range candidate {
		if !c {
			continue
		}
		if n := Downstream(shape, fd, i); n >= 0 {
			fed[n] = true
		}
	}

	tr := &streamTrace{stream: make([]bool, shape.Size)}
	seenSink := make([]bool, shape.Size)
	for src := 0; src < shape.Size; src++ {
		if !candidate[src] || fed[src] {
			continue
		}
		tr.sources++
		cur := src
		for !lake[cur] && !tr.stream[cur] {
			next := Downstream(shape, fd, cur)
			if next < 0 {
				if !seenSink[cur] {
					seenSink[cur] = true
					tr.sinks = append(tr.sinks, cur)
				}
				break
			}
			tr.stream[cur] = true
			cur = next
		}
	}
	return tr
}

// admitSink applies the lake admission gates to a terminal sink. Unresolved
// lineages are refused outright under the deny policy and otherwise must
// pass every hard gate with a persistence of 0, whatever spill the
// unresolved policy filled in.
func admitSink(i int, acc []int32, ws *Watershed, cfg config.LakeConfig) (bool, string) {
	unresolved := ws.BasinUnresolved[i]
	if unresolved && cfg.UnresolvedPolicy == config.UnresolvedDeny {
		return false, RejectUnresolved
	}
	persistence := ws.BasinPersistence[i]
	if unresolved || math.IsNaN(persistence) {
		persistence = 0
	}
	if persistence < cfg.SinkPersistenceMin {
		return false, RejectPersistence
	}
	if int(acc[i]) < cfg.SinkMinInflow {
		return false, RejectInflow
	}
	if ws.BasinSize(int(ws.BasinMinIdx[i])) < cfg.SinkMinBasinTiles {
		return false, RejectBasinSize
	}
	return true, ""
}
