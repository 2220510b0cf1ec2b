package hydrology

import (
	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/terrain"
)

const stageHydrology = "hydrology"

// Inputs are the topography fields hydrology reads. They are never mutated.
type Inputs struct {
	Height   []float64
	Slope    []float64
	Landform []terrain.Landform
}

// Diagnostics records how water bodies were decided.
type Diagnostics struct {
	SinkCandidates int              `json:"sinkCandidates"`
	SinksAdmitted  int              `json:"sinksAdmitted"`
	Rejections     map[string]int   `json:"rejections"`
	StreamSources  int              `json:"streamSources"`
	LakeCandidates int              `json:"lakeCandidates"`
	RawLakes       int              `json:"rawLakeComponents"`
	GrownLakeTiles int              `json:"grownLakeTiles"`
	Coherence      CoherenceMetrics `json:"coherence"`
}

// Result holds every hydrology map for one grid.
type Result struct {
	FlowDirection []grid.Dir8
	FlowAccum     []int32
	FlowAccumNorm []float64
	Watershed     *Watershed

	Water        []WaterClass
	Lake         []bool
	Stream       []bool
	Pool         []bool
	Marsh        []bool
	LakeID       []int32
	LakeSurfaceH []float64
	Lakes        []grid.Component

	DistWater  []int32
	DistStream []int32
	Moisture   []float64
	Terms      *MoistureTerms

	Diagnostics Diagnostics
}

// Derive runs routing, watershed analysis, lake and stream classification,
// moisture and marsh assignment in that order.
func Derive(shape grid.Shape, in Inputs, cfg *config.Config) (*Result, error) {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"height", len(in.Height)},
		{"slope", len(in.Slope)},
		{"landform", len(in.Landform)},
	} {
		if err := grid.CheckLength(stageHydrology, m.name, m.n, shape.Size); err != nil {
			return nil, err
		}
	}
	h := in.Height

	res := &Result{Diagnostics: Diagnostics{Rejections: map[string]int{}}}
	var err error
	if res.FlowDirection, err = DeriveFlowDirection(shape, h, cfg.Grid.Seed, cfg.Flow); err != nil {
		return nil, err
	}
	if res.FlowAccum, err = DeriveFlowAccumulation(shape, res.FlowDirection); err != nil {
		return nil, err
	}
	res.FlowAccumNorm = NormalizeAccumulation(res.FlowAccum)
	if res.Watershed, err = DeriveWatershed(shape, h, cfg.Watershed); err != nil {
		return nil, err
	}

	lake := LakeCandidates(shape, in.Slope, res.FlowAccumNorm, in.Landform, cfg.Lakes)
	raw, _ := grid.Components(shape, lake, grid.Dirs4[:])
	res.Diagnostics.RawLakes = len(raw)
	for _, c := range raw {
		res.Diagnostics.LakeCandidates += len(c.Tiles)
	}

	// The first trace only picks lake seeds; streams are traced again once
	// the lake mask is final.
	seedTrace := traceStreams(shape, res.FlowDirection, StreamCandidates(shape, res.FlowAccumNorm, in.Slope, lake, cfg.Streams), lake)
	admitted := make(map[int]bool, len(seedTrace.sinks))
	rejected := make(map[int]string, len(seedTrace.sinks))
	for _, s := range seedTrace.sinks {
		ok, reason := admitSink(s, res.FlowAccum, res.Watershed, cfg.Lakes)
		if ok {
			lake[s] = true
			admitted[s] = true
			continue
		}
		rejected[s] = reason
	}

	grown := GrowLakes(shape, h, lake, cfg.Lakes.GrowSteps, cfg.Lakes.GrowHeightDelta)
	for _, v := range grown {
		if v {
			res.Diagnostics.GrownLakeTiles++
		}
	}

	res.Lake, res.Diagnostics.Coherence, err = ApplyCoherence(shape, h, grown, cfg.Coherence)
	if err != nil {
		return nil, err
	}
	for s := range admitted {
		if res.Lake[s] {
			res.Diagnostics.SinksAdmitted++
		}
	}

	trace := traceStreams(shape, res.FlowDirection, StreamCandidates(shape, res.FlowAccumNorm, in.Slope, res.Lake, cfg.Streams), res.Lake)
	res.Diagnostics.StreamSources = trace.sources
	res.Stream = trace.stream
	res.Pool = make([]bool, shape.Size)
	for _, s := range trace.sinks {
		res.Pool[s] = true
		res.Diagnostics.Rejections[poolReason(s, admitted, rejected, res.FlowAccum, res.Watershed, cfg.Lakes)]++
	}
	res.Diagnostics.SinkCandidates = res.Diagnostics.SinksAdmitted + len(trace.sinks)

	water := make([]bool, shape.Size)
	for i := range water {
		water[i] = res.Lake[i] || res.Stream[i] || res.Pool[i]
	}
	res.LakeID, res.LakeSurfaceH, res.Lakes = LakeComponents(shape, h, res.Lake)

	res.DistWater = DistanceField(shape, water, cfg.Moisture.WaterProxMaxDist)
	res.DistStream = DistanceField(shape, res.Stream, cfg.Moisture.StreamProxMaxDist)
	res.Moisture, res.Terms, err = DeriveMoisture(shape, h, res.FlowAccumNorm, in.Slope, res.DistWater, res.Watershed, cfg.Moisture)
	if err != nil {
		return nil, err
	}

	res.Marsh = make([]bool, shape.Size)
	res.Water = make([]WaterClass, shape.Size)
	for i := range res.Water {
		res.Marsh[i] = IsMarsh(res.Moisture[i], in.Slope[i], cfg.Moisture.MarshMoistureThreshold, cfg.Moisture.MarshSlopeThreshold)
		res.Water[i] = ClassifyWater(res.Lake[i], res.Stream[i], res.Pool[i], res.Marsh[i])
	}
	return res, nil
}

// poolReason names why a stream-fed sink left dry by the final lake mask
// became a pool. Sinks first reached after coherence are gated here; an
// admissible one still lost the lake it would have seeded.
func poolReason(s int, admitted map[int]bool, rejected map[int]string, acc []int32, ws *Watershed, cfg config.LakeConfig) string {
	if reason, ok := rejected[s]; ok {
		return reason
	}
	if !admitted[s] {
		if ok, reason := admitSink(s, acc, ws, cfg); !ok {
			return reason
		}
	}
	return RejectCoherence
}
