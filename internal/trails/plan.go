package trails

import (
	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/terrain"
)

const stageTrails = "trails"

// Inputs are the upstream fields trail planning reads.
type Inputs struct {
	Slope         []float64
	Landform      []terrain.Landform
	FlowAccumNorm []float64
	Water         []hydrology.WaterClass
	Moisture      []float64
	DistWater     []int32
	Obstruction   []float64
}

func (in *Inputs) validate(shape grid.Shape) error {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"slope", len(in.Slope)},
		{"landform", len(in.Landform)},
		{"flowAccumNorm", len(in.FlowAccumNorm)},
		{"water", len(in.Water)},
		{"moisture", len(in.Moisture)},
		{"distWater", len(in.DistWater)},
		{"obstruction", len(in.Obstruction)},
	} {
		if err := grid.CheckLength(stageTrails, m.name, m.n, shape.Size); err != nil {
			return err
		}
	}
	return nil
}

// Trail is one successfully routed request.
type Trail struct {
	ID      int          `json:"id"`
	Request RouteRequest `json:"request"`
	Tiles   []int        `json:"tiles"`
	Cost    float64      `json:"cost"`
}

// Plan is the full trail layout for a grid.
type Plan struct {
	Seeds       []int          `json:"seeds"`
	Requests    []RouteRequest `json:"requests"`
	Trails      []Trail        `json:"trails"`
	Skipped     int            `json:"skipped"`
	Endpoints   EndpointStats  `json:"endpoints"`
	Cost        []float64      `json:"-"`
	DistStream  []int32        `json:"-"`
	GameTrail   []bool         `json:"-"`
	GameTrailID []int32        `json:"-"`
}

// Build selects seeds and endpoints, routes every request in order and
// marks the resulting game trails. Unreachable requests are skipped and
// counted. A tile keeps the id of the first trail that crossed it.
func Build(shape grid.Shape, in *Inputs, cfg *config.Config, profiler SearchProfiler) (*Plan, error) {
	if err := in.validate(shape); err != nil {
		return nil, err
	}
	tc := cfg.Trails

	stream := make([]bool, shape.Size)
	for i, w := range in.Water {
		stream[i] = w == hydrology.WaterStream
	}

	p := &Plan{
		DistStream:  hydrology.DistanceField(shape, stream, tc.StreamProxMaxDist),
		GameTrail:   make([]bool, shape.Size),
		GameTrailID: make([]int32, shape.Size),
	}
	for i := range p.GameTrailID {
		p.GameTrailID[i] = -1
	}
	p.Cost = BuildCostField(shape, in, p.DistStream, tc)
	p.Seeds = SelectSeeds(shape, in, cfg.Moisture.WaterProxMaxDist, tc)
	p.Requests, p.Endpoints = SelectEndpoints(shape, in, p.Seeds, tc)

	for _, req := range p.Requests {
		tiles, total := search(shape, p.Cost, req.SeedIndex, req.EndpointIndex, tc.DiagWeight, tc.TieEps, profiler)
		if tiles == nil {
			p.Skipped++
			if profiler != nil {
				profiler.RecordRouteSkipped()
			}
			continue
		}
		if profiler != nil {
			profiler.RecordRouteFound(len(tiles))
		}
		id := len(p.Trails)
		for _, t := range tiles {
			p.GameTrail[t] = true
			if p.GameTrailID[t] < 0 {
				p.GameTrailID[t] = int32(id)
			}
		}
		p.Trails = append(p.Trails, Trail{ID: id, Request: req, Tiles: tiles, Cost: total})
	}
	return p, nil
}
