package trails

import (
	"math"
	"reflect"
	"testing"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/terrain"
)

func mustShape(t *testing.T, w, h int) grid.Shape {
	t.Helper()
	shape, err := grid.NewShape(w, h)
	if err != nil {
		t.Fatalf("NewShape(%d,%d): %v", w, h, err)
	}
	return shape
}

func uniform(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFindLeastCostPathPrefersCardinalRoute(t *testing.T) {
	shape := mustShape(t, 2, 2)
	got := FindLeastCostPath(shape, uniform(4, 1), 0, 3, 10, 1e-9)
	if want := []int{0, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
}

func TestFindLeastCostPathAvoidsExpensiveTiles(t *testing.T) {
	shape := mustShape(t, 3, 3)
	cost := uniform(9, 1)
	cost[4] = 100
	path, total := search(shape, cost, 0, 8, math.Sqrt2, 1e-9, nil)
	if want := []int{0, 1, 5, 8}; !reflect.DeepEqual(path, want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	if math.Abs(total-(2+math.Sqrt2)) > 1e-9 {
		t.Fatalf("cost = %v, want %v", total, 2+math.Sqrt2)
	}
}

func TestFindLeastCostPathImpassable(t *testing.T) {
	shape := mustShape(t, 3, 1)
	tests := []struct {
		name string
		cost []float64
	}{
		{name: "start", cost: []float64{Impassable, 1, 1}},
		{name: "end", cost: []float64{1, 1, Impassable}},
		{name: "wall", cost: []float64{1, Impassable, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindLeastCostPath(shape, tt.cost, 0, 2, math.Sqrt2, 1e-9); got != nil {
				t.Fatalf("expected nil path, got %v", got)
			}
		})
	}
	if got := FindLeastCostPath(shape, uniform(3, 1), 1, 1, math.Sqrt2, 0); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("start == end path = %v", got)
	}
}

func stripInputs(n int) *Inputs {
	return &Inputs{
		Slope:         make([]float64, n),
		Landform:      make([]terrain.Landform, n),
		FlowAccumNorm: uniform(n, 1),
		Water:         make([]hydrology.WaterClass, n),
		Moisture:      make([]float64, n),
		DistWater:     make([]int32, n),
		Obstruction:   make([]float64, n),
	}
}

func stripConfig() *config.Config {
	cfg := config.Default()
	cfg.Trails.PlayableInset = 0
	cfg.Trails.SeedTilesPerTrail = 1
	return cfg
}

func TestBuildFirstWriterKeepsTrailID(t *testing.T) {
	shape := mustShape(t, 7, 1)
	in := stripInputs(shape.Size)
	in.Water[6] = hydrology.WaterStream
	in.Moisture[3] = 0.9

	var metrics SearchMetrics
	plan, err := Build(shape, in, stripConfig(), metrics.Profiler())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(plan.Seeds, []int{0, 4}) {
		t.Fatalf("seeds = %v, want [0 4]", plan.Seeds)
	}
	wantReq := []RouteRequest{
		{Kind: KindSeedToWater, SeedIndex: 0, EndpointIndex: 6},
		{Kind: KindSeedToWater, SeedIndex: 4, EndpointIndex: 6},
	}
	if !reflect.DeepEqual(plan.Requests, wantReq) {
		t.Fatalf("requests = %+v", plan.Requests)
	}
	if plan.Endpoints.MissingRidge != 2 || plan.Endpoints.MissingWater != 0 {
		t.Fatalf("endpoint stats = %+v", plan.Endpoints)
	}
	if len(plan.Trails) != 2 || plan.Skipped != 0 {
		t.Fatalf("trails=%d skipped=%d", len(plan.Trails), plan.Skipped)
	}
	for i := 0; i < shape.Size; i++ {
		if !plan.GameTrail[i] || plan.GameTrailID[i] != 0 {
			t.Fatalf("tile %d trail=%v id=%d, want first trail", i, plan.GameTrail[i], plan.GameTrailID[i])
		}
	}
	snap := metrics.Snapshot()
	if snap.RoutesFound != 2 || snap.PathTiles != 10 || snap.NodesExpanded == 0 {
		t.Fatalf("metrics = %+v", snap)
	}
	metrics.Reset()
	if metrics.Snapshot() != (MetricsSnapshot{}) {
		t.Fatal("Reset left counters behind")
	}
}

func TestBuildSkipsUnreachableRequests(t *testing.T) {
	shape := mustShape(t, 7, 1)
	in := stripInputs(shape.Size)
	in.Water[6] = hydrology.WaterStream
	in.Water[5] = hydrology.WaterLake
	in.Moisture[3] = 0.9

	var metrics SearchMetrics
	plan, err := Build(shape, in, stripConfig(), metrics.Profiler())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Requests) != 2 || plan.Skipped != 2 || len(plan.Trails) != 0 {
		t.Fatalf("requests=%d skipped=%d trails=%d", len(plan.Requests), plan.Skipped, len(plan.Trails))
	}
	for i, id := range plan.GameTrailID {
		if id != -1 || plan.GameTrail[i] {
			t.Fatalf("tile %d marked without a trail", i)
		}
	}
	if metrics.Snapshot().RoutesSkipped != 2 {
		t.Fatalf("metrics = %+v", metrics.Snapshot())
	}
}

func TestBuildRejectsMismatchedInputs(t *testing.T) {
	shape := mustShape(t, 3, 1)
	in := stripInputs(3)
	in.Obstruction = in.Obstruction[:2]
	if _, err := Build(shape, in, stripConfig(), nil); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestSelectSeedsTopPerComponent(t *testing.T) {
	shape := mustShape(t, 6, 1)
	in := stripInputs(shape.Size)
	in.Moisture = []float64{0.3, 0.1, 0.1, 0.9, 0.2, 0.4}
	cfg := stripConfig().Trails
	cfg.SeedTilesPerTrail = 2
	cfg.SeedWaterProxWeight = 0

	got := SelectSeeds(shape, in, 8, cfg)
	if want := []int{1, 2, 4, 5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("seeds = %v, want %v", got, want)
	}

	square := mustShape(t, 4, 4)
	cfg.SeedTilesPerTrail = 1
	cfg.PlayableInset = 1
	got = SelectSeeds(square, stripInputs(square.Size), 8, cfg)
	if want := []int{square.Index(1, 1)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("inset seeds = %v, want %v", got, want)
	}
}

func TestSelectEndpointsBreaksTiesRowMajor(t *testing.T) {
	shape := mustShape(t, 5, 5)
	in := stripInputs(shape.Size)
	for _, p := range [][2]int{{4, 2}, {0, 2}, {2, 4}} {
		in.Water[shape.Index(p[0], p[1])] = hydrology.WaterStream
	}
	in.Landform[shape.Index(2, 2)] = terrain.LandformRidge
	in.Landform[shape.Index(3, 3)] = terrain.LandformRidge

	seed := shape.Index(2, 2)
	reqs, stats := SelectEndpoints(shape, in, []int{seed}, stripConfig().Trails)
	want := []RouteRequest{
		{Kind: KindSeedToWater, SeedIndex: seed, EndpointIndex: shape.Index(0, 2)},
		{Kind: KindSeedToRidge, SeedIndex: seed, EndpointIndex: shape.Index(3, 3)},
	}
	if !reflect.DeepEqual(reqs, want) {
		t.Fatalf("requests = %+v, want %+v", reqs, want)
	}
	if stats.WaterCandidates != 3 || stats.RidgeCandidates != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestBuildCostField(t *testing.T) {
	shape := mustShape(t, 5, 1)
	in := stripInputs(shape.Size)
	in.Slope[1] = 0.25
	in.Moisture[1] = 0.7
	in.Obstruction[1] = 0.5
	in.Water[2] = hydrology.WaterLake
	in.Landform[3] = terrain.LandformRidge
	in.Water[3] = hydrology.WaterMarsh

	cfg := stripConfig().Trails
	cfg.PlayableInset = 0
	cfg.StreamProxWeight = 0
	cfg.RidgeWeight = 5
	dist := []int32{4, 4, 4, 4, 4}

	cost := BuildCostField(shape, in, dist, cfg)
	want1 := 1 + cfg.SlopeWeight*0.5 + cfg.MoistureWeight*0.5 + cfg.ObstructionWeight*0.5
	if math.Abs(cost[1]-want1) > 1e-9 {
		t.Fatalf("cost[1] = %v, want %v", cost[1], want1)
	}
	if cost[2] != Impassable {
		t.Fatalf("lake cost = %v", cost[2])
	}
	if want := math.Max(cfg.MinTileCost, 1-5+cfg.MarshWeight); cost[3] != want {
		t.Fatalf("ridge marsh cost = %v, want %v", cost[3], want)
	}

	cfg.PlayableInset = 1
	cost = BuildCostField(shape, in, dist, cfg)
	if cost[0] != Impassable || cost[4] != Impassable {
		t.Fatalf("border tiles should be impassable: %v", cost)
	}
}
