package hydrology

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/terrain"
)

func TestCandidateThresholdsAreInclusive(t *testing.T) {
	shape := mustShape(t, 3, 1)
	slope := []float64{0.08, 0.0800001, 0.08}
	fan := []float64{0.45, 0.45, 0.4499999}
	landform := []terrain.Landform{terrain.LandformBasin, terrain.LandformBasin, terrain.LandformBasin}

	lake := LakeCandidates(shape, slope, fan, landform, config.LakeConfig{FlatSlopeThreshold: 0.08, AccumThreshold: 0.45})
	if want := []bool{true, false, false}; !reflect.DeepEqual(lake, want) {
		t.Fatalf("lake candidates = %v, want %v", lake, want)
	}

	stream := StreamCandidates(shape, []float64{0.55, 0.55, 0.5499}, []float64{0.01, 0.0099, 0.01}, make([]bool, 3), config.StreamConfig{AccumThreshold: 0.55, MinSlopeThreshold: 0.01})
	if want := []bool{true, false, false}; !reflect.DeepEqual(stream, want) {
		t.Fatalf("stream candidates = %v, want %v", stream, want)
	}

	if !IsMarsh(0.7, 0.06, 0.7, 0.06) {
		t.Fatal("marsh thresholds must be inclusive")
	}
}

func TestLakeCandidatesRequireBasin(t *testing.T) {
	shape := mustShape(t, 2, 1)
	lake := LakeCandidates(shape, []float64{0, 0}, []float64{1, 1}, []terrain.Landform{terrain.LandformFlat, terrain.LandformBasin}, config.LakeConfig{AccumThreshold: 0.5})
	if lake[0] || !lake[1] {
		t.Fatalf("lake candidates = %v", lake)
	}
}

func TestGrowLakesUsesComponentMinimum(t *testing.T) {
	shape := mustShape(t, 5, 1)
	h := []float64{0, 0.3, 0.6, 0.9, 5}
	mask := []bool{true, false, false, false, false}

	got := GrowLakes(shape, h, mask, 3, 0.5)
	if want := []bool{true, true, false, false, false}; !reflect.DeepEqual(got, want) {
		t.Fatalf("grown = %v, want %v", got, want)
	}
	if mask[1] {
		t.Fatal("GrowLakes mutated its input")
	}
	if got := GrowLakes(shape, h, mask, 0, 10); !reflect.DeepEqual(got, mask) {
		t.Fatalf("zero steps changed the mask: %v", got)
	}
}

func TestLakeComponentsAssignSurface(t *testing.T) {
	shape := mustShape(t, 4, 1)
	ids, surface, comps := LakeComponents(shape, []float64{2, 1, 9, 4}, []bool{true, true, false, true})
	if len(comps) != 2 {
		t.Fatalf("got %d components", len(comps))
	}
	if want := []int32{0, 0, -1, 1}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if surface[0] != 1 || surface[1] != 1 || surface[3] != 4 || !math.IsNaN(surface[2]) {
		t.Fatalf("surface = %v", surface)
	}
}

func TestTraceStreamsReportsTerminalSinks(t *testing.T) {
	shape := mustShape(t, 5, 1)
	fd := []grid.Dir8{grid.DirE, grid.DirE, grid.DirE, grid.DirNone, grid.DirW}
	candidate := []bool{true, true, true, true, false}

	tr := traceStreams(shape, fd, candidate, make([]bool, 5))
	if tr.sources != 1 {
		t.Fatalf("sources = %d, want 1", tr.sources)
	}
	if want := []bool{true, true, true, false, false}; !reflect.DeepEqual(tr.stream, want) {
		t.Fatalf("stream = %v, want %v", tr.stream, want)
	}
	if !reflect.DeepEqual(tr.sinks, []int{3}) {
		t.Fatalf("sinks = %v, want [3]", tr.sinks)
	}

	lake := []bool{false, false, true, false, false}
	tr = traceStreams(shape, fd, candidate, lake)
	if len(tr.sinks) != 0 || tr.stream[2] || !tr.stream[1] {
		t.Fatalf("walk should stop at the lake: stream=%v sinks=%v", tr.stream, tr.sinks)
	}
}

func TestAdmitSinkGates(t *testing.T) {
	ws := &Watershed{
		BasinMinIdx:      []int32{0, 1, 2},
		BasinSpillH:      []float64{math.NaN(), 3, 120},
		BasinPersistence: []float64{0, 2, 119},
		BasinUnresolved:  []bool{true, false, true},
		basinTiles:       []int32{20, 20, 20},
	}
	base := config.LakeConfig{SinkPersistenceMin: 1, SinkMinInflow: 5, SinkMinBasinTiles: 10, UnresolvedPolicy: config.UnresolvedAllowWithStrictGates}

	tests := []struct {
		name   string
		tile   int
		acc    int32
		mutate func(*config.LakeConfig)
		want   string
	}{
		{name: "admitted", tile: 1, acc: 5},
		{name: "deny unresolved", tile: 0, acc: 50, mutate: func(c *config.LakeConfig) { c.UnresolvedPolicy = config.UnresolvedDeny }, want: RejectUnresolved},
		{name: "unresolved NaN spill fails persistence", tile: 0, acc: 50, want: RejectPersistence},
		{name: "unresolved grid extreme spill fails persistence", tile: 2, acc: 50, want: RejectPersistence},
		{name: "unresolved passes a zero persistence gate", tile: 2, acc: 50, mutate: func(c *config.LakeConfig) { c.SinkPersistenceMin = 0 }},
		{name: "shallow", tile: 1, acc: 50, mutate: func(c *config.LakeConfig) { c.SinkPersistenceMin = 2.5 }, want: RejectPersistence},
		{name: "low inflow", tile: 1, acc: 4, want: RejectInflow},
		{name: "small basin", tile: 1, acc: 50, mutate: func(c *config.LakeConfig) { c.SinkMinBasinTiles = 21 }, want: RejectBasinSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			acc := []int32{tt.acc, tt.acc, tt.acc}
			ok, reason := admitSink(tt.tile, acc, ws, cfg)
			if ok != (tt.want == "") || reason != tt.want {
				t.Fatalf("admitSink = %v,%q want reason %q", ok, reason, tt.want)
			}
		})
	}
}

func coherenceConfig(policy string) config.CoherenceConfig {
	return config.CoherenceConfig{
		Enabled:           true,
		MicroLakeMaxSize:  2,
		MicroLakePolicy:   policy,
		MaxBridgeDistance: 2,
		BridgeHeightDelta: 0.5,
		BoundaryEps:       0.75,
	}
}

// maskFrom parses rows of '#' (lake) and '.' (dry).
func maskFrom(rows ...string) []bool {
	var mask []bool
	for _, r := range rows {
		for _, c := range r {
			mask = append(mask, c == '#')
		}
	}
	return mask
}

func TestApplyCoherenceMicroLakePolicies(t *testing.T) {
	shape := mustShape(t, 5, 5)
	h := make([]float64, shape.Size)
	raw := maskFrom(
		"#....",
		".....",
		"..###",
		"..###",
		"..###",
	)

	tests := []struct {
		policy string
		want   []bool
	}{
		{policy: config.MicroLakeRemove, want: maskFrom(".....", ".....", "..###", "..###", "..###")},
		{policy: config.MicroLakeMerge, want: maskFrom("#....", ".#...", "..###", "..###", "..###")},
		{policy: config.MicroLakeKeep, want: maskFrom("#....", ".#...", "..###", "..###", "..###")},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			got, m, err := ApplyCoherence(shape, h, raw, coherenceConfig(tt.policy))
			if err != nil {
				t.Fatalf("ApplyCoherence: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("mask = %v, want %v", got, tt.want)
			}
			if m.Components != 1 || m.LargestShare != 1 {
				t.Fatalf("metrics = %+v", m)
			}
			if tt.policy == config.MicroLakeMerge && m.MicroMerged != 1 {
				t.Fatalf("merge count = %d", m.MicroMerged)
			}
		})
	}
	if raw[6] {
		t.Fatal("ApplyCoherence mutated its input")
	}
}

func TestApplyCoherenceBridgesShortestGap(t *testing.T) {
	shape := mustShape(t, 5, 2)
	h := make([]float64, shape.Size)
	raw := maskFrom(
		"##.##",
		"##.##",
	)
	got, m, err := ApplyCoherence(shape, h, raw, coherenceConfig(config.MicroLakeRemove))
	if err != nil {
		t.Fatalf("ApplyCoherence: %v", err)
	}
	if want := maskFrom("#####", "##.##"); !reflect.DeepEqual(got, want) {
		t.Fatalf("mask = %v, want %v", got, want)
	}
	if m.Bridges != 1 || m.Components != 1 {
		t.Fatalf("metrics = %+v", m)
	}

	high := append([]float64(nil), h...)
	high[2], high[7] = 3, 3
	got, m, err = ApplyCoherence(shape, high, raw, coherenceConfig(config.MicroLakeRemove))
	if err != nil {
		t.Fatalf("ApplyCoherence: %v", err)
	}
	if m.Bridges != 0 || got[2] || got[7] {
		t.Fatalf("bridged over a ridge: %v %+v", got, m)
	}
}

func TestApplyCoherenceTrimsPerchedTiles(t *testing.T) {
	shape := mustShape(t, 4, 1)
	h := []float64{0, 0, 5, 9}
	cfg := coherenceConfig(config.MicroLakeRemove)
	cfg.MicroLakeMaxSize = 0
	cfg.MaxBridgeDistance = 0

	got, m, err := ApplyCoherence(shape, h, []bool{true, true, true, false}, cfg)
	if err != nil {
		t.Fatalf("ApplyCoherence: %v", err)
	}
	if want := []bool{true, true, false, false}; !reflect.DeepEqual(got, want) {
		t.Fatalf("mask = %v, want %v", got, want)
	}
	if m.ViolationsBefore != 1 || m.ViolationsAfter != 0 || m.Trimmed != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestApplyCoherenceDisabledReturnsRawMask(t *testing.T) {
	shape := mustShape(t, 4, 1)
	raw := []bool{true, false, true, true}
	cfg := coherenceConfig(config.MicroLakeRemove)
	cfg.Enabled = false

	got, m, err := ApplyCoherence(shape, []float64{0, 0, 5, 0}, raw, cfg)
	if err != nil {
		t.Fatalf("ApplyCoherence: %v", err)
	}
	if !reflect.DeepEqual(got, raw) {
		t.Fatalf("mask = %v, want raw %v", got, raw)
	}
	if m.Components != 2 || m.Singletons != 1 || m.ViolationsAfter != m.ViolationsBefore {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestValidateCoherenceReportsViolations(t *testing.T) {
	shape := mustShape(t, 3, 1)
	err := validateCoherence(shape, []float64{0, 0, 0}, []bool{true, false, false}, coherenceConfig(config.MicroLakeRemove))
	var inv *grid.InvariantError
	if !errors.As(err, &inv) || inv.Invariant != "micro-lake" || inv.Index != 0 {
		t.Fatalf("expected micro-lake violation, got %v", err)
	}
}

func TestClassifyWaterPrecedence(t *testing.T) {
	tests := []struct {
		lake, stream, pool, marsh bool
		want                      WaterClass
	}{
		{true, true, true, true, WaterLake},
		{false, true, true, true, WaterStream},
		{false, false, true, true, WaterPool},
		{false, false, false, true, WaterMarsh},
		{false, false, false, false, WaterNone},
	}
	for _, tt := range tests {
		if got := ClassifyWater(tt.lake, tt.stream, tt.pool, tt.marsh); got != tt.want {
			t.Fatalf("ClassifyWater(%v,%v,%v,%v) = %s, want %s", tt.lake, tt.stream, tt.pool, tt.marsh, got, tt.want)
		}
	}
	if WaterMarsh.Wet() || !WaterPool.Wet() {
		t.Fatal("only open water is wet")
	}
}
