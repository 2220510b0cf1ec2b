package hydrology

import (
	"math"
	"reflect"
	"testing"

	"terrainkit/internal/config"
)

func TestWatershedThreeTileScenario(t *testing.T) {
	shape := mustShape(t, 3, 1)
	h := []float64{0.0, 0.2, 0.1}

	tests := []struct {
		policy     string
		spill0     float64
		persist0   float64
		saddlePeak float64
	}{
		{policy: config.SpillNaN, spill0: math.NaN(), persist0: 0, saddlePeak: math.NaN()},
		{policy: config.SpillGridExtreme, spill0: 0.2, persist0: 0.2, saddlePeak: 0},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			ws, err := DeriveWatershed(shape, h, config.WatershedConfig{HEps: 1e-12, PersistenceMin: 0.05, UnresolvedSpill: tt.policy})
			if err != nil {
				t.Fatalf("DeriveWatershed: %v", err)
			}
			if want := []int32{0, 0, 2}; !reflect.DeepEqual(ws.BasinMinIdx, want) {
				t.Fatalf("basinMinIdx = %v, want %v", ws.BasinMinIdx, want)
			}
			if !ws.BasinUnresolved[0] || ws.BasinUnresolved[2] {
				t.Fatalf("unresolved flags = %v", ws.BasinUnresolved)
			}
			if !sameFloat(ws.BasinSpillH[0], tt.spill0) || ws.BasinPersistence[0] != tt.persist0 {
				t.Fatalf("tile 0 spill=%v persistence=%v", ws.BasinSpillH[0], ws.BasinPersistence[0])
			}
			if ws.BasinSpillH[2] != 0.2 {
				t.Fatalf("tile 2 spill = %v, want 0.2", ws.BasinSpillH[2])
			}
			if math.Abs(ws.BasinPersistence[2]-0.1) > 1e-12 || !ws.BasinLike[2] {
				t.Fatalf("tile 2 persistence = %v like=%v", ws.BasinPersistence[2], ws.BasinLike[2])
			}
			if ws.BasinSize(0) != 2 || ws.BasinSize(2) != 1 {
				t.Fatalf("basin sizes = %d,%d", ws.BasinSize(0), ws.BasinSize(2))
			}

			if want := []int32{1, 1, 1}; !reflect.DeepEqual(ws.PeakMaxIdx, want) {
				t.Fatalf("peakMaxIdx = %v, want %v", ws.PeakMaxIdx, want)
			}
			if !ws.PeakUnresolved[1] || !sameFloat(ws.PeakSaddleH[1], tt.saddlePeak) {
				t.Fatalf("peak saddle = %v unresolved=%v", ws.PeakSaddleH[1], ws.PeakUnresolved[1])
			}
			if tt.policy == config.SpillNaN && (ws.BasinLike[0] || ws.RidgeLike[1]) {
				t.Fatal("NaN spill lineages must never be basin or ridge like")
			}
		})
	}
}

func TestWatershedPersistenceIsNonNegative(t *testing.T) {
	shape := mustShape(t, 19, 11)
	for _, policy := range []string{config.SpillNaN, config.SpillGridExtreme} {
		ws, err := DeriveWatershed(shape, hashedHeights(shape, 99), config.WatershedConfig{HEps: 1e-9, UnresolvedSpill: policy})
		if err != nil {
			t.Fatalf("DeriveWatershed: %v", err)
		}
		for i := 0; i < shape.Size; i++ {
			if ws.BasinPersistence[i] < 0 || ws.PeakPersistence[i] < 0 {
				t.Fatalf("%s: tile %d has negative persistence", policy, i)
			}
			if math.IsNaN(ws.BasinPersistence[i]) || math.IsNaN(ws.PeakPersistence[i]) {
				t.Fatalf("%s: tile %d persistence is NaN", policy, i)
			}
			if ws.BasinMinH[i] > ws.PeakMaxH[i] {
				t.Fatalf("%s: tile %d basin minimum above peak maximum", policy, i)
			}
		}
	}
}

func TestWatershedBandsMergeEqualHeights(t *testing.T) {
	shape := mustShape(t, 4, 1)
	h := []float64{1, 1 + 1e-10, 1, 3}
	ws, err := DeriveWatershed(shape, h, config.WatershedConfig{HEps: 1e-9, UnresolvedSpill: config.SpillGridExtreme})
	if err != nil {
		t.Fatalf("DeriveWatershed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if ws.BasinMinIdx[i] != 0 {
			t.Fatalf("tile %d drains to %d, want the lowest index in the band", i, ws.BasinMinIdx[i])
		}
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
