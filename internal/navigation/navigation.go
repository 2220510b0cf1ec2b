package navigation

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/terrain"
)

// Inputs are the upstream fields navigation reads.
type Inputs struct {
	Height      []float64
	Slope       []float64
	Landform    []terrain.Landform
	Moisture    []float64
	Water       []hydrology.WaterClass
	Obstruction []float64
	TreeDensity []float64
	Biome       []terrain.Biome
	GameTrail   []bool
	GameTrailID []int32
}

func (in *Inputs) validate(shape grid.Shape) error {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"height", len(in.Height)},
		{"slope", len(in.Slope)},
		{"landform", len(in.Landform)},
		{"moisture", len(in.Moisture)},
		{"water", len(in.Water)},
		{"obstruction", len(in.Obstruction)},
		{"treeDensity", len(in.TreeDensity)},
		{"biome", len(in.Biome)},
		{"gameTrail", len(in.GameTrail)},
		{"gameTrailId", len(in.GameTrailID)},
	} {
		if err := grid.CheckLength(stageNavigation, m.name, m.n, shape.Size); err != nil {
			return err
		}
	}
	return nil
}

// Followable flags, in export order.
type Followable uint8

const (
	FollowStream Followable = 1 << iota
	FollowRidge
	FollowGameTrail
	FollowShore
)

var followNames = []struct {
	flag Followable
	name string
}{
	{FollowStream, "stream"},
	{FollowRidge, "ridge"},
	{FollowGameTrail, "game_trail"},
	{FollowShore, "shore"},
}

// Names lists the set flags in stream, ridge, game_trail, shore order.
func (f Followable) Names() []string {
	names := []string{}
	for _, fn := range followNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

// Navigation holds per-tile movement data.
type Navigation struct {
	shape       grid.Shape
	Passability []Packed
	CliffEdge   []CliffEdge
	MoveCost    []float64
	Followable  []Followable
	GameTrailID []int32
}

// Derive evaluates every directed move and the per-tile movement cost.
func Derive(shape grid.Shape, in *Inputs, cfg config.PassabilityConfig) (*Navigation, error) {
	if err := in.validate(shape); err != nil {
		return nil, err
	}
	nav := &Navigation{
		shape:       shape,
		Passability: make([]Packed, shape.Size),
		CliffEdge:   make([]CliffEdge, shape.Size),
		MoveCost:    make([]float64, shape.Size),
		Followable:  make([]Followable, shape.Size),
		GameTrailID: in.GameTrailID,
	}
	for i := 0; i < shape.Size; i++ {
		var dirs [8]Passability
		for _, d := range grid.Dirs8 {
			p, cliff := edgePassability(shape, in, i, d, cfg)
			dirs[d] = p
			if cliff {
				nav.CliffEdge[i] |= 1 << d
			}
		}
		nav.Passability[i] = Pack(dirs)
		nav.MoveCost[i] = MoveCost(in.Obstruction[i], in.Moisture[i], in.Water[i] == hydrology.WaterMarsh,
			in.Biome[i] == terrain.BiomeBog && in.TreeDensity[i] <= cfg.OpenBogMaxTreeDensity, in.GameTrail[i], cfg)
		nav.Followable[i] = followable(shape, in, i)
	}
	return nav, nil
}

// edgePassability applies the move rules in order; the first match wins.
// The second result flags a cliff edge.
func edgePassability(shape grid.Shape, in *Inputs, i int, d grid.Dir8, cfg config.PassabilityConfig) (Passability, bool) {
	n, ok := shape.Neighbor(i, d)
	switch {
	case !ok:
		return Blocked, false
	case in.Water[n] == hydrology.WaterLake:
		return Blocked, false
	case in.Moisture[i] >= cfg.SuctionBogMoisture && in.Slope[i] <= cfg.SuctionBogMaxSlope:
		return Difficult, false
	}
	delta := math.Abs(in.Height[n] - in.Height[i])
	switch {
	case delta >= cfg.SteepBlockDelta:
		return Blocked, true
	case delta >= cfg.SteepDifficultDelta:
		return Difficult, false
	default:
		return Passable, false
	}
}

// MoveCost is the base cost of crossing a tile. Multipliers compose.
func MoveCost(obstruction, moisture float64, marsh, openBog, gameTrail bool, cfg config.PassabilityConfig) float64 {
	c := 1 + clamp(obstruction, 0, cfg.MoveCostObstructionMax) + clamp(moisture, 0, cfg.MoveCostMoistureMax)
	if marsh {
		c *= cfg.MarshMultiplier
	}
	if openBog {
		c *= cfg.OpenBogMultiplier
	}
	if gameTrail {
		c *= cfg.TrailDiscount
	}
	return c
}

func followable(shape grid.Shape, in *Inputs, i int) Followable {
	var f Followable
	if in.Water[i] == hydrology.WaterStream {
		f |= FollowStream
	}
	if in.Landform[i] == terrain.LandformRidge {
		f |= FollowRidge
	}
	if in.GameTrail[i] {
		f |= FollowGameTrail
	}
	if in.Water[i] != hydrology.WaterLake {
		for _, d := range grid.Dirs8 {
			if n, ok := shape.Neighbor(i, d); ok && in.Water[n] == hydrology.WaterLake {
				f |= FollowShore
				break
			}
		}
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
