package trails

import (
	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/terrain"
)

// Impassable is the cost assigned to tiles a trail may never enter.
const Impassable = 1e9

// BuildCostField scores every tile for trail routing. Lakes and tiles
// outside the playable interior are Impassable; every other tile costs at
// least cfg.MinTileCost.
func BuildCostField(shape grid.Shape, in *Inputs, distStream []int32, cfg config.TrailConfig) []float64 {
	cost := make([]float64, shape.Size)
	for i := range cost {
		x, y := shape.Coord(i)
		water := in.Water[i]
		if water == hydrology.WaterLake || !shape.Interior(x, y, cfg.PlayableInset) {
			cost[i] = Impassable
			continue
		}

		c := 1 +
			cfg.SlopeWeight*clamp01(in.Slope[i]/cfg.SlopeScale) +
			cfg.MoistureWeight*clamp01((in.Moisture[i]-cfg.MoistureStart)/(1-cfg.MoistureStart)) +
			cfg.ObstructionWeight*in.Obstruction[i] -
			cfg.StreamProxWeight*clamp01(1-float64(distStream[i])/float64(cfg.StreamProxMaxDist))
		if in.Landform[i] == terrain.LandformRidge {
			c -= cfg.RidgeWeight
		}
		switch water {
		case hydrology.WaterStream:
			c += cfg.StreamCrossWeight
		case hydrology.WaterMarsh:
			c += cfg.MarshWeight
		}
		if c < cfg.MinTileCost {
			c = cfg.MinTileCost
		}
		cost[i] = c
	}
	return cost
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
