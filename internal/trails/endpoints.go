package trails

import (
	"math"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/terrain"
)

// Route request kinds, emitted per seed in this order.
const (
	KindSeedToWater = "seed_to_water"
	KindSeedToRidge = "seed_to_ridge"
)

// RouteRequest asks for a trail from a seed to an endpoint tile.
type RouteRequest struct {
	Kind          string `json:"kind"`
	SeedIndex     int    `json:"seedIndex"`
	EndpointIndex int    `json:"endpointIndex"`
}

// EndpointStats counts seeds that had no endpoint of a kind.
type EndpointStats struct {
	WaterCandidates int `json:"waterCandidates"`
	RidgeCandidates int `json:"ridgeCandidates"`
	MissingWater    int `json:"missingWater"`
	MissingRidge    int `json:"missingRidge"`
}

// SelectEndpoints pairs every seed with its nearest qualifying stream tile
// and its nearest gentle ridge tile by octile distance. Both kinds must lie
// in the playable interior; equal distances go to the lower (y, x). A kind
// with no candidate is omitted for that seed.
func SelectEndpoints(shape grid.Shape, in *Inputs, seeds []int, cfg config.TrailConfig) ([]RouteRequest, EndpointStats) {
	var water, ridge []int
	for i := 0; i < shape.Size; i++ {
		x, y := shape.Coord(i)
		if !shape.Interior(x, y, cfg.PlayableInset) {
			continue
		}
		if in.Water[i] == hydrology.WaterStream && in.FlowAccumNorm[i] >= cfg.StreamEndpointAccumThreshold {
			water = append(water, i)
		}
		if in.Landform[i] == terrain.LandformRidge && in.Slope[i] <= cfg.RidgeEndpointMaxSlope {
			ridge = append(ridge, i)
		}
	}

	stats := EndpointStats{WaterCandidates: len(water), RidgeCandidates: len(ridge)}
	var requests []RouteRequest
	for _, s := range seeds {
		if e := nearest(shape, s, water); e >= 0 {
			requests = append(requests, RouteRequest{Kind: KindSeedToWater, SeedIndex: s, EndpointIndex: e})
		} else {
			stats.MissingWater++
		}
		if e := nearest(shape, s, ridge); e >= 0 {
			requests = append(requests, RouteRequest{Kind: KindSeedToRidge, SeedIndex: s, EndpointIndex: e})
		} else {
			stats.MissingRidge++
		}
	}
	return requests, stats
}

// nearest scans row-major candidates, so the first strictly closer tile
// wins ties by (y, x).
func nearest(shape grid.Shape, from int, candidates []int) int {
	best, bestDist := -1, math.Inf(1)
	fx, fy := shape.Coord(from)
	for _, c := range candidates {
		if c == from {
			continue
		}
		cx, cy := shape.Coord(c)
		if d := octile(fx-cx, fy-cy); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func octile(dx, dy int) float64 {
	ax, ay := math.Abs(float64(dx)), math.Abs(float64(dy))
	return math.Max(ax, ay) + (math.Sqrt2-1)*math.Min(ax, ay)
}
