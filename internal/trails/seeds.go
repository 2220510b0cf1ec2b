package trails

import (
	"sort"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
)

// SelectSeeds picks trail starting tiles: firm, dry, gentle ground inside
// the playable interior. Eligible tiles are grouped into 8-connected
// components and each component contributes its best SeedTilesPerTrail
// tiles by score, ties going to the lower (y, x). The result is row-major.
func SelectSeeds(shape grid.Shape, in *Inputs, waterProxMaxDist int, cfg config.TrailConfig) []int {
	eligible := make([]bool, shape.Size)
	for i := range eligible {
		x, y := shape.Coord(i)
		eligible[i] = shape.Interior(x, y, cfg.PlayableInset) &&
			in.Water[i] == hydrology.WaterNone &&
			in.Moisture[i] <= cfg.SeedMaxMoisture &&
			in.Slope[i] <= cfg.SeedMaxSlope
	}

	score := func(i int) float64 {
		prox := clamp01(1 - float64(in.DistWater[i])/float64(waterProxMaxDist))
		return cfg.SeedFirmnessWeight*(1-in.Moisture[i]) + cfg.SeedWaterProxWeight*prox
	}

	comps, _ := grid.Components(shape, eligible, grid.Dirs8[:])
	var seeds []int
	for _, c := range comps {
		tiles := append([]int(nil), c.Tiles...)
		sort.Slice(tiles, func(a, b int) bool {
			sa, sb := score(tiles[a]), score(tiles[b])
			if sa != sb {
				return sa > sb
			}
			return tiles[a] < tiles[b]
		})
		if len(tiles) > cfg.SeedTilesPerTrail {
			tiles = tiles[:cfg.SeedTilesPerTrail]
		}
		seeds = append(seeds, tiles...)
	}
	sort.Ints(seeds)
	return seeds
}
