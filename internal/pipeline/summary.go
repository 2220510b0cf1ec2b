package pipeline

import (
	"terrainkit/internal/hydrology"
	"terrainkit/internal/trails"
)

// Summary is the compact description of a run served over HTTP and logged
// by the CLI.
type Summary struct {
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	Seed       int64                  `json:"seed"`
	WaterTiles map[string]int         `json:"waterTiles"`
	Lakes      int                    `json:"lakes"`
	Seeds      int                    `json:"seeds"`
	Requests   int                    `json:"requests"`
	Trails     int                    `json:"trails"`
	Skipped    int                    `json:"skipped"`
	Endpoints  trails.EndpointStats   `json:"endpoints"`
	Hydrology  hydrology.Diagnostics  `json:"hydrology"`
	Search     trails.MetricsSnapshot `json:"search"`
	Timings    []StageTiming          `json:"timings"`
	Digests    map[string]string      `json:"digests"`
}

// Summary collects counts and digests for the run.
func (r *Result) Summary() Summary {
	water := map[string]int{}
	for _, w := range r.Hydrology.Water {
		water[w.String()]++
	}
	return Summary{
		Width:      r.Shape.Width,
		Height:     r.Shape.Height,
		Seed:       r.Config.Grid.Seed,
		WaterTiles: water,
		Lakes:      len(r.Hydrology.Lakes),
		Seeds:      len(r.Trails.Seeds),
		Requests:   len(r.Trails.Requests),
		Trails:     len(r.Trails.Trails),
		Skipped:    r.Trails.Skipped,
		Endpoints:  r.Trails.Endpoints,
		Hydrology:  r.Hydrology.Diagnostics,
		Search:     r.Search,
		Timings:    r.Timings,
		Digests:    r.Digests(),
	}
}
