package pipeline

import (
	"fmt"
	"io"
	"log"
	"time"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
	"terrainkit/internal/navigation"
	"terrainkit/internal/terrain"
	"terrainkit/internal/trails"
)

// Result is every map produced by one generation run.
type Result struct {
	Config     *config.Config
	Shape      grid.Shape
	Topography *terrain.Topography
	Hydrology  *hydrology.Result
	Ecology    *terrain.Ecology
	Trails     *trails.Plan
	Navigation *navigation.Navigation
	Search     trails.MetricsSnapshot
	Timings    []StageTiming
}

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage   string        `json:"stage"`
	Elapsed time.Duration `json:"elapsedNs"`
}

// NewLogger returns the logger used by the commands.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "terrain ", log.LstdFlags)
}

// Run validates cfg and derives terrain, hydrology, ecology, trails and
// navigation in that order. A nil logger discards output.
func Run(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shape, err := grid.NewShape(cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	res := &Result{Config: cfg, Shape: shape}
	stage := func(name string, fn func() error) error {
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)
		res.Timings = append(res.Timings, StageTiming{Stage: name, Elapsed: elapsed})
		logger.Printf("stage %s completed in %s", name, elapsed)
		return nil
	}

	logger.Printf("generating %dx%d grid with seed %d", shape.Width, shape.Height, cfg.Grid.Seed)
	gen := terrain.NewNoiseGenerator(cfg.Terrain, cfg.Grid.Seed)

	if err := stage("topography", func() error {
		var err error
		res.Topography, err = terrain.DeriveTopography(shape, gen.HeightField(shape), cfg.Terrain)
		return err
	}); err != nil {
		return nil, err
	}

	if err := stage("hydrology", func() error {
		var err error
		res.Hydrology, err = hydrology.Derive(shape, hydrology.Inputs{
			Height:   res.Topography.Height,
			Slope:    res.Topography.Slope,
			Landform: res.Topography.Landform,
		}, cfg)
		return err
	}); err != nil {
		return nil, err
	}
	hy := res.Hydrology
	logger.Printf("hydrology: %d lakes, %d sinks (%d admitted), %d stream sources",
		len(hy.Lakes), hy.Diagnostics.SinkCandidates, hy.Diagnostics.SinksAdmitted, hy.Diagnostics.StreamSources)

	if err := stage("ecology", func() error {
		var err error
		res.Ecology, err = terrain.DeriveEcology(shape, gen.Field(shape, cfg.Ecology.TreeFrequency),
			res.Topography.Height, hy.Moisture, hy.Lake, cfg.Terrain.Amplitude, cfg.Ecology)
		return err
	}); err != nil {
		return nil, err
	}

	var metrics trails.SearchMetrics
	if err := stage("trails", func() error {
		var err error
		res.Trails, err = trails.Build(shape, &trails.Inputs{
			Slope:         res.Topography.Slope,
			Landform:      res.Topography.Landform,
			FlowAccumNorm: hy.FlowAccumNorm,
			Water:         hy.Water,
			Moisture:      hy.Moisture,
			DistWater:     hy.DistWater,
			Obstruction:   res.Ecology.Obstruction,
		}, cfg, metrics.Profiler())
		return err
	}); err != nil {
		return nil, err
	}
	res.Search = metrics.Snapshot()
	logger.Printf("trails: %d seeds, %d requests, %d routed, %d skipped",
		len(res.Trails.Seeds), len(res.Trails.Requests), len(res.Trails.Trails), res.Trails.Skipped)

	if err := stage("navigation", func() error {
		var err error
		res.Navigation, err = navigation.Derive(shape, &navigation.Inputs{
			Height:      res.Topography.Height,
			Slope:       res.Topography.Slope,
			Landform:    res.Topography.Landform,
			Moisture:    hy.Moisture,
			Water:       hy.Water,
			Obstruction: res.Ecology.Obstruction,
			TreeDensity: res.Ecology.TreeDensity,
			Biome:       res.Ecology.Biome,
			GameTrail:   res.Trails.GameTrail,
			GameTrailID: res.Trails.GameTrailID,
		}, cfg.Passability)
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}
