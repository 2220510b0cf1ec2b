package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Unresolved spill policies for watershed lineages that never merge.
const (
	SpillNaN         = "nan"
	SpillGridExtreme = "grid_extreme"
)

// Lake admission policies for sinks whose basin lineage is unresolved.
const (
	UnresolvedDeny                 = "deny"
	UnresolvedAllowWithStrictGates = "allow_with_strict_gates"
)

// Micro-lake handling modes for the coherence pass.
const (
	MicroLakeRemove = "remove"
	MicroLakeMerge  = "merge"
	MicroLakeKeep   = "keep"
)

// Retention normalisation modes for the moisture blend.
const (
	RetentionRaw      = "raw"
	RetentionMinMax   = "minmax"
	RetentionQuantile = "quantile"
)

// Config captures every tunable of a generation run. Identical configs
// reproduce identical outputs.
type Config struct {
	Grid        GridConfig        `json:"grid" yaml:"grid"`
	Terrain     TerrainConfig     `json:"terrain" yaml:"terrain"`
	Ecology     EcologyConfig     `json:"ecology" yaml:"ecology"`
	Flow        FlowConfig        `json:"flow" yaml:"flow"`
	Watershed   WatershedConfig   `json:"watershed" yaml:"watershed"`
	Lakes       LakeConfig        `json:"lakes" yaml:"lakes"`
	Streams     StreamConfig      `json:"streams" yaml:"streams"`
	Coherence   CoherenceConfig   `json:"coherence" yaml:"coherence"`
	Moisture    MoistureConfig    `json:"moisture" yaml:"moisture"`
	Trails      TrailConfig       `json:"trails" yaml:"trails"`
	Passability PassabilityConfig `json:"passability" yaml:"passability"`
}

// GridConfig sets the grid dimensions and the run seed.
type GridConfig struct {
	Width  int   `json:"width" yaml:"width"`
	Height int   `json:"height" yaml:"height"`
	Seed   int64 `json:"seed" yaml:"seed"`
}

// TerrainConfig shapes the fractal height field and landform thresholds.
type TerrainConfig struct {
	Frequency      float64 `json:"frequency" yaml:"frequency"`
	Amplitude      float64 `json:"amplitude" yaml:"amplitude"`             // metres between lowest and highest tile
	Octaves        int     `json:"octaves" yaml:"octaves"`
	Persistence    float64 `json:"persistence" yaml:"persistence"`
	Lacunarity     float64 `json:"lacunarity" yaml:"lacunarity"`
	CellSize       float64 `json:"cellSize" yaml:"cell_size"`             // metres per tile edge
	LandformRelief float64 `json:"landformRelief" yaml:"landform_relief"` // metres above/below the neighbour mean for ridge/basin
	FlatSlope      float64 `json:"flatSlope" yaml:"flat_slope"`
}

// EcologyConfig drives tree density, obstruction and biome assignment.
type EcologyConfig struct {
	TreeFrequency   float64 `json:"treeFrequency" yaml:"tree_frequency"`
	TreeLineHeight  float64 `json:"treeLineHeight" yaml:"tree_line_height"` // fraction of amplitude
	BogMoisture     float64 `json:"bogMoisture" yaml:"bog_moisture"`
	ObstructionBase float64 `json:"obstructionBase" yaml:"obstruction_base"`
}

// FlowConfig tunes steepest-descent routing.
type FlowConfig struct {
	MinDropThreshold float64 `json:"minDropThreshold" yaml:"min_drop_threshold"`
	TieEps           float64 `json:"tieEps" yaml:"tie_eps"`
}

// WatershedConfig controls basin and peak persistence analysis.
type WatershedConfig struct {
	HEps            float64 `json:"hEps" yaml:"h_eps"`
	PersistenceMin  float64 `json:"persistenceMin" yaml:"persistence_min"`
	UnresolvedSpill string  `json:"unresolvedSpill" yaml:"unresolved_spill"`
}

// LakeConfig holds lake candidate, growth and sink admission gates.
type LakeConfig struct {
	FlatSlopeThreshold float64 `json:"flatSlopeThreshold" yaml:"flat_slope_threshold"`
	AccumThreshold     float64 `json:"accumThreshold" yaml:"accum_threshold"`
	GrowSteps          int     `json:"growSteps" yaml:"grow_steps"`
	GrowHeightDelta    float64 `json:"growHeightDelta" yaml:"grow_height_delta"`
	SinkPersistenceMin float64 `json:"sinkPersistenceMin" yaml:"sink_persistence_min"`
	SinkMinInflow      int     `json:"sinkMinInflow" yaml:"sink_min_inflow"`
	SinkMinBasinTiles  int     `json:"sinkMinBasinTiles" yaml:"sink_min_basin_tiles"`
	UnresolvedPolicy   string  `json:"unresolvedPolicy" yaml:"unresolved_policy"`
}

// StreamConfig holds stream candidate thresholds.
type StreamConfig struct {
	AccumThreshold    float64 `json:"accumThreshold" yaml:"accum_threshold"`
	MinSlopeThreshold float64 `json:"minSlopeThreshold" yaml:"min_slope_threshold"`
}

// CoherenceConfig controls the lake cleanup pass.
type CoherenceConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	MicroLakeMaxSize  int     `json:"microLakeMaxSize" yaml:"micro_lake_max_size"`
	MicroLakePolicy   string  `json:"microLakePolicy" yaml:"micro_lake_policy"`
	MaxBridgeDistance int     `json:"maxBridgeDistance" yaml:"max_bridge_distance"`
	BridgeHeightDelta float64 `json:"bridgeHeightDelta" yaml:"bridge_height_delta"`
	BoundaryEps       float64 `json:"boundaryEps" yaml:"boundary_eps"`
}

// MoistureConfig weights the moisture terms and marsh thresholds.
type MoistureConfig struct {
	AccumWeight            float64         `json:"accumWeight" yaml:"accum_weight"`
	FlatWeight             float64         `json:"flatWeight" yaml:"flat_weight"`
	ProximityWeight        float64         `json:"proximityWeight" yaml:"proximity_weight"`
	AccumStart             float64         `json:"accumStart" yaml:"accum_start"`
	FlatnessThreshold      float64         `json:"flatnessThreshold" yaml:"flatness_threshold"`
	WaterProxMaxDist       int             `json:"waterProxMaxDist" yaml:"water_prox_max_dist"`
	StreamProxMaxDist      int             `json:"streamProxMaxDist" yaml:"stream_prox_max_dist"`
	MarshMoistureThreshold float64         `json:"marshMoistureThreshold" yaml:"marsh_moisture_threshold"`
	MarshSlopeThreshold    float64         `json:"marshSlopeThreshold" yaml:"marsh_slope_threshold"`
	Retention              RetentionConfig `json:"retention" yaml:"retention"`
}

// RetentionConfig blends basin depth into moisture.
type RetentionConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Mode       string  `json:"mode" yaml:"mode"`
	DepthScale float64 `json:"depthScale" yaml:"depth_scale"`
}

// TrailConfig covers seed and endpoint selection and the trail cost field.
type TrailConfig struct {
	PlayableInset                int     `json:"playableInset" yaml:"playable_inset"`
	SeedMaxMoisture              float64 `json:"seedMaxMoisture" yaml:"seed_max_moisture"`
	SeedMaxSlope                 float64 `json:"seedMaxSlope" yaml:"seed_max_slope"`
	SeedFirmnessWeight           float64 `json:"seedFirmnessWeight" yaml:"seed_firmness_weight"`
	SeedWaterProxWeight          float64 `json:"seedWaterProxWeight" yaml:"seed_water_prox_weight"`
	SeedTilesPerTrail            int     `json:"seedTilesPerTrail" yaml:"seed_tiles_per_trail"`
	StreamEndpointAccumThreshold float64 `json:"streamEndpointAccumThreshold" yaml:"stream_endpoint_accum_threshold"`
	RidgeEndpointMaxSlope        float64 `json:"ridgeEndpointMaxSlope" yaml:"ridge_endpoint_max_slope"`

	SlopeWeight        float64 `json:"slopeWeight" yaml:"slope_weight"`
	SlopeScale         float64 `json:"slopeScale" yaml:"slope_scale"`
	MoistureWeight     float64 `json:"moistureWeight" yaml:"moisture_weight"`
	MoistureStart      float64 `json:"moistureStart" yaml:"moisture_start"`
	ObstructionWeight  float64 `json:"obstructionWeight" yaml:"obstruction_weight"`
	RidgeWeight        float64 `json:"ridgeWeight" yaml:"ridge_weight"`
	StreamProxWeight   float64 `json:"streamProxWeight" yaml:"stream_prox_weight"`
	StreamProxMaxDist  int     `json:"streamProxMaxDist" yaml:"stream_prox_max_dist"`
	StreamCrossWeight  float64 `json:"streamCrossWeight" yaml:"stream_cross_weight"`
	MarshWeight        float64 `json:"marshWeight" yaml:"marsh_weight"`
	MinTileCost        float64 `json:"minTileCost" yaml:"min_tile_cost"`
	DiagWeight         float64 `json:"diagWeight" yaml:"diag_weight"`
	TieEps             float64 `json:"tieEps" yaml:"tie_eps"`
}

// PassabilityConfig sets edge passability rules and move cost factors.
type PassabilityConfig struct {
	SuctionBogMoisture     float64 `json:"suctionBogMoisture" yaml:"suction_bog_moisture"`
	SuctionBogMaxSlope     float64 `json:"suctionBogMaxSlope" yaml:"suction_bog_max_slope"`
	SteepBlockDelta        float64 `json:"steepBlockDelta" yaml:"steep_block_delta"`
	SteepDifficultDelta    float64 `json:"steepDifficultDelta" yaml:"steep_difficult_delta"`
	MoveCostObstructionMax float64 `json:"moveCostObstructionMax" yaml:"move_cost_obstruction_max"`
	MoveCostMoistureMax    float64 `json:"moveCostMoistureMax" yaml:"move_cost_moisture_max"`
	MarshMultiplier        float64 `json:"marshMultiplier" yaml:"marsh_multiplier"`
	OpenBogMultiplier      float64 `json:"openBogMultiplier" yaml:"open_bog_multiplier"`
	OpenBogMaxTreeDensity  float64 `json:"openBogMaxTreeDensity" yaml:"open_bog_max_tree_density"`
	TrailDiscount          float64 `json:"trailDiscount" yaml:"trail_discount"`
}

// Load reads configuration from a JSON or YAML file (chosen by extension).
// An empty path returns defaults. The result is validated and normalised.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(data, isYAML(path), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Decode overlays data onto cfg. Fields missing from data keep their
// current values.
func Decode(data []byte, asYAML bool, cfg *Config) error {
	if asYAML {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return nil
}

// Dump writes cfg to path, as YAML for .yaml/.yml and JSON otherwise.
func Dump(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Default returns the baseline configuration used when no file is given.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Width:  128,
			Height: 128,
			Seed:   1337,
		},
		Terrain: TerrainConfig{
			Frequency:      0.035,
			Amplitude:      120,
			Octaves:        4,
			Persistence:    0.5,
			Lacunarity:     2.0,
			CellSize:       10,
			LandformRelief: 0.8,
			FlatSlope:      0.05,
		},
		Ecology: EcologyConfig{
			TreeFrequency:   0.08,
			TreeLineHeight:  0.8,
			BogMoisture:     0.75,
			ObstructionBase: 0.1,
		},
		Flow: FlowConfig{
			MinDropThreshold: 0,
			TieEps:           1e-9,
		},
		Watershed: WatershedConfig{
			HEps:            1e-9,
			PersistenceMin:  0.5,
			UnresolvedSpill: SpillGridExtreme,
		},
		Lakes: LakeConfig{
			FlatSlopeThreshold: 0.08,
			AccumThreshold:     0.45,
			GrowSteps:          2,
			GrowHeightDelta:    0.4,
			SinkPersistenceMin: 1.0,
			SinkMinInflow:      12,
			SinkMinBasinTiles:  16,
			UnresolvedPolicy:   UnresolvedAllowWithStrictGates,
		},
		Streams: StreamConfig{
			AccumThreshold:    0.55,
			MinSlopeThreshold: 0.01,
		},
		Coherence: CoherenceConfig{
			Enabled:           true,
			MicroLakeMaxSize:  2,
			MicroLakePolicy:   MicroLakeMerge,
			MaxBridgeDistance: 2,
			BridgeHeightDelta: 0.5,
			BoundaryEps:       0.75,
		},
		Moisture: MoistureConfig{
			AccumWeight:            0.45,
			FlatWeight:             0.25,
			ProximityWeight:        0.30,
			AccumStart:             0.2,
			FlatnessThreshold:      0.15,
			WaterProxMaxDist:       8,
			StreamProxMaxDist:      6,
			MarshMoistureThreshold: 0.7,
			MarshSlopeThreshold:    0.06,
			Retention: RetentionConfig{
				Enabled:    false,
				Weight:     0.25,
				Mode:       RetentionMinMax,
				DepthScale: 5,
			},
		},
		Trails: TrailConfig{
			PlayableInset:                2,
			SeedMaxMoisture:              0.5,
			SeedMaxSlope:                 0.25,
			SeedFirmnessWeight:           0.6,
			SeedWaterProxWeight:          0.4,
			SeedTilesPerTrail:            1,
			StreamEndpointAccumThreshold: 0.6,
			RidgeEndpointMaxSlope:        0.3,
			SlopeWeight:                  3,
			SlopeScale:                   0.5,
			MoistureWeight:               2,
			MoistureStart:                0.4,
			ObstructionWeight:            1.5,
			RidgeWeight:                  0.3,
			StreamProxWeight:             0.2,
			StreamProxMaxDist:            4,
			StreamCrossWeight:            2,
			MarshWeight:                  3,
			MinTileCost:                  0.1,
			DiagWeight:                   1.4142135623730951,
			TieEps:                       1e-9,
		},
		Passability: PassabilityConfig{
			SuctionBogMoisture:     0.85,
			SuctionBogMaxSlope:     0.05,
			SteepBlockDelta:        6,
			SteepDifficultDelta:    3,
			MoveCostObstructionMax: 2,
			MoveCostMoistureMax:    1,
			MarshMultiplier:        1.5,
			OpenBogMultiplier:      1.25,
			OpenBogMaxTreeDensity:  0.2,
			TrailDiscount:          0.7,
		},
	}
}
