package config

import (
	"fmt"
	"math"
	"strings"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate rejects malformed or out-of-range parameters and normalises enum
// values in place. It runs before any stage touches the grid.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return invalid("grid dimensions must be positive")
	}

	if err := c.Terrain.validate(); err != nil {
		return err
	}
	if err := c.Ecology.validate(); err != nil {
		return err
	}

	if err := nonNegative(
		"flow.minDropThreshold", c.Flow.MinDropThreshold,
		"flow.tieEps", c.Flow.TieEps,
		"watershed.hEps", c.Watershed.HEps,
		"watershed.persistenceMin", c.Watershed.PersistenceMin,
	); err != nil {
		return err
	}
	spill, err := normaliseEnum("watershed.unresolvedSpill", c.Watershed.UnresolvedSpill, SpillNaN, SpillGridExtreme)
	if err != nil {
		return err
	}
	c.Watershed.UnresolvedSpill = spill

	if err := c.Lakes.validate(); err != nil {
		return err
	}
	if err := nonNegative(
		"streams.accumThreshold", c.Streams.AccumThreshold,
		"streams.minSlopeThreshold", c.Streams.MinSlopeThreshold,
	); err != nil {
		return err
	}
	if c.Streams.AccumThreshold > 1 {
		return invalid("streams.accumThreshold must be <= 1")
	}
	if err := c.Coherence.validate(); err != nil {
		return err
	}
	if err := c.Moisture.validate(); err != nil {
		return err
	}
	if err := c.Trails.validate(); err != nil {
		return err
	}
	return c.Passability.validate()
}

func (t *TerrainConfig) validate() error {
	if t.Octaves <= 0 {
		return invalid("terrain.octaves must be positive")
	}
	if err := positive(
		"terrain.frequency", t.Frequency,
		"terrain.amplitude", t.Amplitude,
		"terrain.persistence", t.Persistence,
		"terrain.lacunarity", t.Lacunarity,
		"terrain.cellSize", t.CellSize,
	); err != nil {
		return err
	}
	return nonNegative(
		"terrain.landformRelief", t.LandformRelief,
		"terrain.flatSlope", t.FlatSlope,
	)
}

func (e *EcologyConfig) validate() error {
	if err := positive("ecology.treeFrequency", e.TreeFrequency); err != nil {
		return err
	}
	return unitInterval(
		"ecology.treeLineHeight", e.TreeLineHeight,
		"ecology.bogMoisture", e.BogMoisture,
		"ecology.obstructionBase", e.ObstructionBase,
	)
}

func (l *LakeConfig) validate() error {
	if err := nonNegative(
		"lakes.flatSlopeThreshold", l.FlatSlopeThreshold,
		"lakes.growHeightDelta", l.GrowHeightDelta,
		"lakes.sinkPersistenceMin", l.SinkPersistenceMin,
	); err != nil {
		return err
	}
	if err := unitInterval("lakes.accumThreshold", l.AccumThreshold); err != nil {
		return err
	}
	if l.GrowSteps < 0 {
		return invalid("lakes.growSteps cannot be negative")
	}
	if l.SinkMinInflow < 0 || l.SinkMinBasinTiles < 0 {
		return invalid("lakes sink gates cannot be negative")
	}
	policy, err := normaliseEnum("lakes.unresolvedPolicy", l.UnresolvedPolicy, UnresolvedDeny, UnresolvedAllowWithStrictGates)
	if err != nil {
		return err
	}
	l.UnresolvedPolicy = policy
	return nil
}

func (c *CoherenceConfig) validate() error {
	if c.MicroLakeMaxSize < 0 {
		return invalid("coherence.microLakeMaxSize cannot be negative")
	}
	if c.MaxBridgeDistance < 0 {
		return invalid("coherence.maxBridgeDistance cannot be negative")
	}
	if err := nonNegative(
		"coherence.bridgeHeightDelta", c.BridgeHeightDelta,
		"coherence.boundaryEps", c.BoundaryEps,
	); err != nil {
		return err
	}
	policy, err := normaliseEnum("coherence.microLakePolicy", c.MicroLakePolicy, MicroLakeRemove, MicroLakeMerge, MicroLakeKeep)
	if err != nil {
		return err
	}
	c.MicroLakePolicy = policy
	return nil
}

func (m *MoistureConfig) validate() error {
	if err := nonNegative(
		"moisture.accumWeight", m.AccumWeight,
		"moisture.flatWeight", m.FlatWeight,
		"moisture.proximityWeight", m.ProximityWeight,
		"moisture.marshSlopeThreshold", m.MarshSlopeThreshold,
	); err != nil {
		return err
	}
	if m.AccumStart < 0 || m.AccumStart >= 1 {
		return invalid("moisture.accumStart must be in [0,1)")
	}
	if err := positive("moisture.flatnessThreshold", m.FlatnessThreshold); err != nil {
		return err
	}
	if m.WaterProxMaxDist <= 0 || m.StreamProxMaxDist <= 0 {
		return invalid("moisture proximity distances must be positive")
	}
	if err := unitInterval("moisture.marshMoistureThreshold", m.MarshMoistureThreshold); err != nil {
		return err
	}
	if err := unitInterval("moisture.retention.weight", m.Retention.Weight); err != nil {
		return err
	}
	if err := positive("moisture.retention.depthScale", m.Retention.DepthScale); err != nil {
		return err
	}
	mode, err := normaliseEnum("moisture.retention.mode", m.Retention.Mode, RetentionRaw, RetentionMinMax, RetentionQuantile)
	if err != nil {
		return err
	}
	m.Retention.Mode = mode
	return nil
}

func (t *TrailConfig) validate() error {
	if t.PlayableInset < 0 {
		return invalid("trails.playableInset cannot be negative")
	}
	if t.SeedTilesPerTrail <= 0 {
		return invalid("trails.seedTilesPerTrail must be positive")
	}
	if t.StreamProxMaxDist <= 0 {
		return invalid("trails.streamProxMaxDist must be positive")
	}
	if err := unitInterval(
		"trails.seedMaxMoisture", t.SeedMaxMoisture,
		"trails.streamEndpointAccumThreshold", t.StreamEndpointAccumThreshold,
	); err != nil {
		return err
	}
	if t.MoistureStart < 0 || t.MoistureStart >= 1 {
		return invalid("trails.moistureStart must be in [0,1)")
	}
	if err := nonNegative(
		"trails.seedMaxSlope", t.SeedMaxSlope,
		"trails.seedFirmnessWeight", t.SeedFirmnessWeight,
		"trails.seedWaterProxWeight", t.SeedWaterProxWeight,
		"trails.ridgeEndpointMaxSlope", t.RidgeEndpointMaxSlope,
		"trails.slopeWeight", t.SlopeWeight,
		"trails.moistureWeight", t.MoistureWeight,
		"trails.obstructionWeight", t.ObstructionWeight,
		"trails.ridgeWeight", t.RidgeWeight,
		"trails.streamProxWeight", t.StreamProxWeight,
		"trails.streamCrossWeight", t.StreamCrossWeight,
		"trails.marshWeight", t.MarshWeight,
		"trails.tieEps", t.TieEps,
	); err != nil {
		return err
	}
	return positive(
		"trails.slopeScale", t.SlopeScale,
		"trails.minTileCost", t.MinTileCost,
		"trails.diagWeight", t.DiagWeight,
	)
}

func (p *PassabilityConfig) validate() error {
	if err := unitInterval(
		"passability.suctionBogMoisture", p.SuctionBogMoisture,
		"passability.openBogMaxTreeDensity", p.OpenBogMaxTreeDensity,
	); err != nil {
		return err
	}
	if err := nonNegative(
		"passability.suctionBogMaxSlope", p.SuctionBogMaxSlope,
		"passability.moveCostObstructionMax", p.MoveCostObstructionMax,
		"passability.moveCostMoistureMax", p.MoveCostMoistureMax,
	); err != nil {
		return err
	}
	if err := positive(
		"passability.steepBlockDelta", p.SteepBlockDelta,
		"passability.steepDifficultDelta", p.SteepDifficultDelta,
		"passability.marshMultiplier", p.MarshMultiplier,
		"passability.openBogMultiplier", p.OpenBogMultiplier,
		"passability.trailDiscount", p.TrailDiscount,
	); err != nil {
		return err
	}
	if p.SteepDifficultDelta > p.SteepBlockDelta {
		return invalid("passability.steepDifficultDelta must be <= steepBlockDelta")
	}
	return nil
}

// pairs are (name, value) alternating.
func nonNegative(pairs ...any) error {
	return checkPairs(pairs, func(v float64) bool { return v >= 0 }, "cannot be negative")
}

func positive(pairs ...any) error {
	return checkPairs(pairs, func(v float64) bool { return v > 0 }, "must be positive")
}

func unitInterval(pairs ...any) error {
	return checkPairs(pairs, func(v float64) bool { return v >= 0 && v <= 1 }, "must be in [0,1]")
}

func checkPairs(pairs []any, ok func(float64) bool, reason string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		name := pairs[i].(string)
		v := pairs[i+1].(float64)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("%s must be finite", name)
		}
		if !ok(v) {
			return invalid("%s %s", name, reason)
		}
	}
	return nil
}

func normaliseEnum(name, value string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", invalid("%s %q is not one of %s", name, value, strings.Join(allowed, ", "))
}
