package terrain

import (
	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

// Biome is the vegetation class of a tile.
type Biome uint8

const (
	BiomeMeadow Biome = iota
	BiomeForest
	BiomeBog
	BiomeAlpine
	BiomeWater
)

func (b Biome) String() string {
	switch b {
	case BiomeMeadow:
		return "meadow"
	case BiomeForest:
		return "forest"
	case BiomeBog:
		return "bog"
	case BiomeAlpine:
		return "alpine"
	case BiomeWater:
		return "water"
	default:
		return "unknown"
	}
}

// Ecology holds the vegetation fields layered over hydrology.
type Ecology struct {
	TreeDensity []float64
	Obstruction []float64
	Biome       []Biome
}

// DeriveEcology combines a tree noise field with moisture and height. Tree
// cover thins towards dry ground and vanishes above the tree line and on lakes.
func DeriveEcology(shape grid.Shape, treeNoise, h, moisture []float64, lake []bool, amplitude float64, cfg config.EcologyConfig) (*Ecology, error) {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"treeNoise", len(treeNoise)},
		{"height", len(h)},
		{"moisture", len(moisture)},
		{"lake", len(lake)},
	} {
		if err := grid.CheckLength("ecology", m.name, m.n, shape.Size); err != nil {
			return nil, err
		}
	}

	treeLine := cfg.TreeLineHeight * amplitude
	eco := &Ecology{
		TreeDensity: make([]float64, shape.Size),
		Obstruction: make([]float64, shape.Size),
		Biome:       make([]Biome, shape.Size),
	}
	for i := 0; i < shape.Size; i++ {
		if lake[i] {
			eco.Biome[i] = BiomeWater
			continue
		}
		wet := 1.0
		if cfg.BogMoisture > 0 {
			wet = clamp01(moisture[i] / cfg.BogMoisture)
		}
		tree := clamp01(treeNoise[i] * (0.4 + 0.6*wet))
		alpine := h[i] >= treeLine
		if alpine {
			tree = 0
		}
		eco.TreeDensity[i] = tree
		eco.Obstruction[i] = clamp01(cfg.ObstructionBase + 0.8*tree)

		switch {
		case alpine:
			eco.Biome[i] = BiomeAlpine
		case moisture[i] >= cfg.BogMoisture:
			eco.Biome[i] = BiomeBog
		case tree >= 0.5:
			eco.Biome[i] = BiomeForest
		default:
			eco.Biome[i] = BiomeMeadow
		}
	}
	return eco, nil
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
