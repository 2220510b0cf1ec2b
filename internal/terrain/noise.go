package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"

	"terrainkit/internal/config"
	"terrainkit/internal/grid"
)

const (
	perlinAlpha = 2
	perlinBeta  = 2
	perlinN     = 1
)

// NoiseGenerator produces repeatable fractal Perlin fields for a seed.
type NoiseGenerator struct {
	cfg    config.TerrainConfig
	seed   int64
	perlin *perlin.Perlin
}

func NewNoiseGenerator(cfg config.TerrainConfig, seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		cfg:    cfg,
		seed:   seed,
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed),
	}
}

// HeightField samples the fractal noise for every tile and rescales it so
// the lowest tile sits at 0 and the highest at the configured amplitude.
func (g *NoiseGenerator) HeightField(shape grid.Shape) []float64 {
	h := g.sample(shape, g.cfg.Frequency)
	rescale(h, g.cfg.Amplitude)
	return h
}

// Field samples a normalised [0,1] fractal field at the given base
// frequency. It shares the generator's permutation table.
func (g *NoiseGenerator) Field(shape grid.Shape, frequency float64) []float64 {
	f := g.sample(shape, frequency)
	rescale(f, 1)
	return f
}

func (g *NoiseGenerator) sample(shape grid.Shape, baseFrequency float64) []float64 {
	out := make([]float64, shape.Size)
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			out[shape.Index(x, y)] = g.fractalNoise(float64(x), float64(y), baseFrequency)
		}
	}
	return out
}

func (g *NoiseGenerator) fractalNoise(x, y, baseFrequency float64) float64 {
	frequency := baseFrequency
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < g.cfg.Octaves; i++ {
		noise := g.perlin.Noise2D(x*frequency, y*frequency)
		noiseSum += noise * amplitude
		maxAmplitude += amplitude
		amplitude *= g.cfg.Persistence
		frequency *= g.cfg.Lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

func rescale(values []float64, span float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		for i := range values {
			values[i] = 0
		}
		return
	}
	scale := span / (hi - lo)
	for i, v := range values {
		values[i] = (v - lo) * scale
	}
}
