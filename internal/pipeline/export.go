package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"io"

	"terrainkit/internal/gridstore"
	"terrainkit/internal/navigation"
	"terrainkit/internal/preview"
)

// Tile is the exported view of one tile.
type Tile struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Height   float64 `json:"height"`
	Slope    float64 `json:"slope"`
	Landform string  `json:"landform"`
	Water    string  `json:"water"`
	Biome    string  `json:"biome"`
	Moisture float64 `json:"moisture"`
	navigation.TileRecord
}

// Envelope is the document written by the generator.
type Envelope struct {
	Summary Summary `json:"summary"`
	Tiles   []Tile  `json:"tiles"`
}

// Tile builds the export record for (x, y).
func (r *Result) Tile(x, y int) (Tile, error) {
	if !r.Shape.InBounds(x, y) {
		return Tile{}, fmt.Errorf("tile (%d,%d) outside %dx%d grid", x, y, r.Shape.Width, r.Shape.Height)
	}
	i := r.Shape.Index(x, y)
	rec, err := r.Navigation.Record(i)
	if err != nil {
		return Tile{}, err
	}
	return Tile{
		X:          x,
		Y:          y,
		Height:     r.Topography.Height[i],
		Slope:      r.Topography.Slope[i],
		Landform:   r.Topography.Landform[i].String(),
		Water:      r.Hydrology.Water[i].String(),
		Biome:      r.Ecology.Biome[i].String(),
		Moisture:   r.Hydrology.Moisture[i],
		TileRecord: rec,
	}, nil
}

// WriteEnvelope encodes the summary and every tile as JSON.
func (r *Result) WriteEnvelope(w io.Writer) error {
	env := Envelope{Summary: r.Summary(), Tiles: make([]Tile, 0, r.Shape.Size)}
	for y := 0; y < r.Shape.Height; y++ {
		for x := 0; x < r.Shape.Width; x++ {
			t, err := r.Tile(x, y)
			if err != nil {
				return err
			}
			env.Tiles = append(env.Tiles, t)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// WriteGrids persists the raw output maps into a grid store file at path.
func (r *Result) WriteGrids(path string) error {
	store, err := gridstore.Create(path, r.Shape)
	if err != nil {
		return err
	}
	if err := r.WriteGridsTo(store); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}

// WriteGridsTo puts every raw output map into store. The caller closes it.
func (r *Result) WriteGridsTo(store gridstore.Writer) error {
	if store.Shape() != r.Shape {
		return fmt.Errorf("grid store shape %dx%d does not match %dx%d run", store.Shape().Width, store.Shape().Height, r.Shape.Width, r.Shape.Height)
	}
	n := r.Shape.Size
	hy, eco, nav := r.Hydrology, r.Ecology, r.Navigation

	bytesOf := func(at func(i int) byte) []byte {
		out := make([]byte, n)
		for i := range out {
			out[i] = at(i)
		}
		return out
	}
	passability := make([]uint16, n)
	for i, p := range nav.Passability {
		passability[i] = uint16(p)
	}

	writes := []func() error{
		func() error { return store.PutFloat64s("height", r.Topography.Height) },
		func() error { return store.PutFloat64s("slope", r.Topography.Slope) },
		func() error {
			return store.PutBytes("landform", bytesOf(func(i int) byte { return byte(r.Topography.Landform[i]) }))
		},
		func() error {
			return store.PutBytes("flowDirection", bytesOf(func(i int) byte { return byte(hy.FlowDirection[i]) }))
		},
		func() error { return store.PutInt32s("flowAccum", hy.FlowAccum) },
		func() error { return store.PutFloat64s("basinPersistence", hy.Watershed.BasinPersistence) },
		func() error { return store.PutFloat64s("basinSpillH", hy.Watershed.BasinSpillH) },
		func() error { return store.PutFloat64s("peakPersistence", hy.Watershed.PeakPersistence) },
		func() error { return store.PutBytes("water", bytesOf(func(i int) byte { return byte(hy.Water[i]) })) },
		func() error { return store.PutInt32s("lakeId", hy.LakeID) },
		func() error { return store.PutFloat64s("lakeSurfaceH", hy.LakeSurfaceH) },
		func() error { return store.PutFloat64s("moisture", hy.Moisture) },
		func() error { return store.PutFloat64s("treeDensity", eco.TreeDensity) },
		func() error { return store.PutFloat64s("obstruction", eco.Obstruction) },
		func() error { return store.PutBytes("biome", bytesOf(func(i int) byte { return byte(eco.Biome[i]) })) },
		func() error { return store.PutFloat64s("trailCost", r.Trails.Cost) },
		func() error { return store.PutInt32s("gameTrailId", r.Trails.GameTrailID) },
		func() error { return store.PutUint16s("passability", passability) },
		func() error { return store.PutBytes("cliffEdge", bytesOf(func(i int) byte { return byte(nav.CliffEdge[i]) })) },
		func() error { return store.PutFloat64s("moveCost", nav.MoveCost) },
	}
	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

// Preview renders the hydrology and trail overview image.
func (r *Result) Preview(scale int) (*image.NRGBA, error) {
	return preview.Render(r.Shape, preview.Layers{
		Height:    r.Topography.Height,
		Water:     r.Hydrology.Water,
		GameTrail: r.Trails.GameTrail,
		Caption:   fmt.Sprintf("seed %d  %dx%d  trails %d", r.Config.Grid.Seed, r.Shape.Width, r.Shape.Height, len(r.Trails.Trails)),
	}, scale)
}
