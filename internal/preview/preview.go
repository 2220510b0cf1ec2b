package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"terrainkit/internal/grid"
	"terrainkit/internal/hydrology"
)

const captionHeight = 16

// Layers are the maps drawn into a preview.
type Layers struct {
	Height    []float64
	Water     []hydrology.WaterClass
	GameTrail []bool
	Caption   string
}

var (
	colorLake   = color.NRGBA{R: 40, G: 90, B: 200, A: 255}
	colorStream = color.NRGBA{R: 80, G: 160, B: 240, A: 255}
	colorPool   = color.NRGBA{R: 20, G: 60, B: 140, A: 255}
	colorMarsh  = color.NRGBA{R: 90, G: 120, B: 70, A: 255}
	colorTrail  = color.NRGBA{R: 200, G: 60, B: 40, A: 255}
	background  = color.NRGBA{R: 10, G: 10, B: 18, A: 255}
)

// Render draws one pixel per tile, shading dry land by height and painting
// water and game trails over it, then scales the map by scale with nearest
// neighbour sampling. A caption strip is added when Caption is set.
func Render(shape grid.Shape, layers Layers, scale int) (*image.NRGBA, error) {
	for _, m := range []struct {
		name string
		n    int
	}{
		{"height", len(layers.Height)},
		{"water", len(layers.Water)},
		{"gameTrail", len(layers.GameTrail)},
	} {
		if err := grid.CheckLength("preview", m.name, m.n, shape.Size); err != nil {
			return nil, err
		}
	}
	if scale < 1 {
		scale = 1
	}

	lo, hi := layers.Height[0], layers.Height[0]
	for _, h := range layers.Height {
		lo, hi = min(lo, h), max(hi, h)
	}

	tiles := image.NewNRGBA(image.Rect(0, 0, shape.Width, shape.Height))
	for i := 0; i < shape.Size; i++ {
		x, y := shape.Coord(i)
		tiles.SetNRGBA(x, y, tileColor(layers, i, lo, hi))
	}

	top := 0
	if layers.Caption != "" {
		top = captionHeight
	}
	out := image.NewNRGBA(image.Rect(0, 0, shape.Width*scale, shape.Height*scale+top))
	draw.Draw(out, out.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(out, image.Rect(0, top, shape.Width*scale, shape.Height*scale+top), tiles, tiles.Bounds(), draw.Src, nil)

	if layers.Caption != "" {
		d := font.Drawer{
			Dst:  out,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(2, captionHeight-4),
		}
		d.DrawString(layers.Caption)
	}
	return out, nil
}

func tileColor(layers Layers, i int, lo, hi float64) color.NRGBA {
	if layers.GameTrail[i] && layers.Water[i] != hydrology.WaterLake {
		return colorTrail
	}
	switch layers.Water[i] {
	case hydrology.WaterLake:
		return colorLake
	case hydrology.WaterStream:
		return colorStream
	case hydrology.WaterPool:
		return colorPool
	case hydrology.WaterMarsh:
		return colorMarsh
	}
	t := 0.0
	if hi > lo {
		t = (layers.Height[i] - lo) / (hi - lo)
	}
	return color.NRGBA{
		R: uint8(70 + 150*t),
		G: uint8(110 + 110*t),
		B: uint8(50 + 160*t),
		A: 255,
	}
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// Save writes img as a PNG file, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preview directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	return Encode(file, img)
}
