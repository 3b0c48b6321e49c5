package rectpipe

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"
)

// Texture pool errors.
var (
	// ErrNilImage is returned when Register is called with a nil image.
	ErrNilImage = errors.New("rectpipe: nil image")
)

// TexturePool holds the textures rectangle records reference by TextureID.
// All layers share one square extent so the GPU renderer can bind the pool
// as a single texture array with the id as the layer index.
//
// Layer 0 is always a built-in opaque white texture; a zero-value
// TextureID therefore renders the tint color unmodified.
//
// TexturePool is safe for concurrent use: Register may run while a
// renderer samples.
type TexturePool struct {
	mu     sync.RWMutex
	extent int
	layers []*image.RGBA
}

// DefaultPoolExtent is the layer size used when NewTexturePool is given a
// non-positive extent.
const DefaultPoolExtent = 256

// NewTexturePool creates a pool whose layers are extent x extent pixels.
// The white texture is registered as layer 0.
func NewTexturePool(extent int) *TexturePool {
	if extent <= 0 {
		extent = DefaultPoolExtent
	}
	white := image.NewRGBA(image.Rect(0, 0, extent, extent))
	for i := range white.Pix {
		white.Pix[i] = 0xFF
	}
	return &TexturePool{
		extent: extent,
		layers: []*image.RGBA{white},
	}
}

// Register adds a texture to the pool and returns its id. Sources that do
// not match the pool extent are resampled (nearest neighbor) to fit.
func (p *TexturePool) Register(img image.Image) (TextureID, error) {
	if img == nil {
		return 0, ErrNilImage
	}

	layer := image.NewRGBA(image.Rect(0, 0, p.extent, p.extent))
	b := img.Bounds()
	if b.Dx() == p.extent && b.Dy() == p.extent {
		draw.Draw(layer, layer.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(layer, layer.Bounds(), img, b, xdraw.Src, nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	id := TextureID(len(p.layers)) //nolint:gosec // layer count fits uint32
	p.layers = append(p.layers, layer)

	Logger().Debug("rectpipe: texture registered",
		"id", uint32(id), "extent", p.extent,
		"source", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	return id, nil
}

// Extent returns the layer size in pixels.
func (p *TexturePool) Extent() int {
	return p.extent
}

// Count returns the number of registered textures, including the built-in
// white layer.
func (p *TexturePool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.layers)
}

// Valid reports whether id names a registered texture.
func (p *TexturePool) Valid(id TextureID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int(id) < len(p.layers)
}

// Layer returns the pixel data of a registered texture, or nil for an
// unknown id. The GPU renderer uploads these as texture array layers.
func (p *TexturePool) Layer(id TextureID) *image.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(id) >= len(p.layers) {
		return nil
	}
	return p.layers[id]
}

// Sample fetches a texel by normalized UV with the filter selected by the
// record's flags: bit 0 set means bilinear, clear means point.
func (p *TexturePool) Sample(id TextureID, u, v float32, flags uint32) RGBA {
	if flags&FlagLinearFilter != 0 {
		return p.SampleLinear(id, u, v)
	}
	return p.SamplePoint(id, u, v)
}

// SamplePoint fetches the nearest texel, clamping to the texture edge.
func (p *TexturePool) SamplePoint(id TextureID, u, v float32) RGBA {
	layer := p.Layer(id)
	if layer == nil {
		return Transparent
	}
	x := int(math32.Floor(u * float32(p.extent)))
	y := int(math32.Floor(v * float32(p.extent)))
	return texelAt(layer, x, y, p.extent)
}

// SampleLinear fetches a bilinearly filtered texel, clamping to the
// texture edge. Texel centers sit at (i+0.5)/extent.
func (p *TexturePool) SampleLinear(id TextureID, u, v float32) RGBA {
	layer := p.Layer(id)
	if layer == nil {
		return Transparent
	}
	px := u*float32(p.extent) - 0.5
	py := v*float32(p.extent) - 0.5
	x0 := int(math32.Floor(px))
	y0 := int(math32.Floor(py))
	fx := px - float32(x0)
	fy := py - float32(y0)

	c00 := texelAt(layer, x0, y0, p.extent)
	c10 := texelAt(layer, x0+1, y0, p.extent)
	c01 := texelAt(layer, x0, y0+1, p.extent)
	c11 := texelAt(layer, x0+1, y0+1, p.extent)

	top := lerpRGBA(c00, c10, fx)
	bottom := lerpRGBA(c01, c11, fx)
	return lerpRGBA(top, bottom, fy)
}

// texelAt reads one texel with clamp-to-edge addressing.
func texelAt(layer *image.RGBA, x, y, extent int) RGBA {
	if x < 0 {
		x = 0
	} else if x >= extent {
		x = extent - 1
	}
	if y < 0 {
		y = 0
	} else if y >= extent {
		y = extent - 1
	}
	i := layer.PixOffset(x, y)
	return RGBA{
		R: float32(layer.Pix[i+0]) / 255,
		G: float32(layer.Pix[i+1]) / 255,
		B: float32(layer.Pix[i+2]) / 255,
		A: float32(layer.Pix[i+3]) / 255,
	}
}

func lerpRGBA(a, b RGBA, t float32) RGBA {
	return RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
