package rectpipe

import "image/color"

// RGBA is a float32 color with components in [0, 1].
// It is the tint/clear color type for rectangle records and matches the
// vec4<f32> color layout the shader reads.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = RGBA{}
	White       = RGBA{R: 1, G: 1, B: 1, A: 1}
	Black       = RGBA{A: 1}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// NewRGBA creates a color from all four components.
func NewRGBA(r, g, b, a float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: float32(r) / 65535,
		G: float32(g) / 65535,
		B: float32(b) / 65535,
		A: float32(a) / 65535,
	}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Premultiply returns the color with RGB scaled by alpha.
// The pipeline's blend state (ONE, ONE_MINUS_SRC_ALPHA) expects
// premultiplied source colors for translucent draws.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Mul returns the component-wise product of two colors.
// This is the pixel stage's tint operation: color * texel.
func (c RGBA) Mul(d RGBA) RGBA {
	return RGBA{R: c.R * d.R, G: c.G * d.G, B: c.B * d.B, A: c.A * d.A}
}

// Over blends c over d using the pipeline's blend equation:
// out = src + dst * (1 - src.a).
func (c RGBA) Over(d RGBA) RGBA {
	inv := 1 - c.A
	return RGBA{
		R: c.R + d.R*inv,
		G: c.G + d.G*inv,
		B: c.B + d.B*inv,
		A: c.A + d.A*inv,
	}
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
