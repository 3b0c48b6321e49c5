package rectpipe

// Texture flag bits. Only bit 0 is defined; the rest are reserved.
const (
	// FlagLinearFilter selects bilinear filtering for the rectangle's
	// texture. When clear, nearest-neighbor (point) filtering is used.
	FlagLinearFilter uint32 = 1 << 0
)

// TextureID indexes a texture registered in a TexturePool.
// ID 0 is always the built-in opaque white texture, so untextured
// rectangles simply leave TextureID at its zero value.
type TextureID uint32

// WhiteTexture is the built-in 1x1 opaque white texture present in every
// pool. Sampling it returns (1,1,1,1), so the tint color passes through
// unchanged.
const WhiteTexture TextureID = 0

// UVRect is a normalized texture-coordinate rectangle: origin (U, V) plus
// size (W, H) in UV space.
type UVRect struct {
	U, V, W, H float32
}

// FullTexture covers the entire texture.
var FullTexture = UVRect{U: 0, V: 0, W: 1, H: 1}

// Rect is one rectangle record, the per-instance unit of the pipeline.
// Renderers read it twice: the vertex stage expands it into a quad, and
// the pixel stage re-fetches it by instance index to shade.
//
// Origin and Size are in pixel space with Y pointing down. Size components
// must be non-negative. TextureID must name a texture registered in the
// pool the record is drawn with.
type Rect struct {
	Origin    Vec2
	Size      Vec2
	UV        UVRect
	Color     RGBA
	TextureID TextureID
	Flags     uint32
}

// RectVertex is the output of the vertex stage for one corner: a
// clip-space position, an interpolated texture coordinate, and the flat
// (non-interpolated) instance index the pixel stage uses to re-fetch the
// record.
type RectVertex struct {
	Position Vec4
	UV       Vec2
	Instance uint32
}

// Vertex expands corner vertexIndex (0..3) of the rectangle, treating it
// as instance `instance` of a draw against viewport vp. The corner offset
// is multiplied element-wise by Size and added to Origin; the same offset
// interpolates the UV rectangle so texture coordinates track position
// across the quad.
func (r Rect) Vertex(vertexIndex int, instance uint32, vp Viewport) RectVertex {
	off := CornerOffsets[vertexIndex]
	p := r.Origin.Add(r.Size.MulV(off))
	return RectVertex{
		Position: PointToClipSpace(p, vp),
		UV: Vec2{
			X: r.UV.U + r.UV.W*off.X,
			Y: r.UV.V + r.UV.H*off.Y,
		},
		Instance: instance,
	}
}

// Corners expands all four corners of the rectangle.
func (r Rect) Corners(instance uint32, vp Viewport) [4]RectVertex {
	var out [4]RectVertex
	for i := range CornerOffsets {
		out[i] = r.Vertex(i, instance, vp)
	}
	return out
}
