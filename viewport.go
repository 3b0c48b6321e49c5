package rectpipe

// Viewport holds the per-frame transform constants: the reciprocal of the
// viewport dimensions and the viewport height in pixels. Both are computed
// once per frame and treated as immutable for the duration of a draw.
type Viewport struct {
	// Scale is 1/width, 1/height of the viewport, used to normalize pixel
	// coordinates into [0, 1].
	Scale Vec2

	// Height is the viewport height in pixels, used to flip the Y axis
	// from top-down pixel space to bottom-up clip space.
	Height float32
}

// NewViewport creates the viewport constants for a target of the given
// pixel dimensions.
func NewViewport(width, height float32) Viewport {
	return Viewport{
		Scale:  Vec2{X: 1 / width, Y: 1 / height},
		Height: height,
	}
}

// PointToClipSpace maps a point from top-down pixel space into clip space.
// The transform, in order: flip Y (Height - y), normalize by Scale into
// [0, 1], then remap to [-1, 1]. Z is fixed at 0 and W at 1.
func PointToClipSpace(p Vec2, vp Viewport) Vec4 {
	flipped := Vec2{X: p.X, Y: vp.Height - p.Y}
	scaled := flipped.MulV(vp.Scale)
	return Vec4{
		X: scaled.X*2 - 1,
		Y: scaled.Y*2 - 1,
		Z: 0,
		W: 1,
	}
}

// ScaleToViewport maps a point into clip space without flipping Y.
//
// Deprecated: this is the transform used before the Y-flip was introduced.
// It is only correct when the input is already in bottom-up coordinates;
// for the top-down pixel coordinates Rect records use, it renders the
// scene vertically mirrored. Use PointToClipSpace instead.
func ScaleToViewport(p Vec2, scale Vec2) Vec4 {
	scaled := p.MulV(scale)
	return Vec4{
		X: scaled.X*2 - 1,
		Y: scaled.Y*2 - 1,
		Z: 0,
		W: 1,
	}
}

// CornerOffsets is the fixed per-vertex offset table used to expand a
// rectangle instance into a quad. The order forms a triangle strip for a
// non-indexed 4-vertex draw: top-left, bottom-left, top-right,
// bottom-right (in top-down pixel space).
var CornerOffsets = [4]Vec2{
	{X: 0, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
}

// VerticesPerRect is the vertex count of one expanded instance.
const VerticesPerRect = 4
