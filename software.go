package rectpipe

import "github.com/chewxy/math32"

// SoftwareRenderer executes the rectangle pipeline on the CPU with the
// same two-stage semantics as the WGSL shader: expand each record into a
// quad via the corner offset table and the clip-space transform, then
// shade covered pixels by re-fetching the record, sampling the texture
// pool, and tinting.
//
// It exists both as a GPU-free fallback and as the reference
// implementation the shader is tested against.
type SoftwareRenderer struct{}

// NewSoftwareRenderer creates a software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

var _ Renderer = (*SoftwareRenderer)(nil)

// Render executes the draw list's command stream against the target.
func (r *SoftwareRenderer) Render(target *Pixmap, list *DrawList, pool *TexturePool) error {
	if target == nil {
		return ErrNilTarget
	}
	if pool == nil {
		return ErrNilPool
	}
	if list == nil {
		return nil
	}
	if list.recording {
		return ErrListRecording
	}

	vp := list.Viewport()
	rects := list.Rects()

	for _, cmd := range list.Commands() {
		switch cmd.Kind {
		case CommandBegin:
			vp = cmd.Viewport
		case CommandClear:
			target.Clear(cmd.Color)
		case CommandRects:
			for i := uint32(0); i < cmd.Count; i++ {
				instance := cmd.First + i
				r.drawRect(target, rects[instance], instance, vp, pool)
			}
		case CommandClose:
			// Frame boundary; later frames composite over this output.
		}
	}
	return nil
}

// drawRect rasterizes one expanded quad. The vertex stage output (clip
// space) is mapped back through the viewport transform to the pixel grid,
// exactly as the fixed-function rasterizer would.
func (r *SoftwareRenderer) drawRect(target *Pixmap, rect Rect, instance uint32, vp Viewport, pool *TexturePool) {
	if rect.Size.X <= 0 || rect.Size.Y <= 0 {
		return
	}
	if !pool.Valid(rect.TextureID) {
		Logger().Warn("rectpipe: skipping record with unknown texture",
			"instance", instance, "texture_id", uint32(rect.TextureID))
		return
	}

	corners := rect.Corners(instance, vp)

	w := float32(target.Width())
	h := float32(target.Height())

	// Viewport transform: clip [-1,1] back to top-down framebuffer pixels.
	x0 := (corners[0].Position.X + 1) * 0.5 * w
	y0 := h - (corners[0].Position.Y+1)*0.5*h
	x1 := (corners[3].Position.X + 1) * 0.5 * w
	y1 := h - (corners[3].Position.Y+1)*0.5*h

	// A pixel is covered when its center lies inside [x0,x1) x [y0,y1).
	startX := int(math32.Ceil(x0 - 0.5))
	endX := int(math32.Ceil(x1 - 0.5))
	startY := int(math32.Ceil(y0 - 0.5))
	endY := int(math32.Ceil(y1 - 0.5))

	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}
	if endX > target.Width() {
		endX = target.Width()
	}
	if endY > target.Height() {
		endY = target.Height()
	}

	for iy := startY; iy < endY; iy++ {
		ty := ((float32(iy) + 0.5) - y0) / (y1 - y0)
		v := rect.UV.V + rect.UV.H*ty
		for ix := startX; ix < endX; ix++ {
			tx := ((float32(ix) + 0.5) - x0) / (x1 - x0)
			u := rect.UV.U + rect.UV.W*tx

			src := rect.Color.Mul(pool.Sample(rect.TextureID, u, v, rect.Flags))
			target.SetPixel(ix, iy, src.Over(target.GetPixel(ix, iy)))
		}
	}
}
