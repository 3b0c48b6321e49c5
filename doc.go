// Package rectpipe implements a 2D rectangle-rendering pipeline for the
// GoGPU ecosystem.
//
// # Overview
//
// rectpipe renders batches of axis-aligned rectangles -- solid-colored,
// textured, or both -- the way immediate-mode GUI renderers do: the host
// records rectangle records into a DrawList, and a renderer expands each
// record into a screen-space quad and shades it with a tint color and an
// optional texture from a TexturePool.
//
// # Quick Start
//
//	import "github.com/gogpu/rectpipe"
//
//	pool := rectpipe.NewTexturePool(256)
//	list := rectpipe.NewDrawList()
//
//	list.Begin(rectpipe.NewViewport(800, 600))
//	list.Clear(rectpipe.RGB(0.1, 0.1, 0.1))
//	list.Push(rectpipe.Rect{
//	    Origin: rectpipe.V2(100, 100),
//	    Size:   rectpipe.V2(200, 150),
//	    UV:     rectpipe.FullTexture,
//	    Color:  rectpipe.RGB(1, 0, 0),
//	})
//	list.Finish()
//
//	target := rectpipe.NewPixmap(800, 600)
//	r := rectpipe.NewSoftwareRenderer()
//	if err := r.Render(target, list, pool); err != nil {
//	    // handle error
//	}
//	target.SavePNG("out.png")
//
// # Renderers
//
// Two renderers execute the same pipeline semantics:
//   - SoftwareRenderer runs both stages on the CPU and is always available.
//   - The gpu sub-package runs the embedded WGSL shader on a gogpu/wgpu
//     HAL device, drawing 4 vertices x N instances with no vertex buffers.
//
// # Coordinate System
//
// Rectangle records use pixel coordinates with the origin at the top-left
// and Y increasing downward. The vertex stage flips Y and remaps into
// clip space ([-1, 1] per axis, Y up) via PointToClipSpace.
package rectpipe
