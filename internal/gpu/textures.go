package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rectpipe"
)

// poolTextures holds the GPU form of a rectpipe.TexturePool: one RGBA8
// texture array whose layer index is the texture id, plus the point and
// linear samplers the fragment stage selects between.
type poolTextures struct {
	texture       hal.Texture
	view          hal.TextureView
	pointSampler  hal.Sampler
	linearSampler hal.Sampler

	source     *rectpipe.TexturePool
	extent     uint32
	layerCount int
}

// ensure uploads the pool if the GPU copy is missing or stale. A pool
// only ever grows, so for an unchanged pool instance a matching layer
// count means the GPU copy is current. Switching to a different pool
// instance, or one with a different extent, forces a re-upload.
func (pt *poolTextures) ensure(device hal.Device, queue hal.Queue, pool *rectpipe.TexturePool) error {
	count := pool.Count()
	extent := uint32(pool.Extent()) //nolint:gosec // pool extent always fits uint32
	if pt.texture != nil && pt.source == pool && pt.layerCount == count && pt.extent == extent {
		return nil
	}
	pt.destroyTexture(device)

	texture, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "rect_pool",
		Size: hal.Extent3D{
			Width:              extent,
			Height:             extent,
			DepthOrArrayLayers: uint32(count), //nolint:gosec // layer count fits uint32
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create pool texture: %w", err)
	}
	pt.texture = texture

	view, err := device.CreateTextureView(texture, &hal.TextureViewDescriptor{
		Label:         "rect_pool_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2DArray,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		pt.destroyTexture(device)
		return fmt.Errorf("create pool view: %w", err)
	}
	pt.view = view

	for i := 0; i < count; i++ {
		layer := pool.Layer(rectpipe.TextureID(i)) //nolint:gosec // i < Count
		if layer == nil {
			continue
		}
		err := queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  texture,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: 0, Y: 0, Z: uint32(i)}, //nolint:gosec // i < Count
				Aspect:   gputypes.TextureAspectAll,
			},
			layer.Pix,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  extent * 4,
				RowsPerImage: extent,
			},
			&hal.Extent3D{Width: extent, Height: extent, DepthOrArrayLayers: 1},
		)
		if err != nil {
			pt.destroyTexture(device)
			return fmt.Errorf("upload pool layer %d: %w", i, err)
		}
	}

	if err := pt.ensureSamplers(device); err != nil {
		pt.destroyTexture(device)
		return err
	}

	pt.source = pool
	pt.extent = extent
	pt.layerCount = count
	return nil
}

// ensureSamplers creates the two pool samplers once: s0 point
// (nearest-neighbor) and s1 linear (bilinear), both clamp-to-edge.
func (pt *poolTextures) ensureSamplers(device hal.Device) error {
	if pt.pointSampler == nil {
		sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "rect_point_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeNearest,
			MinFilter:    gputypes.FilterModeNearest,
			MipmapFilter: gputypes.FilterModeNearest,
		})
		if err != nil {
			return fmt.Errorf("create point sampler: %w", err)
		}
		pt.pointSampler = sampler
	}

	if pt.linearSampler == nil {
		sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "rect_linear_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.FilterModeNearest,
		})
		if err != nil {
			return fmt.Errorf("create linear sampler: %w", err)
		}
		pt.linearSampler = sampler
	}

	return nil
}

// destroyTexture releases the texture array but keeps the samplers, which
// are reused across pool re-uploads.
func (pt *poolTextures) destroyTexture(device hal.Device) {
	if pt.view != nil {
		device.DestroyTextureView(pt.view)
		pt.view = nil
	}
	if pt.texture != nil {
		device.DestroyTexture(pt.texture)
		pt.texture = nil
	}
	pt.source = nil
	pt.extent = 0
	pt.layerCount = 0
}

// destroy releases all pool resources.
func (pt *poolTextures) destroy(device hal.Device) {
	pt.destroyTexture(device)
	if pt.linearSampler != nil {
		device.DestroySampler(pt.linearSampler)
		pt.linearSampler = nil
	}
	if pt.pointSampler != nil {
		device.DestroySampler(pt.pointSampler)
		pt.pointSampler = nil
	}
}

// targetTextures holds the offscreen render target: a single-sample BGRA8
// color attachment with CopySrc usage for CPU readback. The original
// pipeline runs without MSAA -- rectangle edges are axis-aligned, so
// multisampling adds nothing.
type targetTextures struct {
	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
}

// ensure creates or recreates the target if the requested dimensions
// differ from the current size.
func (tt *targetTextures) ensure(device hal.Device, w, h uint32) error {
	if tt.width == w && tt.height == h && tt.texture != nil {
		return nil
	}
	tt.destroy(device)

	texture, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rect_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	tt.texture = texture

	view, err := device.CreateTextureView(texture, &hal.TextureViewDescriptor{
		Label:         "rect_target_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		tt.destroy(device)
		return fmt.Errorf("create target view: %w", err)
	}
	tt.view = view

	tt.width = w
	tt.height = h
	return nil
}

// destroy releases the target resources and resets dimensions.
func (tt *targetTextures) destroy(device hal.Device) {
	if tt.view != nil {
		device.DestroyTextureView(tt.view)
		tt.view = nil
	}
	if tt.texture != nil {
		device.DestroyTexture(tt.texture)
		tt.texture = nil
	}
	tt.width = 0
	tt.height = 0
}
