package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rectpipe"
)

// ErrNoDevice is returned when a pipeline is constructed without a usable
// HAL device or queue.
var ErrNoDevice = errors.New("rectpipe/gpu: no HAL device")

// ErrTooManyRects is returned when a draw list exceeds the configured
// per-render record limit.
var ErrTooManyRects = errors.New("rectpipe/gpu: draw list exceeds MaxRects")

// PipelineConfig holds configuration for the rect pipeline.
type PipelineConfig struct {
	// MaxRects is the maximum number of records per Render call.
	// Default: 65536
	MaxRects int

	// ReadbackTimeout bounds the completion wait after submission.
	// Default: 5s
	ReadbackTimeout time.Duration
}

// DefaultPipelineConfig returns default configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxRects:        65536,
		ReadbackTimeout: 5 * time.Second,
	}
}

// RectPipeline renders finished draw lists on the GPU. Rectangle records
// are uploaded as a storage buffer and expanded to 4-vertex triangle
// strips in the vertex stage; the fragment stage multiplies the record's
// tint color with a texel sampled from the pool texture array.
//
// The pipeline renders into an offscreen BGRA8 target and reads the
// pixels back into the caller's Pixmap, mirroring what SoftwareRenderer
// produces on the CPU.
//
// All GPU objects are created lazily on the first Render call and reused
// across frames. A RectPipeline is safe for concurrent use.
type RectPipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader      hal.ShaderModule
	frameLayout hal.BindGroupLayout
	poolLayout  hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	pipeline    hal.RenderPipeline

	pool   poolTextures
	target targetTextures
}

// NewRectPipeline creates a pipeline on an existing device and queue with
// default configuration. GPU objects are not allocated until the first
// Render call.
func NewRectPipeline(device hal.Device, queue hal.Queue) (*RectPipeline, error) {
	return NewRectPipelineWithConfig(device, queue, DefaultPipelineConfig())
}

// NewRectPipelineWithConfig is NewRectPipeline with explicit configuration.
// Zero config fields fall back to their defaults.
func NewRectPipelineWithConfig(device hal.Device, queue hal.Queue, config PipelineConfig) (*RectPipeline, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	def := DefaultPipelineConfig()
	if config.MaxRects <= 0 {
		config.MaxRects = def.MaxRects
	}
	if config.ReadbackTimeout <= 0 {
		config.ReadbackTimeout = def.ReadbackTimeout
	}
	return &RectPipeline{device: device, queue: queue, config: config}, nil
}

// NewRectPipelineFromProvider creates a pipeline from a shared-device
// provider (e.g. gogpu). The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewRectPipelineFromProvider(provider any) (*RectPipeline, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("rectpipe/gpu: provider does not expose HAL types: %w", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("rectpipe/gpu: provider HalDevice is not hal.Device: %w", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("rectpipe/gpu: provider HalQueue is not hal.Queue: %w", ErrNoDevice)
	}
	return NewRectPipeline(device, queue)
}

// RenderOptions adjusts a single Render call.
type RenderOptions struct {
	// TextureOverride, when set, makes the fragment stage sample this
	// pool texture for every record in the list instead of each record's
	// own id. Records still select their own filter via Flags.
	TextureOverride *rectpipe.TextureID
}

// Render executes the draw list against the pixmap target.
func (p *RectPipeline) Render(target *rectpipe.Pixmap, list *rectpipe.DrawList, pool *rectpipe.TexturePool) error {
	return p.RenderWithOptions(target, list, pool, RenderOptions{})
}

// RenderWithTexture renders the list with every record sampling the given
// pool texture instead of its own TextureID.
func (p *RectPipeline) RenderWithTexture(target *rectpipe.Pixmap, list *rectpipe.DrawList, pool *rectpipe.TexturePool, id rectpipe.TextureID) error {
	return p.RenderWithOptions(target, list, pool, RenderOptions{TextureOverride: &id})
}

// RenderWithOptions is Render with per-call options.
func (p *RectPipeline) RenderWithOptions(target *rectpipe.Pixmap, list *rectpipe.DrawList, pool *rectpipe.TexturePool, opts RenderOptions) error {
	if target == nil {
		return rectpipe.ErrNilTarget
	}
	if pool == nil {
		return rectpipe.ErrNilPool
	}
	if list == nil || list.Recording() {
		return rectpipe.ErrListRecording
	}
	if len(list.Rects()) > p.config.MaxRects {
		return fmt.Errorf("%w: %d records, limit %d", ErrTooManyRects, len(list.Rects()), p.config.MaxRects)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w := uint32(target.Width())  //nolint:gosec // pixmap dimensions fit uint32
	h := uint32(target.Height()) //nolint:gosec // pixmap dimensions fit uint32

	if err := p.target.ensure(p.device, w, h); err != nil {
		return fmt.Errorf("ensure target: %w", err)
	}
	if p.pipeline == nil {
		if err := p.createPipeline(); err != nil {
			return fmt.Errorf("create pipeline: %w", err)
		}
	}
	if err := p.pool.ensure(p.device, p.queue, pool); err != nil {
		return fmt.Errorf("ensure pool: %w", err)
	}

	rects := list.Rects()
	rectData := rectsToBytes(rects)
	if len(rectData) == 0 {
		// Storage bindings cannot be empty; bind one zeroed record.
		rectData = make([]byte, rectStride)
	}

	rectBuf, err := p.createAndUploadBuffer("rect_records", rectData,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create record buffer: %w", err)
	}
	defer p.device.DestroyBuffer(rectBuf)

	var drawData []byte
	if opts.TextureOverride != nil {
		drawData = makeDrawUniform(*opts.TextureOverride, true)
	} else {
		drawData = makeDrawUniform(0, false)
	}
	drawBuf, err := p.createAndUploadBuffer("rect_draw_params", drawData,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create draw params buffer: %w", err)
	}
	defer p.device.DestroyBuffer(drawBuf)

	// A list may hold several recorded frames, each with its own viewport
	// constants, so every pass gets its own viewport buffer and frame bind
	// group.
	passes := buildPasses(list.Commands())
	frameBinds := make([]hal.BindGroup, len(passes))
	for i := range passes {
		viewportBuf, err := p.createAndUploadBuffer("rect_viewport", makeViewportUniform(passes[i].viewport),
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("create viewport buffer: %w", err)
		}
		defer p.device.DestroyBuffer(viewportBuf)

		frameBind, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "rect_frame_bind",
			Layout: p.frameLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: viewportBuf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
				}},
				{Binding: 1, Resource: gputypes.BufferBinding{
					Buffer: rectBuf.NativeHandle(), Offset: 0, Size: uint64(len(rectData)),
				}},
				{Binding: 2, Resource: gputypes.BufferBinding{
					Buffer: drawBuf.NativeHandle(), Offset: 0, Size: drawUniformSize,
				}},
			},
		})
		if err != nil {
			return fmt.Errorf("create frame bind group: %w", err)
		}
		defer p.device.DestroyBindGroup(frameBind)
		frameBinds[i] = frameBind
	}

	poolBind, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "rect_pool_bind",
		Layout: p.poolLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: p.pool.view.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: p.pool.pointSampler.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.pool.linearSampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create pool bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(poolBind)

	rectpipe.Logger().Debug("rectpipe: gpu render",
		"width", w, "height", h, "rects", len(rects), "passes", len(passes))

	return p.encodeAndReadback(w, h, frameBinds, poolBind, passes, target)
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times or on a pipeline with no allocated resources.
func (p *RectPipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.device == nil {
		return
	}
	p.destroyPipeline()
	p.pool.destroy(p.device)
	p.target.destroy(p.device)
}

// Size returns the current target dimensions.
func (p *RectPipeline) Size() (uint32, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target.width, p.target.height
}

// createPipeline compiles the rect shader and creates the render pipeline
// with premultiplied alpha blending. Must be called with mu held.
func (p *RectPipeline) createPipeline() error {
	if rectShaderSource == "" {
		return fmt.Errorf("rect shader source is empty")
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rect_shader",
		Source: hal.ShaderSource{WGSL: rectShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile rect shader: %w", err)
	}
	p.shader = shader

	// Group 0: per-frame data.
	//   Binding 0: Viewport constants (uniform, vertex)
	//   Binding 1: rectangle records (read-only storage, vertex+fragment)
	//   Binding 2: DrawParams (uniform, fragment)
	frameLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame layout: %w", err)
	}
	p.frameLayout = frameLayout

	// Group 1: the texture pool.
	//   Binding 0: pool texture array (fragment)
	//   Binding 1: point sampler (fragment)
	//   Binding 2: linear sampler (fragment)
	poolLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_pool_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create pool layout: %w", err)
	}
	p.poolLayout = poolLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "rect_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.frameLayout, p.poolLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "rect_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			// All vertex data comes from the record storage buffer;
			// there are no vertex buffers.
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// destroyPipeline releases all pipeline resources in reverse creation
// order. Must be called with mu held.
func (p *RectPipeline) destroyPipeline() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.poolLayout != nil {
		p.device.DestroyBindGroupLayout(p.poolLayout)
		p.poolLayout = nil
	}
	if p.frameLayout != nil {
		p.device.DestroyBindGroupLayout(p.frameLayout)
		p.frameLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// rectBatch is one contiguous run of records drawn with a single
// instanced call: 4 vertices, count instances, first instance = first.
type rectBatch struct {
	first uint32
	count uint32
}

// renderPass groups the batches between two clears or frame boundaries.
// GPU clears happen as a pass load op, so a Clear command mid-list splits
// the stream into a new pass whose attachment is cleared on load. A Begin
// after a finished frame splits the stream too, since the new frame may
// carry different viewport constants.
type renderPass struct {
	clear    *rectpipe.RGBA
	viewport rectpipe.Viewport
	batches  []rectBatch
}

// buildPasses folds a command stream into render passes. The first pass
// always clears, to transparent black if the list did not start with an
// explicit Clear, so the offscreen target never carries stale pixels.
// Later frames composite over the earlier output unless they Clear.
func buildPasses(commands []rectpipe.Command) []renderPass {
	transparent := rectpipe.Transparent
	passes := []renderPass{{clear: &transparent}}
	cur := &passes[0]

	for _, cmd := range commands {
		switch cmd.Kind {
		case rectpipe.CommandBegin:
			if len(cur.batches) == 0 {
				cur.viewport = cmd.Viewport
				continue
			}
			passes = append(passes, renderPass{viewport: cmd.Viewport})
			cur = &passes[len(passes)-1]
		case rectpipe.CommandClear:
			c := cmd.Color
			if len(cur.batches) == 0 {
				cur.clear = &c
				continue
			}
			passes = append(passes, renderPass{clear: &c, viewport: cur.viewport})
			cur = &passes[len(passes)-1]
		case rectpipe.CommandRects:
			cur.batches = append(cur.batches, rectBatch{first: cmd.First, count: cmd.Count})
		case rectpipe.CommandClose:
			// Frame boundary only; the next Begin decides the viewport.
		}
	}
	return passes
}

// encodeAndReadback encodes the render passes, copies the target to a
// staging buffer, submits, waits, and reads pixels back into the pixmap.
// Must be called with mu held.
func (p *RectPipeline) encodeAndReadback(
	w, h uint32, frameBinds []hal.BindGroup, poolBind hal.BindGroup,
	passes []renderPass, target *rectpipe.Pixmap,
) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "rect_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rect_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	for i, pass := range passes {
		attachment := hal.RenderPassColorAttachment{
			View:    p.target.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if pass.clear != nil {
			attachment.LoadOp = gputypes.LoadOpClear
			attachment.ClearValue = gputypes.Color{
				R: float64(pass.clear.R),
				G: float64(pass.clear.G),
				B: float64(pass.clear.B),
				A: float64(pass.clear.A),
			}
		}
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:            "rect_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{attachment},
		})
		if len(pass.batches) > 0 {
			rp.SetPipeline(p.pipeline)
			rp.SetBindGroup(0, frameBinds[i], nil)
			rp.SetBindGroup(1, poolBind, nil)
			for _, b := range pass.batches {
				rp.Draw(rectpipe.VerticesPerRect, b.count, 0, b.first)
			}
		}
		rp.End()
	}

	// After rendering the target is in attachment layout;
	// CopyTextureToBuffer needs a transfer-source transition. No-op on
	// Metal, GLES, software, and noop backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.target.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rect_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.target.texture, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: p.target.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	subIdx, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	deadline := time.Now().Add(p.config.ReadbackTimeout)
	for p.queue.PollCompleted() < subIdx {
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for GPU: submission %d not complete after %v",
				subIdx, p.config.ReadbackTimeout)
		}
		if err := p.device.WaitIdle(); err != nil {
			return fmt.Errorf("wait for GPU: %w", err)
		}
	}

	mapping, err := p.device.MapBuffer(stagingBuf, 0, pixelBufSize)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, pixelBufSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), pixelBufSize))
	if err := p.device.UnmapBuffer(stagingBuf); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}

	bgraToRGBA(readback, target.Data(), int(w)*int(h))
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (p *RectPipeline) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := p.queue.WriteBuffer(buf, 0, data); err != nil {
		p.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// Renderer adapts RectPipeline to the rectpipe.Renderer interface.
type Renderer struct {
	pipeline *RectPipeline
}

// NewRenderer wraps a pipeline as a rectpipe.Renderer.
func NewRenderer(pipeline *RectPipeline) *Renderer {
	return &Renderer{pipeline: pipeline}
}

// Render implements rectpipe.Renderer.
func (r *Renderer) Render(target *rectpipe.Pixmap, list *rectpipe.DrawList, pool *rectpipe.TexturePool) error {
	return r.pipeline.Render(target, list, pool)
}

var _ rectpipe.Renderer = (*Renderer)(nil)
