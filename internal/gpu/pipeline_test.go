package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rectpipe"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestNewRectPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatalf("NewRectPipeline = %v", err)
	}
	defer p.Destroy()

	if p.device != device || p.queue != queue {
		t.Error("device/queue not stored")
	}
	if p.pipeline != nil {
		t.Error("pipeline should be lazy")
	}
}

func TestNewRectPipelineNilDevice(t *testing.T) {
	if _, err := NewRectPipeline(nil, nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewRectPipeline(nil, nil) = %v, want ErrNoDevice", err)
	}
}

func TestNewRectPipelineFromProvider(t *testing.T) {
	if _, err := NewRectPipelineFromProvider(struct{}{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("provider without HAL types = %v, want ErrNoDevice", err)
	}
}

func TestRectPipelineCreation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if err := p.createPipeline(); err != nil {
		t.Fatalf("createPipeline failed: %v", err)
	}
	if p.shader == nil {
		t.Error("expected non-nil shader")
	}
	if p.frameLayout == nil {
		t.Error("expected non-nil frameLayout")
	}
	if p.poolLayout == nil {
		t.Error("expected non-nil poolLayout")
	}
	if p.pipeLayout == nil {
		t.Error("expected non-nil pipeLayout")
	}
	if p.pipeline == nil {
		t.Error("expected non-nil pipeline")
	}
}

func TestRectPipelineDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.createPipeline(); err != nil {
		t.Fatalf("createPipeline failed: %v", err)
	}
	p.destroyPipeline()

	if p.shader != nil || p.frameLayout != nil || p.poolLayout != nil ||
		p.pipeLayout != nil || p.pipeline != nil {
		t.Error("pipeline resources not cleared after destroy")
	}

	// Double-destroy should be safe, including the public form.
	p.destroyPipeline()
	p.Destroy()
	p.Destroy()
}

func TestRectPipelineDestroyBeforeCreate(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	p.Destroy()
}

func TestRectPipelineRenderValidation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	pool := rectpipe.NewTexturePool(2)
	list := rectpipe.NewDrawList()
	target := rectpipe.NewPixmap(4, 4)

	if err := p.Render(nil, list, pool); !errors.Is(err, rectpipe.ErrNilTarget) {
		t.Errorf("nil target = %v, want ErrNilTarget", err)
	}
	if err := p.Render(target, list, nil); !errors.Is(err, rectpipe.ErrNilPool) {
		t.Errorf("nil pool = %v, want ErrNilPool", err)
	}
	if err := list.Begin(rectpipe.NewViewport(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(target, list, pool); !errors.Is(err, rectpipe.ErrListRecording) {
		t.Errorf("recording list = %v, want ErrListRecording", err)
	}
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()
	if cfg.MaxRects <= 0 {
		t.Error("MaxRects default must be positive")
	}
	if cfg.ReadbackTimeout <= 0 {
		t.Error("ReadbackTimeout default must be positive")
	}
}

func TestNewRectPipelineWithConfigFillsDefaults(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipelineWithConfig(device, queue, PipelineConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	def := DefaultPipelineConfig()
	if p.config != def {
		t.Errorf("config = %+v, want defaults %+v", p.config, def)
	}
}

func TestRenderRejectsOversizedList(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipelineWithConfig(device, queue, PipelineConfig{MaxRects: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	list := rectpipe.NewDrawList()
	if err := list.Begin(rectpipe.NewViewport(4, 4)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := list.Push(rectpipe.Rect{Size: rectpipe.V2(1, 1)}); err != nil {
			t.Fatal(err)
		}
	}
	list.Finish()

	err = p.Render(rectpipe.NewPixmap(4, 4), list, rectpipe.NewTexturePool(2))
	if !errors.Is(err, ErrTooManyRects) {
		t.Errorf("oversized list = %v, want ErrTooManyRects", err)
	}
}

func TestBuildPassesDefaultClear(t *testing.T) {
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin},
		{Kind: rectpipe.CommandRects, First: 0, Count: 3},
		{Kind: rectpipe.CommandClose},
	})
	if len(passes) != 1 {
		t.Fatalf("got %d passes, want 1", len(passes))
	}
	// The target must never carry stale pixels into a frame.
	if passes[0].clear == nil || *passes[0].clear != rectpipe.Transparent {
		t.Errorf("first pass clear = %v, want Transparent", passes[0].clear)
	}
	if len(passes[0].batches) != 1 || passes[0].batches[0] != (rectBatch{first: 0, count: 3}) {
		t.Errorf("batches = %v", passes[0].batches)
	}
}

func TestBuildPassesExplicitClear(t *testing.T) {
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin},
		{Kind: rectpipe.CommandClear, Color: rectpipe.Black},
		{Kind: rectpipe.CommandRects, First: 0, Count: 2},
		{Kind: rectpipe.CommandClose},
	})
	if len(passes) != 1 {
		t.Fatalf("got %d passes, want 1", len(passes))
	}
	if passes[0].clear == nil || *passes[0].clear != rectpipe.Black {
		t.Errorf("clear = %v, want Black", passes[0].clear)
	}
}

func TestBuildPassesSplitsAtMidFrameClear(t *testing.T) {
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin},
		{Kind: rectpipe.CommandRects, First: 0, Count: 1},
		{Kind: rectpipe.CommandClear, Color: rectpipe.White},
		{Kind: rectpipe.CommandRects, First: 1, Count: 2},
		{Kind: rectpipe.CommandClose},
	})
	if len(passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(passes))
	}
	if passes[1].clear == nil || *passes[1].clear != rectpipe.White {
		t.Errorf("second pass clear = %v, want White", passes[1].clear)
	}
	if len(passes[1].batches) != 1 || passes[1].batches[0] != (rectBatch{first: 1, count: 2}) {
		t.Errorf("second pass batches = %v", passes[1].batches)
	}
}

func TestRendererWrapsPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	var r rectpipe.Renderer = NewRenderer(p)
	if err := r.Render(nil, rectpipe.NewDrawList(), rectpipe.NewTexturePool(2)); !errors.Is(err, rectpipe.ErrNilTarget) {
		t.Errorf("wrapped Render = %v, want ErrNilTarget", err)
	}
}

func TestBuildPassesCarriesViewport(t *testing.T) {
	vp := rectpipe.NewViewport(640, 480)
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin, Viewport: vp},
		{Kind: rectpipe.CommandRects, First: 0, Count: 1},
		{Kind: rectpipe.CommandClear, Color: rectpipe.White},
		{Kind: rectpipe.CommandRects, First: 1, Count: 1},
		{Kind: rectpipe.CommandClose},
	})
	if len(passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(passes))
	}
	for i, pass := range passes {
		if pass.viewport != vp {
			t.Errorf("pass %d viewport = %+v, want %+v", i, pass.viewport, vp)
		}
	}
}

func TestBuildPassesSplitsAtFrameBoundary(t *testing.T) {
	vpA := rectpipe.NewViewport(640, 480)
	vpB := rectpipe.NewViewport(320, 240)
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin, Viewport: vpA},
		{Kind: rectpipe.CommandRects, First: 0, Count: 2},
		{Kind: rectpipe.CommandClose},
		{Kind: rectpipe.CommandBegin, Viewport: vpB},
		{Kind: rectpipe.CommandRects, First: 2, Count: 1},
		{Kind: rectpipe.CommandClose},
	})
	if len(passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(passes))
	}
	if passes[0].viewport != vpA {
		t.Errorf("first pass viewport = %+v, want %+v", passes[0].viewport, vpA)
	}
	if passes[1].viewport != vpB {
		t.Errorf("second pass viewport = %+v, want %+v", passes[1].viewport, vpB)
	}
	// The second frame composites over the first unless it clears.
	if passes[1].clear != nil {
		t.Errorf("second frame clear = %v, want nil", passes[1].clear)
	}
	if len(passes[1].batches) != 1 || passes[1].batches[0] != (rectBatch{first: 2, count: 1}) {
		t.Errorf("second frame batches = %v", passes[1].batches)
	}
}

func TestBuildPassesEmptyFrameBeforeRecords(t *testing.T) {
	vpA := rectpipe.NewViewport(100, 100)
	vpB := rectpipe.NewViewport(200, 200)
	passes := buildPasses([]rectpipe.Command{
		{Kind: rectpipe.CommandBegin, Viewport: vpA},
		{Kind: rectpipe.CommandClose},
		{Kind: rectpipe.CommandBegin, Viewport: vpB},
		{Kind: rectpipe.CommandRects, First: 0, Count: 1},
		{Kind: rectpipe.CommandClose},
	})
	// An empty first frame folds into the second frame's pass.
	if len(passes) != 1 {
		t.Fatalf("got %d passes, want 1", len(passes))
	}
	if passes[0].viewport != vpB {
		t.Errorf("viewport = %+v, want %+v", passes[0].viewport, vpB)
	}
}

func TestRenderOnNoopDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	pool := rectpipe.NewTexturePool(2)
	list := rectpipe.NewDrawList()
	if err := list.Begin(rectpipe.NewViewport(8, 8)); err != nil {
		t.Fatal(err)
	}
	if err := list.Push(rectpipe.Rect{
		Size:  rectpipe.V2(4, 4),
		UV:    rectpipe.FullTexture,
		Color: rectpipe.White,
	}); err != nil {
		t.Fatal(err)
	}
	list.Finish()

	if err := p.Render(rectpipe.NewPixmap(8, 8), list, pool); err != nil {
		t.Fatalf("Render = %v", err)
	}
	if p.pipeline == nil {
		t.Error("pipeline not created on first Render")
	}
}

func TestRenderWithTextureOnNoopDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	pool := rectpipe.NewTexturePool(2)
	list := rectpipe.NewDrawList()
	if err := list.Begin(rectpipe.NewViewport(8, 8)); err != nil {
		t.Fatal(err)
	}
	if err := list.Push(rectpipe.Rect{
		Size:  rectpipe.V2(8, 8),
		UV:    rectpipe.FullTexture,
		Color: rectpipe.White,
	}); err != nil {
		t.Fatal(err)
	}
	list.Finish()

	// The override path binds DrawParams with the forced texture id.
	if err := p.RenderWithTexture(rectpipe.NewPixmap(8, 8), list, pool, rectpipe.WhiteTexture); err != nil {
		t.Fatalf("RenderWithTexture = %v", err)
	}
}

func TestRenderMultiFrameListOnNoopDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewRectPipeline(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	pool := rectpipe.NewTexturePool(2)
	list := rectpipe.NewDrawList()
	for frame := 0; frame < 2; frame++ {
		if err := list.Begin(rectpipe.NewViewport(8, 8)); err != nil {
			t.Fatal(err)
		}
		if err := list.Push(rectpipe.Rect{Size: rectpipe.V2(2, 2), Color: rectpipe.White}); err != nil {
			t.Fatal(err)
		}
		list.Finish()
	}

	if err := p.Render(rectpipe.NewPixmap(8, 8), list, pool); err != nil {
		t.Fatalf("Render = %v", err)
	}
}
