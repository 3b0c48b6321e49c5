// Package gpu exposes the HAL-backed rectangle renderer.
//
// The pipeline runs on a gogpu/wgpu hal.Device, either opened by the host
// or shared from a provider such as gogpu:
//
//	pipe, err := gpu.New(device, queue)
//	if err != nil {
//	    // fall back to rectpipe.SoftwareRenderer
//	}
//	defer pipe.Destroy()
//	err = pipe.Render(target, list, pool)
package gpu

import (
	"github.com/gogpu/wgpu/hal"

	gpuimpl "github.com/gogpu/rectpipe/internal/gpu"
)

// Pipeline renders finished draw lists on the GPU.
type Pipeline = gpuimpl.RectPipeline

// Config holds pipeline configuration.
type Config = gpuimpl.PipelineConfig

// Options adjusts a single Render call.
type Options = gpuimpl.RenderOptions

// Renderer adapts a Pipeline to the rectpipe.Renderer interface.
type Renderer = gpuimpl.Renderer

// Pipeline errors.
var (
	ErrNoDevice     = gpuimpl.ErrNoDevice
	ErrTooManyRects = gpuimpl.ErrTooManyRects
)

// New creates a pipeline on an existing device and queue with default
// configuration.
func New(device hal.Device, queue hal.Queue) (*Pipeline, error) {
	return gpuimpl.NewRectPipeline(device, queue)
}

// NewWithConfig is New with explicit configuration.
func NewWithConfig(device hal.Device, queue hal.Queue, config Config) (*Pipeline, error) {
	return gpuimpl.NewRectPipelineWithConfig(device, queue, config)
}

// NewFromProvider creates a pipeline from a shared-device provider
// (e.g. gogpu). The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider any) (*Pipeline, error) {
	return gpuimpl.NewRectPipelineFromProvider(provider)
}

// NewRenderer wraps a pipeline as a rectpipe.Renderer.
func NewRenderer(pipeline *Pipeline) *Renderer {
	return gpuimpl.NewRenderer(pipeline)
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return gpuimpl.DefaultPipelineConfig()
}

// ShaderSource returns the WGSL source for the rect shader, for hosts
// that compile shaders themselves.
func ShaderSource() string {
	return gpuimpl.RectShaderSource()
}

// CompileShaderToSPIRV compiles the given WGSL source to SPIR-V words for
// backends that consume SPIR-V instead of WGSL.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	return gpuimpl.CompileShaderToSPIRV(wgslSource)
}
