// Package gpu implements the HAL-backed rectangle pipeline.
//
// RectPipeline compiles the embedded WGSL rect shader, binds the rectangle
// records as a read-only storage buffer, the texture pool as a
// texture_2d_array, and the viewport constants as a uniform buffer, then
// draws 4 vertices by N instances per batch with no vertex buffers.
//
// The package targets the gogpu/wgpu HAL interfaces, so it runs unchanged
// on the Vulkan, Metal, GLES, software, and noop backends.
package gpu
