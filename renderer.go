package rectpipe

import "errors"

// Render errors shared by all renderers.
var (
	// ErrNilTarget is returned when Render is called without a target.
	ErrNilTarget = errors.New("rectpipe: nil render target")

	// ErrNilPool is returned when Render is called without a texture pool.
	ErrNilPool = errors.New("rectpipe: nil texture pool")

	// ErrListRecording is returned when a draw list is rendered before
	// Finish was called.
	ErrListRecording = errors.New("rectpipe: draw list is still recording")
)

// Renderer executes a finished DrawList against a Pixmap target, sampling
// textures from the given pool. SoftwareRenderer is the always-available
// implementation; internal/gpu provides the HAL-backed one.
type Renderer interface {
	Render(target *Pixmap, list *DrawList, pool *TexturePool) error
}
