package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/rectpipe"
)

// rectStride is the byte stride per rectangle record in the storage
// buffer. Layout (matches the Rect struct in rect.wgsl):
//
//	xywh       (vec4<f32>) = 16 bytes
//	uvwh       (vec4<f32>) = 16 bytes
//	color      (vec4<f32>) = 16 bytes
//	texture_id (u32)       =  4 bytes
//	flags      (u32)       =  4 bytes
//	padding    (2 x u32)   =  8 bytes
//
// Total = 64 bytes per record.
const rectStride = 64

// viewportUniformSize is the byte size of the Viewport uniform.
// Layout: scale (vec2<f32>) + height (f32) + padding (f32) = 16 bytes.
const viewportUniformSize = 16

// drawUniformSize is the byte size of the DrawParams uniform.
// Layout: texture_id (u32) + use_draw_texture (u32) + 2 x u32 padding.
const drawUniformSize = 16

// rectsToBytes serializes rectangle records into storage buffer bytes.
func rectsToBytes(rects []rectpipe.Rect) []byte {
	buf := make([]byte, len(rects)*rectStride)
	off := 0
	for i := range rects {
		r := &rects[i]
		putF32(buf, off+0, r.Origin.X)
		putF32(buf, off+4, r.Origin.Y)
		putF32(buf, off+8, r.Size.X)
		putF32(buf, off+12, r.Size.Y)
		putF32(buf, off+16, r.UV.U)
		putF32(buf, off+20, r.UV.V)
		putF32(buf, off+24, r.UV.W)
		putF32(buf, off+28, r.UV.H)
		putF32(buf, off+32, r.Color.R)
		putF32(buf, off+36, r.Color.G)
		putF32(buf, off+40, r.Color.B)
		putF32(buf, off+44, r.Color.A)
		putU32(buf, off+48, uint32(r.TextureID))
		putU32(buf, off+52, r.Flags)
		// Padding bytes 56..63 remain zero.
		off += rectStride
	}
	return buf
}

// makeViewportUniform packs the per-frame transform constants.
func makeViewportUniform(vp rectpipe.Viewport) []byte {
	buf := make([]byte, viewportUniformSize)
	putF32(buf, 0, vp.Scale.X)
	putF32(buf, 4, vp.Scale.Y)
	putF32(buf, 8, vp.Height)
	// Padding bytes 12..15 remain zero.
	return buf
}

// makeDrawUniform packs the per-draw constants. When override is true the
// fragment stage samples textureID for every record in the batch instead
// of the per-record id.
func makeDrawUniform(textureID rectpipe.TextureID, override bool) []byte {
	buf := make([]byte, drawUniformSize)
	putU32(buf, 0, uint32(textureID))
	if override {
		putU32(buf, 4, 1)
	}
	return buf
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

// bgraToRGBA converts readback pixels from the BGRA8 render target into
// the pixmap's RGBA order.
func bgraToRGBA(src, dst []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		o := i * 4
		dst[o+0] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o+0]
		dst[o+3] = src[o+3]
	}
}
