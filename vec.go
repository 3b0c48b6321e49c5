package rectpipe

import "github.com/chewxy/math32"

// Vec2 is a 2D float32 vector. Rectangle geometry is float32 end to end
// because the records are uploaded to the GPU unchanged.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience constructor for Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// MulV returns the element-wise product of two vectors.
func (v Vec2) MulV(w Vec2) Vec2 {
	return Vec2{X: v.X * w.X, Y: v.Y * w.Y}
}

// Length returns the magnitude of the vector.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Vec4 is a 4D float32 vector, used for clip-space positions (x, y, z, w).
type Vec4 struct {
	X, Y, Z, W float32
}

// XY returns the first two components as a Vec2.
func (v Vec4) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}
