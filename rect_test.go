package rectpipe

import "testing"

func TestRectVertexExpansion(t *testing.T) {
	vp := NewViewport(100, 100)
	r := Rect{
		Origin: V2(10, 20),
		Size:   V2(30, 40),
		UV:     FullTexture,
		Color:  White,
	}

	// Corner 0 is the origin, corner 3 is origin+size.
	v0 := r.Vertex(0, 7, vp)
	if !vec4Near(v0.Position, PointToClipSpace(V2(10, 20), vp), 1e-6) {
		t.Errorf("corner 0 position = %v", v0.Position)
	}
	v3 := r.Vertex(3, 7, vp)
	if !vec4Near(v3.Position, PointToClipSpace(V2(40, 60), vp), 1e-6) {
		t.Errorf("corner 3 position = %v", v3.Position)
	}

	if v0.Instance != 7 || v3.Instance != 7 {
		t.Error("instance index not carried through expansion")
	}
}

func TestRectVertexUV(t *testing.T) {
	vp := NewViewport(100, 100)
	r := Rect{
		Origin: V2(0, 0),
		Size:   V2(10, 10),
		UV:     UVRect{U: 0.25, V: 0.5, W: 0.5, H: 0.25},
	}

	// UV interpolates with the same offsets as position.
	wantUV := [4]Vec2{
		{X: 0.25, Y: 0.5},
		{X: 0.25, Y: 0.75},
		{X: 0.75, Y: 0.5},
		{X: 0.75, Y: 0.75},
	}
	for i, want := range wantUV {
		got := r.Vertex(i, 0, vp).UV
		if !f32Near(got.X, want.X) || !f32Near(got.Y, want.Y) {
			t.Errorf("corner %d UV = %v, want %v", i, got, want)
		}
	}
}

func TestRectCorners(t *testing.T) {
	vp := NewViewport(200, 100)
	r := Rect{Origin: V2(5, 5), Size: V2(20, 10), UV: FullTexture}

	corners := r.Corners(3, vp)
	for i := range corners {
		if corners[i] != r.Vertex(i, 3, vp) {
			t.Errorf("Corners[%d] differs from Vertex(%d)", i, i)
		}
	}
}

func TestFullTexture(t *testing.T) {
	if FullTexture != (UVRect{U: 0, V: 0, W: 1, H: 1}) {
		t.Errorf("FullTexture = %v", FullTexture)
	}
}
