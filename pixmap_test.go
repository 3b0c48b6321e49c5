package rectpipe

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPixmap(t *testing.T) {
	p := NewPixmap(8, 6)
	if p.Width() != 8 || p.Height() != 6 {
		t.Errorf("size = %dx%d, want 8x6", p.Width(), p.Height())
	}
	if len(p.Data()) != 8*6*4 {
		t.Errorf("len(Data) = %d, want %d", len(p.Data()), 8*6*4)
	}
	if got := p.GetPixel(0, 0); got != Transparent {
		t.Errorf("fresh pixmap pixel = %v, want Transparent", got)
	}
}

func TestPixmapSetGetPixel(t *testing.T) {
	p := NewPixmap(4, 4)
	p.SetPixel(2, 1, RGB(1, 0, 0))
	if got := p.GetPixel(2, 1); !rgbaNear(got, RGB(1, 0, 0), 1.0/255) {
		t.Errorf("GetPixel = %v, want red", got)
	}
	if got := p.GetPixel(1, 2); got != Transparent {
		t.Errorf("untouched pixel = %v, want Transparent", got)
	}
}

func TestPixmapOutOfBounds(t *testing.T) {
	p := NewPixmap(2, 2)
	// Writes outside the pixmap are dropped, reads return Transparent.
	p.SetPixel(-1, 0, White)
	p.SetPixel(0, -1, White)
	p.SetPixel(2, 0, White)
	p.SetPixel(0, 2, White)
	for _, b := range p.Data() {
		if b != 0 {
			t.Fatal("out-of-bounds SetPixel wrote into the buffer")
		}
	}
	if got := p.GetPixel(5, 5); got != Transparent {
		t.Errorf("out-of-bounds GetPixel = %v, want Transparent", got)
	}
}

func TestPixmapClear(t *testing.T) {
	p := NewPixmap(3, 3)
	p.Clear(RGB(0, 1, 0))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := p.GetPixel(x, y); !rgbaNear(got, RGB(0, 1, 0), 1.0/255) {
				t.Fatalf("pixel (%d,%d) = %v after Clear", x, y, got)
			}
		}
	}
}

func TestPixmapToImage(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(1, 0, White)
	img := p.ToImage()
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("image bounds = %v", b)
	}
	r, g, bb, a := img.At(1, 0).RGBA()
	if r != 0xFFFF || g != 0xFFFF || bb != 0xFFFF || a != 0xFFFF {
		t.Errorf("image pixel = (%v,%v,%v,%v), want white", r, g, bb, a)
	}
}

func TestPixmapSavePNG(t *testing.T) {
	p := NewPixmap(4, 4)
	p.Clear(RGB(0, 0, 1))

	path := filepath.Join(t.TempDir(), "out.png")
	if err := p.SavePNG(path); err != nil {
		t.Fatalf("SavePNG = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("decoded bounds = %v", b)
	}
}
