// Command rectdemo renders a sample rectangle scene with the software
// renderer and writes it to a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"

	"github.com/gogpu/rectpipe"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "rects.png", "output file")
	)
	flag.Parse()

	pool := rectpipe.NewTexturePool(64)
	checker, err := pool.Register(checkerboard(64, 8))
	if err != nil {
		log.Fatalf("Failed to register texture: %v", err)
	}

	list := rectpipe.NewDrawList()
	if err := list.Begin(rectpipe.NewViewport(float32(*width), float32(*height))); err != nil {
		log.Fatalf("Failed to begin frame: %v", err)
	}
	if err := list.Clear(rectpipe.RGB(0.12, 0.12, 0.16)); err != nil {
		log.Fatalf("Failed to clear: %v", err)
	}

	buildScene(list, checker, float32(*width), float32(*height))
	list.Finish()

	target := rectpipe.NewPixmap(*width, *height)
	if err := rectpipe.NewSoftwareRenderer().Render(target, list, pool); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if err := target.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d, %d rects)\n", *output, *width, *height, len(list.Rects()))
}

func buildScene(list *rectpipe.DrawList, checker rectpipe.TextureID, w, h float32) {
	push := func(r rectpipe.Rect) {
		if err := list.Push(r); err != nil {
			log.Fatalf("Failed to push rect: %v", err)
		}
	}

	// A row of tinted solid rectangles along the top.
	colors := []rectpipe.RGBA{
		rectpipe.RGB(0.9, 0.3, 0.3),
		rectpipe.RGB(0.3, 0.9, 0.3),
		rectpipe.RGB(0.3, 0.3, 0.9),
		rectpipe.RGB(0.9, 0.8, 0.2),
	}
	cell := w / float32(len(colors)+1)
	for i, c := range colors {
		push(rectpipe.Rect{
			Origin: rectpipe.V2(cell*0.5+cell*float32(i), h*0.08),
			Size:   rectpipe.V2(cell*0.8, h*0.2),
			UV:     rectpipe.FullTexture,
			Color:  c,
		})
	}

	// Checkerboard panels: point filtered on the left, linear on the right.
	push(rectpipe.Rect{
		Origin:    rectpipe.V2(w*0.1, h*0.4),
		Size:      rectpipe.V2(w*0.35, h*0.35),
		UV:        rectpipe.FullTexture,
		Color:     rectpipe.White,
		TextureID: checker,
	})
	push(rectpipe.Rect{
		Origin:    rectpipe.V2(w*0.55, h*0.4),
		Size:      rectpipe.V2(w*0.35, h*0.35),
		UV:        rectpipe.FullTexture,
		Color:     rectpipe.White,
		TextureID: checker,
		Flags:     rectpipe.FlagLinearFilter,
	})

	// Overlapping translucent rects to show the blend.
	push(rectpipe.Rect{
		Origin: rectpipe.V2(w*0.3, h*0.8),
		Size:   rectpipe.V2(w*0.25, h*0.12),
		UV:     rectpipe.FullTexture,
		Color:  rectpipe.NewRGBA(0.9, 0.2, 0.2, 0.9).Premultiply(),
	})
	push(rectpipe.Rect{
		Origin: rectpipe.V2(w*0.45, h*0.84),
		Size:   rectpipe.V2(w*0.25, h*0.12),
		UV:     rectpipe.FullTexture,
		Color:  rectpipe.NewRGBA(0.2, 0.4, 0.9, 0.6).Premultiply(),
	})
}

// checkerboard builds a size x size test texture with cells of the given
// pixel size.
func checkerboard(size, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if ((x/cell)+(y/cell))%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
			}
		}
	}
	return img
}
