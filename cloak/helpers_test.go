package cloak

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)

func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// fillRect 在 [x0,x1)×[y0,y1) 内填充颜色
func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func grayOf(w, h int, pix ...uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	copy(g.Pix, pix)
	return g
}

func countSet(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v == 0xff {
			n++
		}
	}
	return n
}
