package cloak

import (
	"image"

	"github.com/nfnt/resize"
)

// MaskBounds mask 中所有 255 像素的外接矩形，没有任何 255 像素时返回空矩形
func MaskBounds(mask *image.Gray) image.Rectangle {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			if row[x] != 0xff {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// FitWithin 最长边超过 maxSide 时等比缩小（Lanczos3），否则原样返回。
// maxSide <= 0 表示不限制。
func FitWithin(img image.Image, maxSide int) (image.Image, error) {
	if err := checkImage("image", img); err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return img, nil
	}

	scale := float64(maxSide) / float64(longest)
	nw, nh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	return toRGB(resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3)), nil
}
