package cloak

import (
	"fmt"
	"image"
	"image/draw"
)

// checkImage 拒绝 nil 或零面积图片
func checkImage(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%s is nil: %w", name, ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%s has zero area (%dx%d): %w", name, b.Dx(), b.Dy(), ErrInvalidInput)
	}
	return nil
}

// toRGB 把任意图片统一成原点在 (0,0) 的 NRGBA，alpha 全部置为 255。
// 相当于 "convert RGB"：直接丢弃 alpha，不与任何底色混合。
// 总是返回新分配的缓冲区，不会修改输入。
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	} else {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func sameSize(a, b image.Rectangle) bool {
	return a.Dx() == b.Dx() && a.Dy() == b.Dy()
}
