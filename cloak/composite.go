package cloak

import (
	"fmt"
	"image"
)

// selectLUT mask 值到按位选择掩码的映射：只有 255 选背景，其余一律选前景
var selectLUT = func() (t [256]uint8) {
	t[0xff] = 0xff
	return t
}()

// Composite 按 mask 合成：mask 为 255 的位置取背景，其余取前景。
// 等价于 bitwise_and(bg, mask) + bitwise_and(fg, ^mask)，两部分互不重叠，相加不会溢出。
// 三者尺寸必须一致，否则返回 ErrDimensionMismatch，且不产生任何输出。
func Composite(background, foreground image.Image, mask *image.Gray) (*image.NRGBA, error) {
	if err := checkImage("background", background); err != nil {
		return nil, err
	}
	if err := checkImage("foreground", foreground); err != nil {
		return nil, err
	}
	if mask == nil {
		return nil, fmt.Errorf("mask is nil: %w", ErrInvalidInput)
	}
	if err := checkImage("mask", mask); err != nil {
		return nil, err
	}

	bb, fb, mb := background.Bounds(), foreground.Bounds(), mask.Bounds()
	if !sameSize(bb, fb) || !sameSize(fb, mb) {
		return nil, fmt.Errorf("background %dx%d, foreground %dx%d, mask %dx%d: %w",
			bb.Dx(), bb.Dy(), fb.Dx(), fb.Dy(), mb.Dx(), mb.Dy(), ErrDimensionMismatch)
	}

	bg, fg := toRGB(background), toRGB(foreground)
	w, h := fb.Dx(), fb.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		mrow := mask.Pix[mask.PixOffset(mb.Min.X, mb.Min.Y+y):]
		row := y * out.Stride
		for x := 0; x < w; x++ {
			m := selectLUT[mrow[x]]
			i := row + x*4
			out.Pix[i] = bg.Pix[i]&m + fg.Pix[i]&^m
			out.Pix[i+1] = bg.Pix[i+1]&m + fg.Pix[i+1]&^m
			out.Pix[i+2] = bg.Pix[i+2]&m + fg.Pix[i+2]&^m
			out.Pix[i+3] = 0xff
		}
	}
	return out, nil
}
