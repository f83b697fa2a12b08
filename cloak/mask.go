package cloak

import (
	"fmt"
	"image"
)

// Threshold 只做颜色空间转换 + 范围判断，不做形态学清理。
// 像素的 HSV 三个分量都落在 [Lower, Upper] 内则为 255，否则为 0。
func Threshold(frame image.Image, r ColorRange) (*image.Gray, error) {
	if err := checkImage("frame", frame); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("color range: %w", err)
	}

	src := toRGB(frame)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	hsv := toHSV(src)

	mask := image.NewGray(image.Rect(0, 0, w, h))
	for i, p := range hsv {
		if r.Contains(p) {
			mask.Pix[i] = 0xff
		}
	}
	return mask, nil
}

// BuildMask 生成关键色的二值 mask
//
//  1. RGB 转 HSV（只在这里做颜色空间转换）
//  2. 范围判断得到原始 mask
//  3. 开运算一次，去掉零星误检
//  4. 膨胀一次，补偿边缘、填上布料边界的小缝
//
// 输出只包含 0 和 255
func BuildMask(frame image.Image, r ColorRange, k StructuringElement) (*image.Gray, error) {
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("structuring element: %w", err)
	}

	mask, err := Threshold(frame, r)
	if err != nil {
		return nil, err
	}

	mask = Open(mask, k)
	mask = Dilate(mask, k)
	return mask, nil
}

// Coverage mask 中 255 像素的占比
func Coverage(mask *image.Gray) float64 {
	b := mask.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	n := 0
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] == 0xff {
				n++
			}
		}
	}
	return float64(n) / float64(total)
}
