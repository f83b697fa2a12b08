package cloak

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HueMax 8 位 HSV 约定下色相的上界：[0,360) 度被折半存进一个字节
const HueMax = 180

// HSV 8 位 HSV 三元组：H ∈ [0,180]，S、V ∈ [0,255]
type HSV struct {
	H, S, V uint8
}

// hsvFromRGB 通过 go-colorful 做转换，再把色相折半、饱和度和明度放大到 0-255。
// 白色、灰色等无彩色的色相为 0。
func hsvFromRGB(r, g, b uint8) HSV {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	return HSV{
		H: uint8(math.Min(math.Round(h/2), HueMax)),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// toHSV 把统一后的 RGB 缓冲区转换为 HSV 平面，按像素顺序存放
func toHSV(src *image.NRGBA) []HSV {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := make([]HSV, w*h)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			i := row + x*4
			out[y*w+x] = hsvFromRGB(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		}
	}
	return out
}
