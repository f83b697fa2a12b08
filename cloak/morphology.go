package cloak

import "image"

// Erode 腐蚀：像素保留为 255 当且仅当结构元素覆盖到的所有图内像素都是 255。
// 图外的邻居不参与判断（相当于边界值为 255），所以边缘不会被额外吃掉。
func Erode(src *image.Gray, k StructuringElement) *image.Gray {
	return morph(src, k, true)
}

// Dilate 膨胀：结构元素覆盖到的图内像素只要有一个是 255，结果就是 255
func Dilate(src *image.Gray, k StructuringElement) *image.Gray {
	return morph(src, k, false)
}

// Open 开运算：先腐蚀再膨胀，去掉比结构元素小的孤立噪点，不会让保留下来的区域变大
func Open(src *image.Gray, k StructuringElement) *image.Gray {
	return Dilate(Erode(src, k), k)
}

func morph(src *image.Gray, k StructuringElement, erode bool) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	offs := k.offsets()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hit := erode
			for _, o := range offs {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				set := src.Pix[src.PixOffset(b.Min.X+nx, b.Min.Y+ny)] == 0xff
				if erode && !set {
					hit = false
					break
				}
				if !erode && set {
					hit = true
					break
				}
			}
			if hit {
				dst.Pix[y*dst.Stride+x] = 0xff
			}
		}
	}
	return dst
}
