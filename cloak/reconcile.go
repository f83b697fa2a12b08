package cloak

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Interpolation 背景缩放使用的插值方式，全部是确定性的
type Interpolation int

const (
	InterpolationBilinear Interpolation = iota
	InterpolationCatmullRom
	InterpolationLanczos
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationBilinear:
		return "bilinear"
	case InterpolationCatmullRom:
		return "catmullrom"
	case InterpolationLanczos:
		return "lanczos"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation 解析配置里的插值名称，空字符串视为 bilinear
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear", "linear":
		return InterpolationBilinear, nil
	case "catmullrom", "bicubic", "cubic":
		return InterpolationCatmullRom, nil
	case "lanczos", "lanczos3":
		return InterpolationLanczos, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q: %w", s, ErrInvalidInput)
}

type Reconciler struct {
	Interpolation Interpolation
}

func NewReconciler(interp Interpolation) *Reconciler {
	return &Reconciler{Interpolation: interp}
}

// ReconcileSize 用默认的双线性插值对齐背景尺寸
func ReconcileSize(background, foreground image.Image) (image.Image, error) {
	return NewReconciler(InterpolationBilinear).Reconcile(background, foreground)
}

// Reconcile 让背景与前景尺寸一致
//
//	尺寸相同：原样返回 background 本身（同一个值，不拷贝）
//	尺寸不同：强制缩放到前景的宽高，不裁剪、不保持宽高比
func (r *Reconciler) Reconcile(background, foreground image.Image) (image.Image, error) {
	if err := checkImage("background", background); err != nil {
		return nil, err
	}
	if err := checkImage("foreground", foreground); err != nil {
		return nil, err
	}

	bb, fb := background.Bounds(), foreground.Bounds()
	if sameSize(bb, fb) {
		return background, nil
	}

	w, h := fb.Dx(), fb.Dy()
	switch r.Interpolation {
	case InterpolationBilinear:
		return toRGB(resize.Resize(uint(w), uint(h), background, resize.Bilinear)), nil
	case InterpolationLanczos:
		return toRGB(resize.Resize(uint(w), uint(h), background, resize.Lanczos3)), nil
	case InterpolationCatmullRom:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), background, bb, draw.Src, nil)
		return toRGB(dst), nil
	}
	return nil, fmt.Errorf("unsupported interpolation %s: %w", r.Interpolation, ErrInvalidInput)
}
