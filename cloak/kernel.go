package cloak

import (
	"fmt"
	"strings"
)

// StructuringElement 形态学运算用的方形结构元素，锚点在中心 (Size/2, Size/2)
type StructuringElement struct {
	Size  int
	Cells []uint8 // 行优先，非 0 表示参与运算
}

const DefaultKernelSize = 5

// NewRectKernel 全 1 的 n×n 结构元素
func NewRectKernel(n int) StructuringElement {
	if n <= 0 {
		return StructuringElement{Size: n}
	}
	cells := make([]uint8, n*n)
	for i := range cells {
		cells[i] = 1
	}
	return StructuringElement{Size: n, Cells: cells}
}

// NewCrossKernel 十字形 n×n 结构元素，只有锚点所在的行和列为 1
func NewCrossKernel(n int) StructuringElement {
	if n <= 0 {
		return StructuringElement{Size: n}
	}
	cells := make([]uint8, n*n)
	c := n / 2
	for i := 0; i < n; i++ {
		cells[c*n+i] = 1
		cells[i*n+c] = 1
	}
	return StructuringElement{Size: n, Cells: cells}
}

// NewKernel 按名称构造结构元素：rect 或 cross
func NewKernel(shape string, n int) (StructuringElement, error) {
	var k StructuringElement
	switch strings.ToLower(strings.TrimSpace(shape)) {
	case "", "rect":
		k = NewRectKernel(n)
	case "cross":
		k = NewCrossKernel(n)
	default:
		return StructuringElement{}, fmt.Errorf("unknown kernel shape %q: %w", shape, ErrInvalidInput)
	}
	if err := k.Validate(); err != nil {
		return StructuringElement{}, err
	}
	return k, nil
}

func (k StructuringElement) Validate() error {
	if k.Size <= 0 {
		return fmt.Errorf("kernel size %d must be positive: %w", k.Size, ErrInvalidInput)
	}
	if len(k.Cells) != k.Size*k.Size {
		return fmt.Errorf("kernel has %d cells, want %d: %w", len(k.Cells), k.Size*k.Size, ErrInvalidInput)
	}
	for _, c := range k.Cells {
		if c != 0 {
			return nil
		}
	}
	return fmt.Errorf("kernel has no active cells: %w", ErrInvalidInput)
}

// offsets 返回所有激活单元相对锚点的偏移
func (k StructuringElement) offsets() [][2]int {
	anchor := k.Size / 2
	var out [][2]int
	for ky := 0; ky < k.Size; ky++ {
		for kx := 0; kx < k.Size; kx++ {
			if k.Cells[ky*k.Size+kx] != 0 {
				out = append(out, [2]int{kx - anchor, ky - anchor})
			}
		}
	}
	return out
}
