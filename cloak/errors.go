package cloak

import "errors"

var (
	// ErrInvalidInput 输入图片为空（宽或高为 0），或颜色范围、结构元素配置非法
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimensionMismatch 合成时背景、前景、mask 尺寸不一致，通常是调用方跳过了尺寸对齐
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
