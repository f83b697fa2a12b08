package cloak

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// 关键色范围，默认近白色
	Range ColorRange
	// 开运算和膨胀共用的结构元素，默认 5×5 全 1
	Kernel StructuringElement
	// 背景尺寸对齐时的插值方式
	Interpolation Interpolation
}

func DefaultOptions() Options {
	return Options{
		Range:         DefaultColorRange(),
		Kernel:        NewRectKernel(DefaultKernelSize),
		Interpolation: InterpolationBilinear,
	}
}

func (o Options) Validate() error {
	if err := o.Range.Validate(); err != nil {
		return fmt.Errorf("color range: %w", err)
	}
	if err := o.Kernel.Validate(); err != nil {
		return fmt.Errorf("structuring element: %w", err)
	}
	return nil
}

// Pipeline 尺寸对齐 -> mask -> 合成。没有可变状态，可以被多个 goroutine 同时使用
type Pipeline struct {
	opts       Options
	reconciler *Reconciler
}

func NewPipeline(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		opts:       opts,
		reconciler: NewReconciler(opts.Interpolation),
	}, nil
}

func (p *Pipeline) Options() Options {
	return p.opts
}

type Result struct {
	Composite *image.NRGBA
	Mask      *image.Gray
	// Coverage 被替换为背景的像素占比
	Coverage float64
	// Bounds 被替换区域的外接矩形，mask 全 0 时为空
	Bounds image.Rectangle
}

func (p *Pipeline) Run(background, foreground image.Image) (*Result, error) {
	bg, err := p.reconciler.Reconcile(background, foreground)
	if err != nil {
		return nil, fmt.Errorf("reconcile size: %w", err)
	}

	mask, err := BuildMask(foreground, p.opts.Range, p.opts.Kernel)
	if err != nil {
		return nil, fmt.Errorf("build mask: %w", err)
	}

	out, err := Composite(bg, foreground, mask)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	res := &Result{Composite: out, Mask: mask, Coverage: Coverage(mask), Bounds: MaskBounds(mask)}
	slog.Debug("cloak pipeline done",
		"width", out.Bounds().Dx(), "height", out.Bounds().Dy(),
		"resized", !sameSize(background.Bounds(), foreground.Bounds()),
		"coverage", res.Coverage, "bounds", res.Bounds)
	return res, nil
}

type Pair struct {
	Background image.Image
	Foreground image.Image
}

// RunBatch 并发处理多组互不相关的图片，结果与输入顺序一致。
// 任意一组失败会取消尚未开始的组并返回第一个错误。
// workers <= 0 时使用 GOMAXPROCS。
func (p *Pipeline) RunBatch(ctx context.Context, pairs []Pair, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(pairs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, pair := range pairs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Run(pair.Background, pair.Foreground)
			if err != nil {
				return fmt.Errorf("pair %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
