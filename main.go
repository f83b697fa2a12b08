package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaos-io/invisicloak/cloak"
	"github.com/chaos-io/invisicloak/config"
	"github.com/chaos-io/invisicloak/server"
	"github.com/chaos-io/invisicloak/util"
	nhttp "github.com/chaos-io/invisicloak/util/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		serve    bool
		bgPath   string
		fgPath   string
		outPath  string
		maskPath string
	)
	flag.BoolVar(&serve, "serve", false, "run the HTTP server instead of a one-shot composite")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&bgPath, "bg", "", "background image path or URL")
	flag.StringVar(&fgPath, "fg", "", "foreground (cloak) image path or URL")
	flag.StringVar(&outPath, "out", "output/composite.png", "composite output path")
	flag.StringVar(&maskPath, "mask", "", "optional mask output path")
	flag.StringVar(&cfg.Lower, "lower", cfg.Lower, "key colour lower bound h,s,v (hue 0-180)")
	flag.StringVar(&cfg.Upper, "upper", cfg.Upper, "key colour upper bound h,s,v (hue 0-180)")
	flag.IntVar(&cfg.KernelSize, "kernel", cfg.KernelSize, "structuring element size")
	flag.StringVar(&cfg.KernelShape, "kernel-shape", cfg.KernelShape, "structuring element shape (rect or cross)")
	flag.StringVar(&cfg.Interpolation, "interp", cfg.Interpolation, "background resize interpolation (bilinear, catmullrom, lanczos)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.Parse()

	if serve {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		slog.Error("invalid pipeline config", "error", err)
		os.Exit(2)
	}
	pipeline, err := cloak.NewPipeline(opts)
	if err != nil {
		slog.Error("invalid pipeline config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serve {
		err = runServer(ctx, cfg, pipeline)
	} else {
		err = runOnce(ctx, cfg, pipeline, bgPath, fgPath, outPath, maskPath)
	}
	if err != nil {
		slog.Error("failed", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Config, pipeline *cloak.Pipeline) error {
	s, err := server.New(cfg, pipeline)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

func runOnce(ctx context.Context, cfg config.Config, pipeline *cloak.Pipeline, bgPath, fgPath, outPath, maskPath string) error {
	if bgPath == "" || fgPath == "" {
		return fmt.Errorf("both -bg and -fg are required (or use -serve)")
	}
	defer util.Trace("composite")()

	cli := nhttp.NewHTTPClientWithTimeout(cfg.HTTPTimeout)
	bg, err := util.LoadImage(ctx, cli, bgPath)
	if err != nil {
		return fmt.Errorf("load background: %w", err)
	}
	fg, err := util.LoadImage(ctx, cli, fgPath)
	if err != nil {
		return fmt.Errorf("load foreground: %w", err)
	}

	res, err := pipeline.Run(bg, fg)
	if err != nil {
		return err
	}

	if err := util.SavePNG(outPath, res.Composite); err != nil {
		return err
	}
	if maskPath != "" {
		if err := util.SavePNG(maskPath, res.Mask); err != nil {
			return err
		}
	}

	slog.Info("done", "composite", outPath, "mask", maskPath, "coverage", res.Coverage)
	return nil
}
