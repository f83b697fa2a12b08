package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/chaos-io/invisicloak/cloak"
)

type Config struct {
	Addr string

	Lower         string
	Upper         string
	KernelSize    int
	KernelShape   string
	Interpolation string

	SessionTTL     time.Duration
	SweepSpec      string
	MaxUploadBytes int64
	// MaxSide 上传图片最长边的上限，超过会等比缩小，0 表示不限制
	MaxSide     int
	HTTPTimeout time.Duration
	LogLevel    string
}

func Default() Config {
	r := cloak.DefaultColorRange()
	return Config{
		Addr:           ":8080",
		Lower:          r.Lower.String(),
		Upper:          r.Upper.String(),
		KernelSize:     cloak.DefaultKernelSize,
		KernelShape:    "rect",
		Interpolation:  "bilinear",
		SessionTTL:     30 * time.Minute,
		SweepSpec:      "@every 1m",
		MaxUploadBytes: 20 << 20,
		MaxSide:        1920,
		HTTPTimeout:    30 * time.Second,
		LogLevel:       "info",
	}
}

// Load 先读取可选的 .env 文件（不存在不报错），再用 CLOAK_* 环境变量覆盖默认值
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	d := Default()
	return Config{
		Addr:           envOrDefault("CLOAK_ADDR", d.Addr),
		Lower:          envOrDefault("CLOAK_LOWER", d.Lower),
		Upper:          envOrDefault("CLOAK_UPPER", d.Upper),
		KernelSize:     envOrDefault("CLOAK_KERNEL_SIZE", d.KernelSize),
		KernelShape:    envOrDefault("CLOAK_KERNEL_SHAPE", d.KernelShape),
		Interpolation:  envOrDefault("CLOAK_INTERPOLATION", d.Interpolation),
		SessionTTL:     envOrDefault("CLOAK_SESSION_TTL", d.SessionTTL),
		SweepSpec:      envOrDefault("CLOAK_SWEEP_SPEC", d.SweepSpec),
		MaxUploadBytes: envOrDefault("CLOAK_MAX_UPLOAD_BYTES", d.MaxUploadBytes),
		MaxSide:        envOrDefault("CLOAK_MAX_SIDE", d.MaxSide),
		HTTPTimeout:    envOrDefault("CLOAK_HTTP_TIMEOUT", d.HTTPTimeout),
		LogLevel:       envOrDefault("CLOAK_LOG_LEVEL", d.LogLevel),
	}
}

// PipelineOptions 把字符串配置转换成流水线参数，非法配置返回 cloak.ErrInvalidInput
func (c Config) PipelineOptions() (cloak.Options, error) {
	r, err := cloak.ParseColorRange(c.Lower, c.Upper)
	if err != nil {
		return cloak.Options{}, err
	}
	k, err := cloak.NewKernel(c.KernelShape, c.KernelSize)
	if err != nil {
		return cloak.Options{}, err
	}
	interp, err := cloak.ParseInterpolation(c.Interpolation)
	if err != nil {
		return cloak.Options{}, err
	}
	return cloak.Options{Range: r, Kernel: k, Interpolation: interp}, nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault[T any](key string, defaultValue T) T {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case string:
		return any(value).(T)
	case int:
		if v, err := strconv.Atoi(value); err == nil {
			return any(v).(T)
		}
	case int64:
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return any(v).(T)
		}
	case time.Duration:
		if v, err := time.ParseDuration(value); err == nil {
			return any(v).(T)
		}
	}

	slog.Warn("ignoring malformed env value", "key", key, "value", value)
	return defaultValue
}
