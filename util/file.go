package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	nhttp "github.com/chaos-io/invisicloak/util/http"
)

// DownloadImage 下载并解码图片
func DownloadImage(ctx context.Context, cli nhttp.IClient, url string) (image.Image, error) {
	var data []byte
	err := cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: url,
		Method:     "GET",
		Response:   &data,
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return DecodeImage(data)
}

// DecodeImage 解码 PNG/JPEG/GIF/BMP/WebP
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	slog.Debug("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadImage http(s) 开头的走下载，其余按本地路径打开
func LoadImage(ctx context.Context, cli nhttp.IClient, pathOrURL string) (image.Image, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return DownloadImage(ctx, cli, pathOrURL)
	}
	return OpenImage(pathOrURL)
}

// SavePNG 编码为 PNG 写入文件，必要时创建目录
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("png encode %s: %w", path, err)
	}
	return nil
}

// Trace 记录一段操作的耗时，用法：defer util.Trace("composite")()
func Trace(msg string) func() {
	start := time.Now()
	slog.Debug("enter " + msg)
	return func() {
		slog.Info(msg, "elapsed", time.Since(start))
	}
}
