package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/invisicloak/cloak"
	"github.com/chaos-io/invisicloak/util"
)

var (
	errNoPhoto      = errors.New("no photo taken, attach the image as form field \"image\"")
	errNoBackground = errors.New("no background captured yet, capture background first")
)

func (s *Server) createSession(c *gin.Context) {
	id := s.store.Create()
	slog.Debug("session created", "id", id)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) captureBackground(c *gin.Context) {
	img, err := s.formImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.store.Capture(c.Param("id"), img); err != nil {
		abortWithError(c, err)
		return
	}

	b := img.Bounds()
	c.JSON(http.StatusOK, gin.H{"captured": true, "width": b.Dx(), "height": b.Dy()})
}

func (s *Server) clearBackground(c *gin.Context) {
	if err := s.store.Clear(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cloak 上传带布料的照片，返回合成后的 PNG。?output=mask 时返回 mask
func (s *Server) cloak(c *gin.Context) {
	id := c.Param("id")
	bg, ok, err := s.store.Background(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	fg, err := s.formImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": errNoBackground.Error()})
		return
	}

	p, err := s.requestPipeline(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := p.Run(bg, fg)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var out image.Image = res.Composite
	if c.Query("output") == "mask" {
		out = res.Mask
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		abortWithError(c, fmt.Errorf("png encode: %w", err))
		return
	}

	c.Header("X-Cloak-Coverage", strconv.FormatFloat(res.Coverage, 'f', 4, 64))
	if !res.Bounds.Empty() {
		c.Header("X-Cloak-Bounds", fmt.Sprintf("%d,%d,%d,%d", res.Bounds.Min.X, res.Bounds.Min.Y, res.Bounds.Max.X, res.Bounds.Max.Y))
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// requestPipeline 表单里的 lower/upper/kernel 可以覆盖默认阈值（例如前端的滑块）
func (s *Server) requestPipeline(c *gin.Context) (*cloak.Pipeline, error) {
	lower, upper, kernel := c.PostForm("lower"), c.PostForm("upper"), c.PostForm("kernel")
	if lower == "" && upper == "" && kernel == "" {
		return s.pipeline, nil
	}

	opts := s.pipeline.Options()
	if lower != "" || upper != "" {
		if lower == "" {
			lower = opts.Range.Lower.String()
		}
		if upper == "" {
			upper = opts.Range.Upper.String()
		}
		r, err := cloak.ParseColorRange(lower, upper)
		if err != nil {
			return nil, err
		}
		opts.Range = r
	}
	if kernel != "" {
		n, err := strconv.Atoi(kernel)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: %v: %w", kernel, err, cloak.ErrInvalidInput)
		}
		k, err := cloak.NewKernel("rect", n)
		if err != nil {
			return nil, err
		}
		opts.Kernel = k
	}
	return cloak.NewPipeline(opts)
}

// formImage 读取表单字段 image 并解码，超过 MaxSide 的照片会先等比缩小
func (s *Server) formImage(c *gin.Context) (image.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("upload exceeds %d bytes: %w", maxErr.Limit, cloak.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", errNoPhoto, cloak.ErrInvalidInput)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	img, err := util.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, cloak.ErrInvalidInput)
	}
	return cloak.FitWithin(img, s.cfg.MaxSide)
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cloak.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
