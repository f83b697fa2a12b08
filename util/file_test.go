package util

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nhttp "github.com/chaos-io/invisicloak/util/http"
)

func testPNG(t *testing.T) (*image.NRGBA, []byte) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return img, buf.Bytes()
}

func TestSavePNG_OpenImage(t *testing.T) {
	t.Parallel()

	img, _ := testPNG(t)
	path := filepath.Join(t.TempDir(), "out", "composite.png")

	require.NoError(t, SavePNG(path, img))

	got, err := OpenImage(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	r, _, _, _ := got.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestOpenImage_Missing(t *testing.T) {
	t.Parallel()

	_, err := OpenImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	t.Parallel()

	img, data := testPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bg.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	cli := nhttp.NewHTTPClient()

	got, err := LoadImage(context.Background(), cli, server.URL+"/bg.png")
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	_, err = LoadImage(context.Background(), cli, server.URL+"/none.png")
	assert.ErrorContains(t, err, "status 404")

	path := filepath.Join(t.TempDir(), "fg.png")
	require.NoError(t, SavePNG(path, img))
	got, err = LoadImage(context.Background(), cli, path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
}

func TestDecodeImage_Garbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeImage([]byte("not an image"))
	assert.ErrorContains(t, err, "decode image")
}
