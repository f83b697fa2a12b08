package cloak

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSize_SameSizeIsNoop(t *testing.T) {
	t.Parallel()

	bg := createTestImage(4, 3, red)
	fg := createTestImage(4, 3, white)
	before := append([]uint8(nil), bg.Pix...)

	got, err := ReconcileSize(bg, fg)
	require.NoError(t, err)
	assert.Same(t, bg, got)
	assert.Equal(t, before, got.(*image.NRGBA).Pix)
}

func TestReconciler_Reconcile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		interp Interpolation
	}{
		{name: "双线性", interp: InterpolationBilinear},
		{name: "CatmullRom", interp: InterpolationCatmullRom},
		{name: "Lanczos", interp: InterpolationLanczos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bg := createTestImage(8, 6, red)
			fg := createTestImage(3, 5, white)

			got, err := NewReconciler(tt.interp).Reconcile(bg, fg)
			require.NoError(t, err)
			assert.Equal(t, 3, got.Bounds().Dx())
			assert.Equal(t, 5, got.Bounds().Dy())

			_, _, _, a := got.At(1, 1).RGBA()
			assert.Equal(t, uint32(0xffff), a)
			// 原图不应被修改
			assert.Equal(t, 8, bg.Bounds().Dx())
		})
	}
}

func TestReconcileSize_BilinearKeepsUniformColor(t *testing.T) {
	t.Parallel()

	bg := createTestImage(4, 4, red)
	fg := createTestImage(2, 2, white)

	got, err := ReconcileSize(bg, fg)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r, g, b, _ := got.At(x, y).RGBA()
			assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
		}
	}
}

func TestReconcileSize_ZeroArea(t *testing.T) {
	t.Parallel()

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 5))
	flat := image.NewNRGBA(image.Rect(0, 0, 5, 0))
	ok := createTestImage(5, 5, red)

	_, err := ReconcileSize(empty, ok)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReconcileSize(ok, flat)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReconcileSize(nil, ok)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseInterpolation(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Interpolation{
		"":           InterpolationBilinear,
		"Bilinear":   InterpolationBilinear,
		"catmullrom": InterpolationCatmullRom,
		"lanczos3":   InterpolationLanczos,
	} {
		got, err := ParseInterpolation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseInterpolation("nearest-ish")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
