package trimesh

import (
	"image/color"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildImportance_UniformImage(t *testing.T) {
	field, err := BuildImportance(solidImage(10, 10, black), 1)
	require.NoError(t, err)

	assert.Equal(t, 10, field.Width)
	assert.Equal(t, 10, field.Height)
	assert.Equal(t, 3, field.Channels)
	for _, v := range field.Pix {
		assert.Zero(t, v)
	}
}

func TestBuildImportance_SingleWhitePixel(t *testing.T) {
	img := solidImage(4, 4, black)
	img.SetNRGBA(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	field, err := BuildImportance(img, 1)
	require.NoError(t, err)
	assert.InDelta(t, 255, field.Max(), 1e-9)

	// The first maximum in row-major order lies next to the white pixel.
	px, py := -1, -1
	for y := 0; y < field.Height && px < 0; y++ {
		for x := 0; x < field.Width; x++ {
			if field.At(x, y, 0) == field.Max() {
				px, py = x, y
				break
			}
		}
	}
	assert.LessOrEqual(t, math.Abs(float64(px-2)), 1.0)
	assert.LessOrEqual(t, math.Abs(float64(py-2)), 1.0)
}

func TestBuildImportance_Gamma(t *testing.T) {
	img := gradientImage(16, 16)
	linear, err := BuildImportance(img, 1)
	require.NoError(t, err)
	low, err := BuildImportance(img, 0.5)
	require.NoError(t, err)

	for i, v := range linear.Pix {
		assert.LessOrEqual(t, low.Pix[i], v+1e-9)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 255+1e-9)
	}
}

func TestBuildImportance_InvalidGamma(t *testing.T) {
	for _, gamma := range []float64{0, -1, math.NaN()} {
		_, err := BuildImportance(solidImage(2, 2, black), gamma)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "gamma %v", gamma)
	}
}
