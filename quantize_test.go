package trimesh

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blue = color.NRGBA{B: 255, A: 255}

// twoColorImage is red on the left half and blue on the right half.
func twoColorImage() *image.NRGBA {
	img := solidImage(8, 4, red)
	for y := 0; y < 4; y++ {
		for x := 4; x < 8; x++ {
			img.SetNRGBA(x, y, blue)
		}
	}
	return img
}

func blackPixels(band *image.Gray) int {
	var n int
	for _, v := range band.Pix {
		if v == 0 {
			n++
		}
	}
	return n
}

func TestQuantizeBands_TwoColors(t *testing.T) {
	bands, palette, err := QuantizeBands(twoColorImage(), 2, 1)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.ElementsMatch(t, []color.NRGBA{red, blue}, palette)

	for i, band := range bands {
		assert.Equal(t, 16, blackPixels(band))
		want := uint8(0xff)
		if palette[i] == red {
			want = 0
		}
		assert.Equal(t, want, band.GrayAt(0, 0).Y)
	}
}

func TestQuantizer_Stacked(t *testing.T) {
	q := Quantizer{K: 2, Seed: 1, Stacked: true}
	bands, _, err := q.Bands(twoColorImage())
	require.NoError(t, err)
	require.Len(t, bands, 2)

	assert.Equal(t, 32, blackPixels(bands[0]))
	assert.Equal(t, 16, blackPixels(bands[1]))
}

func TestQuantizer_Deterministic(t *testing.T) {
	img := gradientImage(24, 24)
	a, pa, err := QuantizeBands(img, 4, 7)
	require.NoError(t, err)
	b, pb, err := QuantizeBands(img, 4, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, pa, pb)
}

func TestQuantizer_InvalidK(t *testing.T) {
	_, _, err := QuantizeBands(twoColorImage(), 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
