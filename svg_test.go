package trimesh

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redResult() *Result {
	return &Result{
		Width:  5,
		Height: 5,
		Triangles: []Triangle{
			{Nodes: [3]Point{{0, 0}, {4, 0}, {0, 4}}, Color: red},
			{Nodes: [3]Point{{4, 0}, {4, 4}, {0, 4}}, Color: blue},
		},
	}
}

func TestSVG_Draw(t *testing.T) {
	var buf bytes.Buffer
	s := &SVG{Title: "mesh"}
	require.NoError(t, s.Draw(&buf, redResult()))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, `d="M0,0 L4,0 L0,4 Z"`)
	assert.Contains(t, out, "fill:#ff0000;stroke:none")
	assert.Contains(t, out, "fill:#0000ff;stroke:none")
	assert.Contains(t, out, "<title>mesh</title>")
}

func TestSVG_Stroke(t *testing.T) {
	var buf bytes.Buffer
	s := &SVG{StrokeWidth: 0.5}
	require.NoError(t, s.Draw(&buf, redResult()))
	assert.Contains(t, buf.String(), "stroke:#ff0000;stroke-width:0.5;stroke-linecap:round")
}

func TestImage_Draw(t *testing.T) {
	for _, mode := range []int{WithoutWireframe, WithWireframe, WireframeOnly} {
		var buf bytes.Buffer
		im := &Image{Wireframe: mode, LineWidth: 1}
		require.NoError(t, im.Draw(&buf, redResult()))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())
	}

	err := (&Image{Wireframe: 7}).Draw(&bytes.Buffer{}, redResult())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestImage_Fill(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Image{}).Draw(&buf, redResult()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
}

func TestAddNoise(t *testing.T) {
	gray := func() *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{128, 128, 128, 255}), image.Point{}, draw.Src)
		return img
	}
	a, b, c := gray(), gray(), gray()
	addNoise(a, 20, 3)
	addNoise(b, 20, 3)
	addNoise(c, 20, 4)

	assert.Equal(t, a.Pix, b.Pix)
	assert.NotEqual(t, a.Pix, c.Pix)
	assert.NotEqual(t, gray().Pix, a.Pix)
	for i := 0; i < len(a.Pix); i += 4 {
		px := a.Pix[i : i+4]
		assert.Equal(t, px[0], px[1])
		assert.Equal(t, px[0], px[2])
		assert.Equal(t, uint8(255), px[3])
		assert.InDelta(t, 128, float64(px[0]), 20)
	}
}

func TestImage_Noise(t *testing.T) {
	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	res := &Result{
		Width:  8,
		Height: 8,
		Triangles: []Triangle{
			{Nodes: [3]Point{{0, 0}, {8, 0}, {0, 8}}, Color: gray},
			{Nodes: [3]Point{{8, 0}, {8, 8}, {0, 8}}, Color: gray},
		},
	}
	render := func(im *Image) []byte {
		var buf bytes.Buffer
		require.NoError(t, im.Draw(&buf, res))
		return buf.Bytes()
	}
	plain := render(&Image{})
	noisy := render(&Image{Noise: 30, Seed: 1})
	assert.NotEqual(t, plain, noisy)
	assert.Equal(t, noisy, render(&Image{Noise: 30, Seed: 1}))
}
