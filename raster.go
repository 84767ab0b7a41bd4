package trimesh

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// Wireframe modes of the raster drawer.
const (
	WithoutWireframe = iota
	WithWireframe
	WireframeOnly
)

// Image rasterizes the triangles and encodes them as PNG.
type Image struct {
	Wireframe int
	LineWidth float64
	// IsSolid draws wireframe only lines in black instead of the triangle
	// color.
	IsSolid bool
	// Noise is the strength of a film grain laid over the drawing, zero
	// disables it. The grain is reproducible for a given Seed.
	Noise int
	Seed  int64
}

var _ Drawer = (*Image)(nil)

// Draw implements Drawer.
func (im *Image) Draw(w io.Writer, res *Result) error {
	if im.Wireframe < WithoutWireframe || im.Wireframe > WireframeOnly {
		return invalidf("unknown wireframe mode %d", im.Wireframe)
	}
	ctx := gg.NewContext(res.Width, res.Height)
	ctx.DrawRectangle(0, 0, float64(res.Width), float64(res.Height))
	ctx.SetRGBA(1, 1, 1, 1)
	ctx.Fill()

	for _, t := range res.Triangles {
		p0, p1, p2 := t.Nodes[0], t.Nodes[1], t.Nodes[2]

		ctx.Push()
		ctx.MoveTo(p0.X, p0.Y)
		ctx.LineTo(p1.X, p1.Y)
		ctx.LineTo(p2.X, p2.Y)
		ctx.LineTo(p0.X, p0.Y)

		fill := t.Color
		lineColor := fill
		if im.IsSolid {
			lineColor = color.NRGBA{A: 255}
		}

		switch im.Wireframe {
		case WithoutWireframe:
			ctx.SetFillStyle(gg.NewSolidPattern(fill))
			ctx.FillPreserve()
			// A hairline of the same color closes the seams between triangles.
			ctx.SetStrokeStyle(gg.NewSolidPattern(fill))
			ctx.SetLineWidth(1)
			ctx.Stroke()
		case WithWireframe:
			ctx.SetFillStyle(gg.NewSolidPattern(fill))
			ctx.SetStrokeStyle(gg.NewSolidPattern(color.NRGBA{A: 20}))
			ctx.SetLineWidth(im.LineWidth)
			ctx.FillPreserve()
			ctx.Stroke()
		case WireframeOnly:
			ctx.SetStrokeStyle(gg.NewSolidPattern(lineColor))
			ctx.SetLineWidth(im.LineWidth)
			ctx.Stroke()
		}
		ctx.Pop()
	}

	img := ctx.Image()
	if im.Noise > 0 {
		if rgba, ok := img.(*image.RGBA); ok {
			addNoise(rgba, im.Noise, im.Seed)
		}
	}
	return errors.Wrap(png.Encode(w, img), "encoding png")
}

// addNoise shifts every pixel by the same random amount on each channel, like
// a grain filter. A pixel is left untouched when the shift would push any of
// its channels out of range. The drawing is opaque, so the premultiplied
// channels can be shifted directly.
func addNoise(img *image.RGBA, amount int, seed int64) {
	rnd := rand.New(rand.NewSource(seed))
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			noise := (rnd.Float64() - 0.1) * float64(amount)
			i := img.PixOffset(x, y)
			px := img.Pix[i : i+3 : i+3]

			fits := true
			for _, c := range px {
				if v := float64(c) + noise; v < 0 || v > 255 {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}
			for j, c := range px {
				px[j] = uint8(float64(c) + noise)
			}
		}
	}
}
