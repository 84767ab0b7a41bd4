package trimesh

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/dennwc/gotrace"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// CurveTracer vectorizes a single color band into closed curves.
type CurveTracer interface {
	Trace(band *image.Gray) ([]gotrace.Path, error)
}

// PotraceTracer traces bands with the potrace algorithm. Black pixels are
// foreground. A nil Params uses the library defaults.
type PotraceTracer struct {
	Params *gotrace.Params
}

var _ CurveTracer = PotraceTracer{}

// bandThreshold separates foreground from background band pixels.
const bandThreshold = 0x80

// Trace implements CurveTracer.
func (t PotraceTracer) Trace(band *image.Gray) ([]gotrace.Path, error) {
	bm := gotrace.NewBitmapFromImage(band, func(x, y int, c color.Color) bool {
		return color.GrayModel.Convert(c).(color.Gray).Y < bandThreshold
	})
	paths, err := gotrace.Trace(bm, t.Params)
	if err != nil {
		return nil, errors.Wrap(err, "tracing color band")
	}
	return paths, nil
}

// TraceBands traces every band and rasterizes the curves back onto a grid of
// the band's size, ready for curve unification.
func TraceBands(tracer CurveTracer, bands []*image.Gray) ([]*image.Gray, error) {
	curves := make([]*image.Gray, 0, len(bands))
	for i, band := range bands {
		paths, err := tracer.Trace(band)
		if err != nil {
			return nil, errors.Wrapf(err, "band %d", i)
		}
		b := band.Bounds()
		curves = append(curves, RasterizePaths(paths, b.Dx(), b.Dy()))
	}
	return curves, nil
}

// RasterizePaths fills traced paths in black on a white width×height grid
// using the even-odd rule. The path list is flat, holes included, the same
// way gotrace writes it to SVG; the Childs tree is not walked again.
func RasterizePaths(paths []gotrace.Path, width, height int) *image.Gray {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFillRuleEvenOdd()
	for _, p := range paths {
		appendCurve(dc, p.Curve)
	}
	dc.SetRGB(0, 0, 0)
	dc.Fill()

	return toGray(dc.Image())
}

// appendCurve adds one closed potrace curve to the current path. A curve
// starts at the end point of its last segment.
func appendCurve(dc *gg.Context, curve []gotrace.Segment) {
	if len(curve) == 0 {
		return
	}
	start := curve[len(curve)-1].Pnt[2]
	dc.MoveTo(start.X, start.Y)
	for _, s := range curve {
		switch s.Type {
		case gotrace.TypeCorner:
			dc.LineTo(s.Pnt[1].X, s.Pnt[1].Y)
			dc.LineTo(s.Pnt[2].X, s.Pnt[2].Y)
		case gotrace.TypeBezier:
			dc.CubicTo(s.Pnt[0].X, s.Pnt[0].Y, s.Pnt[1].X, s.Pnt[1].Y, s.Pnt[2].X, s.Pnt[2].Y)
		}
	}
	dc.ClosePath()
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	return Grayscale(ImgToNRGBA(img))
}

// WriteBand encodes a color band as a BMP image.
func WriteBand(w io.Writer, band *image.Gray) error {
	return errors.Wrap(bmp.Encode(w, band), "encoding band")
}

// WriteTracedSVG writes the traced paths of a band as an SVG document filled
// with the given color.
func WriteTracedSVG(w io.Writer, rect image.Rectangle, paths []gotrace.Path, fill color.NRGBA) error {
	return errors.Wrap(gotrace.WriteSvg(w, rect, paths, hexColor(fill)), "writing traced svg")
}

// WriteMultiscanSVG merges the traced bands into one document, a group per
// band filled with its palette color. Bands are painted in order, so with
// stacked bands every later band lies on top of the wider earlier ones.
func WriteMultiscanSVG(w io.Writer, rect image.Rectangle, bands [][]gotrace.Path, palette []color.NRGBA) error {
	if len(bands) != len(palette) {
		return invalidf("%d traced bands for %d palette colors", len(bands), len(palette))
	}
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(rect.Dx(), rect.Dy())
	for i, paths := range bands {
		canvas.Group(fmt.Sprintf(`fill="%s"`, hexColor(palette[i])), `stroke="none"`, `fill-rule="evenodd"`)
		for _, d := range compoundPaths(paths) {
			canvas.Path(d)
		}
		canvas.Gend()
	}
	canvas.End()

	_, err := io.Copy(w, &buf)
	return errors.Wrap(err, "writing multiscan svg")
}

// compoundPaths joins every outer curve with the holes following it into a
// single path, the layout gotrace itself writes.
func compoundPaths(paths []gotrace.Path) []string {
	var (
		out []string
		cur []string
	)
	for i, p := range paths {
		if i > 0 && p.Sign > 0 && len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
		if d := p.ToSvgPath(); d != "" {
			cur = append(cur, d)
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}
