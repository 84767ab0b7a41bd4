package trimesh

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Drawer renders the coloured triangles of a pipeline run.
type Drawer interface {
	Draw(w io.Writer, res *Result) error
}

// SVG writes the triangles as filled polygons of a vector document. Later
// triangles are painted over earlier ones.
type SVG struct {
	Title       string
	Description string
	// StrokeWidth strokes every triangle with its own fill color, which hides
	// the anti-aliasing seams between neighbours. Zero disables stroking.
	StrokeWidth   float64
	StrokeLineCap string
}

var _ Drawer = (*SVG)(nil)

// Draw implements Drawer.
func (s *SVG) Draw(w io.Writer, res *Result) error {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(res.Width, res.Height)
	if s.Title != "" {
		canvas.Title(s.Title)
	}
	if s.Description != "" {
		canvas.Desc(s.Description)
	}
	for _, t := range res.Triangles {
		canvas.Path(trianglePath(t), s.style(t.Color))
	}
	canvas.End()

	_, err := io.Copy(w, &buf)
	return errors.Wrap(err, "writing svg document")
}

func (s *SVG) style(c color.NRGBA) string {
	fill := hexColor(c)
	if s.StrokeWidth <= 0 {
		return fmt.Sprintf("fill:%s;stroke:none", fill)
	}
	lineCap := s.StrokeLineCap
	if lineCap == "" {
		lineCap = "round"
	}
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s;stroke-linecap:%s",
		fill, fill, formatFloat(s.StrokeWidth), lineCap)
}

func trianglePath(t Triangle) string {
	p0, p1, p2 := t.Nodes[0], t.Nodes[1], t.Nodes[2]
	return fmt.Sprintf("M%s,%s L%s,%s L%s,%s Z",
		formatFloat(p0.X), formatFloat(p0.Y),
		formatFloat(p1.X), formatFloat(p1.Y),
		formatFloat(p2.X), formatFloat(p2.Y))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// hexColor formats the RGB channels of c as #rrggbb.
func hexColor(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
