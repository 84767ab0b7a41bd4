package trimesh

import (
	"image"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// ParseTracedSVG reads a traced curve document, as written by potrace or
// WriteTracedSVG, and rasterizes its paths in black on a white width×height
// grid. Path data supports the M, L, H, V, C and Z commands in absolute and
// relative form together with translate, scale and matrix transforms.
// The document's viewBox, or its width and height, is scaled onto the grid.
func ParseTracedSVG(r io.Reader, width, height int) (*image.Gray, error) {
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, errors.Wrap(err, "parsing traced svg")
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFillRuleEvenOdd()

	if err := drawElement(dc, root, viewport(root, width, height)); err != nil {
		return nil, err
	}
	dc.SetRGB(0, 0, 0)
	dc.Fill()
	return toGray(dc.Image()), nil
}

// affine is the matrix [a c e; b d f; 0 0 1].
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

func (m affine) mul(n affine) affine {
	return affine{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// viewport maps document units onto the pixel grid.
func viewport(root *svgparser.Element, width, height int) affine {
	if vb := parseNumbers(root.Attributes["viewBox"]); len(vb) == 4 && vb[2] > 0 && vb[3] > 0 {
		sx, sy := float64(width)/vb[2], float64(height)/vb[3]
		return affine{sx, 0, 0, sy, -vb[0] * sx, -vb[1] * sy}
	}
	w := parseNumbers(root.Attributes["width"])
	h := parseNumbers(root.Attributes["height"])
	if len(w) == 1 && len(h) == 1 && w[0] > 0 && h[0] > 0 {
		return affine{float64(width) / w[0], 0, 0, float64(height) / h[0], 0, 0}
	}
	return identity
}

func drawElement(dc *gg.Context, el *svgparser.Element, m affine) error {
	t, err := parseTransform(el.Attributes["transform"])
	if err != nil {
		return err
	}
	m = m.mul(t)
	if el.Name == "path" {
		if err := drawPathData(dc, el.Attributes["d"], m); err != nil {
			return err
		}
	}
	for _, child := range el.Children {
		if err := drawElement(dc, child, m); err != nil {
			return err
		}
	}
	return nil
}

var (
	transformRe = regexp.MustCompile(`(\w+)\s*\(([^)]*)\)`)
	numberRe    = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

// parseNumbers extracts every number of s, ignoring units and separators.
func parseNumbers(s string) []float64 {
	var nums []float64
	for _, tok := range numberRe.FindAllString(s, -1) {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			nums = append(nums, v)
		}
	}
	return nums
}

func parseTransform(s string) (affine, error) {
	m := identity
	for _, match := range transformRe.FindAllStringSubmatch(s, -1) {
		args := parseNumbers(match[2])
		var t affine
		switch name := match[1]; {
		case name == "translate" && len(args) == 1:
			t = affine{1, 0, 0, 1, args[0], 0}
		case name == "translate" && len(args) == 2:
			t = affine{1, 0, 0, 1, args[0], args[1]}
		case name == "scale" && len(args) == 1:
			t = affine{args[0], 0, 0, args[0], 0, 0}
		case name == "scale" && len(args) == 2:
			t = affine{args[0], 0, 0, args[1], 0, 0}
		case name == "matrix" && len(args) == 6:
			copy(t[:], args)
		default:
			return m, errors.Errorf("unsupported transform %q", match[0])
		}
		m = m.mul(t)
	}
	return m, nil
}

// pathToken is either a command letter or a number.
type pathToken struct {
	cmd byte
	num float64
}

func tokenizePath(d string) ([]pathToken, error) {
	var tokens []pathToken
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("MmLlHhVvCcZz", c) >= 0:
			tokens = append(tokens, pathToken{cmd: c})
			i++
		default:
			loc := numberRe.FindStringIndex(d[i:])
			if loc == nil || loc[0] != 0 {
				return nil, errors.Errorf("unexpected %q in path data at offset %d", c, i)
			}
			v, err := strconv.ParseFloat(d[i:i+loc[1]], 64)
			if err != nil {
				return nil, errors.Wrap(err, "parsing path data")
			}
			tokens = append(tokens, pathToken{num: v})
			i += loc[1]
		}
	}
	return tokens, nil
}

// drawPathData appends the subpaths of an SVG path to dc, transformed by m.
func drawPathData(dc *gg.Context, d string, m affine) error {
	tokens, err := tokenizePath(d)
	if err != nil {
		return err
	}

	var (
		cmd          byte
		x, y, sx, sy float64
		pos          int
	)
	args := func(n int) ([]float64, error) {
		if pos+n > len(tokens) {
			return nil, errors.Errorf("path command %q is missing arguments", cmd)
		}
		vals := make([]float64, n)
		for i := range vals {
			if tokens[pos+i].cmd != 0 {
				return nil, errors.Errorf("path command %q is missing arguments", cmd)
			}
			vals[i] = tokens[pos+i].num
		}
		pos += n
		return vals, nil
	}
	moveTo := func(px, py float64) {
		x, y, sx, sy = px, py, px, py
		dc.MoveTo(m.apply(px, py))
	}
	lineTo := func(px, py float64) {
		x, y = px, py
		dc.LineTo(m.apply(px, py))
	}

	for pos < len(tokens) {
		if t := tokens[pos]; t.cmd != 0 {
			cmd = t.cmd
			pos++
		} else if cmd == 0 {
			return errors.New("path data must start with a command")
		}
		relative := cmd >= 'a'

		switch cmd {
		case 'M', 'm':
			v, err := args(2)
			if err != nil {
				return err
			}
			if relative {
				v[0], v[1] = v[0]+x, v[1]+y
			}
			moveTo(v[0], v[1])
			// Further coordinate pairs are implicit line commands.
			if relative {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			v, err := args(2)
			if err != nil {
				return err
			}
			if relative {
				v[0], v[1] = v[0]+x, v[1]+y
			}
			lineTo(v[0], v[1])
		case 'H', 'h':
			v, err := args(1)
			if err != nil {
				return err
			}
			if relative {
				v[0] += x
			}
			lineTo(v[0], y)
		case 'V', 'v':
			v, err := args(1)
			if err != nil {
				return err
			}
			if relative {
				v[0] += y
			}
			lineTo(x, v[0])
		case 'C', 'c':
			v, err := args(6)
			if err != nil {
				return err
			}
			if relative {
				for i := 0; i < 6; i += 2 {
					v[i], v[i+1] = v[i]+x, v[i+1]+y
				}
			}
			x1, y1 := m.apply(v[0], v[1])
			x2, y2 := m.apply(v[2], v[3])
			x3, y3 := m.apply(v[4], v[5])
			dc.CubicTo(x1, y1, x2, y2, x3, y3)
			x, y = v[4], v[5]
		case 'Z', 'z':
			dc.ClosePath()
			x, y = sx, sy
			if pos < len(tokens) && tokens[pos].cmd == 0 {
				return errors.New("close path command takes no arguments")
			}
		}
	}
	return nil
}
