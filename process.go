package trimesh

import (
	"image"
	"math"
	"os"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Processor holds the options of a pipeline run. The zero value is not
// usable; start from DefaultProcessor or LoadConfig.
type Processor struct {
	Mode Mode `yaml:"mode"`

	Gamma          float64 `yaml:"gamma"`
	SamplingFactor float64 `yaml:"sampling_factor"`
	Eps            int     `yaml:"eps"`
	ShrinkFactor   int     `yaml:"shrink_factor"`
	Bands          int     `yaml:"bands"`
	StackedBands   bool    `yaml:"stacked_bands"`
	// TracedFiles are traced curve documents used instead of quantizing and
	// tracing the image, one per color band.
	TracedFiles []string `yaml:"traced_files"`
	Seed        int64    `yaml:"seed"`

	BorderPoints     int     `yaml:"border_points"`
	AugmentFraction  float64 `yaml:"augment_fraction"`
	AugmentThreshold float64 `yaml:"augment_threshold"`

	BlurSigma float32 `yaml:"blur_sigma"`
	MaxSize   int     `yaml:"max_size"`
	Grayscale bool    `yaml:"grayscale"`

	Wireframe   int     `yaml:"wireframe"`
	LineWidth   float64 `yaml:"line_width"`
	StrokeWidth float64 `yaml:"stroke_width"`
	IsSolid     bool    `yaml:"solid"`
	Noise       int     `yaml:"noise"`

	// Tracer vectorizes the color bands of the unified mode. Nil uses
	// PotraceTracer with its default parameters.
	Tracer CurveTracer `yaml:"-"`
}

// DefaultProcessor returns the options the pipeline was tuned with.
func DefaultProcessor() *Processor {
	return &Processor{
		Mode:             CurveUnified,
		Gamma:            1,
		SamplingFactor:   1,
		Eps:              15,
		ShrinkFactor:     10,
		Bands:            4,
		BorderPoints:     100,
		AugmentThreshold: defaultAugmentThreshold,
		LineWidth:        1,
	}
}

// LoadConfig reads a YAML file on top of the default options. Unknown keys
// are rejected.
func LoadConfig(path string) (*Processor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()

	p := DefaultProcessor()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	return p, nil
}

// Validate checks every option before any stage runs. Out of range values
// are reported as ErrInvalidParameter, never clamped.
func (p *Processor) Validate() error {
	switch {
	case !p.Mode.valid():
		return invalidf("unknown pipeline mode %d", int(p.Mode))
	case !(p.Gamma > 0) || math.IsInf(p.Gamma, 0):
		return invalidf("gamma must be positive and finite, got %v", p.Gamma)
	case !(p.SamplingFactor > 0) || math.IsInf(p.SamplingFactor, 0):
		return invalidf("sampling factor must be positive and finite, got %v", p.SamplingFactor)
	case p.Eps < 0:
		return invalidf("unification radius must not be negative, got %d", p.Eps)
	case p.ShrinkFactor <= 0:
		return invalidf("shrink factor must be positive, got %d", p.ShrinkFactor)
	case p.Bands <= 0:
		return invalidf("number of color bands must be positive, got %d", p.Bands)
	case p.BorderPoints < 0:
		return invalidf("border points must not be negative, got %d", p.BorderPoints)
	case !(p.AugmentFraction >= 0 && p.AugmentFraction <= 1):
		return invalidf("augment fraction must be within [0, 1], got %v", p.AugmentFraction)
	case !(p.AugmentThreshold >= 0 && p.AugmentThreshold <= 255):
		return invalidf("augment threshold must be within [0, 255], got %v", p.AugmentThreshold)
	case !(p.BlurSigma >= 0):
		return invalidf("blur sigma must not be negative, got %v", p.BlurSigma)
	case p.MaxSize < 0:
		return invalidf("max size must not be negative, got %d", p.MaxSize)
	case p.Wireframe < WithoutWireframe || p.Wireframe > WireframeOnly:
		return invalidf("unknown wireframe mode %d", p.Wireframe)
	case p.LineWidth < 0 || p.StrokeWidth < 0:
		return invalidf("line widths must not be negative, got %v and %v", p.LineWidth, p.StrokeWidth)
	case p.Noise < 0:
		return invalidf("noise must not be negative, got %d", p.Noise)
	}
	return nil
}

// Prepare normalizes the source image and applies the optional blur and
// downscale.
func (p *Processor) Prepare(src image.Image) *image.NRGBA {
	img := ImgToNRGBA(src)
	if p.BlurSigma > 0 {
		g := gift.New(gift.GaussianBlur(p.BlurSigma))
		dst := image.NewNRGBA(g.Bounds(img.Bounds()))
		g.Draw(dst, img)
		img = dst
	}
	if p.MaxSize > 0 {
		b := img.Bounds()
		if b.Dx() > p.MaxSize || b.Dy() > p.MaxSize {
			size := uint(p.MaxSize)
			img = ImgToNRGBA(resize.Thumbnail(size, size, img, resize.Lanczos3))
		}
	}
	return img
}

// Drawer returns the drawer matching the output options, SVG or raster.
func (p *Processor) Drawer(vector bool) Drawer {
	if vector {
		return &SVG{
			Title:       "Triangulated image",
			Description: "Saliency sampled Delaunay triangulation",
			StrokeWidth: p.StrokeWidth,
		}
	}
	return &Image{
		Wireframe: p.Wireframe,
		LineWidth: p.LineWidth,
		IsSolid:   p.IsSolid,
		Noise:     p.Noise,
		Seed:      p.Seed,
	}
}
