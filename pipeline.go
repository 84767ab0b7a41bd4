package trimesh

import (
	"context"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Mode selects which point processing stages a pipeline run executes.
type Mode int

// Pipeline modes.
const (
	// PlainBNS triangulates the halftone samples directly.
	PlainBNS Mode = iota
	// Decimated thins the samples through mesh simplification.
	Decimated
	// CurveUnified decimates and then snaps the samples onto traced curves.
	CurveUnified
)

var modeNames = [...]string{
	PlainBNS:     "plain",
	Decimated:    "decimated",
	CurveUnified: "unified",
}

func (m Mode) valid() bool {
	return m >= PlainBNS && m <= CurveUnified
}

func (m Mode) String() string {
	if !m.valid() {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(m), nil
		}
	}
	return 0, invalidf("unknown pipeline mode %q, want one of %s", name, strings.Join(modeNames[:], ", "))
}

// UnmarshalYAML decodes a mode from its name.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	mode, err := ParseMode(name)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalYAML encodes a mode as its name.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// Stage is one step of a pipeline run.
type Stage int

// Pipeline stages.
const (
	StageImportance Stage = iota
	StageSample
	StageDecimate
	StageUnify
	StageAugment
	StageBorder
	StageTriangulate
)

var stageNames = [...]string{
	StageImportance:  "importance",
	StageSample:      "sample",
	StageDecimate:    "decimate",
	StageUnify:       "unify",
	StageAugment:     "augment",
	StageBorder:      "border",
	StageTriangulate: "triangulate",
}

func (s Stage) String() string {
	if s < StageImportance || s > StageTriangulate {
		return "Stage(" + strconv.Itoa(int(s)) + ")"
	}
	return stageNames[s]
}

// Stages returns the ordered stage list of a run. The importance field is
// always built first and is not part of the list.
func (p *Processor) Stages() []Stage {
	var stages []Stage
	switch p.Mode {
	case PlainBNS:
		stages = []Stage{StageSample}
	case Decimated:
		stages = []Stage{StageSample, StageDecimate}
	case CurveUnified:
		stages = []Stage{StageSample, StageDecimate, StageUnify}
	}
	if p.AugmentFraction > 0 {
		stages = append(stages, StageAugment)
	}
	return append(stages, StageBorder, StageTriangulate)
}

// StageReport describes one executed stage.
type StageReport struct {
	Stage    Stage
	Points   int
	Duration time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	Width, Height int
	// Importance is the saliency field the samples were drawn from.
	Importance *Field
	// Points is the final point set handed to the triangulation.
	Points    []Point
	Triangles []Triangle
	Stages    []StageReport
}

// Run executes the pipeline on img. All options are validated before any
// stage runs. The context is checked between stages only; a stage which has
// started always runs to completion.
func (p *Processor) Run(ctx context.Context, img image.Image) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := p.Prepare(img)
	res := &Result{Width: src.Bounds().Dx(), Height: src.Bounds().Dy()}

	start := time.Now()
	importance, err := BuildImportance(src, p.Gamma)
	if err != nil {
		return nil, err
	}
	res.Importance = importance
	res.Stages = append(res.Stages, StageReport{Stage: StageImportance, Duration: time.Since(start)})

	var points []Point
	for _, stage := range p.Stages() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "pipeline stopped before %s", stage)
		}
		start := time.Now()
		switch stage {
		case StageSample:
			points, err = Sample(importance, p.SamplingFactor)
		case StageDecimate:
			points, err = Decimate(src, points, p.ShrinkFactor)
		case StageUnify:
			points, err = p.unify(src, points)
		case StageAugment:
			var strong []Point
			strong, err = StrongGradientPoints(importance, p.AugmentThreshold, p.AugmentFraction, p.Seed)
			points = append(points, strong...)
		case StageBorder:
			points = append(points, BorderPoints(res.Width, res.Height, p.BorderPoints)...)
		case StageTriangulate:
			res.Triangles, err = Triangulate(p.colorSource(src), points)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s stage", stage)
		}
		report := StageReport{Stage: stage, Points: len(points), Duration: time.Since(start)}
		res.Stages = append(res.Stages, report)
		Logger().Debug("pipeline: stage done",
			"stage", stage.String(), "points", report.Points, "duration", report.Duration)
	}
	res.Points = points
	return res, nil
}

// unify snaps points onto the traced curves of the image's color bands.
func (p *Processor) unify(src *image.NRGBA, points []Point) ([]Point, error) {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	curves, err := p.curves(src)
	if err != nil {
		return nil, err
	}
	u, err := NewUnifier(width, height, points, p.Eps)
	if err != nil {
		return nil, err
	}
	return u.Unify(curves)
}

// curves returns the rasterized traced curves, either read from the traced
// documents or produced by quantizing and tracing src.
func (p *Processor) curves(src *image.NRGBA) ([]*image.Gray, error) {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	if len(p.TracedFiles) > 0 {
		curves := make([]*image.Gray, 0, len(p.TracedFiles))
		for _, path := range p.TracedFiles {
			c, err := readTracedFile(path, width, height)
			if err != nil {
				return nil, err
			}
			curves = append(curves, c)
		}
		return curves, nil
	}

	q := Quantizer{K: p.Bands, Seed: p.Seed, Stacked: p.StackedBands}
	bands, _, err := q.Bands(src)
	if err != nil {
		return nil, err
	}
	tracer := p.Tracer
	if tracer == nil {
		tracer = PotraceTracer{}
	}
	return TraceBands(tracer, bands)
}

func readTracedFile(path string, width, height int) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening traced curves")
	}
	defer f.Close()
	c, err := ParseTracedSVG(f, width, height)
	return c, errors.Wrapf(err, "reading %s", path)
}

// colorSource is the image the triangle colors are taken from.
func (p *Processor) colorSource(src *image.NRGBA) *image.NRGBA {
	if p.Grayscale {
		return ImgToNRGBA(Grayscale(src))
	}
	return src
}

// Process decodes an image from r, runs the pipeline and draws the result
// to w.
func (p *Processor) Process(r io.Reader, w io.Writer, d Drawer) (*Result, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	res, err := p.Run(context.Background(), src)
	if err != nil {
		return nil, err
	}
	if err := d.Draw(w, res); err != nil {
		return nil, err
	}
	return res, nil
}
