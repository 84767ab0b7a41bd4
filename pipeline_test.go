package trimesh

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dennwc/gotrace"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProcessor(mode Mode) *Processor {
	p := DefaultProcessor()
	p.Mode = mode
	p.SamplingFactor = 2
	p.BorderPoints = 6
	p.Eps = 2
	p.Bands = 2
	p.Tracer = &stubTracer{paths: []gotrace.Path{squarePath(8, 8, 24, 24)}}
	return p
}

func TestProcessor_Stages(t *testing.T) {
	cases := []struct {
		mode    Mode
		augment float64
		want    []Stage
	}{
		{PlainBNS, 0, []Stage{StageSample, StageBorder, StageTriangulate}},
		{Decimated, 0, []Stage{StageSample, StageDecimate, StageBorder, StageTriangulate}},
		{CurveUnified, 0, []Stage{StageSample, StageDecimate, StageUnify, StageBorder, StageTriangulate}},
		{PlainBNS, 0.1, []Stage{StageSample, StageAugment, StageBorder, StageTriangulate}},
	}
	for _, c := range cases {
		p := DefaultProcessor()
		p.Mode = c.mode
		p.AugmentFraction = c.augment
		assert.Equal(t, c.want, p.Stages(), c.mode.String())
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{PlainBNS, Decimated, CurveUnified} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMode("Unified")
	require.NoError(t, err)
	assert.Equal(t, CurveUnified, got)

	_, err = ParseMode("fancy")
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestProcessor_Run(t *testing.T) {
	img := gradientImage(32, 32)
	for _, mode := range []Mode{PlainBNS, Decimated, CurveUnified} {
		t.Run(mode.String(), func(t *testing.T) {
			p := testProcessor(mode)
			res, err := p.Run(context.Background(), img)
			require.NoError(t, err)

			assert.Equal(t, 32, res.Width)
			assert.Equal(t, 32, res.Height)
			assert.NotNil(t, res.Importance)
			assert.NotEmpty(t, res.Points)
			assert.NotEmpty(t, res.Triangles)

			require.Len(t, res.Stages, len(p.Stages())+1)
			assert.Equal(t, StageImportance, res.Stages[0].Stage)
			for i, st := range p.Stages() {
				assert.Equal(t, st, res.Stages[i+1].Stage)
			}
			last := res.Stages[len(res.Stages)-1]
			assert.Equal(t, len(res.Points), last.Points)
		})
	}
}

func TestProcessor_RunDeterministic(t *testing.T) {
	img := gradientImage(32, 32)
	a, err := testProcessor(CurveUnified).Run(context.Background(), img)
	require.NoError(t, err)
	b, err := testProcessor(CurveUnified).Run(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, a.Points, b.Points)
	assert.Equal(t, a.Triangles, b.Triangles)
}

func TestProcessor_RunTracedFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "band0.svg")
	require.NoError(t, os.WriteFile(path, []byte(tracedDocument), 0o644))

	p := testProcessor(CurveUnified)
	p.Tracer = nil
	p.TracedFiles = []string{path}
	res, err := p.Run(context.Background(), gradientImage(10, 10))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Triangles)

	p.TracedFiles = []string{filepath.Join(t.TempDir(), "missing.svg")}
	_, err = p.Run(context.Background(), gradientImage(10, 10))
	assert.Error(t, err)
}

func TestProcessor_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testProcessor(PlainBNS).Run(ctx, gradientImage(16, 16))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProcessor_RunInvalid(t *testing.T) {
	mutate := []func(p *Processor){
		func(p *Processor) { p.Gamma = 0 },
		func(p *Processor) { p.SamplingFactor = -1 },
		func(p *Processor) { p.Eps = -1 },
		func(p *Processor) { p.ShrinkFactor = 0 },
		func(p *Processor) { p.Bands = 0 },
		func(p *Processor) { p.AugmentFraction = 2 },
		func(p *Processor) { p.Mode = Mode(5) },
		func(p *Processor) { p.Wireframe = 3 },
		func(p *Processor) { p.Noise = -1 },
	}
	for i, m := range mutate {
		p := testProcessor(PlainBNS)
		m(p)
		_, err := p.Run(context.Background(), gradientImage(8, 8))
		assert.True(t, errors.Is(err, ErrInvalidParameter), "case %d: %v", i, err)
	}
}

func TestProcessor_Process(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, gradientImage(24, 24)))

	var out bytes.Buffer
	p := testProcessor(Decimated)
	res, err := p.Process(&src, &out, p.Drawer(true))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Triangles)
	assert.Contains(t, out.String(), "<svg")
}

func TestProcessor_Prepare(t *testing.T) {
	p := DefaultProcessor()
	p.MaxSize = 16
	p.BlurSigma = 1
	img := p.Prepare(gradientImage(64, 32))
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	p.MaxSize = 0
	p.BlurSigma = 0
	assert.Equal(t, 64, p.Prepare(gradientImage(64, 32)).Bounds().Dx())
}
