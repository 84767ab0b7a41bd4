package trimesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePoints(t *testing.T, width, height int) []Point {
	t.Helper()
	field, err := BuildImportance(gradientImage(width, height), 1)
	require.NoError(t, err)
	points, err := Sample(field, 2)
	require.NoError(t, err)
	return append(points, BorderPoints(width, height, 8)...)
}

func TestDecimate_Reduces(t *testing.T) {
	img := gradientImage(40, 40)
	points := samplePoints(t, 40, 40)

	d := NewDelaunay(40, 40)
	d.Insert(points...)
	triangles := d.Triangulate()
	require.NotEmpty(t, triangles)

	reduced, err := Decimate(img, points, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, reduced)
	assert.LessOrEqual(t, len(reduced), len(triangles))

	seen := make(map[Point]bool)
	for _, p := range reduced {
		assert.False(t, seen[p], "duplicate point %v", p)
		seen[p] = true
		assert.True(t, p.X >= 0 && p.X < 40 && p.Y >= 0 && p.Y < 40)
		assert.Equal(t, float64(int(p.X)), p.X)
	}
}

func TestDecimate_Deterministic(t *testing.T) {
	img := gradientImage(32, 32)
	points := samplePoints(t, 32, 32)

	a, err := Decimate(img, points, 10)
	require.NoError(t, err)
	b, err := Decimate(img, points, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecimate_Empty(t *testing.T) {
	reduced, err := Decimate(gradientImage(8, 8), []Point{{1, 1}, {2, 2}}, 10)
	require.NoError(t, err)
	assert.Empty(t, reduced)
}

func TestDecimate_InvalidShrink(t *testing.T) {
	_, err := Decimate(gradientImage(8, 8), nil, 0)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

type countingSimplifier struct {
	target int
}

func (c *countingSimplifier) Simplify(m *Mesh, target int) *Mesh {
	c.target = target
	return m
}

func TestDecimateWith_Target(t *testing.T) {
	s := &countingSimplifier{}
	points := []Point{{0, 0}, {7, 0}, {0, 7}, {7, 7}}
	reduced, err := DecimateWith(s, gradientImage(8, 8), points, 3)
	require.NoError(t, err)

	// Two triangles give six soup vertices.
	assert.Equal(t, 2, s.target)
	assert.ElementsMatch(t, points, reduced)
}
