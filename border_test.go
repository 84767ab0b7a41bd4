package trimesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorderPoints(t *testing.T) {
	points := BorderPoints(11, 21, 3)
	assert.Len(t, points, 12)
	assert.ElementsMatch(t, []Point{
		{0, 0}, {0, 20}, {5, 0}, {5, 20}, {10, 0}, {10, 20},
		{0, 0}, {10, 0}, {0, 10}, {10, 10}, {0, 20}, {10, 20},
	}, points)

	assert.Nil(t, BorderPoints(10, 10, 0))
	assert.Len(t, BorderPoints(10, 10, 1), 4)
}

func TestStrongGradientPoints(t *testing.T) {
	field, err := BuildImportance(gradientImage(32, 32), 1)
	require.NoError(t, err)

	all, err := StrongGradientPoints(field, 32, 1, 0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for _, p := range all {
		assert.Greater(t, luminance(field.At(int(p.X), int(p.Y), 0), field.At(int(p.X), int(p.Y), 1), field.At(int(p.X), int(p.Y), 2)), 32.0)
	}

	a, err := StrongGradientPoints(field, 32, 0.25, 42)
	require.NoError(t, err)
	b, err := StrongGradientPoints(field, 32, 0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, len(all)/4)
	assert.Subset(t, all, a)

	none, err := StrongGradientPoints(field, 32, 0, 42)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = StrongGradientPoints(field, 32, 1.5, 42)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
