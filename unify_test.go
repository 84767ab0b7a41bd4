package trimesh

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnify_NoCurves(t *testing.T) {
	points := []Point{{1, 1}, {4, 7}, {9, 0}, {3, 3}}
	u, err := NewUnifier(10, 10, points, 3)
	require.NoError(t, err)

	res, err := u.Unify(nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, points, res)
}

func TestUnify_ZeroRadius(t *testing.T) {
	// A black dot at (5, 5) yields curve pixels on its eight neighbours.
	band := dotBand(10, 10, image.Pt(5, 5))

	t.Run("point on a curve pixel", func(t *testing.T) {
		points := []Point{{4, 5}, {6, 6}}
		u, err := NewUnifier(10, 10, points, 0)
		require.NoError(t, err)
		res, err := u.Unify([]*image.Gray{band})
		require.NoError(t, err)
		assert.ElementsMatch(t, points, res)
	})

	t.Run("point off the curve", func(t *testing.T) {
		points := []Point{{5, 5}, {0, 0}, {9, 2}}
		u, err := NewUnifier(10, 10, points, 0)
		require.NoError(t, err)
		res, err := u.Unify([]*image.Gray{band})
		require.NoError(t, err)
		assert.ElementsMatch(t, points, res)
	})
}

func TestUnify_MovesToClosestPixel(t *testing.T) {
	band := dotBand(10, 10, image.Pt(5, 5))
	u, err := NewUnifier(10, 10, []Point{{5, 5}, {0, 9}}, 1)
	require.NoError(t, err)

	res, err := u.Unify([]*image.Gray{band})
	require.NoError(t, err)
	// (5, 4) is the first pixel at distance 1 in row-major order.
	assert.ElementsMatch(t, []Point{{5, 4}, {0, 9}}, res)
}

func TestUnify_FirstBandWins(t *testing.T) {
	above := dotBand(10, 10, image.Pt(5, 3))
	below := dotBand(10, 10, image.Pt(5, 7))

	u, err := NewUnifier(10, 10, []Point{{5, 5}}, 1)
	require.NoError(t, err)
	res, err := u.Unify([]*image.Gray{above, below})
	require.NoError(t, err)
	assert.Equal(t, []Point{{5, 4}}, res)

	u, err = NewUnifier(10, 10, []Point{{5, 5}}, 1)
	require.NoError(t, err)
	res, err = u.Unify([]*image.Gray{below, above})
	require.NoError(t, err)
	assert.Equal(t, []Point{{5, 6}}, res)
}

func TestUnify_MergesPoints(t *testing.T) {
	band := dotBand(10, 10, image.Pt(5, 5))
	// Both points are closest to (5, 4) and collapse into it.
	u, err := NewUnifier(10, 10, []Point{{5, 3}, {5, 4}}, 1)
	require.NoError(t, err)
	res, err := u.Unify([]*image.Gray{band})
	require.NoError(t, err)
	assert.Equal(t, []Point{{5, 4}}, res)
}

func TestUnifier_Reachable(t *testing.T) {
	u, err := NewUnifier(10, 10, []Point{{2, 2}, {4, 2}, {2, 2}}, 1)
	require.NoError(t, err)

	assert.Equal(t, []Point{{2, 2}, {4, 2}}, u.Reachable(3, 3))
	assert.Equal(t, []Point{{2, 2}}, u.Reachable(1, 1))
	assert.Empty(t, u.Reachable(7, 7))
	assert.Nil(t, u.Reachable(-1, 3))
}

func TestUnify_InvalidInput(t *testing.T) {
	_, err := NewUnifier(10, 10, nil, -1)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	u, err := NewUnifier(10, 10, []Point{{1, 1}}, 1)
	require.NoError(t, err)
	_, err = u.Unify([]*image.Gray{dotBand(8, 10)})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
