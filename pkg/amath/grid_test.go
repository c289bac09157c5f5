package amath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows(t *testing.T) {
	t.Parallel()

	g, err := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Dx())
	assert.Equal(t, 2, g.Dy())
	assert.Equal(t, 6.0, g.Get(2, 1))
	assert.Equal(t, 2.0, g.Get(1, 0))
}

func TestFromRowsRagged(t *testing.T) {
	t.Parallel()

	_, err := FromRows([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
	_, err = FromRows(nil)
	assert.Error(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	t.Parallel()

	g1 := NewGrid(4, 4)
	g1.Set(2, 2, 7)
	g2 := g1.Copy()
	g2.Set(2, 2, 9)
	assert.Equal(t, 7.0, g1.Get(2, 2))
	assert.Equal(t, 9.0, g2.Get(2, 2))
}

func TestScaleAndAdd(t *testing.T) {
	t.Parallel()

	g, err := FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	doubled := g.Scale(2)
	assert.Equal(t, 8.0, doubled.Get(1, 1))
	assert.Equal(t, 4.0, g.Get(1, 1)) // receiver untouched

	sum, err := g.Add(&doubled)
	require.NoError(t, err)
	assert.Equal(t, 12.0, sum.Get(1, 1))
}

func TestAddShapeMismatch(t *testing.T) {
	t.Parallel()

	g1 := NewGrid(3, 3)
	g2 := NewGrid(4, 3)
	_, err := g1.Add(&g2)
	assert.Error(t, err)
}

func TestStatsIgnoreNaN(t *testing.T) {
	t.Parallel()

	g, err := FromRows([][]float64{{1, math.NaN()}, {3, 5}})
	require.NoError(t, err)

	assert.Equal(t, 9.0, g.Sum())
	min, max := g.MinMax()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)
}
