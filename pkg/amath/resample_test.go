package amath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatGrid(w, h int, v float64) Grid {
	g := NewGrid(w, h)
	for i := range g.Values() {
		g.Values()[i] = v
	}
	return g
}

func TestZoomIdentity(t *testing.T) {
	t.Parallel()

	g, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	out, err := Zoom(g, 1)
	require.NoError(t, err)
	assert.Equal(t, g.Values(), out.Values())

	// and it's a copy, not an alias
	out.Set(0, 0, 99)
	assert.Equal(t, 1.0, g.Get(0, 0))
}

func TestZoomShrinkShape(t *testing.T) {
	t.Parallel()

	g := flatGrid(50, 50, 3)
	out, err := Zoom(g, 0.16)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Dx())
	assert.Equal(t, 8, out.Dy())
}

func TestZoomFlatStaysFlat(t *testing.T) {
	t.Parallel()

	g := flatGrid(16, 16, 5)

	down, err := Zoom(g, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 8, down.Dx())
	for _, v := range down.Values() {
		assert.InDelta(t, 5.0, v, 1e-9)
	}

	up, err := Zoom(g, 2)
	require.NoError(t, err)
	assert.Equal(t, 32, up.Dx())
	for _, v := range up.Values() {
		assert.InDelta(t, 5.0, v, 1e-9)
	}
}

func TestZoomBadFactor(t *testing.T) {
	t.Parallel()

	g := flatGrid(4, 4, 1)
	for _, f := range []float64{0, -1} {
		_, err := Zoom(g, f)
		assert.Error(t, err)
	}
}

func TestGaussianBlurPreservesFlat(t *testing.T) {
	t.Parallel()

	g := flatGrid(10, 10, 2.5)
	out := GaussianBlur(g, 1.5)
	require.Equal(t, 10, out.Dx())
	for _, v := range out.Values() {
		assert.InDelta(t, 2.5, v, 1e-9)
	}
}

func TestGaussianBlurSpreadsPeak(t *testing.T) {
	t.Parallel()

	g := NewGrid(11, 11)
	g.Set(5, 5, 100)
	out := GaussianBlur(g, 1)

	assert.Less(t, out.Get(5, 5), 100.0)
	assert.Greater(t, out.Get(4, 5), 0.0)
	// blur redistributes, not creates
	assert.InDelta(t, 100.0, out.Sum(), 1e-6)
}
