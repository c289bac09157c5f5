package areia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamford/areia/pkg/amath"
)

// blobImage puts one 3x3 block at the centre and a second, detached
// block in the corner.
func blobImage(size int) amath.Grid {
	g := amath.NewGrid(size, size)
	c := size / 2
	for y := c - 1; y <= c+1; y++ {
		for x := c - 1; x <= c+1; x++ {
			g.Set(x, y, 10)
		}
	}
	g.Set(0, 0, 10)
	g.Set(1, 0, 10)
	g.Set(0, 1, 10)
	return g
}

func TestSegmentKeepsOnlyCentralBlob(t *testing.T) {
	t.Parallel()

	img := blobImage(21)
	mask, err := ThresholdSegmenter{}.Segment(img)
	require.NoError(t, err)
	require.Len(t, mask, 21*21)

	assert.True(t, mask[10*21+10], "centre pixel should be in the source mask")
	assert.False(t, mask[0], "detached corner blob should not be in the mask")
	assert.False(t, mask[20*21+20], "empty corner should not be in the mask")
}

func TestSegmentEmptyImage(t *testing.T) {
	t.Parallel()

	img := amath.NewGrid(15, 15)
	_, err := ThresholdSegmenter{}.Segment(img)
	assert.ErrorIs(t, err, ErrNoCentralSource)
}

func TestSegmentationPartitionsImage(t *testing.T) {
	t.Parallel()

	img := blobImage(21)
	cfg := NewConfig()
	cfg.Rebinning = false
	cfg.SizeCorrection = false
	cfg.Dimming = false
	cfg.ConvolveWithPSF = false
	cfg.ShotNoise = false
	cfg.AddBackground = false

	initial, target := testFrames(t, 0.05, 0.5)
	tr, err := New(img, gaussKernel(1), nil, initial, target, cfg)
	require.NoError(t, err)
	require.NoError(t, tr.Run())

	require.NotNil(t, tr.Cutout)
	require.NotNil(t, tr.Masked)

	// cutout + masked reassembles the input exactly
	sum, err := tr.Cutout.Add(tr.Masked)
	require.NoError(t, err)
	assert.Equal(t, img.Values(), sum.Values())

	// and the pipeline continued with the cutout
	assert.Equal(t, tr.Cutout.Values(), tr.Final.Values())
}
