package areia

import(
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/bamford/areia/pkg/amath"
)

// A BackgroundEstimator measures the sky level of an image. The mask,
// when non-nil, flags pixels to exclude (true = exclude), e.g. the
// central source. Implementations must not mutate the image.
type BackgroundEstimator interface {
	MeasureBackground(img amath.Grid, smooth float64, mask []bool) (mean, median, std float64, err error)
}

// SigmaClipEstimator measures mean/median/std of the background by
// iteratively clipping pixels more than Sigma standard deviations from
// the median. This follows the usual astronomy recipe: the source
// pixels are strong positive outliers, so a few rounds of clipping
// leave mostly sky.
type SigmaClipEstimator struct {
	Sigma    float64 // clip threshold in stddevs; 0 means 3
	MaxIters int     // 0 means 5
}

func (e SigmaClipEstimator)MeasureBackground(img amath.Grid, smooth float64, mask []bool) (float64, float64, float64, error) {
	if mask != nil && len(mask) != len(img.Values()) {
		return 0, 0, 0, errors.Errorf("background: mask length %d != pixel count %d", len(mask), len(img.Values()))
	}

	work := img
	if smooth > 0 {
		work = amath.GaussianBlur(img, smooth)
	}

	vals := make([]float64, 0, len(work.Values()))
	for i, v := range work.Values() {
		if mask != nil && mask[i] {
			continue
		}
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) < 2 {
		return 0, 0, 0, errors.New("background: not enough unmasked pixels")
	}

	sigma := e.Sigma
	if sigma <= 0 {
		sigma = 3
	}
	iters := e.MaxIters
	if iters <= 0 {
		iters = 5
	}

	sort.Float64s(vals)
	for i := 0; i < iters; i++ {
		median := stat.Quantile(0.5, stat.Empirical, vals, nil)
		_, std := stat.MeanStdDev(vals, nil)
		lo := median - sigma*std
		hi := median + sigma*std

		// vals is sorted, so clipping is two binary searches
		a := sort.SearchFloat64s(vals, lo)
		b := sort.SearchFloat64s(vals, hi)
		if b-a == len(vals) || b-a < 2 {
			break
		}
		vals = vals[a:b]
	}

	mean, std := stat.MeanStdDev(vals, nil)
	median := stat.Quantile(0.5, stat.Empirical, vals, nil)
	return mean, median, std, nil
}
