package areia

import(
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bamford/areia/pkg/amath"
)

// newUnitNormal builds the seeded draw source shared by the stochastic
// stages. Same seed, same final image.
func newUnitNormal(seed uint64) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
}

// shotNoise models per-pixel photon counting noise for the given
// exposure time. The flux basis is in counts/second, so the expected
// photon count is flux*exptime; the Poisson spread is approximated as
// Gaussian with sigma sqrt(counts), then converted back to
// counts/second. Negative fluxes get their absolute value so the sqrt
// stays real.
func shotNoise(basis *amath.Grid, exptime float64, rnd *distuv.Normal) amath.Grid {
	noise := basis.NewFromThis()
	for y := 0; y < basis.Dy(); y++ {
		for x := 0; x < basis.Dx(); x++ {
			amp := math.Sqrt(math.Abs(basis.Get(x, y) * exptime))
			noise.Set(x, y, amp*rnd.Rand()/exptime)
		}
	}
	return noise
}

// gaussianField draws an independent Normal(mean, std) sample per
// pixel; used to synthesize a sky background from measured statistics.
func gaussianField(mean, std float64, w, h int, rnd *distuv.Normal) amath.Grid {
	g := amath.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, mean+std*rnd.Rand())
		}
	}
	return g
}
