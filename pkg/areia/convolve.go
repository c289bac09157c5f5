package areia

import(
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/bamford/areia/pkg/amath"
)

// Convolve blurs an image with a centred PSF kernel and returns a
// same-shape result. The kernel is normalized to unit sum so total
// flux is conserved. NaN pixels are treated as missing data: they are
// interpolated from their neighbours by renormalizing the kernel
// weights over the valid pixels, the same contract astropy's convolve
// offers. Work happens in Fourier space on a pow2-padded grid.
func Convolve(img, psf amath.Grid) (amath.Grid, error) {
	ksum := psf.Sum()
	if ksum == 0 || math.IsNaN(ksum) {
		return amath.Grid{}, errors.New("convolve: kernel sums to zero")
	}
	kernel := psf.Scale(1 / ksum)

	// Split the image into a zero-filled flux grid and a validity
	// weight grid, convolve both, and take the ratio.
	flux := img.NewFromThis()
	valid := img.NewFromThis()
	anyNaN := false
	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			v := img.Get(x, y)
			if math.IsNaN(v) {
				anyNaN = true
				continue
			}
			flux.Set(x, y, v)
			valid.Set(x, y, 1)
		}
	}

	convFlux := fftConvolveSame(flux, kernel)
	if !anyNaN {
		return convFlux, nil
	}

	convValid := fftConvolveSame(valid, kernel)
	out := img.NewFromThis()
	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			w := convValid.Get(x, y)
			if w < 1e-8 {
				out.Set(x, y, math.NaN())
				continue
			}
			out.Set(x, y, convFlux.Get(x, y)/w)
		}
	}
	return out, nil
}

// fftConvolveSame does a zero-padded linear convolution and crops the
// centre back to the image shape.
func fftConvolveSame(img, kernel amath.Grid) amath.Grid {
	h, w := img.Dy(), img.Dx()
	kh, kw := kernel.Dy(), kernel.Dx()

	// pow2 grids are noticeably faster through gonum's FFT
	fh := nextPow2(h + kh - 1)
	fw := nextPow2(w + kw - 1)

	a := makeComplex2D(fh, fw)
	b := makeComplex2D(fh, fw)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a[y][x] = complex(img.Get(x, y), 0)
		}
	}
	for y := 0; y < kh; y++ {
		for x := 0; x < kw; x++ {
			b[y][x] = complex(kernel.Get(x, y), 0)
		}
	}

	fft2InPlace(a, true)
	fft2InPlace(b, true)
	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			a[y][x] *= b[y][x]
		}
	}
	fft2InPlace(a, false)

	// gonum transforms are unnormalized; forward+inverse gains N
	scale := float64(fh * fw)

	// centre crop of the full (h+kh-1)x(w+kw-1) result
	offY, offX := kh/2, kw/2
	out := amath.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, real(a[y+offY][x+offX])/scale)
		}
	}
	return out
}

// 2D FFT as rows-then-columns of gonum 1D transforms.
func fft2InPlace(a [][]complex128, forward bool) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	for y := 0; y < h; y++ {
		if forward {
			rowFFT.Coefficients(a[y], a[y])
		} else {
			rowFFT.Sequence(a[y], a[y])
		}
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

func makeComplex2D(h, w int) [][]complex128 {
	a := make([][]complex128, h)
	for i := range a {
		a[i] = make([]complex128, w)
	}
	return a
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
