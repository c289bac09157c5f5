package areia

import(
	"github.com/pkg/errors"

	"github.com/bamford/areia/pkg/amath"
)

// A Segmenter classifies each pixel as belonging to the central
// source (true) or to the background / other objects (false). The
// returned mask is row-major, same pixel count as the image.
type Segmenter interface {
	Segment(img amath.Grid) ([]bool, error)
}

// ThresholdSegmenter finds the central source by thresholding the
// (lightly smoothed) image at median + KSigma stddevs of the sky, then
// keeping only the connected blob nearest the image centre. Detached
// companions above the threshold stay out of the mask.
type ThresholdSegmenter struct {
	KSigma    float64             // detection threshold in sky sigmas; 0 means 3
	Smooth    float64             // pre-detection smoothing sigma; 0 means 1
	Estimator BackgroundEstimator // nil means SigmaClipEstimator{}
}

var ErrNoCentralSource = errors.New("segment: no source found near image centre")

func (s ThresholdSegmenter)Segment(img amath.Grid) ([]bool, error) {
	k := s.KSigma
	if k <= 0 {
		k = 3
	}
	smooth := s.Smooth
	if smooth <= 0 {
		smooth = 1
	}
	est := s.Estimator
	if est == nil {
		est = SigmaClipEstimator{}
	}

	_, median, std, err := est.MeasureBackground(img, 0, nil)
	if err != nil {
		return nil, errors.Wrap(err, "segment")
	}
	threshold := median + k*std

	work := amath.GaussianBlur(img, smooth)
	w, h := work.Dx(), work.Dy()

	detected := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			detected[y*w+x] = work.Get(x, y) > threshold
		}
	}

	// Walk outward from the centre in a small spiral until we hit a
	// detected pixel; that blob is the central source.
	cx, cy := w/2, h/2
	sx, sy, found := cx, cy, false
	for r := 0; r <= max(w, h)/4 && !found; r++ {
		for dy := -r; dy <= r && !found; dy++ {
			for dx := -r; dx <= r && !found; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				if detected[y*w+x] {
					sx, sy, found = x, y, true
				}
			}
		}
	}
	if !found {
		return nil, ErrNoCentralSource
	}

	// Flood fill, 4-connectivity
	mask := make([]bool, w*h)
	queue := []int{sy*w + sx}
	mask[sy*w+sx] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%w, i/w
		for _, n := range [][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			nx, ny := n[0], n[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			j := ny*w + nx
			if detected[j] && !mask[j] {
				mask[j] = true
				queue = append(queue, j)
			}
		}
	}
	return mask, nil
}

func max(a, b int) int {
	if a > b { return a }
	return b
}
