package areia

import(
	"fmt"
	"log"
	"math"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bamford/areia/pkg/amath"
	"github.com/bamford/areia/pkg/cosmo"
)

// A Transformation takes a source image observed in one frame and
// produces how it would look observed in another: smaller on the sky,
// cosmologically dimmed, blurred by the target PSF, noisier, sitting
// in a sky background. Every intermediate image is kept on the struct
// so partial results can be inspected after a run.
type Transformation struct {
	RunID  string
	Config Config
	Cosmo  cosmo.FlatLambdaCDM

	Image        amath.Grid
	PSF          amath.Grid
	Background   *amath.Grid // nil means synthesize one from the input's sky stats
	InitialFrame ObservationFrame
	TargetFrame  ObservationFrame

	// Collaborators, swappable for testing; New fills in defaults.
	Segmenter Segmenter
	Estimator BackgroundEstimator

	// Intermediates, nil when the producing stage was gated off.
	Cutout         *amath.Grid
	Masked         *amath.Grid
	Rebinned       *amath.Grid
	Dimmed         *amath.Grid
	WithEvolution  *amath.Grid
	Convolved      *amath.Grid
	WithShotNoise  *amath.Grid
	WithBackground *amath.Grid

	// Final always references the most recently produced image.
	Final amath.Grid

	// Bookkeeping factors, 1 when the owning stage was gated off.
	ScaleFactor          float64
	SizeCorrectionFactor float64
	DimmingFactor        float64
	EvoFactor            float64

	rnd distuv.Normal
	ran bool
}

// A stage pairs its gate with its body; Run walks the table in order.
type stage struct {
	name    string
	enabled func(Config) bool
	run     func(*Transformation) error
}

var stages = []stage{
	{"cutout", func(c Config) bool { return c.MakeCutout }, (*Transformation).cutoutSource},
	{"rebinning", func(c Config) bool { return c.Rebinning || c.SizeCorrection }, (*Transformation).geometricRebinning},
	{"dimming", func(c Config) bool { return c.Dimming }, (*Transformation).applyDimming},
	{"evolution", func(c Config) bool { return c.Evo }, (*Transformation).evolutionCorrection},
	{"convolve", func(c Config) bool { return c.ConvolveWithPSF }, (*Transformation).convolvePSF},
	{"shotnoise", func(c Config) bool { return c.ShotNoise }, (*Transformation).applyShotNoise},
	{"background", func(c Config) bool { return c.AddBackground }, (*Transformation).addBackground},
}

// New validates the inputs and builds a run; call Run to execute it.
// The background may be nil. Frames and config are never mutated.
func New(image, psf amath.Grid, background *amath.Grid, initial, target ObservationFrame, cfg Config) (*Transformation, error) {
	if err := initial.Validate(); err != nil {
		return nil, errors.Wrap(err, "initial frame")
	}
	if err := target.Validate(); err != nil {
		return nil, errors.Wrap(err, "target frame")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cosmology, err := cfg.Cosmology()
	if err != nil {
		return nil, err
	}

	return &Transformation{
		RunID:        uuid.NewString(),
		Config:       cfg,
		Cosmo:        cosmology,
		Image:        image,
		PSF:          psf,
		Background:   background,
		InitialFrame: initial,
		TargetFrame:  target,
		Segmenter:    ThresholdSegmenter{},
		Estimator:    SigmaClipEstimator{},
		rnd:          newUnitNormal(cfg.Seed),
	}, nil
}

// Run executes the enabled stages in their fixed order. It fails fast:
// the first stage error aborts the run and Final is not meaningful.
// A Transformation runs once; build a new one per image.
func (t *Transformation)Run() error {
	if t.ran {
		return errors.New("transformation: already ran; build a new one per image")
	}
	t.ran = true

	t.Final = t.Image.Copy()
	t.ScaleFactor = 1
	t.SizeCorrectionFactor = 1
	t.DimmingFactor = 1
	t.EvoFactor = 1

	for _, s := range stages {
		if !s.enabled(t.Config) {
			continue
		}
		if err := s.run(t); err != nil {
			return errors.Wrapf(err, "stage %s", s.name)
		}
		if t.Config.Verbosity > 0 {
			log.Printf("[%s] stage %-10s done: %s", t.RunID[:8], s.name, t.Final.Stats())
		}
	}
	return nil
}

// cutoutSource splits the input into the central source (Cutout) and
// everything else (Masked); the pipeline continues with the source.
func (t *Transformation)cutoutSource() error {
	mask, err := t.Segmenter.Segment(t.Image)
	if err != nil {
		return err
	}
	if len(mask) != len(t.Image.Values()) {
		return errors.Errorf("segmenter returned %d mask pixels for a %d pixel image",
			len(mask), len(t.Image.Values()))
	}

	cutout := t.Image.Copy()
	masked := t.Image.Copy()
	w := t.Image.Dx()
	for i, inSource := range mask {
		x, y := i%w, i/w
		if inSource {
			masked.Set(x, y, 0)
		} else {
			cutout.Set(x, y, 0)
		}
	}
	t.Cutout, t.Masked = &cutout, &masked
	t.Final = cutout.Copy()
	return nil
}

// geometricRebinning resamples the image so the object subtends the
// number of pixels it would in the target frame. The geometric factor
// combines the angular-diameter scaling of the two redshifts with the
// pixel-scale ratio; on top of that sits an empirical size-evolution
// correction (galaxies at higher z are physically smaller).
func (t *Transformation)geometricRebinning() error {
	if t.Config.SizeCorrection {
		t.SizeCorrectionFactor = math.Pow(1+t.TargetFrame.Redshift, -0.97)
	}

	// The correction-only path (rebinning gated off) resamples the raw
	// input rather than the running image, matching the original tool.
	src := t.Image

	if t.Config.Rebinning {
		src = t.Final
		initialDist, err := t.Cosmo.LuminosityDistance(t.InitialFrame.Redshift)
		if err != nil {
			return err
		}
		targetDist, err := t.Cosmo.LuminosityDistance(t.TargetFrame.Redshift)
		if err != nil {
			return err
		}
		zi1 := 1 + t.InitialFrame.Redshift
		zt1 := 1 + t.TargetFrame.Redshift
		t.ScaleFactor = (initialDist * zt1 * zt1 * t.InitialFrame.PixelScale) /
			(targetDist * zi1 * zi1 * t.TargetFrame.PixelScale)
	}

	rebinned, err := amath.Zoom(src, t.ScaleFactor*t.SizeCorrectionFactor)
	if err != nil {
		return err
	}
	t.Rebinned = &rebinned
	t.Final = rebinned.Copy()
	return nil
}

// applyDimming applies cosmological surface-brightness dimming: flux
// falls with the square of the luminosity-distance ratio.
func (t *Transformation)applyDimming() error {
	initialDist, err := t.Cosmo.LuminosityDistance(t.InitialFrame.Redshift)
	if err != nil {
		return err
	}
	targetDist, err := t.Cosmo.LuminosityDistance(t.TargetFrame.Redshift)
	if err != nil {
		return err
	}
	ratio := initialDist / targetDist
	t.DimmingFactor = ratio * ratio

	dimmed := t.Final.Scale(t.DimmingFactor)
	t.Dimmed = &dimmed
	t.Final = dimmed.Copy()
	return nil
}

// evolutionCorrection brightens (or dims) the image by a power-law
// luminosity evolution model in magnitudes.
func (t *Transformation)evolutionCorrection() error {
	t.EvoFactor = math.Pow(10, -0.4*t.Config.EvoAlpha*t.TargetFrame.Redshift)
	withEvo := t.Final.Scale(t.EvoFactor)
	t.WithEvolution = &withEvo
	t.Final = withEvo.Copy()
	return nil
}

func (t *Transformation)convolvePSF() error {
	convolved, err := Convolve(t.Final, t.PSF)
	if err != nil {
		return err
	}
	t.Convolved = &convolved
	t.Final = convolved.Copy()
	return nil
}

// applyShotNoise injects photon-counting noise. The amplitude basis is
// specifically the post-convolution flux, since the noise has to
// reflect the per-pixel flux the detector actually sees; when the
// convolution stage was gated off this run, the current image stands in.
func (t *Transformation)applyShotNoise() error {
	basis := t.Convolved
	if basis == nil {
		basis = &t.Final
	}
	noise := shotNoise(basis, t.TargetFrame.ExpTime, &t.rnd)
	withNoise, err := t.Final.Add(&noise)
	if err != nil {
		return err
	}
	t.WithShotNoise = &withNoise
	t.Final = withNoise.Copy()
	return nil
}

// addBackground composites the processed source onto a sky background,
// centred, and that composite is the pipeline's output. If no
// background was supplied, one is synthesized as a Gaussian field
// matching the sky statistics of the original input image.
func (t *Transformation)addBackground() error {
	if t.Background == nil {
		mean, _, std, err := t.Estimator.MeasureBackground(t.Image, 2, nil)
		if err != nil {
			return err
		}
		bg := gaussianField(mean, std, t.Image.Dx(), t.Image.Dy(), &t.rnd)
		t.Background = &bg
	}

	src := t.Final
	bg := t.Background
	x0, x1, err := centeredWindow(bg.Dx(), src.Dx())
	if err != nil {
		return err
	}
	y0, y1, err := centeredWindow(bg.Dy(), src.Dy())
	if err != nil {
		return err
	}

	withBg := bg.Copy()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			withBg.Set(x, y, withBg.Get(x, y)+src.Get(x-x0, y-y0))
		}
	}
	t.WithBackground = &withBg
	t.Final = withBg.Copy()
	return nil
}

// centeredWindow places a source dimension inside a background
// dimension at its pixel centre. When the source dimension is odd its
// single extra pixel of padding has to land on the low side, hence the
// off-by-one term.
func centeredWindow(bgN, srcN int) (int, int, error) {
	if srcN > bgN {
		return 0, 0, errors.Errorf("background dimension %d smaller than source %d", bgN, srcN)
	}
	if srcN == bgN {
		return 0, srcN, nil
	}
	off := 1
	if srcN%2 == 0 {
		off = 0
	}
	lo := bgN/2 - srcN/2 - off
	hi := bgN/2 + srcN/2
	if lo < 0 || hi > bgN {
		return 0, 0, errors.Errorf("window [%d:%d) outside background dimension %d", lo, hi, bgN)
	}
	return lo, hi, nil
}

// DumpIntermediates writes a PNG per intermediate into dir, tagged
// with the run ID, for eyeballing what each stage did.
func (t *Transformation)DumpIntermediates(dir string) error {
	grids := []struct {
		name string
		g    *amath.Grid
	}{
		{"input", &t.Image},
		{"cutout", t.Cutout},
		{"masked", t.Masked},
		{"rebinned", t.Rebinned},
		{"dimmed", t.Dimmed},
		{"withevolution", t.WithEvolution},
		{"convolved", t.Convolved},
		{"withshotnoise", t.WithShotNoise},
		{"withbackground", t.WithBackground},
		{"final", &t.Final},
	}
	for _, ng := range grids {
		if ng.g == nil {
			continue
		}
		fn := filepath.Join(dir, fmt.Sprintf("%s-%s.png", t.RunID[:8], ng.name))
		if err := ng.g.SavePNG(ng.name, fn); err != nil {
			return errors.Wrapf(err, "dump %s", ng.name)
		}
	}
	return nil
}
