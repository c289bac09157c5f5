package main

import(
	"flag"
	"log"
	"math"

	"github.com/bamford/areia/pkg/amath"
	"github.com/bamford/areia/pkg/areia"
)

var(
	fVerbosity int
	fConfig string
	fOutDir string

	fInitialZ float64
	fTargetZ float64
	fInitialPixScale float64
	fTargetPixScale float64
	fInitialExpTime float64
	fTargetExpTime float64

	fImageSize int
	fDiskRadius float64
	fDiskFlux float64
	fPSFSigma float64
	fSeed uint64
)

func init() {
	flag.IntVar(&fVerbosity, "v", 1, "how verbose to get")
	flag.StringVar(&fConfig, "config", "", "yaml config file; defaults used if empty")
	flag.StringVar(&fOutDir, "out", ".", "where to write the intermediate PNGs")

	flag.Float64Var(&fInitialZ, "zi", 0.05, "redshift of the initial observation")
	flag.Float64Var(&fTargetZ, "zt", 0.5, "redshift to simulate")
	flag.Float64Var(&fInitialPixScale, "pixscalei", 0.03, "initial pixel scale, arcsec/pixel")
	flag.Float64Var(&fTargetPixScale, "pixscalet", 0.03, "target pixel scale, arcsec/pixel")
	flag.Float64Var(&fInitialExpTime, "exptimei", 1000, "initial exposure time, seconds")
	flag.Float64Var(&fTargetExpTime, "exptimet", 500, "target exposure time, seconds")

	flag.IntVar(&fImageSize, "size", 256, "synthetic source image size, pixels")
	flag.Float64Var(&fDiskRadius, "diskradius", 40, "synthetic disk radius, pixels")
	flag.Float64Var(&fDiskFlux, "diskflux", 10, "synthetic disk peak flux, counts/s")
	flag.Float64Var(&fPSFSigma, "psfsigma", 2, "Gaussian PSF sigma, pixels")
	flag.Uint64Var(&fSeed, "seed", 1, "seed for the noise draws")
	flag.Parse()

	log.Printf("areia starting\n")
}

// diskGalaxy draws an exponential disk in the middle of an empty frame.
func diskGalaxy(size int, radius, flux float64) amath.Grid {
	g := amath.NewGrid(size, size)
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := math.Hypot(float64(x)-c, float64(y)-c)
			g.Set(x, y, flux*math.Exp(-r/(radius/3)))
		}
	}
	return g
}

func gaussianPSF(sigma float64) amath.Grid {
	size := 2*int(math.Ceil(3*sigma)) + 1
	g := amath.NewGrid(size, size)
	c := float64(size / 2)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			g.Set(x, y, math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma)))
		}
	}
	return g.Scale(1 / g.Sum())
}

func main() {
	cfg := areia.NewConfig()
	if fConfig != "" {
		var err error
		if cfg, err = areia.LoadConfig(fConfig); err != nil {
			log.Fatal(err)
		}
	}
	cfg.Verbosity = fVerbosity
	cfg.Seed = fSeed

	initial, err := areia.NewObservationFrame(fInitialZ, fInitialPixScale, fInitialExpTime)
	if err != nil {
		log.Fatal(err)
	}
	target, err := areia.NewObservationFrame(fTargetZ, fTargetPixScale, fTargetExpTime)
	if err != nil {
		log.Fatal(err)
	}

	image := diskGalaxy(fImageSize, fDiskRadius, fDiskFlux)
	psf := gaussianPSF(fPSFSigma)

	t, err := areia.New(image, psf, nil, initial, target, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if fVerbosity > 0 {
		log.Printf("Run %s, %s -> %s, configuration:-\n\n%s\n", t.RunID, initial, target, cfg.AsYaml())
	}

	if err := t.Run(); err != nil {
		log.Fatal(err)
	}

	log.Printf("scale factor %.4f (size correction %.4f), dimming %.6f, evo %.4f",
		t.ScaleFactor, t.SizeCorrectionFactor, t.DimmingFactor, t.EvoFactor)
	log.Printf("final: %s", t.Final.Stats())

	if err := t.DumpIntermediates(fOutDir); err != nil {
		log.Fatal(err)
	}
}
