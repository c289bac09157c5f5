package areia

import(
	"fmt"

	"github.com/pkg/errors"
)

// An ObservationFrame describes one observation context: how far away
// the object is, how much sky one pixel covers, and how long the
// detector integrated. Immutable after construction; a transformation
// always involves two of these, initial and target.
type ObservationFrame struct {
	Redshift   float64 // dimensionless, >= 0
	PixelScale float64 // arcsec/pixel, > 0
	ExpTime    float64 // seconds, > 0
}

func NewObservationFrame(redshift, pixelscale, exptime float64) (ObservationFrame, error) {
	f := ObservationFrame{Redshift: redshift, PixelScale: pixelscale, ExpTime: exptime}
	return f, f.Validate()
}

func (f ObservationFrame)Validate() error {
	if f.Redshift < 0 {
		return errors.Errorf("observation frame: redshift must be >= 0, got %v", f.Redshift)
	}
	if f.PixelScale <= 0 {
		return errors.Errorf("observation frame: pixelscale must be > 0, got %v", f.PixelScale)
	}
	if f.ExpTime <= 0 {
		return errors.Errorf("observation frame: exptime must be > 0, got %v", f.ExpTime)
	}
	return nil
}

func (f ObservationFrame)String() string {
	return fmt.Sprintf("frame[z=%g, pixscale=%g, exptime=%g]", f.Redshift, f.PixelScale, f.ExpTime)
}
