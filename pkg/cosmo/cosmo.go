// Package cosmo supplies luminosity distances under a flat
// Lambda-CDM parametrization. It is deliberately small: the redshift
// pipeline only ever needs a distance oracle, no ages, no volumes.
package cosmo

import(
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"
)

const(
	cKms       = 299792.458        // speed of light, km/s
	cMs        = 2.99792458e8      // speed of light, m/s
	gravG      = 6.67430e-11       // m^3 kg^-1 s^-2
	radA       = 7.565723e-16      // radiation constant, J m^-3 K^-4
	mpcM       = 3.0856775814913673e22 // metres per Mpc
	neff       = 3.04              // effective number of massless neutrino species
	nuPerGamma = 0.2271073         // neutrino/photon density ratio per species
)

// quadNodes is plenty for the smooth 1/E(z) integrand.
const quadNodes = 64

var ErrNegativeRedshift = errors.New("cosmo: redshift must be >= 0")

// FlatLambdaCDM is a flat cosmology with matter, dark energy, photons
// and massless neutrinos. The dark-energy fraction is whatever is left
// over after matter and radiation, so the model is always flat.
type FlatLambdaCDM struct {
	H0    float64 // Hubble constant, km/s/Mpc
	Om0   float64 // matter density fraction at z=0
	Tcmb0 float64 // CMB temperature at z=0, Kelvin

	or0   float64 // total radiation fraction (photons + neutrinos)
	ode0  float64 // dark energy fraction
	dh    float64 // Hubble distance c/H0, Mpc
}

// New validates the parameters and precomputes the density fractions.
func New(h0, om0, tcmb0 float64) (FlatLambdaCDM, error) {
	if h0 <= 0 {
		return FlatLambdaCDM{}, errors.Errorf("cosmo: H0 must be > 0, got %v", h0)
	}
	if om0 < 0 || om0 > 1 {
		return FlatLambdaCDM{}, errors.Errorf("cosmo: Om0 must be in [0,1], got %v", om0)
	}
	if tcmb0 < 0 {
		return FlatLambdaCDM{}, errors.Errorf("cosmo: Tcmb0 must be >= 0, got %v", tcmb0)
	}

	c := FlatLambdaCDM{H0: h0, Om0: om0, Tcmb0: tcmb0}

	// Photon density fraction from the CMB temperature, then massless
	// neutrinos at the standard per-species ratio.
	h0si := h0 * 1000 / mpcM
	rhoCrit := 3 * h0si * h0si / (8 * math.Pi * gravG)
	ogamma0 := (radA * math.Pow(tcmb0, 4) / (cMs * cMs)) / rhoCrit
	c.or0 = ogamma0 * (1 + nuPerGamma*neff)
	c.ode0 = 1 - om0 - c.or0
	c.dh = cKms / h0
	return c, nil
}

// efunc is E(z) = H(z)/H0.
func (c FlatLambdaCDM)efunc(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(c.Om0*zp1*zp1*zp1 + c.or0*zp1*zp1*zp1*zp1 + c.ode0)
}

// ComovingDistance returns the line-of-sight comoving distance in Mpc.
func (c FlatLambdaCDM)ComovingDistance(z float64) (float64, error) {
	if z < 0 {
		return 0, ErrNegativeRedshift
	}
	if z == 0 {
		return 0, nil
	}
	integral := quad.Fixed(func(zp float64) float64 {
		return 1 / c.efunc(zp)
	}, 0, z, quadNodes, nil, 0)
	return c.dh * integral, nil
}

// LuminosityDistance returns D_L in Mpc. Monotonically increasing in z
// for z >= 0.
func (c FlatLambdaCDM)LuminosityDistance(z float64) (float64, error) {
	dc, err := c.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * dc, nil
}
