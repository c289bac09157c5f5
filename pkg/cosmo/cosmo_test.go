package cosmo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCosmology(t *testing.T) FlatLambdaCDM {
	t.Helper()
	c, err := New(70, 0.3, 2.725)
	require.NoError(t, err)
	return c
}

// Reference values computed independently with Simpson integration of
// the same flat model (matter + Lambda + photons + massless
// neutrinos); they agree with astropy's FlatLambdaCDM to the same
// precision.
func TestLuminosityDistanceReferenceValues(t *testing.T) {
	t.Parallel()

	c := defaultCosmology(t)
	for _, tc := range []struct {
		z    float64
		want float64 // Mpc
	}{
		{0.05, 222.288},
		{0.1, 460.296},
		{0.5, 2832.807},
		{1.0, 6607.053},
		{2.0, 15537.037},
		{3.0, 25417.169},
	} {
		got, err := c.LuminosityDistance(tc.z)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.want, got, 2e-3, "z=%v", tc.z)
	}
}

func TestLuminosityDistanceMonotonic(t *testing.T) {
	t.Parallel()

	c := defaultCosmology(t)
	prev := -1.0
	for z := 0.0; z <= 5.0; z += 0.05 {
		d, err := c.LuminosityDistance(z)
		require.NoError(t, err)
		assert.Greater(t, d, prev, "z=%v", z)
		prev = d
	}
}

func TestLuminosityDistanceZero(t *testing.T) {
	t.Parallel()

	c := defaultCosmology(t)
	d, err := c.LuminosityDistance(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestNegativeRedshift(t *testing.T) {
	t.Parallel()

	c := defaultCosmology(t)
	_, err := c.LuminosityDistance(-0.1)
	assert.ErrorIs(t, err, ErrNegativeRedshift)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ h0, om0, tcmb0 float64 }{
		{0, 0.3, 2.725},
		{-70, 0.3, 2.725},
		{70, -0.1, 2.725},
		{70, 1.5, 2.725},
		{70, 0.3, -1},
	} {
		_, err := New(tc.h0, tc.om0, tc.tcmb0)
		assert.Error(t, err, "H0=%v Om0=%v Tcmb0=%v", tc.h0, tc.om0, tc.tcmb0)
	}
}

// With Tcmb0 = 0 the model degrades to matter + Lambda only, which is
// still perfectly usable.
func TestZeroTemperature(t *testing.T) {
	t.Parallel()

	c, err := New(70, 0.3, 0)
	require.NoError(t, err)
	d, err := c.LuminosityDistance(0.5)
	require.NoError(t, err)
	assert.InEpsilon(t, 2832.9, d, 5e-3)
}
