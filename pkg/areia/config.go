package areia

import(
	"io/ioutil"
	"log"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/bamford/areia/pkg/cosmo"
)

/* Example config file ...

addbackground: true
rebinning: true
convolvewithpsf: true
makecutout: true
dimming: true
shotnoise: true
sizecorrection: true
evo: false
evoalpha: -1
h0: 70
om0: 0.3
tcmb0: 2.725
seed: 42

*/

// Config tracks all the stage gates and model parameters for one
// transformation run. Read-only during execution.
type Config struct {
	Verbosity       int

	// Stage gates, in pipeline order
	MakeCutout      bool
	Rebinning       bool
	Dimming         bool
	Evo             bool
	ConvolveWithPSF bool
	ShotNoise       bool
	AddBackground   bool

	SizeCorrection  bool    // sub-gate of rebinning
	EvoAlpha        float64 // luminosity evolution slope

	// Flat cosmology parameters
	H0    float64
	Om0   float64
	Tcmb0 float64

	// Seed for the noise draws; same seed, same output.
	Seed uint64
}

// NewConfig returns the defaults the original tool shipped with:
// every effect on except luminosity evolution.
func NewConfig() Config {
	return Config{
		MakeCutout:      true,
		Rebinning:       true,
		Dimming:         true,
		Evo:             false,
		ConvolveWithPSF: true,
		ShotNoise:       true,
		AddBackground:   true,
		SizeCorrection:  true,
		EvoAlpha:        -1,
		H0:              70,
		Om0:             0.3,
		Tcmb0:           2.725,
		Seed:            1,
	}
}

func LoadConfig(filename string) (Config, error) {
	c := NewConfig()

	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return c, errors.Wrapf(err, "read '%s'", filename)
	}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, errors.Wrapf(err, "parse '%s'", filename)
	}
	return c, c.Validate()
}

func (c Config)Validate() error {
	// Cosmology parameters get the full check on construction; do it
	// here too so a bad YAML file fails before any pixels move.
	if _, err := cosmo.New(c.H0, c.Om0, c.Tcmb0); err != nil {
		return err
	}
	return nil
}

// Cosmology builds the distance oracle the pipeline stages share.
func (c Config)Cosmology() (cosmo.FlatLambdaCDM, error) {
	return cosmo.New(c.H0, c.Om0, c.Tcmb0)
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}
