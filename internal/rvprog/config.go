// Public domain.

package rvprog

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/soniakeys/rvfit/internal/rvmcmc"
	"github.com/soniakeys/rvfit/internal/rvmodel"
	"github.com/soniakeys/rvfit/internal/rvopt"
	"github.com/soniakeys/rvfit/internal/rvpar"
	"github.com/soniakeys/rvfit/internal/rvsolver"
)

// config is the YAML configuration file.
type config struct {
	NPlanets int    `yaml:"nplanets" validate:"gte=1,lte=20"`
	Basis    string `yaml:"basis" validate:"required"`
	// Reference time of the trend terms.  The mean observation time if
	// omitted.
	TimeBase    *float64           `yaml:"time_base"`
	Instruments []instrumentConfig `yaml:"instruments" validate:"dive"`
	Params      []paramConfig      `yaml:"params" validate:"dive"`
	Priors      []priorConfig      `yaml:"priors" validate:"dive"`
	Fit         fitConfig          `yaml:"fit"`
	MCMC        mcmcConfig         `yaml:"mcmc"`
}

type instrumentConfig struct {
	Tel   string  `yaml:"tel"`
	Gamma float64 `yaml:"gamma"`
	Jit   float64 `yaml:"jit" validate:"gte=0"`
}

type paramConfig struct {
	Name  string   `yaml:"name" validate:"required"`
	Value *float64 `yaml:"value"`
	Vary  *bool    `yaml:"vary"`
}

type priorConfig struct {
	Type  string    `yaml:"type" validate:"oneof=gaussian bounds jeffreys modjeffreys eccentricity positivek"`
	Param string    `yaml:"param"`
	Mu    float64   `yaml:"mu"`
	Sigma float64   `yaml:"sigma"`
	Min   float64   `yaml:"min"`
	Max   float64   `yaml:"max"`
	Knee  float64   `yaml:"knee"`
	Upper []float64 `yaml:"upper" validate:"dive,gt=0,lte=1"`
}

type fitConfig struct {
	MaxEvals int     `yaml:"max_evals" validate:"gte=0"`
	MaxIter  int     `yaml:"max_iter" validate:"gte=0"`
	FuncTol  float64 `yaml:"func_tol" validate:"gte=0"`
}

// zero values select rvmcmc defaults.
type mcmcConfig struct {
	Walkers       int     `yaml:"walkers" validate:"gte=0"`
	MaxSteps      int     `yaml:"max_steps" validate:"gte=0"`
	MinSteps      int     `yaml:"min_steps" validate:"gte=0"`
	CheckInterval int     `yaml:"check_interval" validate:"gte=0"`
	MinAfactor    float64 `yaml:"min_afactor" validate:"gte=0"`
	MaxArChange   float64 `yaml:"max_archange" validate:"gte=0"`
	MaxGR         float64 `yaml:"max_gr" validate:"gte=0"`
	InitScale     float64 `yaml:"init_scale" validate:"gte=0"`
	Threads       int     `yaml:"threads" validate:"gte=0"`
	Seed          uint64  `yaml:"seed"`
}

var validate = validator.New()

// readConfig decodes and validates a configuration.  Unknown keys are
// errors.
func readConfig(r io.Reader) (*config, error) {
	var c config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

func (c *config) settings() rvopt.Settings {
	return rvopt.Settings{
		MaxEvals: c.Fit.MaxEvals,
		MaxIter:  c.Fit.MaxIter,
		FuncTol:  c.Fit.FuncTol,
	}
}

// sampler returns the sampler configuration, defaults overridden by
// nonzero configured values.
func (c *config) sampler() rvmcmc.Config {
	s := rvmcmc.DefaultConfig()
	m := &c.MCMC
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setInt(&s.Walkers, m.Walkers)
	setInt(&s.MaxSteps, m.MaxSteps)
	setInt(&s.MinSteps, m.MinSteps)
	setInt(&s.CheckInterval, m.CheckInterval)
	setInt(&s.Threads, m.Threads)
	setFloat(&s.MinAfactor, m.MinAfactor)
	setFloat(&s.MaxArChange, m.MaxArChange)
	setFloat(&s.MaxGR, m.MaxGR)
	setFloat(&s.InitScale, m.InitScale)
	if m.Seed != 0 {
		s.Seed = m.Seed
	}
	return s
}

// build constructs the posterior of the configured model over data.
func (c *config) build(data []*series) (*rvsolver.Posterior, error) {
	b, err := rvpar.ParseBasis(c.Basis)
	if err != nil {
		return nil, err
	}
	p, err := rvpar.New(c.NPlanets, b)
	if err != nil {
		return nil, err
	}
	inst := map[string]instrumentConfig{}
	for _, ic := range c.Instruments {
		inst[ic.Tel] = ic
	}
	for _, s := range data {
		ic, ok := inst[s.tel]
		if !ok {
			// start at the mean velocity with a nominal jitter
			ic = instrumentConfig{Gamma: stat.Mean(s.v, nil), Jit: 1}
		}
		if err := p.AddInstrument(s.tel, ic.Gamma, ic.Jit); err != nil {
			return nil, err
		}
	}
	for _, pc := range c.Params {
		if pc.Value != nil {
			if err := p.Set(pc.Name, *pc.Value); err != nil {
				return nil, err
			}
		}
		if pc.Vary != nil {
			if err := p.SetVary(pc.Name, *pc.Vary); err != nil {
				return nil, err
			}
		}
	}
	m := rvmodel.New(p, c.timeBase(data))
	like := make([]*rvsolver.Likelihood, len(data))
	for i, s := range data {
		if like[i], err = rvsolver.NewLikelihood(m, s.t, s.v, s.verr, s.tel); err != nil {
			return nil, err
		}
	}
	var ev rvsolver.Evaluator = like[0]
	if len(like) > 1 {
		if ev, err = rvsolver.NewComposite(like...); err != nil {
			return nil, err
		}
	}
	priors, err := c.priors()
	if err != nil {
		return nil, err
	}
	return rvsolver.NewPosterior(ev, priors...)
}

func (c *config) timeBase(data []*series) float64 {
	if c.TimeBase != nil {
		return *c.TimeBase
	}
	var t []float64
	for _, s := range data {
		t = append(t, s.t...)
	}
	return stat.Mean(t, nil)
}

func (c *config) priors() ([]rvsolver.Prior, error) {
	priors := make([]rvsolver.Prior, 0, len(c.Priors))
	for i, pc := range c.Priors {
		var pr rvsolver.Prior
		var err error
		switch pc.Type {
		case "eccentricity":
			pr, err = rvsolver.NewEccentricity(c.NPlanets, pc.Upper...)
		case "positivek":
			pr = rvsolver.PositiveK{NPlanets: c.NPlanets}
		default:
			if pc.Param == "" {
				return nil, fmt.Errorf("%w: prior %d (%s) names no parameter",
					rvsolver.ErrPrior, i+1, pc.Type)
			}
			switch pc.Type {
			case "gaussian":
				pr, err = rvsolver.NewGaussian(pc.Param, pc.Mu, pc.Sigma)
			case "bounds":
				pr, err = rvsolver.NewHardBounds(pc.Param, pc.Min, pc.Max)
			case "jeffreys":
				pr, err = rvsolver.NewJeffreys(pc.Param, pc.Min, pc.Max)
			case "modjeffreys":
				pr, err = rvsolver.NewModifiedJeffreys(pc.Param, pc.Min, pc.Max, pc.Knee)
			}
		}
		if err != nil {
			return nil, err
		}
		priors = append(priors, pr)
	}
	return priors, nil
}
