// Public domain.

// Package rvsolver combines a radial velocity model with data and priors.
//
// Numerically invalid points, a non-positive variance or an eccentricity
// out of range for example, are represented by a log probability of -Inf
// rather than by an error so that optimizers and samplers can reject them
// as part of a normal search.  Errors are returned only for invalid
// configuration, and only at construction.
package rvsolver

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/rvfit/internal/rvmodel"
	"github.com/soniakeys/rvfit/internal/rvpar"
)

// Configuration errors.
var (
	ErrData   = errors.New("rvsolver: invalid data")
	ErrPrior  = errors.New("rvsolver: invalid prior")
	ErrShared = errors.New("rvsolver: likelihoods must share one parameter set")
)

var negInf = math.Inf(-1)

// Evaluator is a log likelihood over a parameter set.
// It is satisfied by *Likelihood and *CompositeLikelihood.
type Evaluator interface {
	// Params returns the shared parameter set.
	Params() *rvpar.Params
	// LogProbAt returns the log likelihood with parameter values from p,
	// which must have the layout of Params.
	LogProbAt(p *rvpar.Params) float64
	// NPoints returns the number of data points.
	NPoints() int
}

// Likelihood is the Gaussian likelihood of the data of one instrument.
//
// The instrument offset and jitter are parameters gamma and jit, suffixed
// with the instrument name if it is not empty.
type Likelihood struct {
	Model *rvmodel.Model
	Tel   string

	t, v, verr []float64
	gamma, jit string
}

// NewLikelihood creates a likelihood for times t, velocities v and
// measurement uncertainties verr.  The slices are copied.
//
// The model's parameter set must contain gamma and jit parameters for tel.
func NewLikelihood(m *rvmodel.Model, t, v, verr []float64, tel string) (*Likelihood, error) {
	if len(t) == 0 || len(v) != len(t) || len(verr) != len(t) {
		return nil, fmt.Errorf("%w: lengths %d, %d, %d",
			ErrData, len(t), len(v), len(verr))
	}
	l := &Likelihood{
		Model: m,
		Tel:   tel,
		t:     append([]float64{}, t...),
		v:     append([]float64{}, v...),
		verr:  append([]float64{}, verr...),
		gamma: rvpar.InstrumentName("gamma", tel),
		jit:   rvpar.InstrumentName("jit", tel),
	}
	for _, n := range []string{l.gamma, l.jit} {
		if _, ok := m.Params.Get(n); !ok {
			return nil, fmt.Errorf("%w: %s", rvpar.ErrUnknown, n)
		}
	}
	return l, nil
}

// Params returns the model's parameter set.
func (l *Likelihood) Params() *rvpar.Params { return l.Model.Params }

// NPoints returns the number of data points.
func (l *Likelihood) NPoints() int { return len(l.t) }

// Times returns a copy of the observation times.
func (l *Likelihood) Times() []float64 { return append([]float64{}, l.t...) }

// Residuals returns observed minus model velocities, where the model
// includes the instrument offset.
func (l *Likelihood) Residuals() ([]float64, error) {
	return l.ResidualsAt(l.Model.Params)
}

// ResidualsAt returns residuals with parameter values from p.
func (l *Likelihood) ResidualsAt(p *rvpar.Params) ([]float64, error) {
	rv, err := l.Model.RVAt(p, l.t)
	if err != nil {
		return nil, err
	}
	g := p.Value(l.gamma)
	for i, m := range rv {
		rv[i] = l.v[i] - (m + g)
	}
	return rv, nil
}

// LogProb returns the log likelihood at the current parameter values.
func (l *Likelihood) LogProb() float64 { return l.LogProbAt(l.Model.Params) }

// LogProbAt returns
//
//   -1/2 Σ (r²/σ² + ln(2πσ²)),  σ² = err² + jit²
//
// with parameter values from p.  It returns -Inf if the model can't be
// evaluated or any σ² is not positive.
func (l *Likelihood) LogProbAt(p *rvpar.Params) float64 {
	r, err := l.ResidualsAt(p)
	if err != nil {
		return negInf
	}
	jit := p.Value(l.jit)
	j2 := jit * jit
	var sum float64
	for i, ri := range r {
		s2 := l.verr[i]*l.verr[i] + j2
		if !(s2 > 0) {
			return negInf
		}
		sum += ri*ri/s2 + math.Log(2*math.Pi*s2)
	}
	if math.IsNaN(sum) {
		return negInf
	}
	return -.5 * sum
}

// CompositeLikelihood sums likelihoods of several instruments sharing one
// parameter set.
type CompositeLikelihood struct {
	Like []*Likelihood
}

// NewComposite combines likelihoods.  All must share a parameter set.
func NewComposite(like ...*Likelihood) (*CompositeLikelihood, error) {
	if len(like) == 0 {
		return nil, fmt.Errorf("%w: no likelihoods", ErrData)
	}
	for _, l := range like[1:] {
		if l.Params() != like[0].Params() {
			return nil, ErrShared
		}
	}
	return &CompositeLikelihood{Like: like}, nil
}

// Params returns the shared parameter set.
func (c *CompositeLikelihood) Params() *rvpar.Params { return c.Like[0].Params() }

// NPoints returns the total number of data points.
func (c *CompositeLikelihood) NPoints() (n int) {
	for _, l := range c.Like {
		n += l.NPoints()
	}
	return
}

// LogProb returns the summed log likelihood at the current values.
func (c *CompositeLikelihood) LogProb() float64 { return c.LogProbAt(c.Params()) }

// LogProbAt returns the summed log likelihood with values from p.
func (c *CompositeLikelihood) LogProbAt(p *rvpar.Params) float64 {
	var sum float64
	for _, l := range c.Like {
		lp := l.LogProbAt(p)
		if math.IsInf(lp, -1) {
			return lp
		}
		sum += lp
	}
	return sum
}
