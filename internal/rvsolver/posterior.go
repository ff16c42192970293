// Public domain.

package rvsolver

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/rvfit/internal/rvpar"
)

// Posterior is a likelihood times priors, up to normalization.
type Posterior struct {
	Like   Evaluator
	Priors Priors
}

// NewPosterior combines a likelihood and priors.
//
// Priors on named parameters must name parameters of the likelihood's
// parameter set.
func NewPosterior(like Evaluator, priors ...Prior) (*Posterior, error) {
	p := like.Params()
	for _, pr := range priors {
		pn, ok := pr.(paramNamer)
		if !ok {
			continue
		}
		for _, n := range pn.ParamNames() {
			if _, ok := p.Get(n); !ok {
				return nil, fmt.Errorf("%w: %s, in %s", rvpar.ErrUnknown, n, pr)
			}
		}
	}
	return &Posterior{Like: like, Priors: append(Priors{}, priors...)}, nil
}

// Params returns the shared parameter set.
func (p *Posterior) Params() *rvpar.Params { return p.Like.Params() }

// FreeNames returns the names of free parameters, the order of the vectors
// of FreeVector, SetFreeVector, and LogProb.
func (p *Posterior) FreeNames() []string { return p.Params().Free() }

// FreeVector returns the current values of free parameters.
func (p *Posterior) FreeVector() []float64 { return p.Params().FreeVector() }

// SetFreeVector assigns v to the free parameters.
func (p *Posterior) SetFreeVector(v []float64) error {
	return p.Params().SetFreeVector(v)
}

// LogProb assigns v to the free parameters of the shared parameter set
// and returns the log posterior probability.
//
// A v of the wrong length gives -Inf and leaves parameters unchanged.
func (p *Posterior) LogProb(v []float64) float64 {
	ps := p.Params()
	if err := ps.SetFreeVector(v); err != nil {
		return negInf
	}
	return p.logProbAt(ps)
}

// NegLogProb returns -LogProb(v), an objective for minimizers.
func (p *Posterior) NegLogProb(v []float64) float64 { return -p.LogProb(v) }

// Current returns the log posterior probability at the current values.
func (p *Posterior) Current() float64 { return p.logProbAt(p.Params()) }

func (p *Posterior) logProbAt(ps *rvpar.Params) float64 {
	lp := p.Priors.LogProb(ps)
	if math.IsInf(lp, -1) {
		return lp
	}
	ll := p.Like.LogProbAt(ps)
	if math.IsInf(ll, -1) || math.IsNaN(ll) {
		return negInf
	}
	return lp + ll
}

// Evaluator returns a log probability function over free parameter
// vectors bound to a private copy of the parameter set.
//
// Fixed parameter values are those current when Evaluator is called.
// The function does not modify the shared parameter set.  Each function
// must be used by only one goroutine at a time; call Evaluator once per
// goroutine.
func (p *Posterior) Evaluator() func([]float64) float64 {
	snap := p.Params().Clone()
	return func(v []float64) float64 {
		if err := snap.SetFreeVector(v); err != nil {
			return negInf
		}
		return p.logProbAt(snap)
	}
}

// BIC returns the Bayesian information criterion of the likelihood at the
// current parameter values.
func (p *Posterior) BIC() float64 {
	k := float64(len(p.FreeNames()))
	n := float64(p.Like.NPoints())
	return -2*p.Like.LogProbAt(p.Params()) + k*math.Log(n)
}

// AIC returns the Akaike information criterion of the likelihood at the
// current parameter values, with the small sample correction.
//
// The correction is undefined when there are not at least two more points
// than free parameters; +Inf is returned then.
func (p *Posterior) AIC() float64 {
	k := float64(len(p.FreeNames()))
	n := float64(p.Like.NPoints())
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return -2*p.Like.LogProbAt(p.Params()) + 2*k + 2*k*(k+1)/(n-k-1)
}

// String formats the parameter table followed by the priors.
func (p *Posterior) String() string {
	var b strings.Builder
	b.WriteString(p.Params().String())
	b.WriteString("\nPriors\n------\n")
	b.WriteString(p.Priors.String())
	return b.String()
}
