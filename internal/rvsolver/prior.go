// Public domain.

package rvsolver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/soniakeys/rvfit/internal/rvpar"
)

// Prior contributes an additive term to the log posterior.
//
// LogProb may return -Inf to reject a point.  It must not return +Inf.
// String returns a one line description.
type Prior interface {
	LogProb(p *rvpar.Params) float64
	String() string
}

// paramNamer is implemented by priors on named parameters so that names can
// be checked when a posterior is constructed.
type paramNamer interface {
	ParamNames() []string
}

// Priors is a sequence of priors.  Order matters only for String.
type Priors []Prior

// LogProb sums the log probabilities of all priors.
//
// -Inf or NaN from any prior gives -Inf.  Terms are summed in sorted order
// so that the result is independent of the order of priors.
func (ps Priors) LogProb(p *rvpar.Params) float64 {
	if len(ps) == 0 {
		return 0
	}
	t := make([]float64, len(ps))
	for i, pr := range ps {
		lp := pr.LogProb(p)
		if math.IsNaN(lp) || math.IsInf(lp, -1) {
			return negInf
		}
		t[i] = lp
	}
	sort.Float64s(t)
	return floats.Sum(t)
}

// String lists the priors one per line.
func (ps Priors) String() string {
	var b strings.Builder
	for _, pr := range ps {
		b.WriteString(pr.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Gaussian is a normal prior on a single parameter.
type Gaussian struct {
	Param string
	dist  distuv.Normal
}

// NewGaussian creates a normal prior with mean mu and standard
// deviation sigma.
func NewGaussian(param string, mu, sigma float64) (*Gaussian, error) {
	if !(sigma > 0) || math.IsInf(sigma, 1) || math.IsNaN(mu) {
		return nil, fmt.Errorf("%w: Gaussian on %s, sigma = %g",
			ErrPrior, param, sigma)
	}
	return &Gaussian{Param: param, dist: distuv.Normal{Mu: mu, Sigma: sigma}}, nil
}

// LogProb returns the log normal density at the parameter value.
func (g *Gaussian) LogProb(p *rvpar.Params) float64 {
	return g.dist.LogProb(p.Value(g.Param))
}

// ParamNames returns the constrained parameter.
func (g *Gaussian) ParamNames() []string { return []string{g.Param} }

func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian prior on %s, mu=%.4g, sigma=%.4g",
		g.Param, g.dist.Mu, g.dist.Sigma)
}

// HardBounds is flat within [Min, Max] and rejects values outside.
type HardBounds struct {
	Param    string
	Min, Max float64
}

// NewHardBounds creates a bounded prior.
func NewHardBounds(param string, min, max float64) (*HardBounds, error) {
	if !(min < max) {
		return nil, fmt.Errorf("%w: bounds on %s, %g >= %g",
			ErrPrior, param, min, max)
	}
	return &HardBounds{param, min, max}, nil
}

// LogProb returns 0 within bounds, -Inf outside.
func (h *HardBounds) LogProb(p *rvpar.Params) float64 {
	if x := p.Value(h.Param); x >= h.Min && x <= h.Max {
		return 0
	}
	return negInf
}

// ParamNames returns the constrained parameter.
func (h *HardBounds) ParamNames() []string { return []string{h.Param} }

func (h *HardBounds) String() string {
	return fmt.Sprintf("Bounded prior: %.4g < %s < %.4g", h.Min, h.Param, h.Max)
}

// DefaultEccentricityLimit is the eccentricity limit of NewEccentricity
// when none is given.
const DefaultEccentricityLimit = .99

// Eccentricity rejects orbits with eccentricity at or above a limit.
// Upper[n-1] is the limit for planet n.
type Eccentricity struct {
	Upper []float64
}

// NewEccentricity creates an eccentricity prior for planets 1 through
// nPlanets.  Upper may hold a single limit for all planets or one limit
// per planet, and defaults to DefaultEccentricityLimit.  Limits must be in
// (0, 1].
func NewEccentricity(nPlanets int, upper ...float64) (*Eccentricity, error) {
	switch {
	case nPlanets < 1:
		return nil, fmt.Errorf("%w: eccentricity prior on %d planets",
			ErrPrior, nPlanets)
	case len(upper) == 0:
		upper = []float64{DefaultEccentricityLimit}
		fallthrough
	case len(upper) == 1:
		u := make([]float64, nPlanets)
		for i := range u {
			u[i] = upper[0]
		}
		upper = u
	case len(upper) != nPlanets:
		return nil, fmt.Errorf("%w: %d eccentricity limits for %d planets",
			ErrPrior, len(upper), nPlanets)
	}
	for _, u := range upper {
		if !(u > 0 && u <= 1) {
			return nil, fmt.Errorf("%w: eccentricity limit %g", ErrPrior, u)
		}
	}
	return &Eccentricity{Upper: append([]float64{}, upper...)}, nil
}

// LogProb returns -Inf if any planet has eccentricity at or above its
// limit, 0 otherwise.
func (ep *Eccentricity) LogProb(p *rvpar.Params) float64 {
	for i, u := range ep.Upper {
		if i == p.NPlanets() {
			break
		}
		if e := p.Orbit(i + 1).E; !(e < u) {
			return negInf
		}
	}
	return 0
}

func (ep *Eccentricity) String() string {
	s := make([]string, len(ep.Upper))
	for i, u := range ep.Upper {
		s[i] = fmt.Sprintf("e%d constrained to be < %.4g", i+1, u)
	}
	return strings.Join(s, "; ")
}

// PositiveK rejects negative velocity semi-amplitudes.
type PositiveK struct {
	NPlanets int
}

// LogProb returns -Inf if any planet has K < 0, 0 otherwise.
func (pk PositiveK) LogProb(p *rvpar.Params) float64 {
	for n := 1; n <= pk.NPlanets && n <= p.NPlanets(); n++ {
		if !(p.Orbit(n).K >= 0) {
			return negInf
		}
	}
	return 0
}

func (pk PositiveK) String() string {
	return fmt.Sprintf("K constrained to be > 0 for %d planets", pk.NPlanets)
}

// Jeffreys is a scale invariant prior, density proportional to 1/x,
// within [Min, Max].
type Jeffreys struct {
	Param    string
	Min, Max float64
	norm     float64
}

// NewJeffreys creates a Jeffreys prior.  0 < min < max is required.
func NewJeffreys(param string, min, max float64) (*Jeffreys, error) {
	if !(min > 0 && min < max) {
		return nil, fmt.Errorf("%w: Jeffreys on %s, bounds %g, %g",
			ErrPrior, param, min, max)
	}
	return &Jeffreys{param, min, max, math.Log(math.Log(max / min))}, nil
}

// LogProb returns the normalized log density.
func (j *Jeffreys) LogProb(p *rvpar.Params) float64 {
	x := p.Value(j.Param)
	if !(x >= j.Min && x <= j.Max) {
		return negInf
	}
	return -math.Log(x) - j.norm
}

// ParamNames returns the constrained parameter.
func (j *Jeffreys) ParamNames() []string { return []string{j.Param} }

func (j *Jeffreys) String() string {
	return fmt.Sprintf("Jeffreys prior: %.4g < %s < %.4g", j.Min, j.Param, j.Max)
}

// ModifiedJeffreys has density proportional to 1/(x - Knee) within
// [Min, Max].  It behaves like Jeffreys well above the knee and is nearly
// flat near it.
type ModifiedJeffreys struct {
	Param          string
	Min, Max, Knee float64
	norm           float64
}

// NewModifiedJeffreys creates a modified Jeffreys prior.
// knee < min < max is required.
func NewModifiedJeffreys(param string, min, max, knee float64) (*ModifiedJeffreys, error) {
	if !(knee < min && min < max) {
		return nil, fmt.Errorf("%w: modified Jeffreys on %s, bounds %g, %g, knee %g",
			ErrPrior, param, min, max, knee)
	}
	return &ModifiedJeffreys{param, min, max, knee,
		math.Log(math.Log((max - knee) / (min - knee)))}, nil
}

// LogProb returns the normalized log density.
func (j *ModifiedJeffreys) LogProb(p *rvpar.Params) float64 {
	x := p.Value(j.Param)
	if !(x >= j.Min && x <= j.Max) {
		return negInf
	}
	return -math.Log(x-j.Knee) - j.norm
}

// ParamNames returns the constrained parameter.
func (j *ModifiedJeffreys) ParamNames() []string { return []string{j.Param} }

func (j *ModifiedJeffreys) String() string {
	return fmt.Sprintf("Modified Jeffreys prior: %.4g < %s < %.4g, knee=%.4g",
		j.Min, j.Param, j.Max, j.Knee)
}

// UserDefined applies an arbitrary function of named parameter values.
type UserDefined struct {
	Params      []string
	Fn          func(v []float64) float64
	Description string
}

// NewUserDefined creates a prior calling fn with the values of params,
// in order.
func NewUserDefined(params []string, fn func([]float64) float64, description string) (*UserDefined, error) {
	if len(params) == 0 || fn == nil {
		return nil, fmt.Errorf("%w: user defined prior %q", ErrPrior, description)
	}
	return &UserDefined{append([]string{}, params...), fn, description}, nil
}

// LogProb returns Fn of the parameter values.
func (u *UserDefined) LogProb(p *rvpar.Params) float64 {
	v := make([]float64, len(u.Params))
	for i, n := range u.Params {
		v[i] = p.Value(n)
	}
	return u.Fn(v)
}

// ParamNames returns the parameters passed to Fn.
func (u *UserDefined) ParamNames() []string { return u.Params }

func (u *UserDefined) String() string { return u.Description }
