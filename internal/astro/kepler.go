// Public domain.

// Package astro, orbit computations generally useful for radial velocity
// work.
package astro

import (
	"errors"
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

// ErrEccentricity is returned for eccentricities outside [0, 1).
var ErrEccentricity = errors.New("astro: eccentricity must be in [0, 1)")

// ErrNoConverge is returned when Kepler's equation could not be solved to
// the requested tolerance.
var ErrNoConverge = errors.New("astro: Kepler's equation did not converge")

const twoPi = 2 * math.Pi

// Kepler holds parameters for solving Kepler's equation.
//
// Tol is the absolute tolerance on the residual E - e sin E - M, in radians.
// MaxIter caps Newton-Raphson iterations.  When the cap is hit the solver
// falls back on binary search, which always terminates.
type Kepler struct {
	Tol     float64
	MaxIter int
}

// DefaultKepler is used wherever a zero Kepler value is supplied.
var DefaultKepler = Kepler{Tol: 1e-12, MaxIter: 30}

func (k Kepler) orDefault() Kepler {
	if k.Tol <= 0 {
		k.Tol = DefaultKepler.Tol
	}
	if k.MaxIter <= 0 {
		k.MaxIter = DefaultKepler.MaxIter
	}
	return k
}

// Solve solves Kepler's equation E - e sin E = M for eccentric anomaly E.
//
// M may be any real angle.  It is reduced to [-π, π] and E is returned in
// the same turn as the reduced M.
//
// Converged is false if neither Newton-Raphson nor the binary search
// fallback reached the tolerance.  E is still the best estimate found.
func (k Kepler) Solve(M unit.Angle, e float64) (E unit.Angle, converged bool, err error) {
	if !(e >= 0 && e < 1) {
		return 0, false, ErrEccentricity
	}
	k = k.orDefault()
	m := math.Remainder(M.Rad(), twoPi)
	if e == 0 {
		return unit.Angle(m), true, nil
	}
	// starting value per Danby
	x := m
	if s := math.Sin(m); s > 0 {
		x += .85 * e
	} else if s < 0 {
		x -= .85 * e
	}
	for i := 0; i < k.MaxIter; i++ {
		se, ce := math.Sincos(x)
		f := x - e*se - m
		if math.Abs(f) < k.Tol {
			return unit.Angle(x), true, nil
		}
		x -= f / (1 - e*ce)
	}
	// Newton wandered.  Binary search is slow but sure.
	E = kepler.Kepler3(e, unit.Angle(m))
	r := math.Remainder(E.Rad()-e*math.Sin(E.Rad())-m, twoPi)
	return E, math.Abs(r) < k.Tol, nil
}

// SolveAll solves Kepler's equation for each mean anomaly in M, in radians.
//
// Results are identical to calling Solve per element.  Converged is false
// if any element failed to converge.
func (k Kepler) SolveAll(M []float64, e float64) (E []float64, converged bool, err error) {
	if !(e >= 0 && e < 1) {
		return nil, false, ErrEccentricity
	}
	E = make([]float64, len(M))
	converged = true
	for i, m := range M {
		ei, ok, _ := k.Solve(unit.Angle(m), e)
		E[i] = ei.Rad()
		converged = converged && ok
	}
	return E, converged, nil
}
