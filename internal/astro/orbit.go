// Public domain.

package astro

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

// ErrPeriod is returned for orbits with a non-positive period.
var ErrPeriod = errors.New("astro: period must be positive")

// Orbit holds the elements of a single planet in the synthesis basis.
//
//   Per:  orbital period, days
//   Tp:   time of periastron passage, days
//   E:    eccentricity
//   W:    argument of periastron of the star's orbit
//   K:    velocity semi-amplitude
type Orbit struct {
	Per, Tp, E float64
	W          unit.Angle
	K          float64
}

// RV computes the radial velocity of the star due to the planet at each
// time in t.
//
// The result has the length and order of t.
func (o *Orbit) RV(t []float64, k Kepler) ([]float64, error) {
	if !(o.Per > 0) {
		return nil, ErrPeriod
	}
	if !(o.E >= 0 && o.E < 1) {
		return nil, ErrEccentricity
	}
	sw, cw := math.Sincos(o.W.Rad())
	ecw := o.E * cw
	rv := make([]float64, len(t))
	for i, ti := range t {
		_, f := math.Modf((ti - o.Tp) / o.Per)
		E, ok, err := k.Solve(unit.Angle(twoPi*f), o.E)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("t = %g, e = %g: %w", ti, o.E, ErrNoConverge)
		}
		snu, cnu := math.Sincos(kepler.True(E, o.E).Rad())
		// cos(ν+ω) + e cos ω
		rv[i] = o.K * (cnu*cw - snu*sw + ecw)
	}
	return rv, nil
}

// eccentric anomaly at transit, where true anomaly ν = π/2 - ω.
func transitAnomaly(e float64, w unit.Angle) float64 {
	s, c := math.Sincos((math.Pi/2 - w.Rad()) * .5)
	return 2 * math.Atan2(math.Sqrt(1-e)*s, math.Sqrt(1+e)*c)
}

// TimeTransToPeri converts a time of inferior conjunction to a time of
// periastron passage.
func TimeTransToPeri(tc, per, e float64, w unit.Angle) float64 {
	ea := transitAnomaly(e, w)
	return tc - per/twoPi*(ea-e*math.Sin(ea))
}

// TimePeriToTrans converts a time of periastron passage to a time of
// inferior conjunction.  It is the inverse of TimeTransToPeri.
func TimePeriToTrans(tp, per, e float64, w unit.Angle) float64 {
	ea := transitAnomaly(e, w)
	return tp + per/twoPi*(ea-e*math.Sin(ea))
}
