// Public domain.

// Package rvmodel computes radial velocities from a parameter set.
package rvmodel

import (
	"fmt"

	"github.com/soniakeys/rvfit/internal/astro"
	"github.com/soniakeys/rvfit/internal/rvpar"
)

// Model sums Keplerian signals of all planets plus a polynomial trend.
//
// Params is shared, not copied.  The model otherwise holds no state that
// changes; RV is a function of the times and the current parameter values.
type Model struct {
	Params *rvpar.Params

	// TimeBase is the epoch of the trend polynomial, usually a time near
	// the middle of the data.
	TimeBase float64

	Kepler astro.Kepler
}

// New creates a model over p with trend epoch timeBase.
func New(p *rvpar.Params, timeBase float64) *Model {
	return &Model{Params: p, TimeBase: timeBase, Kepler: astro.DefaultKepler}
}

// RV computes the model velocity at times t using m.Params.
func (m *Model) RV(t []float64) ([]float64, error) {
	return m.RVAt(m.Params, t)
}

// RVAt computes the model velocity at times t using parameter values from
// p rather than m.Params.  p must have the layout of m.Params; a snapshot
// from Params.Clone for example.
func (m *Model) RVAt(p *rvpar.Params, t []float64) ([]float64, error) {
	rv := m.Trend(p, t)
	for n := 1; n <= p.NPlanets(); n++ {
		o := p.Orbit(n)
		pr, err := o.RV(t, m.Kepler)
		if err != nil {
			return nil, fmt.Errorf("planet %d: %w", n, err)
		}
		for i, v := range pr {
			rv[i] += v
		}
	}
	return rv, nil
}

// PlanetRV computes the velocity contribution of planet n alone.
func (m *Model) PlanetRV(p *rvpar.Params, n int, t []float64) ([]float64, error) {
	if n < 1 || n > p.NPlanets() {
		return nil, fmt.Errorf("planet %d: %w", n, rvpar.ErrUnknown)
	}
	o := p.Orbit(n)
	return o.RV(t, m.Kepler)
}

// Trend computes dvdt·(t - TimeBase) + curv·(t - TimeBase)².
func (m *Model) Trend(p *rvpar.Params, t []float64) []float64 {
	dvdt := p.Value("dvdt")
	curv := p.Value("curv")
	rv := make([]float64, len(t))
	for i, ti := range t {
		dt := ti - m.TimeBase
		rv[i] = dvdt*dt + curv*dt*dt
	}
	return rv
}
