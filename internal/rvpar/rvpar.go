// Public domain.

// Package rvpar defines the parameter set of a radial velocity model.
//
// A Params holds named scalar parameters in a stable order.  Planet
// parameters are named by the basis with the planet number appended,
// "per1", "k2" for example.  Trend parameters dvdt and curv and instrument
// parameters gamma and jit are not numbered.
package rvpar

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/rvfit/internal/astro"
)

// Errors returned by Params methods.
var (
	ErrDuplicate = errors.New("rvpar: duplicate parameter name")
	ErrUnknown   = errors.New("rvpar: unknown parameter")
	ErrLength    = errors.New("rvpar: vector length does not match free parameters")
	ErrBasis     = errors.New("rvpar: unknown basis")
	ErrPlanets   = errors.New("rvpar: number of planets must be at least 1")
)

// Parameter is a named scalar.  Vary true means the parameter is free to
// be fit, false means it is held fixed.
type Parameter struct {
	Name  string
	Value float64
	Vary  bool
}

// Params is an ordered set of parameters for nPlanets planets in a single
// basis.
type Params struct {
	basis    Basis
	nPlanets int
	list     []Parameter
	index    map[string]int
}

// Name returns the name of a basis parameter for a planet,
// Name("per", 1) = "per1".
func Name(base string, planet int) string {
	return fmt.Sprintf("%s%d", base, planet)
}

// InstrumentName returns the name of an instrument parameter.
// Tel may be empty for single instrument data sets.
func InstrumentName(base, tel string) string {
	if tel == "" {
		return base
	}
	return base + "_" + tel
}

// New creates a parameter set with all basis parameters for planets 1
// through nPlanets, followed by trend parameters dvdt and curv.
//
// Planet parameters are zero valued and free.  Trend parameters are zero
// valued and fixed.
func New(nPlanets int, b Basis) (*Params, error) {
	if nPlanets < 1 {
		return nil, ErrPlanets
	}
	if !b.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBasis, int(b))
	}
	p := &Params{
		basis:    b,
		nPlanets: nPlanets,
		index:    make(map[string]int),
	}
	for n := 1; n <= nPlanets; n++ {
		for _, base := range b.Names() {
			p.add(Name(base, n), 0, true)
		}
	}
	p.add("dvdt", 0, false)
	p.add("curv", 0, false)
	return p, nil
}

func (p *Params) add(name string, v float64, vary bool) {
	p.index[name] = len(p.list)
	p.list = append(p.list, Parameter{name, v, vary})
}

// Add appends a parameter.
func (p *Params) Add(name string, v float64, vary bool) error {
	if _, ok := p.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	p.add(name, v, vary)
	return nil
}

// AddInstrument appends free parameters gamma and jit for instrument tel.
func (p *Params) AddInstrument(tel string, gamma, jit float64) error {
	if err := p.Add(InstrumentName("gamma", tel), gamma, true); err != nil {
		return err
	}
	return p.Add(InstrumentName("jit", tel), jit, true)
}

// Basis returns the basis of planet parameters.
func (p *Params) Basis() Basis { return p.basis }

// NPlanets returns the number of planets.
func (p *Params) NPlanets() int { return p.nPlanets }

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.list) }

// List returns a copy of all parameters in order.
func (p *Params) List() []Parameter { return append([]Parameter{}, p.list...) }

// Get returns the named parameter.
func (p *Params) Get(name string) (Parameter, bool) {
	i, ok := p.index[name]
	if !ok {
		return Parameter{}, false
	}
	return p.list[i], true
}

// Value returns the value of the named parameter, or NaN if there is
// no such parameter.
func (p *Params) Value(name string) float64 {
	if i, ok := p.index[name]; ok {
		return p.list[i].Value
	}
	return math.NaN()
}

// Set sets the value of a parameter.
func (p *Params) Set(name string, v float64) error {
	i, ok := p.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	p.list[i].Value = v
	return nil
}

// SetVary sets whether a parameter is free (true) or fixed (false).
func (p *Params) SetVary(name string, vary bool) error {
	i, ok := p.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	p.list[i].Vary = vary
	return nil
}

// Free returns the names of free parameters in order.
func (p *Params) Free() []string {
	var f []string
	for _, q := range p.list {
		if q.Vary {
			f = append(f, q.Name)
		}
	}
	return f
}

// FreeVector returns the values of free parameters in the order of Free.
func (p *Params) FreeVector() []float64 {
	var v []float64
	for _, q := range p.list {
		if q.Vary {
			v = append(v, q.Value)
		}
	}
	return v
}

// SetFreeVector assigns v to the free parameters in the order of Free.
// On a length mismatch no parameter is changed.
func (p *Params) SetFreeVector(v []float64) error {
	j := 0
	for _, q := range p.list {
		if q.Vary {
			j++
		}
	}
	if j != len(v) {
		return fmt.Errorf("%w: %d values, %d free", ErrLength, len(v), j)
	}
	j = 0
	for i := range p.list {
		if p.list[i].Vary {
			p.list[i].Value = v[j]
			j++
		}
	}
	return nil
}

// Clone returns an independent copy of p.
func (p *Params) Clone() *Params {
	c := &Params{
		basis:    p.basis,
		nPlanets: p.nPlanets,
		list:     append([]Parameter{}, p.list...),
		index:    make(map[string]int, len(p.index)),
	}
	for k, v := range p.index {
		c.index[k] = v
	}
	return c
}

// planet returns the five basis values of planet n.
func (p *Params) planet(n int) (v [5]float64) {
	// planet parameters lead the list in basis order
	for i := range v {
		v[i] = p.list[(n-1)*5+i].Value
	}
	return
}

// Orbit returns the orbit of planet n, 1 based, in the synthesis basis.
func (p *Params) Orbit(n int) astro.Orbit {
	return p.basis.ToSynth(p.planet(n))
}

// Orbits returns the orbits of all planets in the synthesis basis.
func (p *Params) Orbits() []astro.Orbit {
	o := make([]astro.Orbit, p.nPlanets)
	for n := range o {
		o[n] = p.Orbit(n + 1)
	}
	return o
}

// SetOrbit sets the basis parameters of planet n from an orbit in the
// synthesis basis.
func (p *Params) SetOrbit(n int, o astro.Orbit) {
	v := p.basis.FromSynth(o)
	for i := range v {
		p.list[(n-1)*5+i].Value = v[i]
	}
}

// ToBasis returns a copy of p converted to basis b.
//
// Planet parameters are renamed and their values converted.  Vary flags
// are carried by position within each planet.  Other parameters are
// copied unchanged.
func (p *Params) ToBasis(b Basis) (*Params, error) {
	if !b.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBasis, int(b))
	}
	c := &Params{
		basis:    b,
		nPlanets: p.nPlanets,
		list:     make([]Parameter, 0, len(p.list)),
		index:    make(map[string]int, len(p.index)),
	}
	names := b.Names()
	for n := 1; n <= p.nPlanets; n++ {
		v := b.FromSynth(p.Orbit(n))
		for i, base := range names {
			c.add(Name(base, n), v[i], p.list[(n-1)*5+i].Vary)
		}
	}
	for _, q := range p.list[p.nPlanets*5:] {
		if _, ok := c.index[q.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, q.Name)
		}
		c.add(q.Name, q.Value, q.Vary)
	}
	return c, nil
}

// String formats the parameter set as a fixed width table, one row per
// parameter.
func (p *Params) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %20s %6s\n", "parameter", "value", "vary")
	for _, q := range p.list {
		vary := "False"
		if q.Vary {
			vary = "True"
		}
		fmt.Fprintf(&b, "%-12s %20.10g %6s\n", q.Name, q.Value, vary)
	}
	return b.String()
}
