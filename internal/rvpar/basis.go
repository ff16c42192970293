// Public domain.

package rvpar

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/rvfit/internal/astro"
	"github.com/soniakeys/unit"
)

// Basis identifies a parameterization of a single planet's orbit.
// Every basis has five parameters per planet.
type Basis int

// Supported bases.  Synth is the basis used for model evaluation.
const (
	Synth              Basis = iota // per tp e w k
	PerTcEW                         // per tc e w k
	PerTcSecoswSesinw               // per tc secosw sesinw k
	PerTcSecoswSesinwLogK           // per tc secosw sesinw logk
	PerTcEcoswEsinw                 // per tc ecosw esinw k
)

var basisNames = [][5]string{
	Synth:                 {"per", "tp", "e", "w", "k"},
	PerTcEW:               {"per", "tc", "e", "w", "k"},
	PerTcSecoswSesinw:     {"per", "tc", "secosw", "sesinw", "k"},
	PerTcSecoswSesinwLogK: {"per", "tc", "secosw", "sesinw", "logk"},
	PerTcEcoswEsinw:       {"per", "tc", "ecosw", "esinw", "k"},
}

// Bases lists all supported bases.
func Bases() []Basis {
	b := make([]Basis, len(basisNames))
	for i := range b {
		b[i] = Basis(i)
	}
	return b
}

func (b Basis) valid() bool { return b >= 0 && int(b) < len(basisNames) }

// Names returns the planet parameter names of the basis, without planet
// numbers.
func (b Basis) Names() [5]string { return basisNames[b] }

// String returns the basis as its space separated parameter names,
// "per tc secosw sesinw k" for example.
func (b Basis) String() string {
	if !b.valid() {
		return fmt.Sprintf("Basis(%d)", int(b))
	}
	n := basisNames[b]
	return strings.Join(n[:], " ")
}

// ParseBasis parses the String form of a basis.
// Any white space may separate the names.
func ParseBasis(s string) (Basis, error) {
	f := strings.Join(strings.Fields(s), " ")
	for _, b := range Bases() {
		if b.String() == f {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBasis, s)
}

// ToSynth converts five planet parameters in basis b to an orbit in the
// synthesis basis.
//
// At zero eccentricity the argument of periastron is undefined for the
// bases that encode it with e, and 0 is returned.
func (b Basis) ToSynth(v [5]float64) (o astro.Orbit) {
	o.Per = v[0]
	switch b {
	case Synth, PerTcEW:
		o.E = v[2]
		o.W = unit.Angle(v[3])
	case PerTcSecoswSesinw, PerTcSecoswSesinwLogK:
		o.E = v[2]*v[2] + v[3]*v[3]
		o.W = unit.Angle(math.Atan2(v[3], v[2]))
	case PerTcEcoswEsinw:
		o.E = math.Hypot(v[2], v[3])
		o.W = unit.Angle(math.Atan2(v[3], v[2]))
	}
	o.K = v[4]
	if b == PerTcSecoswSesinwLogK {
		o.K = math.Exp(v[4])
	}
	o.Tp = v[1]
	if b != Synth {
		o.Tp = astro.TimeTransToPeri(v[1], o.Per, o.E, o.W)
	}
	return
}

// FromSynth converts an orbit in the synthesis basis to the five planet
// parameters of basis b.  It is the inverse of ToSynth.
func (b Basis) FromSynth(o astro.Orbit) (v [5]float64) {
	v[0] = o.Per
	v[1] = o.Tp
	if b != Synth {
		v[1] = astro.TimePeriToTrans(o.Tp, o.Per, o.E, o.W)
	}
	sw, cw := math.Sincos(o.W.Rad())
	switch b {
	case Synth, PerTcEW:
		v[2] = o.E
		v[3] = o.W.Rad()
	case PerTcSecoswSesinw, PerTcSecoswSesinwLogK:
		se := math.Sqrt(o.E)
		v[2] = se * cw
		v[3] = se * sw
	case PerTcEcoswEsinw:
		v[2] = o.E * cw
		v[3] = o.E * sw
	}
	v[4] = o.K
	if b == PerTcSecoswSesinwLogK {
		v[4] = math.Log(o.K)
	}
	return
}
