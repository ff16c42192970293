// Public domain.

package rvsolver_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/soniakeys/rvfit/internal/rvmodel"
	"github.com/soniakeys/rvfit/internal/rvpar"
	"github.com/soniakeys/rvfit/internal/rvsolver"
)

// setup returns a one planet likelihood over noiseless data generated from
// the initial parameter values.
func setup(t *testing.T) *rvsolver.Likelihood {
	p, err := rvpar.New(1, rvpar.PerTcSecoswSesinw)
	if err != nil {
		t.Fatal(err)
	}
	p.Set("per1", 20.885258)
	p.Set("tc1", 2072.79438)
	p.Set("secosw1", .2)
	p.Set("sesinw1", -.3)
	p.Set("k1", 3)
	p.AddInstrument("", 1.5, 1)
	p.SetVary("jit", false)
	m := rvmodel.New(p, 2100)
	ts := make([]float64, 50)
	for i := range ts {
		ts[i] = 2050 + 2*float64(i) + .3*math.Sin(float64(i))
	}
	rv, err := m.RV(ts)
	if err != nil {
		t.Fatal(err)
	}
	e := make([]float64, len(ts))
	for i := range rv {
		rv[i] += 1.5
		e[i] = 1 + .1*float64(i%3)
	}
	l, err := rvsolver.NewLikelihood(m, ts, rv, e, "")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLikelihoodFormula(t *testing.T) {
	l := setup(t)
	p := l.Params()
	p.Set("gamma", 2) // every residual is -.5
	p.Set("jit", 2)
	var want float64
	for i := 0; i < 50; i++ {
		s := 1 + .1*float64(i%3)
		s2 := s*s + 4
		want += .25/s2 + math.Log(2*math.Pi*s2)
	}
	want *= -.5
	if got := l.LogProb(); math.Abs(got-want) > 1e-9 {
		t.Fatal(got, want)
	}
	r, err := l.Residuals()
	if err != nil {
		t.Fatal(err)
	}
	for _, ri := range r {
		if math.Abs(ri+.5) > 1e-12 {
			t.Fatal(ri)
		}
	}
	// negative jitter is the same variance
	p.Set("jit", -2)
	if got := l.LogProb(); math.Abs(got-want) > 1e-9 {
		t.Fatal(got, want)
	}
}

func TestLikelihoodInvalid(t *testing.T) {
	l := setup(t)
	p := l.Params()
	m := l.Model
	if _, err := rvsolver.NewLikelihood(m, []float64{1}, []float64{1, 2}, []float64{1}, ""); !errors.Is(err, rvsolver.ErrData) {
		t.Fatal(err)
	}
	if _, err := rvsolver.NewLikelihood(m, nil, nil, nil, ""); !errors.Is(err, rvsolver.ErrData) {
		t.Fatal(err)
	}
	if _, err := rvsolver.NewLikelihood(m, []float64{1}, []float64{1}, []float64{1}, "hires"); !errors.Is(err, rvpar.ErrUnknown) {
		t.Fatal(err)
	}

	// zero variance
	z, err := rvsolver.NewLikelihood(m, []float64{2060}, []float64{0}, []float64{0}, "")
	if err != nil {
		t.Fatal(err)
	}
	p.Set("jit", 0)
	if lp := z.LogProb(); !math.IsInf(lp, -1) {
		t.Fatal(lp)
	}

	// eccentricity out of range
	p.Set("jit", 1)
	p.Set("secosw1", .9)
	p.Set("sesinw1", .9)
	if lp := l.LogProb(); !math.IsInf(lp, -1) {
		t.Fatal(lp)
	}
	if _, err := l.Residuals(); err == nil {
		t.Fatal("expected model error")
	}
}

func TestMaximumAtTruth(t *testing.T) {
	l := setup(t)
	p := l.Params()
	post, err := rvsolver.NewPosterior(l)
	if err != nil {
		t.Fatal(err)
	}
	truth := post.FreeVector()
	best := post.LogProb(truth)
	for i := range truth {
		for _, d := range []float64{-1e-3, 1e-3} {
			v := append([]float64{}, truth...)
			v[i] += d
			if lp := post.LogProb(v); !(lp < best) {
				t.Fatalf("%s %+g: %g >= %g", p.Free()[i], d, lp, best)
			}
		}
	}
}

func TestPriorOrder(t *testing.T) {
	l := setup(t)
	g1, _ := rvsolver.NewGaussian("per1", 20.9, .1)
	g2, _ := rvsolver.NewGaussian("k1", 2.5, .37)
	g3, _ := rvsolver.NewGaussian("gamma", 1.4, .013)
	hb, _ := rvsolver.NewHardBounds("k1", 0, 50)
	ec, _ := rvsolver.NewEccentricity(1, .99)
	jf, _ := rvsolver.NewJeffreys("k1", .1, 100)
	mj, _ := rvsolver.NewModifiedJeffreys("k1", 0, 100, -.5)
	ud, _ := rvsolver.NewUserDefined([]string{"tc1", "per1"},
		func(v []float64) float64 { return -math.Abs(v[0]-2072.8) / v[1] },
		"user prior on tc1")
	priors := []rvsolver.Prior{g1, g2, g3, hb, ec, rvsolver.PositiveK{NPlanets: 1}, jf, mj, ud}
	post, err := rvsolver.NewPosterior(l, priors...)
	if err != nil {
		t.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(7))
	x0 := post.FreeVector()
	for trial := 0; trial < 200; trial++ {
		v := append([]float64{}, x0...)
		for i := range v {
			v[i] += .05 * rnd.NormFloat64() * (1 + math.Abs(v[i])*1e-3)
		}
		want := post.LogProb(v)
		perm := rnd.Perm(len(priors))
		shuffled := make([]rvsolver.Prior, len(priors))
		for i, j := range perm {
			shuffled[i] = priors[j]
		}
		other, _ := rvsolver.NewPosterior(l, shuffled...)
		if got := other.LogProb(v); got != want && !(math.IsInf(got, -1) && math.IsInf(want, -1)) {
			t.Fatalf("trial %d: %v != %v", trial, got, want)
		}
	}
}

func TestEccentricityPrior(t *testing.T) {
	l := setup(t)
	ec, err := rvsolver.NewEccentricity(1, .99)
	if err != nil {
		t.Fatal(err)
	}
	post, _ := rvsolver.NewPosterior(l, ec)
	p := l.Params()
	for _, e := range []float64{.9901, .995, 1, 1.7} {
		p.Set("secosw1", math.Sqrt(e/2))
		p.Set("sesinw1", math.Sqrt(e/2))
		if lp := post.Current(); !math.IsInf(lp, -1) {
			t.Fatal(e, lp)
		}
	}
	for _, e := range []float64{0, .3, .98} {
		p.Set("secosw1", math.Sqrt(e/2))
		p.Set("sesinw1", -math.Sqrt(e/2))
		if lp := ec.LogProb(p); lp != 0 {
			t.Fatal(e, lp)
		}
		if lp := post.Current(); lp != l.LogProb() {
			t.Fatal(e, lp, l.LogProb())
		}
	}
	for _, c := range []struct {
		n int
		u []float64
	}{{1, []float64{0}}, {1, []float64{1.1}}, {2, []float64{.5, .5, .5}}, {0, []float64{.5}}} {
		if _, err := rvsolver.NewEccentricity(c.n, c.u...); !errors.Is(err, rvsolver.ErrPrior) {
			t.Fatal(c, err)
		}
	}
}

func TestPriorConfig(t *testing.T) {
	for _, s := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := rvsolver.NewGaussian("k1", 0, s); !errors.Is(err, rvsolver.ErrPrior) {
			t.Fatal(s, err)
		}
	}
	if _, err := rvsolver.NewHardBounds("k1", 1, 1); !errors.Is(err, rvsolver.ErrPrior) {
		t.Fatal(err)
	}
	if _, err := rvsolver.NewJeffreys("k1", 0, 1); !errors.Is(err, rvsolver.ErrPrior) {
		t.Fatal(err)
	}
	if _, err := rvsolver.NewModifiedJeffreys("k1", 1, 2, 1); !errors.Is(err, rvsolver.ErrPrior) {
		t.Fatal(err)
	}
	if _, err := rvsolver.NewUserDefined(nil, nil, "x"); !errors.Is(err, rvsolver.ErrPrior) {
		t.Fatal(err)
	}
	l := setup(t)
	g, _ := rvsolver.NewGaussian("k2", 0, 1)
	if _, err := rvsolver.NewPosterior(l, g); !errors.Is(err, rvpar.ErrUnknown) {
		t.Fatal(err)
	}
}

func TestPriorValues(t *testing.T) {
	p, _ := rvpar.New(1, rvpar.Synth)
	p.Set("k1", 3)
	g, _ := rvsolver.NewGaussian("k1", 2, .5)
	want := -.5*4 - math.Log(.5*math.Sqrt(2*math.Pi))
	if got := g.LogProb(p); math.Abs(got-want) > 1e-12 {
		t.Fatal(got, want)
	}
	j, _ := rvsolver.NewJeffreys("k1", 1, math.E)
	if got := j.LogProb(p); !math.IsInf(got, -1) {
		t.Fatal(got)
	}
	p.Set("k1", 2)
	if got := j.LogProb(p); math.Abs(got+math.Log(2)) > 1e-12 {
		t.Fatal(got)
	}
	p.Set("k1", -1)
	if got := (rvsolver.PositiveK{NPlanets: 1}).LogProb(p); !math.IsInf(got, -1) {
		t.Fatal(got)
	}
	ec, _ := rvsolver.NewEccentricity(1, .99)
	p.Set("e1", .99)
	if got := ec.LogProb(p); !math.IsInf(got, -1) {
		t.Fatal(got)
	}
	p.Set("e1", .9899)
	if got := ec.LogProb(p); got != 0 {
		t.Fatal(got)
	}
}

func TestEvaluator(t *testing.T) {
	l := setup(t)
	ec, _ := rvsolver.NewEccentricity(1, .99)
	post, _ := rvsolver.NewPosterior(l, ec)
	x0 := post.FreeVector()
	f := post.Evaluator()
	v := append([]float64{}, x0...)
	v[2] += .1
	got := f(v)
	if cur := post.FreeVector(); fmt.Sprint(cur) != fmt.Sprint(x0) {
		t.Fatal("evaluator changed shared parameters")
	}
	if want := post.LogProb(v); got != want {
		t.Fatal(got, want)
	}
	if lp := f(v[:2]); !math.IsInf(lp, -1) {
		t.Fatal(lp)
	}
	if lp := post.NegLogProb(v); lp != -got {
		t.Fatal(lp)
	}
}

func TestComposite(t *testing.T) {
	l := setup(t)
	p := l.Params()
	p.AddInstrument("apf", -3, 2)
	a, err := rvsolver.NewLikelihood(l.Model, []float64{2060, 2070}, []float64{1, 2}, []float64{1, 1}, "apf")
	if err != nil {
		t.Fatal(err)
	}
	c, err := rvsolver.NewComposite(l, a)
	if err != nil {
		t.Fatal(err)
	}
	if c.NPoints() != 52 {
		t.Fatal(c.NPoints())
	}
	if got, want := c.LogProb(), l.LogProb()+a.LogProb(); math.Abs(got-want) > 1e-12 {
		t.Fatal(got, want)
	}
	other := setup(t)
	if _, err := rvsolver.NewComposite(l, other); err != rvsolver.ErrShared {
		t.Fatal(err)
	}
	post, _ := rvsolver.NewPosterior(c)
	if len(post.FreeNames()) != 8 {
		t.Fatal(post.FreeNames())
	}
}

func TestInformationCriteria(t *testing.T) {
	l := setup(t)
	post, _ := rvsolver.NewPosterior(l)
	ll := l.LogProb()
	k := 6.
	if got, want := post.BIC(), -2*ll+k*math.Log(50); math.Abs(got-want) > 1e-9 {
		t.Fatal(got, want)
	}
	if got, want := post.AIC(), -2*ll+2*k+2*k*(k+1)/(50-k-1); math.Abs(got-want) > 1e-9 {
		t.Fatal(got, want)
	}
}

func ExamplePriors_String() {
	g, _ := rvsolver.NewGaussian("per1", 20.9, .001)
	h, _ := rvsolver.NewHardBounds("k1", 0, 20)
	e, _ := rvsolver.NewEccentricity(2, .99, .8)
	fmt.Print(rvsolver.Priors{g, h, e})
	// Output:
	// Gaussian prior on per1, mu=20.9, sigma=0.001
	// Bounded prior: 0 < k1 < 20
	// e1 constrained to be < 0.99; e2 constrained to be < 0.8
}
