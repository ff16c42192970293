// Public domain.

// Package rvmcmc implements an affine invariant ensemble sampler.
//
// The ensemble is split in two halves.  Walkers of one half propose stretch
// moves toward walkers of the other half, whose positions are frozen while
// the half is evaluated.  Proposal randomness is drawn serially from a
// single seeded generator, so a run is reproducible for a given seed
// regardless of how many goroutines evaluate log probabilities.
package rvmcmc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	xrand "golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by NewSampler.
var (
	ErrWalkers        = errors.New("rvmcmc: walkers must number at least twice the free parameters")
	ErrInitialization = errors.New("rvmcmc: could not place walkers at finite log probability")
	ErrConfig         = errors.New("rvmcmc: invalid configuration")
)

// Target is a log probability over a vector of free parameters.
// *rvsolver.Posterior is a Target.
type Target interface {
	FreeNames() []string
	FreeVector() []float64
	// Evaluator returns a log probability function for use by a single
	// goroutine.  Functions from separate calls must be safe to use
	// concurrently.
	Evaluator() func([]float64) float64
}

// Status is the state of a sampler.
type Status int

// Sampler states.  Converged, StepLimitReached, and Canceled are terminal
// states of Run.
const (
	Initialized Status = iota
	Running
	Converged
	StepLimitReached
	Canceled
)

var statusNames = [...]string{"initialized", "running", "converged",
	"step limit reached", "canceled"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Config holds sampler parameters.
type Config struct {
	Walkers  int
	MaxSteps int
	// MinSteps is a floor below which a run is never declared converged.
	MinSteps      int
	CheckInterval int
	// StretchScale is the a parameter of the stretch move distribution
	// g(z) ∝ 1/√z on [1/a, a].
	StretchScale float64
	// Converged requires steps > MinAfactor·τ for every parameter.
	MinAfactor float64
	// Converged requires τ to change by less than this fraction between
	// successive checks.
	MaxArChange float64
	// If positive, converged also requires the Gelman-Rubin statistic of
	// every parameter to be below MaxGR.
	MaxGR float64
	// Walkers start at x0 + InitScale·|x0|·N(0, 1), per parameter.
	InitScale   float64
	InitRetries int
	Threads     int
	Seed        uint64
	Logger      *log.Logger
}

// DefaultConfig returns default sampler parameters.
func DefaultConfig() Config {
	return Config{
		Walkers:       50,
		MaxSteps:      10000,
		MinSteps:      1000,
		CheckInterval: 100,
		StretchScale:  2,
		MinAfactor:    50,
		MaxArChange:   .01,
		InitScale:     1e-3,
		InitRetries:   100,
		Threads:       1,
		Seed:          1,
	}
}

func (c *Config) validate(ndim int) error {
	switch {
	case ndim < 1:
		return fmt.Errorf("%w: no free parameters", ErrConfig)
	case c.Walkers < 2*ndim:
		return fmt.Errorf("%w: %d walkers, %d parameters",
			ErrWalkers, c.Walkers, ndim)
	case c.MaxSteps < 1, c.CheckInterval < 1, c.Threads < 1,
		c.InitRetries < 1:
		return fmt.Errorf("%w: MaxSteps, CheckInterval, Threads, InitRetries must be positive", ErrConfig)
	case !(c.StretchScale > 1):
		return fmt.Errorf("%w: StretchScale %g", ErrConfig, c.StretchScale)
	case !(c.InitScale > 0):
		return fmt.Errorf("%w: InitScale %g", ErrConfig, c.InitScale)
	}
	return nil
}

// Sampler is an ensemble sampler over a Target.
type Sampler struct {
	cfg    Config
	ndim   int
	rnd    *xrand.Rand
	evals  chan func([]float64) float64
	eval0  func([]float64) float64
	pos    [][]float64
	lp     []float64
	chain  *Chain
	status Status
	tau    []float64 // from the previous check
}

// NewSampler validates cfg and places walkers around the target's current
// free parameter vector.  The sampler is returned in state Initialized.
func NewSampler(target Target, cfg Config) (*Sampler, error) {
	names := target.FreeNames()
	if err := cfg.validate(len(names)); err != nil {
		return nil, err
	}
	s := &Sampler{
		cfg:   cfg,
		ndim:  len(names),
		rnd:   xrand.New(&xrand.PCGSource{}),
		evals: make(chan func([]float64) float64, cfg.Threads),
		pos:   make([][]float64, cfg.Walkers),
		lp:    make([]float64, cfg.Walkers),
		chain: &Chain{Names: names},
	}
	s.rnd.Seed(cfg.Seed)
	for i := 0; i < cfg.Threads; i++ {
		s.evals <- target.Evaluator()
	}
	s.eval0 = <-s.evals
	s.evals <- s.eval0
	if err := s.place(target.FreeVector()); err != nil {
		return nil, err
	}
	return s, nil
}

// place draws walkers around x0.
func (s *Sampler) place(x0 []float64) error {
	scale := make([]float64, len(x0))
	for i, x := range x0 {
		scale[i] = s.cfg.InitScale * math.Abs(x)
		if x == 0 {
			scale[i] = s.cfg.InitScale
		}
	}
	for w := range s.pos {
		for try := 0; ; try++ {
			if try == s.cfg.InitRetries {
				return fmt.Errorf("%w: walker %d after %d tries",
					ErrInitialization, w, try)
			}
			y := make([]float64, len(x0))
			for i, x := range x0 {
				y[i] = x + scale[i]*s.rnd.NormFloat64()
			}
			if lp := s.eval0(y); !math.IsInf(lp, -1) && !math.IsNaN(lp) {
				s.pos[w] = y
				s.lp[w] = lp
				break
			}
		}
	}
	return nil
}

// Status returns the current state.
func (s *Sampler) Status() Status { return s.status }

// Chain returns the chain recorded so far.
func (s *Sampler) Chain() *Chain { return s.chain }

// stretch draws z from g(z) ∝ 1/√z on [1/a, a].
func (s *Sampler) stretch() float64 {
	a := s.cfg.StretchScale
	z := (a-1)*s.rnd.Float64() + 1
	return z * z / a
}

// Step advances every walker once and records the step.
func (s *Sampler) Step() {
	nw := len(s.pos)
	half := nw / 2
	for h := 0; h < 2; h++ {
		lo, hi, olo, on := 0, half, half, nw-half
		if h == 1 {
			lo, hi, olo, on = half, nw, 0, half
		}
		n := hi - lo
		prop := make([][]float64, n)
		z := make([]float64, n)
		u := make([]float64, n)
		for i := range prop {
			k := lo + i
			j := olo + s.rnd.Intn(on)
			z[i] = s.stretch()
			u[i] = s.rnd.Float64()
			y := make([]float64, s.ndim)
			for d := range y {
				y[d] = s.pos[j][d] + z[i]*(s.pos[k][d]-s.pos[j][d])
			}
			prop[i] = y
		}
		lp := s.evaluate(prop)
		for i, y := range prop {
			k := lo + i
			q := float64(s.ndim-1)*math.Log(z[i]) + lp[i] - s.lp[k]
			if math.Log(u[i]) < q {
				s.pos[k] = y
				s.lp[k] = lp[i]
				s.chain.Accepted++
			}
		}
		s.chain.Proposed += n
	}
	// positions are replaced on acceptance, never modified, so rows can
	// be shared with the chain.
	s.chain.Samples = append(s.chain.Samples, append([][]float64{}, s.pos...))
	s.chain.LogProb = append(s.chain.LogProb, append([]float64{}, s.lp...))
}

// evaluate computes log probabilities of proposals, concurrently if more
// than one thread is configured.
func (s *Sampler) evaluate(prop [][]float64) []float64 {
	lp := make([]float64, len(prop))
	if s.cfg.Threads == 1 {
		for i, y := range prop {
			lp[i] = s.eval0(y)
		}
		return lp
	}
	var g errgroup.Group
	g.SetLimit(s.cfg.Threads)
	for i, y := range prop {
		i, y := i, y
		g.Go(func() error {
			f := <-s.evals
			lp[i] = f(y)
			s.evals <- f
			return nil
		})
	}
	g.Wait()
	return lp
}

// Run steps the ensemble until convergence, the step limit, or
// cancellation of ctx.
//
// Cancellation is checked between steps; the chain holds only complete
// steps.  On cancellation the chain is returned with status Canceled along
// with ctx.Err().  Reaching the step limit is not an error.
func (s *Sampler) Run(ctx context.Context) (*Chain, error) {
	s.status = Running
	for s.chain.Steps() < s.cfg.MaxSteps {
		if err := ctx.Err(); err != nil {
			s.finish(Canceled)
			return s.chain, err
		}
		s.Step()
		if s.chain.Steps()%s.cfg.CheckInterval == 0 && s.check() {
			s.finish(Converged)
			return s.chain, nil
		}
	}
	s.finish(StepLimitReached)
	return s.chain, nil
}

func (s *Sampler) finish(st Status) {
	s.status = st
	s.chain.Status = st
	if l := s.cfg.Logger; l != nil {
		l.Printf("%d steps, %s, acceptance %.3f",
			s.chain.Steps(), st, s.chain.AcceptanceFraction())
	}
}

// check computes convergence statistics and reports convergence.
func (s *Sampler) check() bool {
	n := s.chain.Steps()
	c := Check{
		Step: n,
		Tau:  make([]float64, s.ndim),
		GR:   make([]float64, s.ndim),
	}
	conv := n >= s.cfg.MinSteps && s.tau != nil
	for d := range c.Tau {
		t := IntegratedTime(s.chain.Series(d, 0))
		c.Tau[d] = t
		c.GR[d] = GelmanRubin(s.chain.Series(d, n/2))
		if !(float64(n) > s.cfg.MinAfactor*t) {
			conv = false
		}
		if s.tau != nil && !(math.Abs(s.tau[d]-t)/t < s.cfg.MaxArChange) {
			conv = false
		}
		if s.cfg.MaxGR > 0 && !(c.GR[d] < s.cfg.MaxGR) {
			conv = false
		}
	}
	c.MaxTau = floats.Max(c.Tau)
	c.Converged = conv
	s.tau = c.Tau
	s.chain.Checks = append(s.chain.Checks, c)
	if l := s.cfg.Logger; l != nil {
		l.Printf("step %d: max tau %.1f, max GR %.4f, acceptance %.3f",
			n, c.MaxTau, floats.Max(c.GR), s.chain.AcceptanceFraction())
	}
	return conv
}

// Run creates a sampler for target and runs it.
func Run(ctx context.Context, target Target, cfg Config) (*Chain, error) {
	s, err := NewSampler(target, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
