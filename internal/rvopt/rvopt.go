// Public domain.

// Package rvopt finds the maximum a posteriori parameters of a posterior.
package rvopt

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/soniakeys/rvfit/internal/rvsolver"
)

// ErrNoFree is returned when a posterior has no free parameters.
var ErrNoFree = errors.New("rvopt: no free parameters")

// Penalty replaces non-finite objective values.  The simplex method
// cannot order infinite vertices.
const Penalty = 1e25

// Settings limits a maximization.  Zero values select gonum defaults.
type Settings struct {
	MaxEvals int
	MaxIter  int
	// Absolute tolerance on the objective between iterations.
	FuncTol float64
}

// Result of a maximization.
type Result struct {
	X         []float64 // best free parameter vector found
	LogProb   float64   // log probability at X
	Status    optimize.Status
	Evals     int
	Converged bool
}

// Maximize maximizes the log probability of post by the Nelder-Mead
// simplex method, starting from the current free parameter values.
//
// The simplex is evaluated against a snapshot of the parameter set.  The
// posterior's own parameters change only when the method returns a
// result; the best vector found is then left in them, and a Result is
// returned even when the method fails to converge.
func Maximize(post *rvsolver.Posterior, s Settings) (*Result, error) {
	x0 := post.FreeVector()
	if len(x0) == 0 {
		return nil, ErrNoFree
	}
	lp := post.Evaluator()
	prob := optimize.Problem{
		Func: func(x []float64) float64 {
			f := -lp(x)
			if math.IsInf(f, 0) || math.IsNaN(f) {
				return Penalty
			}
			return f
		},
	}
	set := &optimize.Settings{
		FuncEvaluations: s.MaxEvals,
		MajorIterations: s.MaxIter,
	}
	if s.FuncTol > 0 {
		set.Converger = &optimize.FunctionConverge{
			Absolute:   s.FuncTol,
			Iterations: 100,
		}
	}
	res, err := optimize.Minimize(prob, x0, set, &optimize.NelderMead{})
	if res == nil {
		return nil, err
	}
	r := &Result{
		X:      append([]float64{}, res.X...),
		Status: res.Status,
		Evals:  res.FuncEvaluations,
	}
	if err := post.SetFreeVector(r.X); err != nil {
		return r, err
	}
	r.LogProb = post.Current()
	r.Converged = err == nil && !res.Status.Early() &&
		!math.IsInf(r.LogProb, -1)
	return r, err
}
