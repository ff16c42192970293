// Public domain.

package rvprog

import (
	"fmt"
	"io"
	"sort"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/rvfit/internal/rvmcmc"
	"github.com/soniakeys/rvfit/internal/rvopt"
	"github.com/soniakeys/rvfit/internal/rvsolver"
)

// one sigma quantiles of a normal distribution
const (
	qLow  = .158655
	qHigh = .841345
)

// times at or after this are taken as full Julian dates
const jdFull = 2e6

func printSetup(w io.Writer, post *rvsolver.Posterior, timeBase float64, data []*series) {
	fmt.Fprintf(w, "Time base:  %.5f", timeBase)
	if timeBase >= jdFull {
		fmt.Fprintf(w, " (%s)", julian.JDToTime(timeBase).Format("2 Jan 2006 15:04 UTC"))
	}
	fmt.Fprintln(w)
	for _, s := range data {
		tel := s.tel
		if tel == "" {
			tel = "(none)"
		}
		fmt.Fprintf(w, "Instrument: %-12s %5d observations\n", tel, len(s.t))
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, post)
	fmt.Fprintln(w)
}

func printFit(w io.Writer, post *rvsolver.Posterior, r *rvopt.Result) {
	fmt.Fprintln(w, "Maximum a posteriori fit")
	fmt.Fprintf(w, "   status      %s, %d evaluations\n", r.Status, r.Evals)
	fmt.Fprintf(w, "   ln prob     %.4f\n", r.LogProb)
	fmt.Fprintf(w, "   BIC         %.4f\n", post.BIC())
	fmt.Fprintf(w, "   AICc        %.4f\n", post.AIC())
	fmt.Fprintln(w)
	fmt.Fprint(w, post.Params())
	fmt.Fprintln(w)
}

// printChain summarizes the second half of the chain with medians and
// one sigma intervals.
func printChain(w io.Writer, ch *rvmcmc.Chain) {
	fmt.Fprintln(w, "MCMC")
	fmt.Fprintf(w, "   status      %s\n", ch.Status)
	fmt.Fprintf(w, "   steps       %d x %d walkers\n", ch.Steps(), ch.Walkers())
	fmt.Fprintf(w, "   acceptance  %.3f\n", ch.AcceptanceFraction())
	if n := len(ch.Checks); n > 0 {
		fmt.Fprintf(w, "   max tau     %.1f\n", ch.Checks[n-1].MaxTau)
	}
	fmt.Fprintln(w)
	flat, _ := ch.Flat(ch.Steps()/2, 1)
	if len(flat) == 0 {
		return
	}
	fmt.Fprintf(w, "%-12s %20s %14s %14s\n", "parameter", "median", "-1 sigma", "+1 sigma")
	x := make([]float64, len(flat))
	for d, name := range ch.Names {
		for i, v := range flat {
			x[i] = v[d]
		}
		sort.Float64s(x)
		lo := stat.Quantile(qLow, stat.Empirical, x, nil)
		med := stat.Quantile(.5, stat.Empirical, x, nil)
		hi := stat.Quantile(qHigh, stat.Empirical, x, nil)
		fmt.Fprintf(w, "%-12s %20.10g %14.6g %14.6g\n", name, med, lo-med, hi-med)
	}
}
