// Public domain.

package rvmcmc

import (
	"encoding/gob"
	"os"
)

// Check records convergence statistics computed during a run.
type Check struct {
	Step      int
	Tau       []float64 // integrated autocorrelation time per parameter
	MaxTau    float64
	GR        []float64 // Gelman-Rubin statistic per parameter
	Converged bool
}

// Chain is the history of an ensemble run.
//
// Only complete steps are recorded.  Samples[s][w] is the free parameter
// vector of walker w after step s, LogProb[s][w] its log probability.
type Chain struct {
	Names    []string
	Samples  [][][]float64
	LogProb  [][]float64
	Accepted int
	Proposed int
	Status   Status
	Checks   []Check
}

// Steps returns the number of recorded steps.
func (c *Chain) Steps() int { return len(c.Samples) }

// Walkers returns the number of walkers, or 0 for an empty chain.
func (c *Chain) Walkers() int {
	if len(c.Samples) == 0 {
		return 0
	}
	return len(c.Samples[0])
}

// AcceptanceFraction returns the fraction of accepted proposals.
func (c *Chain) AcceptanceFraction() float64 {
	if c.Proposed == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Proposed)
}

// Series returns the values of parameter d for steps from through the
// end, one series per walker.
func (c *Chain) Series(d, from int) [][]float64 {
	if from > len(c.Samples) {
		from = len(c.Samples)
	}
	s := make([][]float64, c.Walkers())
	for w := range s {
		x := make([]float64, 0, len(c.Samples)-from)
		for _, step := range c.Samples[from:] {
			x = append(x, step[w][d])
		}
		s[w] = x
	}
	return s
}

// Flat returns samples of all walkers for every thin'th step after
// discarding the first discard steps, with their log probabilities.
func (c *Chain) Flat(discard, thin int) (samples [][]float64, lp []float64) {
	if thin < 1 {
		thin = 1
	}
	for s := discard; s < len(c.Samples); s += thin {
		samples = append(samples, c.Samples[s]...)
		lp = append(lp, c.LogProb[s]...)
	}
	return
}

// WriteFile writes a chain in gob format.
func WriteFile(fn string, c *Chain) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a chain written by WriteFile.
func ReadFile(fn string) (*Chain, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var c Chain
	if err = gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
