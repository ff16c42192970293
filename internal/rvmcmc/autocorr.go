// Public domain.

package rvmcmc

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// window constant of the automatic windowing procedure of Sokal.
const autoWindowC = 5

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// acf computes the normalized autocorrelation function of x into dst,
// using fft which must have length at least 2·len(x).
// It returns false if x has zero variance.
func acf(dst, x []float64, fft *fourier.FFT, buf []float64) bool {
	mean := stat.Mean(x, nil)
	for i := range buf {
		buf[i] = 0
	}
	for i, v := range x {
		buf[i] = v - mean
	}
	c := fft.Coefficients(nil, buf)
	for i, v := range c {
		re, im := real(v), imag(v)
		c[i] = complex(re*re+im*im, 0)
	}
	s := fft.Sequence(buf, c)
	if !(s[0] > 0) {
		return false
	}
	for i := range dst {
		dst[i] = s[i] / s[0]
	}
	return true
}

// IntegratedTime estimates the integrated autocorrelation time of a
// quantity sampled by an ensemble.  Series holds one time series per
// walker, all of the same length.
//
// The autocorrelation function is averaged over walkers and summed up to
// the first lag M with M >= 5·τ(M).  Walkers whose series is constant
// carry no autocorrelation information and are left out of the average.
// NaN is returned if series are too short or every one is constant.
func IntegratedTime(series [][]float64) float64 {
	if len(series) == 0 || len(series[0]) < 2 {
		return math.NaN()
	}
	n := len(series[0])
	fft := fourier.NewFFT(nextPow2(2 * n))
	buf := make([]float64, fft.Len())
	f := make([]float64, n)
	a := make([]float64, n)
	used := 0
	for _, x := range series {
		if acf(a, x, fft, buf) {
			floats.Add(f, a)
			used++
		}
	}
	if used == 0 {
		return math.NaN()
	}
	floats.Scale(1/float64(used), f)

	// τ(M) = 2 Σ_{0..M} f - 1
	tau := 2*f[0] - 1
	for m := 1; m < n; m++ {
		tau += 2 * f[m]
		if float64(m) >= autoWindowC*tau {
			break
		}
	}
	return tau
}

// GelmanRubin computes the potential scale reduction factor treating each
// walker's series as a separate chain.
func GelmanRubin(series [][]float64) float64 {
	m := float64(len(series))
	if m < 2 || len(series[0]) < 2 {
		return math.NaN()
	}
	n := float64(len(series[0]))
	means := make([]float64, len(series))
	var w float64
	for j, x := range series {
		mu, v := stat.MeanVariance(x, nil)
		means[j] = mu
		w += v
	}
	w /= m
	b := n * stat.Variance(means, nil)
	vhat := (n-1)/n*w + b/n
	return math.Sqrt(vhat / w)
}
