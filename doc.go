/*
Command rvfit fits Keplerian orbits to stellar radial velocity measurements.

Contents

  Program overview
  Command line usage
  File formats
  Parameterization
  Priors
  Algorithm outline


Program overview

Input is a file of radial velocity measurements of a star, possibly from
several instruments.  The model is a sum of Keplerian orbits, one per
planet, plus a linear and quadratic trend and a velocity offset and jitter
term per instrument.  Rvfit first finds the maximum a posteriori parameter
values, then samples the posterior with an affine invariant ensemble MCMC
sampler until the chains are judged converged or a step limit is reached.

Output is the parameter table and priors, the fit with its BIC and AICc,
and for each free parameter the median and one sigma interval of the
second half of the chain.


Command line usage

  Usage: rvfit [options] <datafile>    fit radial velocities in file
         rvfit [options] -             fit radial velocities from stdin
         rvfit -h                      display help
         rvfit -v                      display version and copyright

  Options:
       -c <config-file>     default rvfit.yaml
       -o <chain-file>      save the MCMC chain
       -seed <n>            sampler seed, overrides config
       -threads <n>         evaluation goroutines, overrides config
       -nomcmc              fit only

An interrupt stops sampling at the end of the current step.  The partial
chain is still summarized and saved.

Sampling is repeatable.  For a given seed the chain is the same regardless
of the number of threads.


File formats

Data file.  One measurement per line, whitespace separated:

  time velocity error [instrument]

Times are days, Julian dates for example.  Errors must be positive.  Lines
without an instrument name belong to an unnamed instrument.  Blank lines and
lines starting with # are ignored.

Config file.  YAML, for example

  nplanets: 1
  basis: per tc secosw sesinw k
  time_base: 2450005
  instruments:
    - tel: hires
      gamma: 0
      jit: 2
  params:
    - name: per1
      value: 20.885
    - name: tc1
      value: 2450002.3
    - name: k1
      value: 10
    - name: dvdt
      vary: true
  priors:
    - type: eccentricity
      upper: [.95]
    - type: positivek
    - type: gaussian
      param: per1
      mu: 20.885
      sigma: .01
  mcmc:
    walkers: 50
    max_steps: 20000
    seed: 1

Instruments not listed start with gamma at their mean velocity and a jitter
of 1.  Unknown keys are errors.  A zero or omitted mcmc value selects the
default.  The chain file is a Go gob encoding of the sampler chain.


Parameterization

Each planet n has five parameters named by the basis with the planet number
appended:

  per tp e w k
  per tc e w k
  per tc secosw sesinw k
  per tc secosw sesinw logk
  per tc ecosw esinw k

per is the period, tp the time of periastron, tc the time of conjunction,
e the eccentricity, w the argument of periastron of the star in radians and
k the velocity semi-amplitude.  Trend parameters dvdt and curv are
evaluated relative to time_base and are fixed unless configured otherwise.
Instrument parameters are gamma and jit, or gamma_<tel> and jit_<tel> for
named instruments.


Priors

  gaussian       param, mu, sigma
  bounds         param, min, max
  jeffreys       param, min, max; density 1/x
  modjeffreys    param, min, max, knee; density 1/(x-knee)
  eccentricity   upper, one limit or one per planet, default .99
  positivek      rejects k <= 0 for every planet


Algorithm outline

1.  Kepler's equation is solved by Newton iteration, falling back to
bisection for the rare cases that do not converge.

2.  The log likelihood is Gaussian with variance error² + jit² per point,
summed over instruments.  Invalid parameters such as e >= 1 give a log
probability of -Inf, as do priors rejecting a point.

3.  The fit maximizes the log posterior with the Nelder-Mead simplex
method.

4.  Walkers start in a small ball around the fit.  Each step moves the two
halves of the ensemble in turn with stretch moves toward the other half.
Every check_interval steps the integrated autocorrelation time τ of each
parameter is estimated.  The chain is converged when it is longer than
min_afactor·τ, τ changed by less than max_archange since the previous
check, it is at least min_steps long and, if max_gr is set, the
Gelman-Rubin statistic of every parameter is below max_gr.

-------------
Public domain.
*/
package main
