// Public domain.

// Package rvprog implements the rvfit command.
package rvprog

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/soniakeys/exit"

	"github.com/soniakeys/rvfit/internal/rvmcmc"
	"github.com/soniakeys/rvfit/internal/rvopt"
	"github.com/soniakeys/rvfit/internal/rvpar"
)

const versionString = "rvfit version 0.1 Go source."
const copyrightString = "Public domain."

type commandLine struct {
	fnConfig string // -c
	fnChain  string // -o
	seed     uint64 // -seed, 0 for config value
	threads  int    // -threads, 0 for config value
	noMCMC   bool
	fnData   string
}

func Main() {
	defer exit.Handler()
	log.SetFlags(0)
	log.SetPrefix("rvfit: ")

	cl := parseCommandLine()
	cfg := openConfig(cl)
	data := openData(cl)
	post, err := cfg.build(data)
	if err != nil {
		exit.Log(err)
	}
	printSetup(os.Stdout, post, cfg.timeBase(data), data)

	r, err := rvopt.Maximize(post, cfg.settings())
	if r == nil {
		exit.Log(err)
	}
	if err != nil {
		log.Println("fit:", err)
	}
	printFit(os.Stdout, post, r)
	if cl.noMCMC {
		return
	}

	sc := cfg.sampler()
	if cl.seed != 0 {
		sc.Seed = cl.seed
	}
	if cl.threads != 0 {
		sc.Threads = cl.threads
	}
	sc.Logger = log.Default()
	// interrupt stops sampling; the partial chain is still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ch, err := rvmcmc.Run(ctx, post, sc)
	if ch == nil {
		exit.Log(err)
	}
	printChain(os.Stdout, ch)
	if cl.fnChain > "" {
		if err := rvmcmc.WriteFile(cl.fnChain, ch); err != nil {
			exit.Log(err)
		}
	}
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.fnConfig, "c", "rvfit.yaml", "")
	flag.StringVar(&cl.fnChain, "o", "", "")
	flag.Uint64Var(&cl.seed, "seed", 0, "")
	flag.IntVar(&cl.threads, "threads", 0, "")
	flag.BoolVar(&cl.noMCMC, "nomcmc", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
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
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 1:
		flag.Usage()
		os.Exit(1)
	}
	cl.fnData = flag.Arg(0)
	return &cl
}

func openConfig(cl *commandLine) *config {
	f, err := os.Open(cl.fnConfig)
	if err != nil {
		exit.Log(err)
	}
	defer f.Close()
	c, err := readConfig(f)
	if err != nil {
		exit.Log(fmt.Errorf("%s: %w", cl.fnConfig, err))
	}
	return c
}

func openData(cl *commandLine) []*series {
	var r io.Reader
	if cl.fnData == "-" {
		r = os.Stdin
		cl.fnData = "input stream"
	} else {
		f, err := os.Open(cl.fnData)
		if err != nil {
			exit.Log(err)
		}
		defer f.Close()
		r = f
	}
	d, err := readData(r)
	if err != nil {
		exit.Log(fmt.Errorf("%s: %w", cl.fnData, err))
	}
	return d
}

func printHelp() {
	fmt.Println(`
Rvfit fits Keplerian orbits to stellar radial velocities.  It finds the
maximum a posteriori parameters of the configured model, then samples the
posterior with an ensemble MCMC sampler until the chains converge.

Data file lines:
   time velocity error [instrument]

Config file keys:
   nplanets
   basis
   time_base
   instruments   (tel, gamma, jit)
   params        (name, value, vary)
   priors        (type, param, mu, sigma, min, max, knee, upper)
   fit           (max_evals, max_iter, func_tol)
   mcmc          (walkers, max_steps, min_steps, check_interval,
                  min_afactor, max_archange, max_gr, init_scale,
                  threads, seed)

Prior types:
   gaussian
   bounds
   jeffreys
   modjeffreys
   eccentricity
   positivek

Bases:`)
	for _, b := range rvpar.Bases() {
		fmt.Println("  ", b)
	}
	fmt.Println(`
For full documentation:
   go doc rvfit`)
}
