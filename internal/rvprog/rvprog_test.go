// Public domain.

package rvprog

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/soniakeys/rvfit/internal/rvmcmc"
	"github.com/soniakeys/rvfit/internal/rvopt"
	"github.com/soniakeys/rvfit/internal/rvpar"
	"github.com/soniakeys/rvfit/internal/rvsolver"
)

const testData = `# time vel err tel
2450001.5   3.1  1.0 hires
2450003.25 -1.2  1.5 hires

2450004.0   0.5  2.0 harps
2450007.5   2.5  1.0 hires
2450008.0  -0.5  2.0 harps
`

const testConfig = `
nplanets: 1
basis: per tc secosw sesinw k
time_base: 2450005
instruments:
  - tel: hires
    gamma: 1
    jit: 2
params:
  - name: per1
    value: 5.5
  - name: tc1
    value: 2450002
  - name: secosw1
    vary: false
  - name: sesinw1
    vary: false
  - name: k1
    value: 2
  - name: jit_harps
    value: 0
    vary: false
priors:
  - type: eccentricity
  - type: positivek
  - type: gaussian
    param: per1
    mu: 5.5
    sigma: .1
  - type: bounds
    param: gamma_harps
    min: -10
    max: 10
mcmc:
  walkers: 20
  seed: 9
`

func TestReadData(t *testing.T) {
	d, err := readData(strings.NewReader(testData))
	if err != nil {
		t.Fatal(err)
	}
	if len(d) != 2 || d[0].tel != "hires" || d[1].tel != "harps" {
		t.Fatal(d)
	}
	if len(d[0].t) != 3 || d[0].v[2] != 2.5 || d[1].verr[0] != 2 {
		t.Fatal(d[0], d[1])
	}
	d, err = readData(strings.NewReader("1 2 3\n4 5 6\n"))
	if err != nil || len(d) != 1 || d[0].tel != "" {
		t.Fatal(d, err)
	}
}

func TestReadDataErrors(t *testing.T) {
	for _, tc := range []struct{ name, in string }{
		{"empty", "# nothing\n\n"},
		{"fields", "1 2\n"},
		{"extra", "1 2 3 a b\n"},
		{"number", "1 x 3\n"},
		{"error", "1 2 0\n"},
	} {
		if _, err := readData(strings.NewReader(tc.in)); err == nil {
			t.Error(tc.name, "accepted")
		}
	}
	if _, err := readData(strings.NewReader("")); !errors.Is(err, errNoData) {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	c, err := readConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.NPlanets != 1 || *c.TimeBase != 2450005 || len(c.Priors) != 4 {
		t.Fatal(c)
	}
	s := c.sampler()
	def := rvmcmc.DefaultConfig()
	if s.Walkers != 20 || s.Seed != 9 || s.MaxSteps != def.MaxSteps {
		t.Fatal(s)
	}
	if c.settings() != (rvopt.Settings{}) {
		t.Fatal(c.settings())
	}
}

func TestReadConfigErrors(t *testing.T) {
	for _, tc := range []struct{ name, in string }{
		{"empty", ""},
		{"no planets", "basis: per tc e w k\n"},
		{"no basis", "nplanets: 1\n"},
		{"unknown key", "nplanets: 1\nbasis: per tc e w k\nplanets: 2\n"},
		{"prior type", "nplanets: 1\nbasis: per tc e w k\npriors:\n  - type: cauchy\n"},
		{"jitter", "nplanets: 1\nbasis: per tc e w k\ninstruments:\n  - jit: -1\n"},
		{"walkers", "nplanets: 1\nbasis: per tc e w k\nmcmc:\n  walkers: -4\n"},
	} {
		if _, err := readConfig(strings.NewReader(tc.in)); err == nil {
			t.Error(tc.name, "accepted")
		}
	}
}

func setup(t *testing.T) (*config, []*series, *rvsolver.Posterior) {
	c, err := readConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	d, err := readData(strings.NewReader(testData))
	if err != nil {
		t.Fatal(err)
	}
	post, err := c.build(d)
	if err != nil {
		t.Fatal(err)
	}
	return c, d, post
}

func TestBuild(t *testing.T) {
	_, _, post := setup(t)
	p := post.Params()
	want := []string{"per1", "tc1", "k1", "gamma_hires", "jit_hires", "gamma_harps"}
	if got := post.FreeNames(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatal(got)
	}
	if p.Value("gamma_hires") != 1 || p.Value("jit_hires") != 2 {
		t.Fatal("configured instrument")
	}
	// unconfigured instrument starts at its mean velocity
	if p.Value("gamma_harps") != 0 {
		t.Fatal(p.Value("gamma_harps"))
	}
	if post.Like.NPoints() != 5 || len(post.Priors) != 4 {
		t.Fatal(post.Like.NPoints(), len(post.Priors))
	}
	if lp := post.Current(); math.IsInf(lp, 0) || math.IsNaN(lp) {
		t.Fatal(lp)
	}
}

func TestBuildErrors(t *testing.T) {
	d, _ := readData(strings.NewReader(testData))
	for _, tc := range []struct {
		name, cfg string
		want      error
	}{
		{"basis", "nplanets: 1\nbasis: per tc\n", rvpar.ErrBasis},
		{"param", "nplanets: 1\nbasis: per tc e w k\nparams:\n  - name: per2\n    value: 3\n", rvpar.ErrUnknown},
		{"prior param", "nplanets: 1\nbasis: per tc e w k\npriors:\n  - type: gaussian\n    param: gamma\n    sigma: 1\n", rvpar.ErrUnknown},
		{"prior no param", "nplanets: 1\nbasis: per tc e w k\npriors:\n  - type: jeffreys\n", rvsolver.ErrPrior},
		{"prior limits", "nplanets: 1\nbasis: per tc e w k\npriors:\n  - type: bounds\n    param: k1\n    min: 2\n    max: 1\n", rvsolver.ErrPrior},
	} {
		c, err := readConfig(strings.NewReader(tc.cfg))
		if err != nil {
			t.Fatal(tc.name, err)
		}
		if _, err := c.build(d); !errors.Is(err, tc.want) {
			t.Error(tc.name, err)
		}
	}
}

func TestTimeBase(t *testing.T) {
	c, d, _ := setup(t)
	c.TimeBase = nil
	if tb := c.timeBase(d); math.Abs(tb-2450004.85) > 1e-9 {
		t.Fatal(tb)
	}
}

func TestReport(t *testing.T) {
	_, d, post := setup(t)
	var b bytes.Buffer
	printSetup(&b, post, 2450005, d)
	for _, want := range []string{"1995", "hires", "harps", "gamma_harps", "Priors"} {
		if !strings.Contains(b.String(), want) {
			t.Fatalf("setup report missing %q:\n%s", want, b.String())
		}
	}
	ch := &rvmcmc.Chain{
		Names: []string{"a", "b"},
		Samples: [][][]float64{
			{{1, 10}, {2, 20}},
			{{1, 10}, {2, 20}},
			{{3, 30}, {2, 20}},
			{{3, 30}, {4, 40}},
		},
		LogProb:  [][]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
		Accepted: 3,
		Proposed: 8,
		Status:   rvmcmc.StepLimitReached,
	}
	b.Reset()
	printChain(&b, ch)
	s := b.String()
	if !strings.Contains(s, "step limit reached") || !strings.Contains(s, "0.375") {
		t.Fatal(s)
	}
	lines := strings.Split(strings.TrimSpace(s), "\n")
	last := strings.Fields(lines[len(lines)-1])
	// second half values of b are 30, 20, 30, 40
	if last[0] != "b" || last[1] != "30" {
		t.Fatal(last)
	}
}
