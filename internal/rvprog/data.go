// Public domain.

package rvprog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errNoData = errors.New("no observations")

// series holds the observations of one instrument.
type series struct {
	tel        string
	t, v, verr []float64
}

// readData reads whitespace separated lines of time, velocity, velocity
// error, and an optional instrument name.  Blank lines and lines starting
// with # are ignored.  Series are returned in order of first appearance
// of the instrument.
func readData(r io.Reader) ([]*series, error) {
	var all []*series
	index := map[string]*series{}
	sc := bufio.NewScanner(r)
	for ln := 1; sc.Scan(); ln++ {
		f := strings.Fields(sc.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if len(f) < 3 || len(f) > 4 {
			return nil, fmt.Errorf("data line %d: want 3 or 4 fields, found %d",
				ln, len(f))
		}
		var x [3]float64
		for i := range x {
			var err error
			if x[i], err = strconv.ParseFloat(f[i], 64); err != nil {
				return nil, fmt.Errorf("data line %d: %w", ln, err)
			}
		}
		if !(x[2] > 0) {
			return nil, fmt.Errorf("data line %d: velocity error must be positive", ln)
		}
		var tel string
		if len(f) == 4 {
			tel = f[3]
		}
		s, ok := index[tel]
		if !ok {
			s = &series{tel: tel}
			index[tel] = s
			all = append(all, s)
		}
		s.t = append(s.t, x[0])
		s.v = append(s.v, x[1])
		s.verr = append(s.verr, x[2])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errNoData
	}
	return all, nil
}
