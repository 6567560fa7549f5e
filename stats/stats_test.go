package stats

import (
	"testing"

	"github.com/matryer/is"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"
)

func TestRunning(t *testing.T) {
	is := is.New(t)
	type tc struct {
		sizes    []int
		mean     float64
		stdev    float64
		min, max float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638, 10, 23},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891, 10, 124},
		{[]int{1}, 1, 0, 1, 1},
		{[]int{}, 0, 0, 0, 0},
		{[]int{1, 1}, 1, 0, 1, 1},
	}
	for _, c := range cases {
		r := &Running{}
		for _, s := range c.sizes {
			r.Push(float64(s))
		}
		is.Equal(r.Count(), len(c.sizes))
		is.True(FuzzyEqual(r.Mean(), c.mean))
		is.True(FuzzyEqual(r.Stdev(), c.stdev))
		is.Equal(r.Min(), c.min)
		is.Equal(r.Max(), c.max)
	}
}

func TestRunningMatchesBatch(t *testing.T) {
	is := is.New(t)
	vals := make([]float64, 5000)
	r := &Running{}
	for i := range vals {
		vals[i] = float64(frand.Intn(1_000_000))
		r.Push(vals[i])
	}
	mean, std := stat.MeanStdDev(vals, nil)
	is.True(FuzzyEqual(r.Mean()/mean, 1))
	is.True(FuzzyEqual(r.Stdev()/std, 1))
}
