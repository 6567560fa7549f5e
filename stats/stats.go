// Package stats summarises streams of numbers, such as the block sizes of
// a context's configurations.
package stats

import "math"

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Running keeps count, extremes, mean and variance of the values pushed
// so far using Welford's update.
type Running struct {
	n    int
	min  float64
	max  float64
	mean float64
	m2   float64
}

func (r *Running) Push(val float64) {
	r.n++
	if r.n == 1 {
		r.min, r.max, r.mean, r.m2 = val, val, val, 0
		return
	}
	r.min = min(r.min, val)
	r.max = max(r.max, val)
	delta := val - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (val - r.mean)
}

func (r *Running) Count() int { return r.n }

func (r *Running) Min() float64 { return r.min }

func (r *Running) Max() float64 { return r.max }

func (r *Running) Mean() float64 { return r.mean }

// Variance is the sample variance; zero with fewer than two values.
func (r *Running) Variance() float64 {
	if r.n <= 1 {
		return 0
	}
	return r.m2 / float64(r.n-1)
}

func (r *Running) Stdev() float64 {
	return math.Sqrt(r.Variance())
}
