// Package combinatorics holds the overflow-checked integer arithmetic used
// by the position hash. All functions work on non-negative int64 values and
// return -1 when a result cannot be represented. A negative operand is
// treated as an earlier overflow and propagates, so chains of calls only
// need to be checked once at the end.
package combinatorics

import (
	"math"
	"math/bits"
)

// Overflow is the marker returned by every function in this package when the
// result does not fit in an int64.
const Overflow int64 = -1

// Add returns a+b, or Overflow.
func Add(a, b int64) int64 {
	if a < 0 || b < 0 {
		return Overflow
	}
	if a > math.MaxInt64-b {
		return Overflow
	}
	return a + b
}

// Mul returns a*b, or Overflow.
func Mul(a, b int64) int64 {
	if a < 0 || b < 0 {
		return Overflow
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return Overflow
	}
	return int64(lo)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Binomial returns C(n, k). It returns 0 when k is outside [0, n] and
// Overflow when n is negative or the coefficient exceeds math.MaxInt64.
//
// Each step computes C(n-k+i, i) from C(n-k+i-1, i-1), and these partial
// values increase with i, so an intermediate overflow implies the final
// value overflows too.
func Binomial(n, k int64) int64 {
	if n < 0 {
		return Overflow
	}
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := int64(1); i <= k; i++ {
		// result*(n-k+i) is divisible by i. Divide out the common factor
		// first so the multiplication stays exact.
		g := gcd(result, i)
		result /= g
		result = Mul(result, (n-k+i)/(i/g))
		if result < 0 {
			return Overflow
		}
	}
	return result
}

// Multinomial returns the number of distinct orderings of a multiset with
// the given per-type counts: the running product of C(placed+c, placed)
// over the counts in order. Negative counts are rejected with Overflow.
func Multinomial(counts []int) int64 {
	result := int64(1)
	placed := int64(0)
	for _, c := range counts {
		if c < 0 {
			return Overflow
		}
		if c == 0 {
			continue
		}
		placed += int64(c)
		result = Mul(result, Binomial(placed, int64(c)))
		if result < 0 {
			return Overflow
		}
	}
	return result
}
