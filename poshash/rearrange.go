package poshash

import (
	"github.com/domino14/generichash/combinatorics"
)

// rearrange returns the number of distinct orderings of the board pieces
// counted in config, memoised under its rearrangement index idx. Cells are
// written at most once per distinct value: concurrent first callers compute
// the same multinomial and store identical results.
//
// An overflowing count is returned as combinatorics.Overflow and never
// cached. New rejects any shape where a valid configuration overflows, and
// a reduced configuration never has more orderings than the one it was
// reduced from, so Encode and Decode cannot see the marker.
func (c *Context) rearrange(idx int64, config []int) int64 {
	cell := &c.rearrangerCache[idx]
	if v := cell.Load(); v != unsetArrangements {
		return v
	}
	v := combinatorics.Multinomial(config[:c.numBoardPieces])
	if v >= 0 {
		cell.Store(v)
	}
	return v
}

// Rearrangements returns the number of distinct boards sharing the
// configuration config, i.e. the size of its block of positions before the
// turn bit is appended. config must have NumPieces entries, each within
// its bounds; validity is not required, so a configuration that overfills
// the board can have more orderings than an int64 holds. That case returns
// ErrTooManyRearrangements.
func (c *Context) Rearrangements(config []int) (int64, error) {
	if len(config) != c.numPieces {
		return 0, ErrConfigLength
	}
	if _, ok := c.configIndex(config); !ok {
		return 0, ErrInvalidConfiguration
	}
	v := c.rearrange(c.rearrangementIndex(config), config)
	if v < 0 {
		return 0, ErrTooManyRearrangements
	}
	return v, nil
}
