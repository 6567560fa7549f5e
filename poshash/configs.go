package poshash

import (
	"encoding/binary"
	"iter"

	"github.com/cespare/xxhash/v2"
)

// ValidConfigs yields each valid configuration with its valid index, in
// ascending position order. Each yielded slice is freshly allocated.
func (c *Context) ValidConfigs() iter.Seq2[int64, []int] {
	return func(yield func(int64, []int) bool) {
		for vi, ci := range c.validConfigIndices {
			config := make([]int, c.numPieces)
			c.configFromIndex(ci, config)
			if !yield(int64(vi), config) {
				return
			}
		}
	}
}

// ValidIndex returns the valid index of config, or false if config is not
// a valid configuration of this context.
func (c *Context) ValidIndex(config []int) (int64, bool) {
	if len(config) != c.numPieces {
		return -1, false
	}
	ci, ok := c.configIndex(config)
	if !ok {
		return -1, false
	}
	vi := c.configIndexToValidIndex[ci]
	return vi, vi >= 0
}

// Block returns the first position and the number of positions belonging
// to the valid configuration vi, turn bit included.
func (c *Context) Block(vi int64) (Position, int64, error) {
	if vi < 0 || vi >= c.numValidConfigs {
		return InvalidPosition, 0, ErrValidIndexOutOfRange
	}
	sp := c.getScratch()
	defer c.putScratch(sp)
	config := *sp
	c.configFromIndex(c.validConfigIndices[vi], config)
	offset := c.configHashOffsets[vi]
	size := c.rearrange(c.rearrangementIndex(config), config)
	if c.player == TwoPlayer {
		return offset << 1, size << 1, nil
	}
	return offset, size, nil
}

// Fingerprint identifies the shape of the context: board size, player mode
// and the full piece specification. Two contexts with equal fingerprints
// number their positions identically, so stored position data can carry
// it to detect a mismatched encoder. The validity predicate cannot be
// hashed and is not covered.
func (c *Context) Fingerprint() uint64 {
	buf := make([]byte, 0, 16+12*c.numPieces)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.boardSize))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.player))
	for _, p := range c.spec.Board {
		buf = append(buf, p.Symbol)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Min))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Max))
	}
	buf = append(buf, 0xff)
	for _, b := range c.spec.Unordered {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(b.Min))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(b.Max))
	}
	return xxhash.Sum64(buf)
}
