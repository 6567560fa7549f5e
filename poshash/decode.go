package poshash

import (
	"sort"
)

// Decode writes the board of pos into board, which must hold BoardLen
// bytes. Unordered piece counts go to the tail of the buffer. The turn is
// available separately through Turn.
func (c *Context) Decode(pos Position, board []byte) error {
	if pos < 0 || pos >= c.numPositions {
		return ErrPositionOutOfRange
	}
	if len(board) != c.BoardLen() {
		return ErrBoardLength
	}
	if c.player == TwoPlayer {
		pos >>= 1
	}

	// Every block is non-empty, so offsets are strictly increasing and the
	// first one is zero.
	vi := sort.Search(len(c.configHashOffsets), func(i int) bool {
		return c.configHashOffsets[i] > pos
	}) - 1

	sp := c.getScratch()
	defer c.putScratch(sp)
	config := *sp
	c.configFromIndex(c.validConfigIndices[vi], config)

	rank := int64(pos - c.configHashOffsets[vi])
	r := c.rearrangementIndex(config)
	for i := c.boardSize - 1; i >= 0; i-- {
		var cum int64
		chosen := -1
		for j := 0; j < c.numBoardPieces; j++ {
			if config[j] == 0 {
				continue
			}
			config[j]--
			size := c.rearrange(r-c.maxPieceMultScan[j], config)
			config[j]++
			if cum+size > rank {
				chosen = j
				break
			}
			cum += size
		}
		board[i] = c.symbols[chosen]
		rank -= cum
		config[chosen]--
		r -= c.maxPieceMultScan[chosen]
	}

	for j := 0; j < c.NumUnorderedPieces(); j++ {
		board[c.boardSize+j] = byte(config[c.numBoardPieces+j])
	}
	return nil
}
