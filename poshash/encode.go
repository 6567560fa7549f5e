package poshash

// Encode returns the position of board with turn to move. board holds
// BoardLen bytes: a piece symbol for each slot, then the count of each
// unordered piece type. turn must be 1 or 2 in two-player contexts and is
// ignored otherwise.
//
// Within its configuration's block, a board is ranked by scanning slots
// from last to first and counting, at each slot, the arrangements of the
// remaining slots that would put a lower-ranked piece there.
func (c *Context) Encode(board []byte, turn int) (Position, error) {
	if len(board) != c.BoardLen() {
		return InvalidPosition, ErrBoardLength
	}
	if c.player == TwoPlayer && turn != 1 && turn != 2 {
		return InvalidPosition, ErrInvalidTurn
	}

	sp := c.getScratch()
	defer c.putScratch(sp)
	config := *sp
	clear(config)

	for _, sym := range board[:c.boardSize] {
		p := c.pieceIndex[sym]
		if p < 0 {
			return InvalidPosition, ErrSymbolNotInAlphabet
		}
		config[p]++
	}
	for j, ct := range board[c.boardSize:] {
		config[c.numBoardPieces+j] = int(ct)
	}

	ci, ok := c.configIndex(config)
	if !ok {
		return InvalidPosition, ErrInvalidConfiguration
	}
	vi := c.configIndexToValidIndex[ci]
	if vi < 0 {
		return InvalidPosition, ErrInvalidConfiguration
	}

	pos := c.configHashOffsets[vi]
	r := c.rearrangementIndex(config)
	// Slot 0 adds nothing: only its own piece is left by then.
	for i := c.boardSize - 1; i > 0; i-- {
		p := int(c.pieceIndex[board[i]])
		for j := 0; j < p; j++ {
			if config[j] == 0 {
				continue
			}
			config[j]--
			pos += Position(c.rearrange(r-c.maxPieceMultScan[j], config))
			config[j]++
		}
		config[p]--
		r -= c.maxPieceMultScan[p]
	}

	if c.player == TwoPlayer {
		pos <<= 1
		if turn == 2 {
			pos |= 1
		}
	}
	return pos, nil
}

// Turn returns the player to move in pos. Single-player contexts always
// return their fixed player id.
func (c *Context) Turn(pos Position) int {
	if c.player != TwoPlayer {
		return c.player
	}
	if pos&1 == 0 {
		return 1
	}
	return 2
}
