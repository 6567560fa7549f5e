package poshash

import (
	"github.com/samber/lo"
)

const (
	// SpecTerminator ends a flat piece specification.
	SpecTerminator = -1
	// SpecSeparator divides the board pieces of a flat specification from
	// the (min, max) pairs of its unordered pieces.
	SpecSeparator = -2

	// MaxSymbol is the largest legal piece symbol.
	MaxSymbol = 127
	// MaxBound is the largest legal min or max for any piece type. Board
	// and unordered pieces share it, since unordered counts travel in a
	// single byte of the board buffer.
	MaxBound = 127
	// MaxPieceTypes is the largest number of piece types in one context.
	MaxPieceTypes = 128
)

// Piece is a board piece type: one symbol occupying board slots, present
// between Min and Max times inclusive.
type Piece struct {
	Symbol byte
	Min    int
	Max    int
}

// Bounds limits the count of an unordered piece type.
type Bounds struct {
	Min int
	Max int
}

// PieceSpec describes the alphabet of a board shape. Order matters: the
// index of a piece in Board (and, after those, in Unordered) is its rank
// in configuration vectors and in the lexicographic order of positions.
type PieceSpec struct {
	Board     []Piece
	Unordered []Bounds
}

// NumPieces returns the total number of piece types.
func (s PieceSpec) NumPieces() int {
	return len(s.Board) + len(s.Unordered)
}

// ParsePieceSpec reads the flat integer form used by game modules:
//
//	symbol, min, max, symbol, min, max, ..., SpecSeparator, min, max, ..., SpecTerminator
//
// The separator and the unordered pairs are optional. Values after the
// terminator are ignored.
func ParsePieceSpec(raw []int) (PieceSpec, error) {
	var spec PieceSpec
	i := 0
	for {
		if i >= len(raw) {
			return PieceSpec{}, ErrMissingTerminator
		}
		v := raw[i]
		if v == SpecTerminator {
			return spec, nil
		}
		if v == SpecSeparator {
			i++
			break
		}
		if v < 0 {
			return PieceSpec{}, pieceError(len(spec.Board), v, ErrNegativeSymbol)
		}
		if v > MaxSymbol {
			return PieceSpec{}, pieceError(len(spec.Board), v, ErrIllegalSymbol)
		}
		if i+2 >= len(raw) {
			return PieceSpec{}, ErrTruncatedSpec
		}
		spec.Board = append(spec.Board, Piece{Symbol: byte(v), Min: raw[i+1], Max: raw[i+2]})
		i += 3
	}

	for {
		if i >= len(raw) {
			return PieceSpec{}, ErrMissingTerminator
		}
		if raw[i] == SpecTerminator {
			return spec, nil
		}
		if i+1 >= len(raw) {
			return PieceSpec{}, ErrTruncatedSpec
		}
		spec.Unordered = append(spec.Unordered, Bounds{Min: raw[i], Max: raw[i+1]})
		i += 2
	}
}

// Flatten is the inverse of ParsePieceSpec.
func (s PieceSpec) Flatten() []int {
	raw := make([]int, 0, 3*len(s.Board)+2*len(s.Unordered)+2)
	for _, p := range s.Board {
		raw = append(raw, int(p.Symbol), p.Min, p.Max)
	}
	if len(s.Unordered) > 0 {
		raw = append(raw, SpecSeparator)
		for _, b := range s.Unordered {
			raw = append(raw, b.Min, b.Max)
		}
	}
	return append(raw, SpecTerminator)
}

// Validate checks the spec against a board size. The first offending piece
// is named in the returned error.
func (s PieceSpec) Validate(boardSize int) error {
	if boardSize < 0 {
		return ErrInvalidBoardSize
	}
	if s.NumPieces() == 0 {
		return ErrNoPieces
	}
	if s.NumPieces() > MaxPieceTypes {
		return ErrTooManyPieces
	}
	var seen [MaxSymbol + 1]bool
	for i, p := range s.Board {
		sym := int(p.Symbol)
		if sym > MaxSymbol {
			return pieceError(i, sym, ErrIllegalSymbol)
		}
		if seen[sym] {
			return pieceError(i, sym, ErrDuplicateSymbol)
		}
		seen[sym] = true
		if p.Min < 0 || p.Min > p.Max {
			return pieceError(i, sym, ErrInvalidBounds)
		}
		if p.Max > MaxBound || p.Max > boardSize {
			return pieceError(i, sym, ErrBoardBoundTooLarge)
		}
	}
	for i, b := range s.Unordered {
		if b.Min < 0 || b.Min > b.Max {
			return unorderedError(i, ErrInvalidBounds)
		}
		if b.Max > MaxBound {
			return unorderedError(i, ErrUnorderedBoundTooLarge)
		}
	}
	return nil
}

// Symbols returns the board piece symbols in rank order.
func (s PieceSpec) Symbols() []byte {
	return lo.Map(s.Board, func(p Piece, _ int) byte { return p.Symbol })
}

func (s PieceSpec) clone() PieceSpec {
	return PieceSpec{
		Board:     append([]Piece(nil), s.Board...),
		Unordered: append([]Bounds(nil), s.Unordered...),
	}
}
