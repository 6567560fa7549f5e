package poshash

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on the category of failure
// without matching every sentinel.
type Kind int

const (
	KindUnknown Kind = iota
	// KindSpec errors come from a malformed piece specification.
	KindSpec
	// KindCapacity errors mean the shape is well formed but too large to
	// index with 64-bit positions or to fit in memory.
	KindCapacity
	// KindQuery errors are per-call failures of Encode, Decode and friends.
	// They never alter the state of a Context.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindSpec:
		return "spec"
	case KindCapacity:
		return "capacity"
	case KindQuery:
		return "query"
	}
	return "unknown"
}

// Error is the concrete type behind every sentinel in this package.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(k Kind, msg string) *Error {
	return &Error{Kind: k, msg: "poshash: " + msg}
}

// NewError returns an error of kind k with the message msg, for packages
// that build on contexts and report failures in the same categories.
func NewError(k Kind, msg string) *Error {
	return &Error{Kind: k, msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Specification errors
var (
	ErrIllegalSymbol          = newError(KindSpec, "piece symbol exceeds 127")
	ErrNegativeSymbol         = newError(KindSpec, "piece symbol is negative")
	ErrDuplicateSymbol        = newError(KindSpec, "piece symbol appears more than once")
	ErrInvalidBounds          = newError(KindSpec, "piece bounds are negative or min exceeds max")
	ErrBoardBoundTooLarge     = newError(KindSpec, "board piece bound exceeds 127 or the board size")
	ErrUnorderedBoundTooLarge = newError(KindSpec, "unordered piece bound exceeds 127")
	ErrTruncatedSpec          = newError(KindSpec, "piece specification ends in the middle of an entry")
	ErrMissingTerminator      = newError(KindSpec, "piece specification is not terminated")
	ErrNoPieces               = newError(KindSpec, "piece specification has no piece types")
	ErrTooManyPieces          = newError(KindSpec, "piece specification has more than 128 piece types")
	ErrInvalidBoardSize       = newError(KindSpec, "board size is negative")
	ErrInvalidPlayer          = newError(KindSpec, "player must be 0, 1 or 2")
)

// Capacity errors
var (
	ErrTooManyConfigurations = newError(KindCapacity, "too many piece configurations to represent")
	ErrTooManyRearrangements = newError(KindCapacity, "too many piece rearrangements to represent")
	ErrTooManyPositions      = newError(KindCapacity, "too many positions to represent")
	ErrTablesExceedMemory    = newError(KindCapacity, "hash tables exceed the memory budget")
)

// Query errors
var (
	ErrBoardLength          = newError(KindQuery, "board buffer has the wrong length")
	ErrSymbolNotInAlphabet  = newError(KindQuery, "board contains a symbol outside the alphabet")
	ErrInvalidConfiguration = newError(KindQuery, "board is not a valid piece configuration")
	ErrInvalidTurn          = newError(KindQuery, "turn must be 1 or 2")
	ErrPositionOutOfRange   = newError(KindQuery, "position is outside [0, NumPositions)")
	ErrConfigLength         = newError(KindQuery, "configuration has the wrong length")
	ErrValidIndexOutOfRange = newError(KindQuery, "valid configuration index is out of range")
)

func pieceError(i int, symbol int, err error) error {
	return fmt.Errorf("piece %d (symbol %d): %w", i, symbol, err)
}

func unorderedError(i int, err error) error {
	return fmt.Errorf("unordered piece %d: %w", i, err)
}
