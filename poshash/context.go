// Package poshash maps the structurally valid boards of one game shape onto
// a dense range of integer positions and back.
//
// A shape is a board size, an alphabet of piece types with count bounds,
// and an optional pool of unordered pieces whose counts matter but whose
// placement does not. Every valid piece configuration owns a contiguous
// block of positions, sized by the number of distinct arrangements of its
// board pieces; within a block boards are ranked as multiset permutations.
// In two-player contexts the turn is appended as the low bit.
//
// A Context is immutable after New except for an internal memo of
// arrangement counts whose cells are filled atomically, so it may be
// queried from many goroutines at once.
package poshash

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/generichash/combinatorics"
)

// Position identifies a (board, turn) pair within a Context.
type Position int64

// InvalidPosition accompanies every error returned in place of a Position.
const InvalidPosition Position = -1

// Predicate reports whether a configuration (count of each piece type, in
// spec order, unordered pieces last) is allowed. It is only called from
// New, must not retain or modify the slice, and must be deterministic.
type Predicate func(config []int) bool

const (
	// TwoPlayer contexts carry the turn in the low bit of each position.
	TwoPlayer = 0

	unsetArrangements = -1
)

// Context is one board shape together with its precomputed tables.
type Context struct {
	boardSize int
	player    int
	spec      PieceSpec
	pred      Predicate

	numBoardPieces int
	numPieces      int
	mins           []int
	maxs           []int
	symbols        []byte
	pieceIndex     [256]int16

	// configMultScan holds the radix weights of configuration indices.
	configMultScan []int64
	// maxPieceMultScan holds the radix weights of rearrangement indices:
	// the exclusive prefix product of (max+1) over board pieces.
	maxPieceMultScan []int64

	numConfigs              int64
	numValidConfigs         int64
	validConfigIndices      []int64
	configIndexToValidIndex []int64
	configHashOffsets       []Position
	rearrangerCache         []atomic.Int64
	numPositions            Position

	scratch sync.Pool
}

// New builds a context for a board of boardSize slots. player is TwoPlayer
// (0) for contexts that encode whose turn it is, or the fixed id (1 or 2)
// of the only player to move. pred may be nil.
//
// On failure New returns a nil Context and an error whose Kind is
// KindSpec or KindCapacity.
func New(boardSize, player int, spec PieceSpec, pred Predicate, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if player < 0 || player > 2 {
		return nil, ErrInvalidPlayer
	}
	if err := spec.Validate(boardSize); err != nil {
		return nil, err
	}

	c := &Context{
		boardSize:      boardSize,
		player:         player,
		spec:           spec.clone(),
		pred:           pred,
		numBoardPieces: len(spec.Board),
		numPieces:      spec.NumPieces(),
		symbols:        spec.Symbols(),
	}
	c.mins = make([]int, c.numPieces)
	c.maxs = make([]int, c.numPieces)
	for i := range c.pieceIndex {
		c.pieceIndex[i] = -1
	}
	for i, p := range spec.Board {
		c.mins[i], c.maxs[i] = p.Min, p.Max
		c.pieceIndex[p.Symbol] = int16(i)
	}
	for i, b := range spec.Unordered {
		c.mins[c.numBoardPieces+i], c.maxs[c.numBoardPieces+i] = b.Min, b.Max
	}

	c.configMultScan = make([]int64, c.numPieces)
	c.numConfigs = 1
	for i := 0; i < c.numPieces; i++ {
		c.configMultScan[i] = c.numConfigs
		c.numConfigs = combinatorics.Mul(c.numConfigs, int64(c.maxs[i]-c.mins[i]+1))
		if c.numConfigs < 0 {
			return nil, ErrTooManyConfigurations
		}
	}
	if c.numConfigs > math.MaxInt {
		return nil, ErrTooManyConfigurations
	}

	c.maxPieceMultScan = make([]int64, c.numBoardPieces)
	numRearrangements := int64(1)
	for i := 0; i < c.numBoardPieces; i++ {
		c.maxPieceMultScan[i] = numRearrangements
		numRearrangements = combinatorics.Mul(numRearrangements, int64(c.maxs[i]+1))
		if numRearrangements < 0 {
			return nil, ErrTooManyRearrangements
		}
	}
	if numRearrangements > math.MaxInt {
		return nil, ErrTooManyRearrangements
	}

	if err := checkMemory(c.numConfigs, numRearrangements, o.memoryFraction); err != nil {
		return nil, err
	}

	log.Debug().Int("board-size", boardSize).Int("player", player).
		Int("piece-types", c.numPieces).Int64("num-configs", c.numConfigs).
		Int64("num-rearrangements", numRearrangements).
		Int("workers", o.workers).Msg("hash-context-enumerating")

	valid, numValid, err := c.markValid(o.workers)
	if err != nil {
		return nil, err
	}

	c.numValidConfigs = numValid
	c.validConfigIndices = make([]int64, numValid)
	c.configIndexToValidIndex = make([]int64, c.numConfigs)
	c.configHashOffsets = make([]Position, numValid)
	c.rearrangerCache = make([]atomic.Int64, numRearrangements)
	for i := range c.rearrangerCache {
		c.rearrangerCache[i].Store(unsetArrangements)
	}

	config := make([]int, c.numPieces)
	total := int64(0)
	vi := int64(0)
	for idx := int64(0); idx < c.numConfigs; idx++ {
		if !valid[idx] {
			c.configIndexToValidIndex[idx] = -1
			continue
		}
		c.configFromIndex(idx, config)
		c.validConfigIndices[vi] = idx
		c.configIndexToValidIndex[idx] = vi
		c.configHashOffsets[vi] = Position(total)
		total = combinatorics.Add(total, c.rearrange(c.rearrangementIndex(config), config))
		if total < 0 {
			return nil, ErrTooManyPositions
		}
		vi++
	}
	if player == TwoPlayer {
		total = combinatorics.Mul(total, 2)
		if total < 0 {
			return nil, ErrTooManyPositions
		}
	}
	c.numPositions = Position(total)

	numPieces := c.numPieces
	c.scratch.New = func() any {
		s := make([]int, numPieces)
		return &s
	}

	if numValid == 0 {
		log.Warn().Int("board-size", boardSize).Msg("hash-context-has-no-valid-configurations")
	}
	log.Info().Int("board-size", boardSize).Int("player", player).
		Int64("num-configs", c.numConfigs).
		Int64("num-valid-configs", c.numValidConfigs).
		Int64("num-positions", int64(c.numPositions)).
		Msg("hash-context-initialized")
	return c, nil
}

// checkMemory estimates the worst-case size of the tables New is about to
// allocate: the validity marks, the inverse map, the valid-index and offset
// tables if every configuration were valid, and the arrangement memo.
func checkMemory(numConfigs, numRearrangements int64, fraction float64) error {
	if fraction <= 0 {
		return nil
	}
	total := memory.TotalMemory()
	if total == 0 {
		return nil
	}
	need := combinatorics.Add(
		combinatorics.Mul(numConfigs, 1+8+8+8),
		combinatorics.Mul(numRearrangements, 8))
	budget := fraction * float64(total)
	if need < 0 || float64(need) > budget {
		log.Error().Int64("needed-bytes", need).Float64("budget-bytes", budget).
			Uint64("total-system-memory-bytes", total).Msg("hash-tables-too-large")
		return ErrTablesExceedMemory
	}
	return nil
}

// markValid tests every configuration index, splitting the range evenly
// across workers.
func (c *Context) markValid(workers int) ([]bool, int64, error) {
	valid := make([]bool, c.numConfigs)
	if int64(workers) > c.numConfigs {
		workers = int(c.numConfigs)
	}
	chunk := (c.numConfigs + int64(workers) - 1) / int64(workers)
	counts := make([]int64, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := int64(w) * chunk
		end := min(start+chunk, c.numConfigs)
		g.Go(func() error {
			config := make([]int, c.numPieces)
			for idx := start; idx < end; idx++ {
				c.configFromIndex(idx, config)
				if c.isValid(config) {
					valid[idx] = true
					counts[w]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	var n int64
	for _, ct := range counts {
		n += ct
	}
	return valid, n, nil
}

func (c *Context) isValid(config []int) bool {
	placed := 0
	for i := 0; i < c.numBoardPieces; i++ {
		placed += config[i]
	}
	if placed != c.boardSize {
		return false
	}
	return c.pred == nil || c.pred(config)
}

func (c *Context) configFromIndex(idx int64, config []int) {
	for i := 0; i < c.numPieces; i++ {
		r := int64(c.maxs[i] - c.mins[i] + 1)
		config[i] = int(idx%r) + c.mins[i]
		idx /= r
	}
}

// configIndex returns false if any count is outside its bounds.
func (c *Context) configIndex(config []int) (int64, bool) {
	var idx int64
	for i := 0; i < c.numPieces; i++ {
		if config[i] < c.mins[i] || config[i] > c.maxs[i] {
			return -1, false
		}
		idx += int64(config[i]-c.mins[i]) * c.configMultScan[i]
	}
	return idx, true
}

func (c *Context) rearrangementIndex(config []int) int64 {
	var idx int64
	for i := 0; i < c.numBoardPieces; i++ {
		idx += int64(config[i]) * c.maxPieceMultScan[i]
	}
	return idx
}

func (c *Context) getScratch() *[]int {
	return c.scratch.Get().(*[]int)
}

func (c *Context) putScratch(s *[]int) {
	c.scratch.Put(s)
}

// BoardSize returns the number of board slots.
func (c *Context) BoardSize() int { return c.boardSize }

// BoardLen returns the length of the board buffers taken by Encode and
// filled by Decode: one byte per slot and one count per unordered piece.
func (c *Context) BoardLen() int { return c.boardSize + c.NumUnorderedPieces() }

// Player returns TwoPlayer or the fixed player id.
func (c *Context) Player() int { return c.player }

func (c *Context) NumPieces() int          { return c.numPieces }
func (c *Context) NumBoardPieces() int     { return c.numBoardPieces }
func (c *Context) NumUnorderedPieces() int { return c.numPieces - c.numBoardPieces }

// NumConfigs returns the size of the configuration index space, valid or not.
func (c *Context) NumConfigs() int64 { return c.numConfigs }

func (c *Context) NumValidConfigs() int64 { return c.numValidConfigs }

// NumPositions returns the number of positions; valid positions are
// exactly [0, NumPositions).
func (c *Context) NumPositions() Position { return c.numPositions }

// Spec returns a copy of the piece specification.
func (c *Context) Spec() PieceSpec { return c.spec.clone() }

// Symbols returns the board piece symbols in rank order.
func (c *Context) Symbols() []byte { return append([]byte(nil), c.symbols...) }
