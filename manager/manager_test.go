package manager

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/generichash/poshash"
)

var ticTacToe = []int{'-', 0, 9, 'O', 0, 4, 'X', 0, 5, poshash.SpecTerminator}

// tier k of a two-piece game on four slots has exactly k stones placed.
func stonesTier(k int) []int {
	return []int{'.', 4 - k, 4 - k, '@', k, k, poshash.SpecTerminator}
}

func TestDuplicateLabel(t *testing.T) {
	m := New()
	require.NoError(t, m.AddFlat(5, 9, 0, ticTacToe, nil))

	n, err := m.NumPositionsLabel(5)
	require.NoError(t, err)

	err = m.AddFlat(5, 4, 1, stonesTier(2), nil)
	assert.ErrorIs(t, err, ErrDuplicateLabel)
	assert.Equal(t, poshash.KindQuery, poshash.KindOf(err))
	assert.Equal(t, 1, m.NumContexts())

	// the first context is untouched
	n2, err := m.NumPositionsLabel(5)
	require.NoError(t, err)
	assert.Equal(t, n, n2)
	pos, err := m.EncodeLabel(5, []byte("---------"), 2)
	require.NoError(t, err)
	assert.Equal(t, poshash.Position(1), pos)
}

func TestFailedInitLeavesManagerUnchanged(t *testing.T) {
	m := New()
	err := m.AddFlat(1, 9, 0, []int{'A', 0, 1, 'A', 0, 1, poshash.SpecTerminator}, nil)
	assert.ErrorIs(t, err, poshash.ErrDuplicateSymbol)
	assert.Equal(t, poshash.KindSpec, poshash.KindOf(err))
	assert.Equal(t, 0, m.NumContexts())

	// the label stays free
	require.NoError(t, m.AddFlat(1, 9, 0, ticTacToe, nil))
}

func TestTiers(t *testing.T) {
	m := New()
	for k := 0; k <= 4; k++ {
		require.NoError(t, m.AddFlat(int64(100+k), 4, 1, stonesTier(k), nil))
	}
	assert.Equal(t, []int64{100, 101, 102, 103, 104}, m.Labels())

	want := []poshash.Position{1, 4, 6, 4, 1}
	for k, w := range want {
		n, err := m.NumPositionsLabel(int64(100 + k))
		require.NoError(t, err)
		assert.Equal(t, w, n)
	}

	board := make([]byte, 4)
	require.NoError(t, m.DecodeLabel(102, 5, board))
	pos, err := m.EncodeLabel(102, board, 0)
	require.NoError(t, err)
	assert.Equal(t, poshash.Position(5), pos)
	turn, err := m.TurnLabel(102, pos)
	require.NoError(t, err)
	assert.Equal(t, 1, turn)

	_, err = m.EncodeLabel(102, []byte("@@@."), 0)
	assert.ErrorIs(t, err, poshash.ErrInvalidConfiguration)
}

func TestUnknownLabel(t *testing.T) {
	m := New()
	require.NoError(t, m.AddFlat(3, 9, 0, ticTacToe, nil))

	_, err := m.EncodeLabel(4, []byte("---------"), 1)
	assert.ErrorIs(t, err, ErrUnknownLabel)
	assert.Equal(t, poshash.KindQuery, poshash.KindOf(err))
	assert.ErrorIs(t, m.DecodeLabel(4, 0, make([]byte, 9)), ErrUnknownLabel)
	n, err := m.NumPositionsLabel(4)
	assert.ErrorIs(t, err, ErrUnknownLabel)
	assert.Equal(t, poshash.InvalidPosition, n)
	turn, err := m.TurnLabel(4, 0)
	assert.ErrorIs(t, err, ErrUnknownLabel)
	assert.Equal(t, -1, turn)
	_, err = m.ContextLabel(4)
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabelFree(t *testing.T) {
	m := New()
	_, err := m.NumPositions()
	assert.ErrorIs(t, err, ErrNoContexts)
	assert.Equal(t, poshash.KindQuery, poshash.KindOf(err))
	_, err = m.Encode([]byte("---------"), 1)
	assert.ErrorIs(t, err, ErrNoContexts)

	require.NoError(t, m.AddFlat(9, 9, 0, ticTacToe, nil))
	pos, err := m.Encode([]byte("X---O----"), 2)
	require.NoError(t, err)
	turn, err := m.Turn(pos)
	require.NoError(t, err)
	assert.Equal(t, 2, turn)
	board := make([]byte, 9)
	require.NoError(t, m.Decode(pos, board))
	assert.Equal(t, "X---O----", string(board))
}

func TestLabelFreeWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = saved }()

	m := New()
	require.NoError(t, m.AddFlat(1, 9, 0, ticTacToe, nil))
	require.NoError(t, m.AddFlat(2, 4, 1, stonesTier(1), nil))

	for i := 0; i < 3; i++ {
		n, err := m.NumPositions()
		require.NoError(t, err)
		first, _ := m.NumPositionsLabel(1)
		assert.Equal(t, first, n)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "label-free-hash-call-with-multiple-contexts"))

	// a reset re-arms the warning
	m.Reset()
	require.NoError(t, m.AddFlat(1, 4, 1, stonesTier(1), nil))
	require.NoError(t, m.AddFlat(2, 4, 1, stonesTier(2), nil))
	_, err := m.NumPositions()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "label-free-hash-call-with-multiple-contexts"))
}

func TestReset(t *testing.T) {
	m := New()
	require.NoError(t, m.AddFlat(5, 9, 0, ticTacToe, nil))
	m.Reset()
	assert.Equal(t, 0, m.NumContexts())
	assert.Empty(t, m.Labels())
	_, err := m.ContextLabel(5)
	assert.ErrorIs(t, err, ErrUnknownLabel)
	require.NoError(t, m.AddFlat(5, 4, 1, stonesTier(0), nil))
	n, err := m.NumPositionsLabel(5)
	require.NoError(t, err)
	assert.Equal(t, poshash.Position(1), n)
}

func TestAddContext(t *testing.T) {
	m := New()
	err := m.AddContext(1, nil)
	assert.ErrorIs(t, err, ErrNilContext)
	assert.Equal(t, poshash.KindQuery, poshash.KindOf(err))
	assert.Equal(t, 0, m.NumContexts())
	assert.False(t, m.HasLabel(1))

	spec, err := poshash.ParsePieceSpec(stonesTier(2))
	require.NoError(t, err)
	c, err := poshash.New(4, 1, spec, nil)
	require.NoError(t, err)
	require.NoError(t, m.AddContext(1, c))
	got, err := m.ContextLabel(1)
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.ErrorIs(t, m.AddContext(1, c), ErrDuplicateLabel)
}
