// Package manager owns a set of position hash contexts, each registered
// under a caller-chosen label. Games with several tiers register one
// context per tier and address it by tier id; single-context games can use
// the label-free methods.
//
// Register every context before issuing queries from multiple goroutines.
// Queries never mutate the manager and are safe to run concurrently.
package manager

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/generichash/labeldir"
	"github.com/domino14/generichash/poshash"
)

// Manager errors are query-kind poshash errors, so poshash.KindOf
// classifies them alongside context failures.
var (
	ErrDuplicateLabel = poshash.NewError(poshash.KindQuery, "manager: label is already registered")
	ErrUnknownLabel   = poshash.NewError(poshash.KindQuery, "manager: label is not registered")
	ErrNoContexts     = poshash.NewError(poshash.KindQuery, "manager: no contexts are registered")
	ErrNilContext     = poshash.NewError(poshash.KindQuery, "manager: context is nil")
)

type Manager struct {
	contexts []*poshash.Context
	labels   *labeldir.Map
	warnOnce *sync.Once
}

// New returns an empty manager.
func New() *Manager {
	m := &Manager{}
	m.Reset()
	return m
}

// Reset drops every registered context and label.
func (m *Manager) Reset() {
	if len(m.contexts) > 0 {
		log.Debug().Int("contexts", len(m.contexts)).Msg("resetting-hash-manager")
	}
	m.contexts = nil
	if m.labels == nil {
		m.labels = labeldir.New(0, labeldir.DefaultLoadFactor)
	} else {
		m.labels.Clear()
	}
	m.warnOnce = &sync.Once{}
}

// Add builds a context and registers it under label. On any error the
// manager is left as it was.
func (m *Manager) Add(label int64, boardSize, player int, spec poshash.PieceSpec,
	pred poshash.Predicate, opts ...poshash.Option) error {

	if m.labels.Contains(label) {
		log.Error().Int64("label", label).Msg("duplicate-hash-label")
		return ErrDuplicateLabel
	}
	c, err := poshash.New(boardSize, player, spec, pred, opts...)
	if err != nil {
		log.Err(err).Int64("label", label).Msg("hash-context-init-failed")
		return err
	}
	return m.AddContext(label, c)
}

// AddContext registers a context built elsewhere with poshash.New.
func (m *Manager) AddContext(label int64, c *poshash.Context) error {
	if c == nil {
		return ErrNilContext
	}
	if m.labels.Contains(label) {
		log.Error().Int64("label", label).Msg("duplicate-hash-label")
		return ErrDuplicateLabel
	}
	m.labels.Set(label, int64(len(m.contexts)))
	m.contexts = append(m.contexts, c)
	log.Debug().Int64("label", label).Int64("num-positions", int64(c.NumPositions())).
		Msg("hash-context-registered")
	return nil
}

// AddFlat is Add for a piece specification in flat sentinel form (see
// poshash.ParsePieceSpec).
func (m *Manager) AddFlat(label int64, boardSize, player int, raw []int,
	pred poshash.Predicate, opts ...poshash.Option) error {

	spec, err := poshash.ParsePieceSpec(raw)
	if err != nil {
		return err
	}
	return m.Add(label, boardSize, player, spec, pred, opts...)
}

func (m *Manager) HasLabel(label int64) bool {
	return m.labels.Contains(label)
}

func (m *Manager) NumContexts() int {
	return len(m.contexts)
}

// Labels returns every registered label in ascending order.
func (m *Manager) Labels() []int64 {
	labels := make([]int64, 0, m.labels.Len())
	for label := range m.labels.All() {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

// ContextLabel returns the context registered under label.
func (m *Manager) ContextLabel(label int64) (*poshash.Context, error) {
	idx, ok := m.labels.Lookup(label)
	if !ok {
		return nil, ErrUnknownLabel
	}
	return m.contexts[idx], nil
}

func (m *Manager) EncodeLabel(label int64, board []byte, turn int) (poshash.Position, error) {
	c, err := m.ContextLabel(label)
	if err != nil {
		return poshash.InvalidPosition, err
	}
	return c.Encode(board, turn)
}

func (m *Manager) DecodeLabel(label int64, pos poshash.Position, board []byte) error {
	c, err := m.ContextLabel(label)
	if err != nil {
		return err
	}
	return c.Decode(pos, board)
}

func (m *Manager) NumPositionsLabel(label int64) (poshash.Position, error) {
	c, err := m.ContextLabel(label)
	if err != nil {
		return poshash.InvalidPosition, err
	}
	return c.NumPositions(), nil
}

// TurnLabel returns -1 with the error when label is unknown.
func (m *Manager) TurnLabel(label int64, pos poshash.Position) (int, error) {
	c, err := m.ContextLabel(label)
	if err != nil {
		return -1, err
	}
	return c.Turn(pos), nil
}

// Context returns the first registered context. It is meant for games
// with a single context; if more are registered it logs a warning, once
// per Reset, and still answers with the first.
func (m *Manager) Context() (*poshash.Context, error) {
	if len(m.contexts) == 0 {
		return nil, ErrNoContexts
	}
	if len(m.contexts) > 1 {
		m.warnOnce.Do(func() {
			log.Warn().Int("contexts", len(m.contexts)).
				Msg("label-free-hash-call-with-multiple-contexts; using the first")
		})
	}
	return m.contexts[0], nil
}

func (m *Manager) Encode(board []byte, turn int) (poshash.Position, error) {
	c, err := m.Context()
	if err != nil {
		return poshash.InvalidPosition, err
	}
	return c.Encode(board, turn)
}

func (m *Manager) Decode(pos poshash.Position, board []byte) error {
	c, err := m.Context()
	if err != nil {
		return err
	}
	return c.Decode(pos, board)
}

func (m *Manager) NumPositions() (poshash.Position, error) {
	c, err := m.Context()
	if err != nil {
		return poshash.InvalidPosition, err
	}
	return c.NumPositions(), nil
}

func (m *Manager) Turn(pos poshash.Position) (int, error) {
	c, err := m.Context()
	if err != nil {
		return -1, err
	}
	return c.Turn(pos), nil
}
