// Package boardspec reads board shape descriptions from YAML and registers
// them with a manager. A description lists one or more contexts, each with
// its label, board size, player mode, piece alphabet and an optional Lua
// validity predicate:
//
//	name: tictactoe
//	contexts:
//	  - label: 0
//	    board_size: 9
//	    player: 0
//	    pieces:
//	      - {symbol: "-", min: 0, max: 9}
//	      - {symbol: "O", min: 0, max: 4}
//	      - {symbol: "X", min: 0, max: 5}
//	    predicate: |
//	      function valid(c)
//	        return c[3] == c[2] or c[3] == c[2] + 1
//	      end
//
// The predicate chunk must define a global function valid. It receives the
// configuration as a Lua array, so piece i of the pieces list is c[i+1].
package boardspec

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/generichash/manager"
	"github.com/domino14/generichash/poshash"
)

var (
	ErrNoContexts     = errors.New("boardspec: file describes no contexts")
	ErrBadSymbol      = errors.New("boardspec: piece symbol must be a single byte")
	ErrDuplicateLabel = errors.New("boardspec: label appears more than once in the file")
)

type File struct {
	Name     string    `yaml:"name"`
	Contexts []Context `yaml:"contexts"`
}

type Context struct {
	Label     int64    `yaml:"label"`
	BoardSize int      `yaml:"board_size"`
	Player    int      `yaml:"player"`
	Pieces    []Piece  `yaml:"pieces"`
	Unordered []Bounds `yaml:"unordered"`
	Predicate string   `yaml:"predicate"`
}

type Piece struct {
	Symbol string `yaml:"symbol"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

type Bounds struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Parse decodes a YAML description and checks that its labels are unique
// and its symbols are single bytes. Piece bounds are checked later, by
// poshash, when the contexts are built.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	if len(f.Contexts) == 0 {
		return nil, ErrNoContexts
	}
	labels := lo.Map(f.Contexts, func(c Context, _ int) int64 { return c.Label })
	if dups := lo.FindDuplicates(labels); len(dups) > 0 {
		return nil, fmt.Errorf("label %d: %w", dups[0], ErrDuplicateLabel)
	}
	for _, c := range f.Contexts {
		if _, err := c.PieceSpec(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Load reads and parses the description at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("name", f.Name).Int("contexts", len(f.Contexts)).
		Msg("loaded-board-description")
	return f, nil
}

// PieceSpec converts the YAML alphabet to a poshash.PieceSpec.
func (c Context) PieceSpec() (poshash.PieceSpec, error) {
	var spec poshash.PieceSpec
	for i, p := range c.Pieces {
		if len(p.Symbol) != 1 {
			return poshash.PieceSpec{}, fmt.Errorf("context %d, piece %d (%q): %w",
				c.Label, i, p.Symbol, ErrBadSymbol)
		}
		spec.Board = append(spec.Board, poshash.Piece{Symbol: p.Symbol[0], Min: p.Min, Max: p.Max})
	}
	spec.Unordered = lo.Map(c.Unordered, func(b Bounds, _ int) poshash.Bounds {
		return poshash.Bounds{Min: b.Min, Max: b.Max}
	})
	return spec, nil
}

// Register builds every context of f and adds it to m. Contexts are added
// in file order; if one fails, those before it stay registered.
func (f *File) Register(m *manager.Manager, opts ...poshash.Option) error {
	for _, c := range f.Contexts {
		if err := c.register(m, opts...); err != nil {
			return fmt.Errorf("context %d: %w", c.Label, err)
		}
	}
	return nil
}

func (c Context) register(m *manager.Manager, opts ...poshash.Option) error {
	spec, err := c.PieceSpec()
	if err != nil {
		return err
	}
	if c.Predicate == "" {
		return m.Add(c.Label, c.BoardSize, c.Player, spec, nil, opts...)
	}
	if m.HasLabel(c.Label) {
		return manager.ErrDuplicateLabel
	}
	lp, err := newLuaPredicate(c.Predicate)
	if err != nil {
		return err
	}
	defer lp.Close()
	ctx, err := poshash.New(c.BoardSize, c.Player, spec, lp.Valid, opts...)
	if err != nil {
		return err
	}
	if lp.err != nil {
		// valid() raised an error on some configuration, so the tables
		// were built from a wrong answer.
		return lp.err
	}
	return m.AddContext(c.Label, ctx)
}
