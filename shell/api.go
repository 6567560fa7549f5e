package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/generichash/boardspec"
	"github.com/domino14/generichash/config"
	"github.com/domino14/generichash/poshash"
	"github.com/domino14/generichash/stats"
)

const (
	defaultVerifySamples = 1000
	defaultHistogramBins = 10
	histogramWidth       = 40
)

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <board description file>")
	}
	path := cmd.args[0]
	if _, err := os.Stat(path); err != nil && !filepath.IsAbs(path) {
		path = filepath.Join(sc.config.GetString(config.ConfigSpecsPath), path)
	}
	f, err := boardspec.Load(path)
	if err != nil {
		return nil, err
	}
	before := sc.mgr.Labels()
	err = f.Register(sc.mgr, sc.config.HashOptions()...)
	added, _ := lo.Difference(sc.mgr.Labels(), before)
	for _, label := range added {
		sc.loaded[label] = path
	}
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("loaded %d context(s) from %s", len(added), f.Name)), nil
}

func (sc *ShellController) contexts(cmd *shellcmd) (*Response, error) {
	labels := sc.mgr.Labels()
	if len(labels) == 0 {
		return msg("no contexts loaded"), nil
	}
	var ss strings.Builder
	fmt.Fprintf(&ss, "%-8s%-8s%-8s%-12s%-14s%-22s%-18s%s\n", "Label", "Slots",
		"Player", "Pieces", "Valid cfgs", "Positions", "Fingerprint", "File")
	for _, label := range labels {
		c, err := sc.mgr.ContextLabel(label)
		if err != nil {
			return nil, err
		}
		pieces := string(c.Symbols())
		if n := c.NumUnorderedPieces(); n > 0 {
			pieces += "+" + strconv.Itoa(n)
		}
		fmt.Fprintf(&ss, "%-8d%-8d%-8d%-12s%-14d%-22d%-18x%s\n", label, c.BoardSize(),
			c.Player(), strconv.Quote(pieces), c.NumValidConfigs(), c.NumPositions(),
			c.Fingerprint(), sc.loaded[label])
	}
	return msg(strings.TrimRight(ss.String(), "\n")), nil
}

// context picks the context named by the -label option, or the manager's
// first context when the option is absent.
func (sc *ShellController) context(cmd *shellcmd) (*poshash.Context, error) {
	label, ok, err := cmd.options.Int64("label")
	if err != nil {
		return nil, err
	}
	if !ok {
		return sc.mgr.Context()
	}
	return sc.mgr.ContextLabel(label)
}

func (sc *ShellController) size(cmd *shellcmd) (*Response, error) {
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	return msg(strconv.FormatInt(int64(c.NumPositions()), 10)), nil
}

// parseBoard builds an Encode buffer from the board symbols and a
// comma-separated list of unordered piece counts.
func parseBoard(c *poshash.Context, symbols, counts string) ([]byte, error) {
	if len(symbols) != c.BoardSize() {
		return nil, fmt.Errorf("board has %d slots, got %d symbols", c.BoardSize(), len(symbols))
	}
	board := append(make([]byte, 0, c.BoardLen()), symbols...)
	if counts == "" {
		if c.NumUnorderedPieces() > 0 {
			return nil, fmt.Errorf("need -counts with %d unordered piece counts", c.NumUnorderedPieces())
		}
		return board, nil
	}
	fields := strings.Split(counts, ",")
	if len(fields) != c.NumUnorderedPieces() {
		return nil, fmt.Errorf("need %d unordered piece counts, got %d", c.NumUnorderedPieces(), len(fields))
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if n < 0 || n > poshash.MaxBound {
			return nil, fmt.Errorf("unordered count %d out of range", n)
		}
		board = append(board, byte(n))
	}
	return board, nil
}

func formatBoard(c *poshash.Context, board []byte) string {
	s := string(board[:c.BoardSize()])
	if c.NumUnorderedPieces() == 0 {
		return s
	}
	counts := lo.Map(board[c.BoardSize():], func(b byte, _ int) string {
		return strconv.Itoa(int(b))
	})
	return s + " " + strings.Join(counts, ",")
}

func (sc *ShellController) encode(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: encode <board> [-turn 1|2] [-counts n,n,...] [-label L]")
	}
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	turn, err := cmd.options.IntDefault("turn", 1)
	if err != nil {
		return nil, err
	}
	board, err := parseBoard(c, cmd.args[0], cmd.options["counts"])
	if err != nil {
		return nil, err
	}
	pos, err := c.Encode(board, turn)
	if err != nil {
		return nil, err
	}
	return msg(strconv.FormatInt(int64(pos), 10)), nil
}

func (sc *ShellController) decode(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: decode <position> [-label L]")
	}
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	p, err := strconv.ParseInt(cmd.args[0], 10, 64)
	if err != nil {
		return nil, err
	}
	board := make([]byte, c.BoardLen())
	if err := c.Decode(poshash.Position(p), board); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s turn %d", formatBoard(c, board), c.Turn(poshash.Position(p)))), nil
}

func (sc *ShellController) turn(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: turn <position> [-label L]")
	}
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	p, err := strconv.ParseInt(cmd.args[0], 10, 64)
	if err != nil {
		return nil, err
	}
	if p < 0 || poshash.Position(p) >= c.NumPositions() {
		return nil, poshash.ErrPositionOutOfRange
	}
	return msg(strconv.Itoa(c.Turn(poshash.Position(p)))), nil
}

// verify decodes a random sample of positions and checks that each one
// encodes back to itself.
func (sc *ShellController) verify(cmd *shellcmd) (*Response, error) {
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	n, err := cmd.options.IntDefault("n", defaultVerifySamples)
	if err != nil {
		return nil, err
	}
	if c.NumPositions() == 0 {
		return msg("context has no positions"), nil
	}
	board := make([]byte, c.BoardLen())
	failures := 0
	for range n {
		pos := poshash.Position(frand.Uint64n(uint64(c.NumPositions())))
		if err := c.Decode(pos, board); err != nil {
			return nil, err
		}
		back, err := c.Encode(board, c.Turn(pos))
		if err != nil || back != pos {
			failures++
			log.Error().Err(err).Int64("position", int64(pos)).Int64("encoded", int64(back)).
				Str("board", formatBoard(c, board)).Msg("round-trip-mismatch")
		}
	}
	if failures > 0 {
		return nil, fmt.Errorf("%d of %d sampled positions failed to round-trip", failures, n)
	}
	return msg(fmt.Sprintf("%d sampled positions round-tripped", n)), nil
}

// blocks draws a histogram of the number of positions owned by each valid
// configuration.
func (sc *ShellController) blocks(cmd *shellcmd) (*Response, error) {
	c, err := sc.context(cmd)
	if err != nil {
		return nil, err
	}
	bins, err := cmd.options.IntDefault("bins", defaultHistogramBins)
	if err != nil {
		return nil, err
	}
	if bins < 1 {
		return nil, errors.New("bins must be positive")
	}
	if c.NumValidConfigs() == 0 {
		return msg("context has no valid configurations"), nil
	}
	sizes := make([]float64, 0, c.NumValidConfigs())
	summary := &stats.Running{}
	for vi := range c.ValidConfigs() {
		_, size, err := c.Block(vi)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, float64(size))
		summary.Push(float64(size))
	}
	hist := histogram.Hist(bins, sizes)
	var ss strings.Builder
	fmt.Fprintf(&ss, "%d valid configurations, %d positions\n", c.NumValidConfigs(), c.NumPositions())
	fmt.Fprintf(&ss, "block size min %.0f max %.0f mean %.2f stdev %.2f\n",
		summary.Min(), summary.Max(), summary.Mean(), summary.Stdev())
	if err := histogram.Fprint(&ss, hist, histogram.Linear(histogramWidth)); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(ss.String(), "\n")), nil
}

func (sc *ShellController) reset(cmd *shellcmd) (*Response, error) {
	n := sc.mgr.NumContexts()
	sc.mgr.Reset()
	clear(sc.loaded)
	return msg(fmt.Sprintf("dropped %d context(s)", n)), nil
}
