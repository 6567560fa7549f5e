package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/generichash/config"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"verify -n 500",
			&shellcmd{"verify", nil, map[string]string{"n": "500"}},
			nil},
		{"decode 42",
			&shellcmd{"decode", []string{"42"}, map[string]string{}},
			nil},
		{"encode 'X O  ' -turn 2 -label 7 ",
			&shellcmd{"encode",
				[]string{"X O  "},
				map[string]string{"turn": "2", "label": "7"}},
			nil,
		},
		{"encode --------- -turn 1",
			&shellcmd{"encode", []string{"---------"}, map[string]string{"turn": "1"}},
			nil},
		{"encode X-------- -turn",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func testController(t *testing.T) *ShellController {
	cfg := &config.Config{}
	err := cfg.Load([]string{"--specs-path", "../boardspec/testdata", "--workers", "2"})
	if err != nil {
		t.Fatal(err)
	}
	return newController(cfg, "")
}

func run(t *testing.T, sc *ShellController, line string) (string, error) {
	t.Helper()
	resp, err := sc.standardModeSwitch(line, make(chan os.Signal, 1))
	if err != nil {
		return "", err
	}
	return resp.message, nil
}

func TestTicTacToeCommands(t *testing.T) {
	is := is.New(t)
	sc := testController(t)

	out, err := run(t, sc, "load tictactoe.yaml")
	is.NoErr(err)
	is.Equal(out, "loaded 1 context(s) from tictactoe")

	out, err = run(t, sc, "encode --------- -turn 1")
	is.NoErr(err)
	is.Equal(out, "0")
	out, err = run(t, sc, "encode --------- -turn 2")
	is.NoErr(err)
	is.Equal(out, "1")

	out, err = run(t, sc, "decode 1")
	is.NoErr(err)
	is.Equal(out, "--------- turn 2")
	out, err = run(t, sc, "turn 1 -label 0")
	is.NoErr(err)
	is.Equal(out, "2")

	out, err = run(t, sc, "encode X-O-X---- -turn 2")
	is.NoErr(err)
	back, err := run(t, sc, "decode "+out)
	is.NoErr(err)
	is.Equal(back, "X-O-X---- turn 2")

	_, err = run(t, sc, "encode XX------- -turn 1")
	is.True(err != nil)
	_, err = run(t, sc, "encode ---")
	is.True(err != nil)
	_, err = run(t, sc, "turn 99999999")
	is.True(err != nil)

	out, err = run(t, sc, "verify -n 300")
	is.NoErr(err)
	is.Equal(out, "300 sampled positions round-tripped")

	out, err = run(t, sc, "blocks -bins 4")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "10 valid configurations, 12092 positions\n"+
		"block size min 2 max 3360 mean 1209.20"))

	out, err = run(t, sc, "contexts")
	is.NoErr(err)
	is.True(strings.Contains(out, "tictactoe.yaml"))
	is.True(strings.Contains(out, `"-OX"`))
}

func TestUnorderedCounts(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	_, err := run(t, sc, "load tiers.yaml")
	is.NoErr(err)

	out, err := run(t, sc, "size -label 11")
	is.NoErr(err)
	is.Equal(out, "24")

	_, err = run(t, sc, "encode @..@ -label 12")
	is.True(err != nil) // counts missing
	pos, err := run(t, sc, "encode @..@ -counts 2 -label 12 -turn 2")
	is.NoErr(err)
	out, err = run(t, sc, "decode "+pos+" -label 12")
	is.NoErr(err)
	is.Equal(out, "@..@ 2 turn 2")

	_, err = run(t, sc, "size -label 99")
	is.True(err != nil)

	out, err = run(t, sc, "reset")
	is.NoErr(err)
	is.Equal(out, "dropped 3 context(s)")
	_, err = run(t, sc, "size")
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	path := filepath.Join(t.TempDir(), "check.lua")
	is.NoErr(os.WriteFile(path, []byte(`
local out, err = gh_load("tictactoe.yaml")
assert(out ~= nil, err)
assert(gh_encode("--------- -turn 2") == "1")
local bad, e = gh_encode("XX------- -turn 1")
assert(bad == nil and e ~= nil)
assert(gh_size() == gh_size("-label 0"))
`), 0o644))

	out, err := run(t, sc, "script "+path)
	is.NoErr(err)
	is.Equal(out, "ran "+path)
	is.Equal(sc.mgr.NumContexts(), 1)

	bad := filepath.Join(t.TempDir(), "bad.lua")
	is.NoErr(os.WriteFile(bad, []byte(`assert(gh_size() ~= nil, "no contexts")`), 0o644))
	sc.mgr.Reset()
	_, err = run(t, sc, "script "+bad)
	is.True(err != nil)
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	out, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Commands:"))
	out, err = run(t, sc, "help encode")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "encode <board>"))
	_, err = run(t, sc, "help nothing")
	is.True(err != nil)
	_, err = run(t, sc, "frobnicate")
	is.True(err != nil)
}

func TestExitSignals(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	sig := make(chan os.Signal, 1)
	_, err := sc.standardModeSwitch("exit", sig)
	is.Equal(err, errQuit)
	is.Equal(len(sig), 1)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	c := NewShellCompleter(sc)

	m, n := c.Do([]rune("enc"), 3)
	is.Equal(n, 3)
	is.Equal(m, [][]rune{[]rune("ode")})

	m, _ = c.Do([]rune("verify -"), 8)
	is.Equal(len(m), 2)

	_, err := run(t, sc, "load tiers.yaml")
	is.NoErr(err)
	m, _ = c.Do([]rune("size -label 1"), 13)
	is.Equal(m, [][]rune{[]rune("0"), []rune("1"), []rune("2")})
}
