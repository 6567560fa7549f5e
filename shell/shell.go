package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/generichash/config"
	"github.com/domino14/generichash/manager"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	execPath string
	mgr      *manager.Manager
	// loaded maps each registered label to the file that described it.
	loaded map[int64]string
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Int64(key string) (int64, bool, error) {
	v, ok := c[key]
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	return i, true, err
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func newController(cfg *config.Config, execPath string) *ShellController {
	return &ShellController{
		config:   cfg,
		execPath: execPath,
		mgr:      manager.New(),
		loaded:   map[int64]string{},
	}
}

func NewShellController(cfg *config.Config, execPath string) *ShellController {
	sc := newController(cfg, execPath)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mgenerichash>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// isOption reports whether a field names an option. Boards may start with
// a dash symbol, so only a dash followed by a letter counts.
func isOption(field string) bool {
	return len(field) > 1 && field[0] == '-' && unicode.IsLetter(rune(field[1]))
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if isOption(fields[idx]) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "load":
		return sc.load(cmd)
	case "contexts":
		return sc.contexts(cmd)
	case "size":
		return sc.size(cmd)
	case "encode":
		return sc.encode(cmd)
	case "decode":
		return sc.decode(cmd)
	case "turn":
		return sc.turn(cmd)
	case "verify":
		return sc.verify(cmd)
	case "blocks":
		return sc.blocks(cmd)
	case "script":
		return sc.script(cmd)
	case "reset":
		return sc.reset(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unrecognized command %q; type help for a list", cmd.cmd)
	}
}

// Execute runs a single command line, as given on the command line of the
// binary, and prints its result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err == errQuit {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

func (sc *ShellController) Cleanup() {
	log.Info().Int("contexts", sc.mgr.NumContexts()).Msg("shell-cleanup")
	sc.mgr.Reset()
}
