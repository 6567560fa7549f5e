package shell

import (
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

// ShellCompleter implements readline.AutoCompleter for the shell commands,
// their options and the registered labels.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"size":   {Options: []string{"-label"}},
	"encode": {Options: []string{"-turn", "-counts", "-label"}},
	"decode": {Options: []string{"-label"}},
	"turn":   {Options: []string{"-label"}},
	"verify": {Options: []string{"-n", "-label"}},
	"blocks": {Options: []string{"-bins", "-label"}},
	"help": {Args: []string{"load", "encode", "decode", "turn", "verify",
		"blocks", "script"}},
}

var commandNames = []string{
	"help", "load", "contexts", "size", "encode", "decode", "turn", "verify",
	"blocks", "script", "reset", "exit",
}

var turnValues = []string{"1", "2"}

func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch lastCompleteField {
		case "-label":
			completions = lo.Map(c.sc.mgr.Labels(), func(l int64, _ int) string {
				return strconv.FormatInt(l, 10)
			})
		case "-turn":
			completions = turnValues
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
