package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

type command func(*ShellController, *shellcmd) (*Response, error)

// scriptCommands are the shell commands exposed to Lua as gh_<name>.
var scriptCommands = map[string]command{
	"load":     (*ShellController).load,
	"contexts": (*ShellController).contexts,
	"size":     (*ShellController).size,
	"encode":   (*ShellController).encode,
	"decode":   (*ShellController).decode,
	"turn":     (*ShellController).turn,
	"verify":   (*ShellController).verify,
	"blocks":   (*ShellController).blocks,
	"reset":    (*ShellController).reset,
}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("gh_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

func bind(name string, fn command) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if L.GetTop() > 0 {
			line += " " + L.ToString(1)
		}
		sc := getShell(L)
		cmd, err := extractFields(line)
		if err == nil {
			var r *Response
			r, err = fn(sc, cmd)
			if err == nil {
				L.Push(lua.LString(r.message))
				return 1
			}
		}
		log.Err(err).Str("command", name).Msg("error-executing-script-command")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		// return number of results pushed to stack.
		return 2
	}
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("gh_shell", lsc)
	for name, fn := range scriptCommands {
		L.SetGlobal("gh_"+name, L.NewFunction(bind(name, fn)))
	}

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Str("script", filepath).Msg("script-failed")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
