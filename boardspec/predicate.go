package boardspec

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

var ErrNoValidFunction = errors.New("boardspec: predicate does not define a function named valid")

// luaPredicate runs a Lua valid(config) function. An LState is not safe
// for concurrent use, so calls are serialised; parallel enumeration still
// works, it just gains nothing while waiting on the predicate.
type luaPredicate struct {
	mu  sync.Mutex
	L   *lua.LState
	fn  lua.LValue
	err error
}

func newLuaPredicate(src string) (*luaPredicate, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, err
	}
	fn := L.GetGlobal("valid")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoValidFunction
	}
	return &luaPredicate{L: L, fn: fn}, nil
}

// Valid is a poshash.Predicate. A Lua error makes it answer false and is
// kept in p.err so the caller can discard the context.
func (p *luaPredicate) Valid(config []int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	tbl := p.L.CreateTable(len(config), 0)
	for i, v := range config {
		tbl.RawSetInt(i+1, lua.LNumber(v))
	}
	if err := p.L.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true}, tbl); err != nil {
		if p.err == nil {
			log.Err(err).Ints("config", config).Msg("lua-predicate-failed")
			p.err = err
		}
		return false
	}
	ret := p.L.Get(-1)
	p.L.Pop(1)
	return lua.LVAsBool(ret)
}

func (p *luaPredicate) Close() {
	p.L.Close()
}
