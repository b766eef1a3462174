package statusline

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrNoFormatter is returned when Lua code was loaded but defined no
// format_status function.
var ErrNoFormatter = errors.New("statusline: lua script defines no format_status function")

// LuaFormatter runs a user-supplied Lua function to lay out the status
// line. The script must define:
//
//	function format_status(ctx) ... return s end
//
// where ctx is a table with mode, file, dirty, line, col, and command
// fields. The built-in layout remains the fallback on any Lua error.
//
// gopher-lua states are not goroutine safe; the mutex serializes calls
// from the render loop and config reloads.
type LuaFormatter struct {
	mu sync.Mutex
	l  *lua.LState
	fn lua.LValue
}

// NewLuaFormatter compiles the script and resolves its format_status
// function. The caller owns the formatter and must Close it.
func NewLuaFormatter(script string) (*LuaFormatter, error) {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)

	if err := l.DoString(script); err != nil {
		l.Close()
		return nil, fmt.Errorf("statusline: lua script: %w", err)
	}
	fn := l.GetGlobal("format_status")
	if fn == lua.LNil {
		l.Close()
		return nil, ErrNoFormatter
	}
	return &LuaFormatter{l: l, fn: fn}, nil
}

// Close releases the Lua state.
func (f *LuaFormatter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.l != nil {
		f.l.Close()
		f.l = nil
	}
}

// Format invokes the Lua formatter for a context. On any error the
// built-in layout is returned along with the error so the caller can log
// once and keep rendering.
func (f *LuaFormatter) Format(ctx Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.l == nil {
		return Build(ctx), errors.New("statusline: lua formatter closed")
	}

	tbl := f.l.NewTable()
	f.l.SetField(tbl, "mode", lua.LString(ctx.Mode.String()))
	f.l.SetField(tbl, "file", lua.LString(ctx.FileName))
	f.l.SetField(tbl, "dirty", lua.LBool(ctx.Dirty))
	f.l.SetField(tbl, "line", lua.LNumber(ctx.Line+1))
	f.l.SetField(tbl, "col", lua.LNumber(ctx.Col+1))
	f.l.SetField(tbl, "command", lua.LString(ctx.CommandBuffer))

	if err := f.l.CallByParam(lua.P{Fn: f.fn, NRet: 1, Protect: true}, tbl); err != nil {
		return Build(ctx), fmt.Errorf("statusline: format_status: %w", err)
	}
	ret := f.l.Get(-1)
	f.l.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return Build(ctx), fmt.Errorf("statusline: format_status returned %s, want string", ret.Type())
	}
	return string(s), nil
}
