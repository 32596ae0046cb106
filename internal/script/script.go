// Package script exposes the harness to Lua test scripts.
//
// A Runner owns one Lua state and registers a global "fx" table whose
// functions map one-to-one onto the session's navigation, editing, and
// assertion operations:
//
//	fx.open_file("a.py")          -- or fx.open_file(0)
//	fx.go_to_marker("m")
//	fx.type("y")
//	fx.verify_file_content("yx = 1\n")
//	fx.verify_diagnostics({ m = { category = "error", message = "..." } })
//
// Harness errors are raised as Lua errors and surface from Run as Go
// errors. Execution is fully synchronous on the caller's goroutine;
// gopher-lua's LState is not goroutine-safe and nothing here shares it.
package script

import (
	"fmt"

	"fortio.org/safecast"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/harness"
	"github.com/dshills/fixtest/internal/textpos"
	"github.com/dshills/fixtest/internal/verify"
)

// Runner executes Lua test scripts against one session.
type Runner struct {
	L *lua.LState
	s *harness.Session
	v *verify.Verifier
}

// NewRunner creates a runner and registers the fx table. Callers must
// Close it to release the Lua state.
func NewRunner(s *harness.Session, v *verify.Verifier) *Runner {
	L := lua.NewState()
	r := &Runner{L: L, s: s, v: v}
	r.register()
	return r
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.L.Close()
}

// RunFile executes a script file.
func (r *Runner) RunFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// RunString executes script source.
func (r *Runner) RunString(source string) error {
	if err := r.L.DoString(source); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (r *Runner) register() {
	mod := r.L.NewTable()
	r.L.SetGlobal("fx", mod)

	funcs := map[string]lua.LGFunction{
		"open_file":            r.luaOpenFile,
		"go_to_marker":         r.luaGoToMarker,
		"go_to_position":       r.luaGoToPosition,
		"go_to_point":          r.luaGoToPoint,
		"move_caret_right":     r.luaMoveCaretRight,
		"select":               r.luaSelect,
		"select_range":         r.luaSelectRange,
		"select_line":          r.luaSelectLine,
		"select_all":           r.luaSelectAll,
		"type":                 r.luaType,
		"paste":                r.luaPaste,
		"replace":              r.luaReplace,
		"delete_chars":         r.luaDeleteChars,
		"backspace":            r.luaBackspace,
		"delete_line_range":    r.luaDeleteLineRange,
		"caret":                r.luaCaret,
		"content":              r.luaContent,
		"ranges_with_text":     r.luaRangesWithText,
		"verify_diagnostics":   r.luaVerifyDiagnostics,
		"verify_caret_at":      r.luaVerifyCaretAt,
		"verify_line":          r.luaVerifyLine,
		"verify_file_content":  r.luaVerifyFileContent,
		"verify_text_at_caret": r.luaVerifyTextAtCaret,
		"verify_range_is":      r.luaVerifyRangeIs,
		"verify_selection":     r.luaVerifySelection,
	}
	for name, fn := range funcs {
		r.L.SetField(mod, name, r.L.NewFunction(fn))
	}
}

// raise converts a harness error into a Lua error.
func (r *Runner) raise(L *lua.LState, err error) int {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// checkLine converts a Lua argument to a line number, rejecting negative
// or oversized values before they reach the position index.
func checkLine(L *lua.LState, arg int) uint32 {
	n, err := safecast.Conv[uint32](int64(L.CheckInt(arg)))
	if err != nil {
		L.ArgError(arg, err.Error())
	}
	return n
}

func (r *Runner) luaOpenFile(L *lua.LState) int {
	var ref fixture.FileRef
	switch v := L.CheckAny(1).(type) {
	case lua.LNumber:
		ref = fixture.ByIndex(int(v))
	case lua.LString:
		ref = fixture.ByName(string(v))
	default:
		L.ArgError(1, "file index or path expected")
		return 0
	}
	return r.raise(L, r.s.OpenFile(ref))
}

func (r *Runner) luaGoToMarker(L *lua.LState) int {
	return r.raise(L, r.s.GoToMarker(L.CheckString(1)))
}

func (r *Runner) luaGoToPosition(L *lua.LState) int {
	r.s.GoToPosition(L.CheckInt(1))
	return 0
}

func (r *Runner) luaGoToPoint(L *lua.LState) int {
	p := textpos.Point{Line: checkLine(L, 1), Column: checkLine(L, 2)}
	return r.raise(L, r.s.GoToPoint(p))
}

func (r *Runner) luaMoveCaretRight(L *lua.LState) int {
	r.s.MoveCaretRight(L.OptInt(1, 1))
	return 0
}

func (r *Runner) luaSelect(L *lua.LState) int {
	return r.raise(L, r.s.Select(L.CheckString(1), L.CheckString(2)))
}

func (r *Runner) luaSelectRange(L *lua.LState) int {
	name := L.CheckString(1)
	for _, rg := range r.s.Ranges() {
		if rg.Marker != nil && rg.Marker.Name == name {
			return r.raise(L, r.s.SelectRange(rg))
		}
	}
	L.RaiseError("no range is linked to marker %q", name)
	return 0
}

func (r *Runner) luaSelectLine(L *lua.LState) int {
	return r.raise(L, r.s.SelectLine(checkLine(L, 1)))
}

func (r *Runner) luaSelectAll(L *lua.LState) int {
	return r.raise(L, r.s.SelectAllInFile(fixture.ByName(r.s.ActiveFile().Path())))
}

func (r *Runner) luaType(L *lua.LState) int {
	r.s.Type(L.CheckString(1))
	return 0
}

func (r *Runner) luaPaste(L *lua.LState) int {
	r.s.Paste(L.CheckString(1))
	return 0
}

func (r *Runner) luaReplace(L *lua.LState) int {
	r.s.Replace(L.CheckInt(1), L.CheckInt(2), L.CheckString(3))
	return 0
}

func (r *Runner) luaDeleteChars(L *lua.LState) int {
	r.s.DeleteChars(L.OptInt(1, 1))
	return 0
}

func (r *Runner) luaBackspace(L *lua.LState) int {
	r.s.DeleteCharsBefore(L.OptInt(1, 1))
	return 0
}

func (r *Runner) luaDeleteLineRange(L *lua.LState) int {
	return r.raise(L, r.s.DeleteLineRange(checkLine(L, 1), checkLine(L, 2)))
}

func (r *Runner) luaCaret(L *lua.LState) int {
	L.Push(lua.LNumber(r.s.Caret()))
	return 1
}

func (r *Runner) luaContent(L *lua.LState) int {
	L.Push(lua.LString(r.s.ActiveFile().Content()))
	return 1
}

func (r *Runner) luaRangesWithText(L *lua.LState) int {
	text := L.CheckString(1)
	L.Push(lua.LNumber(len(r.s.RangesByText()[text])))
	return 1
}

func (r *Runner) luaVerifyDiagnostics(L *lua.LState) int {
	var expect map[string]verify.Expectation
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		expect = expectationsArg(L, L.CheckTable(1))
	}
	return r.raise(L, r.v.Diagnostics(expect))
}

func (r *Runner) luaVerifyCaretAt(L *lua.LState) int {
	return r.raise(L, r.v.CaretAtMarker(L.CheckString(1)))
}

func (r *Runner) luaVerifyLine(L *lua.LState) int {
	return r.raise(L, r.v.CurrentLineContent(L.CheckString(1)))
}

func (r *Runner) luaVerifyFileContent(L *lua.LState) int {
	return r.raise(L, r.v.CurrentFileContent(L.CheckString(1)))
}

func (r *Runner) luaVerifyTextAtCaret(L *lua.LState) int {
	return r.raise(L, r.v.TextAtCaretIs(L.CheckString(1)))
}

func (r *Runner) luaVerifyRangeIs(L *lua.LState) int {
	return r.raise(L, r.v.RangeIs(L.CheckString(1)))
}

func (r *Runner) luaVerifySelection(L *lua.LState) int {
	return r.raise(L, r.v.SelectionIs(L.CheckString(1)))
}

// expectationsArg converts a Lua table of the form
// { marker = { category = "...", message = "..." } } into an
// expectation map.
func expectationsArg(L *lua.LState, tbl *lua.LTable) map[string]verify.Expectation {
	expect := make(map[string]verify.Expectation)
	tbl.ForEach(func(k, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			L.RaiseError("expectation for %s must be a table", k.String())
			return
		}
		expect[k.String()] = verify.Expectation{
			Category: lua.LVAsString(entry.RawGetString("category")),
			Message:  lua.LVAsString(entry.RawGetString("message")),
		}
	})
	return expect
}
