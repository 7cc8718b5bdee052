package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
)

// RegisterModules installs the "sheet" global table into L:
//
//	sheet.modifier(score[, bonus])   ability modifier
//	sheet.clamp(v, lo, hi)           integer clamp
//	sheet.log(msg)                   debug log line
//
// Precondition: L must be from NewSandboxedState; logger must be non-nil.
func RegisterModules(L *lua.LState, logger *zap.Logger) {
	mod := L.NewTable()
	L.SetField(mod, "modifier", L.NewFunction(func(L *lua.LState) int {
		score := L.CheckInt(1)
		bonus := L.OptInt(2, 0)
		L.Push(lua.LNumber(ability.Modifier(score, bonus)))
		return 1
	}))
	L.SetField(mod, "clamp", L.NewFunction(func(L *lua.LState) int {
		v, lo, hi := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3)
		L.Push(lua.LNumber(min(max(v, lo), hi)))
		return 1
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		logger.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("sheet", mod)
}
