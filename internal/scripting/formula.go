package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// SanityCapHook is the Lua global every sanity script must define.
const SanityCapHook = "sanity_cap"

// DefaultSanityScript caps sanity at 10 + wisdom modifier + the level,
// with extra headroom for classes that deal in forbidden knowledge.
const DefaultSanityScript = `
local scholars = { ["Колдун"] = 5, ["Warlock"] = 5, ["Волшебник"] = 3, ["Wizard"] = 3 }

function sanity_cap(class, wis_mod, level)
	local extra = scholars[class] or 0
	return sheet.clamp(10 + wis_mod + level + extra, 0, 99)
end
`

// SanityFormula evaluates a Lua sanity_cap(class, wis_mod, level) function.
//
// SanityFormula is safe for concurrent use; calls are serialized on one LState.
type SanityFormula struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	logger *zap.Logger
}

// NewSanityFormula compiles src into a fresh sandbox.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a formula whose script defines sanity_cap, or an error.
func NewSanityFormula(src string, limit int, logger *zap.Logger) (*SanityFormula, error) {
	L := NewSandboxedState()
	RegisterModules(L, logger)
	if err := WithBudget(L, limit, func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading sanity script: %w", err)
	}
	if fn, ok := L.GetGlobal(SanityCapHook).(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, fmt.Errorf("scripting: sanity script does not define %s", SanityCapHook)
	}
	return &SanityFormula{L: L, limit: limit, logger: logger}, nil
}

// LoadSanityFormula reads the script at path. An empty path loads DefaultSanityScript.
func LoadSanityFormula(path string, limit int, logger *zap.Logger) (*SanityFormula, error) {
	if path == "" {
		return NewSanityFormula(DefaultSanityScript, limit, logger)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading sanity script %q: %w", path, err)
	}
	return NewSanityFormula(string(data), limit, logger)
}

// Cap calls sanity_cap(class, wisMod, level).
//
// Postcondition: Returns a non-negative integer, or an error if the script
// fails, exceeds its budget or returns a non-number.
func (f *SanityFormula) Cap(class string, wisMod, level int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ret lua.LValue
	err := WithBudget(f.L, f.limit, func() error {
		if err := f.L.CallByParam(lua.P{
			Fn:      f.L.GetGlobal(SanityCapHook),
			NRet:    1,
			Protect: true,
		}, lua.LString(class), lua.LNumber(wisMod), lua.LNumber(level)); err != nil {
			return err
		}
		ret = f.L.Get(-1)
		f.L.Pop(1)
		return nil
	})
	if err != nil {
		f.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", SanityCapHook),
			zap.Error(err),
		)
		return 0, fmt.Errorf("scripting: %s: %w", SanityCapHook, err)
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: %s returned %s, want number", SanityCapHook, ret.Type())
	}
	return max(int(n), 0), nil
}

// Close releases the Lua state.
func (f *SanityFormula) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.L.Close()
}
