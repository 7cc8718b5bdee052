// Package scripting provides a sandboxed GopherLua environment for the
// user-replaceable formulas of a character sheet, such as the sanity cap.
// It has no dependency on the character model; inputs are passed as plain values.
package scripting

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit applies when no positive limit is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted is wrapped by WithBudget when a call used up its opcodes.
var ErrBudgetExhausted = errors.New("lua instruction budget exhausted")

// Globals stripped from every sandbox. os, io and debug are never opened.
var blockedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opBudget is a context that the VM polls once per opcode; it cancels
// itself when the allowance reaches zero. An LState runs on one goroutine,
// so the counter needs no synchronisation.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   int64
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left--; b.left <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func (b *opBudget) spent() bool { return b.left <= 0 }

// NewSandboxedState opens a state with only the base, table, string and math
// libraries. It carries no budget until a call is wrapped with WithBudget.
// The caller closes it.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// WithBudget runs fn while L may execute at most limit opcodes, or
// DefaultInstructionLimit when limit is not positive.
func WithBudget(L *lua.LState, limit int, fn func() error) error {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &opBudget{Context: ctx, cancel: cancel, left: int64(limit)}
	defer cancel()

	L.SetContext(b)
	err := fn()
	L.RemoveContext()
	if err != nil && b.spent() {
		return fmt.Errorf("%w after %d opcodes: %v", ErrBudgetExhausted, limit, err)
	}
	return err
}
