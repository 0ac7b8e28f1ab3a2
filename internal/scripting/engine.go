// Package scripting embeds a single gopher-lua VM that evaluates a
// user-supplied destroy predicate against a slot's kind and a small set of
// numeric fields, for the poolctl "demo" command.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only — the
// demo's tick loop, same as the pool it drives.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files directly under dir. A missing directory is
// not an error — a demo run with no scripts simply has no predicate
// overrides.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DestroyContext is the pre-packed data passed to should_destroy.
type DestroyContext struct {
	RefIndex   int
	Generation int
	Kind       int
	Value      int
	Age        int // ticks since spawn
}

// ShouldDestroy calls the Lua global should_destroy(ctx) -> bool. If no
// such function is defined, it returns false: the demo keeps every slot
// unless a script opts it in for destruction.
func (e *Engine) ShouldDestroy(ctx DestroyContext) bool {
	fn := e.vm.GetGlobal("should_destroy")
	if fn == lua.LNil {
		return false
	}

	t := e.vm.NewTable()
	t.RawSetString("ref_index", lua.LNumber(ctx.RefIndex))
	t.RawSetString("generation", lua.LNumber(ctx.Generation))
	t.RawSetString("kind", lua.LNumber(ctx.Kind))
	t.RawSetString("value", lua.LNumber(ctx.Value))
	t.RawSetString("age", lua.LNumber(ctx.Age))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua should_destroy error", zap.Error(err))
		return false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
