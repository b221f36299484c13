// Package scenario provides a bridge between the Go core and Lua-based timeline scripts.
//
// A scenario script drives a headless page run: it scrolls elements in and
// out of view, injects player faults and fires the unload, all on its own
// schedule. The script must define a Run function; the registered globals
// are its only way to touch the page.
package scenario

import (
	"fmt"
	"time"

	"github.com/deferview/deferview/constant"
	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// Hooks are the page-side effects a script can trigger.
type Hooks struct {
	// SetVisible flips an element's viewport visibility.
	SetVisible func(id string, visible bool)

	// Start manually starts a portal's playback.
	Start func(id string)

	// FailPlayer scripts a fault on the named player call of a portal.
	FailPlayer func(id, call string)

	// Unload fires the page teardown.
	Unload func()
}

// Timeline is a loaded, validated scenario script.
type Timeline struct {
	name  string
	state *lua.LState
}

// Load executes and validates a scenario script from the given path.
func Load(path string, hooks Hooks) (*Timeline, error) {
	script, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return LoadString(util.FileStem(path), string(script), hooks)
}

// LoadString executes and validates a scenario script from source text.
func LoadString(name, script string, hooks Hooks) (*Timeline, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerHooks(state, hooks)

	if err := state.DoString(script); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	if state.GetGlobal(constant.ScenarioRunFn).Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is required but not defined in %s", constant.ScenarioRunFn, name)
	}

	return &Timeline{name: name, state: state}, nil
}

// Name returns the scenario's display name.
func (t *Timeline) Name() string {
	return t.name
}

// Run plays the timeline to completion.
func (t *Timeline) Run() error {
	err := t.state.CallByParam(lua.P{
		Fn:      t.state.GetGlobal(constant.ScenarioRunFn),
		NRet:    0,
		Protect: true,
	})
	if err != nil {
		return fmt.Errorf("scenario %s: %w", t.name, err)
	}
	return nil
}

// Close releases the underlying interpreter.
func (t *Timeline) Close() {
	t.state.Close()
}

func registerHooks(state *lua.LState, hooks Hooks) {
	state.SetGlobal("visible", state.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		visible := L.CheckBool(2)
		if hooks.SetVisible != nil {
			hooks.SetVisible(id, visible)
		}
		return 0
	}))

	state.SetGlobal("start", state.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if hooks.Start != nil {
			hooks.Start(id)
		}
		return 0
	}))

	state.SetGlobal("fail_player", state.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		call := L.CheckString(2)
		if hooks.FailPlayer != nil {
			hooks.FailPlayer(id, call)
		}
		return 0
	}))

	state.SetGlobal("unload", state.NewFunction(func(L *lua.LState) int {
		if hooks.Unload != nil {
			hooks.Unload()
		}
		return 0
	}))

	state.SetGlobal("sleep", state.NewFunction(func(L *lua.LState) int {
		ms := L.CheckInt(1)
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return 0
	}))
}
