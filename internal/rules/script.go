package rules

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// scriptHook is the global function a rules script defines.
const scriptHook = "on_collide"

// Party describes one side of a collision as seen by a script.
type Party struct {
	ID               uint64
	Kind             string
	Row, Col         int
	TickRate         float64
	AccelerationRate float64
	Speed            float64
}

// Script wraps a single gopher-lua VM holding collision rules.
// Single-goroutine access only (the simulation loop).
type Script struct {
	vm  *lua.LState
	log *log.Logger
}

// LoadScript runs the Lua file at path and keeps its globals.
func LoadScript(path string, logger *log.Logger) (*Script, error) {
	s := newScript(logger)
	if err := s.vm.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("rules: load %s: %w", path, err)
	}
	s.log.Debug("loaded lua script", "file", path)
	return s, nil
}

// NewScript runs Lua source directly.
func NewScript(src string, logger *log.Logger) (*Script, error) {
	s := newScript(logger)
	if err := s.vm.DoString(src); err != nil {
		s.Close()
		return nil, fmt.Errorf("rules: load script: %w", err)
	}
	return s, nil
}

func newScript(logger *log.Logger) *Script {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Script{vm: vm, log: logger}
}

// Close releases the VM.
func (s *Script) Close() {
	if s.vm != nil {
		s.vm.Close()
		s.vm = nil
	}
}

// OnCollide calls on_collide(other, mover). It reports false when the
// hook is missing, fails, or returns nil, so the native rule applies.
func (s *Script) OnCollide(other, mover Party) (Effect, bool) {
	fn := s.vm.GetGlobal(scriptHook)
	if fn == lua.LNil {
		return Effect{}, false
	}

	if err := s.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, s.party(other), s.party(mover)); err != nil {
		s.log.Error("lua on_collide error", "error", err)
		return Effect{}, false
	}

	result := s.vm.Get(-1)
	s.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		if result != lua.LNil {
			s.log.Warn("lua on_collide returned non-table", "type", result.Type().String())
		}
		return Effect{}, false
	}

	return Effect{
		Consume:               lua.LVAsBool(rt.RawGetString("consume")),
		Score:                 int(lua.LVAsNumber(rt.RawGetString("score"))),
		TickRateDelta:         float64(lua.LVAsNumber(rt.RawGetString("tick_rate_delta"))),
		AccelerationRateDelta: float64(lua.LVAsNumber(rt.RawGetString("acceleration_rate_delta"))),
		Win:                   lua.LVAsBool(rt.RawGetString("win")),
		Message:               lua.LVAsString(rt.RawGetString("message")),
	}, true
}

func (s *Script) party(p Party) *lua.LTable {
	t := s.vm.NewTable()
	t.RawSetString("id", lua.LNumber(p.ID))
	t.RawSetString("kind", lua.LString(p.Kind))
	t.RawSetString("row", lua.LNumber(p.Row))
	t.RawSetString("col", lua.LNumber(p.Col))
	t.RawSetString("tick_rate", lua.LNumber(p.TickRate))
	t.RawSetString("acceleration_rate", lua.LNumber(p.AccelerationRate))
	t.RawSetString("speed", lua.LNumber(p.Speed))
	return t
}
