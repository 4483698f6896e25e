package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/otgo/server/internal/world"
)

// maxHookDepth caps re-entrant hook recursion: a scripted move that
// triggers another hooked move, and so on. Past the cap the innermost
// operation fails instead of overflowing the stack.
const maxHookDepth = 16

// Engine wraps a single gopher-lua VM for the scripted movement hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	depth int
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory and its items/ and movement/ subdirectories.
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
	for _, sub := range []string{"items", "movement"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// ── Movement hooks ──────────────────────────────────────────────────

// OnItemMove calls Lua on_item_move(ctx). The script vetoes the move by
// returning false or a numeric failure value.
func (e *Engine) OnItemMove(actor world.Creature, item *world.Item, from, to world.Cylinder, count uint32) world.ReturnValue {
	return e.callVetoHook("on_item_move", e.itemMoveContext(actor, item, from, to, count))
}

// OnItemMoved calls Lua on_item_moved(ctx) after a committed move.
func (e *Engine) OnItemMoved(actor world.Creature, item *world.Item, from, to world.Cylinder, count uint32) {
	e.callNotifyHook("on_item_moved", e.itemMoveContext(actor, item, from, to, count))
}

// OnCreatureMove calls Lua on_creature_move(ctx) before a step commits.
func (e *Engine) OnCreatureMove(c world.Creature, from, to *world.Tile) world.ReturnValue {
	return e.callVetoHook("on_creature_move", e.creatureMoveContext(c, from, to))
}

// OnCreatureMoved calls Lua on_creature_moved(ctx) after a committed step.
func (e *Engine) OnCreatureMoved(c world.Creature, from, to *world.Tile) {
	e.callNotifyHook("on_creature_moved", e.creatureMoveContext(c, from, to))
}

// OnEquip calls Lua on_equip(ctx) before an inventory slot accepts an item.
func (e *Engine) OnEquip(p *world.Player, item *world.Item, slot int) world.ReturnValue {
	return e.callVetoHook("on_equip", e.equipContext(p, item, slot))
}

// OnDeEquip calls Lua on_deequip(ctx) before an inventory slot releases an
// item.
func (e *Engine) OnDeEquip(p *world.Player, item *world.Item, slot int) world.ReturnValue {
	return e.callVetoHook("on_deequip", e.equipContext(p, item, slot))
}

// ── Context tables ──────────────────────────────────────────────────

func (e *Engine) itemMoveContext(actor world.Creature, item *world.Item, from, to world.Cylinder, count uint32) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("item_id", lua.LNumber(item.ID()))
	t.RawSetString("count", lua.LNumber(count))
	t.RawSetString("action_id", lua.LNumber(item.ActionID()))
	t.RawSetString("unique_id", lua.LNumber(item.UniqueID()))
	if actor != nil {
		t.RawSetString("actor_id", lua.LNumber(actor.ID()))
		t.RawSetString("actor_name", lua.LString(actor.Name()))
	}
	t.RawSetString("from", e.positionTable(cylinderPos(from)))
	t.RawSetString("to", e.positionTable(cylinderPos(to)))
	return t
}

func (e *Engine) creatureMoveContext(c world.Creature, from, to *world.Tile) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("creature_id", lua.LNumber(c.ID()))
	t.RawSetString("creature_name", lua.LString(c.Name()))
	t.RawSetString("is_player", lua.LBool(c.AsPlayer() != nil))
	if from != nil {
		t.RawSetString("from", e.positionTable(from.Pos()))
	}
	if to != nil {
		t.RawSetString("to", e.positionTable(to.Pos()))
	}
	return t
}

func (e *Engine) equipContext(p *world.Player, item *world.Item, slot int) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("player_id", lua.LNumber(p.ID()))
	t.RawSetString("player_name", lua.LString(p.Name()))
	t.RawSetString("level", lua.LNumber(p.Level()))
	t.RawSetString("item_id", lua.LNumber(item.ID()))
	t.RawSetString("slot", lua.LNumber(slot))
	t.RawSetString("wield_info", lua.LString(item.Type().WieldInfo))
	return t
}

func (e *Engine) positionTable(pos world.Position) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(pos.X))
	t.RawSetString("y", lua.LNumber(pos.Y))
	t.RawSetString("z", lua.LNumber(pos.Z))
	return t
}

func cylinderPos(c world.Cylinder) world.Position {
	if t, ok := c.(world.Thing); ok {
		return t.MapPosition()
	}
	return world.Position{X: world.NoPos}
}

// ── Call plumbing ───────────────────────────────────────────────────

// callVetoHook runs a pre-hook. Missing functions allow; script errors
// allow too, so a broken script never wedges the world.
func (e *Engine) callVetoHook(name string, ctx *lua.LTable) world.ReturnValue {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return world.RetNoError
	}
	if e.depth >= maxHookDepth {
		e.log.Warn("hook recursion limit hit", zap.String("hook", name))
		return world.RetRecursionLimit
	}
	e.depth++
	defer func() { e.depth-- }()

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
		return world.RetNoError
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case lua.LBool:
		if bool(v) {
			return world.RetNoError
		}
		return world.RetNotPossible
	case lua.LNumber:
		return world.ReturnValue(int(v))
	}
	return world.RetNoError
}

// callNotifyHook runs a post-hook; the return value is ignored.
func (e *Engine) callNotifyHook(name string, ctx *lua.LTable) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if e.depth >= maxHookDepth {
		e.log.Warn("hook recursion limit hit", zap.String("hook", name))
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
	}
}
