package compiler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/compiler"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/graphedit"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/logger/mocklogger"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mvariable"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNode(t *testing.T, g *mgraph.Graph, catalog *nodedef.Catalog, definitionID string, x, y float64) mnode.Node {
	t.Helper()
	node, err := catalog.Instantiate(definitionID, mnode.Position{X: x, Y: y})
	require.NoError(t, err)
	require.NoError(t, graphedit.AddNode(g, node))
	return node
}

func connect(t *testing.T, g *mgraph.Graph, from mnode.Node, fromPin string, to mnode.Node, toPin string) {
	t.Helper()
	_, err := graphedit.Connect(g, from.ID, fromPin, to.ID, toPin)
	require.NoError(t, err)
}

func setProperty(g *mgraph.Graph, node mnode.Node, key, value string) {
	live, _ := g.FindNode(node.ID)
	if live.Properties == nil {
		live.Properties = map[string]string{}
	}
	live.Properties[key] = value
}

func fileContent(t *testing.T, res compiler.Result, name string) string {
	t.Helper()
	for _, f := range res.Files {
		if f.Name == name {
			return f.Content
		}
	}
	t.Fatalf("result has no file %q", name)
	return ""
}

// doubleDamageMacro builds a macro taking one float and returning it times
// two, stored the way the session persists macro bodies.
func doubleDamageMacro(t *testing.T, catalog *nodedef.Catalog) msubgraph.SubGraphDefinition {
	t.Helper()
	body := mgraph.New()

	entry, err := catalog.Instantiate(mnode.DefinitionIDMacroEntry, mnode.Position{X: 100, Y: 200})
	require.NoError(t, err)
	entry.Outputs = append(entry.Outputs, mpin.Pin{ID: "amount", Name: "Amount", Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Float()})
	require.NoError(t, graphedit.AddNode(body, entry))

	exit, err := catalog.Instantiate(mnode.DefinitionIDMacroExit, mnode.Position{X: 560, Y: 200})
	require.NoError(t, err)
	exit.Inputs = append(exit.Inputs, mpin.Pin{ID: "result", Name: "Result", Kind: mpin.PIN_KIND_INPUT, Type: mpin.Float()})
	require.NoError(t, graphedit.AddNode(body, exit))

	mult := addNode(t, body, catalog, "math.multiply", 320, 260)
	setProperty(body, mult, "b", "2")

	connect(t, body, entry, nodedef.PinBody, exit, nodedef.PinThen)
	connect(t, body, entry, "amount", mult, "a")
	connect(t, body, mult, "result", exit, "result")

	desc := tgraph.SerializeGraphToDescription(body, catalog, mocklogger.NewMockLogger())
	return msubgraph.SubGraphDefinition{
		ID:        idwrap.NewNow(),
		Name:      "Double Damage",
		Graph:     desc,
		Interface: msubgraph.InterfaceFromDescription(desc),
		Metadata:  msubgraph.Metadata{CreatedAt: time.Now(), ModifiedAt: time.Now()},
	}
}

func macroFnName(def msubgraph.SubGraphDefinition) string {
	id := strings.ToLower(def.ID.String())
	return "double_damage_" + id[len(id)-6:]
}

func TestCompileBranchChain(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	g := mgraph.New()

	begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
	gt := addNode(t, g, catalog, "logic.greater", 240, 220)
	setProperty(g, gt, "a", "5")
	setProperty(g, gt, "b", "3")
	branch := addNode(t, g, catalog, "logic.branch", 420, 120)
	hot := addNode(t, g, catalog, "object.print", 640, 80)
	setProperty(g, hot, "message", "hot")
	cold := addNode(t, g, catalog, "object.print", 640, 220)
	setProperty(g, cold, "message", "cold")

	connect(t, g, begin, nodedef.PinBody, branch, nodedef.PinExec)
	connect(t, g, gt, "result", branch, "condition")
	connect(t, g, branch, nodedef.PinTrue, hot, nodedef.PinExec)
	connect(t, g, branch, nodedef.PinFalse, cold, nodedef.PinExec)

	res, err := compiler.Compile(compiler.Input{
		ClassName: "Enemy",
		Graph:     g,
		Catalog:   catalog,
	}, mocklogger.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"on_begin_play"}, res.Events)

	want := `// Generated by the blueprint compiler for Enemy. Do not edit.

use super::*;

#[allow(unused_variables)]
pub fn on_begin_play(actor: &mut Actor) {
    let greater_1 = (5.0 > 3.0);
    if greater_1 {
        engine::print("hot".to_string());
    } else {
        engine::print("cold".to_string());
    }
}
`
	assert.Equal(t, want, fileContent(t, res, "on_begin_play.rs"))
	assert.Contains(t, fileContent(t, res, "mod.rs"), "pub mod on_begin_play;\n")
}

func TestCompileTickThroughReroute(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	g := mgraph.New()

	tick := addNode(t, g, catalog, "event.tick", 80, 120)
	rr := addNode(t, g, catalog, mnode.DefinitionIDReroute, 220, 200)
	gt := addNode(t, g, catalog, "logic.greater", 360, 200)
	setProperty(g, gt, "b", "0.25")
	branch := addNode(t, g, catalog, "logic.branch", 520, 120)
	fast := addNode(t, g, catalog, "object.print", 700, 120)
	setProperty(g, fast, "message", "fast")

	connect(t, g, tick, "delta_time", rr, nodedef.PinRerouteIn)
	connect(t, g, rr, nodedef.PinRerouteOut, gt, "a")
	connect(t, g, gt, "result", branch, "condition")
	connect(t, g, tick, nodedef.PinBody, branch, nodedef.PinExec)
	connect(t, g, branch, nodedef.PinTrue, fast, nodedef.PinExec)

	res, err := compiler.Compile(compiler.Input{
		ClassName: "Camera",
		Graph:     g,
		Catalog:   catalog,
	}, mocklogger.NewMockLogger())
	require.NoError(t, err)

	content := fileContent(t, res, "on_tick.rs")
	assert.Contains(t, content, "pub fn on_tick(actor: &mut Actor, delta_time: f64) {",
		"the tick event exposes the frame delta as a parameter")
	assert.Contains(t, content, "let greater_1 = (delta_time > 0.25);",
		"data resolution chases through the reroute to the event output")
	assert.Contains(t, content, "if greater_1 {")
	assert.NotContains(t, content, "} else {", "an unwired false pin emits no arm")
}

func TestCompileEventNaming(t *testing.T) {
	t.Run("custom events take their stored name", func(t *testing.T) {
		catalog := nodedef.NewBuiltins()
		g := mgraph.New()
		addNode(t, g, catalog, "event.begin_play", 80, 120)
		custom := addNode(t, g, catalog, "event.custom", 80, 320)
		setProperty(g, custom, nodedef.ParamEventName, "Take Damage")

		res, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())
		require.NoError(t, err)

		assert.Equal(t, []string{"on_begin_play", "event_take_damage"}, res.Events,
			"events generate in title order")
		assert.Contains(t, fileContent(t, res, "event_take_damage.rs"), "pub fn event_take_damage(actor: &mut Actor) {")
	})

	t.Run("colliding names get numeric suffixes", func(t *testing.T) {
		catalog := nodedef.NewBuiltins()
		g := mgraph.New()
		first := addNode(t, g, catalog, "event.custom", 80, 120)
		setProperty(g, first, nodedef.ParamEventName, "Jump")
		second := addNode(t, g, catalog, "event.custom", 80, 320)
		setProperty(g, second, nodedef.ParamEventName, "Jump")

		res, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())
		require.NoError(t, err)

		assert.Equal(t, []string{"event_jump", "event_jump_2"}, res.Events)
	})
}

func TestCompileMacroInstance(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	def := doubleDamageMacro(t, catalog)
	fnName := macroFnName(def)

	t.Run("local macro", func(t *testing.T) {
		g := mgraph.New()
		begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
		inst := nodedef.InstantiateSubGraph(def, "", mnode.Position{X: 320, Y: 120})
		inst.Properties = map[string]string{"amount": "21"}
		require.NoError(t, graphedit.AddNode(g, inst))
		connect(t, g, begin, nodedef.PinBody, inst, msubgraph.ExecInputPinID)

		res, err := compiler.Compile(compiler.Input{
			ClassName:   "Player",
			Graph:       g,
			LocalMacros: []msubgraph.SubGraphDefinition{def},
			Catalog:     catalog,
		}, mocklogger.NewMockLogger())
		require.NoError(t, err)

		macros := fileContent(t, res, "macros.rs")
		assert.Contains(t, macros, "pub fn "+fnName+"(actor: &mut Actor, amount: f64) -> f64 {",
			"interface data pins become parameters and returns")
		assert.Contains(t, macros, "let multiply_1 = (amount * 2.0);")
		assert.Contains(t, macros, "return multiply_1;")

		main := fileContent(t, res, "on_begin_play.rs")
		assert.Contains(t, main, "let result_1 = macros::"+fnName+"(actor, 21.0);")

		mod := fileContent(t, res, "mod.rs")
		assert.Contains(t, mod, "pub mod macros;\n")
		assert.Contains(t, mod, "pub mod on_begin_play;\n")
	})

	t.Run("library macro resolves through the registry", func(t *testing.T) {
		registry := macrolib.NewRegistry([]macrolib.Library{{
			ID:     "engine.core",
			Name:   "Engine Core",
			Macros: []msubgraph.SubGraphDefinition{def},
		}})

		g := mgraph.New()
		begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
		inst := nodedef.InstantiateSubGraph(def, "engine.core", mnode.Position{X: 320, Y: 120})
		require.NoError(t, graphedit.AddNode(g, inst))
		connect(t, g, begin, nodedef.PinBody, inst, msubgraph.ExecInputPinID)

		res, err := compiler.Compile(compiler.Input{
			ClassName: "Player",
			Graph:     g,
			Registry:  registry,
			Catalog:   catalog,
		}, mocklogger.NewMockLogger())
		require.NoError(t, err)

		assert.Contains(t, fileContent(t, res, "on_begin_play.rs"), "macros::"+fnName+"(actor, 0.0);",
			"an unwired macro input falls back to the pin type default")
	})
}

func TestCompileExecFanOutThroughReroutes(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	g := mgraph.New()

	begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
	r1 := addNode(t, g, catalog, mnode.DefinitionIDReroute, 240, 80)
	r2 := addNode(t, g, catalog, mnode.DefinitionIDReroute, 240, 200)
	first := addNode(t, g, catalog, "object.print", 420, 80)
	setProperty(g, first, "message", "first")
	second := addNode(t, g, catalog, "object.print", 420, 200)
	setProperty(g, second, "message", "second")

	// A loaded asset may fan an execution pin out through parallel
	// reroutes; the editor's eviction rules never produce this shape.
	g.Connections = append(g.Connections,
		mconnection.New(idwrap.NewNow(), begin.ID, nodedef.PinBody, r1.ID, nodedef.PinRerouteIn),
		mconnection.New(idwrap.NewNow(), begin.ID, nodedef.PinBody, r2.ID, nodedef.PinRerouteIn),
	)
	connect(t, g, r1, nodedef.PinRerouteOut, first, nodedef.PinExec)
	connect(t, g, r2, nodedef.PinRerouteOut, second, nodedef.PinExec)

	res, err := compiler.Compile(compiler.Input{ClassName: "Spawner", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())
	require.NoError(t, err)

	content := fileContent(t, res, "on_begin_play.rs")
	firstAt := strings.Index(content, `engine::print("first".to_string());`)
	secondAt := strings.Index(content, `engine::print("second".to_string());`)
	require.GreaterOrEqual(t, firstAt, 0)
	require.GreaterOrEqual(t, secondAt, 0)
	assert.Less(t, firstAt, secondAt, "fan-out targets emit in wire order")
}

func TestCompileNoEventNodes(t *testing.T) {
	catalog := nodedef.NewBuiltins()

	t.Run("empty graph", func(t *testing.T) {
		_, err := compiler.Compile(compiler.Input{ClassName: "Empty", Graph: mgraph.New(), Catalog: catalog}, mocklogger.NewMockLogger())
		assert.ErrorIs(t, err, compiler.ErrNoEventNodes)
	})

	t.Run("graph without events", func(t *testing.T) {
		g := mgraph.New()
		addNode(t, g, catalog, "math.add", 80, 120)
		_, err := compiler.Compile(compiler.Input{ClassName: "Mathy", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())
		assert.ErrorIs(t, err, compiler.ErrNoEventNodes)
	})
}

func TestCompileUnresolvedNodeType(t *testing.T) {
	catalog := nodedef.NewBuiltins()

	t.Run("unknown definition fails even when disconnected", func(t *testing.T) {
		g := mgraph.New()
		addNode(t, g, catalog, "event.begin_play", 80, 120)
		ghost := nodedef.GenericNode("plugin.super_jump", mnode.Position{X: 500, Y: 100})
		require.NoError(t, graphedit.AddNode(g, ghost))

		_, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())

		var unresolved *compiler.UnresolvedNodeTypeError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "plugin.super_jump", unresolved.DefinitionID)
		assert.Equal(t, ghost.ID, unresolved.NodeID)
	})

	t.Run("macro instance without a definition", func(t *testing.T) {
		orphan := msubgraph.NewLocalMacro(idwrap.NewNow(), "Gone", time.Now())

		g := mgraph.New()
		addNode(t, g, catalog, "event.begin_play", 80, 120)
		inst := nodedef.InstantiateSubGraph(orphan, "", mnode.Position{X: 320, Y: 120})
		require.NoError(t, graphedit.AddNode(g, inst))

		_, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())

		var unresolved *compiler.UnresolvedNodeTypeError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, inst.DefinitionID, unresolved.DefinitionID)
	})
}

func TestCompileUnboundImpureOutput(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	g := mgraph.New()

	begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
	spawn := addNode(t, g, catalog, "object.spawn", 240, 320)
	destroy := addNode(t, g, catalog, "object.destroy", 420, 120)

	connect(t, g, begin, nodedef.PinBody, destroy, nodedef.PinExec)
	connect(t, g, spawn, "spawned", destroy, "target")

	_, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())

	var genErr *compiler.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "has not executed on this path",
		"reading an output of a node outside the execution chain is rejected")
	assert.Contains(t, err.Error(), "event on_begin_play", "the failing event is named")
}

func TestCompileExpressionNode(t *testing.T) {
	buildGraph := func(t *testing.T, catalog *nodedef.Catalog, source string) *mgraph.Graph {
		t.Helper()
		g := mgraph.New()
		begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
		expr := addNode(t, g, catalog, "logic.expression", 240, 220)
		setProperty(g, expr, nodedef.ParamExpression, source)
		branch := addNode(t, g, catalog, "logic.branch", 420, 120)
		win := addNode(t, g, catalog, "object.print", 640, 120)
		setProperty(g, win, "message", "winning")
		connect(t, g, begin, nodedef.PinBody, branch, nodedef.PinExec)
		connect(t, g, expr, "result", branch, "condition")
		connect(t, g, branch, nodedef.PinTrue, win, nodedef.PinExec)
		return g
	}

	t.Run("valid expression embeds as a raw string", func(t *testing.T) {
		catalog := nodedef.NewBuiltins()
		g := buildGraph(t, catalog, "health > 50")

		res, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())
		require.NoError(t, err)

		assert.Contains(t, fileContent(t, res, "on_begin_play.rs"),
			`let expression_1 = engine::eval_expr(r"health > 50");`)
	})

	t.Run("invalid expression fails the compile", func(t *testing.T) {
		catalog := nodedef.NewBuiltins()
		g := buildGraph(t, catalog, "health >")

		_, err := compiler.Compile(compiler.Input{ClassName: "Player", Graph: g, Catalog: catalog}, mocklogger.NewMockLogger())

		var genErr *compiler.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Contains(t, genErr.Reason, "invalid expression")
	})
}

func TestCompileVariablesBlock(t *testing.T) {
	catalog := nodedef.NewBuiltins()
	g := mgraph.New()
	addNode(t, g, catalog, "event.begin_play", 80, 120)

	health := mvariable.New(idwrap.NewNow(), "Health", mpin.Float())
	health.DefaultValue = "100"
	name := mvariable.New(idwrap.NewNow(), "Name", mpin.String())
	name.DefaultValue = "Bob"

	res, err := compiler.Compile(compiler.Input{
		ClassName: "player",
		Graph:     g,
		Variables: []mvariable.Variable{health, name},
		Catalog:   catalog,
	}, mocklogger.NewMockLogger())
	require.NoError(t, err)

	mod := fileContent(t, res, "mod.rs")
	assert.Contains(t, mod, "pub struct PlayerVars {\n    pub health: f64,\n    pub name: String,\n}")
	assert.Contains(t, mod, "health: 100.0,")
	assert.Contains(t, mod, `name: "Bob".to_string(),`)
	assert.Contains(t, mod, "impl Default for PlayerVars {")
}

func TestCompileRecursiveMacro(t *testing.T) {
	catalog := nodedef.NewBuiltins()

	id := idwrap.NewNow()
	body := mgraph.New()
	entry, err := catalog.Instantiate(mnode.DefinitionIDMacroEntry, mnode.Position{X: 100, Y: 200})
	require.NoError(t, err)
	require.NoError(t, graphedit.AddNode(body, entry))
	exit, err := catalog.Instantiate(mnode.DefinitionIDMacroExit, mnode.Position{X: 560, Y: 200})
	require.NoError(t, err)
	require.NoError(t, graphedit.AddNode(body, exit))

	self := mnode.Node{
		ID:           idwrap.NewNow(),
		DefinitionID: mnode.SubGraphDefinitionID("", id),
		Title:        "Infinite",
		Kind:         mnode.NODE_KIND_MACRO_INSTANCE,
		Position:     mnode.Position{X: 320, Y: 200},
		Inputs:       []mpin.Pin{{ID: msubgraph.ExecInputPinID, Kind: mpin.PIN_KIND_INPUT, Type: mpin.Execution()}},
		Outputs:      []mpin.Pin{{ID: msubgraph.ExecOutputPinID, Kind: mpin.PIN_KIND_OUTPUT, Type: mpin.Execution()}},
	}
	require.NoError(t, graphedit.AddNode(body, self))
	connect(t, body, entry, nodedef.PinBody, self, msubgraph.ExecInputPinID)
	connect(t, body, self, msubgraph.ExecOutputPinID, exit, nodedef.PinThen)

	desc := tgraph.SerializeGraphToDescription(body, catalog, mocklogger.NewMockLogger())
	def := msubgraph.SubGraphDefinition{
		ID:        id,
		Name:      "Infinite",
		Graph:     desc,
		Interface: msubgraph.InterfaceFromDescription(desc),
	}

	g := mgraph.New()
	begin := addNode(t, g, catalog, "event.begin_play", 80, 120)
	inst := nodedef.InstantiateSubGraph(def, "", mnode.Position{X: 320, Y: 120})
	require.NoError(t, graphedit.AddNode(g, inst))
	connect(t, g, begin, nodedef.PinBody, inst, msubgraph.ExecInputPinID)

	_, err = compiler.Compile(compiler.Input{
		ClassName:   "Player",
		Graph:       g,
		LocalMacros: []msubgraph.SubGraphDefinition{def},
		Catalog:     catalog,
	}, mocklogger.NewMockLogger())

	var genErr *compiler.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "recursively")
}

func TestWriteFiles(t *testing.T) {
	t.Run("writes and replaces the output tree", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "generated", "player")

		require.NoError(t, compiler.WriteFiles(dir, []compiler.File{
			{Name: "mod.rs", Content: "pub mod on_begin_play;\n"},
			{Name: "on_begin_play.rs", Content: "pub fn on_begin_play() {}\n"},
		}))

		data, err := os.ReadFile(filepath.Join(dir, "mod.rs"))
		require.NoError(t, err)
		assert.Equal(t, "pub mod on_begin_play;\n", string(data))

		require.NoError(t, compiler.WriteFiles(dir, []compiler.File{
			{Name: "mod.rs", Content: "pub mod on_tick;\n"},
			{Name: "on_tick.rs", Content: "pub fn on_tick() {}\n"},
		}))

		_, err = os.Stat(filepath.Join(dir, "on_begin_play.rs"))
		assert.True(t, os.IsNotExist(err), "stale files from the previous run are gone")
		_, err = os.Stat(dir + ".old")
		assert.True(t, os.IsNotExist(err), "the swap directory is cleaned up")

		entries, err := os.ReadDir(filepath.Dir(dir))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no staging residue beside the output")
	})

	t.Run("a failed write leaves the previous output intact", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "generated", "player")
		require.NoError(t, compiler.WriteFiles(dir, []compiler.File{
			{Name: "mod.rs", Content: "pub mod on_begin_play;\n"},
		}))

		err := compiler.WriteFiles(dir, []compiler.File{
			{Name: "missing/sub.rs", Content: "nope"},
		})
		require.Error(t, err)

		data, readErr := os.ReadFile(filepath.Join(dir, "mod.rs"))
		require.NoError(t, readErr)
		assert.Equal(t, "pub mod on_begin_play;\n", string(data))
	})
}
