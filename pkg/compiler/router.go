package compiler

import (
	"fmt"
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
)

// scope maps produced data outputs, addressed as ports, to the let
// bindings holding them. Branch arms get child scopes so a binding emitted
// inside one arm is not visible to the other.
type scope struct {
	parent   *scope
	bindings map[mconnection.Port]string
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: map[mconnection.Port]string{}}
}

func (s *scope) lookup(k mconnection.Port) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if name, ok := cur.bindings[k]; ok {
			return name, true
		}
	}
	return "", false
}

func (s *scope) bind(k mconnection.Port, name string) {
	s.bindings[k] = name
}

// emitter generates the body of one function. Each event and each macro
// gets a fresh emitter so binding names and cycle state never leak across
// functions.
type emitter struct {
	gen      *generator
	g        *mgraph.Graph
	fn       string
	next     mconnection.ConnectionsMap
	incoming map[mconnection.Port]mconnection.Connection

	lines   []string
	counter int

	// onPath holds the nodes on the current execution path; revisiting one
	// is a true cycle. emitted caps total emissions so a pathological graph
	// cannot wedge the compiler.
	onPath     map[idwrap.IDWrap]bool
	emitted    int
	maxEmitted int

	inMacro     bool
	exitOutputs []msubgraph.SubGraphPin
}

func newEmitter(gen *generator, g *mgraph.Graph, fn string) *emitter {
	incoming := make(map[mconnection.Port]mconnection.Connection, len(g.Connections))
	for _, c := range g.Connections {
		incoming[c.Target()] = c
	}
	maxEmitted := len(g.Nodes) * len(g.Nodes)
	if maxEmitted < 10000 {
		maxEmitted = 10000
	}
	return &emitter{
		gen:        gen,
		g:          g,
		fn:         fn,
		next:       mconnection.NewConnectionsMap(g.Connections),
		incoming:   incoming,
		onPath:     map[idwrap.IDWrap]bool{},
		maxEmitted: maxEmitted,
	}
}

func (e *emitter) linef(depth int, format string, args ...any) {
	e.lines = append(e.lines, strings.Repeat("    ", depth)+fmt.Sprintf(format, args...))
}

func (e *emitter) nextName(base string) string {
	e.counter++
	return fmt.Sprintf("%s_%d", sanitizeIdent(base), e.counter)
}

func (e *emitter) genErr(node *mnode.Node, reason string) error {
	return &GenerationError{
		Scope:  e.fn,
		Reason: fmt.Sprintf("node %q (%s): %s", node.Title, node.ID.String(), reason),
	}
}

// execTargets returns the nodes reached from one execution output with
// reroute hops resolved, preserving wire order. Fan-out through parallel
// reroutes yields multiple targets.
func (e *emitter) execTargets(nodeID idwrap.IDWrap, pinID string) []*mnode.Node {
	var out []*mnode.Node
	e.collectExecTargets(nodeID, pinID, map[idwrap.IDWrap]bool{}, &out)
	return out
}

func (e *emitter) collectExecTargets(nodeID idwrap.IDWrap, pinID string, seen map[idwrap.IDWrap]bool, out *[]*mnode.Node) {
	for _, targetID := range mconnection.GetNextNodeIDs(e.next, nodeID, pinID) {
		target, ok := e.g.FindNode(targetID)
		if !ok {
			continue
		}
		if target.Kind == mnode.NODE_KIND_REROUTE {
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			e.collectExecTargets(target.ID, nodedef.PinRerouteOut, seen, out)
			continue
		}
		*out = append(*out, target)
	}
}

func (e *emitter) emitChain(nodeID idwrap.IDWrap, pinID string, sc *scope, depth int) error {
	for _, target := range e.execTargets(nodeID, pinID) {
		if err := e.emitNode(target, sc, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitNode(node *mnode.Node, sc *scope, depth int) error {
	e.emitted++
	if e.emitted > e.maxEmitted {
		return e.genErr(node, "execution flow is too large, aborting")
	}
	if e.onPath[node.ID] {
		return e.genErr(node, "execution flow loops back on itself")
	}
	e.onPath[node.ID] = true
	defer delete(e.onPath, node.ID)

	switch node.Kind {
	case mnode.NODE_KIND_LOGIC:
		return e.emitBranch(node, sc, depth)
	case mnode.NODE_KIND_OBJECT:
		return e.emitObjectOp(node, sc, depth)
	case mnode.NODE_KIND_MACRO_INSTANCE:
		if err := e.emitMacroInvocation(node, sc, depth); err != nil {
			return err
		}
		for _, out := range node.Outputs {
			if out.Type.IsExecution() {
				return e.emitChain(node.ID, out.ID, sc, depth)
			}
		}
		return nil
	case mnode.NODE_KIND_MACRO_EXIT:
		return e.emitMacroReturn(node, sc, depth)
	case mnode.NODE_KIND_MACRO_ENTRY:
		return e.genErr(node, "macro entry cannot appear mid-flow")
	default:
		return e.genErr(node, fmt.Sprintf("node type %q cannot appear in an execution chain", node.DefinitionID))
	}
}

func (e *emitter) emitBranch(node *mnode.Node, sc *scope, depth int) error {
	if node.DefinitionID != "logic.branch" {
		return e.genErr(node, fmt.Sprintf("no code generation rule for node type %q", node.DefinitionID))
	}
	trueTargets := e.execTargets(node.ID, nodedef.PinTrue)
	falseTargets := e.execTargets(node.ID, nodedef.PinFalse)
	if len(trueTargets) == 0 && len(falseTargets) == 0 {
		return nil
	}

	cond, err := e.resolveInput(node, "condition", sc, depth)
	if err != nil {
		return err
	}
	e.linef(depth, "if %s {", cond)
	trueScope := newScope(sc)
	for _, t := range trueTargets {
		if err := e.emitNode(t, trueScope, depth+1); err != nil {
			return err
		}
	}
	if len(falseTargets) > 0 {
		e.linef(depth, "} else {")
		falseScope := newScope(sc)
		for _, t := range falseTargets {
			if err := e.emitNode(t, falseScope, depth+1); err != nil {
				return err
			}
		}
	}
	e.linef(depth, "}")
	return nil
}

func (e *emitter) emitObjectOp(node *mnode.Node, sc *scope, depth int) error {
	switch node.DefinitionID {
	case "object.print":
		message, err := e.resolveInput(node, "message", sc, depth)
		if err != nil {
			return err
		}
		e.linef(depth, "engine::print(%s);", message)
	case "object.set_location":
		target, err := e.resolveInput(node, "target", sc, depth)
		if err != nil {
			return err
		}
		location, err := e.resolveInput(node, "location", sc, depth)
		if err != nil {
			return err
		}
		e.linef(depth, "engine::set_location(%s, %s);", target, location)
	case "object.spawn":
		class, err := e.resolveInput(node, "class", sc, depth)
		if err != nil {
			return err
		}
		location, err := e.resolveInput(node, "location", sc, depth)
		if err != nil {
			return err
		}
		name := e.nextName("spawned")
		e.linef(depth, "let %s = engine::spawn(%s, %s);", name, class, location)
		sc.bind(mconnection.Port{NodeID: node.ID, PinID: "spawned"}, name)
	case "object.destroy":
		target, err := e.resolveInput(node, "target", sc, depth)
		if err != nil {
			return err
		}
		e.linef(depth, "engine::destroy(%s);", target)
	default:
		return e.genErr(node, fmt.Sprintf("no code generation rule for node type %q", node.DefinitionID))
	}
	return e.emitChain(node.ID, nodedef.PinThen, sc, depth)
}

// emitMacroInvocation emits the call and binds every data output. The
// impure caller continues the chain afterwards; the pure caller reads a
// binding back out of the scope.
func (e *emitter) emitMacroInvocation(node *mnode.Node, sc *scope, depth int) error {
	def, libraryID, err := e.gen.resolveMacroInstance(node)
	if err != nil {
		return err
	}
	fnName, err := e.gen.macroFunction(def, libraryID)
	if err != nil {
		return err
	}

	args := []string{"actor"}
	for _, in := range node.Inputs {
		if in.Type.IsExecution() {
			continue
		}
		expr, err := e.resolveInput(node, in.ID, sc, depth)
		if err != nil {
			return err
		}
		args = append(args, expr)
	}

	var outs []mpin.Pin
	for _, out := range node.Outputs {
		if !out.Type.IsExecution() {
			outs = append(outs, out)
		}
	}
	call := fmt.Sprintf("macros::%s(%s)", fnName, strings.Join(args, ", "))
	switch len(outs) {
	case 0:
		e.linef(depth, "%s;", call)
	case 1:
		name := e.nextName(outs[0].ID)
		e.linef(depth, "let %s = %s;", name, call)
		sc.bind(mconnection.Port{NodeID: node.ID, PinID: outs[0].ID}, name)
	default:
		names := make([]string, len(outs))
		for i, out := range outs {
			names[i] = e.nextName(out.ID)
			sc.bind(mconnection.Port{NodeID: node.ID, PinID: out.ID}, names[i])
		}
		e.linef(depth, "let (%s) = %s;", strings.Join(names, ", "), call)
	}
	return nil
}

// emitMacroReturn renders an exit node as an early return matching the
// macro's interface outputs. Exit pins missing from an older node variant
// fall back to the output type's default.
func (e *emitter) emitMacroReturn(node *mnode.Node, sc *scope, depth int) error {
	if !e.inMacro {
		return e.genErr(node, "macro exit outside a macro body")
	}
	exprs := make([]string, 0, len(e.exitOutputs))
	for _, p := range e.exitOutputs {
		if _, ok := node.FindInput(p.ID); ok {
			expr, err := e.resolveInput(node, p.ID, sc, depth)
			if err != nil {
				return err
			}
			exprs = append(exprs, expr)
			continue
		}
		text, err := rustLiteral(p.Type, p.Type.DefaultLiteral())
		if err != nil {
			return e.genErr(node, fmt.Sprintf("output %q has no default value", p.ID))
		}
		exprs = append(exprs, text)
	}
	switch len(exprs) {
	case 0:
		e.linef(depth, "return;")
	case 1:
		e.linef(depth, "return %s;", exprs[0])
	default:
		e.linef(depth, "return (%s);", strings.Join(exprs, ", "))
	}
	return nil
}
