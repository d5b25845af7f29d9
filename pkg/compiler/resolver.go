package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/expression"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
)

// resolveInput renders the expression feeding one input pin. Resolution
// order: a connected source (pure sources are hoisted to let bindings on
// first use, impure sources must already have executed on this path), then
// the node's literal property, then the pin type's default.
func (e *emitter) resolveInput(node *mnode.Node, pinID string, sc *scope, depth int) (string, error) {
	pin, ok := node.FindInput(pinID)
	if !ok {
		return "", e.genErr(node, fmt.Sprintf("missing input pin %q", pinID))
	}

	if srcID, srcPin, connected := e.dataSource(node.ID, pinID); connected {
		key := mconnection.Port{NodeID: srcID, PinID: srcPin}
		if name, bound := sc.lookup(key); bound {
			return name, nil
		}
		src, found := e.g.FindNode(srcID)
		if !found {
			return "", e.genErr(node, fmt.Sprintf("input %q is wired to a node that no longer exists", pinID))
		}
		if nodeIsPure(src) {
			if err := e.emitPure(src, sc, depth); err != nil {
				return "", err
			}
			if name, bound := sc.lookup(key); bound {
				return name, nil
			}
			return "", e.genErr(node, fmt.Sprintf("input %q reads missing output %q of %q", pinID, srcPin, src.Title))
		}
		return "", e.genErr(node, fmt.Sprintf("input %q reads output %q of %q, which has not executed on this path", pinID, srcPin, src.Title))
	}

	if literal, ok := node.Properties[pinID]; ok {
		text, err := rustLiteral(pin.Type, literal)
		if err != nil {
			return "", e.genErr(node, fmt.Sprintf("property %q: %v", pinID, err))
		}
		return text, nil
	}

	text, err := rustLiteral(pin.Type, pin.Type.DefaultLiteral())
	if err != nil {
		return "", e.genErr(node, fmt.Sprintf("input %q has no value", pinID))
	}
	return text, nil
}

// dataSource follows the connection into an input pin back through any
// reroute chain to the producing node and pin.
func (e *emitter) dataSource(nodeID idwrap.IDWrap, pinID string) (idwrap.IDWrap, string, bool) {
	seen := map[idwrap.IDWrap]bool{}
	cur := mconnection.Port{NodeID: nodeID, PinID: pinID}
	for {
		c, ok := e.incoming[cur]
		if !ok {
			return idwrap.IDWrap{}, "", false
		}
		src, found := e.g.FindNode(c.FromNodeID)
		if !found {
			return idwrap.IDWrap{}, "", false
		}
		if src.Kind != mnode.NODE_KIND_REROUTE {
			return src.ID, c.FromPinID, true
		}
		if seen[src.ID] {
			return idwrap.IDWrap{}, "", false
		}
		seen[src.ID] = true
		cur = mconnection.Port{NodeID: src.ID, PinID: nodedef.PinRerouteIn}
	}
}

// nodeIsPure mirrors Definition.IsPure on an instantiated node, so it also
// covers macro instances whose interfaces carry no execution pins.
func nodeIsPure(n *mnode.Node) bool {
	for _, p := range n.Inputs {
		if p.Type.IsExecution() {
			return false
		}
	}
	for _, p := range n.Outputs {
		if p.Type.IsExecution() {
			return false
		}
	}
	return true
}

// emitPure hoists a pure node into a let binding and records every output
// in the scope. Pure inputs recurse, so a chain of math nodes unwinds into
// ordered bindings ahead of the statement that needed them.
func (e *emitter) emitPure(node *mnode.Node, sc *scope, depth int) error {
	e.emitted++
	if e.emitted > e.maxEmitted {
		return e.genErr(node, "data flow is too large, aborting")
	}
	if e.onPath[node.ID] {
		return e.genErr(node, "data flow loops back on itself")
	}
	e.onPath[node.ID] = true
	defer delete(e.onPath, node.ID)

	if node.Kind == mnode.NODE_KIND_MACRO_INSTANCE {
		return e.emitMacroInvocation(node, sc, depth)
	}

	args := map[string]string{}
	for _, in := range node.Inputs {
		expr, err := e.resolveInput(node, in.ID, sc, depth)
		if err != nil {
			return err
		}
		args[in.ID] = expr
	}

	expr, err := e.pureExpr(node, args)
	if err != nil {
		return err
	}
	name := e.nextName(pureSlug(node.DefinitionID))
	e.linef(depth, "let %s = %s;", name, expr)
	for _, out := range node.Outputs {
		sc.bind(mconnection.Port{NodeID: node.ID, PinID: out.ID}, name)
	}
	return nil
}

func (e *emitter) pureExpr(node *mnode.Node, args map[string]string) (string, error) {
	switch node.DefinitionID {
	case "math.add":
		return binaryExpr(args, "+"), nil
	case "math.subtract":
		return binaryExpr(args, "-"), nil
	case "math.multiply":
		return binaryExpr(args, "*"), nil
	case "math.divide":
		return binaryExpr(args, "/"), nil
	case "logic.and":
		return binaryExpr(args, "&&"), nil
	case "logic.or":
		return binaryExpr(args, "||"), nil
	case "logic.equals":
		return binaryExpr(args, "=="), nil
	case "logic.greater":
		return binaryExpr(args, ">"), nil
	case "logic.not":
		return fmt.Sprintf("(!%s)", args["value"]), nil
	case "logic.expression":
		src := strings.TrimSpace(node.Properties[nodedef.ParamExpression])
		if src == "" {
			return "", e.genErr(node, "expression node has no expression")
		}
		if err := expression.Validate(src); err != nil {
			return "", &GenerationError{
				Scope:  e.fn,
				Reason: fmt.Sprintf("node %q has an invalid expression", node.Title),
				Err:    err,
			}
		}
		return fmt.Sprintf("engine::eval_expr(%s)", rustRawString(src)), nil
	case "object.get_location":
		return fmt.Sprintf("engine::get_location(%s)", args["target"]), nil
	default:
		return "", e.genErr(node, fmt.Sprintf("no code generation rule for node type %q", node.DefinitionID))
	}
}

func binaryExpr(args map[string]string, op string) string {
	return fmt.Sprintf("(%s %s %s)", args["a"], op, args["b"])
}

// pureSlug turns a definition id into a binding base name, "math.add"
// becoming "add".
func pureSlug(definitionID string) string {
	if i := strings.LastIndex(definitionID, "."); i >= 0 {
		definitionID = definitionID[i+1:]
	}
	return definitionID
}

// rustLiteral renders a stored property literal as a Rust expression of the
// pin's type.
func rustLiteral(t mpin.DataType, literal string) (string, error) {
	switch t.Kind {
	case mpin.DATA_KIND_BOOLEAN:
		b, err := strconv.ParseBool(strings.TrimSpace(literal))
		if err != nil {
			return "", fmt.Errorf("%q is not a boolean", literal)
		}
		return strconv.FormatBool(b), nil
	case mpin.DATA_KIND_INTEGER:
		n, err := strconv.ParseInt(strings.TrimSpace(literal), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%q is not an integer", literal)
		}
		return strconv.FormatInt(n, 10), nil
	case mpin.DATA_KIND_FLOAT:
		return rustFloat(literal)
	case mpin.DATA_KIND_STRING:
		return strconv.Quote(literal) + ".to_string()", nil
	case mpin.DATA_KIND_VECTOR2:
		parts, err := vectorComponents(literal, 2)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Vec2::new(%s, %s)", parts[0], parts[1]), nil
	case mpin.DATA_KIND_VECTOR3:
		parts, err := vectorComponents(literal, 3)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Vec3::new(%s, %s, %s)", parts[0], parts[1], parts[2]), nil
	case mpin.DATA_KIND_COLOR:
		if !strings.HasPrefix(literal, "#") {
			return "", fmt.Errorf("%q is not a color", literal)
		}
		return fmt.Sprintf("Color::hex(%s)", strconv.Quote(literal)), nil
	case mpin.DATA_KIND_OBJECT:
		// An unwired object input targets the owning actor.
		if literal == "" || literal == "null" {
			return "actor.self_ref()", nil
		}
		return "", fmt.Errorf("object pins cannot take literal value %q", literal)
	case mpin.DATA_KIND_CUSTOM:
		if literal == "" || literal == "null" {
			return rustType(t) + "::default()", nil
		}
		return "", fmt.Errorf("%s pins cannot take literal value %q", t.DisplayString(), literal)
	case mpin.DATA_KIND_ANY:
		return rustAnyLiteral(literal), nil
	default:
		return "", fmt.Errorf("execution pins carry no value")
	}
}

func rustFloat(literal string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(literal), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%q is not a finite number", literal)
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text, nil
}

func vectorComponents(literal string, dims int) ([]string, error) {
	parts := strings.Split(literal, ",")
	if len(parts) != dims {
		return nil, fmt.Errorf("%q is not a %d-component vector", literal, dims)
	}
	out := make([]string, dims)
	for i, p := range parts {
		text, err := rustFloat(p)
		if err != nil {
			return nil, fmt.Errorf("%q is not a %d-component vector", literal, dims)
		}
		out[i] = text
	}
	return out, nil
}

func rustAnyLiteral(literal string) string {
	trimmed := strings.TrimSpace(literal)
	if trimmed == "" || trimmed == "null" {
		return "Value::null()"
	}
	if b, err := strconv.ParseBool(trimmed); err == nil {
		return fmt.Sprintf("Value::from(%t)", b)
	}
	if text, err := rustFloat(trimmed); err == nil {
		return fmt.Sprintf("Value::from(%s)", text)
	}
	return fmt.Sprintf("Value::from(%s)", strconv.Quote(literal))
}

// rustRawString wraps source text in a raw string literal, widening the
// delimiter until it cannot collide with the content.
func rustRawString(s string) string {
	hashes := 0
	for strings.Contains(s, `"`+strings.Repeat("#", hashes)) {
		hashes++
	}
	h := strings.Repeat("#", hashes)
	return "r" + h + `"` + s + `"` + h
}
