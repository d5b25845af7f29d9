package compiler

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/translate/tgraph"
)

// macroFunc is one generated macro function, expanded the first time any
// graph references its definition and shared by every caller after that.
type macroFunc struct {
	name    string
	content string
}

type generator struct {
	in     Input
	logger *slog.Logger

	// macroFns is keyed by macro definition id. expanding tracks the
	// definitions currently being generated so recursive macros are
	// rejected instead of looping.
	macroFns  map[idwrap.IDWrap]*macroFunc
	expanding map[idwrap.IDWrap]bool
}

func newGenerator(in Input, logger *slog.Logger) *generator {
	return &generator{
		in:        in,
		logger:    logger,
		macroFns:  map[idwrap.IDWrap]*macroFunc{},
		expanding: map[idwrap.IDWrap]bool{},
	}
}

// resolveMacroInstance maps a macro instance node to its definition,
// checking local macros first and falling back to the library registry.
func (g *generator) resolveMacroInstance(node *mnode.Node) (msubgraph.SubGraphDefinition, string, error) {
	unresolved := &UnresolvedNodeTypeError{NodeID: node.ID, DefinitionID: node.DefinitionID}

	libraryID, macroText, ok := mnode.ParseSubGraphDefinitionID(node.DefinitionID)
	if !ok {
		return msubgraph.SubGraphDefinition{}, "", unresolved
	}
	macroID, err := idwrap.NewText(macroText)
	if err != nil {
		return msubgraph.SubGraphDefinition{}, "", unresolved
	}

	if libraryID == "" {
		if idx, found := msubgraph.FindByID(g.in.LocalMacros, macroID); found {
			return g.in.LocalMacros[idx], "", nil
		}
	}
	if g.in.Registry != nil {
		if libraryID != "" {
			if def, found := g.in.Registry.Resolve(libraryID, macroID); found {
				return def, libraryID, nil
			}
		} else if def, owner, found := g.in.Registry.Find(macroID); found {
			return def, owner, nil
		}
	}
	return msubgraph.SubGraphDefinition{}, "", unresolved
}

func (g *generator) generateEvent(node *mnode.Node, fnName string) (File, error) {
	e := newEmitter(g, g.in.Graph, fnName)
	sc := newScope(nil)

	params := []string{"actor: &mut Actor"}
	used := map[string]int{}
	for _, out := range node.Outputs {
		if out.Type.IsExecution() {
			continue
		}
		pname := uniqueName(sanitizeIdent(out.ID), used)
		params = append(params, pname+": "+rustType(out.Type))
		sc.bind(mconnection.Port{NodeID: node.ID, PinID: out.ID}, pname)
	}

	for _, out := range node.Outputs {
		if !out.Type.IsExecution() {
			continue
		}
		if err := e.emitChain(node.ID, out.ID, sc, 1); err != nil {
			return File{}, err
		}
	}

	var b strings.Builder
	b.WriteString(g.fileHeader())
	b.WriteString("\nuse super::*;\n\n")
	b.WriteString("#[allow(unused_variables)]\n")
	fmt.Fprintf(&b, "pub fn %s(%s) {\n", fnName, strings.Join(params, ", "))
	for _, line := range e.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return File{Name: fnName + ".rs", Content: b.String()}, nil
}

// macroFunction returns the generated function name for a macro definition,
// emitting its body on first use. libraryID is empty for local macros.
func (g *generator) macroFunction(def msubgraph.SubGraphDefinition, libraryID string) (string, error) {
	if fn, ok := g.macroFns[def.ID]; ok {
		return fn.name, nil
	}
	name := macroFunctionName(def)
	if g.expanding[def.ID] {
		return "", &GenerationError{Scope: name, Reason: fmt.Sprintf("macro %q expands itself recursively", def.Name)}
	}
	g.expanding[def.ID] = true
	defer delete(g.expanding, def.ID)

	body := tgraph.DeserializeDescriptionToGraph(def.Graph, g.in.Catalog, g.logger)
	if err := g.validateNodes(body); err != nil {
		return "", err
	}

	var entry *mnode.Node
	for i := range body.Nodes {
		if body.Nodes[i].Kind != mnode.NODE_KIND_MACRO_ENTRY {
			continue
		}
		if entry != nil {
			return "", &GenerationError{Scope: name, Reason: fmt.Sprintf("macro %q has more than one entry node", def.Name)}
		}
		entry = &body.Nodes[i]
	}
	if entry == nil {
		return "", &GenerationError{Scope: name, Reason: fmt.Sprintf("macro %q has no entry node", def.Name)}
	}

	e := newEmitter(g, body, name)
	e.inMacro = true
	e.exitOutputs = def.Interface.DataOutputs()
	sc := newScope(nil)

	params := []string{"actor: &mut Actor"}
	used := map[string]int{}
	for _, p := range def.Interface.DataInputs() {
		pname := uniqueName(sanitizeIdent(p.ID), used)
		params = append(params, pname+": "+rustType(p.Type))
		sc.bind(mconnection.Port{NodeID: entry.ID, PinID: p.ID}, pname)
	}

	for _, out := range entry.Outputs {
		if !out.Type.IsExecution() {
			continue
		}
		if err := e.emitChain(entry.ID, out.ID, sc, 1); err != nil {
			return "", err
		}
		break
	}

	rets := def.Interface.DataOutputs()
	retSig := ""
	switch len(rets) {
	case 0:
	case 1:
		retSig = " -> " + rustType(rets[0].Type)
	default:
		types := make([]string, len(rets))
		for i, r := range rets {
			types[i] = rustType(r.Type)
		}
		retSig = " -> (" + strings.Join(types, ", ") + ")"
	}

	var b strings.Builder
	b.WriteString("#[allow(unused_variables)]\n")
	fmt.Fprintf(&b, "pub fn %s(%s)%s {\n", name, strings.Join(params, ", "), retSig)
	for _, line := range e.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(rets) > 0 {
		// Fallback tail for bodies whose flow never reaches an exit node.
		defaults := make([]string, len(rets))
		for i, r := range rets {
			text, err := rustLiteral(r.Type, r.Type.DefaultLiteral())
			if err != nil {
				return "", &GenerationError{Scope: name, Reason: fmt.Sprintf("output %q has no default value", r.ID), Err: err}
			}
			defaults[i] = text
		}
		if len(defaults) == 1 {
			b.WriteString("    " + defaults[0] + "\n")
		} else {
			b.WriteString("    (" + strings.Join(defaults, ", ") + ")\n")
		}
	}
	b.WriteString("}\n")

	g.macroFns[def.ID] = &macroFunc{name: name, content: b.String()}
	return name, nil
}

// macroFunctionName derives a stable Rust identifier from the macro's
// display name. The id suffix keeps same-named macros from colliding.
func macroFunctionName(def msubgraph.SubGraphDefinition) string {
	id := strings.ToLower(def.ID.String())
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return sanitizeIdent(def.Name) + "_" + id
}

func (g *generator) macrosFile() *File {
	if len(g.macroFns) == 0 {
		return nil
	}
	fns := make([]*macroFunc, 0, len(g.macroFns))
	for _, fn := range g.macroFns {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].name < fns[j].name })

	var b strings.Builder
	b.WriteString(g.fileHeader())
	b.WriteString("\nuse super::*;\n")
	for _, fn := range fns {
		b.WriteByte('\n')
		b.WriteString(fn.content)
	}
	return &File{Name: "macros.rs", Content: b.String()}
}

func (g *generator) modFile(files []File) File {
	stems := make([]string, 0, len(files))
	for _, f := range files {
		stems = append(stems, strings.TrimSuffix(f.Name, ".rs"))
	}
	sort.Strings(stems)

	var b strings.Builder
	b.WriteString(g.fileHeader())
	b.WriteByte('\n')
	for _, s := range stems {
		fmt.Fprintf(&b, "pub mod %s;\n", s)
	}
	if vars := g.varsStruct(); vars != "" {
		b.WriteByte('\n')
		b.WriteString(vars)
	}
	return File{Name: "mod.rs", Content: b.String()}
}

// varsStruct renders the class's blueprint variables as a plain struct with
// a Default impl seeded from each variable's default literal. A default
// that does not parse falls back to the type default with a warning rather
// than failing the compile.
func (g *generator) varsStruct() string {
	if len(g.in.Variables) == 0 {
		return ""
	}
	structName := pascalIdent(g.in.ClassName) + "Vars"

	var fields, defaults strings.Builder
	used := map[string]int{}
	for _, v := range g.in.Variables {
		name := uniqueName(sanitizeIdent(v.Name), used)
		literal := v.DefaultValue
		if literal == "" && v.Type.Kind != mpin.DATA_KIND_STRING {
			literal = v.Type.DefaultLiteral()
		}
		text, err := rustLiteral(v.Type, literal)
		if err != nil {
			g.logger.Warn("variable default does not parse, using the type default",
				"variable", v.Name, "literal", literal, "error", err)
			text, err = rustLiteral(v.Type, v.Type.DefaultLiteral())
			if err != nil {
				continue
			}
		}
		fmt.Fprintf(&fields, "    pub %s: %s,\n", name, rustType(v.Type))
		fmt.Fprintf(&defaults, "            %s: %s,\n", name, text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pub struct %s {\n%s}\n\n", structName, fields.String())
	fmt.Fprintf(&b, "impl Default for %s {\n", structName)
	b.WriteString("    fn default() -> Self {\n")
	b.WriteString("        Self {\n")
	b.WriteString(defaults.String())
	b.WriteString("        }\n    }\n}\n")
	return b.String()
}

func (g *generator) fileHeader() string {
	if g.in.ClassName == "" {
		return "// Generated by the blueprint compiler. Do not edit.\n"
	}
	return fmt.Sprintf("// Generated by the blueprint compiler for %s. Do not edit.\n", g.in.ClassName)
}

func rustType(t mpin.DataType) string {
	switch t.Kind {
	case mpin.DATA_KIND_BOOLEAN:
		return "bool"
	case mpin.DATA_KIND_INTEGER:
		return "i64"
	case mpin.DATA_KIND_FLOAT:
		return "f64"
	case mpin.DATA_KIND_STRING:
		return "String"
	case mpin.DATA_KIND_VECTOR2:
		return "Vec2"
	case mpin.DATA_KIND_VECTOR3:
		return "Vec3"
	case mpin.DATA_KIND_COLOR:
		return "Color"
	case mpin.DATA_KIND_OBJECT:
		return "ActorRef"
	case mpin.DATA_KIND_CUSTOM:
		if t.Name != "" {
			return pascalIdent(t.Name)
		}
		return "Value"
	default:
		return "Value"
	}
}

// sanitizeIdent lowers a display string into a snake_case Rust identifier.
// Separators collapse to single underscores and camelCase boundaries split.
func sanitizeIdent(s string) string {
	var b strings.Builder
	pending := false
	prevLower := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			prevLower = true
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if (pending || prevLower) && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			prevLower = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			pending = true
			prevLower = false
		}
	}
	out := b.String()
	if out == "" {
		return "x"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n" + out
	}
	return out
}

func pascalIdent(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if upper {
				b.WriteRune(unicode.ToUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		default:
			upper = true
		}
	}
	out := b.String()
	if out == "" {
		return "Blueprint"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "Class" + out
	}
	return out
}

func uniqueName(base string, used map[string]int) string {
	used[base]++
	if used[base] > 1 {
		return fmt.Sprintf("%s_%d", base, used[base])
	}
	return base
}
