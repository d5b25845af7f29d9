//nolint:revive // exported
package mnode

import (
	"strings"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

type NodeKind = int32

const (
	NODE_KIND_UNSPECIFIED    NodeKind = 0
	NODE_KIND_EVENT          NodeKind = 1
	NODE_KIND_LOGIC          NodeKind = 2
	NODE_KIND_MATH           NodeKind = 3
	NODE_KIND_OBJECT         NodeKind = 4
	NODE_KIND_REROUTE        NodeKind = 5
	NODE_KIND_MACRO_ENTRY    NodeKind = 6
	NODE_KIND_MACRO_EXIT     NodeKind = 7
	NODE_KIND_MACRO_INSTANCE NodeKind = 8
)

func StringNodeKind(k NodeKind) string {
	switch k {
	case NODE_KIND_EVENT:
		return "event"
	case NODE_KIND_LOGIC:
		return "logic"
	case NODE_KIND_MATH:
		return "math"
	case NODE_KIND_OBJECT:
		return "object"
	case NODE_KIND_REROUTE:
		return "reroute"
	case NODE_KIND_MACRO_ENTRY:
		return "macro_entry"
	case NODE_KIND_MACRO_EXIT:
		return "macro_exit"
	case NODE_KIND_MACRO_INSTANCE:
		return "macro_instance"
	default:
		return "unspecified"
	}
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one placed node in a graph. DefinitionID references the node-type
// definition in the catalog, or carries the subgraph: form for macro
// instances. Selected is transient UI state and never persisted.
type Node struct {
	ID           idwrap.IDWrap
	DefinitionID string
	Title        string
	Icon         string
	Kind         NodeKind
	Position     Position
	Size         Size
	Inputs       []mpin.Pin
	Outputs      []mpin.Pin
	Properties   map[string]string
	Selected     bool
	Description  string
	Color        string
}

// FindInput returns the input pin with the given id.
func (n *Node) FindInput(pinID string) (mpin.Pin, bool) {
	for _, p := range n.Inputs {
		if p.ID == pinID {
			return p, true
		}
	}
	return mpin.Pin{}, false
}

// FindOutput returns the output pin with the given id.
func (n *Node) FindOutput(pinID string) (mpin.Pin, bool) {
	for _, p := range n.Outputs {
		if p.ID == pinID {
			return p, true
		}
	}
	return mpin.Pin{}, false
}

// SetPinType overwrites the data type of every pin matching pinID in both
// directions. Used by reroute type propagation.
func (n *Node) SetPinType(pinID string, t mpin.DataType) {
	for i := range n.Inputs {
		if n.Inputs[i].ID == pinID {
			n.Inputs[i].Type = t
		}
	}
	for i := range n.Outputs {
		if n.Outputs[i].ID == pinID {
			n.Outputs[i].Type = t
		}
	}
}

// SetAllPinTypes overwrites every pin's data type. Reroute nodes adopt the
// propagated type on all ports at once.
func (n *Node) SetAllPinTypes(t mpin.DataType) {
	for i := range n.Inputs {
		n.Inputs[i].Type = t
	}
	for i := range n.Outputs {
		n.Outputs[i].Type = t
	}
}

// Bounds returns the node's axis-aligned bounding box as min and max
// corners. Nodes with zero size still occupy a point for hit testing.
func (n *Node) Bounds() (Position, Position) {
	min := n.Position
	max := Position{X: n.Position.X + n.Size.Width, Y: n.Position.Y + n.Size.Height}
	return min, max
}

// PinIDsUnique reports whether pin ids are unique within the input list and
// within the output list independently.
func (n *Node) PinIDsUnique() bool {
	seen := make(map[string]struct{}, len(n.Inputs))
	for _, p := range n.Inputs {
		if _, ok := seen[p.ID]; ok {
			return false
		}
		seen[p.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(n.Outputs))
	for _, p := range n.Outputs {
		if _, ok := seen[p.ID]; ok {
			return false
		}
		seen[p.ID] = struct{}{}
	}
	return true
}

const (
	DefinitionIDReroute    = "reroute"
	DefinitionIDMacroEntry = "macro.entry"
	DefinitionIDMacroExit  = "macro.exit"
)

// KindFromDefinitionID infers the node kind from the definition id's
// namespace. The catalog overrides this for registered definitions; the
// fallback keeps unknown ids renderable instead of crashing the editor.
func KindFromDefinitionID(definitionID string) NodeKind {
	switch definitionID {
	case DefinitionIDReroute:
		return NODE_KIND_REROUTE
	case DefinitionIDMacroEntry:
		return NODE_KIND_MACRO_ENTRY
	case DefinitionIDMacroExit:
		return NODE_KIND_MACRO_EXIT
	}
	if IsSubGraphDefinitionID(definitionID) {
		return NODE_KIND_MACRO_INSTANCE
	}
	dot := strings.IndexByte(definitionID, '.')
	if dot <= 0 {
		return NODE_KIND_UNSPECIFIED
	}
	switch definitionID[:dot] {
	case "event":
		return NODE_KIND_EVENT
	case "logic":
		return NODE_KIND_LOGIC
	case "math":
		return NODE_KIND_MATH
	case "object":
		return NODE_KIND_OBJECT
	default:
		return NODE_KIND_UNSPECIFIED
	}
}

const SubGraphPrefix = "subgraph:"

// SubGraphDefinitionID builds the definition id for a macro instance node.
// libraryID is empty for local macros.
func SubGraphDefinitionID(libraryID string, macroID idwrap.IDWrap) string {
	if libraryID == "" {
		return SubGraphPrefix + macroID.String()
	}
	return SubGraphPrefix + libraryID + "." + macroID.String()
}

// ParseSubGraphDefinitionID splits a subgraph: definition id into its
// optional library id and macro id text. Macro ids are ULIDs and never
// contain dots, so a dotted reference splits at the last dot; library ids
// themselves may be dotted. ok is false when the id does not carry the
// subgraph prefix.
func ParseSubGraphDefinitionID(definitionID string) (libraryID, macroID string, ok bool) {
	rest, found := strings.CutPrefix(definitionID, SubGraphPrefix)
	if !found || rest == "" {
		return "", "", false
	}
	if dot := strings.LastIndexByte(rest, '.'); dot >= 0 {
		libraryID, macroID = rest[:dot], rest[dot+1:]
		return libraryID, macroID, libraryID != "" && macroID != ""
	}
	return "", rest, true
}

func IsSubGraphDefinitionID(definitionID string) bool {
	return strings.HasPrefix(definitionID, SubGraphPrefix)
}
