// Package graphedit holds the mutation operations on a live graph: node and
// connection editing, selection, dragging, and comment containment. Every
// operation either completes or leaves the graph untouched; callers surface
// rejections as user feedback instead of crashing the editor.
package graphedit

import (
	"errors"
	"fmt"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

var (
	ErrNodeExists        = errors.New("node id already exists in graph")
	ErrInvalidPins       = errors.New("node pin ids must be unique per direction")
	ErrUnknownPin        = errors.New("unknown node or pin")
	ErrSelfConnection    = errors.New("cannot connect a node to itself")
	ErrIncompatibleTypes = errors.New("pin types are not compatible")
)

// AddNode appends the node. Duplicate node ids and duplicate pin ids are
// rejected without mutating the graph.
func AddNode(g *mgraph.Graph, node mnode.Node) error {
	if g.HasNode(node.ID) {
		return fmt.Errorf("%w: %s", ErrNodeExists, node.ID)
	}
	if !node.PinIDsUnique() {
		return fmt.Errorf("%w: %s", ErrInvalidPins, node.DefinitionID)
	}
	g.Nodes = append(g.Nodes, node)
	RecomputeContainment(g)
	return nil
}

// RemoveNode removes the node and cascades: every connection referencing it
// is deleted and comment containment is recomputed. Removing an id that is
// not present is a no-op.
func RemoveNode(g *mgraph.Graph, nodeID idwrap.IDWrap) {
	found := false
	for i := range g.Nodes {
		if g.Nodes[i].ID == nodeID {
			g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	removeConnections(g, func(c mconnection.Connection) bool {
		return c.Touches(nodeID)
	})
	RecomputeContainment(g)
}

// Connect validates, evicts conflicting connections, inserts the new
// connection, and finally triggers reroute type propagation when either
// endpoint is a reroute. Validation order: existence, self, compatibility.
func Connect(g *mgraph.Graph, fromNodeID idwrap.IDWrap, fromPinID string, toNodeID idwrap.IDWrap, toPinID string) (idwrap.IDWrap, error) {
	fromNode, ok := g.FindNode(fromNodeID)
	if !ok {
		return idwrap.IDWrap{}, fmt.Errorf("%w: source node %s", ErrUnknownPin, fromNodeID)
	}
	toNode, ok := g.FindNode(toNodeID)
	if !ok {
		return idwrap.IDWrap{}, fmt.Errorf("%w: target node %s", ErrUnknownPin, toNodeID)
	}
	fromPin, ok := fromNode.FindOutput(fromPinID)
	if !ok {
		return idwrap.IDWrap{}, fmt.Errorf("%w: output pin %q on %s", ErrUnknownPin, fromPinID, fromNodeID)
	}
	toPin, ok := toNode.FindInput(toPinID)
	if !ok {
		return idwrap.IDWrap{}, fmt.Errorf("%w: input pin %q on %s", ErrUnknownPin, toPinID, toNodeID)
	}
	if fromNodeID == toNodeID {
		return idwrap.IDWrap{}, ErrSelfConnection
	}
	if !fromPin.Type.IsCompatibleWith(toPin.Type) {
		return idwrap.IDWrap{}, fmt.Errorf("%w: %s -> %s", ErrIncompatibleTypes, fromPin.Type.DisplayString(), toPin.Type.DisplayString())
	}

	// Eviction before insert. Every input port holds at most one incoming
	// connection. A source port holds at most one outgoing connection when
	// it carries execution or belongs to a reroute; plain data outputs fan
	// out freely.
	removeConnections(g, func(c mconnection.Connection) bool {
		return c.ToNodeID == toNodeID && c.ToPinID == toPinID
	})
	if fromPin.Type.IsExecution() || fromNode.Kind == mnode.NODE_KIND_REROUTE {
		removeConnections(g, func(c mconnection.Connection) bool {
			return c.FromNodeID == fromNodeID && c.FromPinID == fromPinID
		})
	}

	connID := idwrap.NewNow()
	g.Connections = append(g.Connections, mconnection.New(connID, fromNodeID, fromPinID, toNodeID, toPinID))

	if fromNode.Kind == mnode.NODE_KIND_REROUTE || toNode.Kind == mnode.NODE_KIND_REROUTE {
		propagateFromConnection(g, fromNode, fromPin, toNode, toPin)
	}

	return connID, nil
}

// DisconnectPin removes every connection touching the port, as source or
// target.
func DisconnectPin(g *mgraph.Graph, nodeID idwrap.IDWrap, pinID string) {
	removeConnections(g, func(c mconnection.Connection) bool {
		return c.TouchesPort(nodeID, pinID)
	})
}

// ConnectionsAt returns the connections touching the port.
func ConnectionsAt(g *mgraph.Graph, nodeID idwrap.IDWrap, pinID string) []mconnection.Connection {
	var out []mconnection.Connection
	for _, c := range g.Connections {
		if c.TouchesPort(nodeID, pinID) {
			out = append(out, c)
		}
	}
	return out
}

// IncomingConnection returns the single connection targeting an input port.
func IncomingConnection(g *mgraph.Graph, nodeID idwrap.IDWrap, pinID string) (mconnection.Connection, bool) {
	for _, c := range g.Connections {
		if c.ToNodeID == nodeID && c.ToPinID == pinID {
			return c, true
		}
	}
	return mconnection.Connection{}, false
}

func removeConnections(g *mgraph.Graph, match func(mconnection.Connection) bool) {
	kept := g.Connections[:0]
	for _, c := range g.Connections {
		if !match(c) {
			kept = append(kept, c)
		}
	}
	g.Connections = kept
}

// pinType resolves a pin's data type looking at both directions. Used by
// propagation where traversal is direction-agnostic.
func pinType(node *mnode.Node, pinID string) (mpin.DataType, bool) {
	if p, ok := node.FindInput(pinID); ok {
		return p.Type, true
	}
	if p, ok := node.FindOutput(pinID); ok {
		return p.Type, true
	}
	return mpin.DataType{}, false
}
