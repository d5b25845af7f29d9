//nolint:revive // exported
package mconnection

import (
	"errors"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
)

var ErrConnectionNotFound = errors.New("connection not found")

// Connection links an output pin on one node to an input pin on another.
// Endpoints are referenced by id, never by pointer, so rewiring and
// persistence never chase stale memory.
type Connection struct {
	ID         idwrap.IDWrap
	FromNodeID idwrap.IDWrap
	FromPinID  string
	ToNodeID   idwrap.IDWrap
	ToPinID    string
}

func New(id, fromNode idwrap.IDWrap, fromPin string, toNode idwrap.IDWrap, toPin string) Connection {
	return Connection{
		ID:         id,
		FromNodeID: fromNode,
		FromPinID:  fromPin,
		ToNodeID:   toNode,
		ToPinID:    toPin,
	}
}

// Port identifies one pin on one node. Eviction rules and disconnect
// operate on ports, not whole nodes.
type Port struct {
	NodeID idwrap.IDWrap
	PinID  string
}

func (c Connection) Source() Port {
	return Port{NodeID: c.FromNodeID, PinID: c.FromPinID}
}

func (c Connection) Target() Port {
	return Port{NodeID: c.ToNodeID, PinID: c.ToPinID}
}

// Touches reports whether the connection references the node on either end.
func (c Connection) Touches(nodeID idwrap.IDWrap) bool {
	return c.FromNodeID == nodeID || c.ToNodeID == nodeID
}

// TouchesPort reports whether the connection starts or ends at the port.
func (c Connection) TouchesPort(nodeID idwrap.IDWrap, pinID string) bool {
	if c.FromNodeID == nodeID && c.FromPinID == pinID {
		return true
	}
	return c.ToNodeID == nodeID && c.ToPinID == pinID
}

// ConnectionsMap indexes target node ids by source node and source pin.
// Traversal code builds it once per pass instead of rescanning the slice.
type ConnectionsMap map[idwrap.IDWrap]map[string][]idwrap.IDWrap

func NewConnectionsMap(connections []Connection) ConnectionsMap {
	m := make(ConnectionsMap)
	for _, c := range connections {
		if _, ok := m[c.FromNodeID]; !ok {
			m[c.FromNodeID] = make(map[string][]idwrap.IDWrap)
		}
		targets := m[c.FromNodeID][c.FromPinID]
		targets = append(targets, c.ToNodeID)
		m[c.FromNodeID][c.FromPinID] = targets
	}
	return m
}

// GetNextNodeIDs returns the nodes reached from a source pin, or nil when
// the pin has no outgoing connections.
func GetNextNodeIDs(m ConnectionsMap, sourceID idwrap.IDWrap, pinID string) []idwrap.IDWrap {
	pins, ok := m[sourceID]
	if !ok {
		return nil
	}
	targets, ok := pins[pinID]
	if !ok {
		return nil
	}
	return targets
}
