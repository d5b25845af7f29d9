package graphedit

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mpin"
)

// PropagateRerouteType walks breadth-first from the node that just received
// a concrete type and overwrites every pin of every reroute it can reach.
// Traversal is direction-agnostic over connections, visits reroute nodes
// only, and marks visited nodes so cycles terminate. Propagating Any is a
// no-op: there is nothing to propagate.
func PropagateRerouteType(g *mgraph.Graph, startID idwrap.IDWrap, dataType mpin.DataType) {
	if dataType.IsAny() {
		return
	}
	start, ok := g.FindNode(startID)
	if !ok {
		return
	}
	if start.Kind == mnode.NODE_KIND_REROUTE {
		start.SetAllPinTypes(dataType)
	}

	visited := map[idwrap.IDWrap]struct{}{startID: {}}
	queue := []idwrap.IDWrap{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, c := range g.Connections {
			var next idwrap.IDWrap
			switch current {
			case c.FromNodeID:
				next = c.ToNodeID
			case c.ToNodeID:
				next = c.FromNodeID
			default:
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			node, ok := g.FindNode(next)
			if !ok || node.Kind != mnode.NODE_KIND_REROUTE {
				continue
			}
			visited[next] = struct{}{}
			node.SetAllPinTypes(dataType)
			queue = append(queue, next)
		}
	}
}

// propagateFromConnection picks the concrete side of a freshly inserted
// connection and propagates it through the reroute chain. When both
// endpoint pins carry Any there is nothing to push.
func propagateFromConnection(g *mgraph.Graph, fromNode *mnode.Node, fromPin mpin.Pin, toNode *mnode.Node, toPin mpin.Pin) {
	switch {
	case !fromPin.Type.IsAny():
		PropagateRerouteType(g, fromNode.ID, fromPin.Type)
	case !toPin.Type.IsAny():
		PropagateRerouteType(g, toNode.ID, toPin.Type)
	}
}
