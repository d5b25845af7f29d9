package graphedit

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

// MoveNode places the node at an absolute position and recomputes comment
// containment.
func MoveNode(g *mgraph.Graph, nodeID idwrap.IDWrap, position mnode.Position) {
	node, ok := g.FindNode(nodeID)
	if !ok {
		return
	}
	node.Position = position
	RecomputeContainment(g)
}

// MoveSelected translates every selected node by delta in one shot.
func MoveSelected(g *mgraph.Graph, delta mnode.Position) {
	for i := range g.Nodes {
		if g.Nodes[i].Selected {
			g.Nodes[i].Position.X += delta.X
			g.Nodes[i].Position.Y += delta.Y
		}
	}
	RecomputeContainment(g)
}

// Drag is an in-progress drag of the current selection. Positions are
// recorded once at drag start; DragBy re-derives each position from its own
// recorded origin and the total delta, so relative layout stays stable
// under fractional deltas instead of accumulating rounding drift.
type Drag struct {
	nodeOrigins    map[idwrap.IDWrap]mnode.Position
	commentOrigins map[idwrap.IDWrap]mnode.Position
}

// BeginDrag records the drag-start positions of every selected node and
// selected comment, plus the nodes contained in selected comments: dragging
// a comment carries its contents along.
func BeginDrag(g *mgraph.Graph) *Drag {
	d := &Drag{
		nodeOrigins:    make(map[idwrap.IDWrap]mnode.Position),
		commentOrigins: make(map[idwrap.IDWrap]mnode.Position),
	}
	for i := range g.Nodes {
		if g.Nodes[i].Selected {
			d.nodeOrigins[g.Nodes[i].ID] = g.Nodes[i].Position
		}
	}
	for i := range g.Comments {
		if !g.Comments[i].Selected {
			continue
		}
		d.commentOrigins[g.Comments[i].ID] = g.Comments[i].Position
		for _, nodeID := range g.Comments[i].ContainedNodeIDs {
			if _, already := d.nodeOrigins[nodeID]; already {
				continue
			}
			if node, ok := g.FindNode(nodeID); ok {
				d.nodeOrigins[nodeID] = node.Position
			}
		}
	}
	return d
}

// DragBy applies the total delta since drag start to every recorded
// participant. It may be called repeatedly while the drag is live.
func (d *Drag) DragBy(g *mgraph.Graph, delta mnode.Position) {
	for id, origin := range d.nodeOrigins {
		if node, ok := g.FindNode(id); ok {
			node.Position = mnode.Position{X: origin.X + delta.X, Y: origin.Y + delta.Y}
		}
	}
	for id, origin := range d.commentOrigins {
		if comment, ok := g.FindComment(id); ok {
			comment.Position = mnode.Position{X: origin.X + delta.X, Y: origin.Y + delta.Y}
		}
	}
	RecomputeContainment(g)
}

// MoveComment places a comment at an absolute position, translating every
// currently-contained node by the same delta.
func MoveComment(g *mgraph.Graph, commentID idwrap.IDWrap, position mnode.Position) {
	comment, ok := g.FindComment(commentID)
	if !ok {
		return
	}
	delta := mnode.Position{X: position.X - comment.Position.X, Y: position.Y - comment.Position.Y}
	comment.Position = position
	for _, nodeID := range comment.ContainedNodeIDs {
		if node, ok := g.FindNode(nodeID); ok {
			node.Position.X += delta.X
			node.Position.Y += delta.Y
		}
	}
	RecomputeContainment(g)
}
