package graphedit

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

// Rect is an axis-aligned selection rectangle in graph space.
type Rect struct {
	Min mnode.Position
	Max mnode.Position
}

// RectFromCorners builds a normalized rectangle from two drag corners in
// any order.
func RectFromCorners(a, b mnode.Position) Rect {
	r := Rect{Min: a, Max: b}
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Intersects reports whether the rectangle overlaps the given bounding box.
// Shared edges count as overlap.
func (r Rect) Intersects(min, max mnode.Position) bool {
	return r.Min.X <= max.X && r.Max.X >= min.X && r.Min.Y <= max.Y && r.Max.Y >= min.Y
}

// SelectInRect marks exactly the nodes whose bounding boxes intersect the
// rectangle as selected. Recomputable live while the selection box drags:
// each call derives the full selection from current positions, so nodes
// entering and leaving the box toggle correctly.
func SelectInRect(g *mgraph.Graph, r Rect) {
	for i := range g.Nodes {
		min, max := g.Nodes[i].Bounds()
		g.Nodes[i].Selected = r.Intersects(min, max)
	}
}

// SelectNode sets a node's selection flag. With additive false the rest of
// the selection is cleared first, matching a plain click.
func SelectNode(g *mgraph.Graph, nodeID idwrap.IDWrap, additive bool) {
	if !additive {
		g.ClearSelection()
	}
	if node, ok := g.FindNode(nodeID); ok {
		node.Selected = true
	}
}

// SelectComment sets a comment's selection flag, clearing the rest of the
// selection unless additive.
func SelectComment(g *mgraph.Graph, commentID idwrap.IDWrap, additive bool) {
	if !additive {
		g.ClearSelection()
	}
	if comment, ok := g.FindComment(commentID); ok {
		comment.Selected = true
	}
}

// ToggleNodeSelection flips a node's selection flag, used for ctrl-click.
func ToggleNodeSelection(g *mgraph.Graph, nodeID idwrap.IDWrap) {
	if node, ok := g.FindNode(nodeID); ok {
		node.Selected = !node.Selected
	}
}

// RemoveSelected deletes every selected node and comment. Connections
// touching deleted nodes cascade.
func RemoveSelected(g *mgraph.Graph) {
	var nodeIDs []idwrap.IDWrap
	for i := range g.Nodes {
		if g.Nodes[i].Selected {
			nodeIDs = append(nodeIDs, g.Nodes[i].ID)
		}
	}
	for _, id := range nodeIDs {
		RemoveNode(g, id)
	}
	var commentIDs []idwrap.IDWrap
	for i := range g.Comments {
		if g.Comments[i].Selected {
			commentIDs = append(commentIDs, g.Comments[i].ID)
		}
	}
	for _, id := range commentIDs {
		RemoveComment(g, id)
	}
}
