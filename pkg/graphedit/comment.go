package graphedit

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mcomment"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

// AddComment inserts a comment, clamping its size to the minimum box.
func AddComment(g *mgraph.Graph, comment mcomment.Comment) {
	comment.ClampSize()
	g.Comments = append(g.Comments, comment)
	RecomputeContainment(g)
}

// RemoveComment deletes a comment. Contained nodes are untouched; the
// comment is an annotation, not a container that owns them.
func RemoveComment(g *mgraph.Graph, commentID idwrap.IDWrap) {
	for i := range g.Comments {
		if g.Comments[i].ID == commentID {
			g.Comments = append(g.Comments[:i], g.Comments[i+1:]...)
			return
		}
	}
}

// ResizeComment sets a comment's size, clamped to the minimum, and
// recomputes which nodes it contains.
func ResizeComment(g *mgraph.Graph, commentID idwrap.IDWrap, size mnode.Size) {
	comment, ok := g.FindComment(commentID)
	if !ok {
		return
	}
	comment.Size = size
	comment.ClampSize()
	RecomputeContainment(g)
}

// RecomputeContainment rebuilds every comment's contained-node list from
// spatial containment. A node belongs to a comment when its bounding box
// lies entirely within the comment's bounds. Runs after any operation that
// moves or resizes nodes or comments.
func RecomputeContainment(g *mgraph.Graph) {
	for i := range g.Comments {
		contained := g.Comments[i].ContainedNodeIDs[:0]
		for j := range g.Nodes {
			min, max := g.Nodes[j].Bounds()
			if g.Comments[i].ContainsBounds(min, max) {
				contained = append(contained, g.Nodes[j].ID)
			}
		}
		g.Comments[i].ContainedNodeIDs = contained
	}
}
