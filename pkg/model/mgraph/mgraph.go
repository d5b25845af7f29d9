//nolint:revive // exported
package mgraph

import (
	"log/slog"

	"github.com/jinzhu/copier"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mcomment"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

const (
	ZoomMin = 0.1
	ZoomMax = 3.0
)

// Graph is the in-memory representation of one tab's content: the main
// event graph or one macro body. Selection lives on the nodes and comments
// themselves; the id-set views are derived so two copies of "what is
// selected" can never drift apart.
type Graph struct {
	Nodes       []mnode.Node
	Connections []mconnection.Connection
	Comments    []mcomment.Comment
	Zoom        float64
	Pan         mnode.Position
}

func New() *Graph {
	return &Graph{Zoom: 1.0}
}

func (g *Graph) FindNode(id idwrap.IDWrap) (*mnode.Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

func (g *Graph) HasNode(id idwrap.IDWrap) bool {
	_, ok := g.FindNode(id)
	return ok
}

func (g *Graph) FindComment(id idwrap.IDWrap) (*mcomment.Comment, bool) {
	for i := range g.Comments {
		if g.Comments[i].ID == id {
			return &g.Comments[i], true
		}
	}
	return nil, false
}

func (g *Graph) FindConnection(id idwrap.IDWrap) (mconnection.Connection, bool) {
	for _, c := range g.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return mconnection.Connection{}, false
}

// SetZoom clamps into the allowed range instead of rejecting, matching how
// scroll-wheel zoom behaves at the edges.
func (g *Graph) SetZoom(zoom float64) {
	if zoom < ZoomMin {
		zoom = ZoomMin
	}
	if zoom > ZoomMax {
		zoom = ZoomMax
	}
	g.Zoom = zoom
}

func (g *Graph) SelectedNodeIDs() []idwrap.IDWrap {
	var ids []idwrap.IDWrap
	for i := range g.Nodes {
		if g.Nodes[i].Selected {
			ids = append(ids, g.Nodes[i].ID)
		}
	}
	return ids
}

func (g *Graph) SelectedCommentIDs() []idwrap.IDWrap {
	var ids []idwrap.IDWrap
	for i := range g.Comments {
		if g.Comments[i].Selected {
			ids = append(ids, g.Comments[i].ID)
		}
	}
	return ids
}

func (g *Graph) ClearSelection() {
	for i := range g.Nodes {
		g.Nodes[i].Selected = false
	}
	for i := range g.Comments {
		g.Comments[i].Selected = false
	}
}

// Clone returns a deep copy. The tab model snapshots graphs on every
// sync-in/sync-out, so the active graph and tab storage never alias.
func (g *Graph) Clone() *Graph {
	clone := New()
	err := copier.CopyWithOption(clone, g, copier.Option{
		DeepCopy:   true,
		Converters: []copier.TypeConverter{idwrap.CopyConverter()},
	})
	if err != nil {
		// Copying plain model structs cannot fail in practice; losing the
		// snapshot silently would corrupt tab state, so make noise.
		slog.Error("mgraph: clone failed", "error", err)
	}
	return clone
}
