//nolint:revive // exported
package mcomment

import (
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

const (
	MinWidth  float64 = 100
	MinHeight float64 = 50
)

// Comment is a freeform annotation box drawn behind nodes. ContainedNodeIDs
// is recomputed from spatial containment after every move or resize and is
// never an independent source of truth. Selected is transient UI state.
type Comment struct {
	ID               idwrap.IDWrap
	Position         mnode.Position
	Size             mnode.Size
	Text             string
	Color            string
	ContainedNodeIDs []idwrap.IDWrap
	Selected         bool
}

// ClampSize enforces the minimum comment box size.
func (c *Comment) ClampSize() {
	if c.Size.Width < MinWidth {
		c.Size.Width = MinWidth
	}
	if c.Size.Height < MinHeight {
		c.Size.Height = MinHeight
	}
}

func (c *Comment) Bounds() (mnode.Position, mnode.Position) {
	min := c.Position
	max := mnode.Position{X: c.Position.X + c.Size.Width, Y: c.Position.Y + c.Size.Height}
	return min, max
}

// ContainsBounds reports whether a node bounding box lies entirely within
// the comment's bounds. Touching the border still counts as inside.
func (c *Comment) ContainsBounds(min, max mnode.Position) bool {
	cmin, cmax := c.Bounds()
	return min.X >= cmin.X && min.Y >= cmin.Y && max.X <= cmax.X && max.Y <= cmax.Y
}

// Contains reports whether the comment currently lists the node id.
func (c *Comment) Contains(nodeID idwrap.IDWrap) bool {
	for _, id := range c.ContainedNodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}
