// Package graphlayout provides layout algorithms for blueprint graphs.
// Levels are assigned by BFS over execution connections so the execution
// flow reads in one direction; pure data nodes keep their positions.
package graphlayout

import (
	"errors"
	"sort"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mconnection"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

var ErrNoEntryNodes = errors.New("graph has no entry nodes")

// LayoutOrientation defines the primary direction of flow.
type LayoutOrientation int

const (
	// LayoutHorizontal: nodes flow left-to-right (X increases with depth).
	LayoutHorizontal LayoutOrientation = iota

	// LayoutVertical: nodes flow top-to-bottom (Y increases with depth).
	LayoutVertical
)

// LayoutConfig configures the layout algorithm.
type LayoutConfig struct {
	// Orientation controls whether depth maps to X (horizontal) or Y (vertical).
	Orientation LayoutOrientation

	// SpacingPrimary is spacing along the primary axis (direction of flow).
	SpacingPrimary float64

	// SpacingSecondary is spacing perpendicular to flow (for parallel nodes).
	SpacingSecondary float64

	// StartX is the starting X position.
	StartX float64

	// StartY is the starting Y position.
	StartY float64
}

// LayoutResult contains the computed positions for each leveled node.
type LayoutResult struct {
	// Positions maps node IDs to their computed positions. Nodes outside
	// the execution flow are absent and keep their current positions.
	Positions map[idwrap.IDWrap]mnode.Position

	// Levels maps node IDs to their depth level (0 = entry node).
	Levels map[idwrap.IDWrap]int

	// MaxLevel is the deepest level in the graph.
	MaxLevel int
}

// DefaultHorizontalConfig returns the default configuration for horizontal
// layout, the blueprint editor's arrange direction.
func DefaultHorizontalConfig() LayoutConfig {
	return LayoutConfig{
		Orientation:      LayoutHorizontal,
		SpacingPrimary:   300,
		SpacingSecondary: 150,
		StartX:           0,
		StartY:           0,
	}
}

// DefaultVerticalConfig returns the default configuration for vertical layout.
func DefaultVerticalConfig() LayoutConfig {
	return LayoutConfig{
		Orientation:      LayoutVertical,
		SpacingPrimary:   300,
		SpacingSecondary: 400,
		StartX:           0,
		StartY:           0,
	}
}

// ExecutionConnections filters the graph's connections down to those whose
// source pin carries execution.
func ExecutionConnections(g *mgraph.Graph) []mconnection.Connection {
	var out []mconnection.Connection
	for _, c := range g.Connections {
		node, ok := g.FindNode(c.FromNodeID)
		if !ok {
			continue
		}
		pin, ok := node.FindOutput(c.FromPinID)
		if !ok {
			continue
		}
		if pin.Type.IsExecution() {
			out = append(out, c)
		}
	}
	return out
}

// OutgoingAdjacency builds a map of node ID -> list of target node IDs.
func OutgoingAdjacency(connections []mconnection.Connection) map[idwrap.IDWrap][]idwrap.IDWrap {
	adj := make(map[idwrap.IDWrap][]idwrap.IDWrap)
	for _, c := range connections {
		adj[c.FromNodeID] = append(adj[c.FromNodeID], c.ToNodeID)
	}
	return adj
}

// IncomingAdjacency builds a map of node ID -> list of source node IDs.
func IncomingAdjacency(connections []mconnection.Connection) map[idwrap.IDWrap][]idwrap.IDWrap {
	adj := make(map[idwrap.IDWrap][]idwrap.IDWrap)
	for _, c := range connections {
		adj[c.ToNodeID] = append(adj[c.ToNodeID], c.FromNodeID)
	}
	return adj
}

// EntryNodes returns the roots of the execution flow: nodes that carry an
// execution output but no incoming execution connection. Event nodes
// qualify by construction. Sorted by title then id so callers see a stable
// order.
func EntryNodes(g *mgraph.Graph) []idwrap.IDWrap {
	incoming := IncomingAdjacency(ExecutionConnections(g))

	var entries []*mnode.Node
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if len(incoming[node.ID]) > 0 {
			continue
		}
		hasExecOut := false
		for _, p := range node.Outputs {
			if p.Type.IsExecution() {
				hasExecOut = true
				break
			}
		}
		if hasExecOut {
			entries = append(entries, node)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Title != entries[j].Title {
			return entries[i].Title < entries[j].Title
		}
		return entries[i].ID.Compare(entries[j].ID) < 0
	})

	ids := make([]idwrap.IDWrap, len(entries))
	for i, n := range entries {
		ids[i] = n.ID
	}
	return ids
}

// Layout computes node positions using BFS-based level assignment over the
// execution flow. Each node's level is max(parent_levels)+1; every entry
// starts at level 0.
func Layout(g *mgraph.Graph, entryIDs []idwrap.IDWrap, config LayoutConfig) *LayoutResult {
	result := &LayoutResult{
		Positions: make(map[idwrap.IDWrap]mnode.Position),
		Levels:    make(map[idwrap.IDWrap]int),
		MaxLevel:  0,
	}
	if len(g.Nodes) == 0 || len(entryIDs) == 0 {
		return result
	}

	execConns := ExecutionConnections(g)
	outgoing := OutgoingAdjacency(execConns)
	incoming := IncomingAdjacency(execConns)

	nodeLevels := result.Levels
	levelNodes := make(map[int][]idwrap.IDWrap)

	queue := make([]idwrap.IDWrap, 0, len(entryIDs))
	for _, id := range entryIDs {
		if !g.HasNode(id) {
			continue
		}
		if _, seen := nodeLevels[id]; seen {
			continue
		}
		nodeLevels[id] = 0
		levelNodes[0] = append(levelNodes[0], id)
		queue = append(queue, id)
	}

	// Safety counter to prevent infinite loops on cyclic graphs.
	processedCount := 0
	maxProcessed := len(g.Nodes) * len(g.Nodes)
	if maxProcessed < 10000 {
		maxProcessed = 10000
	}

	for len(queue) > 0 {
		if processedCount > maxProcessed {
			break
		}
		processedCount++

		currentID := queue[0]
		queue = queue[1:]

		for _, childID := range outgoing[currentID] {
			// The child sits one level below its deepest known parent.
			maxParentLevel := -1
			for _, parentID := range incoming[childID] {
				if parentLevel, exists := nodeLevels[parentID]; exists {
					if parentLevel > maxParentLevel {
						maxParentLevel = parentLevel
					}
				}
			}

			childLevel := maxParentLevel + 1

			if existingLevel, exists := nodeLevels[childID]; !exists || childLevel > existingLevel {
				if exists {
					oldLevelNodes := levelNodes[existingLevel]
					for i, nodeID := range oldLevelNodes {
						if nodeID == childID {
							levelNodes[existingLevel] = append(oldLevelNodes[:i], oldLevelNodes[i+1:]...)
							break
						}
					}
				}

				nodeLevels[childID] = childLevel
				levelNodes[childLevel] = append(levelNodes[childLevel], childID)
				queue = append(queue, childID)
			}
		}
	}

	maxLevel := 0
	for level := range levelNodes {
		if level > maxLevel {
			maxLevel = level
		}
	}
	result.MaxLevel = maxLevel

	for level := 0; level <= maxLevel; level++ {
		nodesAtLevel := levelNodes[level]
		if len(nodesAtLevel) == 0 {
			continue
		}

		primaryPos := config.StartX
		if config.Orientation == LayoutVertical {
			primaryPos = config.StartY
		}
		primaryPos += float64(level) * config.SpacingPrimary

		// Secondary axis positions are centered around the start.
		totalSecondary := float64(len(nodesAtLevel)-1) * config.SpacingSecondary
		startSecondary := config.StartY
		if config.Orientation == LayoutVertical {
			startSecondary = config.StartX
		}
		startSecondary -= totalSecondary / 2

		for i, nodeID := range nodesAtLevel {
			secondaryPos := startSecondary + float64(i)*config.SpacingSecondary

			var pos mnode.Position
			if config.Orientation == LayoutHorizontal {
				pos = mnode.Position{X: primaryPos, Y: secondaryPos}
			} else {
				pos = mnode.Position{X: secondaryPos, Y: primaryPos}
			}
			result.Positions[nodeID] = pos
		}
	}

	return result
}

// ApplyLayout writes the computed positions back into the graph. Comment
// containment is the caller's concern; session arrange recomputes it after.
func ApplyLayout(g *mgraph.Graph, result *LayoutResult) {
	for i := range g.Nodes {
		if pos, ok := result.Positions[g.Nodes[i].ID]; ok {
			g.Nodes[i].Position = pos
		}
	}
}

// ArrangeGraph lays out the execution flow from the graph's entry nodes and
// applies the positions in place.
func ArrangeGraph(g *mgraph.Graph, config LayoutConfig) error {
	entries := EntryNodes(g)
	if len(entries) == 0 {
		return ErrNoEntryNodes
	}
	ApplyLayout(g, Layout(g, entries, config))
	return nil
}
