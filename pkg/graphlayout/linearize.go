package graphlayout

import (
	"sort"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/mnode"
)

// LinearizeNodes returns nodes in BFS traversal order from the entry nodes.
// Neighbors are sorted alphabetically by title for deterministic ordering,
// which the compiler relies on for stable emission. Disconnected nodes are
// appended at the end, also sorted alphabetically.
func LinearizeNodes(g *mgraph.Graph, entryIDs []idwrap.IDWrap) []mnode.Node {
	if len(g.Nodes) == 0 {
		return nil
	}

	nodeMap := make(map[idwrap.IDWrap]mnode.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeMap[n.ID] = n
	}

	edgesBySource := OutgoingAdjacency(g.Connections)

	visited := make(map[idwrap.IDWrap]bool)
	var result []mnode.Node
	var queue []idwrap.IDWrap
	for _, id := range entryIDs {
		if _, ok := nodeMap[id]; !ok || visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if n, ok := nodeMap[currentID]; ok {
			result = append(result, n)
		}

		var neighbors []mnode.Node
		for _, targetID := range edgesBySource[currentID] {
			if target, ok := nodeMap[targetID]; ok {
				neighbors = append(neighbors, target)
			}
		}

		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].Title != neighbors[j].Title {
				return neighbors[i].Title < neighbors[j].Title
			}
			return neighbors[i].ID.Compare(neighbors[j].ID) < 0
		})

		for _, neighbor := range neighbors {
			if !visited[neighbor.ID] {
				visited[neighbor.ID] = true
				queue = append(queue, neighbor.ID)
			}
		}
	}

	var disconnected []mnode.Node
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			disconnected = append(disconnected, n)
		}
	}

	sort.Slice(disconnected, func(i, j int) bool {
		if disconnected[i].Title != disconnected[j].Title {
			return disconnected[i].Title < disconnected[j].Title
		}
		return disconnected[i].ID.Compare(disconnected[j].ID) < 0
	})

	return append(result, disconnected...)
}
