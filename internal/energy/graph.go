package energy

import (
	"sort"

	"go-power-towers/internal/types"
	"go-power-towers/internal/utils"
)

// PoweredNodes returns every node reachable from a generator along the
// direction of flow, generators included.
func (nw *Network) PoweredNodes() map[types.EntityID]bool {
	adj := make(map[types.EntityID][]types.EntityID)
	for _, c := range nw.connections {
		adj[c.From] = append(adj[c.From], c.To)
	}

	powered := make(map[types.EntityID]bool)
	var queue []types.EntityID
	for _, id := range nw.order {
		if nw.nodes[id].Kind.IsGenerator() {
			powered[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if !powered[next] {
				powered[next] = true
				queue = append(queue, next)
			}
		}
	}
	return powered
}

// Islands groups nodes into connected components, ignoring edge direction.
// Each island is sorted by id and islands are ordered by their smallest id.
func (nw *Network) Islands() [][]types.EntityID {
	uf := utils.NewUnionFind()
	for _, id := range nw.order {
		uf.Find(id)
	}
	for _, c := range nw.connections {
		uf.Union(c.From, c.To)
	}

	groups := make(map[types.EntityID][]types.EntityID)
	for _, id := range nw.order {
		root := uf.Find(id)
		groups[root] = append(groups[root], id)
	}
	islands := make([][]types.EntityID, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		islands = append(islands, members)
	}
	sort.Slice(islands, func(i, j int) bool { return islands[i][0] < islands[j][0] })
	return islands
}
