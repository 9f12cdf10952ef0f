package cooc

import (
	"slices"

	"github.com/gammazero/deque"
)

// Components returns the connected components as vertex id lists, largest first
func Components(g *Graph) [][]int {
	component := make([]int, g.Order())
	for v := range component {
		component[v] = -1
	}

	var components [][]int
	var queue deque.Deque[int]
	for start := range component {
		if component[start] != -1 {
			continue
		}
		id := len(components)
		members := []int{start}
		component[start] = id
		queue.PushBack(start)
		for queue.Len() > 0 {
			v := queue.PopFront()
			for _, inc := range g.Neighbors(v) {
				if component[inc.Neighbor] == -1 {
					component[inc.Neighbor] = id
					members = append(members, inc.Neighbor)
					queue.PushBack(inc.Neighbor)
				}
			}
		}
		slices.Sort(members)
		components = append(components, members)
	}

	slices.SortStableFunc(components, func(a, b []int) int {
		return len(b) - len(a)
	})
	return components
}
