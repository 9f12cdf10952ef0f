package cooc

import (
	"math"

	"github.com/pkg/errors"
)

type FilterOptions struct {
	// Vertices with count < MinCountRatio*ReferenceMaxCount are dropped
	MinCountRatio     float64
	ReferenceMaxCount int64
	// Significance is re-based to this p0, 0 keeps the graph's own
	TargetP0 float64
}

type FilterStats struct {
	VerticesIn, EdgesIn int

	VerticesBelowCount     int
	EdgesOfDroppedVertices int
	EdgesBelowSignificance int
	IsolatedVertices       int

	VerticesOut, EdgesOut int
}

// RebaseShift is the amount subtracted from significance computed at fromP0 to
// express it against toP0. Significance is log10(p0/p), so this is exact.
func RebaseShift(fromP0, toP0 float64) float64 {
	if fromP0 == toP0 {
		return 0
	}
	return math.Log10(fromP0 / toP0)
}

// Filter prunes an annotated graph: low count vertices go first, then edges
// whose significance re-based to TargetP0 is negative, then vertices left
// without edges. The result has dense ids in the input relative order and
// records TargetP0. g is not modified. When nothing survives the empty graph
// is returned together with ErrDegenerateGraph.
func Filter(g *Graph, opts FilterOptions) (*Graph, FilterStats, error) {
	stats := FilterStats{VerticesIn: g.Order(), EdgesIn: g.Size()}
	if !g.Annotated() {
		return nil, stats, ErrNotAnnotated
	}
	if opts.MinCountRatio < 0 || opts.ReferenceMaxCount < 0 || opts.TargetP0 < 0 {
		return nil, stats, errors.Errorf("cooc: invalid filter options %+v", opts)
	}
	targetP0 := opts.TargetP0
	if targetP0 == 0 {
		targetP0 = g.P0
	}

	minCount := opts.MinCountRatio * float64(opts.ReferenceMaxCount)
	keep := make([]bool, g.Order())
	for v := range keep {
		keep[v] = float64(g.counts[v]) >= minCount
		if !keep[v] {
			stats.VerticesBelowCount++
		}
	}

	shift := RebaseShift(g.P0, targetP0)
	degree := make([]int, g.Order())
	var keptEdges []int
	var keptSignificance []float64
	for i, e := range g.edges {
		if !keep[e.U] || !keep[e.V] {
			stats.EdgesOfDroppedVertices++
			continue
		}
		s := g.significance[i] - shift
		if s < 0 {
			stats.EdgesBelowSignificance++
			continue
		}
		keptEdges = append(keptEdges, i)
		keptSignificance = append(keptSignificance, s)
		degree[e.U]++
		degree[e.V]++
	}

	remap := make([]int, g.Order())
	result := NewGraph(g.TotalOccasions, g.WeightThreshold)
	result.StartDate, result.StopDate = g.StartDate, g.StopDate
	for v := range remap {
		remap[v] = -1
		if !keep[v] {
			continue
		}
		if degree[v] == 0 {
			stats.IsolatedVertices++
			continue
		}
		remap[v] = len(result.names)
		result.names = append(result.names, g.names[v])
		result.counts = append(result.counts, g.counts[v])
	}

	result.edges = make([]Edge, len(keptEdges))
	for i, ei := range keptEdges {
		e := g.edges[ei]
		result.edges[i] = Edge{U: remap[e.U], V: remap[e.V], Weight: e.Weight}
	}
	if keptSignificance == nil {
		keptSignificance = []float64{}
	}
	result.significance = keptSignificance
	result.P0 = targetP0

	stats.VerticesOut, stats.EdgesOut = result.Order(), result.Size()
	if result.Order() == 0 {
		return result, stats, ErrDegenerateGraph
	}
	return result, stats, nil
}
