package propagate

import (
	"context"
	"slices"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/lkarlslund/tagcamps/modules/parallel"
	"github.com/pkg/errors"
)

// Row holds the one hop statistics of a single vertex. NeighborCount and
// SignificanceSum are indexed like Result.Labels.
type Row struct {
	Name            string
	Count           int64
	VertexID        int
	InitialLabel    Label
	NeighborCount   []int
	SignificanceSum []float64
}

// Result has one row per graph vertex, in vertex id order
type Result struct {
	Labels []Label
	Rows   []Row
	// ErrEmptySeedSet for every label without seed vertices in the graph
	Warnings []error
}

// LabelIndex returns the column of label l, -1 if l is not part of the result
func (r *Result) LabelIndex(l Label) int {
	i, found := slices.BinarySearch(r.Labels, l)
	if !found {
		return -1
	}
	return i
}

// Diffuse spreads the seed labels one hop. Every vertex, seeds included, gets
// the number of neighbours carrying each initial label and the summed
// significance of the edges to them. Seeds are not changed.
func Diffuse(g *cooc.Graph, seeds *Seeds) (*Result, error) {
	return DiffuseParallel(context.Background(), g, seeds, 1)
}

// DiffuseParallel is Diffuse with the vertices split across workers
func DiffuseParallel(ctx context.Context, g *cooc.Graph, seeds *Seeds, workers int) (*Result, error) {
	if !g.Annotated() {
		return nil, cooc.ErrNotAnnotated
	}
	result := &Result{Labels: slices.Clone(seeds.Labels())}
	present := make([]bool, len(result.Labels))
	columns := make([]int, g.Order()) // column of each vertex's initial label, -1 if none
	for v := range columns {
		columns[v] = -1
	}
	for _, l := range result.Labels {
		for _, v := range seeds.Vertices(l) {
			if v >= g.Order() {
				return nil, errors.Wrapf(ErrInvalidSeed, "vertex %v not in graph of %v vertices", v, g.Order())
			}
			columns[v] = result.LabelIndex(l)
			present[columns[v]] = true
		}
	}
	for i, l := range result.Labels {
		if !present[i] {
			result.Warnings = append(result.Warnings, errors.Wrapf(ErrEmptySeedSet, "camp %v", l))
		}
	}

	chunks := parallel.Chunks(g.Order(), workers)
	parts, err := parallel.Map(ctx, len(chunks), workers, func(ctx context.Context, i int) ([]Row, error) {
		rows := make([]Row, 0, chunks[i][1]-chunks[i][0])
		for v := chunks[i][0]; v < chunks[i][1]; v++ {
			rows = append(rows, diffuseVertex(g, v, seeds.Label(v), columns, len(result.Labels)))
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	result.Rows = make([]Row, 0, g.Order())
	for _, rows := range parts {
		result.Rows = append(result.Rows, rows...)
	}
	return result, nil
}

func diffuseVertex(g *cooc.Graph, v int, initial Label, columns []int, labels int) Row {
	row := Row{
		Name:            g.Name(v),
		Count:           g.Count(v),
		VertexID:        v,
		InitialLabel:    initial,
		NeighborCount:   make([]int, labels),
		SignificanceSum: make([]float64, labels),
	}
	for _, inc := range g.Neighbors(v) {
		if c := columns[inc.Neighbor]; c >= 0 {
			row.NeighborCount[c]++
			row.SignificanceSum[c] += g.Significance(inc.Edge)
		}
	}
	return row
}
