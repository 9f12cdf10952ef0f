package graphio

import (
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

// assembler rebuilds a graph from files that name vertices by arbitrary ids
type assembler struct {
	g            *cooc.Graph
	ids          map[int]int
	significance []float64
	missing      int
}

func newAssembler(total, threshold int64) *assembler {
	return &assembler{
		g:   cooc.NewGraph(total, threshold),
		ids: make(map[int]int),
	}
}

func (a *assembler) vertex(id int, name string, count int64) error {
	if _, found := a.ids[id]; found {
		return errors.Wrapf(cooc.ErrInvalidGraph, "vertex id %v appears twice", id)
	}
	v, err := a.g.AddVertex(name, count)
	if err != nil {
		return err
	}
	a.ids[id] = v
	return nil
}

func (a *assembler) edge(source, target int, weight int64, significance *float64) error {
	u, found := a.ids[source]
	if !found {
		return errors.Wrapf(cooc.ErrInvalidGraph, "edge source %v is not a vertex", source)
	}
	v, found := a.ids[target]
	if !found {
		return errors.Wrapf(cooc.ErrInvalidGraph, "edge target %v is not a vertex", target)
	}
	if _, err := a.g.AddEdge(u, v, weight); err != nil {
		return err
	}
	if significance == nil {
		a.missing++
		a.significance = append(a.significance, 0)
	} else {
		a.significance = append(a.significance, *significance)
	}
	return nil
}

// finish installs the significance values when the file declared p0. Either
// every edge carries one or the graph is rejected.
func (a *assembler) finish(p0 float64) (*cooc.Graph, error) {
	if p0 <= 0 {
		return a.g, nil
	}
	if a.missing > 0 {
		return nil, errors.Wrapf(cooc.ErrInvalidGraph, "graph has p0 %v but %v edges lack significance", p0, a.missing)
	}
	if a.significance == nil {
		a.significance = []float64{}
	}
	if err := a.g.SetSignificance(a.significance, p0); err != nil {
		return nil, err
	}
	return a.g, nil
}
