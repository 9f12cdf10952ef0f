package cooc_test

import (
	"errors"
	"math"
	"testing"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotatedGraph(t *testing.T) *cooc.Graph {
	t.Helper()
	g := buildGraph(t, 1000, 1,
		[]testVertex{{"a", 100}, {"b", 80}, {"c", 50}, {"d", 20}, {"e", 1}},
		[]testEdge{
			{0, 1, 40}, // 0 a-b
			{0, 2, 10}, // 1 a-c
			{1, 2, 30}, // 2 b-c
			{2, 3, 5},  // 3 c-d
			{3, 4, 1},  // 4 d-e
		},
	)
	require.NoError(t, g.SetSignificance([]float64{30, 0.5, 12, 2.5, 8}, 1e-6))
	return g
}

func TestFilter_Steps(t *testing.T) {
	g := annotatedGraph(t)
	before := g.Fingerprint()

	result, stats, err := cooc.Filter(g, cooc.FilterOptions{
		MinCountRatio:     0.1,
		ReferenceMaxCount: 100, // drops e (count 1 < 10)
		TargetP0:          1e-7,
	})
	require.NoError(t, err)
	assert.Equal(t, before, g.Fingerprint(), "input graph modified")

	// shift is log10(1e-6/1e-7) = 1: a-c drops to -0.5, c-d to 1.5
	assert.Equal(t, cooc.FilterStats{
		VerticesIn: 5, EdgesIn: 5,
		VerticesBelowCount:     1,
		EdgesOfDroppedVertices: 1,
		EdgesBelowSignificance: 1,
		IsolatedVertices:       0,
		VerticesOut:            4, EdgesOut: 3,
	}, stats)

	assert.Equal(t, 1e-7, result.P0)
	require.Equal(t, 4, result.Order())
	for v, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, name, result.Name(v))
	}
	wantSignificance := []float64{29, 11, 1.5}
	for e := range wantSignificance {
		assert.InDelta(t, wantSignificance[e], result.Significance(e), 1e-9)
	}
	assert.Equal(t, cooc.Edge{U: 2, V: 3, Weight: 5}, result.Edge(2))
	assert.NoError(t, result.Validate())
}

func TestFilter_RemovesIsolated(t *testing.T) {
	g := annotatedGraph(t)
	// shift of 3 drops a-c and c-d, every vertex keeps an edge
	result, stats, err := cooc.Filter(g, cooc.FilterOptions{TargetP0: 1e-9})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EdgesBelowSignificance)
	assert.Equal(t, 0, stats.IsolatedVertices)
	assert.Equal(t, 3, result.Size())
	assert.Equal(t, 5, result.Order())

	// shift of 9 leaves only a-b and b-c, d and e become isolated
	result, stats, err = cooc.Filter(g, cooc.FilterOptions{TargetP0: 1e-15})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EdgesBelowSignificance)
	assert.Equal(t, 2, stats.IsolatedVertices)
	assert.Equal(t, 3, result.Order())
	assert.Equal(t, 2, result.Size())

	// count exactly at the cutoff is kept
	result, stats, err = cooc.Filter(g, cooc.FilterOptions{MinCountRatio: 0.5, ReferenceMaxCount: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VerticesBelowCount)
	assert.Equal(t, 3, result.Order())
	assert.Equal(t, 0, stats.IsolatedVertices)

	result, stats, err = cooc.Filter(g, cooc.FilterOptions{MinCountRatio: 0.9, ReferenceMaxCount: 100})
	assert.True(t, errors.Is(err, cooc.ErrDegenerateGraph))
	assert.Equal(t, 1, stats.IsolatedVertices)
	assert.Equal(t, 0, result.Order())
}

func TestFilter_Identity(t *testing.T) {
	g := annotatedGraph(t)
	result, stats, err := cooc.Filter(g, cooc.FilterOptions{TargetP0: g.P0})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.VerticesBelowCount+stats.EdgesBelowSignificance+stats.IsolatedVertices)
	assert.Equal(t, g.Fingerprint(), result.Fingerprint())
}

func TestFilter_RebaseComposes(t *testing.T) {
	g := annotatedGraph(t)
	direct, _, err := cooc.Filter(g, cooc.FilterOptions{TargetP0: 1e-8})
	require.NoError(t, err)

	step, _, err := cooc.Filter(g, cooc.FilterOptions{TargetP0: 1e-7})
	require.NoError(t, err)
	twice, _, err := cooc.Filter(step, cooc.FilterOptions{TargetP0: 1e-8})
	require.NoError(t, err)

	require.Equal(t, direct.Size(), twice.Size())
	for e := 0; e < direct.Size(); e++ {
		assert.Equal(t, direct.Edge(e), twice.Edge(e))
		assert.InDelta(t, direct.Significance(e), twice.Significance(e), 1e-9)
	}
}

func TestFilter_RequiresAnnotation(t *testing.T) {
	g := buildGraph(t, 10, 1, []testVertex{{"a", 5}, {"b", 5}}, []testEdge{{0, 1, 2}})
	_, _, err := cooc.Filter(g, cooc.FilterOptions{})
	assert.ErrorIs(t, err, cooc.ErrNotAnnotated)
}

func TestRebaseShift(t *testing.T) {
	assert.Equal(t, 0.0, cooc.RebaseShift(1e-6, 1e-6))
	assert.InDelta(t, 2.0, cooc.RebaseShift(1e-6, 1e-8), 1e-12)
	assert.InDelta(t, -1.0, cooc.RebaseShift(1e-6, 1e-5), 1e-12)
	assert.False(t, math.IsNaN(cooc.RebaseShift(0.5, 0.25)))
}
