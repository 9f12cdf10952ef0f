package cooc_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lkarlslund/tagcamps/modules/cooc"
)

type testVertex struct {
	name  string
	count int64
}

type testEdge struct {
	u, v   int
	weight int64
}

func buildGraph(t *testing.T, total, threshold int64, vertices []testVertex, edges []testEdge) *cooc.Graph {
	t.Helper()
	g := cooc.NewGraph(total, threshold)
	for _, v := range vertices {
		if _, err := g.AddVertex(v.name, v.count); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e.u, e.v, e.weight); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func neighborsOf(g *cooc.Graph, v int) []int {
	var result []int
	for _, inc := range g.Neighbors(v) {
		result = append(result, inc.Neighbor)
	}
	return result
}

func TestGraph_Adjacency(t *testing.T) {
	g := buildGraph(t, 100, 1,
		[]testVertex{{"a", 10}, {"b", 10}, {"c", 10}, {"d", 10}},
		[]testEdge{{0, 1, 2}, {2, 0, 3}, {1, 2, 1}},
	)

	if g.Order() != 4 || g.Size() != 3 {
		t.Fatalf("Order/Size = %v/%v", g.Order(), g.Size())
	}
	if e := g.Edge(1); e.U != 0 || e.V != 2 {
		t.Errorf("edge endpoints not ordered: %+v", e)
	}
	tests := []struct {
		v    int
		want []int
	}{
		{0, []int{1, 2}},
		{1, []int{0, 2}},
		{2, []int{0, 1}},
		{3, nil},
	}
	for _, tt := range tests {
		if got := neighborsOf(g, tt.v); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Neighbors(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	// adding after adjacency was built must be visible
	if _, err := g.AddEdge(3, 0, 1); err != nil {
		t.Fatal(err)
	}
	if got := g.Degree(3); got != 1 {
		t.Errorf("Degree(3) after AddEdge = %v", got)
	}
}

func TestGraph_AddEdgeRejects(t *testing.T) {
	g := buildGraph(t, 10, 1, []testVertex{{"a", 5}, {"b", 5}}, nil)
	for _, e := range []testEdge{{0, 0, 1}, {0, 5, 1}, {0, 1, 0}, {-1, 1, 1}} {
		if _, err := g.AddEdge(e.u, e.v, e.weight); !errors.Is(err, cooc.ErrInvalidGraph) {
			t.Errorf("AddEdge(%v) error = %v, want ErrInvalidGraph", e, err)
		}
	}
	if _, err := g.AddVertex("c", -1); !errors.Is(err, cooc.ErrInvalidGraph) {
		t.Errorf("AddVertex with negative count error = %v", err)
	}
}

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name     string
		vertices []testVertex
		edges    []testEdge
		ok       bool
	}{
		{
			name:     "valid",
			vertices: []testVertex{{"a", 10}, {"b", 5}},
			edges:    []testEdge{{0, 1, 5}},
			ok:       true,
		},
		{
			name:     "weight above marginal",
			vertices: []testVertex{{"a", 10}, {"b", 5}},
			edges:    []testEdge{{0, 1, 6}},
		},
		{
			name:     "weight below threshold",
			vertices: []testVertex{{"a", 10}, {"b", 5}},
			edges:    []testEdge{{0, 1, 2}},
		},
		{
			name:     "duplicate pair",
			vertices: []testVertex{{"a", 10}, {"b", 5}},
			edges:    []testEdge{{0, 1, 3}, {1, 0, 3}},
		},
		{
			name:     "duplicate name",
			vertices: []testVertex{{"a", 10}, {"a", 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, 100, 3, tt.vertices, tt.edges)
			err := g.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, cooc.ErrInvalidGraph) {
				t.Errorf("Validate() error %v is not ErrInvalidGraph", err)
			}
		})
	}
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := buildGraph(t, 100, 1, []testVertex{{"a", 10}, {"b", 5}}, []testEdge{{0, 1, 5}})
	if err := g.SetSignificance([]float64{2.5}, 1e-6); err != nil {
		t.Fatal(err)
	}
	c := g.Clone()
	c.AddVertex("c", 1)
	c.AddEdge(0, 2, 1)

	if g.Order() != 2 || g.Size() != 1 {
		t.Errorf("source graph changed by clone modification: %v/%v", g.Order(), g.Size())
	}
	if c.Significance(0) != 2.5 || c.P0 != 1e-6 || !c.Annotated() {
		t.Errorf("clone lost annotation")
	}
	if g.Fingerprint() == c.Fingerprint() {
		t.Errorf("different graphs share fingerprint %v", g.Fingerprint())
	}
	if g.Fingerprint() != g.Clone().Fingerprint() {
		t.Errorf("fingerprint differs for identical clone")
	}
}

func TestNameIndex(t *testing.T) {
	g := buildGraph(t, 100, 1,
		[]testVertex{{"money", 10}, {"401k", 8}, {"Trump", 3}, {"trump", 2}, {"Vote", 1}},
		nil,
	)
	ni := g.Index()
	tests := []struct {
		name  string
		want  int
		found bool
	}{
		{"money", 0, true},
		{"#money", 0, true},
		{"401K", 1, true},
		{"Trump", 2, true},
		{"trump", 3, true},
		{"TRUMP", -1, false}, // ambiguous once normalized
		{"#vote", 4, true},
		{"absent", -1, false},
	}
	for _, tt := range tests {
		got, found := ni.Lookup(tt.name)
		if got != tt.want || found != tt.found {
			t.Errorf("Lookup(%q) = %v,%v want %v,%v", tt.name, got, found, tt.want, tt.found)
		}
	}

	found, missing := ni.LookupAll([]string{"money", "nope", "vote"})
	if !reflect.DeepEqual(found, []int{0, 4}) || !reflect.DeepEqual(missing, []string{"nope"}) {
		t.Errorf("LookupAll() = %v, %v", found, missing)
	}
}

func TestTopByCount(t *testing.T) {
	g := buildGraph(t, 100, 1,
		[]testVertex{{"b", 5}, {"a", 5}, {"c", 9}, {"d", 1}},
		nil,
	)
	if got := g.TopByCount(3); !reflect.DeepEqual(got, []int{2, 1, 0}) {
		t.Errorf("TopByCount(3) = %v", got)
	}
	if got := g.TopByCount(0); len(got) != 4 {
		t.Errorf("TopByCount(0) returned %v ids", len(got))
	}
}

func TestComponents(t *testing.T) {
	g := buildGraph(t, 100, 1,
		[]testVertex{{"a", 9}, {"b", 9}, {"c", 9}, {"d", 9}, {"e", 9}, {"f", 9}},
		[]testEdge{{0, 1, 1}, {3, 4, 1}, {4, 5, 1}},
	)
	want := [][]int{{3, 4, 5}, {0, 1}, {2}}
	if got := cooc.Components(g); !reflect.DeepEqual(got, want) {
		t.Errorf("Components() = %v, want %v", got, want)
	}
}
