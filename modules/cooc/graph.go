package cooc

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lkarlslund/tagcamps/modules/dedup"
	"github.com/pkg/errors"
)

// Edge is an unordered vertex pair stored with U < V
type Edge struct {
	U, V   int
	Weight int64
}

// Other returns the endpoint that is not v
func (e Edge) Other(v int) int {
	if e.U == v {
		return e.V
	}
	return e.U
}

// Incidence is one entry in a vertex adjacency list
type Incidence struct {
	Neighbor int
	Edge     int
}

// Graph is an undirected simple co-occurrence graph. Vertices and edges are
// addressed by dense index and their attributes live in parallel slices.
// Once handed to Annotate, Filter or Diffuse a graph must not be modified.
type Graph struct {
	names  []string
	counts []int64
	edges  []Edge
	// parallel to edges, nil until the graph has been annotated
	significance []float64

	TotalOccasions  int64
	P0              float64
	WeightThreshold int64
	StartDate       string
	StopDate        string

	lock     sync.Mutex
	adjStart []int
	adj      []Incidence
	index    *NameIndex
}

func NewGraph(totalOccasions, weightThreshold int64) *Graph {
	return &Graph{
		TotalOccasions:  totalOccasions,
		WeightThreshold: weightThreshold,
	}
}

// Order is the number of vertices
func (g *Graph) Order() int {
	return len(g.names)
}

// Size is the number of edges
func (g *Graph) Size() int {
	return len(g.edges)
}

func (g *Graph) Name(v int) string {
	return g.names[v]
}

func (g *Graph) Count(v int) int64 {
	return g.counts[v]
}

func (g *Graph) Edge(e int) Edge {
	return g.edges[e]
}

func (g *Graph) Annotated() bool {
	return g.significance != nil && g.P0 > 0
}

// Significance of edge e, 0 for graphs that are not annotated
func (g *Graph) Significance(e int) float64 {
	if g.significance == nil {
		return 0
	}
	return g.significance[e]
}

// EdgeLabel is a human readable description of edge e used in messages
func (g *Graph) EdgeLabel(e int) string {
	edge := g.edges[e]
	return fmt.Sprintf("edge %v (%v-%v)", e, g.names[edge.U], g.names[edge.V])
}

func (g *Graph) invalidate() {
	g.lock.Lock()
	g.adjStart, g.adj, g.index = nil, nil, nil
	g.lock.Unlock()
}

// AddVertex appends a vertex and returns its id
func (g *Graph) AddVertex(name string, count int64) (int, error) {
	if count < 0 {
		return -1, errors.Wrapf(ErrInvalidGraph, "vertex %q has negative count %v", name, count)
	}
	g.names = append(g.names, name)
	g.counts = append(g.counts, count)
	g.invalidate()
	return len(g.names) - 1, nil
}

// AddEdge appends an edge between u and v. Duplicate pairs are only detected by Validate.
func (g *Graph) AddEdge(u, v int, weight int64) (int, error) {
	if u < 0 || v < 0 || u >= len(g.names) || v >= len(g.names) {
		return -1, errors.Wrapf(ErrInvalidGraph, "edge %v-%v references unknown vertex", u, v)
	}
	if u == v {
		return -1, errors.Wrapf(ErrInvalidGraph, "self loop on %v", g.names[u])
	}
	if weight <= 0 {
		return -1, errors.Wrapf(ErrInvalidGraph, "edge %v-%v has non-positive weight %v", g.names[u], g.names[v], weight)
	}
	if u > v {
		u, v = v, u
	}
	g.edges = append(g.edges, Edge{U: u, V: v, Weight: weight})
	if g.significance != nil {
		g.significance = append(g.significance, 0)
	}
	g.invalidate()
	return len(g.edges) - 1, nil
}

// SetSignificance installs per edge significance values computed against p0.
// The slice is owned by the graph afterwards.
func (g *Graph) SetSignificance(values []float64, p0 float64) error {
	if len(values) != len(g.edges) {
		return errors.Wrapf(ErrInvalidGraph, "got %v significance values for %v edges", len(values), len(g.edges))
	}
	if !(p0 > 0) {
		return errors.Wrapf(ErrInvalidGraph, "p0 must be positive, got %v", p0)
	}
	g.significance = values
	g.P0 = p0
	return nil
}

func (g *Graph) buildAdjacency() {
	g.adjStart = make([]int, len(g.names)+1)
	for _, e := range g.edges {
		g.adjStart[e.U+1]++
		g.adjStart[e.V+1]++
	}
	for i := 1; i < len(g.adjStart); i++ {
		g.adjStart[i] += g.adjStart[i-1]
	}
	fill := slices.Clone(g.adjStart[:len(g.names)])
	g.adj = make([]Incidence, 2*len(g.edges))
	for i, e := range g.edges {
		g.adj[fill[e.U]] = Incidence{Neighbor: e.V, Edge: i}
		fill[e.U]++
		g.adj[fill[e.V]] = Incidence{Neighbor: e.U, Edge: i}
		fill[e.V]++
	}
}

// Neighbors returns the adjacency list of v. The slice must not be modified.
func (g *Graph) Neighbors(v int) []Incidence {
	g.lock.Lock()
	if g.adjStart == nil {
		g.buildAdjacency()
	}
	start, end := g.adjStart[v], g.adjStart[v+1]
	adj := g.adj
	g.lock.Unlock()
	return adj[start:end]
}

func (g *Graph) Degree(v int) int {
	return len(g.Neighbors(v))
}

// Index returns the name lookup for this graph, building it on first use
func (g *Graph) Index() *NameIndex {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.index == nil {
		g.index = newNameIndex(g.names)
	}
	return g.index
}

// Clone returns a deep copy that shares nothing with g
func (g *Graph) Clone() *Graph {
	return &Graph{
		names:           slices.Clone(g.names),
		counts:          slices.Clone(g.counts),
		edges:           slices.Clone(g.edges),
		significance:    slices.Clone(g.significance),
		TotalOccasions:  g.TotalOccasions,
		P0:              g.P0,
		WeightThreshold: g.WeightThreshold,
		StartDate:       g.StartDate,
		StopDate:        g.StopDate,
	}
}

// Validate checks the structural and statistical invariants of the graph
func (g *Graph) Validate() error {
	if g.TotalOccasions < 0 {
		return errors.Wrapf(ErrInvalidGraph, "negative total occasions %v", g.TotalOccasions)
	}
	seenNames := make(map[string]int, len(g.names))
	for v, name := range g.names {
		if other, found := seenNames[name]; found {
			return errors.Wrapf(ErrInvalidGraph, "vertices %v and %v share name %q", other, v, name)
		}
		seenNames[name] = v
		if g.counts[v] < 0 {
			return errors.Wrapf(ErrInvalidGraph, "vertex %q has negative count", name)
		}
	}
	seenPairs := make(map[[2]int]struct{}, len(g.edges))
	for i, e := range g.edges {
		if e.U == e.V {
			return errors.Wrapf(ErrInvalidGraph, "%v is a self loop", g.EdgeLabel(i))
		}
		pair := [2]int{e.U, e.V}
		if _, found := seenPairs[pair]; found {
			return errors.Wrapf(ErrInvalidGraph, "%v duplicates an earlier edge", g.EdgeLabel(i))
		}
		seenPairs[pair] = struct{}{}
		if e.Weight > min(g.counts[e.U], g.counts[e.V]) {
			return errors.Wrapf(ErrInvalidGraph, "%v weight %v exceeds endpoint counts %v and %v", g.EdgeLabel(i), e.Weight, g.counts[e.U], g.counts[e.V])
		}
		if e.Weight < g.WeightThreshold {
			return errors.Wrapf(ErrInvalidGraph, "%v weight %v is below threshold %v", g.EdgeLabel(i), e.Weight, g.WeightThreshold)
		}
	}
	if g.significance != nil && len(g.significance) != len(g.edges) {
		return errors.Wrapf(ErrInvalidGraph, "%v significance values for %v edges", len(g.significance), len(g.edges))
	}
	return nil
}

// Fingerprint identifies the content of the graph, used to tie stored runs to their input
func (g *Graph) Fingerprint() string {
	h := dedup.NewHasher().Int(g.TotalOccasions).Int(g.WeightThreshold).Float(g.P0)
	for v, name := range g.names {
		h.String(name).Int(g.counts[v])
	}
	for i, e := range g.edges {
		h.Int(int64(e.U)).Int(int64(e.V)).Int(e.Weight)
		if g.significance != nil {
			h.Float(g.significance[i])
		}
	}
	return h.Hex()
}

// TopByCount returns up to limit vertex ids ordered by descending count, ties by name
func (g *Graph) TopByCount(limit int) []int {
	ids := make([]int, len(g.names))
	for i := range ids {
		ids[i] = i
	}
	slices.SortFunc(ids, func(a, b int) int {
		if g.counts[a] != g.counts[b] {
			if g.counts[a] > g.counts[b] {
				return -1
			}
			return 1
		}
		if g.names[a] < g.names[b] {
			return -1
		}
		if g.names[a] > g.names[b] {
			return 1
		}
		return 0
	})
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}
