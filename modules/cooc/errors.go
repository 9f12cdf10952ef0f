package cooc

import "errors"

var (
	// ErrInvalidGraph indicates a graph violating its structural or count invariants.
	ErrInvalidGraph = errors.New("cooc: invalid graph")
	// ErrNotAnnotated indicates an operation needing edge significance got a raw count graph.
	ErrNotAnnotated = errors.New("cooc: graph has no significance values")
	// ErrDegenerateGraph is returned with an empty result when filtering pruned every vertex.
	ErrDegenerateGraph = errors.New("cooc: filtering left an empty graph")
)
