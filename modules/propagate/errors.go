package propagate

import "errors"

var (
	// ErrEmptySeedSet is reported per label in Result.Warnings when none of
	// the label's seeds is a vertex of the graph
	ErrEmptySeedSet  = errors.New("propagate: no seed vertex in graph")
	ErrUnknownSeed   = errors.New("propagate: seed name not in graph")
	ErrDuplicateSeed = errors.New("propagate: seed already labelled")
	ErrInvalidSeed   = errors.New("propagate: invalid seed")
)
