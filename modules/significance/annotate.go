package significance

import (
	"context"
	"sync/atomic"

	gsync "github.com/SaveTheRbtz/generic-sync-map-go"
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/lkarlslund/tagcamps/modules/parallel"
	"github.com/lkarlslund/tagcamps/modules/settings"
	"github.com/pkg/errors"
)

type AnnotateOptions struct {
	// Reference probability, defaults to settings.DefaultP0
	P0      float64
	Workers int
	// Called after every scored edge from the worker goroutines
	Progress func(done, total int)
}

type triple struct {
	n1, n2, r int64
}

// Annotate scores every edge of g against the null model and returns a copy
// of g carrying the significance values and p0. g itself is left alone. The
// first edge that cannot be scored aborts the whole batch.
func Annotate(ctx context.Context, g *cooc.Graph, opts AnnotateOptions) (*cooc.Graph, error) {
	p0 := opts.P0
	if p0 == 0 {
		p0 = settings.DefaultP0
	}
	if !(p0 > 0 && p0 <= 1) {
		return nil, errors.Wrapf(ErrInvalidArguments, "p0 must be in (0,1], got %v", p0)
	}

	var memo gsync.MapOf[triple, Score]
	var done atomic.Int64
	total := g.Size()

	significance, err := parallel.Map(ctx, total, opts.Workers, func(ctx context.Context, i int) (float64, error) {
		e := g.Edge(i)
		n1, n2 := g.Count(e.U), g.Count(e.V)
		if n1 < n2 {
			n1, n2 = n2, n1
		}
		key := triple{n1, n2, e.Weight}
		score, found := memo.Load(key)
		if !found {
			var err error
			score, err = ScoreOf(g.TotalOccasions, n1, n2, e.Weight)
			if err != nil {
				return 0, errors.Wrap(err, g.EdgeLabel(i))
			}
			memo.Store(key, score)
		}
		if opts.Progress != nil {
			opts.Progress(int(done.Add(1)), total)
		}
		return score.Significance(p0), nil
	})
	if err != nil {
		return nil, err
	}

	result := g.Clone()
	if err := result.SetSignificance(significance, p0); err != nil {
		return nil, err
	}
	return result, nil
}
