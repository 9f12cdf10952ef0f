package pipeline

import (
	"context"
	"errors"

	"github.com/gobwas/glob"
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/lkarlslund/tagcamps/modules/propagate"
	"github.com/lkarlslund/tagcamps/modules/settings"
	"github.com/lkarlslund/tagcamps/modules/significance"
	"github.com/lkarlslund/tagcamps/modules/ui"
)

type Propagation struct {
	ReferenceMaxCount int64
	Filtered          *cooc.Graph
	FilterStats       cooc.FilterStats
	Seeds             *propagate.Seeds
	Result            *propagate.Result
	// Seed problems and empty camps, the run goes on regardless
	Warnings []error
}

// Propagate filters the annotated graph g against the camps and diffuses the
// camp labels over what is left. The count cutoff is taken relative to the
// seeds as found in g, the significance is re-based to opts.P0.
func Propagate(ctx context.Context, g *cooc.Graph, camps [][]string, opts settings.Options) (*Propagation, error) {
	var p Propagation
	full, _ := propagate.SeedsFromNames(g.Index(), camps)
	p.ReferenceMaxCount = propagate.ReferenceMaxCount(g, full)

	var err error
	p.Filtered, p.FilterStats, err = cooc.Filter(g, cooc.FilterOptions{
		MinCountRatio:     opts.CountRatio,
		ReferenceMaxCount: p.ReferenceMaxCount,
		TargetP0:          opts.P0,
	})
	if errors.Is(err, cooc.ErrDegenerateGraph) {
		p.Warnings = append(p.Warnings, err)
	} else if err != nil {
		return nil, err
	}

	seeds, warnings := propagate.SeedsFromNames(p.Filtered.Index(), camps)
	p.Seeds = seeds
	p.Warnings = append(p.Warnings, warnings...)
	p.Result, err = propagate.DiffuseParallel(ctx, p.Filtered, p.Seeds, opts.NCPU)
	if err != nil {
		return nil, err
	}
	p.Warnings = append(p.Warnings, p.Result.Warnings...)
	return &p, nil
}

// Iterate runs Propagate repeatedly, growing every camp with up to limit new
// candidates per round. It stops early when a round adds nothing. The final
// camp lists are returned.
func Iterate(ctx context.Context, g *cooc.Graph, camps [][]string, opts settings.Options, rounds, limit int, exclude []glob.Glob, observe func(round int, p *Propagation, next [][]string)) ([][]string, error) {
	for round := 1; round <= rounds; round++ {
		p, err := Propagate(ctx, g, camps, opts)
		if err != nil {
			return nil, err
		}
		next := propagate.NextSeeds(p.Result, camps, limit, exclude)
		if observe != nil {
			observe(round, p, next)
		}
		if !grew(camps, next) {
			ui.Info().Msgf("Round %v added no new tags, stopping", round)
			return next, nil
		}
		camps = next
	}
	return camps, nil
}

func grew(before, after [][]string) bool {
	var b, a int
	for _, camp := range before {
		b += len(camp)
	}
	for _, camp := range after {
		a += len(camp)
	}
	return a > b
}

// EnsureAnnotated returns g when it carries significance, otherwise an annotated copy
func EnsureAnnotated(ctx context.Context, g *cooc.Graph, opts settings.Options) (*cooc.Graph, error) {
	if g.Annotated() {
		return g, nil
	}
	ui.Info().Msgf("Graph is not annotated, scoring %v edges against p0 %v", g.Size(), opts.P0)
	return annotate(ctx, g, opts)
}

func annotate(ctx context.Context, g *cooc.Graph, opts settings.Options) (*cooc.Graph, error) {
	pb := ui.ProgressBar("Scoring edges", int64(g.Size()))
	defer pb.Finish()
	return significance.Annotate(ctx, g, significance.AnnotateOptions{
		P0:       opts.P0,
		Workers:  opts.NCPU,
		Progress: func(done, total int) { pb.Add(1) },
	})
}
