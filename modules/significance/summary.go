package significance

import (
	"math"
	"slices"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the significance distribution of an annotated graph
type Summary struct {
	Edges    int
	Positive int
	Mean     float64
	StdDev   float64
	Min, Max float64
	// Quantiles at 10, 50 and 90 percent
	Q10, Median, Q90 float64
}

func Summarize(g *cooc.Graph) Summary {
	s := Summary{Edges: g.Size()}
	if s.Edges == 0 || !g.Annotated() {
		return s
	}
	values := make([]float64, g.Size())
	for e := range values {
		values[e] = g.Significance(e)
		if values[e] > 0 {
			s.Positive++
		}
	}
	slices.Sort(values)

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	s.Min, s.Max = values[0], values[len(values)-1]
	s.Q10 = stat.Quantile(0.1, stat.Empirical, values, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	s.Q90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	return s
}
