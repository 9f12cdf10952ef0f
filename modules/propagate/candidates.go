package propagate

import (
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

type SelectOptions struct {
	// Maximum number of rows returned, all when <= 0
	Limit int
	// Skip vertices that already carry an initial label
	OnlyNew bool
	// Names matching any of these are never candidates
	Exclude []glob.Glob
}

// Qualifies reports whether the significance towards label column i is
// larger than the support for all other labels together
func (row Row) Qualifies(i int) bool {
	var total float64
	for _, s := range row.SignificanceSum {
		total += s
	}
	return 2*row.SignificanceSum[i] > total
}

// Candidates ranks the vertices that qualify for label l by descending count,
// ties by name
func Candidates(res *Result, l Label, opts SelectOptions) []Row {
	i := res.LabelIndex(l)
	if i < 0 {
		return nil
	}
	var result []Row
	for _, row := range res.Rows {
		if opts.OnlyNew && row.InitialLabel != NoLabel {
			continue
		}
		if !row.Qualifies(i) || excluded(row.Name, opts.Exclude) {
			continue
		}
		result = append(result, row)
	}
	slices.SortFunc(result, byCountThenName)
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

func excluded(name string, patterns []glob.Glob) bool {
	for _, pattern := range patterns {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

func byCountThenName(a, b Row) int {
	if a.Count != b.Count {
		if a.Count > b.Count {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// CompileExcludes compiles glob patterns for SelectOptions.Exclude
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	result := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "exclude pattern %q", pattern)
		}
		result = append(result, g)
	}
	return result, nil
}

// NextSeeds builds the camp lists for another round: camps[i] belongs to
// res.Labels[i], keeps all its names and gains up to limit new candidates.
func NextSeeds(res *Result, camps [][]string, limit int, exclude []glob.Glob) [][]string {
	next := make([][]string, len(res.Labels))
	for i, l := range res.Labels {
		if i < len(camps) {
			next[i] = slices.Clone(camps[i])
		}
		for _, row := range Candidates(res, l, SelectOptions{Limit: limit, OnlyNew: true, Exclude: exclude}) {
			next[i] = append(next[i], row.Name)
		}
	}
	return next
}
