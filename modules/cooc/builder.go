package cooc

import (
	"bufio"
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/lkarlslund/tagcamps/modules/dedup"
	"github.com/lkarlslund/tagcamps/modules/util"
	"github.com/pkg/errors"
)

// Builder accumulates (unit, tag) occurrence records into a co-occurrence graph.
// A unit is one observation, e.g. a post, and a tag counts at most once per unit.
type Builder struct {
	weightThreshold int64
	units           map[string]map[string]struct{}
}

func NewBuilder(weightThreshold int64) *Builder {
	if weightThreshold < 1 {
		weightThreshold = 1
	}
	return &Builder{
		weightThreshold: weightThreshold,
		units:           make(map[string]map[string]struct{}),
	}
}

func (b *Builder) Add(unit, tag string) {
	tag = util.NormalizeTag(tag)
	if tag == "" {
		return
	}
	tags := b.units[unit]
	if tags == nil {
		tags = make(map[string]struct{})
		b.units[dedup.D.S(unit)] = tags
	}
	tags[dedup.D.S(tag)] = struct{}{}
}

// Units is the number of distinct units seen so far
func (b *Builder) Units() int {
	return len(b.units)
}

type tagPair struct {
	a, b string
}

// Graph assembles the graph. Vertices are ordered by descending count then name;
// only tags taking part in at least one kept edge become vertices.
func (b *Builder) Graph() *Graph {
	counts := make(map[string]int64)
	pairs := make(map[tagPair]int64)
	var sorted []string
	for _, tags := range b.units {
		sorted = sorted[:0]
		for tag := range tags {
			counts[tag]++
			sorted = append(sorted, tag)
		}
		slices.Sort(sorted)
		for i := range sorted {
			for j := i + 1; j < len(sorted); j++ {
				pairs[tagPair{sorted[i], sorted[j]}]++
			}
		}
	}

	inGraph := make(map[string]struct{})
	for pair, w := range pairs {
		if w >= b.weightThreshold {
			inGraph[pair.a] = struct{}{}
			inGraph[pair.b] = struct{}{}
		}
	}

	names := make([]string, 0, len(inGraph))
	for name := range inGraph {
		names = append(names, name)
	}
	slices.SortFunc(names, func(x, y string) int {
		if counts[x] != counts[y] {
			if counts[x] > counts[y] {
				return -1
			}
			return 1
		}
		return strings.Compare(x, y)
	})

	g := NewGraph(int64(len(b.units)), b.weightThreshold)
	ids := make(map[string]int, len(names))
	for _, name := range names {
		ids[name], _ = g.AddVertex(name, counts[name])
	}

	kept := make([]tagPair, 0, len(pairs))
	for pair, w := range pairs {
		if w >= b.weightThreshold {
			kept = append(kept, pair)
		}
	}
	slices.SortFunc(kept, func(x, y tagPair) int {
		if c := ids[x.a] - ids[y.a]; c != 0 {
			return c
		}
		return ids[x.b] - ids[y.b]
	})
	for _, pair := range kept {
		g.AddEdge(ids[pair.a], ids[pair.b], pairs[pair])
	}
	return g
}

// ReadOccurrences feeds "unit,tag" records into b. Tab separated input is
// detected from the first line, a header line starting with "unit" is skipped.
func ReadOccurrences(r io.Reader, b *Builder) (int, error) {
	br := bufio.NewReader(r)
	peeked, _ := br.Peek(4096)
	first, _, _ := strings.Cut(string(peeked), "\n")

	cr := csv.NewReader(br)
	if strings.Count(first, "\t") > strings.Count(first, ",") {
		cr.Comma = '\t'
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	var records int
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, errors.Wrapf(err, "reading occurrences line %v", line)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "unit") {
			continue
		}
		if len(record) < 2 {
			return records, errors.Errorf("occurrences line %v: expected unit and tag, got %v fields", line, len(record))
		}
		// remaining fields are additional tags of the same unit
		for _, tag := range record[1:] {
			b.Add(record[0], tag)
		}
		records++
	}
}
