package propagate

import (
	"slices"
	"strconv"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

// Label identifies a camp. Camps are numbered from 1.
type Label int

const NoLabel Label = 0

func (l Label) String() string {
	if l == NoLabel {
		return "none"
	}
	return strconv.Itoa(int(l))
}

// Seeds is the initial labelling of a subset of vertices. A vertex carries at
// most one label. Labels can be declared without any vertex, they then show
// up in results with all zero statistics.
type Seeds struct {
	vertices map[int]Label
	labels   []Label
}

func NewSeeds(labels ...Label) *Seeds {
	s := &Seeds{vertices: make(map[int]Label)}
	for _, l := range labels {
		s.declare(l)
	}
	return s
}

func (s *Seeds) declare(l Label) {
	if i, found := slices.BinarySearch(s.labels, l); !found {
		s.labels = slices.Insert(s.labels, i, l)
	}
}

// Set labels vertex v. The first label given to a vertex is kept.
func (s *Seeds) Set(v int, l Label) error {
	if l <= NoLabel || v < 0 {
		return errors.Wrapf(ErrInvalidSeed, "vertex %v label %v", v, int(l))
	}
	s.declare(l)
	if existing, found := s.vertices[v]; found {
		if existing == l {
			return nil
		}
		return errors.Wrapf(ErrDuplicateSeed, "vertex %v has label %v, ignoring %v", v, existing, l)
	}
	s.vertices[v] = l
	return nil
}

// Label returns the initial label of v or NoLabel
func (s *Seeds) Label(v int) Label {
	return s.vertices[v]
}

// Labels returns the declared labels in ascending order
func (s *Seeds) Labels() []Label {
	return s.labels
}

// Len is the number of labelled vertices
func (s *Seeds) Len() int {
	return len(s.vertices)
}

// Vertices returns the ids carrying label l in ascending order
func (s *Seeds) Vertices(l Label) []int {
	var result []int
	for v, vl := range s.vertices {
		if vl == l {
			result = append(result, v)
		}
	}
	slices.Sort(result)
	return result
}

// SeedsFromNames turns camp lists into seeds, camp i getting label i+1.
// Names missing from the graph and names listed in more than one camp are
// skipped and reported as warnings.
func SeedsFromNames(ni *cooc.NameIndex, camps [][]string) (*Seeds, []error) {
	s := NewSeeds()
	var warnings []error
	for i, camp := range camps {
		l := Label(i + 1)
		s.declare(l)
		for _, name := range camp {
			v, found := ni.Lookup(name)
			if !found {
				warnings = append(warnings, errors.Wrapf(ErrUnknownSeed, "%q in camp %v", name, l))
				continue
			}
			if err := s.Set(v, l); err != nil {
				warnings = append(warnings, errors.Wrapf(err, "%q", name))
			}
		}
	}
	return s, warnings
}

// ReferenceMaxCount is the smallest of the per camp maximum seed counts.
// Labels without seed vertices in g are ignored, 0 when no label has any.
func ReferenceMaxCount(g *cooc.Graph, seeds *Seeds) int64 {
	var result int64 = -1
	for _, l := range seeds.Labels() {
		var campMax int64 = -1
		for _, v := range seeds.Vertices(l) {
			if v < g.Order() {
				campMax = max(campMax, g.Count(v))
			}
		}
		if campMax >= 0 && (result < 0 || campMax < result) {
			result = campMax
		}
	}
	return max(result, 0)
}
