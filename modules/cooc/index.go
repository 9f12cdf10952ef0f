package cooc

import (
	"github.com/lkarlslund/tagcamps/modules/util"
)

// NameIndex maps tag names to vertex ids. Exact names win; otherwise a name
// matches when its normalized spelling identifies exactly one vertex.
type NameIndex struct {
	exact      map[string]int
	normalized map[string][]int
}

func newNameIndex(names []string) *NameIndex {
	ni := &NameIndex{
		exact:      make(map[string]int, len(names)),
		normalized: make(map[string][]int, len(names)),
	}
	for v, name := range names {
		ni.exact[name] = v
		key := util.NormalizeTag(name)
		ni.normalized[key] = append(ni.normalized[key], v)
	}
	return ni
}

func (ni *NameIndex) Lookup(name string) (int, bool) {
	if v, found := ni.exact[name]; found {
		return v, true
	}
	if vs := ni.normalized[util.NormalizeTag(name)]; len(vs) == 1 {
		return vs[0], true
	}
	return -1, false
}

// LookupAll resolves names, returning the found ids in input order and the names that were not found
func (ni *NameIndex) LookupAll(names []string) (found []int, missing []string) {
	for _, name := range names {
		if v, ok := ni.Lookup(name); ok {
			found = append(found, v)
		} else {
			missing = append(missing, name)
		}
	}
	return
}

func (ni *NameIndex) Len() int {
	return len(ni.exact)
}
