package dedup

import "unique"

// D interns tag names so that the many repeated occurrences read while building
// a graph share one backing string
var D Unique

type Unique struct {
	// uses the Go 1.23 unique package
}

func (u *Unique) S(s string) string {
	return unique.Make(s).Value()
}
