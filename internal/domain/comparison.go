package domain

// MaxComparisonItems is the capacity of a comparison list.
const MaxComparisonItems = 4

// ComparisonList is the insertion-ordered, duplicate-free list of product ids
// selected for side-by-side comparison.
type ComparisonList []string

// Contains reports whether productID is in the list.
func (l ComparisonList) Contains(productID string) bool {
	for _, id := range l {
		if id == productID {
			return true
		}
	}
	return false
}

// Full reports whether the list reached MaxComparisonItems.
func (l ComparisonList) Full() bool {
	return len(l) >= MaxComparisonItems
}

// Clone returns a copy of the list. A nil list clones to an empty one.
func (l ComparisonList) Clone() ComparisonList {
	out := make(ComparisonList, len(l))
	copy(out, l)
	return out
}

// Normalize drops empty and repeated ids and truncates the list to
// MaxComparisonItems, keeping insertion order. It reports whether anything
// changed.
func (l ComparisonList) Normalize() (ComparisonList, bool) {
	out := make(ComparisonList, 0, min(len(l), MaxComparisonItems))
	for _, id := range l {
		if out.Full() {
			break
		}
		if id == "" || out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out, len(out) != len(l)
}
