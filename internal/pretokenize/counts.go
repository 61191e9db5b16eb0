package pretokenize

// Counts maps a pretoken to its number of occurrences.
type Counts map[string]int64

// Add increments the count of unit by n.
func (c Counts) Add(unit string, n int64) {
	c[unit] += n
}

// Merge adds every count of other into c.
func (c Counts) Merge(other Counts) {
	for unit, n := range other {
		c[unit] += n
	}
}

// Total returns the number of pretoken occurrences.
func (c Counts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Reduce sums parts into a new map. The result does not depend on the order of
// parts.
func Reduce(parts ...Counts) Counts {
	size := 0
	for _, p := range parts {
		size = max(size, len(p))
	}
	out := make(Counts, size)
	for _, p := range parts {
		out.Merge(p)
	}
	return out
}
