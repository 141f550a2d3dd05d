package scan

// Partition is a contiguous key range [Start, End) assigned to exactly one
// worker. Empty bounds are open on that side. Partitions handed to workers
// must be disjoint; the verifier never looks outside its own range.
type Partition struct {
	Start string
	End   string
}

func (p Partition) String() string {
	start, end := p.Start, p.End
	if start == "" {
		start = "-inf"
	}
	if end == "" {
		end = "+inf"
	}
	return "[" + start + ", " + end + ")"
}
