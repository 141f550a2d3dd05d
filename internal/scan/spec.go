package scan

import (
	"fmt"
	"strings"
	"time"
)

// maxEndTime is the open upper bound used when no end of the time window is
// given: far enough out to cover any cell timestamp a cluster can hold while
// still representable in nanoseconds.
var maxEndTime = time.UnixMilli(1<<53 - 1)

// Spec describes one scan against a cluster. The local and remote spec of a
// verification run are identical in every field except the row bounds, which
// are set per partition via WithRange.
type Spec struct {
	// StartTime and EndTime bound cell timestamps to [StartTime, EndTime).
	StartTime time.Time
	EndTime   time.Time

	// MaxVersions limits how many versions per qualifier the scan returns.
	// 0 means all versions.
	MaxVersions int

	// Families restricts the scan to the named column families. Empty means
	// every family.
	Families []string

	// StartRow and EndRow bound the scan to row keys in [StartRow, EndRow).
	// Empty bounds are open.
	StartRow string
	EndRow   string
}

// BuildParams are the job-level inputs to Build. Times are epoch
// milliseconds, matching the CLI surface.
type BuildParams struct {
	StartTime   int64
	EndTime     int64
	MaxVersions int
	Families    []string
}

// Build constructs the canonical spec for one verification run. It is pure:
// no I/O, no defaults hidden anywhere else. A zero EndTime means "forever".
func Build(p BuildParams) (*Spec, error) {
	end := maxEndTime
	if p.EndTime != 0 {
		end = time.UnixMilli(p.EndTime)
	}
	start := time.UnixMilli(p.StartTime)

	if start.After(end) {
		return nil, newError(errInvalidTimeRange, "start %d is after end %d",
			p.StartTime, p.EndTime)
	}
	if p.MaxVersions < 0 {
		return nil, newError(errInvalidVersions, "must be >= 0, got %d", p.MaxVersions)
	}
	for _, f := range p.Families {
		if strings.TrimSpace(f) == "" {
			return nil, newError(errInvalidFamily, "family names cannot be empty")
		}
	}

	return &Spec{
		StartTime:   start,
		EndTime:     end,
		MaxVersions: p.MaxVersions,
		Families:    p.Families,
	}, nil
}

// WithRange returns a copy of the spec bounded to [start, end). Every other
// field is carried over untouched so that both sides of a comparison always
// scan under the same filters.
func (s *Spec) WithRange(start, end string) *Spec {
	dup := *s
	dup.Families = append([]string(nil), s.Families...)
	dup.StartRow = start
	dup.EndRow = end
	return &dup
}

// Query encodes the spec as a SCAN query for the given table, in the
// key=value wire grammar the clusters speak.
func (s *Spec) Query(table string) string {
	var b strings.Builder
	b.WriteString("SCAN table=" + table)
	if s.StartRow != "" {
		b.WriteString(" start=" + s.StartRow)
	}
	if s.EndRow != "" {
		b.WriteString(" end=" + s.EndRow)
	}
	fmt.Fprintf(&b, " starttime=%d endtime=%d", s.StartTime.UnixMilli(), s.EndTime.UnixMilli())
	if s.MaxVersions > 0 {
		fmt.Fprintf(&b, " versions=%d", s.MaxVersions)
	}
	for _, f := range s.Families {
		b.WriteString(" family=" + f)
	}
	return b.String()
}
