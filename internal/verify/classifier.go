package verify

import (
	"fmt"

	"github.com/litetable/litetable-verifier/internal/litetable"
)

// Status classifies one row comparison.
type Status int

const (
	// Match means the local and remote rows are identical.
	Match Status = iota
	// Mismatch means the rows diverge in any way: key, cell count or any
	// cell field.
	Mismatch
)

func (s Status) String() string {
	if s == Match {
		return "MATCH"
	}
	return "MISMATCH"
}

// Outcome is the classification of one row plus a diagnostic usable to
// explain a divergence. The diagnostic is empty for a match.
type Outcome struct {
	Status     Status
	Diagnostic string
}

// Compare applies strict structural equality between a local row and the row
// the remote cursor produced at the same position. A nil remote (exhausted
// scan) against a non-nil local row is always a mismatch. There is no
// tolerance for timestamp skew or cell reordering.
//
// Compare never panics: a failure while comparing malformed rows is
// recovered and classified as a mismatch so that a single bad row cannot
// abort a partition.
func Compare(local, remote *litetable.Row) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Status:     Mismatch,
				Diagnostic: fmt.Sprintf("comparison failed: %v", r),
			}
		}
	}()

	if remote == nil {
		return Outcome{
			Status:     Mismatch,
			Diagnostic: fmt.Sprintf("remote scan exhausted, local row has no counterpart: %s", local),
		}
	}

	if local.Key != remote.Key {
		return mismatch("row key differs", local, remote)
	}
	if len(local.Cells) != len(remote.Cells) {
		return mismatch(
			fmt.Sprintf("cell count differs (local %d, remote %d)", len(local.Cells), len(remote.Cells)),
			local, remote)
	}
	for i := range local.Cells {
		if !local.Cells[i].Equal(remote.Cells[i]) {
			return mismatch(
				fmt.Sprintf("cell %d differs (local %s, remote %s)",
					i, local.Cells[i], remote.Cells[i]),
				local, remote)
		}
	}

	return Outcome{Status: Match}
}

func mismatch(reason string, local, remote *litetable.Row) Outcome {
	return Outcome{
		Status:     Mismatch,
		Diagnostic: fmt.Sprintf("%s: local{%s} remote{%s}", reason, local, remote),
	}
}
