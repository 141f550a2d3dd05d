package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/litetable/litetable-verifier/internal/scan"
)

// Partitioner is the scheduling framework's capability of splitting a
// table's keyspace into disjoint key ranges, each independently assignable
// to one worker.
type Partitioner interface {
	Partitions(ctx context.Context, table string, spec *scan.Spec) ([]scan.Partition, error)
}

// SplitPartitioner cuts the keyspace at operator-supplied split keys. With
// no splits the whole keyspace is a single partition.
type SplitPartitioner struct {
	splits []string
}

// NewSplitPartitioner validates that split keys are non-empty, strictly
// ascending and unique.
func NewSplitPartitioner(splits []string) (*SplitPartitioner, error) {
	for i, s := range splits {
		if s == "" {
			return nil, errors.New("split keys cannot be empty")
		}
		if i > 0 && splits[i-1] >= s {
			return nil, fmt.Errorf("split keys must be strictly ascending: %q >= %q",
				splits[i-1], s)
		}
	}
	return &SplitPartitioner{splits: splits}, nil
}

// Partitions returns len(splits)+1 contiguous, disjoint ranges covering the
// whole keyspace.
func (p *SplitPartitioner) Partitions(_ context.Context, _ string, _ *scan.Spec) ([]scan.Partition, error) {
	bounds := append([]string{""}, p.splits...)
	bounds = append(bounds, "")

	parts := make([]scan.Partition, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		parts = append(parts, scan.Partition{Start: bounds[i], End: bounds[i+1]})
	}
	return parts, nil
}
