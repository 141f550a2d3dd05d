package job

import (
	"context"
	"testing"

	"github.com/litetable/litetable-verifier/internal/scan"
	"github.com/stretchr/testify/require"
)

func TestNewSplitPartitioner(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		splits []string
		error  string
	}{
		"no splits":        {splits: nil},
		"ascending splits": {splits: []string{"g", "m", "t"}},
		"empty split key": {
			splits: []string{"g", ""},
			error:  "split keys cannot be empty",
		},
		"descending splits": {
			splits: []string{"m", "g"},
			error:  "split keys must be strictly ascending",
		},
		"duplicate splits": {
			splits: []string{"g", "g"},
			error:  "split keys must be strictly ascending",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			got, err := NewSplitPartitioner(tc.splits)

			if tc.error != "" {
				req.Error(err)
				req.Contains(err.Error(), tc.error)
				req.Nil(got)
				return
			}

			req.NoError(err)
			req.NotNil(got)
		})
	}
}

func TestSplitPartitioner_Partitions(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		splits   []string
		expected []scan.Partition
	}{
		"single partition covers the keyspace": {
			splits:   nil,
			expected: []scan.Partition{{Start: "", End: ""}},
		},
		"one split": {
			splits: []string{"m"},
			expected: []scan.Partition{
				{Start: "", End: "m"},
				{Start: "m", End: ""},
			},
		},
		"two splits": {
			splits: []string{"g", "t"},
			expected: []scan.Partition{
				{Start: "", End: "g"},
				{Start: "g", End: "t"},
				{Start: "t", End: ""},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			p, err := NewSplitPartitioner(tc.splits)
			req.NoError(err)

			parts, err := p.Partitions(context.Background(), "users", nil)
			req.NoError(err)
			req.Equal(tc.expected, parts)
		})
	}
}
