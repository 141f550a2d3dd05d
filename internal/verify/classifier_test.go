package verify

import (
	"testing"
	"time"

	"github.com/litetable/litetable-verifier/internal/litetable"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testRow(key string, cells ...litetable.Cell) *litetable.Row {
	return &litetable.Row{Key: key, Cells: cells}
}

func testCell(rowKey, qualifier, value string, ts time.Time) litetable.Cell {
	return litetable.Cell{
		RowKey:    rowKey,
		Family:    "main",
		Qualifier: qualifier,
		Timestamp: ts,
		Value:     []byte(value),
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		local          *litetable.Row
		remote         *litetable.Row
		expected       Status
		diagnosticHas  []string
		diagnosticNone bool
	}{
		"identical rows": {
			local:          testRow("r1", testCell("r1", "name", "alice", testTime)),
			remote:         testRow("r1", testCell("r1", "name", "alice", testTime)),
			expected:       Match,
			diagnosticNone: true,
		},
		"remote exhausted": {
			local:         testRow("r3", testCell("r3", "name", "carol", testTime)),
			remote:        nil,
			expected:      Mismatch,
			diagnosticHas: []string{"remote scan exhausted", "r3"},
		},
		"different row key": {
			local:         testRow("r2", testCell("r2", "name", "bob", testTime)),
			remote:        testRow("r1.5", testCell("r1.5", "name", "eve", testTime)),
			expected:      Mismatch,
			diagnosticHas: []string{"row key differs", "r2", "r1.5"},
		},
		"different value at same coordinates": {
			local:         testRow("r1", testCell("r1", "name", "alice", testTime)),
			remote:        testRow("r1", testCell("r1", "name", "alicia", testTime)),
			expected:      Mismatch,
			diagnosticHas: []string{"cell 0 differs", "alice", "alicia"},
		},
		"different timestamp at same coordinates": {
			local:         testRow("r1", testCell("r1", "name", "alice", testTime)),
			remote:        testRow("r1", testCell("r1", "name", "alice", testTime.Add(time.Millisecond))),
			expected:      Mismatch,
			diagnosticHas: []string{"cell 0 differs"},
		},
		"missing cell on remote": {
			local: testRow("r1",
				testCell("r1", "email", "a@b.c", testTime),
				testCell("r1", "name", "alice", testTime)),
			remote:        testRow("r1", testCell("r1", "email", "a@b.c", testTime)),
			expected:      Mismatch,
			diagnosticHas: []string{"cell count differs", "local 2", "remote 1"},
		},
		"extra cell on remote": {
			local: testRow("r1", testCell("r1", "email", "a@b.c", testTime)),
			remote: testRow("r1",
				testCell("r1", "email", "a@b.c", testTime),
				testCell("r1", "name", "alice", testTime)),
			expected:      Mismatch,
			diagnosticHas: []string{"cell count differs"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			out := Compare(tc.local, tc.remote)

			req.Equal(tc.expected, out.Status)
			if tc.diagnosticNone {
				req.Empty(out.Diagnostic)
				return
			}
			for _, want := range tc.diagnosticHas {
				req.Contains(out.Diagnostic, want)
			}
		})
	}
}

func TestCompare_MismatchDiagnosticShowsBothRows(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	local := testRow("r1", testCell("r1", "name", "alice", testTime))
	remote := testRow("r1", testCell("r1", "name", "alicia", testTime))

	out := Compare(local, remote)
	req.Equal(Mismatch, out.Status)
	req.Contains(out.Diagnostic, local.String())
	req.Contains(out.Diagnostic, remote.String())
}

func TestCompare_RecoversFromPanic(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// a nil local row panics inside the comparison; that must be classified,
	// never propagated
	out := Compare(nil, testRow("r1"))
	req.Equal(Mismatch, out.Status)
	req.Contains(out.Diagnostic, "comparison failed")
}

func TestStatus_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "MATCH", Match.String())
	require.Equal(t, "MISMATCH", Mismatch.String())
}
