package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/litetable/litetable-verifier/internal/metrics"
	"github.com/litetable/litetable-verifier/internal/scan"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testVerifier(t *testing.T, remote Scanner, partition scan.Partition) (*Verifier, *metrics.Job) {
	t.Helper()

	spec, err := scan.Build(scan.BuildParams{StartTime: 0, EndTime: 1000})
	require.NoError(t, err)

	counters := metrics.NewJob()
	v, err := New(&Config{
		Table:     "users",
		Spec:      spec,
		Partition: partition,
		Remote:    remote,
		Counters:  counters,
	})
	require.NoError(t, err)
	return v, counters
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		got, err := New(&Config{})
		require.Error(t, err)
		require.Nil(t, got)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		v, _ := testVerifier(t, NewMockScanner(ctrl), scan.Partition{})
		require.NotNil(t, v)
	})
}

func TestVerifier_OpensRemoteAtFirstLocalRow(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScanner := NewMockScanner(ctrl)
	mockCursor := NewMockCursor(ctrl)

	// opened exactly once per partition, aligned at the first local row's
	// key, not the partition bound
	mockScanner.EXPECT().
		OpenScan(gomock.Any(), "users", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, s *scan.Spec) (Cursor, error) {
			req.Equal("c", s.StartRow)
			req.Equal("m", s.EndRow)
			return mockCursor, nil
		}).
		Times(1)

	mockCursor.EXPECT().
		Next(gomock.Any()).
		Return(testRow("c", testCell("c", "name", "v", testTime)), nil)
	mockCursor.EXPECT().
		Next(gomock.Any()).
		Return(testRow("d", testCell("d", "name", "v", testTime)), nil)

	v, _ := testVerifier(t, mockScanner, scan.Partition{Start: "a", End: "m"})

	out, err := v.VerifyRow(context.Background(), testRow("c", testCell("c", "name", "v", testTime)))
	req.NoError(err)
	req.Equal(Match, out.Status)

	out, err = v.VerifyRow(context.Background(), testRow("d", testCell("d", "name", "v", testTime)))
	req.NoError(err)
	req.Equal(Match, out.Status)

	good, bad := v.Tally()
	req.Equal(uint64(2), good)
	req.Zero(bad)
}

func TestVerifier_CountsDivergentRows(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScanner := NewMockScanner(ctrl)
	mockCursor := NewMockCursor(ctrl)

	mockScanner.EXPECT().
		OpenScan(gomock.Any(), "users", gomock.Any()).
		Return(mockCursor, nil)
	mockCursor.EXPECT().
		Next(gomock.Any()).
		Return(testRow("r1", testCell("r1", "name", "alice", testTime)), nil)
	mockCursor.EXPECT().
		Next(gomock.Any()).
		Return(testRow("r2", testCell("r2", "name", "DIVERGED", testTime)), nil)

	v, counters := testVerifier(t, mockScanner, scan.Partition{})

	out, err := v.VerifyRow(context.Background(), testRow("r1", testCell("r1", "name", "alice", testTime)))
	req.NoError(err)
	req.Equal(Match, out.Status)

	out, err = v.VerifyRow(context.Background(), testRow("r2", testCell("r2", "name", "bob", testTime)))
	req.NoError(err)
	req.Equal(Mismatch, out.Status)
	req.Contains(out.Diagnostic, "bob")
	req.Contains(out.Diagnostic, "DIVERGED")

	good, bad := v.Tally()
	req.Equal(uint64(1), good)
	req.Equal(uint64(1), bad)

	ctrGood, ctrBad, err := counters.Totals()
	req.NoError(err)
	req.Equal(uint64(1), ctrGood)
	req.Equal(uint64(1), ctrBad)
}

func TestVerifier_RemoteExhaustedStaysMismatched(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScanner := NewMockScanner(ctrl)
	mockCursor := NewMockCursor(ctrl)

	mockScanner.EXPECT().
		OpenScan(gomock.Any(), "users", gomock.Any()).
		Return(mockCursor, nil)

	// remote yields r1, r2 and is then exhausted while the local side still
	// has r3: no re-alignment happens, r3 must report a mismatch
	gomock.InOrder(
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(testRow("r1", testCell("r1", "q", "v", testTime)), nil),
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(testRow("r2", testCell("r2", "q", "v", testTime)), nil),
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(nil, nil),
	)

	v, _ := testVerifier(t, mockScanner, scan.Partition{})

	for _, key := range []string{"r1", "r2"} {
		out, err := v.VerifyRow(context.Background(), testRow(key, testCell(key, "q", "v", testTime)))
		req.NoError(err)
		req.Equal(Match, out.Status)
	}

	out, err := v.VerifyRow(context.Background(), testRow("r3", testCell("r3", "q", "v", testTime)))
	req.NoError(err)
	req.Equal(Mismatch, out.Status)
	req.Contains(out.Diagnostic, "remote scan exhausted")

	good, bad := v.Tally()
	req.Equal(uint64(2), good)
	req.Equal(uint64(1), bad)
}

func TestVerifier_ExtraRemoteRowDesyncsRestOfPartition(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScanner := NewMockScanner(ctrl)
	mockCursor := NewMockCursor(ctrl)

	mockScanner.EXPECT().
		OpenScan(gomock.Any(), "users", gomock.Any()).
		Return(mockCursor, nil)

	// the remote side has an extra row r1.5: comparison is purely positional
	// after the initial alignment, so every later row mismatches even though
	// the same keys reappear on both sides
	gomock.InOrder(
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(testRow("r1", testCell("r1", "q", "v", testTime)), nil),
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(testRow("r1.5", testCell("r1.5", "q", "v", testTime)), nil),
		mockCursor.EXPECT().Next(gomock.Any()).
			Return(testRow("r2", testCell("r2", "q", "v", testTime)), nil),
	)

	v, _ := testVerifier(t, mockScanner, scan.Partition{})

	out, err := v.VerifyRow(context.Background(), testRow("r1", testCell("r1", "q", "v", testTime)))
	req.NoError(err)
	req.Equal(Match, out.Status)

	out, err = v.VerifyRow(context.Background(), testRow("r2", testCell("r2", "q", "v", testTime)))
	req.NoError(err)
	req.Equal(Mismatch, out.Status)

	out, err = v.VerifyRow(context.Background(), testRow("r3", testCell("r3", "q", "v", testTime)))
	req.NoError(err)
	req.Equal(Mismatch, out.Status)

	good, bad := v.Tally()
	req.Equal(uint64(1), good)
	req.Equal(uint64(2), bad)
}

func TestVerifier_SessionFailures(t *testing.T) {
	t.Parallel()

	t.Run("open failure is fatal", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockScanner := NewMockScanner(ctrl)
		mockScanner.EXPECT().
			OpenScan(gomock.Any(), "users", gomock.Any()).
			Return(nil, errors.New("lease could not be granted"))

		v, _ := testVerifier(t, mockScanner, scan.Partition{})

		_, err := v.VerifyRow(context.Background(), testRow("r1", testCell("r1", "q", "v", testTime)))
		req.Error(err)
		req.Contains(err.Error(), "failed to open remote session")

		good, bad := v.Tally()
		req.Zero(good)
		req.Zero(bad)
	})

	t.Run("pull failure is fatal", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockScanner := NewMockScanner(ctrl)
		mockCursor := NewMockCursor(ctrl)

		mockScanner.EXPECT().
			OpenScan(gomock.Any(), "users", gomock.Any()).
			Return(mockCursor, nil)
		mockCursor.EXPECT().
			Next(gomock.Any()).
			Return(nil, errors.New("session lease expired"))

		v, _ := testVerifier(t, mockScanner, scan.Partition{})

		_, err := v.VerifyRow(context.Background(), testRow("r1", testCell("r1", "q", "v", testTime)))
		req.Error(err)
		req.Contains(err.Error(), "failed to pull remote row")
	})
}

func TestVerifier_Close(t *testing.T) {
	t.Parallel()

	t.Run("never opened is a no-op", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// no OpenScan, no Close expected on any session
		v, _ := testVerifier(t, NewMockScanner(ctrl), scan.Partition{})
		require.NoError(t, v.Close())
		require.NoError(t, v.Close())
	})

	t.Run("closes the session exactly once", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockScanner := NewMockScanner(ctrl)
		mockCursor := NewMockCursor(ctrl)

		mockScanner.EXPECT().
			OpenScan(gomock.Any(), "users", gomock.Any()).
			Return(mockCursor, nil)
		mockCursor.EXPECT().
			Next(gomock.Any()).
			Return(testRow("r1", testCell("r1", "q", "v", testTime)), nil)
		mockCursor.EXPECT().
			Close().
			Return(nil).
			Times(1)

		v, _ := testVerifier(t, mockScanner, scan.Partition{})

		_, err := v.VerifyRow(context.Background(), testRow("r1", testCell("r1", "q", "v", testTime)))
		req.NoError(err)

		req.NoError(v.Close())
		req.NoError(v.Close())
	})
}
