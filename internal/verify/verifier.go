package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/litetable/litetable-verifier/internal/litetable"
	"github.com/litetable/litetable-verifier/internal/metrics"
	"github.com/litetable/litetable-verifier/internal/scan"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=verifier_mock.go -package=verify -source=verifier.go

// Cursor is an open scan session on the replica cluster. It is owned
// by exactly one Verifier and never shared.
type Cursor interface {
	// Next pulls exactly one row; (nil, nil) means the scan is exhausted.
	Next(ctx context.Context) (*litetable.Row, error)
	// Close releases the session. Closing more than once is a no-op.
	Close() error
}

// Scanner opens scan sessions against the replica cluster.
type Scanner interface {
	OpenScan(ctx context.Context, table string, spec *scan.Spec) (Cursor, error)
}

// Verifier is the lockstep dual-cursor comparator for one key-range
// partition. For every row the local scan yields, it draws exactly one row
// from its remote session and classifies the pair. Comparison is purely
// positional after the initial alignment: if one side ever produces an extra
// or missing row, every later row in the partition reports a mismatch. That
// cascade is observable, counted behavior and must not be "fixed" by
// re-aligning on key.
type Verifier struct {
	table     string
	spec      *scan.Spec
	partition scan.Partition
	remote    Scanner
	counters  *metrics.Job

	cursor Cursor
	opened bool

	good uint64
	bad  uint64
}

type Config struct {
	Table     string
	Spec      *scan.Spec
	Partition scan.Partition
	Remote    Scanner
	Counters  *metrics.Job
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table is required"))
	}
	if c.Spec == nil {
		errGrp = append(errGrp, errors.New("scan spec is required"))
	}
	if c.Remote == nil {
		errGrp = append(errGrp, errors.New("remote scanner is required"))
	}
	if c.Counters == nil {
		errGrp = append(errGrp, errors.New("counters are required"))
	}
	return errors.Join(errGrp...)
}

// New creates a verifier for one partition.
func New(cfg *Config) (*Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Verifier{
		table:     cfg.Table,
		spec:      cfg.Spec,
		partition: cfg.Partition,
		remote:    cfg.Remote,
		counters:  cfg.Counters,
	}, nil
}

// VerifyRow compares one local row against the next row of the remote
// session. Rows must be fed in the exact ascending order the local scan
// yields them. The returned error is a session failure fatal to the
// partition; a divergent row is not an error, it only moves counters.
func (v *Verifier) VerifyRow(ctx context.Context, local *litetable.Row) (Outcome, error) {
	if local == nil {
		return Outcome{}, errors.New("local row is required")
	}

	// The remote session starts at the partition's first local row, not at
	// the partition bound itself, so both cursors begin aligned. Opened once
	// per partition.
	if !v.opened {
		cursor, err := v.remote.OpenScan(ctx, v.table, v.spec.WithRange(local.Key, v.partition.End))
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to open remote session for partition %s: %w",
				v.partition, err)
		}
		v.cursor = cursor
		v.opened = true
	}

	remote, err := v.cursor.Next(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to pull remote row for partition %s: %w",
			v.partition, err)
	}

	outcome := Compare(local, remote)
	if outcome.Status == Match {
		v.good++
		v.counters.GoodRows.Inc()
		return outcome, nil
	}

	v.bad++
	v.counters.BadRows.Inc()
	log.Warn().
		Str("table", v.table).
		Str("row", local.Key).
		Str("partition", v.partition.String()).
		Msg("bad row: " + outcome.Diagnostic)

	return outcome, nil
}

// Tally returns the per-partition counts for job-level aggregation.
func (v *Verifier) Tally() (goodRows, badRows uint64) {
	return v.good, v.bad
}

// Close releases the remote session. Closing a verifier whose session was
// never opened, or closing twice, is a no-op.
func (v *Verifier) Close() error {
	if v.cursor == nil {
		return nil
	}
	cursor := v.cursor
	v.cursor = nil
	return cursor.Close()
}
