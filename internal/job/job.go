package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/litetable/litetable-verifier/internal/litetable"
	"github.com/litetable/litetable-verifier/internal/metrics"
	"github.com/litetable/litetable-verifier/internal/peers"
	"github.com/litetable/litetable-verifier/internal/scan"
	"github.com/litetable/litetable-verifier/internal/verify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=job_mock.go -package=job -source=job.go

// PeerResolver resolves a logical peer identifier to its connection
// descriptor. Resolution happens exactly once per job, before any worker is
// scheduled.
type PeerResolver interface {
	Resolve(ctx context.Context, peerID string) (*peers.Descriptor, error)
}

// PeerDialer builds a scan client for a resolved peer.
type PeerDialer func(desc *peers.Descriptor) (verify.Scanner, error)

const defaultWorkers = 4

// Job is one submitted verification run: compare a table between the local
// cluster and a replication peer for a key range and time window.
type Job struct {
	id          uuid.UUID
	table       string
	peerID      string
	spec        *scan.Spec
	local       verify.Scanner
	resolver    PeerResolver
	dialPeer    PeerDialer
	partitioner Partitioner
	counters    *metrics.Job
	workers     int
}

type Config struct {
	Table       string
	PeerID      string
	Spec        *scan.Spec
	Local       verify.Scanner
	Resolver    PeerResolver
	DialPeer    PeerDialer
	Partitioner Partitioner
	Counters    *metrics.Job
	// Workers bounds how many partitions are verified in parallel.
	Workers int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table is required"))
	}
	if c.PeerID == "" {
		errGrp = append(errGrp, errors.New("peer id is required"))
	}
	if c.Spec == nil {
		errGrp = append(errGrp, errors.New("scan spec is required"))
	}
	if c.Local == nil {
		errGrp = append(errGrp, errors.New("local cluster is required"))
	}
	if c.Resolver == nil {
		errGrp = append(errGrp, errors.New("peer resolver is required"))
	}
	if c.DialPeer == nil {
		errGrp = append(errGrp, errors.New("peer dialer is required"))
	}
	if c.Partitioner == nil {
		errGrp = append(errGrp, errors.New("partitioner is required"))
	}
	if c.Counters == nil {
		errGrp = append(errGrp, errors.New("counters are required"))
	}
	if c.Workers < 0 {
		errGrp = append(errGrp, errors.New("workers cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a verification job.
func New(cfg *Config) (*Job, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = defaultWorkers
	}

	return &Job{
		id:          uuid.New(),
		table:       cfg.Table,
		peerID:      cfg.PeerID,
		spec:        cfg.Spec,
		local:       cfg.Local,
		resolver:    cfg.Resolver,
		dialPeer:    cfg.DialPeer,
		partitioner: cfg.Partitioner,
		counters:    cfg.Counters,
		workers:     workers,
	}, nil
}

// ID returns the job's identifier.
func (j *Job) ID() uuid.UUID {
	return j.id
}

// Result is the job-level aggregation of per-partition tallies.
type Result struct {
	GoodRows   uint64
	BadRows    uint64
	Partitions int
}

// Submit resolves the peer, partitions the keyspace and verifies every
// partition with bounded parallelism. A resolution failure aborts before any
// partition work is scheduled. Row divergence never fails a job; a dead scan
// session on either side fails its partition and with it the whole run.
func (j *Job) Submit(ctx context.Context) (*Result, error) {
	desc, err := j.resolver.Resolve(ctx, j.peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve peer %s: %w", j.peerID, err)
	}
	log.Info().
		Str("job", j.id.String()).
		Str("peer", j.peerID).
		Str("address", desc.Address).
		Msg("replication peer resolved")

	remote, err := j.dialPeer(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare peer client for %s: %w", desc.Address, err)
	}

	parts, err := j.partitioner.Partitions(ctx, j.table, j.spec)
	if err != nil {
		return nil, fmt.Errorf("failed to partition table %s: %w", j.table, err)
	}
	log.Info().
		Str("job", j.id.String()).
		Str("table", j.table).
		Int("partitions", len(parts)).
		Int("workers", j.workers).
		Msg("starting verification")

	type tally struct {
		good uint64
		bad  uint64
	}
	tallies := make([]tally, len(parts))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(j.workers)
	for i, part := range parts {
		i, part := i, part
		grp.Go(func() error {
			good, bad, partErr := j.runPartition(grpCtx, part, remote)
			if partErr != nil {
				j.counters.FailedPartitions.Inc()
				log.Error().
					Str("job", j.id.String()).
					Str("partition", part.String()).
					Err(partErr).
					Msg("partition verification failed")
				return partErr
			}
			tallies[i] = tally{good: good, bad: bad}
			return nil
		})
	}

	if err = grp.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Partitions: len(parts)}
	for _, t := range tallies {
		result.GoodRows += t.good
		result.BadRows += t.bad
	}

	log.Info().
		Str("job", j.id.String()).
		Uint64("goodrows", result.GoodRows).
		Uint64("badrows", result.BadRows).
		Msg("verification complete")

	return result, nil
}

// runPartition streams one partition's local rows through a verifier. Both
// scan sessions are released on every exit path.
func (j *Job) runPartition(ctx context.Context, part scan.Partition, remote verify.Scanner) (good, bad uint64, err error) {
	v, err := verify.New(&verify.Config{
		Table:     j.table,
		Spec:      j.spec,
		Partition: part,
		Remote:    remote,
		Counters:  j.counters,
	})
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if closeErr := v.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	local, err := j.local.OpenScan(ctx, j.table, j.spec.WithRange(part.Start, part.End))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open local scan for partition %s: %w", part, err)
	}
	defer func() {
		_ = local.Close()
	}()

	for {
		var row *litetable.Row
		row, err = local.Next(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read local scan for partition %s: %w", part, err)
		}
		if row == nil {
			break
		}
		if _, err = v.VerifyRow(ctx, row); err != nil {
			return 0, 0, err
		}
	}

	good, bad = v.Tally()
	return good, bad, nil
}
