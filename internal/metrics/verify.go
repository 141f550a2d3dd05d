package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	goodRowsName         = "verify_good_rows_total"
	badRowsName          = "verify_bad_rows_total"
	failedPartitionsName = "verify_partitions_failed_total"
)

// Job holds the counters of one verification job on a registry scoped to
// that job, so concurrent jobs in one process never share totals.
type Job struct {
	registry *prometheus.Registry

	// GoodRows counts rows whose local and remote copies matched exactly.
	GoodRows prometheus.Counter
	// BadRows counts rows classified as divergent.
	BadRows prometheus.Counter
	// FailedPartitions counts partition tasks that died on a session error.
	FailedPartitions prometheus.Counter
}

// NewJob creates the counters for one job.
func NewJob() *Job {
	j := &Job{
		registry: prometheus.NewRegistry(),
		GoodRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: goodRowsName,
			Help: "Rows whose local and remote copies compared equal",
		}),
		BadRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: badRowsName,
			Help: "Rows whose local and remote copies diverged",
		}),
		FailedPartitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: failedPartitionsName,
			Help: "Partition tasks aborted by a scan session failure",
		}),
	}

	j.registry.MustRegister(j.GoodRows, j.BadRows, j.FailedPartitions)
	return j
}

// Registry exposes the job-scoped registry, e.g. for an operator to mount a
// scrape handler while a long verification runs.
func (j *Job) Registry() *prometheus.Registry {
	return j.registry
}

// Totals reads the counters back from the registry.
func (j *Job) Totals() (goodRows, badRows uint64, err error) {
	families, err := j.registry.Gather()
	if err != nil {
		return 0, 0, err
	}

	read := func(mf *dto.MetricFamily) uint64 {
		metrics := mf.GetMetric()
		if len(metrics) == 0 {
			return 0
		}
		return uint64(metrics[0].GetCounter().GetValue())
	}

	for _, mf := range families {
		switch mf.GetName() {
		case goodRowsName:
			goodRows = read(mf)
		case badRowsName:
			badRows = read(mf)
		}
	}
	return goodRows, badRows, nil
}
