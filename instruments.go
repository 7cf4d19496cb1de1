package workerpool

import "github.com/ygrebnov/workerpool/metrics"

const metricsPrefix = Namespace + "_"

type instruments struct {
	submitted metrics.Counter
	rejected  metrics.Counter
	completed metrics.Counter
	panicked  metrics.Counter
	inflight  metrics.UpDownCounter
	queued    metrics.UpDownCounter
	live      metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) *instruments {
	return &instruments{
		submitted: p.Counter(metricsPrefix+"jobs_submitted_total",
			metrics.WithDescription("Jobs accepted by Submit"), metrics.WithUnit("1")),
		rejected: p.Counter(metricsPrefix+"jobs_rejected_total",
			metrics.WithDescription("Jobs rejected because the pool was closed"), metrics.WithUnit("1")),
		completed: p.Counter(metricsPrefix+"jobs_completed_total",
			metrics.WithDescription("Jobs executed, including panicked ones"), metrics.WithUnit("1")),
		panicked: p.Counter(metricsPrefix+"jobs_panicked_total",
			metrics.WithDescription("Jobs that panicked during execution"), metrics.WithUnit("1")),
		inflight: p.UpDownCounter(metricsPrefix+"jobs_inflight",
			metrics.WithDescription("Jobs currently executing"), metrics.WithUnit("1")),
		queued: p.UpDownCounter(metricsPrefix+"jobs_queued",
			metrics.WithDescription("Jobs waiting for a worker"), metrics.WithUnit("1")),
		live: p.UpDownCounter(metricsPrefix+"workers_live",
			metrics.WithDescription("Worker goroutines that have not exited"), metrics.WithUnit("1")),
		duration: p.Histogram(metricsPrefix+"job_duration_seconds",
			metrics.WithDescription("Job execution time"), metrics.WithUnit("seconds")),
	}
}
