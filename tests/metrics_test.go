package tests

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workerpool"
	"github.com/ygrebnov/workerpool/metrics"
)

func TestWithMetrics_BasicProvider_CountersAndHistogram(t *testing.T) {
	mp := metrics.NewBasicProvider()

	p, err := workerpool.New(2, workerpool.WithMetrics(mp))
	require.NoError(t, err)

	nOK, nPanic := 5, 3
	for i := 0; i < nOK; i++ {
		require.NoError(t, p.Submit(func() { time.Sleep(2 * time.Millisecond) }))
	}
	for i := 0; i < nPanic; i++ {
		require.NoError(t, p.Submit(func() { panic("boom") }))
	}
	p.Close()

	values := mp.Values()
	require.EqualValues(t, nOK+nPanic, values["workerpool_jobs_submitted_total"])
	require.EqualValues(t, nOK+nPanic, values["workerpool_jobs_completed_total"])
	require.EqualValues(t, nPanic, values["workerpool_jobs_panicked_total"])
	require.Zero(t, values["workerpool_jobs_inflight"])
	require.Zero(t, values["workerpool_jobs_queued"])
	require.Zero(t, values["workerpool_workers_live"])

	h := mp.Histogram("workerpool_job_duration_seconds").(*metrics.BasicHistogram).Snapshot()
	require.EqualValues(t, nOK+nPanic, h.Count)
	require.GreaterOrEqual(t, h.Min, 0.0)
}

func TestWithMetrics_PrometheusProvider(t *testing.T) {
	reg := prometheus.NewRegistry()

	p, err := workerpool.New(3, workerpool.WithMetrics(metrics.NewPrometheusProvider(reg)))
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, p.Submit(func() {}))
	}
	p.Close()
	_ = p.Submit(func() {})

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			got[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			got[mf.GetName()] = m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			got[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
		}
	}

	require.InDelta(t, 7, got["workerpool_jobs_submitted_total"], 1e-9)
	require.InDelta(t, 7, got["workerpool_jobs_completed_total"], 1e-9)
	require.InDelta(t, 1, got["workerpool_jobs_rejected_total"], 1e-9)
	require.InDelta(t, 0, got["workerpool_workers_live"], 1e-9)
	require.InDelta(t, 7, got["workerpool_job_duration_seconds"], 1e-9)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 8, n)
}
