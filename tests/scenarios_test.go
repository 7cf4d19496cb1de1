package tests

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workerpool"
)

// recorder is a goroutine-safe append-only log shared by jobs.
type recorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	r.entries = append(r.entries, s)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

func TestBuild_SizeOneOrMore_Succeeds(t *testing.T) {
	for _, size := range []uint{1, 2, 4, 16, 128} {
		p, err := workerpool.New(size)
		require.NoError(t, err)
		require.Equal(t, int(size), p.Size())
		require.Equal(t, workerpool.StateRunning, p.State())
		p.Close()
	}
}

func TestBuild_ZeroSize_NeverBlocksOrPanics(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NotPanics(t, func() {
			p, err := workerpool.New(0)
			require.ErrorIs(t, err, workerpool.ErrZeroSizedPool)
			require.Nil(t, p)
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("New(0) blocked")
	}
}

func TestScenario_SlowJobDoesNotBlockFastJob(t *testing.T) {
	p, err := workerpool.New(2)
	require.NoError(t, err)
	defer p.Close()

	rec := &recorder{}
	start := time.Now()

	require.NoError(t, p.Submit(func() {
		time.Sleep(500 * time.Millisecond)
		rec.record("A")
	}))
	require.NoError(t, p.Submit(func() { rec.record("B") }))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 700*time.Millisecond, 5*time.Millisecond)
	require.Less(t, time.Since(start), 800*time.Millisecond)
	require.Equal(t, []string{"B", "A"}, rec.snapshot(), "B must not wait behind A with two workers")
}

func TestScenario_SingleWorker_PreservesSubmissionOrder(t *testing.T) {
	p, err := workerpool.New(1)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		log []int
	)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			log = append(log, i)
			mu.Unlock()
		}))
	}
	p.Close()

	require.Equal(t, []int{0, 1, 2}, log)
}

func TestScenario_CloseWaitsForLongRunningJob(t *testing.T) {
	p, err := workerpool.New(2)
	require.NoError(t, err)

	var finished atomic.Bool
	require.NoError(t, p.Submit(func() {
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
	}))

	start := time.Now()
	p.Close()

	require.True(t, finished.Load(), "Close returned before the job completed")
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	require.Equal(t, workerpool.StateTerminated, p.State())
}

func TestScenario_AllQueuedJobsRunExactlyOnceBeforeClose(t *testing.T) {
	const n = 1000
	p, err := workerpool.New(4)
	require.NoError(t, err)

	counts := make([]atomic.Int32, n)
	for i := 0; i < n; i++ {
		require.NoError(t, p.Submit(func() {
			time.Sleep(time.Microsecond)
			counts[i].Add(1)
		}))
	}
	p.Close()

	for i := range counts {
		require.EqualValuesf(t, 1, counts[i].Load(), "job %d", i)
	}
	require.EqualValues(t, n, p.Stats().Completed)
}

func TestSubmit_AfterClose_ReturnsPoolClosed(t *testing.T) {
	p, err := workerpool.New(2)
	require.NoError(t, err)
	p.Close()

	var ran atomic.Bool
	require.NotPanics(t, func() {
		err = p.Submit(func() { ran.Store(true) })
	})
	require.ErrorIs(t, err, workerpool.ErrPoolClosed)
	require.False(t, ran.Load())
}
