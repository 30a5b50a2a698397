package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/domain"
)

// scriptFetcher replays a fixed sequence of status responses, repeating the
// last step once the script is exhausted.
type scriptFetcher struct {
	mu    sync.Mutex
	steps []scriptStep
	idx   int
	calls int
}

type scriptStep struct {
	job *domain.Presentation
	err error
}

func (f *scriptFetcher) Status(ctx context.Context, id string) (*domain.Presentation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	step := f.steps[f.idx]
	if f.idx < len(f.steps)-1 {
		f.idx++
	}
	return step.job, step.err
}

func (f *scriptFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func job(status domain.Status) *domain.Presentation {
	return &domain.Presentation{ID: "job-1", Status: status, SlideCount: 10}
}

func drain(t *testing.T, updates <-chan domain.Presentation) []domain.Status {
	t.Helper()
	var seen []domain.Status
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return seen
			}
			seen = append(seen, u.Status)
		case <-timeout:
			t.Fatal("updates channel never closed")
		}
	}
}

func TestWatchToCompletion(t *testing.T) {
	fetcher := &scriptFetcher{steps: []scriptStep{
		{job: job(domain.StatusPending)},
		{job: job(domain.StatusProcessing)},
		{job: job(domain.StatusCompleted)},
	}}
	p := New(fetcher, WithInterval(time.Millisecond))

	completed := make(chan *domain.Presentation, 1)
	failed := make(chan error, 1)
	updates := p.Watch("job-1", Callbacks{
		OnComplete: func(j *domain.Presentation) { completed <- j },
		OnError:    func(err error) { failed <- err },
	})

	seen := drain(t, updates)
	assert.Equal(t, []domain.Status{
		domain.StatusPending,
		domain.StatusProcessing,
		domain.StatusCompleted,
	}, seen)

	select {
	case final := <-completed:
		assert.Equal(t, domain.StatusCompleted, final.Status)
	case <-time.After(time.Second):
		t.Fatal("OnComplete never fired")
	}
	assert.Empty(t, failed)
	assert.Equal(t, StateTerminal, p.State())
}

func TestWatchFailure(t *testing.T) {
	failedJob := job(domain.StatusFailed)
	failedJob.Error = "model overloaded"
	fetcher := &scriptFetcher{steps: []scriptStep{
		{job: job(domain.StatusProcessing)},
		{job: failedJob},
	}}
	p := New(fetcher, WithInterval(time.Millisecond))

	failed := make(chan error, 1)
	updates := p.Watch("job-1", Callbacks{
		OnError: func(err error) { failed <- err },
	})
	drain(t, updates)

	select {
	case err := <-failed:
		var gerr *api.GenerationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "model overloaded", gerr.Message)
	case <-time.After(time.Second):
		t.Fatal("OnError never fired")
	}
	assert.Equal(t, StateTerminal, p.State())
}

func TestNotFoundIsTerminal(t *testing.T) {
	fetcher := &scriptFetcher{steps: []scriptStep{
		{err: api.ErrNotFound},
	}}
	p := New(fetcher, WithInterval(time.Millisecond))

	failed := make(chan error, 1)
	updates := p.Watch("gone", Callbacks{
		OnError: func(err error) { failed <- err },
	})
	drain(t, updates)

	select {
	case err := <-failed:
		assert.True(t, api.IsNotFound(err))
	case <-time.After(time.Second):
		t.Fatal("OnError never fired")
	}
	// A missing job is not retried.
	assert.Equal(t, 1, fetcher.callCount())
}

func TestTransientFailuresAreRetried(t *testing.T) {
	transient := &api.TransportError{Op: "status", Err: errors.New("connection refused")}
	fetcher := &scriptFetcher{steps: []scriptStep{
		{err: transient},
		{err: transient},
		{job: job(domain.StatusCompleted)},
	}}
	p := New(fetcher, WithInterval(time.Millisecond))

	completed := make(chan *domain.Presentation, 1)
	failed := make(chan error, 1)
	updates := p.Watch("job-1", Callbacks{
		OnComplete: func(j *domain.Presentation) { completed <- j },
		OnError:    func(err error) { failed <- err },
	})
	drain(t, updates)

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("OnComplete never fired")
	}
	assert.Empty(t, failed)
	assert.Equal(t, 3, fetcher.callCount())
}

func TestRetriesExhausted(t *testing.T) {
	transient := &api.TransportError{Op: "status", Err: errors.New("connection refused")}
	fetcher := &scriptFetcher{steps: []scriptStep{{err: transient}}}
	p := New(fetcher, WithInterval(time.Millisecond), WithRetries(2))

	failed := make(chan error, 1)
	updates := p.Watch("job-1", Callbacks{
		OnError: func(err error) { failed <- err },
	})
	drain(t, updates)

	select {
	case err := <-failed:
		var terr *api.TransportError
		assert.ErrorAs(t, err, &terr)
	case <-time.After(time.Second):
		t.Fatal("OnError never fired")
	}
	// Initial attempt plus two retries.
	assert.Equal(t, 3, fetcher.callCount())
}

func TestOutOfOrderStatusIsSkipped(t *testing.T) {
	fetcher := &scriptFetcher{steps: []scriptStep{
		{job: job(domain.StatusProcessing)},
		{job: job(domain.StatusPending)},
		{job: job(domain.StatusCompleted)},
	}}
	p := New(fetcher, WithInterval(time.Millisecond))

	updates := p.Watch("job-1", Callbacks{})
	seen := drain(t, updates)

	assert.Equal(t, []domain.Status{
		domain.StatusProcessing,
		domain.StatusCompleted,
	}, seen)
}

func TestStopSilencesCallbacks(t *testing.T) {
	// The fetcher blocks until the watch context is cancelled.
	block := &blockingFetcher{released: make(chan struct{})}
	p := New(block, WithInterval(time.Millisecond))

	completed := make(chan *domain.Presentation, 1)
	failed := make(chan error, 1)
	updates := p.Watch("job-1", Callbacks{
		OnComplete: func(j *domain.Presentation) { completed <- j },
		OnError:    func(err error) { failed <- err },
	})

	p.Stop()
	drain(t, updates)

	select {
	case <-completed:
		t.Fatal("OnComplete fired after Stop")
	case <-failed:
		t.Fatal("OnError fired after Stop")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateInactive, p.State())
	assert.Equal(t, "", p.JobID())
}

func TestWatchReplacesPreviousJob(t *testing.T) {
	// job-1 never resolves; job-2 completes immediately.
	p := New(&routeFetcher{}, WithInterval(time.Millisecond))

	firstFailed := make(chan error, 1)
	first := p.Watch("job-1", Callbacks{
		OnError: func(err error) { firstFailed <- err },
	})

	completed := make(chan *domain.Presentation, 1)
	second := p.Watch("job-2", Callbacks{
		OnComplete: func(j *domain.Presentation) { completed <- j },
	})

	drain(t, first)
	drain(t, second)

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("OnComplete never fired for the second job")
	}
	assert.Empty(t, firstFailed)
}

func TestEmptyJobIDDeactivates(t *testing.T) {
	p := New(&scriptFetcher{steps: []scriptStep{{job: job(domain.StatusPending)}}})
	assert.Nil(t, p.Watch("", Callbacks{}))
	assert.Equal(t, StateInactive, p.State())
}

// timingFetcher replays scripted responses while recording when each fetch
// started and completed. A step may simulate a slow response.
type timingFetcher struct {
	mu     sync.Mutex
	steps  []timedStep
	idx    int
	starts []time.Time
	ends   []time.Time
}

type timedStep struct {
	job   *domain.Presentation
	delay time.Duration
}

func (f *timingFetcher) Status(ctx context.Context, id string) (*domain.Presentation, error) {
	f.mu.Lock()
	f.starts = append(f.starts, time.Now())
	step := f.steps[f.idx]
	if f.idx < len(f.steps)-1 {
		f.idx++
	}
	f.mu.Unlock()

	if step.delay > 0 {
		time.Sleep(step.delay)
	}

	f.mu.Lock()
	f.ends = append(f.ends, time.Now())
	f.mu.Unlock()
	return step.job, nil
}

func (f *timingFetcher) timeline() (starts, ends []time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.starts...), append([]time.Time(nil), f.ends...)
}

func TestNextFetchWaitsForPreviousCompletion(t *testing.T) {
	const interval = 50 * time.Millisecond

	// The first response is slower than the interval itself; the schedule
	// must still count from its completion, so fetches never overlap.
	fetcher := &timingFetcher{steps: []timedStep{
		{job: job(domain.StatusProcessing), delay: 80 * time.Millisecond},
		{job: job(domain.StatusProcessing)},
		{job: job(domain.StatusCompleted)},
	}}
	p := New(fetcher, WithInterval(interval))

	updates := p.Watch("job-1", Callbacks{})
	drain(t, updates)

	starts, ends := fetcher.timeline()
	require.Len(t, starts, 3)
	require.Len(t, ends, 3)
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(ends[i-1])
		assert.GreaterOrEqual(t, gap, interval,
			"fetch %d started %v after the previous fetch completed", i, gap)
	}
}

// blockingFetcher parks every call until its context is cancelled.
type blockingFetcher struct {
	released chan struct{}
}

func (f *blockingFetcher) Status(ctx context.Context, id string) (*domain.Presentation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.released:
		return job(domain.StatusCompleted), nil
	}
}

// routeFetcher blocks job-1 forever and completes everything else.
type routeFetcher struct{}

func (f *routeFetcher) Status(ctx context.Context, id string) (*domain.Presentation, error) {
	if id == "job-1" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return job(domain.StatusCompleted), nil
}
