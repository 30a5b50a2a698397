// Package poller drives a presentation job from submission to its terminal
// state by repeatedly fetching status from the backend.
//
// The poller is an explicit state machine: inactive until Watch is called
// with a job id, polling while the server reports pending or processing, and
// terminal once completed or failed. The next fetch is always scheduled from
// the completion of the previous one, so slow responses never cause
// overlapping requests.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
)

// State is the poller lifecycle state.
type State int

const (
	// StateInactive means no job is being observed.
	StateInactive State = iota
	// StatePolling means status fetches are being issued.
	StatePolling
	// StateTerminal means the observed job reached completed or failed.
	StateTerminal
)

const (
	// DefaultInterval is the delay between the completion of one status
	// fetch and the start of the next.
	DefaultInterval = 2 * time.Second

	// DefaultRetries is how many additional attempts a single logical
	// fetch gets on transport failure. Retries do not reset the cadence.
	DefaultRetries = 3
)

// StatusFetcher fetches the current state of a job. *api.Client satisfies it.
type StatusFetcher interface {
	Status(ctx context.Context, id string) (*domain.Presentation, error)
}

// Callbacks receive terminal notifications. Each fires at most once per
// Watch, and never after Stop.
type Callbacks struct {
	// OnComplete receives the final payload when the job completes.
	OnComplete func(job *domain.Presentation)
	// OnError receives the server-supplied failure message, or the fetch
	// error that exhausted its retries.
	OnError func(err error)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll cadence (for testing).
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithRetries overrides the per-fetch retry budget.
func WithRetries(n int) Option {
	return func(p *Poller) { p.retries = n }
}

// Poller observes one job at a time. Separate Poller instances are fully
// independent; use one per observed job.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	retries  int
	log      *logging.Logger

	mu     sync.Mutex
	state  State
	jobID  string
	cancel context.CancelFunc
}

// New creates an inactive poller.
func New(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultInterval,
		retries:  DefaultRetries,
		log:      logging.New("poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// JobID returns the job currently observed, or "" when inactive.
func (p *Poller) JobID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobID
}

// Watch starts observing jobID and returns a stream of status payloads,
// closed when polling halts. The first fetch is issued immediately. An empty
// jobID deactivates the poller and returns a nil channel.
//
// Watching a new job while one is in flight stops the previous observation
// first; its callbacks will not fire.
func (p *Poller) Watch(jobID string, cb Callbacks) <-chan domain.Presentation {
	p.Stop()

	if jobID == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.state = StatePolling
	p.jobID = jobID
	p.cancel = cancel
	p.mu.Unlock()

	updates := make(chan domain.Presentation, 16)
	go func() {
		defer cancel()
		p.run(ctx, jobID, cb, updates)
	}()
	return updates
}

// Stop halts all pending and future fetches with no further callbacks.
// Safe to call at any time, including when already inactive.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.state = StateInactive
	p.jobID = ""
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context, jobID string, cb Callbacks, updates chan<- domain.Presentation) {
	defer close(updates)

	log := p.log.WithJob(jobID)
	start := time.Now()
	var last domain.Status

	for {
		job, err := p.fetchWithRetries(ctx, jobID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if p.settle(ctx) {
				log.Error("poll_failed", nil, err)
				if cb.OnError != nil {
					cb.OnError(err)
				}
			}
			return
		}

		// The server is authoritative, but a stale read must never make
		// the observed sequence regress. Skip anything out of order.
		if last == "" || !job.Status.Before(last) {
			last = job.Status
			select {
			case updates <- *job:
			case <-ctx.Done():
				return
			}
		}

		switch job.Status {
		case domain.StatusCompleted:
			if p.settle(ctx) {
				log.TimedEvent("completed", start, map[string]interface{}{
					"slides": job.SlideCount,
				})
				if cb.OnComplete != nil {
					cb.OnComplete(job)
				}
			}
			return

		case domain.StatusFailed:
			if p.settle(ctx) {
				failure := &api.GenerationError{Message: job.Error}
				log.Error("failed", nil, failure)
				if cb.OnError != nil {
					cb.OnError(failure)
				}
			}
			return
		}

		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return
		}
	}
}

// fetchWithRetries performs one logical status fetch. A job that is not
// found is terminal and not retried; other transport failures get up to
// p.retries additional attempts back to back.
func (p *Poller) fetchWithRetries(ctx context.Context, jobID string) (*domain.Presentation, error) {
	var err error
	for attempt := 0; attempt <= p.retries; attempt++ {
		var job *domain.Presentation
		job, err = p.fetcher.Status(ctx, jobID)
		if err == nil {
			return job, nil
		}
		if api.IsNotFound(err) || !api.Retriable(err) || ctx.Err() != nil {
			return nil, err
		}
		p.log.WithJob(jobID).Warn("fetch_retry", map[string]interface{}{
			"attempt": attempt + 1,
		}, err)
	}
	return nil, err
}

// settle transitions polling → terminal exactly once. It returns false when
// the observation was cancelled, so callbacks stay silent after Stop.
func (p *Poller) settle(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || p.state != StatePolling {
		return false
	}
	p.state = StateTerminal
	p.cancel = nil
	return true
}
