// Package suggest debounces free-text topic input and fetches AI topic
// suggestions, caching results per (topic, industry, audience) key.
//
// The debounce timer and the TTL cache are explicit state owned by the
// Debouncer, decoupled from any UI lifecycle: a new keystroke restarts the
// timer and cancels the in-flight request, and cached entries expire after a
// fixed window.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
)

const (
	// DefaultDelay is how long input must stay idle before a fetch.
	DefaultDelay = 500 * time.Millisecond

	// DefaultTTL is how long a cached suggestion set stays fresh.
	DefaultTTL = 5 * time.Minute

	// MinTopicLength is the threshold below which no request is made.
	MinTopicLength = 3

	// DefaultRetries is the number of additional attempts after a
	// retriable failure. Rate limits are terminal for the request.
	DefaultRetries = 2
)

// SuggestionFetcher fetches suggestions. *api.Client satisfies it.
type SuggestionFetcher interface {
	Suggestions(ctx context.Context, req api.SuggestionRequest) ([]string, error)
}

// Key identifies one cached suggestion set.
type Key struct {
	Topic    string
	Industry string
	Audience string
}

// Result is one debounced outcome: either a suggestion set, an empty set for
// short input, or a fetch error.
type Result struct {
	Topic       string
	Suggestions []string
	Err         error
	FromCache   bool
}

type cacheEntry struct {
	suggestions []string
	fetchedAt   time.Time
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithDelay overrides the debounce window (for testing).
func WithDelay(d time.Duration) Option {
	return func(db *Debouncer) { db.delay = d }
}

// WithTTL overrides the cache TTL.
func WithTTL(d time.Duration) Option {
	return func(db *Debouncer) { db.ttl = d }
}

// WithRetries overrides the retry budget.
func WithRetries(n int) Option {
	return func(db *Debouncer) { db.retries = n }
}

// WithClock overrides the time source (for cache expiry tests).
func WithClock(now func() time.Time) Option {
	return func(db *Debouncer) { db.now = now }
}

// Debouncer turns a stream of keystrokes into at most one suggestion fetch
// per idle window. Results are delivered on the Results channel.
type Debouncer struct {
	fetcher SuggestionFetcher
	delay   time.Duration
	ttl     time.Duration
	retries int
	now     func() time.Time
	log     *logging.Logger

	mu          sync.Mutex
	industry    string
	audience    string
	debounced   string
	timer       *time.Timer
	cancelFetch context.CancelFunc
	cache       map[Key]cacheEntry
	results     chan Result
	closed      bool
}

// New creates a debouncer around the given fetcher.
func New(fetcher SuggestionFetcher, opts ...Option) *Debouncer {
	d := &Debouncer{
		fetcher: fetcher,
		delay:   DefaultDelay,
		ttl:     DefaultTTL,
		retries: DefaultRetries,
		now:     time.Now,
		log:     logging.New("suggest"),
		cache:   make(map[Key]cacheEntry),
		results: make(chan Result, 16),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Results is the stream of debounced outcomes.
func (d *Debouncer) Results() <-chan Result {
	return d.results
}

// SetContext updates the industry/audience key parts for subsequent fetches.
func (d *Debouncer) SetContext(industry, audience string) {
	d.mu.Lock()
	d.industry = industry
	d.audience = audience
	d.mu.Unlock()
}

// SetInput registers a keystroke. The debounce timer restarts and any
// pending fetch for the previous input is cancelled.
func (d *Debouncer) SetInput(topic string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancelFetch != nil {
		d.cancelFetch()
		d.cancelFetch = nil
	}

	topic = strings.TrimSpace(topic)
	d.timer = time.AfterFunc(d.delay, func() { d.fire(topic) })
}

// Refresh bypasses the cache and re-issues the fetch for the current
// debounced topic. It is a no-op when no debounced topic is set.
func (d *Debouncer) Refresh() {
	d.mu.Lock()
	topic := d.debounced
	d.mu.Unlock()

	if topic == "" || len(topic) < MinTopicLength {
		return
	}
	d.fetch(topic)
}

// Topic returns the current debounced topic, if any.
func (d *Debouncer) Topic() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debounced
}

// Close cancels all pending work. No results are delivered afterwards.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancelFetch != nil {
		d.cancelFetch()
	}
	close(d.results)
}

// fire runs when the input survived the debounce window.
func (d *Debouncer) fire(topic string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.debounced = topic
	key := Key{Topic: topic, Industry: d.industry, Audience: d.audience}

	if len(topic) < MinTopicLength {
		d.mu.Unlock()
		d.emit(Result{Topic: topic})
		return
	}

	if entry, ok := d.cache[key]; ok && d.now().Sub(entry.fetchedAt) < d.ttl {
		d.mu.Unlock()
		d.emit(Result{Topic: topic, Suggestions: entry.suggestions, FromCache: true})
		return
	}
	d.mu.Unlock()

	d.fetch(topic)
}

// fetch issues the backend request, honoring the retry policy.
func (d *Debouncer) fetch(topic string) {
	ctx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		cancel()
		return
	}
	if d.cancelFetch != nil {
		d.cancelFetch()
	}
	d.cancelFetch = cancel
	req := api.SuggestionRequest{
		Topic:      topic,
		Industry:   d.industry,
		Audience:   d.audience,
		SlideCount: domain.DefaultSlideCount,
	}
	key := Key{Topic: topic, Industry: d.industry, Audience: d.audience}
	d.mu.Unlock()

	go func() {
		defer cancel()

		suggestions, err := Once(ctx, d.fetcher, req, d.retries)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			d.log.Error("fetch_failed", map[string]interface{}{"topic": topic}, err)
			d.emit(Result{Topic: topic, Err: err})
			return
		}

		d.mu.Lock()
		d.cache[key] = cacheEntry{suggestions: suggestions, fetchedAt: d.now()}
		d.mu.Unlock()

		d.emit(Result{Topic: topic, Suggestions: suggestions})
	}()
}

// Once performs a single suggestion fetch with the package retry policy:
// a rate limit is terminal, anything else retriable gets up to retries
// additional attempts.
func Once(ctx context.Context, fetcher SuggestionFetcher, req api.SuggestionRequest, retries int) ([]string, error) {
	var suggestions []string
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		suggestions, err = fetcher.Suggestions(ctx, req)
		if err == nil || !api.Retriable(err) || ctx.Err() != nil {
			break
		}
	}
	return suggestions, err
}

func (d *Debouncer) emit(r Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.results <- r:
	default:
		// Consumer far behind; dropping the oldest pending result keeps
		// the stream current.
		select {
		case <-d.results:
		default:
		}
		select {
		case d.results <- r:
		default:
		}
	}
}
