// Package collection maintains the client-side ordered list of a user's
// presentations, newest first, with optimistic updates on completion and
// deletion.
package collection

import (
	"context"
	"sync"

	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
	"github.com/nroh/slidegen/internal/storage"
)

// Backend is the slice of the API the collection needs.
type Backend interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Collection is the authoritative client-side list for one user. All methods
// are safe for concurrent use; in practice mutations arrive one at a time
// from the event loop.
type Collection struct {
	backend Backend
	cache   *storage.Store // may be nil
	userID  string
	log     *logging.Logger

	mu     sync.Mutex
	items  []domain.Summary
	loaded bool
}

// New creates an empty collection for userID. cache may be nil to disable
// the cross-run snapshot.
func New(backend Backend, cache *storage.Store, userID string) *Collection {
	return &Collection{
		backend: backend,
		cache:   cache,
		userID:  userID,
		log:     logging.New("collection").WithUser(userID),
	}
}

// Load fetches the list from the backend. On failure the list keeps its
// last-known state; if nothing was loaded yet, the persisted snapshot from a
// previous run is used as that state. The error is returned either way so
// the caller can surface it.
func (c *Collection) Load(ctx context.Context) error {
	items, err := c.backend.ListByUser(ctx, c.userID)
	if err != nil {
		c.mu.Lock()
		if !c.loaded && c.cache != nil {
			if cached, cacheErr := c.cache.LoadSummaries(ctx, c.userID); cacheErr == nil && cached != nil {
				c.items = cached
				c.loaded = true
			}
		}
		c.mu.Unlock()
		c.log.Warn("load_failed", nil, err)
		return err
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()

	c.persist(ctx)
	return nil
}

// Items returns a copy of the current list.
func (c *Collection) Items() []domain.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Summary, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// OnComplete prepends a summary built from a freshly completed job. No
// refetch happens; the list order stays newest-first by insertion.
func (c *Collection) OnComplete(job *domain.Presentation) {
	summary := job.Summarize()
	summary.Status = domain.StatusCompleted

	c.mu.Lock()
	c.items = append([]domain.Summary{summary}, c.items...)
	c.mu.Unlock()

	c.log.WithJob(job.ID).Info("prepended", nil)
	c.persist(context.Background())
}

// Delete removes a presentation, backend first. On backend failure the list
// is left unchanged and the error returned for surfacing.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.persist(ctx)
	return nil
}

func (c *Collection) persist(ctx context.Context) {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	snapshot := make([]domain.Summary, len(c.items))
	copy(snapshot, c.items)
	c.mu.Unlock()

	if err := c.cache.SaveSummaries(ctx, c.userID, snapshot); err != nil {
		c.log.Warn("cache_save_failed", nil, err)
	}
}
