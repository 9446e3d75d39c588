// Package query is the client-side data-access layer for action items. It
// wraps a remote Store with per-user, per-notebook scoping, a list cache
// keyed by notebook, observable loading/pending flags, and a refetch of the
// list after every successful mutation.
package query

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"actionitems/internal/actionitem/model"
	"actionitems/pkg/logger"

	"github.com/patrickmn/go-cache"
)

var (
	ErrMissingScope = model.ErrMissingScope
	ErrEmptyText    = model.ErrEmptyText
)

// Store is the remote table of action items. Update returns nil, nil when no
// row owned by userID matched.
type Store interface {
	List(ctx context.Context, notebookID, userID string) ([]model.ActionItem, error)
	Create(ctx context.Context, in model.NewActionItem) (*model.ActionItem, error)
	Update(ctx context.Context, id, userID string, p model.Patch) (*model.ActionItem, error)
	Delete(ctx context.Context, id, userID string) error
}

// Scope is the notebook and identity every operation runs against.
type Scope struct {
	NotebookID string
	UserID     string
}

func (s Scope) Enabled() bool {
	return s.NotebookID != "" && s.UserID != ""
}

// Snapshot is what a view renders from.
type Snapshot struct {
	NotebookID string
	Items      []model.ActionItem
	// Loading is true only while the first fetch for the notebook is in
	// flight; refetches keep showing the cached list.
	Loading  bool
	Fetching bool
	Adding   bool
	Updating bool
	Deleting bool
	Err      error
}

type Option func(*Items)

// WithClock replaces time.Now for the updated_at stamp.
func WithClock(now func() time.Time) Option {
	return func(i *Items) { i.now = now }
}

type Items struct {
	store Store
	cache *cache.Cache
	now   func() time.Time

	mu      sync.Mutex
	scope   Scope
	lastErr error
	subs    map[int]chan Snapshot
	nextSub int

	fetching  atomic.Int32
	adding    atomic.Int32
	updating  atomic.Int32
	deleting  atomic.Int32
	refreshes atomic.Int64
}

func New(store Store, opts ...Option) *Items {
	i := &Items{
		store: store,
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
		now:   time.Now,
		subs:  make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Items) Scope() Scope {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.scope
}

// SetScope switches notebook and/or identity. A change re-executes the list
// query when the new scope is enabled; an identity change also drops every
// cached list.
func (i *Items) SetScope(ctx context.Context, scope Scope) ([]model.ActionItem, error) {
	i.mu.Lock()
	prev := i.scope
	i.scope = scope
	if prev.UserID != scope.UserID {
		i.cache.Flush()
	}
	if prev != scope {
		i.lastErr = nil
	}
	i.mu.Unlock()

	if prev == scope {
		if items, ok := i.Cached(scope.NotebookID); ok {
			return items, nil
		}
	}
	return i.List(ctx)
}

// List fetches the current user's items in the scoped notebook, newest
// first. Without a complete scope it returns an empty list and does not touch
// the store.
func (i *Items) List(ctx context.Context) ([]model.ActionItem, error) {
	scope := i.Scope()
	if !scope.Enabled() {
		i.publish()
		return []model.ActionItem{}, nil
	}
	return i.fetch(ctx, scope)
}

func (i *Items) fetch(ctx context.Context, scope Scope) ([]model.ActionItem, error) {
	i.fetching.Add(1)
	i.publish()

	items, err := i.store.List(ctx, scope.NotebookID, scope.UserID)
	i.fetching.Add(-1)

	if err != nil {
		logger.Sugar.Errorf("Failed to list action items for notebook %s: %v", scope.NotebookID, err)
	} else {
		if items == nil {
			items = []model.ActionItem{}
		}
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].CreatedAt.After(items[b].CreatedAt)
		})
	}

	// A result for a scope that is no longer current must not land in the
	// cache of the new one.
	i.mu.Lock()
	if i.scope == scope {
		i.lastErr = err
		if err == nil {
			i.cache.Set(scope.NotebookID, items, cache.NoExpiration)
		}
	}
	i.mu.Unlock()

	i.publish()
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Refresh invalidates the cached list of notebookID and, when that notebook
// is in scope, fetches it again.
func (i *Items) Refresh(ctx context.Context, notebookID string) error {
	i.cache.Delete(notebookID)
	i.refreshes.Add(1)

	scope := i.Scope()
	if !scope.Enabled() || scope.NotebookID != notebookID {
		return nil
	}
	_, err := i.fetch(ctx, scope)
	return err
}

// Refreshes counts invalidations issued so far.
func (i *Items) Refreshes() int64 {
	return i.refreshes.Load()
}

// Create inserts a new, not completed item and then refreshes notebookID.
func (i *Items) Create(ctx context.Context, notebookID, userID, text string) (*model.ActionItem, error) {
	if notebookID == "" || userID == "" {
		return nil, ErrMissingScope
	}
	text = model.NormalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	i.adding.Add(1)
	i.publish()
	it, err := i.store.Create(ctx, model.NewActionItem{NotebookID: notebookID, UserID: userID, ActionText: text})
	i.adding.Add(-1)
	if err != nil {
		i.publish()
		return nil, err
	}

	i.afterMutation(ctx, notebookID)
	return it, nil
}

// Update applies the patch, stamped with the current time, to the item owned
// by the scoped user. A patch that matches no owned row is not an error.
func (i *Items) Update(ctx context.Context, id string, p model.Patch) (*model.ActionItem, error) {
	scope := i.Scope()
	if !scope.Enabled() {
		return nil, ErrMissingScope
	}
	if p.ActionText != nil {
		text := model.NormalizeText(*p.ActionText)
		if text == "" {
			return nil, ErrEmptyText
		}
		p.ActionText = &text
	}
	p.UpdatedAt = i.now().UTC()

	i.updating.Add(1)
	i.publish()
	it, err := i.store.Update(ctx, id, scope.UserID, p)
	i.updating.Add(-1)
	if err != nil {
		i.publish()
		return nil, err
	}

	i.afterMutation(ctx, scope.NotebookID)
	return it, nil
}

// Delete removes the item owned by the scoped user. Deletion is permanent.
func (i *Items) Delete(ctx context.Context, id string) error {
	scope := i.Scope()
	if !scope.Enabled() {
		return ErrMissingScope
	}

	i.deleting.Add(1)
	i.publish()
	err := i.store.Delete(ctx, id, scope.UserID)
	i.deleting.Add(-1)
	if err != nil {
		i.publish()
		return err
	}

	i.afterMutation(ctx, scope.NotebookID)
	return nil
}

// afterMutation runs only once the store acknowledged the write. A failed
// refetch does not fail the mutation; it shows up in the snapshot instead.
func (i *Items) afterMutation(ctx context.Context, notebookID string) {
	if err := i.Refresh(ctx, notebookID); err != nil {
		logger.Sugar.Warnf("Refetch after mutation failed for notebook %s: %v", notebookID, err)
	}
}

// Cached returns the last fetched list for notebookID.
func (i *Items) Cached(notebookID string) ([]model.ActionItem, bool) {
	v, ok := i.cache.Get(notebookID)
	if !ok {
		return nil, false
	}
	return v.([]model.ActionItem), true
}

func (i *Items) Loading() bool {
	scope := i.Scope()
	if !scope.Enabled() || i.fetching.Load() == 0 {
		return false
	}
	_, ok := i.Cached(scope.NotebookID)
	return !ok
}

func (i *Items) Adding() bool   { return i.adding.Load() > 0 }
func (i *Items) Updating() bool { return i.updating.Load() > 0 }
func (i *Items) Deleting() bool { return i.deleting.Load() > 0 }

func (i *Items) Snapshot() Snapshot {
	scope := i.Scope()
	items, _ := i.Cached(scope.NotebookID)
	if items == nil {
		items = []model.ActionItem{}
	}

	i.mu.Lock()
	err := i.lastErr
	i.mu.Unlock()

	return Snapshot{
		NotebookID: scope.NotebookID,
		Items:      items,
		Loading:    i.Loading(),
		Fetching:   i.fetching.Load() > 0,
		Adding:     i.Adding(),
		Updating:   i.Updating(),
		Deleting:   i.Deleting(),
		Err:        err,
	}
}

// Subscribe delivers a Snapshot after every state change. Slow readers only
// ever see the latest one. The returned func unsubscribes.
func (i *Items) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	i.mu.Lock()
	id := i.nextSub
	i.nextSub++
	i.subs[id] = ch
	i.mu.Unlock()

	return ch, func() {
		i.mu.Lock()
		delete(i.subs, id)
		i.mu.Unlock()
	}
}

func (i *Items) publish() {
	snap := i.Snapshot()

	i.mu.Lock()
	defer i.mu.Unlock()
	for _, ch := range i.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the stale snapshot nobody has read yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
