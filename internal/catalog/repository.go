package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// Repository owns the canonical item collection. It keeps the last
// successfully fetched snapshot so list/render paths never fail, and
// serializes its remote read-modify-write cycles so a single process
// never runs two aggregate writes at once.
type Repository struct {
	store    Store
	fallback []model.Item

	mu           sync.Mutex
	snapshot     []model.Item
	revision     int64
	initialized  bool
	fallbackMode bool
}

// NewRepository creates a repository over the given store. The
// fallback items are served read-only when the store is unreachable.
func NewRepository(store Store, fallback []model.Item) *Repository {
	return &Repository{store: store, fallback: fallback}
}

// Initialize connects to the store, creating the aggregate on first
// use, and loads the initial snapshot. Idempotent. When the store is
// unreachable the repository enters read-only fallback mode and the
// returned error wraps ErrConnection so the caller can tell the user.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initLocked(ctx)
}

func (r *Repository) initLocked(ctx context.Context) error {
	if r.initialized {
		return nil
	}

	if err := r.store.Init(ctx); err != nil {
		r.enterFallbackLocked()
		return fmt.Errorf("initializing catalog: %w", err)
	}
	if err := r.refreshLocked(ctx); err != nil {
		r.enterFallbackLocked()
		return fmt.Errorf("initializing catalog: %w", err)
	}

	r.initialized = true
	r.fallbackMode = false
	return nil
}

func (r *Repository) enterFallbackLocked() {
	r.initialized = true
	r.fallbackMode = true
	r.snapshot = make([]model.Item, len(r.fallback))
	copy(r.snapshot, r.fallback)
}

// FallbackMode reports whether the repository serves the bundled
// dataset because the store was unreachable.
func (r *Repository) FallbackMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallbackMode
}

func (r *Repository) refreshLocked(ctx context.Context) error {
	catalog, revision, err := r.store.Catalog(ctx)
	if err != nil {
		return err
	}
	r.snapshot = make([]model.Item, len(catalog.Items))
	copy(r.snapshot, catalog.Items)
	r.revision = revision
	return nil
}

// Refresh forces a re-fetch of the aggregate, replacing the snapshot.
// No-op in fallback mode.
func (r *Repository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(ctx); err != nil {
		return err
	}
	if r.fallbackMode {
		return nil
	}
	return r.refreshLocked(ctx)
}

// List returns the full current collection. A remote read failure is
// absorbed: the last good snapshot (or the fallback dataset) is
// returned instead, so render paths never see an error.
func (r *Repository) List(ctx context.Context) []model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Lazy init mirrors the store boundary: the first read connects.
	_ = r.initLocked(ctx)

	out := make([]model.Item, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// CatalogItems returns the non-character partition of the collection.
func (r *Repository) CatalogItems(ctx context.Context) []model.Item {
	return filterItems(r.List(ctx), func(i *model.Item) bool { return !i.IsCharacter() })
}

// CharacterItems returns the character partition of the collection.
func (r *Repository) CharacterItems(ctx context.Context) []model.Item {
	return filterItems(r.List(ctx), (*model.Item).IsCharacter)
}

// Search returns items whose name contains the term, case-insensitive.
func (r *Repository) Search(ctx context.Context, term string) []model.Item {
	term = strings.ToLower(term)
	return filterItems(r.List(ctx), func(i *model.Item) bool {
		return strings.Contains(strings.ToLower(i.Name), term)
	})
}

// Get returns the item with the given id from the current snapshot.
func (r *Repository) Get(ctx context.Context, id string) (model.Item, error) {
	for _, item := range r.List(ctx) {
		if item.ID == id {
			return item, nil
		}
	}
	return model.Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

// Create appends a new item to the aggregate. An empty id is
// generated; an id already present in the collection is refused with
// ErrDuplicateID rather than silently duplicated or overwritten. The
// stock status is recomputed before the write.
func (r *Repository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(ctx); err != nil {
		return model.Item{}, err
	}

	if item.ID == "" {
		item.ID = model.NewItemID()
	}
	if indexOf(r.snapshot, item.ID) >= 0 {
		return model.Item{}, fmt.Errorf("create %s: %w", item.ID, ErrDuplicateID)
	}
	item.Stock.DeriveStatus()
	if item.Logs == nil {
		item.Logs = []model.LogEntry{}
	}

	if err := r.store.AppendItem(ctx, item); err != nil {
		return model.Item{}, fmt.Errorf("create %s: %w", item.ID, err)
	}

	r.snapshot = append(r.snapshot, item)
	return item, nil
}

// Update replaces the record with the matching id verbatim. The caller
// is responsible for carrying over fields its form didn't touch (logs,
// legacy comments, the image pointer); no field merge happens here.
// A missing id is a hard error, distinguishable from success. On a
// concurrent-writer conflict the aggregate is re-read and the write
// retried once.
func (r *Repository) Update(ctx context.Context, item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(ctx); err != nil {
		return err
	}

	item.Stock.DeriveStatus()

	for attempt := 0; ; attempt++ {
		idx := indexOf(r.snapshot, item.ID)
		if idx < 0 {
			return fmt.Errorf("update %s: %w", item.ID, ErrNotFound)
		}

		items := make([]model.Item, len(r.snapshot))
		copy(items, r.snapshot)
		items[idx] = item

		newRev, err := r.store.ReplaceItems(ctx, items, r.revision)
		if err == nil {
			r.snapshot = items
			r.revision = newRev
			return nil
		}
		if !errors.Is(err, ErrConflict) || attempt > 0 {
			return fmt.Errorf("update %s: %w", item.ID, err)
		}
		if err := r.refreshLocked(ctx); err != nil {
			return fmt.Errorf("update %s: %w", item.ID, err)
		}
	}
}

// Delete removes the record with the given id. An absent id is a
// no-op, not an error. Write failures surface so the caller's
// optimistic state can be rolled back.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writableLocked(ctx); err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		idx := indexOf(r.snapshot, id)
		if idx < 0 {
			return nil
		}

		items := make([]model.Item, 0, len(r.snapshot)-1)
		for i := range r.snapshot {
			if i != idx {
				items = append(items, r.snapshot[i])
			}
		}

		newRev, err := r.store.ReplaceItems(ctx, items, r.revision)
		if err == nil {
			r.snapshot = items
			r.revision = newRev
			return nil
		}
		if !errors.Is(err, ErrConflict) || attempt > 0 {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		if err := r.refreshLocked(ctx); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}
}

// AppendLog adds an annotation to an item: fetch, append, write the
// full item back. Author and text must be non-empty after trimming;
// that is validated here, before anything reaches the store.
func (r *Repository) AppendLog(ctx context.Context, id, author, text string) error {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	if author == "" {
		return fmt.Errorf("log author required: %w", ErrValidation)
	}
	if text == "" {
		return fmt.Errorf("log text required: %w", ErrValidation)
	}

	item, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	item.Logs = append(item.Logs, model.LogEntry{
		Date:   time.Now(),
		Author: author,
		Text:   text,
	})
	return r.Update(ctx, item)
}

// AttachImage stores an encoded image payload for the item and points
// the item's image field at it. The payload must already be encoded;
// the blob write strictly precedes the pointer update.
func (r *Repository) AttachImage(ctx context.Context, id, payload string) error {
	item, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	readOnly := r.fallbackMode
	r.mu.Unlock()
	if readOnly {
		return ErrReadOnly
	}

	if err := r.store.SaveImage(ctx, id, payload); err != nil {
		return fmt.Errorf("saving image %s: %w", id, err)
	}

	item.Image = model.StoredImageRef(id)
	return r.Update(ctx, item)
}

func (r *Repository) writableLocked(ctx context.Context) error {
	if err := r.initLocked(ctx); err != nil {
		return err
	}
	if r.fallbackMode {
		return ErrReadOnly
	}
	return nil
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func filterItems(items []model.Item, keep func(*model.Item) bool) []model.Item {
	var out []model.Item
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
