// Package catalog implements the item repository and image reference
// resolution over a remote document store, with a bundled read-only
// fallback when the store is unreachable.
package catalog

import (
	"context"
	"errors"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

var (
	// ErrConnection means the remote store is unreachable; the
	// repository degrades to the bundled fallback dataset.
	ErrConnection = errors.New("document store unreachable")
	// ErrNotFound is returned for update targets and image ids that
	// don't exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means another writer changed the aggregate between
	// our read and write.
	ErrConflict = errors.New("catalog changed concurrently")
	// ErrDuplicateID is returned by Create when the id is already
	// taken; a create never silently becomes an update.
	ErrDuplicateID = errors.New("item id already exists")
	// ErrValidation covers missing required fields, rejected before
	// any store call.
	ErrValidation = errors.New("invalid input")
	// ErrReadOnly is returned for writes while in fallback mode, where
	// nothing would actually persist.
	ErrReadOnly = errors.New("catalog is read-only in fallback mode")
)

// Store is the remote document store boundary: one aggregate document
// plus per-item image blobs. Implementations map their transport
// failures onto the package error values.
type Store interface {
	// Init establishes connectivity and creates the empty aggregate if
	// absent. Idempotent. Returns ErrConnection when unreachable.
	Init(ctx context.Context) error

	// Catalog fetches the aggregate and its revision.
	Catalog(ctx context.Context) (*model.Catalog, int64, error)

	// AppendItem adds one item with union semantics: concurrently
	// appended distinct items are never dropped, and a deeply equal
	// element is not duplicated.
	AppendItem(ctx context.Context, item model.Item) error

	// ReplaceItems overwrites the item list. A positive revision makes
	// the write conditional; ErrConflict reports staleness.
	ReplaceItems(ctx context.Context, items []model.Item, revision int64) (int64, error)

	// SaveImage upserts one encoded image payload keyed by item id.
	SaveImage(ctx context.Context, id, payload string) error

	// Image returns the payload for an id, or ErrNotFound on a miss.
	Image(ctx context.Context, id string) (string, error)
}
