package catalog

import (
	"context"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// Resolver turns an item's image field into a displayable URL. It is
// read-only and safe to call concurrently, both for bulk thumbnail
// resolution and single detail views.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the display URL for an item's image. A stored
// reference is fetched from the blob table; a missing blob or fetch
// failure yields the placeholder rather than an error. A literal URL
// passes through verbatim; an empty field yields the placeholder.
func (r *Resolver) Resolve(ctx context.Context, item *model.Item) string {
	ref := model.ParseImageRef(item.Image)
	switch ref.Kind {
	case model.ImageLiteral:
		return ref.URL
	case model.ImageStored:
		payload, err := r.store.Image(ctx, ref.ID)
		if err != nil {
			// Dangling pointers and transport failures both resolve to
			// the placeholder; render paths never fail here.
			return model.PlaceholderImageURL
		}
		return payload
	default:
		return model.PlaceholderImageURL
	}
}
