package catalog

import (
	"context"
	"reflect"
	"time"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// fakeStore is an in-memory Store with the same union and revision
// semantics as the real server.
type fakeStore struct {
	catalog  *model.Catalog
	revision int64
	images   map[string]string

	unreachable bool
	failWrites  bool

	appendCalls  int
	replaceCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{images: map[string]string{}}
}

func (s *fakeStore) Init(ctx context.Context) error {
	if s.unreachable {
		return ErrConnection
	}
	if s.catalog == nil {
		s.catalog = &model.Catalog{Items: []model.Item{}, Created: time.Now()}
		s.revision = 1
	}
	return nil
}

func (s *fakeStore) Catalog(ctx context.Context) (*model.Catalog, int64, error) {
	if s.unreachable {
		return nil, 0, ErrConnection
	}
	items := make([]model.Item, len(s.catalog.Items))
	copy(items, s.catalog.Items)
	return &model.Catalog{Items: items, Created: s.catalog.Created}, s.revision, nil
}

func (s *fakeStore) AppendItem(ctx context.Context, item model.Item) error {
	s.appendCalls++
	if s.unreachable {
		return ErrConnection
	}
	if s.failWrites {
		return ErrConnection
	}
	for i := range s.catalog.Items {
		if reflect.DeepEqual(s.catalog.Items[i], item) {
			return nil
		}
	}
	s.catalog.Items = append(s.catalog.Items, item)
	s.revision++
	return nil
}

func (s *fakeStore) ReplaceItems(ctx context.Context, items []model.Item, revision int64) (int64, error) {
	s.replaceCalls++
	if s.unreachable || s.failWrites {
		return 0, ErrConnection
	}
	if revision > 0 && revision != s.revision {
		return 0, ErrConflict
	}
	s.catalog.Items = make([]model.Item, len(items))
	copy(s.catalog.Items, items)
	s.revision++
	return s.revision, nil
}

func (s *fakeStore) SaveImage(ctx context.Context, id, payload string) error {
	if s.unreachable || s.failWrites {
		return ErrConnection
	}
	s.images[id] = payload
	return nil
}

func (s *fakeStore) Image(ctx context.Context, id string) (string, error) {
	if s.unreachable {
		return "", ErrConnection
	}
	payload, ok := s.images[id]
	if !ok {
		return "", ErrNotFound
	}
	return payload, nil
}
