package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

func TestCreateThenList(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Item{ID: "x1", Name: "Woodrow Bowl"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "x1" {
		t.Errorf("expected id preserved, got %q", created.ID)
	}

	items := repo.List(ctx)
	count := 0
	for _, i := range items {
		if i.ID == "x1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected created item exactly once, found %d times", count)
	}
}

func TestCreateGeneratesID(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)

	created, err := repo.Create(context.Background(), model.Item{Name: "No ID"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
}

func TestCreateDuplicateID(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "First"})
	_, err := repo.Create(ctx, model.Item{ID: "x1", Name: "Second"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	if len(repo.List(ctx)) != 1 {
		t.Error("duplicate create must not change the collection")
	}
}

func TestTwoCreatesBothPresent(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "a", Name: "A"})
	repo.Create(ctx, model.Item{ID: "b", Name: "B"})

	items := repo.List(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	ids := map[string]bool{}
	for _, i := range items {
		ids[i.ID] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Errorf("expected both ids present, got %v", ids)
	}
}

func TestCreateDerivesStockStatus(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)

	created, _ := repo.Create(context.Background(), model.Item{
		ID:    "x1",
		Name:  "Bowl",
		Stock: model.Stock{Current: 3, MinLevel: 5, Status: "hand-edited nonsense"},
	})
	if created.Stock.Status != model.StockStatusLow {
		t.Errorf("expected %q, got %q", model.StockStatusLow, created.Stock.Status)
	}
}

func TestUpdateRecomputesStockStatus(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	item, _ := repo.Create(ctx, model.Item{
		ID:    "x1",
		Name:  "Bowl",
		Stock: model.Stock{Current: 3, MinLevel: 5},
	})
	if item.Stock.Status != model.StockStatusLow {
		t.Fatalf("precondition: expected low stock, got %q", item.Stock.Status)
	}

	item.Stock.Current = 10
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.Get(ctx, "x1")
	if got.Stock.Status != model.StockStatusOK {
		t.Errorf("expected %q after restock, got %q", model.StockStatusOK, got.Stock.Status)
	}
}

func TestUpdateMissingID(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)

	err := repo.Update(context.Background(), model.Item{ID: "ghost", Name: "Ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateIsVerbatimReplace(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl", Comments: "legacy"})

	// The caller didn't carry the comment over; the repository must
	// not merge it back.
	repo.Update(ctx, model.Item{ID: "x1", Name: "Bowl v2"})

	got, _ := repo.Get(ctx, "x1")
	if got.Comments != "" {
		t.Errorf("expected verbatim replace to drop untouched fields, got comments %q", got.Comments)
	}
	if got.Name != "Bowl v2" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})

	// Simulate another client writing behind our back.
	store.revision++

	if err := repo.Update(ctx, model.Item{ID: "x1", Name: "Bowl v2"}); err != nil {
		t.Fatalf("Update with conflict retry: %v", err)
	}
	if store.replaceCalls != 2 {
		t.Errorf("expected one retry (2 replace calls), got %d", store.replaceCalls)
	}
	got, _ := repo.Get(ctx, "x1")
	if got.Name != "Bowl v2" {
		t.Errorf("expected retried update to win, got %q", got.Name)
	}
}

func TestDelete(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})
	repo.Create(ctx, model.Item{ID: "x2", Name: "Plate"})

	if err := repo.Delete(ctx, "x1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, i := range repo.List(ctx) {
		if i.ID == "x1" {
			t.Error("deleted id still present")
		}
	}
	if len(repo.List(ctx)) != 1 {
		t.Errorf("expected 1 item left, got %d", len(repo.List(ctx)))
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})
	before := store.replaceCalls

	if err := repo.Delete(ctx, "ghost"); err != nil {
		t.Fatalf("Delete absent id must not error: %v", err)
	}
	if store.replaceCalls != before {
		t.Error("deleting an absent id must not write")
	}
	if len(repo.List(ctx)) != 1 {
		t.Error("collection changed by absent delete")
	}
}

func TestWriteErrorsSurface(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})
	store.failWrites = true

	if err := repo.Update(ctx, model.Item{ID: "x1", Name: "v2"}); err == nil {
		t.Error("expected update write failure to surface")
	}
	if err := repo.Delete(ctx, "x1"); err == nil {
		t.Error("expected delete write failure to surface")
	}

	// In-memory state must still match the last acknowledged write.
	got, _ := repo.Get(ctx, "x1")
	if got.Name != "Bowl" {
		t.Errorf("snapshot diverged from store after failed write: %q", got.Name)
	}
}

func TestAppendLog(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})

	if err := repo.AppendLog(ctx, "x1", "  Ana  ", "  chipped glaze  "); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}

	got, _ := repo.Get(ctx, "x1")
	if len(got.Logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(got.Logs))
	}
	if got.Logs[0].Author != "Ana" || got.Logs[0].Text != "chipped glaze" {
		t.Errorf("expected trimmed fields, got %+v", got.Logs[0])
	}
	if got.Logs[0].Date.IsZero() {
		t.Error("expected log date set")
	}
}

func TestAppendLogValidation(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl"})
	writes := store.replaceCalls

	if err := repo.AppendLog(ctx, "x1", "", "text"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty author, got %v", err)
	}
	if err := repo.AppendLog(ctx, "x1", "Ana", "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for blank text, got %v", err)
	}
	if store.replaceCalls != writes {
		t.Error("validation failures must not reach the store")
	}
}

func TestAttachImage(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "x1", Name: "Bowl", Image: "https://old.example/img.jpg"})

	payload := "data:image/jpeg;base64,AAAA"
	if err := repo.AttachImage(ctx, "x1", payload); err != nil {
		t.Fatalf("AttachImage: %v", err)
	}

	got, _ := repo.Get(ctx, "x1")
	if got.Image != model.StoredImageRef("x1") {
		t.Errorf("expected pointer image field, got %q", got.Image)
	}
	if store.images["x1"] != payload {
		t.Errorf("expected payload stored, got %q", store.images["x1"])
	}
}

func TestFallbackMode(t *testing.T) {
	fallback := []model.Item{{ID: "f1", Name: "Bundled Bowl"}}
	store := newFakeStore()
	store.unreachable = true
	repo := NewRepository(store, fallback)
	ctx := context.Background()

	err := repo.Initialize(ctx)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if !repo.FallbackMode() {
		t.Fatal("expected fallback mode")
	}

	// Reads serve the bundled dataset.
	items := repo.List(ctx)
	if len(items) != 1 || items[0].ID != "f1" {
		t.Errorf("expected fallback items, got %+v", items)
	}

	// Writes fail loud instead of pretending to persist.
	if _, err := repo.Create(ctx, model.Item{ID: "new"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly for create, got %v", err)
	}
	if err := repo.Delete(ctx, "f1"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly for delete, got %v", err)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("Initialize (second): %v", err)
	}
}

func TestPartition(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "a", Name: "Bowl", Category: "Fun Dishes"})
	repo.Create(ctx, model.Item{ID: "b", Name: "Woodrow", Category: model.CategoryCharacters})

	if got := repo.CatalogItems(ctx); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unexpected catalog partition: %+v", got)
	}
	if got := repo.CharacterItems(ctx); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("unexpected character partition: %+v", got)
	}
}

func TestSearch(t *testing.T) {
	repo := NewRepository(newFakeStore(), nil)
	ctx := context.Background()

	repo.Create(ctx, model.Item{ID: "a", Name: "Enchanted Mushroom Platter"})
	repo.Create(ctx, model.Item{ID: "b", Name: "Tree Stump Bowl"})

	got := repo.Search(ctx, "MUSHROOM")
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unexpected search result: %+v", got)
	}
}
