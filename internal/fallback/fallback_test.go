package fallback

import (
	"testing"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

func TestItems(t *testing.T) {
	items := Items()
	if len(items) == 0 {
		t.Fatal("expected bundled items")
	}
	for _, item := range items {
		if item.ID == "" || item.Name == "" {
			t.Errorf("bundled item missing id or name: %+v", item)
		}
		// Bundled statuses must agree with the derivation rule.
		want := item.Stock
		want.DeriveStatus()
		if item.Stock.Status != want.Status {
			t.Errorf("item %s: bundled status %q disagrees with derived %q",
				item.ID, item.Stock.Status, want.Status)
		}
	}
}

func TestCharacters(t *testing.T) {
	chars := Characters()
	if len(chars) == 0 {
		t.Fatal("expected bundled characters")
	}
	for _, c := range chars {
		if c.ID == "" || c.Name == "" {
			t.Errorf("bundled character missing id or name: %+v", c)
		}
	}
}

func TestAllItemsIncludesCharacters(t *testing.T) {
	all := AllItems()
	if len(all) != len(Items())+len(Characters()) {
		t.Fatalf("expected %d items, got %d", len(Items())+len(Characters()), len(all))
	}

	chars := 0
	for _, item := range all {
		if item.Category == model.CategoryCharacters {
			chars++
		}
	}
	if chars != len(Characters()) {
		t.Errorf("expected %d character items, got %d", len(Characters()), chars)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	a := Items()
	a[0].Name = "mutated"
	b := Items()
	if b[0].Name == "mutated" {
		t.Error("Items must return a copy, not shared backing data")
	}
}
