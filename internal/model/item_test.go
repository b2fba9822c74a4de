package model

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	s := Stock{Current: 3, MinLevel: 5}
	s.DeriveStatus()
	if s.Status != StockStatusLow {
		t.Errorf("expected %q, got %q", StockStatusLow, s.Status)
	}

	s.Current = 10
	s.DeriveStatus()
	if s.Status != StockStatusOK {
		t.Errorf("expected %q, got %q", StockStatusOK, s.Status)
	}

	// Exactly at the threshold counts as in stock.
	s = Stock{Current: 5, MinLevel: 5}
	s.DeriveStatus()
	if s.Status != StockStatusOK {
		t.Errorf("expected %q at threshold, got %q", StockStatusOK, s.Status)
	}
}

func TestParseImageRef(t *testing.T) {
	ref := ParseImageRef("DB_IMAGE:abc123")
	if ref.Kind != ImageStored || ref.ID != "abc123" {
		t.Errorf("expected stored ref with id abc123, got %+v", ref)
	}

	ref = ParseImageRef("https://example.com/img.jpg")
	if ref.Kind != ImageLiteral || ref.URL != "https://example.com/img.jpg" {
		t.Errorf("expected literal ref, got %+v", ref)
	}

	ref = ParseImageRef("")
	if ref.Kind != ImageNone {
		t.Errorf("expected none for empty field, got %+v", ref)
	}
}

func TestStoredImageRefRoundTrip(t *testing.T) {
	ref := ParseImageRef(StoredImageRef("item-1"))
	if ref.Kind != ImageStored || ref.ID != "item-1" {
		t.Errorf("round trip failed: %+v", ref)
	}
}

func TestDisplayLogsSortedDescending(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := Item{
		Logs: []LogEntry{
			{Date: base, Author: "a", Text: "first"},
			{Date: base.Add(2 * time.Hour), Author: "b", Text: "third"},
			{Date: base.Add(time.Hour), Author: "c", Text: "second"},
		},
	}

	logs := item.DisplayLogs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}
	if logs[0].Text != "third" || logs[1].Text != "second" || logs[2].Text != "first" {
		t.Errorf("logs not sorted descending: %v", logs)
	}

	// Storage order must not change.
	if item.Logs[0].Text != "first" {
		t.Error("DisplayLogs mutated storage order")
	}
}

func TestDisplayLogsLegacyComment(t *testing.T) {
	item := Item{Comments: "Handle with care."}
	logs := item.DisplayLogs()
	if len(logs) != 1 || logs[0].Text != "Handle with care." {
		t.Errorf("expected legacy comment as single entry, got %v", logs)
	}

	// Once real logs exist the legacy comment is no longer surfaced.
	item.Logs = []LogEntry{{Date: time.Now(), Author: "a", Text: "real"}}
	logs = item.DisplayLogs()
	if len(logs) != 1 || logs[0].Text != "real" {
		t.Errorf("expected only real logs, got %v", logs)
	}
}

func TestNewItemIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewItemID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestCatalogFindItem(t *testing.T) {
	c := Catalog{Items: []Item{{ID: "a"}, {ID: "b"}}}
	if c.FindItem("b") != 1 {
		t.Error("expected index 1 for b")
	}
	if c.FindItem("missing") != -1 {
		t.Error("expected -1 for missing id")
	}
}
