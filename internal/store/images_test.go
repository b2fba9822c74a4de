package store

import (
	"context"
	"testing"

	"github.com/disenocorptpc-dot/wonderwoods/internal/db"
)

func TestSaveAndGetImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	payload := "data:image/jpeg;base64,AAAA"
	if err := SaveImage(ctx, database, "item-1", payload); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	blob, err := GetImage(ctx, database, "item-1")
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if blob == nil {
		t.Fatal("expected blob")
	}
	if blob.Content != payload {
		t.Errorf("payload mismatch: %q", blob.Content)
	}
	if blob.Uploaded.IsZero() {
		t.Error("expected uploaded timestamp")
	}
}

func TestSaveImageOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveImage(ctx, database, "item-1", "old")
	if err := SaveImage(ctx, database, "item-1", "new"); err != nil {
		t.Fatalf("SaveImage (overwrite): %v", err)
	}

	blob, _ := GetImage(ctx, database, "item-1")
	if blob.Content != "new" {
		t.Errorf("expected overwrite, got %q", blob.Content)
	}
}

func TestGetImageMiss(t *testing.T) {
	database := db.NewTestDB(t)

	blob, err := GetImage(context.Background(), database, "nope")
	if err != nil {
		t.Fatalf("GetImage miss must not error: %v", err)
	}
	if blob != nil {
		t.Errorf("expected nil blob, got %+v", blob)
	}
}

func TestDeleteImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveImage(ctx, database, "item-1", "payload")
	if err := DeleteImage(ctx, database, "item-1"); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if blob, _ := GetImage(ctx, database, "item-1"); blob != nil {
		t.Error("expected blob gone after delete")
	}

	// Deleting a missing id is a no-op.
	if err := DeleteImage(ctx, database, "item-1"); err != nil {
		t.Errorf("DeleteImage (missing): %v", err)
	}
}
