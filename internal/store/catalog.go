package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// CatalogDocument is the fixed name of the aggregate document.
const CatalogDocument = "master_list"

var (
	// ErrNotFound is returned when the aggregate document is missing.
	ErrNotFound = errors.New("document not found")
	// ErrRevisionMismatch is returned by conditional replaces when the
	// caller's revision is stale.
	ErrRevisionMismatch = errors.New("document revision mismatch")
)

// EnsureCatalog creates the empty aggregate document if it does not
// exist yet. Safe to call concurrently; reports whether this call
// created it.
func EnsureCatalog(ctx context.Context, db *sql.DB) (bool, error) {
	content, err := json.Marshal(model.Catalog{
		Items:   []model.Item{},
		Created: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("encoding empty catalog: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (name, content) VALUES (?, ?)`,
		CatalogDocument, string(content),
	)
	if err != nil {
		return false, fmt.Errorf("creating catalog document: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking catalog creation: %w", err)
	}
	return n > 0, nil
}

// GetCatalog returns the aggregate document and its revision, or
// (nil, 0, nil) when it does not exist.
func GetCatalog(ctx context.Context, db *sql.DB) (*model.Catalog, int64, error) {
	var content string
	var revision int64
	err := db.QueryRowContext(ctx,
		`SELECT content, revision FROM documents WHERE name = ?`, CatalogDocument,
	).Scan(&content, &revision)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("getting catalog: %w", err)
	}

	var catalog model.Catalog
	if err := json.Unmarshal([]byte(content), &catalog); err != nil {
		return nil, 0, fmt.Errorf("decoding catalog: %w", err)
	}
	return &catalog, revision, nil
}

// AppendCatalogItem adds one item to the aggregate with union
// semantics: an element that is already present as a whole is not
// appended again. Equality covers the full object, not just the id,
// so two different edits of the same id both survive.
func AppendCatalogItem(ctx context.Context, db *sql.DB, item model.Item) error {
	newElem, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}

	return withCatalog(ctx, db, func(catalog *model.Catalog, _ int64) (bool, error) {
		for i := range catalog.Items {
			existing, err := json.Marshal(catalog.Items[i])
			if err != nil {
				return false, fmt.Errorf("encoding existing item: %w", err)
			}
			if bytes.Equal(existing, newElem) {
				return false, nil // already present, union is a no-op
			}
		}
		catalog.Items = append(catalog.Items, item)
		return true, nil
	})
}

// ReplaceCatalogItems overwrites the aggregate's item list. When
// expectedRevision is positive the replace only succeeds if it matches
// the stored revision; zero means an unconditional overwrite.
// Returns the new revision.
func ReplaceCatalogItems(ctx context.Context, db *sql.DB, items []model.Item, expectedRevision int64) (int64, error) {
	var newRev int64
	err := withCatalog(ctx, db, func(catalog *model.Catalog, rev int64) (bool, error) {
		if expectedRevision > 0 && expectedRevision != rev {
			return false, ErrRevisionMismatch
		}
		if items == nil {
			items = []model.Item{}
		}
		catalog.Items = items
		newRev = rev + 1
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return newRev, nil
}

// withCatalog runs fn against the current catalog inside a transaction
// and persists the result with an incremented revision when fn reports
// a change.
func withCatalog(ctx context.Context, db *sql.DB, fn func(*model.Catalog, int64) (bool, error)) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var content string
	var revision int64
	err = tx.QueryRowContext(ctx,
		`SELECT content, revision FROM documents WHERE name = ?`, CatalogDocument,
	).Scan(&content, &revision)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	var catalog model.Catalog
	if err := json.Unmarshal([]byte(content), &catalog); err != nil {
		return fmt.Errorf("decoding catalog: %w", err)
	}

	changed, err := fn(&catalog, revision)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	updated, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET content = ?, revision = revision + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE name = ?`,
		string(updated), CatalogDocument,
	)
	if err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}

	return tx.Commit()
}
