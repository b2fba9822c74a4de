package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// SaveImage upserts one image payload keyed by item id, silently
// overwriting any previous payload for that id.
func SaveImage(ctx context.Context, db *sql.DB, id, content string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO images (id, content) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET content = excluded.content, uploaded_at = CURRENT_TIMESTAMP`,
		id, content,
	)
	if err != nil {
		return fmt.Errorf("saving image %s: %w", id, err)
	}
	return nil
}

// GetImage returns the stored image blob, or nil when no image exists
// for the id. A miss is not an error.
func GetImage(ctx context.Context, db *sql.DB, id string) (*model.ImageBlob, error) {
	blob := &model.ImageBlob{ID: id}
	err := db.QueryRowContext(ctx,
		`SELECT content, uploaded_at FROM images WHERE id = ?`, id,
	).Scan(&blob.Content, &blob.Uploaded)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", id, err)
	}
	return blob, nil
}

// DeleteImage removes the blob for an id. Deleting a missing id is a
// no-op.
func DeleteImage(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", id, err)
	}
	return nil
}
