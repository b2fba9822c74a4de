package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// SetAccessKeyHash stores the bcrypt hash of the shared access key
// that gates session creation.
func SetAccessKeyHash(ctx context.Context, db *sql.DB, hash string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('access_key_hash', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		hash,
	)
	if err != nil {
		return fmt.Errorf("storing access_key_hash: %w", err)
	}
	return nil
}

// GetAccessKeyHash returns the stored access key hash, or "" when the
// server was initialized without one (open access).
func GetAccessKeyHash(ctx context.Context, db *sql.DB) (string, error) {
	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'access_key_hash'`,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying access_key_hash: %w", err)
	}
	return hash, nil
}
