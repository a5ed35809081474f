package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// JWTSecret returns the persisted signing secret, generating and
// storing one on first run so tokens survive restarts.
func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	var secret string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err == nil {
		return secret, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("reading jwt secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	secret = hex.EncodeToString(buf)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, value) VALUES ('jwt_secret', ?)`, secret,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}
	return secret, nil
}
