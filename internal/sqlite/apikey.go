package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// APIKeyStore resolves API keys to branch IDs for the transport auth
// middleware. Keys are stored hashed.
type APIKeyStore struct {
	db *DB
}

// NewAPIKeyStore creates a new APIKeyStore
func NewAPIKeyStore(db *DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// ResolveBranch returns the branch for a raw API key.
func (s *APIKeyStore) ResolveBranch(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)

	var branchID string
	err := s.db.QueryRowContext(ctx,
		`SELECT branch_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&branchID)
	if err == sql.ErrNoRows || branchID == "" {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	// Best effort; key resolution must not fail on bookkeeping.
	_, _ = s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash)

	return branchID, nil
}

// Insert registers a raw API key for a branch.
func (s *APIKeyStore) Insert(ctx context.Context, token, branchID, description string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, branch_id, description) VALUES (?, ?, ?)
	`, hashToken(token), branchID, description)
	if err != nil {
		return fmt.Errorf("failed to insert api key: %w", translateConstraint(err))
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
