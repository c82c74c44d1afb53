package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailrelay/internal/model"
)

type APIKeyRepository struct {
	db *pgxpool.Pool
}

func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// FindByToken resolves a bearer token to its key record. Revoked keys
// are treated the same as unknown ones.
func (r *APIKeyRepository) FindByToken(ctx context.Context, token string) (*model.APIKey, error) {
	query := `
        SELECT id, project_id, name, token, is_revoked, created_at, last_used_at
        FROM api_keys
        WHERE token = $1 AND is_revoked = false
    `
	var k model.APIKey
	err := r.db.QueryRow(ctx, query, token).Scan(
		&k.ID,
		&k.ProjectID,
		&k.Name,
		&k.Token,
		&k.IsRevoked,
		&k.CreatedAt,
		&k.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// TouchLastUsed records key usage. Best effort, callers ignore the error.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	query := `
        UPDATE api_keys
        SET last_used_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id)
	return err
}
