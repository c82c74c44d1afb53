package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailrelay/internal/model"
)

type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// FindByProjectAndDomain resolves a sending domain to the project's
// identity row.
func (r *IdentityRepository) FindByProjectAndDomain(ctx context.Context, projectID, domain string) (*model.ProjectIdentity, error) {
	query := `
        SELECT id, project_id, domain, status, configuration_set_name, created_at, updated_at
        FROM project_identities
        WHERE project_id = $1 AND domain = $2
    `
	var pi model.ProjectIdentity
	err := r.db.QueryRow(ctx, query, projectID, domain).Scan(
		&pi.ID,
		&pi.ProjectID,
		&pi.Domain,
		&pi.Status,
		&pi.ConfigurationSetName,
		&pi.CreatedAt,
		&pi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pi, nil
}
