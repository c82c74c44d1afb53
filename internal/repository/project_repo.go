package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailrelay/internal/model"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID returns the project backing an API key.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, name, access_key_id, secret_access_key, region, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.AccessKeyID,
		&p.SecretAccessKey,
		&p.Region,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
