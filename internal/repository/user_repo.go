package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailrelay/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user row.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, is_enabled, auth_provider,
                           verification_code, verification_code_expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.IsEnabled,
		u.AuthProvider,
		u.VerificationCode,
		u.VerificationCodeExpiresAt,
	)
	return err
}

// FindByEmail returns the full user row for credential checks.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, is_enabled, auth_provider,
               verification_code, verification_code_expires_at,
               reset_code, reset_code_expires_at,
               verified_at, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsEnabled,
		&u.AuthProvider,
		&u.VerificationCode,
		&u.VerificationCodeExpiresAt,
		&u.ResetCode,
		&u.ResetCodeExpiresAt,
		&u.VerifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindAuthContextByID loads only the columns the session resolver
// needs: id, email, name.
func (r *UserRepository) FindAuthContextByID(ctx context.Context, id string) (*model.AuthContext, error) {
	query := `
        SELECT id, email, name
        FROM users
        WHERE id = $1
    `
	var ac model.AuthContext
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ac.ID,
		&ac.Email,
		&ac.Name,
	)
	if err != nil {
		return nil, err
	}
	return &ac, nil
}
