package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailrelay/internal/model"
)

type EmailLogRepository struct {
	db *pgxpool.Pool
}

func NewEmailLogRepository(db *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// InsertLog writes one send-attempt row.
func (r *EmailLogRepository) InsertLog(ctx context.Context, l *model.EmailLog) error {
	query := `
        INSERT INTO email_logs (id, message_id, project_id, api_key_id,
                                "from", "to", reply_to, subject, text, html,
                                status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.MessageID,
		l.ProjectID,
		l.APIKeyID,
		l.From,
		l.To,
		l.ReplyTo,
		l.Subject,
		l.Text,
		l.HTML,
		l.Status,
	)
	return err
}

// InsertEvent appends a lifecycle event for a log row.
func (r *EmailLogRepository) InsertEvent(ctx context.Context, e *model.EmailLogEvent) error {
	query := `
        INSERT INTO email_log_events (id, email_log_id, email, type, timestamp)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.EmailLogID,
		e.Email,
		e.Type,
		e.Timestamp,
	)
	return err
}

// FindByID returns a log row scoped to a project.
func (r *EmailLogRepository) FindByID(ctx context.Context, projectID, id string) (*model.EmailLog, error) {
	query := `
        SELECT id, message_id, project_id, api_key_id,
               "from", "to", reply_to, subject, text, html,
               status, created_at, updated_at
        FROM email_logs
        WHERE project_id = $1 AND id = $2
    `
	var l model.EmailLog
	err := r.db.QueryRow(ctx, query, projectID, id).Scan(
		&l.ID,
		&l.MessageID,
		&l.ProjectID,
		&l.APIKeyID,
		&l.From,
		&l.To,
		&l.ReplyTo,
		&l.Subject,
		&l.Text,
		&l.HTML,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListEvents returns a log's events, oldest first.
func (r *EmailLogRepository) ListEvents(ctx context.Context, emailLogID string) ([]model.EmailLogEvent, error) {
	query := `
        SELECT id, email_log_id, email, type, timestamp
        FROM email_log_events
        WHERE email_log_id = $1
        ORDER BY timestamp ASC
    `
	rows, err := r.db.Query(ctx, query, emailLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.EmailLogEvent{}

	for rows.Next() {
		var e model.EmailLogEvent
		err := rows.Scan(
			&e.ID,
			&e.EmailLogID,
			&e.Email,
			&e.Type,
			&e.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
