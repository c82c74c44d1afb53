package model

import "time"

type EmailLogStatus string

const (
	EmailLogStatusSending EmailLogStatus = "sending"
	EmailLogStatusError   EmailLogStatus = "error"
	// Later lifecycle states (delivered, bounced, ...) are written by
	// provider callbacks outside this service.
)

// EmailLog is one row per send attempt, success or failure.
type EmailLog struct {
	ID        string
	MessageID *string
	ProjectID string
	APIKeyID  string
	From      string
	To        string
	ReplyTo   *string
	Subject   string
	Text      *string
	HTML      *string
	Status    EmailLogStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmailLogEventType string

const (
	EmailLogEventSending EmailLogEventType = "sending"
	EmailLogEventError   EmailLogEventType = "error"
)

// EmailLogEvent is an append-only delivery lifecycle record. Every log
// gets at least one event, written right after the log row itself.
type EmailLogEvent struct {
	ID         string
	EmailLogID string
	Email      string
	Type       EmailLogEventType
	Timestamp  time.Time
}
