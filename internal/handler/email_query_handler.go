package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
)

type EmailLogReader interface {
	FindByID(ctx context.Context, projectID, id string) (*model.EmailLog, error)
	ListEvents(ctx context.Context, emailLogID string) ([]model.EmailLogEvent, error)
}

type EmailQueryHandler struct {
	logs EmailLogReader
}

func NewEmailQueryHandler(logs EmailLogReader) *EmailQueryHandler {
	return &EmailQueryHandler{
		logs: logs,
	}
}

type emailLogEventView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type emailLogView struct {
	ID        string              `json:"id"`
	MessageID *string             `json:"messageId"`
	From      string              `json:"from"`
	To        string              `json:"to"`
	ReplyTo   *string             `json:"replyTo,omitempty"`
	Subject   string              `json:"subject"`
	Text      *string             `json:"text"`
	HTML      *string             `json:"html"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	Events    []emailLogEventView `json:"events"`
}

// GetEmail handles GET /api/v1/emails/:id. Logs are scoped to the
// API key's project; anything else is a 404.
func (h *EmailQueryHandler) GetEmail(c *gin.Context) {
	key := c.MustGet(ContextAPIKey).(*model.APIKey)
	id := c.Param("id")

	log, err := h.logs.FindByID(c.Request.Context(), key.ProjectID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			Error(c, apierr.NotFound("Email not found"))
			return
		}
		Error(c, err)
		return
	}

	events, err := h.logs.ListEvents(c.Request.Context(), log.ID)
	if err != nil {
		Error(c, err)
		return
	}

	view := emailLogView{
		ID:        log.ID,
		MessageID: log.MessageID,
		From:      log.From,
		To:        log.To,
		ReplyTo:   log.ReplyTo,
		Subject:   log.Subject,
		Text:      log.Text,
		HTML:      log.HTML,
		Status:    string(log.Status),
		CreatedAt: log.CreatedAt,
		Events:    make([]emailLogEventView, 0, len(events)),
	}
	for _, e := range events {
		view.Events = append(view.Events, emailLogEventView{
			ID:        e.ID,
			Email:     e.Email,
			Type:      string(e.Type),
			Timestamp: e.Timestamp,
		})
	}

	ok(c, view)
}
