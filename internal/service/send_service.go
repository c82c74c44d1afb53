package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
	"mailrelay/internal/provider"
	"mailrelay/internal/util"
	"mailrelay/pkg/metrics"
)

// configurationSetHeader tags outbound mail so the provider reports
// delivery events for it.
const configurationSetHeader = "X-SES-CONFIGURATION-SET"

type ProjectStore interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
}

type IdentityStore interface {
	FindByProjectAndDomain(ctx context.Context, projectID, domain string) (*model.ProjectIdentity, error)
}

type EmailLogStore interface {
	InsertLog(ctx context.Context, l *model.EmailLog) error
	InsertEvent(ctx context.Context, e *model.EmailLogEvent) error
}

// SendInput is a validated send request. ToMany/ReplyToMany flag that
// the request body carried an array where a single address belongs;
// the schema tolerates arrays, the business rule here does not.
type SendInput struct {
	From        string
	To          string
	ToMany      bool
	ReplyTo     string
	ReplyToMany bool
	Subject     string
	Text        *string
	HTML        *string
	Headers     map[string]string
}

type SendService struct {
	projects   ProjectStore
	identities IdentityStore
	logs       EmailLogStore
	sender     provider.Sender
	logger     *zap.Logger
}

func NewSendService(
	projects ProjectStore,
	identities IdentityStore,
	logs EmailLogStore,
	sender provider.Sender,
	logger *zap.Logger,
) *SendService {
	return &SendService{
		projects:   projects,
		identities: identities,
		logs:       logs,
		sender:     sender,
		logger:     logger,
	}
}

// SendEmail runs the validate-authorize-dispatch-log pipeline for one
// outbound email and returns the generated log id.
func (s *SendService) SendEmail(ctx context.Context, key *model.APIKey, in *SendInput) (string, error) {
	project, err := s.projects.FindByID(ctx, key.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apierr.NotFound("Project not found")
		}
		return "", fmt.Errorf("failed to load project: %w", err)
	}

	if in.ToMany || in.ReplyToMany {
		metrics.RecordEmailSend("rejected")
		return "", apierr.BadRequest("Multiple recipients are not supported")
	}

	identity, err := s.identities.FindByProjectAndDomain(ctx, project.ID, senderDomain(in.From))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.RecordEmailSend("rejected")
			return "", apierr.NotFound("Sending domain is not registered for this project")
		}
		return "", fmt.Errorf("failed to load identity: %w", err)
	}

	if identity.Status != model.IdentityStatusSuccess {
		metrics.RecordEmailSend("rejected")
		return "", apierr.BadRequest(fmt.Sprintf("Domain %s is not verified yet", identity.Domain))
	}
	if identity.ConfigurationSetName == nil {
		metrics.RecordEmailSend("rejected")
		return "", apierr.BadRequest(fmt.Sprintf("Domain %s has no configuration set", identity.Domain))
	}

	if !project.HasCredentials() {
		metrics.RecordEmailSend("rejected")
		return "", apierr.BadRequest("Project has no sending credentials configured")
	}

	headers := make(map[string]string, len(in.Headers)+1)
	for k, v := range in.Headers {
		headers[k] = v
	}
	headers[configurationSetHeader] = *identity.ConfigurationSetName

	msg := &provider.Message{
		From:    in.From,
		To:      in.To,
		ReplyTo: in.ReplyTo,
		Subject: in.Subject,
		Text:    in.Text,
		HTML:    in.HTML,
		Headers: headers,
	}

	creds := provider.Credentials{
		AccessKeyID:     project.AccessKeyID,
		SecretAccessKey: project.SecretAccessKey,
		Region:          project.Region,
	}

	start := time.Now()
	result, sendErr := s.sender.Send(ctx, creds, msg)
	if sendErr != nil {
		metrics.RecordProviderDispatch("error", time.Since(start))
		return "", s.recordFailure(ctx, key, in, sendErr)
	}
	metrics.RecordProviderDispatch("success", time.Since(start))

	logID, err := s.recordSuccess(ctx, key, in, result.MessageID)
	if err != nil {
		return "", err
	}

	s.logger.Info("email dispatched",
		zap.String("log_id", logID),
		zap.String("project_id", project.ID),
		zap.String("message_id", result.MessageID),
	)

	return logID, nil
}

// recordFailure persists the error log+event pair, then surfaces the
// provider's message as a bad request.
func (s *SendService) recordFailure(ctx context.Context, key *model.APIKey, in *SendInput, sendErr error) error {
	message := sendErr.Error()
	var perr *provider.SendError
	if errors.As(sendErr, &perr) {
		message = perr.Message
	}

	s.logger.Warn("provider dispatch failed",
		zap.String("project_id", key.ProjectID),
		zap.String("to", in.To),
		zap.String("provider_error", message),
	)

	if err := s.writeLogAndEvent(ctx, key, in, nil, model.EmailLogStatusError, model.EmailLogEventError); err != nil {
		return err
	}

	metrics.RecordEmailSend("error")
	return apierr.BadRequest(message)
}

func (s *SendService) recordSuccess(ctx context.Context, key *model.APIKey, in *SendInput, messageID string) (string, error) {
	logID, err := s.writeLogAndEventID(ctx, key, in, &messageID, model.EmailLogStatusSending, model.EmailLogEventSending)
	if err != nil {
		return "", err
	}

	metrics.RecordEmailSend("sending")
	return logID, nil
}

func (s *SendService) writeLogAndEvent(ctx context.Context, key *model.APIKey, in *SendInput, messageID *string, status model.EmailLogStatus, eventType model.EmailLogEventType) error {
	_, err := s.writeLogAndEventID(ctx, key, in, messageID, status, eventType)
	return err
}

// writeLogAndEventID inserts the log row, then its first event. The
// two inserts are not wrapped in a transaction; a crash in between
// leaves a log with no event, which downstream readers tolerate.
func (s *SendService) writeLogAndEventID(ctx context.Context, key *model.APIKey, in *SendInput, messageID *string, status model.EmailLogStatus, eventType model.EmailLogEventType) (string, error) {
	log := &model.EmailLog{
		ID:        util.NewID("log"),
		MessageID: messageID,
		ProjectID: key.ProjectID,
		APIKeyID:  key.ID,
		From:      in.From,
		To:        in.To,
		Subject:   in.Subject,
		Text:      in.Text,
		HTML:      in.HTML,
		Status:    status,
	}
	if in.ReplyTo != "" {
		log.ReplyTo = &in.ReplyTo
	}

	if err := s.logs.InsertLog(ctx, log); err != nil {
		return "", fmt.Errorf("failed to insert email log: %w", err)
	}

	event := &model.EmailLogEvent{
		ID:         util.NewID("evt"),
		EmailLogID: log.ID,
		Email:      in.To,
		Type:       eventType,
		Timestamp:  time.Now(),
	}
	if err := s.logs.InsertEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to insert email log event: %w", err)
	}

	return log.ID, nil
}

// senderDomain takes whatever follows the first "@". Display-name or
// multi-@ from addresses are not normalized; an unresolvable result
// simply misses the identity lookup.
func senderDomain(from string) string {
	parts := strings.Split(from, "@")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
