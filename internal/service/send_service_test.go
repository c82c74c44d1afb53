package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
	"mailrelay/internal/provider"
)

type stubProjectStore struct {
	project *model.Project
	err     error
}

func (s *stubProjectStore) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}

type stubIdentityStore struct {
	identity *model.ProjectIdentity
	err      error

	lookups int
}

func (s *stubIdentityStore) FindByProjectAndDomain(ctx context.Context, projectID, domain string) (*model.ProjectIdentity, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type stubLogStore struct {
	logs   []*model.EmailLog
	events []*model.EmailLogEvent

	insertLogErr error
}

func (s *stubLogStore) InsertLog(ctx context.Context, l *model.EmailLog) error {
	if s.insertLogErr != nil {
		return s.insertLogErr
	}
	s.logs = append(s.logs, l)
	return nil
}

func (s *stubLogStore) InsertEvent(ctx context.Context, e *model.EmailLogEvent) error {
	s.events = append(s.events, e)
	return nil
}

type stubSender struct {
	result *provider.SendResult
	err    error

	lastMsg   *provider.Message
	lastCreds provider.Credentials
	calls     int
}

func (s *stubSender) Send(ctx context.Context, creds provider.Credentials, msg *provider.Message) (*provider.SendResult, error) {
	s.calls++
	s.lastMsg = msg
	s.lastCreds = creds
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func configSet(name string) *string {
	return &name
}

func verifiedIdentity() *model.ProjectIdentity {
	return &model.ProjectIdentity{
		ID:                   "idn_1",
		ProjectID:            "prj_1",
		Domain:               "mly.fyi",
		Status:               model.IdentityStatusSuccess,
		ConfigurationSetName: configSet("tracking-mly-fyi"),
	}
}

func testProject() *model.Project {
	return &model.Project{
		ID:              "prj_1",
		Name:            "test",
		AccessKeyID:     "AKIA123",
		SecretAccessKey: "secret",
		Region:          "eu-west-1",
	}
}

func testKey() *model.APIKey {
	return &model.APIKey{ID: "key_1", ProjectID: "prj_1"}
}

func textInput() *SendInput {
	text := "Hello World"
	html := "<p>Hello World</p>"
	return &SendInput{
		From:    "hello@mly.fyi",
		To:      "a@b.com",
		Subject: "Hello",
		Text:    &text,
		HTML:    &html,
		Headers: map[string]string{},
	}
}

func newTestService(projects *stubProjectStore, identities *stubIdentityStore, logs *stubLogStore, sender *stubSender) *SendService {
	return NewSendService(projects, identities, logs, sender, zap.NewNop())
}

func assertKind(t *testing.T, err error, kind apierr.Kind) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if ae.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, ae.Kind, ae.Message)
	}
}

func TestSendEmailSuccess(t *testing.T) {
	logs := &stubLogStore{}
	sender := &stubSender{result: &provider.SendResult{MessageID: "msg-123"}}
	svc := newTestService(
		&stubProjectStore{project: testProject()},
		&stubIdentityStore{identity: verifiedIdentity()},
		logs,
		sender,
	)

	id, err := svc.SendEmail(context.Background(), testKey(), textInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty log id")
	}

	if len(logs.logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs.logs))
	}
	log := logs.logs[0]
	if log.Status != model.EmailLogStatusSending {
		t.Errorf("expected status sending, got %s", log.Status)
	}
	if log.MessageID == nil || *log.MessageID != "msg-123" {
		t.Errorf("expected provider message id on log row")
	}
	if log.ID != id {
		t.Errorf("returned id %s does not match log row id %s", id, log.ID)
	}

	if len(logs.events) != 1 {
		t.Fatalf("expected 1 event row, got %d", len(logs.events))
	}
	event := logs.events[0]
	if event.Type != model.EmailLogEventSending {
		t.Errorf("expected event type sending, got %s", event.Type)
	}
	if event.EmailLogID != log.ID {
		t.Errorf("event references %s, want %s", event.EmailLogID, log.ID)
	}
	if event.Email != "a@b.com" {
		t.Errorf("event recipient %s, want a@b.com", event.Email)
	}
}

func TestSendEmailInjectsConfigurationSetHeader(t *testing.T) {
	sender := &stubSender{result: &provider.SendResult{MessageID: "msg-123"}}
	svc := newTestService(
		&stubProjectStore{project: testProject()},
		&stubIdentityStore{identity: verifiedIdentity()},
		&stubLogStore{},
		sender,
	)

	in := textInput()
	in.Headers = map[string]string{"X-Custom": "1"}

	if _, err := svc.SendEmail(context.Background(), testKey(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sender.lastMsg.Headers["X-SES-CONFIGURATION-SET"]; got != "tracking-mly-fyi" {
		t.Errorf("configuration set header %q, want tracking-mly-fyi", got)
	}
	if got := sender.lastMsg.Headers["X-Custom"]; got != "1" {
		t.Errorf("custom header lost: %q", got)
	}
	// Caller's map must not be mutated.
	if _, exists := in.Headers["X-SES-CONFIGURATION-SET"]; exists {
		t.Error("input headers were mutated")
	}

	if sender.lastCreds.AccessKeyID != "AKIA123" {
		t.Errorf("expected project credentials to reach the sender")
	}
}

func TestSendEmailProviderFailure(t *testing.T) {
	logs := &stubLogStore{}
	sender := &stubSender{err: &provider.SendError{Message: "MessageRejected: address suppressed"}}
	svc := newTestService(
		&stubProjectStore{project: testProject()},
		&stubIdentityStore{identity: verifiedIdentity()},
		logs,
		sender,
	)

	_, err := svc.SendEmail(context.Background(), testKey(), textInput())
	assertKind(t, err, apierr.KindBadRequest)

	var ae *apierr.Error
	errors.As(err, &ae)
	if ae.Message != "MessageRejected: address suppressed" {
		t.Errorf("expected provider message surfaced, got %q", ae.Message)
	}

	if len(logs.logs) != 1 || logs.logs[0].Status != model.EmailLogStatusError {
		t.Fatalf("expected exactly one error log row, got %+v", logs.logs)
	}
	if logs.logs[0].MessageID != nil {
		t.Error("failed send must not carry a provider message id")
	}
	if len(logs.events) != 1 || logs.events[0].Type != model.EmailLogEventError {
		t.Fatalf("expected exactly one error event, got %+v", logs.events)
	}
}

func TestSendEmailProjectGone(t *testing.T) {
	logs := &stubLogStore{}
	svc := newTestService(
		&stubProjectStore{err: pgx.ErrNoRows},
		&stubIdentityStore{identity: verifiedIdentity()},
		logs,
		&stubSender{},
	)

	_, err := svc.SendEmail(context.Background(), testKey(), textInput())
	assertKind(t, err, apierr.KindNotFound)
	if len(logs.logs) != 0 {
		t.Error("no log rows expected")
	}
}

func TestSendEmailMultipleRecipients(t *testing.T) {
	identities := &stubIdentityStore{identity: verifiedIdentity()}
	sender := &stubSender{}
	svc := newTestService(&stubProjectStore{project: testProject()}, identities, &stubLogStore{}, sender)

	in := textInput()
	in.ToMany = true

	_, err := svc.SendEmail(context.Background(), testKey(), in)
	assertKind(t, err, apierr.KindBadRequest)

	var ae *apierr.Error
	errors.As(err, &ae)
	if ae.Message != "Multiple recipients are not supported" {
		t.Errorf("unexpected message %q", ae.Message)
	}
	if identities.lookups != 0 {
		t.Error("identity lookup must not happen for multi-recipient requests")
	}
	if sender.calls != 0 {
		t.Error("sender must not be called")
	}
}

func TestSendEmailRejections(t *testing.T) {
	unverified := verifiedIdentity()
	unverified.Status = model.IdentityStatusPending

	noConfigSet := verifiedIdentity()
	noConfigSet.ConfigurationSetName = nil

	noCreds := testProject()
	noCreds.SecretAccessKey = ""

	tests := []struct {
		name     string
		projects *stubProjectStore
		ids      *stubIdentityStore
		wantKind apierr.Kind
	}{
		{
			name:     "unknown domain",
			projects: &stubProjectStore{project: testProject()},
			ids:      &stubIdentityStore{err: pgx.ErrNoRows},
			wantKind: apierr.KindNotFound,
		},
		{
			name:     "identity not verified",
			projects: &stubProjectStore{project: testProject()},
			ids:      &stubIdentityStore{identity: unverified},
			wantKind: apierr.KindBadRequest,
		},
		{
			name:     "missing configuration set",
			projects: &stubProjectStore{project: testProject()},
			ids:      &stubIdentityStore{identity: noConfigSet},
			wantKind: apierr.KindBadRequest,
		},
		{
			name:     "missing credentials",
			projects: &stubProjectStore{project: noCreds},
			ids:      &stubIdentityStore{identity: verifiedIdentity()},
			wantKind: apierr.KindBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &stubLogStore{}
			sender := &stubSender{}
			svc := newTestService(tt.projects, tt.ids, logs, sender)

			_, err := svc.SendEmail(context.Background(), testKey(), textInput())
			assertKind(t, err, tt.wantKind)

			if len(logs.logs) != 0 || len(logs.events) != 0 {
				t.Error("rejected sends must not write log rows")
			}
			if sender.calls != 0 {
				t.Error("rejected sends must not dispatch")
			}
		})
	}
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"hello@mly.fyi", "mly.fyi"},
		{"no-at-sign", ""},
		// Naive split: everything between the first and second @.
		{"a@b@c", "b"},
	}

	for _, tt := range tests {
		if got := senderDomain(tt.from); got != tt.want {
			t.Errorf("senderDomain(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}
