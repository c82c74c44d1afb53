package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailrelay/internal/model"
	"mailrelay/internal/provider"
	"mailrelay/internal/service"
)

type passProjects struct{}

func (passProjects) FindByID(ctx context.Context, id string) (*model.Project, error) {
	return &model.Project{ID: id, AccessKeyID: "AKIA", SecretAccessKey: "s", Region: "eu-west-1"}, nil
}

type passIdentities struct{}

func (passIdentities) FindByProjectAndDomain(ctx context.Context, projectID, domain string) (*model.ProjectIdentity, error) {
	cs := "tracking"
	return &model.ProjectIdentity{ProjectID: projectID, Domain: domain, Status: model.IdentityStatusSuccess, ConfigurationSetName: &cs}, nil
}

type captureLogs struct {
	logs   int
	events int
}

func (c *captureLogs) InsertLog(ctx context.Context, l *model.EmailLog) error {
	c.logs++
	return nil
}

func (c *captureLogs) InsertEvent(ctx context.Context, e *model.EmailLogEvent) error {
	c.events++
	return nil
}

type okSender struct{}

func (okSender) Send(ctx context.Context, creds provider.Credentials, msg *provider.Message) (*provider.SendResult, error) {
	return &provider.SendResult{MessageID: "msg-1"}, nil
}

func newSendRouter(logs *captureLogs) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewSendService(passProjects{}, passIdentities{}, logs, okSender{}, zap.NewNop())
	h := NewSendHandler(svc)

	r := gin.New()
	r.POST("/api/v1/emails/send", func(c *gin.Context) {
		c.Set(ContextAPIKey, &model.APIKey{ID: "key_1", ProjectID: "prj_1"})
	}, h.SendEmail)
	return r
}

func postSend(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emails/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendEmailEndpoint(t *testing.T) {
	logs := &captureLogs{}
	r := newSendRouter(logs)

	w := postSend(t, r, `{
		"from": "hello@mly.fyi",
		"to": "A@B.com",
		"subject": "Hello",
		"text": "Hello World",
		"html": "<p>Hello World</p>"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":"log_`) {
		t.Errorf("expected a log id in response, got %s", w.Body.String())
	}
	if logs.logs != 1 || logs.events != 1 {
		t.Errorf("expected one log and one event, got %d/%d", logs.logs, logs.events)
	}
}

func TestSendEmailValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing from",
			body: `{"to":"a@b.com","subject":"Hi","text":"x"}`,
			want: "from",
		},
		{
			name: "missing to",
			body: `{"from":"hello@mly.fyi","subject":"Hi","text":"x"}`,
			want: "to",
		},
		{
			name: "bad to format",
			body: `{"from":"hello@mly.fyi","to":"not-an-email","subject":"Hi","text":"x"}`,
			want: "valid email",
		},
		{
			name: "bad replyTo format",
			body: `{"from":"hello@mly.fyi","to":"a@b.com","replyTo":"nope","subject":"Hi","text":"x"}`,
			want: "replyTo",
		},
		{
			name: "missing subject",
			body: `{"from":"hello@mly.fyi","to":"a@b.com","text":"x"}`,
			want: "subject",
		},
		{
			name: "neither text nor html",
			body: `{"from":"hello@mly.fyi","to":"a@b.com","subject":"Hi"}`,
			want: "text or html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &captureLogs{}
			r := newSendRouter(logs)

			w := postSend(t, r, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d, body %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "validation_error") {
				t.Errorf("expected validation_error, got %s", w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("expected message about %q, got %s", tt.want, w.Body.String())
			}
			if logs.logs != 0 || logs.events != 0 {
				t.Error("validation failures must not write log rows")
			}
		})
	}
}

func TestSendEmailEmptyBodyCountsAsPresent(t *testing.T) {
	logs := &captureLogs{}
	r := newSendRouter(logs)

	w := postSend(t, r, `{"from":"hello@mly.fyi","to":"a@b.com","subject":"Hi","text":""}`)
	if w.Code != http.StatusOK {
		t.Fatalf("empty text should satisfy the body requirement, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSendEmailRecipientArrayRejected(t *testing.T) {
	logs := &captureLogs{}
	r := newSendRouter(logs)

	w := postSend(t, r, `{"from":"hello@mly.fyi","to":["a@b.com","c@d.com"],"subject":"Hi","text":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Multiple recipients are not supported") {
		t.Errorf("expected the multi-recipient message, got %s", w.Body.String())
	}
	if logs.logs != 0 {
		t.Error("no log rows expected")
	}
}

func TestSendEmailToLowercased(t *testing.T) {
	in, err := buildSendInput(&sendEmailRequest{
		From:    " hello@mly.fyi ",
		To:      recipient{value: " A@B.COM ", present: true},
		Subject: " Hello ",
		Text:    strPtr("x"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.To != "a@b.com" {
		t.Errorf("to not lower-cased: %q", in.To)
	}
	if in.From != "hello@mly.fyi" || in.Subject != "Hello" {
		t.Errorf("fields not trimmed: %q %q", in.From, in.Subject)
	}
	if in.Headers == nil || len(in.Headers) != 0 {
		t.Errorf("headers must default to empty, got %v", in.Headers)
	}
}

func strPtr(s string) *string { return &s }
