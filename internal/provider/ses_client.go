package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SESClient talks to an SES-compatible outbound email API over HTTP.
type SESClient struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewSESClient(endpoint string, logger *zap.Logger) *SESClient {
	return &SESClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type sendEmailPayload struct {
	FromEmailAddress string            `json:"fromEmailAddress"`
	ToAddress        string            `json:"toAddress"`
	ReplyToAddress   string            `json:"replyToAddress,omitempty"`
	Subject          string            `json:"subject"`
	Text             *string           `json:"text,omitempty"`
	HTML             *string           `json:"html,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
}

type sendEmailResponse struct {
	MessageID string `json:"messageId"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Send implements Sender.
func (c *SESClient) Send(ctx context.Context, creds Credentials, msg *Message) (*SendResult, error) {
	url := fmt.Sprintf("%s/v2/email/outbound-emails", c.endpoint)

	payload := sendEmailPayload{
		FromEmailAddress: msg.From,
		ToAddress:        msg.To,
		ReplyToAddress:   msg.ReplyTo,
		Subject:          msg.Subject,
		Text:             msg.Text,
		HTML:             msg.HTML,
		Headers:          msg.Headers,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key-Id", creds.AccessKeyID)
	req.Header.Set("X-Secret-Access-Key", creds.SecretAccessKey)
	req.Header.Set("X-Region", creds.Region)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)

		var er errorResponse
		if err := json.Unmarshal(raw, &er); err == nil && er.Message != "" {
			return nil, &SendError{Message: er.Message}
		}

		c.logger.Warn("provider returned non-JSON error",
			zap.Int("status", resp.StatusCode),
		)
		return nil, &SendError{Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	var out sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &SendError{Message: "failed to decode provider response"}
	}

	return &SendResult{MessageID: out.MessageID}, nil
}
