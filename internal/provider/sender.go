// Package provider wraps the hosted email provider behind a uniform
// request/response contract. The pipeline never talks HTTP directly.
package provider

import "context"

// Credentials are the per-project keys used to call the provider on
// the project's behalf.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Message is a single fully-resolved outbound email. Headers already
// include the configuration-set tracking header by the time a message
// reaches a Sender.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    *string
	HTML    *string
	Headers map[string]string
}

// SendResult is returned after a successful dispatch.
type SendResult struct {
	MessageID string
}

// SendError is a provider-reported send failure. Its message is logged
// and surfaced to the caller; anything else about the failure stays
// internal.
type SendError struct {
	Message string
}

func (e *SendError) Error() string {
	return e.Message
}

// Sender dispatches one email synchronously. Retry and timeout policy
// belong to implementations, not callers.
type Sender interface {
	Send(ctx context.Context, creds Credentials, msg *Message) (*SendResult, error)
}
