package handler

import (
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
	"mailrelay/internal/service"
)

// recipient accepts either a single address or an array of addresses.
// The wire schema tolerates arrays; the send pipeline rejects them
// with its own message, so unmarshalling must not.
type recipient struct {
	value   string
	many    bool
	present bool
}

func (r *recipient) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.value = s
		r.present = true
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	r.many = true
	r.present = true
	if len(arr) > 0 {
		r.value = arr[0]
	}
	return nil
}

type sendEmailRequest struct {
	From    string            `json:"from"`
	To      recipient         `json:"to"`
	ReplyTo recipient         `json:"replyTo"`
	Subject string            `json:"subject"`
	Text    *string           `json:"text"`
	HTML    *string           `json:"html"`
	Headers map[string]string `json:"headers"`
}

type SendHandler struct {
	sendService *service.SendService
}

func NewSendHandler(sendService *service.SendService) *SendHandler {
	return &SendHandler{
		sendService: sendService,
	}
}

// SendEmail handles POST /api/v1/emails/send.
func (h *SendHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, apierr.Validation("Invalid request body"))
		return
	}

	in, err := buildSendInput(&req)
	if err != nil {
		Error(c, err)
		return
	}

	key := c.MustGet(ContextAPIKey).(*model.APIKey)

	logID, err := h.sendService.SendEmail(c.Request.Context(), key, in)
	if err != nil {
		Error(c, err)
		return
	}

	ok(c, gin.H{"id": logID})
}

// buildSendInput normalizes and validates the request body shape.
// Business rules (recipient arrays, identity state) stay in the
// pipeline; only field-level validation happens here.
func buildSendInput(req *sendEmailRequest) (*service.SendInput, error) {
	from := strings.TrimSpace(req.From)
	if from == "" {
		return nil, apierr.Validation("The from field is required")
	}

	to := strings.ToLower(strings.TrimSpace(req.To.value))
	if !req.To.present || (to == "" && !req.To.many) {
		return nil, apierr.Validation("The to field is required")
	}
	if !req.To.many && !isEmail(to) {
		return nil, apierr.Validation("The to field must be a valid email address")
	}

	replyTo := strings.TrimSpace(req.ReplyTo.value)
	if req.ReplyTo.present && !req.ReplyTo.many && replyTo != "" && !isEmail(replyTo) {
		return nil, apierr.Validation("The replyTo field must be a valid email address")
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, apierr.Validation("The subject field is required")
	}

	// Empty strings count as supplied; only absence is rejected.
	if req.Text == nil && req.HTML == nil {
		return nil, apierr.Validation("Either text or html must be provided")
	}

	headers := req.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	return &service.SendInput{
		From:        from,
		To:          to,
		ToMany:      req.To.many,
		ReplyTo:     replyTo,
		ReplyToMany: req.ReplyTo.many,
		Subject:     subject,
		Text:        req.Text,
		HTML:        req.HTML,
		Headers:     headers,
	}, nil
}

func isEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
