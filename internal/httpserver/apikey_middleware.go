package httpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailrelay/internal/apierr"
	"mailrelay/internal/handler"
	"mailrelay/internal/model"
)

type APIKeyStore interface {
	FindByToken(ctx context.Context, token string) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// APIKeyAuth authenticates requests carrying an API key as a bearer
// token. Unknown, revoked and unresolvable keys all fail closed with
// the same 401.
func APIKeyAuth(keys APIKeyStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			handler.AbortError(c, apierr.Authentication("Missing API key"))
			return
		}

		key, err := keys.FindByToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				logger.Error("api key lookup failed", zap.Error(err))
			}
			handler.AbortError(c, apierr.Authentication("Invalid API key"))
			return
		}

		// Usage tracking is best effort, never blocks the send.
		if err := keys.TouchLastUsed(c.Request.Context(), key.ID); err != nil {
			logger.Warn("failed to touch api key", zap.String("api_key_id", key.ID), zap.Error(err))
		}

		c.Set(handler.ContextAPIKey, key)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
