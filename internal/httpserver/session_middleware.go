package httpserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailrelay/internal/handler"
	"mailrelay/internal/model"
	"mailrelay/internal/util"
)

type SessionUserStore interface {
	FindAuthContextByID(ctx context.Context, id string) (*model.AuthContext, error)
}

// SessionResolver resolves the signed session cookie to a user and
// stores it in the request context. It never blocks a request: every
// failure path proceeds unauthenticated. In production a datastore
// error also clears the cookie; in development it is logged and the
// cookie kept, to ease debugging.
func SessionResolver(users SessionUserStore, cookieName, secret string, isDevelopment bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := util.ParseSessionToken(token, secret)
		if err != nil {
			clearSessionCookie(c, cookieName)
			c.Next()
			return
		}

		user, err := users.FindAuthContextByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				clearSessionCookie(c, cookieName)
			} else if isDevelopment {
				logger.Error("session user lookup failed", zap.Error(err))
			} else {
				clearSessionCookie(c, cookieName)
			}
			c.Next()
			return
		}

		c.Set(handler.ContextUser, user)
		c.Next()
	}
}

func clearSessionCookie(c *gin.Context, cookieName string) {
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
}
