package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mailrelay/config"
	"mailrelay/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	sendHandler *handler.SendHandler,
	emailQueryHandler *handler.EmailQueryHandler,
	users SessionUserStore,
	keys APIKeyStore,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.Default()

	r.Use(requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Session resolution runs on every API request. It is
	// informational for the API-key routes and never rejects.
	v1 := r.Group("/api/v1")
	v1.Use(SessionResolver(users, cfg.Session.CookieName, cfg.Session.Secret, cfg.IsDevelopment(), logger))

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}

	emails := v1.Group("/emails")
	emails.Use(APIKeyAuth(keys, logger))
	{
		emails.POST("/send", sendHandler.SendEmail)
		emails.GET("/:id", emailQueryHandler.GetEmail)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
