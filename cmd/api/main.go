package main

import (
	"mailrelay/config"
	"mailrelay/internal/db"
	"mailrelay/internal/handler"
	"mailrelay/internal/httpserver"
	"mailrelay/internal/provider"
	"mailrelay/internal/repository"
	"mailrelay/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init provider client
	sender := provider.NewSESClient(cfg.Provider.Endpoint, logger)

	// 4. Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	identityRepo := repository.NewIdentityRepository(dbConn)
	apiKeyRepo := repository.NewAPIKeyRepository(dbConn)
	emailLogRepo := repository.NewEmailLogRepository(dbConn)

	// 5. Init services
	authService := service.NewAuthService(userRepo, cfg.Session.Secret, logger)
	sendService := service.NewSendService(projectRepo, identityRepo, emailLogRepo, sender, logger)

	// 6. Init handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Session.CookieName, !cfg.IsDevelopment())
	sendHandler := handler.NewSendHandler(sendService)
	emailQueryHandler := handler.NewEmailQueryHandler(emailLogRepo)

	// 7. Init router
	router := httpserver.NewRouter(cfg, authHandler, sendHandler, emailQueryHandler, userRepo, apiKeyRepo, dbConn, logger)

	// 8. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
