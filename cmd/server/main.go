package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"campuscoins/config"
	_ "campuscoins/docs"
	"campuscoins/internal/adapters/auth"
	"campuscoins/internal/adapters/email"
	delivery "campuscoins/internal/delivery/http"
	"campuscoins/internal/delivery/http/controllers"
	"campuscoins/internal/delivery/http/middleware"
	"campuscoins/internal/repository/postgres"
	"campuscoins/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// @title Campus Coins API
// @version 1.0
// @description Campus event management with a virtual coin economy: students register for events and earn coins when declared winners.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	ledgerRepo := postgres.NewCoinLedgerRepository(db)
	notifRepo := postgres.NewNotificationRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	notifier := services.NewNotificationService(notifRepo, userRepo, mailer, logger)
	authSvc := services.NewAuthService(userRepo, hasher, issuer, cfg.TokenExpiry)
	ledgerSvc := services.NewCoinLedgerService(ledgerRepo, notifier, logger)
	eventSvc := services.NewEventService(eventRepo, regRepo, ledgerRepo, userRepo, notifier, logger)
	regSvc := services.NewRegistrationService(regRepo, eventRepo, notifier, logger)
	studentSvc := services.NewStudentService(userRepo, regRepo, eventRepo, ledgerRepo)
	adminSvc := services.NewAdminService(userRepo, eventRepo, regRepo, ledgerRepo)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authSvc),
		Events:        controllers.NewEventController(logger, eventSvc, regSvc),
		Coins:         controllers.NewCoinController(logger, ledgerSvc),
		Students:      controllers.NewStudentController(logger, studentSvc),
		Admin:         controllers.NewAdminController(logger, adminSvc),
		Notifications: controllers.NewNotificationController(logger, notifier),
	}, verifier, logger)

	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
}
