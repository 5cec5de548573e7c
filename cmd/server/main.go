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

	firebase "firebase.google.com/go/v4"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	"eventtiz/config"
	_ "eventtiz/docs"
	"eventtiz/internal/adapters/auth"
	"eventtiz/internal/adapters/blob"
	"eventtiz/internal/adapters/email"
	delivery "eventtiz/internal/delivery/http"
	"eventtiz/internal/delivery/http/controllers"
	"eventtiz/internal/delivery/http/middleware"
	firestorerepo "eventtiz/internal/repository/firestore"
	"eventtiz/internal/repository/postgres"
	"eventtiz/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Eventtiz API
// @version 1.0
// @description Event registration backend: organizer accounts, events with shareable registration slugs, attendee self-registration with emailed passcodes.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Organizer accounts live in Postgres.
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Events and fliers live in Firebase.
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		logger.Error("failed to init firebase app", "err", err)
		os.Exit(1)
	}
	fsClient, err := fbApp.Firestore(ctx)
	if err != nil {
		logger.Error("failed to init firestore client", "err", err)
		os.Exit(1)
	}
	defer fsClient.Close()
	flierStore, err := blob.NewFlierStore(ctx, fbApp, cfg.StorageBucket)
	if err != nil {
		logger.Error("failed to init flier store", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to init mailer", "err", err)
		os.Exit(1)
	}

	eventRepo := firestorerepo.NewEventRepository(fsClient)
	userRepo := postgres.NewUserRepository(db)
	hasher := auth.NewBcryptHasher(0)
	issuer, verifier := auth.NewJWTCodec(cfg.JWTSecret)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	eventService := services.NewEventService(eventRepo, flierStore, logger, serviceTimeout)
	registrationService := services.NewRegistrationService(eventRepo, emailService, logger, serviceTimeout)
	userService := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry, serviceTimeout)

	mux := delivery.NewRouter(
		controllers.NewAuthController(logger, userService),
		controllers.NewEventController(logger, eventService),
		controllers.NewRegistrationController(logger, registrationService),
		verifier,
		logger,
	)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE responses stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
