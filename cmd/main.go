package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcctx "github.com/dtroode/identity-server/internal/api/grpc/context"
	"github.com/dtroode/identity-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/identity-server/internal/api/grpc/server"
	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/google"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/notify"
	"github.com/dtroode/identity-server/internal/ratelimit"
	"github.com/dtroode/identity-server/internal/repository/postgres"
	"github.com/dtroode/identity-server/internal/server"
	"github.com/dtroode/identity-server/internal/service"
	storage "github.com/dtroode/identity-server/internal/storage/minio"
	"github.com/dtroode/identity-server/internal/telemetry"
	"github.com/dtroode/identity-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize notifier", "error", err)
	}

	var identityProvider model.IdentityProvider
	if cfg.Google.ClientID != "" {
		identityProvider, err = google.New(ctx, cfg.Google)
		if err != nil {
			logger.Fatal("failed to initialize google identity provider", "error", err)
		}
	}

	storageClient, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	verificationService := service.NewVerification(db, notifier, cfg.Verification, logger)
	sessionService := service.NewSession(tokenManager, cfg.JWT.RefreshTTL, logger)
	avatarService := service.NewAvatar(storageClient, logger)

	services := router.Services{
		Auth:          service.NewAuth(db, tokenManager, verificationService, sessionService, identityProvider, logger),
		Verification:  verificationService,
		User:          service.NewUser(db, verificationService, sessionService, identityProvider, avatarService, logger),
		Preference:    service.NewPreference(db, logger),
		Avatar:        avatarService,
		Authenticator: service.NewAuthenticator(db.Users(), tokenManager, logger),
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Addr != "" {
		redisClient := ratelimit.NewRedisClient(cfg.RateLimit)
		defer redisClient.Close()
		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	r := router.New(services, limiter, grpcctx.NewManager(), logger)
	srv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("error during tracing shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newNotifier sends email through SMTP when a host is configured and
// through the log otherwise. SMS always goes through the log.
func newNotifier(cfg *config.Config, logger *logger.Logger) (model.Notifier, error) {
	var email model.Notifier = notify.NewLogEmail(cfg.Domain, logger)
	if cfg.SMTP.Host != "" {
		smtp, err := notify.NewSMTPEmail(cfg.SMTP, cfg.Domain)
		if err != nil {
			return nil, err
		}
		email = smtp
	}
	return notify.NewDispatcher(email, notify.NewLogSMS(cfg.Domain, logger)), nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
