package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/notification-preferences/internal/config"
	"github.com/iliyamo/notification-preferences/internal/database"
	"github.com/iliyamo/notification-preferences/internal/handler"
	"github.com/iliyamo/notification-preferences/internal/logger"
	"github.com/iliyamo/notification-preferences/internal/queue"
	"github.com/iliyamo/notification-preferences/internal/repository"
	"github.com/iliyamo/notification-preferences/internal/router"
	"github.com/iliyamo/notification-preferences/internal/service"
	"github.com/iliyamo/notification-preferences/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	users := repository.NewUserRepo(db)
	types := repository.NewNotificationTypeRepo(db)
	prefs := repository.NewPreferenceRepo(db)

	var events service.EventPublisher = queue.NoopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitMQURL, log)
		consumer := queue.NewAuditConsumer(cfg.RabbitMQURL, cfg.AuditLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	authSvc := service.NewAuthService(users, utils.NewTokenManager(cfg.JWTSecret), events, log, cfg.BcryptCost, cfg.AccessTTL())
	catalogSvc := service.NewCatalogService(types)
	prefSvc := service.NewPreferenceService(types, prefs, events, log)

	v, err := handler.NewValidator()
	if err != nil {
		return err
	}

	e := router.New(router.Options{
		Log:              log,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		GzipMinLength:    cfg.GzipMinLength,
		ForceHTTPS:       cfg.ForceHTTPS,
	})
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, v), authSvc)
	router.RegisterNotifications(e, handler.NewNotificationHandler(catalogSvc), handler.NewPreferenceHandler(prefSvc, v), authSvc)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
