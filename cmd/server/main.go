package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/auth"
	"notebase/app/internal/config"
	appdb "notebase/app/internal/db"
	apphttp "notebase/app/internal/http"
	applog "notebase/app/internal/log"
	"notebase/app/internal/pages"
	"notebase/app/internal/store"
	"notebase/app/internal/users"
	"notebase/app/internal/workspaces"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{Path: cfg.DBPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := store.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running migrations")
	}

	st, err := store.New(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building store")
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return eris.Wrap(err, "initialising token issuer")
	}

	guard, err := auth.NewGuard(tokens, logger)
	if err != nil {
		return eris.Wrap(err, "initialising guard")
	}

	userService, err := users.NewService(st, auth.NewPasswords(), tokens, logger, sentryHub)
	if err != nil {
		return eris.Wrap(err, "creating user service")
	}

	workspaceService, err := workspaces.NewService(st, guard, logger, sentryHub)
	if err != nil {
		return eris.Wrap(err, "creating workspace service")
	}

	pageService, err := pages.NewService(st, guard, logger, sentryHub)
	if err != nil {
		return eris.Wrap(err, "creating page service")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		Users:      userService,
		Workspaces: workspaceService,
		Pages:      pageService,
		Guard:      guard,
		Database:   dbConn,
		Logger:     logger,
		SentryHub:  sentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}
