package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/config"
	httptransport "github.com/example/reading-nook/internal/http"
	"github.com/example/reading-nook/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := func() string { return uuid.NewString() }
	now := time.Now

	userRepo := sqlite.NewUserRepository(db)
	authSessionRepo := sqlite.NewAuthSessionRepository(db)
	bookRepo := sqlite.NewBookRepository(db)
	readingSessionRepo := sqlite.NewReadingSessionRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)

	signer := application.NewTokenSigner([]byte(cfg.TokenSecret), now)

	authService := application.NewAuthService(userRepo, authSessionRepo, signer, idGenerator, now, cfg.SessionTTL, logger)
	bookService := application.NewBookService(bookRepo, idGenerator, now, logger)
	readingService := application.NewReadingService(readingSessionRepo, idGenerator, now, logger)
	settingsService := application.NewSettingsService(settingsRepo, idGenerator, now, logger)
	statsService := application.NewStatsService(readingSessionRepo, bookRepo, settingsService, now, logger)
	importService := application.NewImportService(bookService, readingService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Books:    httptransport.NewBookHandler(bookService, logger),
		Sessions: httptransport.NewSessionHandler(readingService, logger),
		Settings: httptransport.NewSettingsHandler(settingsService, logger),
		Stats:    httptransport.NewStatsHandler(statsService, logger),
		Import:   httptransport.NewImportHandler(importService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httptransport.PublicRoute(r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reading nook API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
