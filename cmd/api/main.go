package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iMallco/iMall/internal/config"
	"github.com/iMallco/iMall/internal/crypto"
	"github.com/iMallco/iMall/internal/handler"
	"github.com/iMallco/iMall/internal/notify"
	"github.com/iMallco/iMall/internal/repository"
	"github.com/iMallco/iMall/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hasher, err := crypto.NewHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		slog.Error("hasher setup failed", "error", err)
		os.Exit(1)
	}
	issuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	notifier := notify.NewResetNotifier(notify.LogMailer{}, cfg.ResetNoticeInterval, notify.DefaultQueueSize)
	go notifier.Run(ctx)

	authService := service.NewAuthService(store, hasher, issuer, notifier)
	authHandler := handler.NewAuthHandler(authService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(authHandler, issuer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (repository.UserStore, func(), error) {
	if cfg.StoreDriver != config.StoreMySQL {
		return repository.NewMemoryUserStore(), func() {}, nil
	}

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewUserRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}
