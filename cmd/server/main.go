package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"worldforge/backend/internal/auth"
	"worldforge/backend/internal/config"
	"worldforge/backend/internal/db"
	"worldforge/backend/internal/db/migrate"
	"worldforge/backend/internal/events"
	"worldforge/backend/internal/httpapi"
	"worldforge/backend/internal/security"
	tokenrepo "worldforge/backend/internal/token/repository"
	userrepo "worldforge/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Production() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	var producer events.Producer = events.NopProducer{}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp := events.NewKafkaProducer(brokers, cfg.AuthEventsTopic)
		defer func() { _ = kp.Close() }()
		producer = kp
	}

	users := userrepo.NewPostgresRepository(pool)
	tokens := tokenrepo.NewPostgresRepository(pool)
	hasher := security.NewHasher(cfg.BcryptSaltRounds)
	codec := security.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTL())
	service := auth.NewService(users, tokens, hasher, codec,
		cfg.RefreshTTL(), cfg.MaxRefreshTokensPerUser, producer, logger)

	sweeper := auth.NewSweeper(tokens, cfg.SweepInterval(), producer, logger)
	go sweeper.Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		RefreshCookieMaxAge: int(cfg.RefreshTTL() / time.Second),
		SecureCookies:       cfg.Production(),
		Production:          cfg.Production(),
	}, service, codec, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}
