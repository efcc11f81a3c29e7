package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"greenmarket/backend/internal/audit"
	auditrepo "greenmarket/backend/internal/audit/repository"
	authservice "greenmarket/backend/internal/auth/service"
	"greenmarket/backend/internal/auth/tokenstore"
	"greenmarket/backend/internal/config"
	"greenmarket/backend/internal/db"
	healthhandler "greenmarket/backend/internal/health/handler"
	memberrepo "greenmarket/backend/internal/member/repository"
	memberservice "greenmarket/backend/internal/member/service"
	"greenmarket/backend/internal/security"
	"greenmarket/backend/internal/server"
	"greenmarket/backend/internal/server/middleware"
	"greenmarket/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "greenmarket-auth", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	tokens, err := newTokenProvider(cfg)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}

	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer conn.Close()
	} else {
		log.Fatal("config: DATABASE_URL must be set")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	registry := memberrepo.NewPostgresRegistry(conn)
	store := tokenstore.NewRedisStore(redisClient, cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	auditRepo := auditrepo.NewPostgresRepository(conn)
	auditor := audit.NewLogger(
		auditRepo,
		middleware.ClientIP,
		otel.NewEventEmitter(providers.LoggerProvider),
	)

	mux := server.NewMux(server.Deps{
		Auth:      authservice.NewAuthService(registry, store, hasher, tokens, auditor),
		Member:    memberservice.NewMemberService(registry, store, hasher, auditor),
		Tokens:    tokens,
		AuditRepo: auditRepo,
		HealthDB:  healthhandler.PingerFunc(conn.PingContext),
		HealthRedis: healthhandler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.WithClientIP(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, err
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	return security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL()), nil
}
