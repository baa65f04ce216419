// @title           Aquário Identity API
// @version         1.0
// @description     Registration, login and bearer token verification for the Aquário campus platform.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
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
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aquario/identity-service/internal/api"
	"github.com/aquario/identity-service/internal/api/handler"
	"github.com/aquario/identity-service/internal/core/password"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/core/service"
	mongodb "github.com/aquario/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/aquario/identity-service/internal/infrastructure/db/redis"
	"github.com/aquario/identity-service/internal/infrastructure/hashing"
	"github.com/aquario/identity-service/internal/infrastructure/memory"
	"github.com/aquario/identity-service/internal/infrastructure/queue"
	"github.com/aquario/identity-service/internal/pkg/config"
	"github.com/aquario/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "identity"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	identities := mongodb.NewIdentityRepository(db, cfg.StoreTimeout)
	if err := identities.EnsureIndexes(ctx); err != nil {
		return err
	}
	directory := mongodb.NewDirectoryRepository(db, cfg.StoreTimeout)
	if err := directory.EnsureIndexes(ctx); err != nil {
		return err
	}

	readiness := map[string]handler.ReadinessCheck{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}

	counters, closeCounters, err := newCounterStore(ctx, cfg, readiness)
	if err != nil {
		return err
	}
	defer closeCounters()

	// --- Core ---
	pool := queue.NewHashPool(cfg.Auth.HashWorkers, hashing.NewBcrypt(cfg.Auth.BcryptCost), log)
	pool.Start(ctx)

	tokens, err := service.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}

	validator := service.NewRegistrationValidator(password.NewPolicy(cfg.Auth.RequireComposition), directory, directory)
	authService := service.NewAuthService(validator, identities, pool, tokens, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Config:    cfg,
		Log:       log,
		Auth:      authService,
		Tokens:    tokens,
		Centers:   directory,
		Courses:   directory,
		Counters:  counters,
		Readiness: readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("rate_limit_backend", cfg.RateLimit.Backend).
			Msg("identity service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// newCounterStore builds the rate-limit backend. Redis is only dialled, and
// only checked for readiness, when it backs the counters.
func newCounterStore(ctx context.Context, cfg *config.Config, readiness map[string]handler.ReadinessCheck) (ports.CounterStore, func(), error) {
	if cfg.RateLimit.Backend == "memory" {
		mem := memory.NewCounterStore()
		mem.StartJanitor(ctx, time.Minute)
		return mem, func() {}, nil
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return redisdb.NewCounterStore(rdb), func() { _ = rdb.Close() }, nil
}
