// @title        Account Service API
// @version      1.0
// @description  Account registration, credential verification and bearer token issuance.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoresync/account-service/internal/api"
	"github.com/scoresync/account-service/internal/api/handler"
	"github.com/scoresync/account-service/internal/core/ports"
	"github.com/scoresync/account-service/internal/core/service"
	"github.com/scoresync/account-service/internal/infrastructure/auth"
	"github.com/scoresync/account-service/internal/infrastructure/db/memory"
	mongodb "github.com/scoresync/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/scoresync/account-service/internal/infrastructure/db/redis"
	"github.com/scoresync/account-service/internal/infrastructure/queue"
	"github.com/scoresync/account-service/internal/pkg/config"
	"github.com/scoresync/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "account-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "account-service",
	})

	storage, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.close(log)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec, err := auth.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// Workers outlive the HTTP server so in-flight events are drained after it stops.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, storage.activity, logger.Component("activity_dispatcher"))
	dispatcher.Start(workerCtx)

	accounts := service.NewAccountService(storage.store, hasher, codec, dispatcher, logger.Get())
	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Checks:   storage.checks,
		Log:      logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			stopWorkers()
			dispatcher.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
	return nil
}

// backend bundles the persistence side chosen by STORE_BACKEND.
type backend struct {
	store    ports.CredentialStore
	activity ports.ActivityRepository
	checks   []handler.DependencyCheck
	close    func(log zerolog.Logger)
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		accounts := mongodb.NewAccountRepository(db)
		activity := mongodb.NewActivityRepository(db)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			_ = mongodb.Disconnect(context.Background(), client)
			return nil, err
		}
		if err := activity.EnsureIndexes(ctx); err != nil {
			_ = mongodb.Disconnect(context.Background(), client)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

		return &backend{
			store:    accounts,
			activity: activity,
			checks: []handler.DependencyCheck{{
				Name: "mongodb",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			}},
			close: func(log zerolog.Logger) {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := mongodb.Disconnect(ctx, client); err != nil {
					log.Error().Err(err).Msg("mongodb disconnect")
				}
			},
		}, nil

	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

		return &backend{
			store:    redisdb.NewAccountStore(client),
			activity: redisdb.NewActivityStream(client),
			checks: []handler.DependencyCheck{{
				Name: "redis",
				Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			}},
			close: func(log zerolog.Logger) {
				if err := client.Close(); err != nil {
					log.Error().Err(err).Msg("redis close")
				}
			},
		}, nil

	default:
		log.Warn().Msg("using in-memory store; accounts are lost on restart")
		return &backend{
			store:    memory.NewAccountStore(),
			activity: memory.NewActivityLog(),
			close:    func(zerolog.Logger) {},
		}, nil
	}
}
