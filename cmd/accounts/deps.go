package main

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/api"
	"github.com/99minutos/account-service/internal/api/handler"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/service"
	"github.com/99minutos/account-service/internal/infrastructure/config"
	mongostore "github.com/99minutos/account-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/account-service/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/account-service/internal/infrastructure/db/redis"
	"github.com/99minutos/account-service/pkg/logger"
)

// wire connects to the configured backends and assembles the HTTP router.
// The returned cleanup closes every opened connection in reverse order.
// logger.Init must have been called.
func wire(ctx context.Context, cfg *config.Config) (*echo.Echo, func(), error) {
	log := logger.Get()
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	policy, err := service.NewPasswordPolicy(cfg.Auth.PasswordRegex)
	if err != nil {
		return nil, cleanup, err
	}
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	readiness := make(map[string]handler.PingFunc)

	var repo ports.AccountRepository
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		if err := postgres.MigrateUp(ctx, pool); err != nil {
			return nil, cleanup, err
		}
		repo = postgres.NewAccountRepository(pool)
		readiness["postgres"] = postgres.Ping(pool)
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		mongoRepo := mongostore.NewAccountRepository(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return nil, cleanup, err
		}
		repo = mongoRepo
		readiness["mongodb"] = mongostore.Ping(db)
	}

	var directory ports.AccountDirectory = service.NewRepositoryDirectory(repo)
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		directory = redisstore.NewDirectoryCache(rdb, directory, cfg.Redis.CacheTTL, log)
		readiness["redis"] = redisstore.Ping(rdb)
	}

	accounts := service.NewAccountService(repo, directory, tokens, policy, hasher, log)

	e := api.NewRouter(api.Dependencies{
		Accounts:     accounts,
		Tokens:       tokens,
		Directory:    directory,
		PasswordRule: policy,
		Readiness:    readiness,
		Log:          log,
	})
	return e, cleanup, nil
}
