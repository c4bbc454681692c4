// Package reporter - test run results reporting service
package reporter

import (
	"context"
	"fmt"

	"github.com/alwitt/reporter/api"
	"github.com/alwitt/reporter/auth"
	"github.com/alwitt/reporter/config"
	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/store"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Service the assembled reporter service
type Service struct {
	// Persistence DB client
	Persistence db.Client
	// Users user account store
	Users store.UserStore
	// Results result record store
	Results store.ResultsStore
	// Tokens bearer token service
	Tokens auth.TokenService
	// Server HTTP API server
	Server *echo.Echo
}

/*
NewPersistence connect to the configured DB

	@param ctx context.Context - execution context
	@param cfg config.DatabaseConfig - DB config
	@returns DB client, already verified reachable
*/
func NewPersistence(ctx context.Context, cfg config.DatabaseConfig) (db.Client, error) {
	dialector, err := db.GetDialector(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}
	logLevel, err := db.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	persistence, err := db.NewConnection(dialector, logLevel, cfg.PoolParams())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persistence client [%w]", err)
	}
	if err := persistence.Ping(ctx); err != nil {
		_ = persistence.Close()
		return nil, err
	}

	return persistence, nil
}

/*
NewService initialize the reporter service

The service owns the persistence client; close it through Service.Close.

	@param ctx context.Context - execution context
	@param cfg config.Config - service config
	@param clock clockwork.Clock - time source for token issuance and expiry
	@param registry *prometheus.Registry - metrics registry
	@returns new service instance
*/
func NewService(
	ctx context.Context, cfg config.Config, clock clockwork.Clock, registry *prometheus.Registry,
) (*Service, error) {
	if err := cfg.ValidateForServing(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(auth.TokenServiceParams{
		Secret:    []byte(cfg.Auth.TokenSecret),
		Algorithm: cfg.Auth.TokenAlgorithm,
		TTL:       cfg.Auth.TokenTTL,
		Clock:     clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service [%w]", err)
	}

	persistence, err := NewPersistence(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := persistence.RunSQLInTransaction(ctx, db.DefineTables); err != nil {
			_ = persistence.Close()
			return nil, fmt.Errorf("failed to prepare tables [%w]", err)
		}
	}

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		_ = persistence.Close()
		return nil, fmt.Errorf("failed to register runtime metrics [%w]", err)
	}

	retry := cfg.Store.ReadRetry.RetryParams()
	instance := &Service{
		Persistence: persistence,
		Users:       store.NewUserStore(persistence, retry),
		Results:     store.NewResultsStore(persistence, retry),
		Tokens:      tokens,
	}

	instance.Server, err = api.NewServer(api.ServerParams{
		Users:       instance.Users,
		Results:     instance.Results,
		Tokens:      instance.Tokens,
		Persistence: persistence,
		Registry:    registry,
		StaticDir:   cfg.HTTP.StaticDir,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	if err != nil {
		_ = persistence.Close()
		return nil, fmt.Errorf("failed to initialize HTTP server [%w]", err)
	}

	return instance, nil
}

// Close release the service resources
func (s *Service) Close() error {
	return s.Persistence.Close()
}
