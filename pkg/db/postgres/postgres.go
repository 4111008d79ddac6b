// Package postgres предоставляет пул соединений с PostgreSQL и применение миграций.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"useraccounts/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogConnecting        = "connecting to Postgres database"
	LogConnected         = "successfully connected to Postgres"
	LogClosing           = "closing Postgres connection pool"
	LogMigrationsApplied = "database migrations successfully applied"
)

// Константы для сообщений об ошибках.
const (
	ErrParseConfig  = "failed to parse connection config"
	ErrCreatePool   = "failed to create connection pool"
	ErrPingDatabase = "failed to ping database"
)

// ErrInvalidPoolSize возвращается при несогласованных границах пула.
var ErrInvalidPoolSize = errors.New("invalid connection pool size")

// Options описывает пул соединений.
type Options struct {
	DSN             string
	MinConns        int32
	MaxConns        int32
	ApplicationName string
}

func (o Options) validate() error {
	if o.MaxConns <= 0 || o.MinConns < 0 || o.MinConns > o.MaxConns {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidPoolSize, o.MinConns, o.MaxConns)
	}
	return nil
}

// Open создает пул по opts и проверяет соединение.
func Open(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	log := logger.Log(ctx).With(
		zap.Int32("min_conns", opts.MinConns),
		zap.Int32("max_conns", opts.MaxConns),
	)
	log.Info(ctx, LogConnecting)

	if err := opts.validate(); err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}

	poolCfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}

	poolCfg.MinConns = opts.MinConns
	poolCfg.MaxConns = opts.MaxConns
	if opts.ApplicationName != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = opts.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error(ctx, ErrCreatePool, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error(ctx, ErrPingDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingDatabase, err)
	}

	log.Info(ctx, LogConnected)
	return pool, nil
}

// Close закрывает пул.
func Close(ctx context.Context, pool *pgxpool.Pool) {
	logger.Log(ctx).Info(ctx, LogClosing)
	pool.Close()
}
