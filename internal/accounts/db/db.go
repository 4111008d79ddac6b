// Package db открывает выбранное хранилище учетных записей.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	mongorepo "useraccounts/internal/accounts/adapters/mongo"
	pgrepo "useraccounts/internal/accounts/adapters/postgres"
	sqliterepo "useraccounts/internal/accounts/adapters/sqlite"
	"useraccounts/internal/accounts/config"
	"useraccounts/internal/accounts/ports/repositories"
	"useraccounts/pkg/db/mongo"
	"useraccounts/pkg/db/postgres"
	"useraccounts/pkg/db/sqlite"
	"useraccounts/pkg/logger"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing accounts store"
	LogDBInitialized     = "accounts store initialized successfully"
	LogMigrationStarting = "starting database migrations for accounts service"
)

// applicationName передается Postgres в application_name.
const applicationName = "useraccounts"

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply accounts database migrations"
	ErrDBConnection = "failed to connect to accounts store"
	ErrDBSchema     = "failed to prepare accounts schema"
	ErrGetPath      = "failed to get path"
)

// Store держит открытое хранилище и построенный поверх него репозиторий.
type Store struct {
	driver string
	repo   repositories.AccountRepository
	ping   func(context.Context) error
	close  func(context.Context) error
}

// New открывает хранилище, выбранное в cfg.Store.Driver.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	log := logger.Log(ctx).With(zap.String("driver", cfg.Store.Driver))
	log.Info(ctx, LogDBInitializing)

	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	var (
		store *Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err = openPostgres(ctx, &cfg.Postgres)
	case config.DriverMongo:
		store, err = openMongo(ctx, &cfg.Mongo)
	case config.DriverSQLite:
		store, err = openSQLite(ctx, &cfg.SQLite)
	}
	if err != nil {
		return nil, err
	}

	store.driver = cfg.Store.Driver
	log.Info(ctx, LogDBInitialized)
	return store, nil
}

// Repository возвращает репозиторий учетных записей.
func (s *Store) Repository() repositories.AccountRepository {
	return s.repo
}

// Driver возвращает имя используемого хранилища.
func (s *Store) Driver() string {
	return s.driver
}

// Ping проверяет соединение с хранилищем.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close закрывает соединение с хранилищем.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

func openPostgres(ctx context.Context, cfg *config.PostgresConfig) (*Store, error) {
	log := logger.Log(ctx)

	log.Info(ctx, "connecting to postgres",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsPath, err := fileSource(cfg.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	pool, err := postgres.Open(ctx, postgres.Options{
		DSN:             cfg.GetDSN(),
		MinConns:        int32(cfg.MinConn), //nolint:gosec
		MaxConns:        int32(cfg.MaxConn), //nolint:gosec
		ApplicationName: applicationName,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	return &Store{
		repo: pgrepo.NewAccountRepository(pool),
		ping: pool.Ping,
		close: func(ctx context.Context) error {
			postgres.Close(ctx, pool)
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	database, err := mongo.New(ctx, cfg.URI, cfg.Database, cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	coll := database.Collection(mongorepo.CollectionName)
	if err := mongorepo.EnsureIndexes(ctx, coll); err != nil {
		_ = database.Close(ctx)
		return nil, fmt.Errorf("%s: %w", ErrDBSchema, err)
	}

	return &Store{
		repo:  mongorepo.NewAccountRepository(coll),
		ping:  database.Ping,
		close: database.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.SQLiteConfig) (*Store, error) {
	database, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	if err := sqliterepo.Init(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%s: %w", ErrDBSchema, err)
	}

	return &Store{
		repo: sqliterepo.NewAccountRepository(database),
		ping: database.PingContext,
		close: func(ctx context.Context) error {
			logger.Log(ctx).Info(ctx, sqlite.LogClosing)
			return closeSQL(database)
		},
	}, nil
}

func closeSQL(database *sql.DB) error {
	if err := database.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

func fileSource(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return "file://" + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return "file://" + absPath, nil
}
