// Package config содержит конфигурацию сервиса учетных записей.
package config

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	pkgconfig "useraccounts/pkg/config"
	"useraccounts/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName         = "accounts"
	EnvConfigPath       = "ACCOUNTS_CONFIG_PATH"
	DefaultConfigPath   = "deploy/.env"
	LogConfigLoaded     = "Accounts service configuration loaded"
	ErrFailedLoadConfig = "Failed to load configuration"
)

// Config представляет полную конфигурацию приложения.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Password PasswordConfig `yaml:"password"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из файла ACCOUNTS_CONFIG_PATH и переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("grpc_address", cfg.GRPC.GetAddress()),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Int("bcrypt_cost", cfg.Password.BcryptCost),
		zap.Bool("lookup_expose_password_hash", cfg.Lookup.ExposePasswordHash),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}
