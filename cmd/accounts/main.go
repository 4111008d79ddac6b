// Package main реализует точку входа сервиса учетных записей.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"useraccounts/internal/accounts/adapters/cache"
	"useraccounts/internal/accounts/adapters/grpc"
	httpadapter "useraccounts/internal/accounts/adapters/http"
	"useraccounts/internal/accounts/adapters/services"
	"useraccounts/internal/accounts/app"
	"useraccounts/internal/accounts/config"
	"useraccounts/internal/accounts/db"
	"useraccounts/pkg/db/redis"
	"useraccounts/pkg/logger"
	"useraccounts/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "ACCOUNTS_LOGGER_MODE"
	EnvLoggerLevel = "ACCOUNTS_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize accounts store"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrServerStopped        = "server stopped unexpectedly"
	ErrShutdownHooks        = "failed to release resources"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "accounts service started"
	LogServiceShutdownDone = "accounts service shutdown complete"
	LogClosingDB           = "closing accounts store"
	LogClosingCache        = "closing Redis connection"
	LogStoppingGRPC        = "stopping gRPC server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitCache           = "initializing lookup cache"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStartingGRPC        = "starting gRPC server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.WithRequestID(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		store, err := db.New(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("store_driver", store.Driver()),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		var hooks shutdown.Stack
		hooks.Push(func(ctx context.Context) error {
			log.Info(ctx, LogClosingDB)
			return store.Close(ctx)
		})
		abort := func() {
			if err := hooks.Close(ctx); err != nil {
				log.Warn(ctx, ErrShutdownHooks, zap.Error(err))
			}
			exitCode = 1
		}

		log.Info(ctx, LogInitServices)
		passwordService := services.NewBcrypt(cfg.Password.BcryptCost)

		var opts []app.Option
		if cfg.Redis.Enabled {
			log.Info(ctx, LogInitCache)
			redisClient, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
			if err != nil {
				log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
				abort()
				return
			}
			opts = append(opts, app.WithCache(cache.NewRedisAccountCache(redisClient.RawClient(), cfg.Redis.TTL)))
			hooks.Push(func(ctx context.Context) error {
				log.Info(ctx, LogClosingCache)
				return redisClient.Close(ctx)
			})
		}

		log.Info(ctx, LogInitUseCases)
		accountUseCase := app.NewAccountUseCase(store.Repository(), passwordService, opts...)

		log.Info(ctx, LogStartingGRPC)
		grpcServer := grpc.New(&cfg.GRPC)
		if err := grpcServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPC, zap.Error(err))
			abort()
			return
		}
		hooks.Push(func(ctx context.Context) error {
			log.Info(ctx, LogStoppingGRPC)
			grpcServer.Stop(ctx)
			return nil
		})

		log.Info(ctx, LogInitHTTPServer)
		httpApp := fiber.New(fiber.Config{
			AppName:      "useraccounts",
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		httpadapter.SetupRouter(httpApp, httpadapter.NewHandler(accountUseCase, store,
			httpadapter.WithPasswordHashExposed(cfg.Lookup.ExposePasswordHash)))

		runCtx, stop := context.WithCancelCause(ctx)
		defer stop(nil)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		serve(runCtx, stop, ErrStartHTTPServer, func() error {
			return httpApp.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true})
		})
		hooks.Push(func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			return httpApp.ShutdownWithContext(ctx)
		})

		shutdown.Wait(runCtx, cfg.Shutdown.GetTimeout(), hooks.Close)

		if cause := context.Cause(runCtx); cause != nil {
			log.Error(ctx, ErrServerStopped, zap.Error(cause))
			exitCode = 1
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// serve запускает listen в горутине. Если listen вернул ошибку, контекст
// отменяется с этой ошибкой в качестве причины.
func serve(ctx context.Context, stop context.CancelCauseFunc, errMsg string, listen func() error) {
	go func() {
		if err := listen(); err != nil {
			logger.Log(ctx).Error(ctx, errMsg, zap.Error(err))
			stop(fmt.Errorf("%s: %w", errMsg, err))
		}
	}()
}
