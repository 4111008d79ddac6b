// Package sqlite открывает встроенную базу SQLite (modernc.org/sqlite, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // регистрирует драйвер "sqlite"

	"useraccounts/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogOpening = "opening SQLite database"
	LogOpened  = "SQLite database opened"
	LogClosing = "closing SQLite database"

	ErrCreateDir = "failed to create database directory"
	ErrOpen      = "failed to open sqlite database"
	ErrPragma    = "failed to apply sqlite pragma"
)

var pragmas = []string{
	`PRAGMA foreign_keys = ON;`,
	`PRAGMA busy_timeout = 5000;`,
}

// Open открывает (или создает) базу по пути path, создавая недостающие каталоги.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	log := logger.Log(ctx).With(zap.String("path", path))
	log.Info(ctx, LogOpening)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Error(ctx, ErrCreateDir, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateDir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Error(ctx, ErrOpen, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrOpen, err)
	}

	// SQLite сериализует запись, один коннект исключает SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			log.Error(ctx, ErrPragma, zap.String("pragma", pragma), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrPragma, err)
		}
	}

	log.Info(ctx, LogOpened)
	return db, nil
}
