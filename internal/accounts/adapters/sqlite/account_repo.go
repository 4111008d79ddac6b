// Package sqlite реализует хранилище учетных записей на встроенной SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/ports/repositories"
	"useraccounts/pkg/logger"
)

const createAccountsTable = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

const selectAccount = `
SELECT id, username, email, password_hash, created_at
FROM accounts
`

// AccountRepository реализует интерфейс repositories.AccountRepository для работы с SQLite.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository создает новый экземпляр репозитория учетных записей.
func NewAccountRepository(db *sql.DB) repositories.AccountRepository {
	return &AccountRepository{db: db}
}

// Init создает таблицу accounts, если ее еще нет.
func Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createAccountsTable); err != nil {
		return fmt.Errorf("error creating accounts table: %w", err)
	}
	return nil
}

// Create создает новую учетную запись.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "Create"))

	created := *account
	created.ID = uuid.NewString()
	created.CreatedAt = account.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (id, username, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)`,
		created.ID,
		created.Username,
		created.Email,
		created.PasswordHash,
		created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug(ctx, "unique constraint violated", zap.Error(err))
			return nil, fmt.Errorf("error creating account: %w", entities.ErrDuplicateAccount)
		}
		log.Error(ctx, "error creating account", zap.Error(err))
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return &created, nil
}

// FindByUsername находит учетную запись по username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccount+`WHERE username = ?`, username))
}

// FindByEmail находит учетную запись по email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccount+`WHERE email = ?`, email))
}

// FindByUsernameOrEmail находит любую запись, совпадающую по username или email.
func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccount+`WHERE username = ? OR email = ? LIMIT 1`, username, email))
}

// UpdatePasswordHash заменяет хэш пароля, если он не менялся с момента чтения.
func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, username, oldHash, newHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "UpdatePasswordHash"))

	res, err := r.db.ExecContext(ctx, `
UPDATE accounts
SET password_hash = ?
WHERE username = ? AND password_hash = ?`,
		newHash,
		username,
		oldHash,
	)
	if err != nil {
		log.Error(ctx, "error updating password hash", zap.Error(err))
		return fmt.Errorf("error updating password hash: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = ?)`, username).Scan(&exists); err != nil {
		return fmt.Errorf("error checking account existence: %w", err)
	}
	if !exists {
		log.Debug(ctx, "account not found for update", zap.String("username", username))
		return entities.ErrAccountNotFound
	}

	log.Debug(ctx, "password hash changed concurrently", zap.String("username", username))
	return entities.ErrConcurrentUpdate
}

func scanAccount(row interface {
	Scan(dest ...any) error
}) (*entities.Account, error) {
	var account entities.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error scanning account: %w", err)
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *driver.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
