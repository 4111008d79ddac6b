// Package postgres реализует хранилище учетных записей на PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/ports/repositories"
	"useraccounts/pkg/logger"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникального индекса.
const uniqueViolation = "23505"

const (
	queryInsertAccount = `
        INSERT INTO accounts (username, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, username, email, password_hash, created_at
    `
	querySelectByUsername = `
        SELECT id, username, email, password_hash, created_at
        FROM accounts
        WHERE username = $1
    `
	querySelectByEmail = `
        SELECT id, username, email, password_hash, created_at
        FROM accounts
        WHERE email = $1
    `
	querySelectByUsernameOrEmail = `
        SELECT id, username, email, password_hash, created_at
        FROM accounts
        WHERE username = $1 OR email = $2
        LIMIT 1
    `
	queryUpdatePasswordHash = `
        UPDATE accounts
        SET password_hash = $3
        WHERE username = $1 AND password_hash = $2
    `
	queryAccountExists = `
        SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)
    `
)

// PgxPoolInterface подмножество pgxpool.Pool, используемое репозиторием.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// AccountRepository реализует интерфейс repositories.AccountRepository для работы с Postgres.
type AccountRepository struct {
	pool PgxPoolInterface
}

// NewAccountRepository создает новый экземпляр репозитория учетных записей.
func NewAccountRepository(pool PgxPoolInterface) repositories.AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create создает новую учетную запись.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "Create"))

	row := r.pool.QueryRow(ctx, queryInsertAccount,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)

	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			log.Debug(ctx, "unique constraint violated", zap.String("constraint", pgErr.ConstraintName))
			return nil, fmt.Errorf("error creating account: %w", entities.ErrDuplicateAccount)
		}
		log.Error(ctx, "error creating account", zap.Error(err))
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return created, nil
}

// FindByUsername находит учетную запись по username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByUsername", querySelectByUsername, username)
}

// FindByEmail находит учетную запись по email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByEmail", querySelectByEmail, email)
}

// FindByUsernameOrEmail находит любую запись, совпадающую по username или email.
func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByUsernameOrEmail", querySelectByUsernameOrEmail, username, email)
}

// UpdatePasswordHash заменяет хэш пароля, если он не менялся с момента чтения.
func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, username, oldHash, newHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "UpdatePasswordHash"))

	result, err := r.pool.Exec(ctx, queryUpdatePasswordHash, username, oldHash, newHash)
	if err != nil {
		log.Error(ctx, "error updating password hash", zap.Error(err))
		return fmt.Errorf("error updating password hash: %w", err)
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, queryAccountExists, username).Scan(&exists); err != nil {
		log.Error(ctx, "error checking account existence", zap.Error(err))
		return fmt.Errorf("error checking account existence: %w", err)
	}

	if !exists {
		log.Debug(ctx, "account not found for update", zap.String("username", username))
		return entities.ErrAccountNotFound
	}

	log.Debug(ctx, "password hash changed concurrently", zap.String("username", username))
	return entities.ErrConcurrentUpdate
}

func (r *AccountRepository) findOne(ctx context.Context, method, query string, args ...any) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", method))

	account, err := scanAccount(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "account not found", zap.Any("args", args))
			return nil, entities.ErrAccountNotFound
		}
		log.Error(ctx, "error finding account", zap.Error(err))
		return nil, fmt.Errorf("error querying account: %w", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}
