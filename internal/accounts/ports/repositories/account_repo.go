// Package repositories определяет порты хранилища учетных записей.
package repositories

import (
	"context"

	"useraccounts/internal/accounts/domain/entities"
)

// AccountRepository определяет операции хранилища учетных записей.
//
// Find* возвращают entities.ErrAccountNotFound при отсутствии записи.
// Create возвращает entities.ErrDuplicateAccount при нарушении уникальности.
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) (*entities.Account, error)

	FindByUsername(ctx context.Context, username string) (*entities.Account, error)

	FindByEmail(ctx context.Context, email string) (*entities.Account, error)

	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.Account, error)

	// UpdatePasswordHash заменяет хэш, только если текущий хэш равен oldHash.
	// Если запись есть, но хэш уже другой, возвращается entities.ErrConcurrentUpdate.
	UpdatePasswordHash(ctx context.Context, username, oldHash, newHash string) error
}
