// Package cache определяет интерфейс кэша результатов поиска учетных записей.
package cache

import (
	"context"

	"useraccounts/internal/accounts/domain/entities"
)

// Version - версия записи в кэше на момент перед чтением из хранилища.
// Key непрозрачен для вызывающего кода.
type Version struct {
	Key   string
	Value int64
}

// AccountCache кэширует записи по username и email.
type AccountCache interface {
	// GetByUsername возвращает nil без ошибки при промахе.
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)

	// GetByEmail возвращает nil без ошибки при промахе.
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)

	// Version снимает версию записи по ключу поиска, username имеет приоритет.
	Version(ctx context.Context, username, email string) (Version, error)

	// Set сохраняет запись, только если после снятия version ее не инвалидировали.
	// Возвращает false, если запись не сохранена.
	Set(ctx context.Context, account *entities.Account, version Version) (bool, error)

	// Invalidate удаляет запись и увеличивает ее версию.
	Invalidate(ctx context.Context, account *entities.Account) error
}
