// Package api определяет входящие порты сервиса учетных записей.
package api

import (
	"context"

	"useraccounts/internal/accounts/domain/entities"
)

// AccountUseCase определяет операции каталога учетных записей.
type AccountUseCase interface {
	Register(ctx context.Context, username, password, email string) (*entities.Account, error)

	VerifyCredentials(ctx context.Context, username, password string) (*entities.Account, error)

	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error

	// Lookup ищет по username, а при его отсутствии по email.
	Lookup(ctx context.Context, username, email string) (*entities.Account, error)
}
