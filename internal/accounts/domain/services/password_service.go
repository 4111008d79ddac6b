// Package services содержит ошибки и константы доменных сервисов.
package services

import (
	"errors"
)

// PasswordErrors содержит ошибки, связанные с паролями.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidHash     = errors.New("stored password hash is malformed")
)

// DefaultBCryptCost - фактор сложности bcrypt по умолчанию.
const DefaultBCryptCost = 10
