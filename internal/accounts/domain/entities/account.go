// Package entities содержит сущности и ошибки домена учетных записей.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена учетных записей.
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrEmptyEmail         = errors.New("email cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrLookupKeyMissing   = errors.New("username or email required")
	ErrDuplicateAccount   = errors.New("username or email already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("record store unavailable")
	ErrConcurrentUpdate   = errors.New("account was modified concurrently")
)

// Account представляет учетную запись пользователя.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Redacted возвращает копию учетной записи без хэша пароля.
func (a *Account) Redacted() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	return &clone
}

// ValidationError связывает конкретную причину с ErrValidation,
// чтобы errors.Is срабатывал для обеих ошибок.
func ValidationError(cause error) error {
	return errors.Join(ErrValidation, cause)
}
