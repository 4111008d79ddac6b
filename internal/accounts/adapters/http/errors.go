package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"useraccounts/internal/accounts/domain/entities"
)

// Сообщения ответов.
const (
	MsgUserRegistered      = "User registered successfully"
	MsgSignInSuccessful    = "Sign-in successful"
	MsgPasswordUpdated     = "Password updated successfully"
	ErrInvalidRequestBody  = "Invalid request body"
	ErrSignUpFieldsMissing = "Username, password and email are required"
	ErrSignInFieldsMissing = "Username and password are required"
	ErrUpdateFieldsMissing = "Username, old password and new password are required"
	ErrLookupKeyMissing    = "Username or email required"
	ErrAccountExists       = "Username or email already exists"
	ErrUserNotFound        = "User not found"
	ErrIncorrectPassword   = "Incorrect password"
	ErrIncorrectOldPwd     = "Incorrect old password"
	ErrSignUp              = "Sign-up error"
	ErrSignIn              = "Sign-in error"
	ErrPasswordUpdate      = "Password update error"
	ErrUserRetrieval       = "User retrieval error"
	ErrRouteNotFound       = "Route not found"
)

// errorMapping сопоставляет доменную ошибку со статусом и сообщением.
type errorMapping struct {
	target  error
	status  int
	message string
}

// mapError возвращает статус и сообщение для первой подходящей ошибки,
// иначе 500 с сообщением fallback.
func mapError(err error, fallback string, mappings ...errorMapping) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return fiber.StatusInternalServerError, fallback
}

var (
	signUpErrors = []errorMapping{
		{entities.ErrDuplicateAccount, fiber.StatusBadRequest, ErrAccountExists},
		{entities.ErrValidation, fiber.StatusBadRequest, ErrSignUpFieldsMissing},
	}
	signInErrors = []errorMapping{
		{entities.ErrAccountNotFound, fiber.StatusNotFound, ErrUserNotFound},
		{entities.ErrInvalidCredentials, fiber.StatusBadRequest, ErrIncorrectPassword},
		{entities.ErrValidation, fiber.StatusBadRequest, ErrSignInFieldsMissing},
	}
	updatePasswordErrors = []errorMapping{
		{entities.ErrAccountNotFound, fiber.StatusBadRequest, ErrUserNotFound},
		{entities.ErrInvalidCredentials, fiber.StatusBadRequest, ErrIncorrectOldPwd},
		{entities.ErrValidation, fiber.StatusBadRequest, ErrUpdateFieldsMissing},
	}
	lookupErrors = []errorMapping{
		{entities.ErrAccountNotFound, fiber.StatusNotFound, ErrUserNotFound},
		{entities.ErrValidation, fiber.StatusBadRequest, ErrLookupKeyMissing},
	}
)
