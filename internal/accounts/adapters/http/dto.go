package http

import (
	"time"

	"useraccounts/internal/accounts/domain/entities"
)

// SignUpRequest содержит данные для регистрации.
type SignUpRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

// SignInRequest содержит данные для входа.
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest содержит данные для смены пароля.
type UpdatePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// MessageResponse ответ с сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignInResponse ответ на успешный вход.
type SignInResponse struct {
	Message string           `json:"message"`
	User    *AccountResponse `json:"user"`
}

// AccountResponse представление учетной записи.
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toAccountResponse(account *entities.Account) *AccountResponse {
	return &AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Password:  account.PasswordHash,
		CreatedAt: account.CreatedAt,
	}
}
