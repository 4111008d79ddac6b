// Package http содержит HTTP обработчики сервиса учетных записей.
package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"useraccounts/internal/accounts/adapters/http/middleware"
	"useraccounts/internal/accounts/ports/api"
	"useraccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerSignUp         = "accounts handler: sign up"
	LogHandlerSignIn         = "accounts handler: sign in"
	LogHandlerUpdatePassword = "accounts handler: update password"
	LogHandlerGetUser        = "accounts handler: get user"
	LogHandlerHealth         = "accounts handler: health"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorStoreUnhealthy       = "store ping failed"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerOption настраивает Handler.
type HandlerOption func(*Handler)

// WithPasswordHashExposed включает хэш пароля в ответ GET /user.
func WithPasswordHashExposed(expose bool) HandlerOption {
	return func(h *Handler) {
		h.exposeHash = expose
	}
}

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	accounts   api.AccountUseCase
	store      Pinger
	validate   *validator.Validate
	exposeHash bool
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(accounts api.AccountUseCase, store Pinger, opts ...HandlerOption) *Handler {
	h := &Handler{
		accounts: accounts,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SignUp обрабатывает запрос на регистрацию.
func (h *Handler) SignUp(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerSignUp)

	var req SignUpRequest
	if ok, err := h.bind(ctx, requestCtx, &req, ErrSignUpFieldsMissing); !ok {
		return err
	}

	if _, err := h.accounts.Register(requestCtx, req.Username, req.Password, req.Email); err != nil {
		status, message := mapError(err, ErrSignUp, signUpErrors...)
		return h.fail(ctx, requestCtx, status, message, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(MessageResponse{Message: MsgUserRegistered})
}

// SignIn обрабатывает запрос на вход.
func (h *Handler) SignIn(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerSignIn)

	var req SignInRequest
	if ok, err := h.bind(ctx, requestCtx, &req, ErrSignInFieldsMissing); !ok {
		return err
	}

	account, err := h.accounts.VerifyCredentials(requestCtx, req.Username, req.Password)
	if err != nil {
		status, message := mapError(err, ErrSignIn, signInErrors...)
		return h.fail(ctx, requestCtx, status, message, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(SignInResponse{
		Message: MsgSignInSuccessful,
		User:    toAccountResponse(account.Redacted()),
	})
}

// UpdatePassword обрабатывает запрос на смену пароля.
func (h *Handler) UpdatePassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerUpdatePassword)

	var req UpdatePasswordRequest
	if ok, err := h.bind(ctx, requestCtx, &req, ErrUpdateFieldsMissing); !ok {
		return err
	}

	if err := h.accounts.ChangePassword(requestCtx, req.Username, req.OldPassword, req.NewPassword); err != nil {
		status, message := mapError(err, ErrPasswordUpdate, updatePasswordErrors...)
		return h.fail(ctx, requestCtx, status, message, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(MessageResponse{Message: MsgPasswordUpdated})
}

// GetUser обрабатывает запрос на поиск учетной записи.
func (h *Handler) GetUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerGetUser)

	account, err := h.accounts.Lookup(requestCtx, ctx.Query("username"), ctx.Query("email"))
	if err != nil {
		status, message := mapError(err, ErrUserRetrieval, lookupErrors...)
		return h.fail(ctx, requestCtx, status, message, err)
	}

	if !h.exposeHash {
		account = account.Redacted()
	}

	return ctx.Status(fiber.StatusOK).JSON(toAccountResponse(account))
}

// Health сообщает о готовности сервиса.
func (h *Handler) Health(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)

	if h.store != nil {
		if err := h.store.Ping(requestCtx); err != nil {
			logger.Log(requestCtx).Warn(requestCtx, ErrorStoreUnhealthy, zap.Error(err))
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// bind разбирает тело запроса и проверяет обязательные поля. При ошибке
// ответ уже отправлен и возвращается ok == false.
func (h *Handler) bind(ctx fiber.Ctx, requestCtx context.Context, req any, missingMessage string) (bool, error) {
	log := logger.Log(requestCtx)

	if err := ctx.Bind().JSON(req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return false, ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ErrInvalidRequestBody})
	}

	if err := h.validate.Struct(req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return false, ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: missingMessage})
	}

	return true, nil
}

func (h *Handler) fail(ctx fiber.Ctx, requestCtx context.Context, status int, message string, err error) error {
	log := logger.Log(requestCtx)
	if status >= fiber.StatusInternalServerError {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
	} else {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Int("status", status), zap.Error(err))
	}
	return ctx.Status(status).JSON(ErrorResponse{Error: message})
}
