// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"useraccounts/pkg/logger"
)

// HeaderRequestID заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

const localsRequestID = "request_id"

// maxRequestIDLength - более длинный входящий идентификатор заменяется новым.
const maxRequestIDLength = 128

// NewRequestIDMiddleware берет идентификатор из заголовка или генерирует новый
// и возвращает его в ответе.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := ctx.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = logger.NewRequestID()
		}

		ctx.Locals(localsRequestID, requestID)
		ctx.Set(HeaderRequestID, requestID)

		return ctx.Next()
	}
}

// RequestContext возвращает контекст запроса с идентификатором запроса.
func RequestContext(ctx fiber.Ctx) context.Context {
	requestID, _ := ctx.Locals(localsRequestID).(string)
	return logger.WithRequestID(ctx.Context(), requestID)
}
