package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"useraccounts/internal/accounts/adapters/http/middleware"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, handler *Handler) {
	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(cors.New())

	app.Post("/signup", handler.SignUp)
	app.Post("/signin", handler.SignIn)
	app.Post("/update-password", handler.UpdatePassword)
	app.Get("/user", handler.GetUser)
	app.Get("/health", handler.Health)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: ErrRouteNotFound})
	})
}
