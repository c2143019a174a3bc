package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/controllers"
	"github.com/halalbiye/halalbiye-server/src/middleware"
	"github.com/halalbiye/halalbiye-server/src/validation"
)

// UserRoutes sets up registration, login, logout and profile routes
func UserRoutes(api fiber.Router, h *controllers.UserController, protect fiber.Handler) {
	user := api.Group("/users")

	user.Post("/register", middleware.Validate(validation.Register), h.Register)
	user.Post("/login", middleware.Validate(validation.Login), h.Login)
	user.Post("/logout", protect, h.Logout)
	user.Get("/me", protect, h.GetCurrentUser)
	user.Get("/", protect, h.GetUsers)
	user.Put("/me", protect, middleware.Validate(validation.UpdateProfile), h.UpdateCurrentUser)
}
