package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/controllers"
	"github.com/halalbiye/halalbiye-server/src/middleware"
	"github.com/halalbiye/halalbiye-server/src/validation"
)

// ConnectionRoutes sets up connection request routes for sending, listing, accepting and declining requests
func ConnectionRoutes(api fiber.Router, h *controllers.ConnectionController, protect fiber.Handler) {
	requests := api.Group("/requests")

	requests.Post("/", protect, middleware.Validate(validation.SendRequest), h.SendConnectionRequest)
	requests.Get("/incoming", protect, h.GetIncomingRequests)
	requests.Get("/outgoing", protect, h.GetOutgoingRequests)
	requests.Post("/accept", protect, middleware.Validate(validation.Respond), h.AcceptConnectionRequest)
	requests.Post("/decline", protect, middleware.Validate(validation.Respond), h.RejectConnectionRequest)
}
