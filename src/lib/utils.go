package lib

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the success envelope every handler writes.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
	Data    any    `json:"data"`
}

// MessageResponse returns a success envelope with no payload.
func MessageResponse(message string) Response {
	return Response{Success: true, Message: message, Data: fiber.Map{}}
}

// SendResponse writes a success envelope with the given status.
func SendResponse(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

// SendPage writes a success envelope carrying pagination metadata.
func SendPage(c *fiber.Ctx, message string, data, meta any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Message: message, Meta: meta, Data: data})
}
