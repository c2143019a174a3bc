package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/middleware"
	"github.com/halalbiye/halalbiye-server/src/services"
	"github.com/halalbiye/halalbiye-server/src/validation"
)

// ConnectionController serves the connection request endpoints.
type ConnectionController struct {
	requests *services.RequestService
}

func NewConnectionController(requests *services.RequestService) *ConnectionController {
	return &ConnectionController{requests: requests}
}

// SendConnectionRequest sends a request from the caller to the user in the body.
func (h *ConnectionController) SendConnectionRequest(c *fiber.Ctx) error {
	in := middleware.Body[validation.SendRequestInput](c)

	req, err := h.requests.Send(c.UserContext(), middleware.CallerEmail(c), in.ToUser)
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusCreated, "Request sent successfully", req)
}

func (h *ConnectionController) GetIncomingRequests(c *fiber.Ctx) error {
	views, err := h.requests.Incoming(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "Incoming requests fetched", views)
}

func (h *ConnectionController) GetOutgoingRequests(c *fiber.Ctx) error {
	views, err := h.requests.Outgoing(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "Outgoing requests fetched", views)
}

// AcceptConnectionRequest accepts a pending request addressed to the caller.
func (h *ConnectionController) AcceptConnectionRequest(c *fiber.Ctx) error {
	in := middleware.Body[validation.RespondInput](c)

	req, err := h.requests.Accept(c.UserContext(), in.ID, middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "Request accepted", req)
}

// RejectConnectionRequest declines a pending request addressed to the caller.
func (h *ConnectionController) RejectConnectionRequest(c *fiber.Ctx) error {
	in := middleware.Body[validation.RespondInput](c)

	req, err := h.requests.Decline(c.UserContext(), in.ID, middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "Request declined", req)
}
