package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/middleware"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/services"
	"github.com/halalbiye/halalbiye-server/src/validation"
)

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type UserController struct {
	profiles *services.ProfileService
	auth     *services.AuthService
	cookie   SessionCookie
}

func NewUserController(profiles *services.ProfileService, auth *services.AuthService, cookie SessionCookie) *UserController {
	return &UserController{profiles: profiles, auth: auth, cookie: cookie}
}

type loginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /users/register.
func (h *UserController) Register(c *fiber.Ctx) error {
	in := middleware.Body[validation.RegisterInput](c)

	user, err := h.profiles.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "User registered successfully", user)
}

// Login handles POST /users/login and sets the session cookie.
func (h *UserController) Login(c *fiber.Ctx) error {
	in := middleware.Body[validation.LoginInput](c)

	user, session, err := h.auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return lib.SendResponse(c, fiber.StatusOK, "User logged in successfully", loginResponse{User: user, Token: session.Token})
}

// Logout handles POST /users/logout. The cookie is cleared even when the
// token could not be revoked.
func (h *UserController) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext(), middleware.CallerClaims(c))

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("User logged out successfully"))
}

// GetCurrentUser handles GET /users/me.
func (h *UserController) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.profiles.GetByEmail(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "User profile fetched successfully", user)
}

// GetUsers handles GET /users with optional equality filters and pagination.
func (h *UserController) GetUsers(c *fiber.Ctx) error {
	params, errs := validation.UserFilter(c.Queries())
	if err := errs.Err(); err != nil {
		return err
	}

	users, meta, err := h.profiles.ListUsers(c.UserContext(), middleware.CallerEmail(c), params)
	if err != nil {
		return err
	}
	if meta != nil {
		return lib.SendPage(c, "Users fetched successfully", users, meta)
	}
	return lib.SendResponse(c, fiber.StatusOK, "Users fetched successfully", users)
}

// UpdateCurrentUser handles PUT /users/me.
func (h *UserController) UpdateCurrentUser(c *fiber.Ctx) error {
	patch := middleware.Body[models.Profile](c)

	user, err := h.profiles.UpdateProfile(c.UserContext(), middleware.CallerEmail(c), patch)
	if err != nil {
		return err
	}
	return lib.SendResponse(c, fiber.StatusOK, "Profile updated successfully", user)
}
