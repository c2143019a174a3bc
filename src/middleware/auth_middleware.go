package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/lib"
)

const (
	localEmail  = "email"
	localClaims = "claims"
	localToken  = "token"
)

// Authenticator turns a raw session token into verified claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*lib.Claims, error)
}

// ProtectRoute rejects requests without a valid session and stores the
// caller's email and token claims for the handlers behind it. The token is
// read from the Authorization header first, then from cookieName.
func ProtectRoute(auth Authenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(cookieName)
		}
		if token == "" {
			return apperror.Unauthorized("Unauthorized")
		}

		claims, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(localEmail, claims.Email())
		c.Locals(localClaims, claims)
		c.Locals(localToken, token)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// CallerEmail returns the authenticated caller's email.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}

// CallerClaims returns the verified claims of the current session, or nil
// outside a protected route.
func CallerClaims(c *fiber.Ctx) *lib.Claims {
	claims, _ := c.Locals(localClaims).(*lib.Claims)
	return claims
}
