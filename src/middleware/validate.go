package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/validation"
)

const localBody = "body"

// Validate decodes the JSON body, runs rule over it and stores the typed
// result for the handler. Failures never reach the handler.
func Validate[T any](rule func(map[string]any) (T, validation.Errors)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := map[string]any{}
		if raw := c.Body(); len(raw) > 0 {
			if err := c.App().Config().JSONDecoder(raw, &body); err != nil {
				return apperror.New(fiber.StatusBadRequest, "Invalid JSON body")
			}
		}

		in, errs := rule(body)
		if err := errs.Err(); err != nil {
			return err
		}

		c.Locals(localBody, in)
		return c.Next()
	}
}

// Body returns the input stored by Validate.
func Body[T any](c *fiber.Ctx) T {
	v, _ := c.Locals(localBody).(T)
	return v
}
