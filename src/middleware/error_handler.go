package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/apperror"
	"go.uber.org/zap"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	ErrorSources []apperror.Source `json:"errorSources"`
	Stack        string            `json:"stack,omitempty"`
}

// ErrorHandler renders err as an ErrorResponse. Internal causes are logged
// and only exposed through Stack when debug is set.
func ErrorHandler(log *zap.Logger, debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := toAppError(err)

		if appErr.Status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", RequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", appErr.Status),
				zap.Error(err),
			)
		}

		resp := ErrorResponse{
			Success:      false,
			Message:      appErr.Message,
			ErrorSources: appErr.ErrorSources(),
		}
		if debug {
			resp.Stack = err.Error()
		}
		return c.Status(appErr.Status).JSON(resp)
	}
}

func toAppError(err error) *apperror.AppError {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return apperror.Internal(err)
		}
		return apperror.New(fiberErr.Code, fiberErr.Message)
	}
	return apperror.Internal(err)
}

// NotFound answers routes nothing else matched.
func NotFound(c *fiber.Ctx) error {
	return apperror.NotFound("API Not Found !!")
}
