package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Source points at the input that caused an error. Path is empty for
// errors that are not tied to a single field.
type Source struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// AppError is an error that knows how it should be reported to a client.
type AppError struct {
	Status  int
	Message string
	Sources []Source
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrorSources returns the field-level sources, defaulting to one
// pathless entry carrying the message.
func (e *AppError) ErrorSources() []Source {
	if len(e.Sources) > 0 {
		return e.Sources
	}
	return []Source{{Path: "", Message: e.Message}}
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError {
	return New(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(fiber.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return New(fiber.StatusNotFound, message)
}

func Conflict(message string) *AppError {
	return New(fiber.StatusConflict, message)
}

func Unavailable(message string) *AppError {
	return New(fiber.StatusServiceUnavailable, message)
}

// Validation reports one source per failing field.
func Validation(sources []Source) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Message: "Validation Error", Sources: sources}
}

// InvalidID reports a malformed identifier at path.
func InvalidID(path string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid ID",
		Sources: []Source{{Path: path, Message: "Invalid ID"}},
	}
}

// Internal hides err behind a generic message. The cause is kept for logging.
func Internal(err error) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Message: "Something went wrong!", Err: err}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap annotates err with a status and message unless it already is an *AppError.
func Wrap(err error, status int, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return &AppError{Status: status, Message: message, Err: err}
}
