package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorSources(t *testing.T) {
	err := NotFound("User not found")
	assert.Equal(t, []Source{{Path: "", Message: "User not found"}}, err.ErrorSources())

	v := Validation([]Source{{Path: "email", Message: "Invalid email format"}})
	assert.Equal(t, fiber.StatusBadRequest, v.Status)
	assert.Equal(t, "Validation Error", v.Message)
	assert.Equal(t, "email", v.ErrorSources()[0].Path)
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("send request: %w", Conflict("Request already exists"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusConflict, appErr.Status)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestInternal_KeepsCauseHidesMessage(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := Internal(cause)

	assert.Equal(t, "Something went wrong!", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, fiber.StatusBadRequest, "x"))

	orig := Forbidden("Not authorized")
	assert.Same(t, orig, Wrap(orig, fiber.StatusBadRequest, "x"))

	err := Wrap(errors.New("boom"), fiber.StatusBadGateway, "upstream")
	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadGateway, appErr.Status)
}
