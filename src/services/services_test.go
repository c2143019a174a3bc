package services

import (
	"testing"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/stretchr/testify/require"
)

const (
	aliceID = "64b7f0c2a1b2c3d4e5f60001"
	bobID   = "64b7f0c2a1b2c3d4e5f60002"
	carolID = "64b7f0c2a1b2c3d4e5f60003"
	reqID   = "64b7f0c2a1b2c3d4e5f6aaaa"
)

// requireAppError asserts err is an AppError with the given status and message.
func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *AppError, got %v", err)
	require.Equal(t, status, appErr.Status)
	require.Equal(t, message, appErr.Message)
}
