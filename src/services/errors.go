package services

import (
	"errors"
	"fmt"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/store"
)

const (
	msgUserNotFound        = "User not found"
	msgCurrentUserNotFound = "Current user not found"
	msgSenderNotFound      = "Requesting user not found"
	msgTargetNotFound      = "Target user not found"
	msgEmailTaken          = "Email already registered"
	msgBadCredentials      = "Invalid email or password"
	msgSelfRequest         = "Cannot send request to yourself"
	msgRequestExists       = "Request already exists"
	msgRequestNotFound     = "Request not found"
	msgNotAuthorized       = "Not authorized"
	msgNotPending          = "Request is not pending"
)

// internal wraps an unexpected store failure so the cause is logged but
// never shown to the client.
func internal(op string, err error) error {
	return apperror.Internal(fmt.Errorf("%s: %w", op, err))
}

// notFoundOr maps store.ErrNotFound to a 404 with message and anything else to a 500.
func notFoundOr(op string, err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return internal(op, err)
}
