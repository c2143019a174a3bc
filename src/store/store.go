package store

//go:generate mockgen -source=store.go -destination=../mocks/store_mocks.go -package=mocks UserStore,RequestStore

import (
	"context"
	"errors"

	"github.com/halalbiye/halalbiye-server/src/models"
)

var (
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidID means the id is not in the backend's format.
	ErrInvalidID = errors.New("invalid id")
	// ErrConflictingUpdate means a conditional update matched nothing because
	// the record no longer satisfies the condition.
	ErrConflictingUpdate = errors.New("conflicting update")
)

// UserStore persists user credentials and profiles.
type UserStore interface {
	// Create inserts u and fills in ID, CreatedAt and UpdatedAt.
	// ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *models.User) error

	// GetByEmail returns ErrNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns ErrNotFound for an unknown id and ErrInvalidID for a malformed one.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Summaries returns the public projection of every existing user in ids, keyed by id.
	// Unknown ids are left out.
	Summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)

	// UpdateProfile sets the attributes present in patch on the user with that email
	// and returns the updated record. ErrNotFound when the email does not resolve.
	UpdateProfile(ctx context.Context, email string, patch models.Profile) (*models.User, error)

	// List returns the users matching q in creation order.
	List(ctx context.Context, q models.UserQuery) ([]models.User, error)

	// Count returns how many users match q, ignoring Skip and Limit.
	Count(ctx context.Context, q models.UserQuery) (int64, error)
}

// RequestStore persists connection requests.
type RequestStore interface {
	// Create inserts r and fills in ID, CreatedAt and UpdatedAt.
	// ErrDuplicate when a request for the same (FromUser, ToUser) exists.
	Create(ctx context.Context, r *models.ConnectionRequest) error

	// GetByID returns ErrNotFound for an unknown id and ErrInvalidID for a malformed one.
	GetByID(ctx context.Context, id string) (*models.ConnectionRequest, error)

	// FindByPair returns the request sent from one user to another, or ErrNotFound.
	FindByPair(ctx context.Context, fromUser, toUser string) (*models.ConnectionRequest, error)

	// ListIncoming returns requests addressed to userID, newest first.
	ListIncoming(ctx context.Context, userID string) ([]models.ConnectionRequest, error)

	// ListOutgoing returns requests sent by userID, newest first.
	ListOutgoing(ctx context.Context, userID string) ([]models.ConnectionRequest, error)

	// ListInvolving returns every request where userID is either side.
	ListInvolving(ctx context.Context, userID string) ([]models.ConnectionRequest, error)

	// TransitionFromPending moves the request to status only if it is still pending
	// and addressed to toUser, in a single conditional write. It returns the updated
	// request, or ErrConflictingUpdate when the condition no longer holds.
	TransitionFromPending(ctx context.Context, id, toUser string, status models.RequestStatus) (*models.ConnectionRequest, error)
}

// Backend is a storage engine exposing both stores.
type Backend interface {
	Users() UserStore
	Requests() RequestStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
