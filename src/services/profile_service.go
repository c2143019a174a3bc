package services

import (
	"context"
	"errors"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/metrics"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/halalbiye/halalbiye-server/src/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ProfileService registers users and reads or edits their profiles.
type ProfileService struct {
	users      store.UserStore
	requests   store.RequestStore
	bcryptCost int
	log        *zap.Logger
}

func NewProfileService(users store.UserStore, requests store.RequestStore, bcryptCost int, log *zap.Logger) *ProfileService {
	return &ProfileService{users: users, requests: requests, bcryptCost: bcryptCost, log: log}
}

// Register creates a user with a hashed password.
func (s *ProfileService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict(msgEmailTaken)
	case !errors.Is(err, store.ErrNotFound):
		return nil, internal("register", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, internal("register: hash password", err)
	}

	user := &models.User{Email: in.Email, Password: string(hash), Profile: in.Profile}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, internal("register", err)
	}

	metrics.Registered()
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// GetByEmail returns the profile of the user with that email.
func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr("get profile", err, msgUserNotFound)
	}
	return user, nil
}

// UpdateProfile applies patch to the caller's profile. An empty patch
// returns the profile unchanged.
func (s *ProfileService) UpdateProfile(ctx context.Context, email string, patch models.Profile) (*models.User, error) {
	if patch.IsEmpty() {
		return s.GetByEmail(ctx, email)
	}

	user, err := s.users.UpdateProfile(ctx, email, patch)
	if err != nil {
		return nil, notFoundOr("update profile", err, msgUserNotFound)
	}
	return user, nil
}

// ListUsers returns the users matching params, never including the caller,
// each annotated with the caller's connection status. Meta is set only
// for paginated queries.
func (s *ProfileService) ListUsers(ctx context.Context, email string, params validation.ListParams) ([]models.UserWithStatus, *models.PageMeta, error) {
	caller, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, notFoundOr("list users", err, msgCurrentUserNotFound)
	}

	q := params.Query(caller.Email)
	users, err := s.users.List(ctx, q)
	if err != nil {
		return nil, nil, internal("list users", err)
	}

	var meta *models.PageMeta
	if params.Paginated() {
		total, err := s.users.Count(ctx, q)
		if err != nil {
			return nil, nil, internal("count users", err)
		}
		page, limit := params.PageAndLimit()
		m := models.NewPageMeta(page, limit, total)
		meta = &m
	}

	reqs, err := s.requests.ListInvolving(ctx, caller.ID)
	if err != nil {
		return nil, nil, internal("list users: requests", err)
	}
	statuses := ConnectionStatuses(caller.ID, reqs)

	out := make([]models.UserWithStatus, 0, len(users))
	for _, u := range users {
		st, ok := statuses[u.ID]
		if !ok {
			st = models.ConnectionNone
		}
		out = append(out, models.UserWithStatus{User: u, ConnectionStatus: st})
	}
	return out, meta, nil
}

// ConnectionStatuses maps each counterpart of callerID to the status the
// caller sees: accepted in either direction wins, otherwise the status of a
// request the caller sent. Requests the caller merely received and has not
// accepted do not show.
func ConnectionStatuses(callerID string, reqs []models.ConnectionRequest) map[string]models.ConnectionStatus {
	out := make(map[string]models.ConnectionStatus, len(reqs))
	for _, r := range reqs {
		switch {
		case r.Status == models.RequestStatusAccepted:
			other := r.ToUser
			if r.ToUser == callerID {
				other = r.FromUser
			}
			out[other] = models.ConnectionAccepted
		case r.FromUser == callerID:
			if out[r.ToUser] != models.ConnectionAccepted {
				out[r.ToUser] = models.ConnectionStatus(r.Status)
			}
		}
	}
	return out
}
