package services

import (
	"context"
	"errors"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/metrics"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"go.uber.org/zap"
)

// RequestService runs the connection request lifecycle:
// pending, then accepted or rejected by the recipient, once.
type RequestService struct {
	users    store.UserStore
	requests store.RequestStore
	log      *zap.Logger
}

func NewRequestService(users store.UserStore, requests store.RequestStore, log *zap.Logger) *RequestService {
	return &RequestService{users: users, requests: requests, log: log}
}

// Send creates a pending request from the caller to toUserID.
func (s *RequestService) Send(ctx context.Context, fromEmail, toUserID string) (*models.ConnectionRequest, error) {
	sender, err := s.users.GetByEmail(ctx, fromEmail)
	if err != nil {
		return nil, notFoundOr("send request", err, msgSenderNotFound)
	}

	if !models.ValidID(toUserID) {
		return nil, apperror.InvalidID("toUser")
	}
	if sender.ID == toUserID {
		return nil, apperror.BadRequest(msgSelfRequest)
	}

	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		return nil, notFoundOr("send request: target", err, msgTargetNotFound)
	}

	_, err = s.requests.FindByPair(ctx, sender.ID, toUserID)
	switch {
	case err == nil:
		return nil, apperror.Conflict(msgRequestExists)
	case !errors.Is(err, store.ErrNotFound):
		return nil, internal("send request", err)
	}

	req := &models.ConnectionRequest{
		FromUser: sender.ID,
		ToUser:   toUserID,
		Status:   models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperror.Conflict(msgRequestExists)
		}
		return nil, internal("send request", err)
	}

	metrics.RequestTransition(string(models.RequestStatusPending))
	s.log.Info("connection request sent",
		zap.String("request_id", req.ID),
		zap.String("from", req.FromUser),
		zap.String("to", req.ToUser),
	)
	return req, nil
}

// Incoming lists requests addressed to the caller, senders expanded.
func (s *RequestService) Incoming(ctx context.Context, email string) ([]models.RequestView, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr("incoming requests", err, msgUserNotFound)
	}

	reqs, err := s.requests.ListIncoming(ctx, user.ID)
	if err != nil {
		return nil, internal("incoming requests", err)
	}

	summaries, err := s.summaries(ctx, reqs, func(r models.ConnectionRequest) string { return r.FromUser })
	if err != nil {
		return nil, err
	}

	out := make([]models.RequestView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.IncomingView(lookup(summaries, r.FromUser)))
	}
	return out, nil
}

// Outgoing lists requests sent by the caller, recipients expanded.
func (s *RequestService) Outgoing(ctx context.Context, email string) ([]models.RequestView, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr("outgoing requests", err, msgUserNotFound)
	}

	reqs, err := s.requests.ListOutgoing(ctx, user.ID)
	if err != nil {
		return nil, internal("outgoing requests", err)
	}

	summaries, err := s.summaries(ctx, reqs, func(r models.ConnectionRequest) string { return r.ToUser })
	if err != nil {
		return nil, err
	}

	out := make([]models.RequestView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.OutgoingView(lookup(summaries, r.ToUser)))
	}
	return out, nil
}

func (s *RequestService) summaries(ctx context.Context, reqs []models.ConnectionRequest, side func(models.ConnectionRequest) string) (map[string]models.UserSummary, error) {
	if len(reqs) == 0 {
		return map[string]models.UserSummary{}, nil
	}
	ids := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		id := side(r)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	out, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, internal("expand requests", err)
	}
	return out, nil
}

func lookup(m map[string]models.UserSummary, id string) *models.UserSummary {
	if sum, ok := m[id]; ok {
		return &sum
	}
	return nil
}

// Accept moves a pending request addressed to the caller to accepted.
func (s *RequestService) Accept(ctx context.Context, requestID, email string) (*models.ConnectionRequest, error) {
	return s.respond(ctx, requestID, email, models.RequestStatusAccepted)
}

// Decline moves a pending request addressed to the caller to rejected.
func (s *RequestService) Decline(ctx context.Context, requestID, email string) (*models.ConnectionRequest, error) {
	return s.respond(ctx, requestID, email, models.RequestStatusRejected)
}

func (s *RequestService) respond(ctx context.Context, requestID, email string, to models.RequestStatus) (*models.ConnectionRequest, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr("respond to request", err, msgUserNotFound)
	}

	if !models.ValidID(requestID) {
		return nil, apperror.InvalidID("id")
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr("respond to request", err, msgRequestNotFound)
	}

	if req.ToUser != user.ID {
		return nil, apperror.Forbidden(msgNotAuthorized)
	}
	if req.Status.Terminal() {
		return nil, apperror.BadRequest(msgNotPending)
	}

	updated, err := s.requests.TransitionFromPending(ctx, req.ID, user.ID, to)
	if err != nil {
		if errors.Is(err, store.ErrConflictingUpdate) {
			return nil, apperror.BadRequest(msgNotPending)
		}
		return nil, internal("respond to request", err)
	}

	metrics.RequestTransition(string(to))
	s.log.Info("connection request answered",
		zap.String("request_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}
