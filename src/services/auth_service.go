package services

import (
	"context"
	"errors"
	"time"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/metrics"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/halalbiye/halalbiye-server/src/store/revocation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService logs users in and out and checks session tokens.
type AuthService struct {
	users   store.UserStore
	tokens  *lib.TokenManager
	revoked revocation.List
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(users store.UserStore, tokens *lib.TokenManager, revoked revocation.List, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoked: revoked, log: log, now: time.Now}
}

// Login checks the credentials and issues a session token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, lib.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Login("unknown_user")
		}
		return nil, lib.Session{}, notFoundOr("login", err, msgUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.Login("bad_password")
		return nil, lib.Session{}, apperror.Unauthorized(msgBadCredentials)
	}

	session, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, lib.Session{}, internal("login", err)
	}

	metrics.Login("success")
	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return user, session, nil
}

// Logout revokes the token for the rest of its lifetime. Failures are
// logged and otherwise ignored; the caller always clears the cookie.
func (s *AuthService) Logout(ctx context.Context, claims *lib.Claims) {
	if claims == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		s.log.Warn("token revocation failed", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// Authenticate verifies token and rejects it when revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*lib.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, lib.ErrTokenExpired) {
			return nil, apperror.Unauthorized("Session expired")
		}
		return nil, apperror.Unauthorized("Invalid token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Error("token revocation check failed", zap.Error(err))
		return nil, apperror.Unavailable("Session check unavailable")
	}
	if revoked {
		return nil, apperror.Unauthorized("Session has been revoked")
	}
	return claims, nil
}
