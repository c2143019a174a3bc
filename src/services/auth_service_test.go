package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/mocks"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	users   *mocks.MockUserStore
	revoked *mocks.MockList
	tokens  *lib.TokenManager
	svc     *AuthService
	ctx     context.Context
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.revoked = mocks.NewMockList(s.ctrl)
	s.tokens = lib.NewTokenManager("test-secret", time.Hour)
	s.svc = NewAuthService(s.users, s.tokens, s.revoked, zap.NewNop())
	s.ctx = context.Background()
}

func (s *AuthServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) user(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return &models.User{ID: aliceID, Email: "alice@example.com", Password: string(hash)}
}

func (s *AuthServiceSuite) TestLogin_Success() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(s.user("secret1"), nil)

	user, session, err := s.svc.Login(s.ctx, "alice@example.com", "secret1")
	s.Require().NoError(err)
	s.Equal(aliceID, user.ID)
	s.NotEmpty(session.Token)
	s.NotEmpty(session.ID)

	claims, err := s.tokens.Verify(session.Token)
	s.Require().NoError(err)
	s.Equal("alice@example.com", claims.Email())
}

func (s *AuthServiceSuite) TestLogin_UnknownEmail() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, store.ErrNotFound)

	_, _, err := s.svc.Login(s.ctx, "ghost@example.com", "secret1")
	requireAppError(s.T(), err, fiber.StatusNotFound, "User not found")
}

func (s *AuthServiceSuite) TestLogin_WrongPassword() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(s.user("secret1"), nil)

	_, session, err := s.svc.Login(s.ctx, "alice@example.com", "wrong-one")
	requireAppError(s.T(), err, fiber.StatusUnauthorized, "Invalid email or password")
	s.Empty(session.Token)
}

func (s *AuthServiceSuite) TestLogin_StoreFailure() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, _, err := s.svc.Login(s.ctx, "alice@example.com", "secret1")
	requireAppError(s.T(), err, fiber.StatusInternalServerError, "Something went wrong!")
}

func (s *AuthServiceSuite) TestAuthenticate_Valid() {
	session, err := s.tokens.Generate("alice@example.com")
	s.Require().NoError(err)
	s.revoked.EXPECT().IsRevoked(gomock.Any(), session.ID).Return(false, nil)

	claims, err := s.svc.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("alice@example.com", claims.Email())
}

func (s *AuthServiceSuite) TestAuthenticate_Malformed() {
	_, err := s.svc.Authenticate(s.ctx, "not-a-token")
	requireAppError(s.T(), err, fiber.StatusUnauthorized, "Invalid token")
}

func (s *AuthServiceSuite) TestAuthenticate_Revoked() {
	session, err := s.tokens.Generate("alice@example.com")
	s.Require().NoError(err)
	s.revoked.EXPECT().IsRevoked(gomock.Any(), session.ID).Return(true, nil)

	_, err = s.svc.Authenticate(s.ctx, session.Token)
	requireAppError(s.T(), err, fiber.StatusUnauthorized, "Session has been revoked")
}

func (s *AuthServiceSuite) TestAuthenticate_RevocationStoreDown() {
	session, err := s.tokens.Generate("alice@example.com")
	s.Require().NoError(err)
	s.revoked.EXPECT().IsRevoked(gomock.Any(), session.ID).Return(false, errors.New("dial tcp: refused"))

	_, err = s.svc.Authenticate(s.ctx, session.Token)
	requireAppError(s.T(), err, fiber.StatusServiceUnavailable, "Session check unavailable")
}

func (s *AuthServiceSuite) TestLogout_RevokesForRemainingLifetime() {
	session, err := s.tokens.Generate("alice@example.com")
	s.Require().NoError(err)
	claims, err := s.tokens.Verify(session.Token)
	s.Require().NoError(err)

	now := claims.ExpiresAt.Add(-10 * time.Minute)
	s.svc.now = func() time.Time { return now }
	s.revoked.EXPECT().Revoke(gomock.Any(), session.ID, 10*time.Minute).Return(nil)

	s.svc.Logout(s.ctx, claims)
}

func (s *AuthServiceSuite) TestLogout_IgnoresRevocationFailure() {
	session, err := s.tokens.Generate("alice@example.com")
	s.Require().NoError(err)
	claims, err := s.tokens.Verify(session.Token)
	s.Require().NoError(err)
	s.revoked.EXPECT().Revoke(gomock.Any(), session.ID, gomock.Any()).Return(errors.New("redis down"))

	s.NotPanics(func() { s.svc.Logout(s.ctx, claims) })
}

func (s *AuthServiceSuite) TestLogout_NilClaims() {
	s.svc.Logout(s.ctx, nil)
}
