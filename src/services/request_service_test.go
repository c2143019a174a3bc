package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/halalbiye/halalbiye-server/src/mocks"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type RequestServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	users    *mocks.MockUserStore
	requests *mocks.MockRequestStore
	svc      *RequestService
	ctx      context.Context

	alice *models.User
	bob   *models.User
}

func (s *RequestServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.requests = mocks.NewMockRequestStore(s.ctrl)
	s.svc = NewRequestService(s.users, s.requests, zap.NewNop())
	s.ctx = context.Background()

	s.alice = &models.User{ID: aliceID, Email: "alice@example.com"}
	s.bob = &models.User{ID: bobID, Email: "bob@example.com"}
}

func (s *RequestServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) TestSend_Creates() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(s.alice, nil)
	s.users.EXPECT().GetByID(gomock.Any(), bobID).Return(s.bob, nil)
	s.requests.EXPECT().FindByPair(gomock.Any(), aliceID, bobID).Return(nil, store.ErrNotFound)
	s.requests.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.ConnectionRequest) error {
		r.ID = reqID
		return nil
	})

	req, err := s.svc.Send(s.ctx, "alice@example.com", bobID)
	s.Require().NoError(err)
	s.Equal(reqID, req.ID)
	s.Equal(aliceID, req.FromUser)
	s.Equal(bobID, req.ToUser)
	s.Equal(models.RequestStatusPending, req.Status)
}

func (s *RequestServiceSuite) TestSend_UnknownSender() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)

	_, err := s.svc.Send(s.ctx, "ghost@example.com", bobID)
	requireAppError(s.T(), err, fiber.StatusNotFound, "Requesting user not found")
}

func (s *RequestServiceSuite) TestSend_MalformedTarget() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.alice, nil)

	_, err := s.svc.Send(s.ctx, "alice@example.com", "not-an-id")
	requireAppError(s.T(), err, fiber.StatusBadRequest, "Invalid ID")
}

func (s *RequestServiceSuite) TestSend_ToSelf() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.alice, nil)

	_, err := s.svc.Send(s.ctx, "alice@example.com", aliceID)
	requireAppError(s.T(), err, fiber.StatusBadRequest, "Cannot send request to yourself")
}

func (s *RequestServiceSuite) TestSend_UnknownTarget() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.alice, nil)
	s.users.EXPECT().GetByID(gomock.Any(), carolID).Return(nil, store.ErrNotFound)

	_, err := s.svc.Send(s.ctx, "alice@example.com", carolID)
	requireAppError(s.T(), err, fiber.StatusNotFound, "Target user not found")
}

func (s *RequestServiceSuite) TestSend_Duplicate() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.alice, nil)
	s.users.EXPECT().GetByID(gomock.Any(), bobID).Return(s.bob, nil)
	s.requests.EXPECT().FindByPair(gomock.Any(), aliceID, bobID).Return(&models.ConnectionRequest{ID: reqID}, nil)

	_, err := s.svc.Send(s.ctx, "alice@example.com", bobID)
	requireAppError(s.T(), err, fiber.StatusConflict, "Request already exists")
}

func (s *RequestServiceSuite) TestSend_LostRace() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.alice, nil)
	s.users.EXPECT().GetByID(gomock.Any(), bobID).Return(s.bob, nil)
	s.requests.EXPECT().FindByPair(gomock.Any(), aliceID, bobID).Return(nil, store.ErrNotFound)
	s.requests.EXPECT().Create(gomock.Any(), gomock.Any()).Return(store.ErrDuplicate)

	_, err := s.svc.Send(s.ctx, "alice@example.com", bobID)
	requireAppError(s.T(), err, fiber.StatusConflict, "Request already exists")
}

func (s *RequestServiceSuite) TestIncoming_ExpandsSenders() {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.users.EXPECT().GetByEmail(gomock.Any(), "bob@example.com").Return(s.bob, nil)
	s.requests.EXPECT().ListIncoming(gomock.Any(), bobID).Return([]models.ConnectionRequest{
		{ID: reqID, FromUser: aliceID, ToUser: bobID, Status: models.RequestStatusPending, CreatedAt: created},
		{ID: "64b7f0c2a1b2c3d4e5f6bbbb", FromUser: carolID, ToUser: bobID, Status: models.RequestStatusPending},
	}, nil)
	s.users.EXPECT().Summaries(gomock.Any(), []string{aliceID, carolID}).Return(map[string]models.UserSummary{
		aliceID: s.alice.Summary(),
	}, nil)

	views, err := s.svc.Incoming(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	s.Require().NotNil(views[0].FromUser.Summary)
	s.Equal("alice@example.com", views[0].FromUser.Summary.Email)
	s.Nil(views[0].ToUser.Summary)
	s.Equal(created, views[0].CreatedAt)

	// carol was deleted; the view keeps the bare id
	s.Nil(views[1].FromUser.Summary)
	s.Equal(carolID, views[1].FromUser.ID)
}

func (s *RequestServiceSuite) TestIncoming_Empty() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.bob, nil)
	s.requests.EXPECT().ListIncoming(gomock.Any(), bobID).Return(nil, nil)

	views, err := s.svc.Incoming(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.NotNil(views)
	s.Empty(views)
}

func (s *RequestServiceSuite) TestOutgoing_ExpandsRecipients() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(s.alice, nil)
	s.requests.EXPECT().ListOutgoing(gomock.Any(), aliceID).Return([]models.ConnectionRequest{
		{ID: reqID, FromUser: aliceID, ToUser: bobID, Status: models.RequestStatusAccepted},
	}, nil)
	s.users.EXPECT().Summaries(gomock.Any(), []string{bobID}).Return(map[string]models.UserSummary{
		bobID: s.bob.Summary(),
	}, nil)

	views, err := s.svc.Outgoing(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Require().NotNil(views[0].ToUser.Summary)
	s.Equal("bob@example.com", views[0].ToUser.Summary.Email)
	s.Equal(aliceID, views[0].FromUser.ID)
}

func (s *RequestServiceSuite) TestOutgoing_UnknownUser() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)

	_, err := s.svc.Outgoing(s.ctx, "ghost@example.com")
	requireAppError(s.T(), err, fiber.StatusNotFound, "User not found")
}

func (s *RequestServiceSuite) pending() *models.ConnectionRequest {
	return &models.ConnectionRequest{ID: reqID, FromUser: aliceID, ToUser: bobID, Status: models.RequestStatusPending}
}

func (s *RequestServiceSuite) TestAccept() {
	accepted := s.pending()
	accepted.Status = models.RequestStatusAccepted

	s.users.EXPECT().GetByEmail(gomock.Any(), "bob@example.com").Return(s.bob, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(s.pending(), nil)
	s.requests.EXPECT().TransitionFromPending(gomock.Any(), reqID, bobID, models.RequestStatusAccepted).Return(accepted, nil)

	req, err := s.svc.Accept(s.ctx, reqID, "bob@example.com")
	s.Require().NoError(err)
	s.Equal(models.RequestStatusAccepted, req.Status)
}

func (s *RequestServiceSuite) TestDecline() {
	rejected := s.pending()
	rejected.Status = models.RequestStatusRejected

	s.users.EXPECT().GetByEmail(gomock.Any(), "bob@example.com").Return(s.bob, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(s.pending(), nil)
	s.requests.EXPECT().TransitionFromPending(gomock.Any(), reqID, bobID, models.RequestStatusRejected).Return(rejected, nil)

	req, err := s.svc.Decline(s.ctx, reqID, "bob@example.com")
	s.Require().NoError(err)
	s.Equal(models.RequestStatusRejected, req.Status)
}

func (s *RequestServiceSuite) TestRespond_NotRecipient() {
	s.users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(s.alice, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(s.pending(), nil)

	_, err := s.svc.Accept(s.ctx, reqID, "alice@example.com")
	requireAppError(s.T(), err, fiber.StatusForbidden, "Not authorized")
}

func (s *RequestServiceSuite) TestRespond_AlreadyAnswered() {
	done := s.pending()
	done.Status = models.RequestStatusRejected
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.bob, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(done, nil)

	_, err := s.svc.Accept(s.ctx, reqID, "bob@example.com")
	requireAppError(s.T(), err, fiber.StatusBadRequest, "Request is not pending")
}

func (s *RequestServiceSuite) TestRespond_LostRace() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.bob, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(s.pending(), nil)
	s.requests.EXPECT().TransitionFromPending(gomock.Any(), reqID, bobID, models.RequestStatusRejected).
		Return(nil, store.ErrConflictingUpdate)

	_, err := s.svc.Decline(s.ctx, reqID, "bob@example.com")
	requireAppError(s.T(), err, fiber.StatusBadRequest, "Request is not pending")
}

func (s *RequestServiceSuite) TestRespond_BadIDs() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.bob, nil).Times(2)

	_, err := s.svc.Accept(s.ctx, "xyz", "bob@example.com")
	requireAppError(s.T(), err, fiber.StatusBadRequest, "Invalid ID")

	s.requests.EXPECT().GetByID(gomock.Any(), carolID).Return(nil, store.ErrNotFound)
	_, err = s.svc.Accept(s.ctx, carolID, "bob@example.com")
	requireAppError(s.T(), err, fiber.StatusNotFound, "Request not found")
}

func (s *RequestServiceSuite) TestRespond_StoreFailure() {
	s.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(s.bob, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), reqID).Return(nil, errors.New("timeout"))

	_, err := s.svc.Accept(s.ctx, reqID, "bob@example.com")
	requireAppError(s.T(), err, fiber.StatusInternalServerError, "Something went wrong!")
}
