// Package storetest holds the behaviour every store.Backend must share.
// Backend packages run it from their own tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/stretchr/testify/suite"
)

// BackendSuite runs against a fresh backend per test.
type BackendSuite struct {
	suite.Suite
	NewBackend func() store.Backend

	ctx     context.Context
	backend store.Backend
	users   store.UserStore
	reqs    store.RequestStore
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.NewBackend()
	s.users = s.backend.Users()
	s.reqs = s.backend.Requests()
}

func ptr[T any](v T) *T { return &v }

func (s *BackendSuite) mkUser(email string, p models.Profile) *models.User {
	u := &models.User{Email: email, Password: "hash", Profile: p}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *BackendSuite) TestPing() {
	s.Require().NoError(s.backend.Ping(s.ctx))
}

func (s *BackendSuite) TestUserCreateAndGet() {
	u := s.mkUser("a@x.com", models.Profile{Name: ptr("Amina"), Age: ptr(27), Height: ptr(162.5)})
	s.True(models.ValidID(u.ID))
	s.False(u.CreatedAt.IsZero())

	byEmail, err := s.users.GetByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
	s.Equal("hash", byEmail.Password)
	s.Equal("Amina", *byEmail.Name)
	s.Equal(27, *byEmail.Age)
	s.InDelta(162.5, *byEmail.Height, 0.0001)
	s.Nil(byEmail.Gender)

	byID, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("a@x.com", byID.Email)
}

func (s *BackendSuite) TestUserLookupErrors() {
	_, err := s.users.GetByEmail(s.ctx, "nobody@x.com")
	s.ErrorIs(err, store.ErrNotFound)

	_, err = s.users.GetByID(s.ctx, models.NewID())
	s.ErrorIs(err, store.ErrNotFound)

	_, err = s.users.GetByID(s.ctx, "not-an-id")
	s.ErrorIs(err, store.ErrInvalidID)
}

func (s *BackendSuite) TestUserDuplicateEmail() {
	s.mkUser("a@x.com", models.Profile{})

	err := s.users.Create(s.ctx, &models.User{Email: "a@x.com", Password: "other"})
	s.ErrorIs(err, store.ErrDuplicate)
}

func (s *BackendSuite) TestUpdateProfile() {
	s.mkUser("a@x.com", models.Profile{Name: ptr("Old"), Religion: ptr("Islam")})

	gender := models.GenderFemale
	updated, err := s.users.UpdateProfile(s.ctx, "a@x.com", models.Profile{Name: ptr("New"), Gender: &gender})
	s.Require().NoError(err)
	s.Equal("New", *updated.Name)
	s.Equal(models.GenderFemale, *updated.Gender)
	s.Equal("Islam", *updated.Religion)
	s.Equal("hash", updated.Password)

	_, err = s.users.UpdateProfile(s.ctx, "nobody@x.com", models.Profile{Name: ptr("x")})
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *BackendSuite) TestListAndCount() {
	male, female := models.GenderMale, models.GenderFemale
	a := s.mkUser("a@x.com", models.Profile{Gender: &female, Location: ptr("Dhaka")})
	s.mkUser("b@x.com", models.Profile{Gender: &male, Location: ptr("Dhaka")})
	c := s.mkUser("c@x.com", models.Profile{Gender: &female, Location: ptr("Sylhet")})

	all, err := s.users.List(s.ctx, models.UserQuery{})
	s.Require().NoError(err)
	s.Len(all, 3)

	females, err := s.users.List(s.ctx, models.UserQuery{Match: models.Profile{Gender: &female}})
	s.Require().NoError(err)
	s.Require().Len(females, 2)
	s.Equal(a.ID, females[0].ID)
	s.Equal(c.ID, females[1].ID)

	notA, err := s.users.List(s.ctx, models.UserQuery{Match: models.Profile{Location: ptr("Dhaka")}, ExcludeEmail: "a@x.com"})
	s.Require().NoError(err)
	s.Require().Len(notA, 1)
	s.Equal("b@x.com", notA[0].Email)

	page, err := s.users.List(s.ctx, models.UserQuery{Skip: 1, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("b@x.com", page[0].Email)

	n, err := s.users.Count(s.ctx, models.UserQuery{Match: models.Profile{Gender: &female}, Skip: 1, Limit: 1})
	s.Require().NoError(err)
	s.EqualValues(2, n)
}

func (s *BackendSuite) TestSummaries() {
	a := s.mkUser("a@x.com", models.Profile{Name: ptr("A")})
	b := s.mkUser("b@x.com", models.Profile{Name: ptr("B")})

	got, err := s.users.Summaries(s.ctx, []string{a.ID, b.ID, models.NewID()})
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Equal("A", *got[a.ID].Name)
	s.Equal("b@x.com", got[b.ID].Email)

	empty, err := s.users.Summaries(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *BackendSuite) TestRequestCreateAndFind() {
	a := s.mkUser("a@x.com", models.Profile{})
	b := s.mkUser("b@x.com", models.Profile{})

	r := &models.ConnectionRequest{FromUser: a.ID, ToUser: b.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, r))
	s.True(models.ValidID(r.ID))
	s.Equal(models.RequestStatusPending, r.Status)

	got, err := s.reqs.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, got.FromUser)
	s.Equal(b.ID, got.ToUser)

	pair, err := s.reqs.FindByPair(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)
	s.Equal(r.ID, pair.ID)

	_, err = s.reqs.FindByPair(s.ctx, b.ID, a.ID)
	s.ErrorIs(err, store.ErrNotFound)

	_, err = s.reqs.GetByID(s.ctx, models.NewID())
	s.ErrorIs(err, store.ErrNotFound)

	_, err = s.reqs.GetByID(s.ctx, "xyz")
	s.ErrorIs(err, store.ErrInvalidID)
}

func (s *BackendSuite) TestRequestPairIsUniqueAndDirectional() {
	a := s.mkUser("a@x.com", models.Profile{})
	b := s.mkUser("b@x.com", models.Profile{})

	s.Require().NoError(s.reqs.Create(s.ctx, &models.ConnectionRequest{FromUser: a.ID, ToUser: b.ID}))

	err := s.reqs.Create(s.ctx, &models.ConnectionRequest{FromUser: a.ID, ToUser: b.ID})
	s.ErrorIs(err, store.ErrDuplicate)

	s.NoError(s.reqs.Create(s.ctx, &models.ConnectionRequest{FromUser: b.ID, ToUser: a.ID}))
}

func (s *BackendSuite) TestRequestListings() {
	a := s.mkUser("a@x.com", models.Profile{})
	b := s.mkUser("b@x.com", models.Profile{})
	c := s.mkUser("c@x.com", models.Profile{})

	first := &models.ConnectionRequest{FromUser: b.ID, ToUser: a.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &models.ConnectionRequest{FromUser: c.ID, ToUser: a.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, second))
	out := &models.ConnectionRequest{FromUser: a.ID, ToUser: c.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, out))

	in, err := s.reqs.ListIncoming(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(in, 2)
	s.Equal(second.ID, in[0].ID)
	s.Equal(first.ID, in[1].ID)

	outgoing, err := s.reqs.ListOutgoing(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(outgoing, 1)
	s.Equal(out.ID, outgoing[0].ID)

	involving, err := s.reqs.ListInvolving(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Len(involving, 3)

	none, err := s.reqs.ListIncoming(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *BackendSuite) TestTransitionFromPending() {
	a := s.mkUser("a@x.com", models.Profile{})
	b := s.mkUser("b@x.com", models.Profile{})
	r := &models.ConnectionRequest{FromUser: a.ID, ToUser: b.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, r))

	// Only the recipient matches the condition.
	_, err := s.reqs.TransitionFromPending(s.ctx, r.ID, a.ID, models.RequestStatusAccepted)
	s.ErrorIs(err, store.ErrConflictingUpdate)

	got, err := s.reqs.TransitionFromPending(s.ctx, r.ID, b.ID, models.RequestStatusAccepted)
	s.Require().NoError(err)
	s.Equal(models.RequestStatusAccepted, got.Status)
	s.False(got.UpdatedAt.Before(got.CreatedAt))

	_, err = s.reqs.TransitionFromPending(s.ctx, r.ID, b.ID, models.RequestStatusRejected)
	s.ErrorIs(err, store.ErrConflictingUpdate)

	stored, err := s.reqs.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestStatusAccepted, stored.Status)
}

func (s *BackendSuite) TestConcurrentTransitionsHaveOneWinner() {
	a := s.mkUser("a@x.com", models.Profile{})
	b := s.mkUser("b@x.com", models.Profile{})
	r := &models.ConnectionRequest{FromUser: a.ID, ToUser: b.ID}
	s.Require().NoError(s.reqs.Create(s.ctx, r))

	statuses := []models.RequestStatus{
		models.RequestStatusAccepted, models.RequestStatusRejected,
		models.RequestStatusAccepted, models.RequestStatusRejected,
	}
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		winner models.RequestStatus
	)
	for _, st := range statuses {
		wg.Add(1)
		go func(st models.RequestStatus) {
			defer wg.Done()
			got, err := s.reqs.TransitionFromPending(s.ctx, r.ID, b.ID, st)
			if err != nil {
				return
			}
			mu.Lock()
			wins++
			winner = got.Status
			mu.Unlock()
		}(st)
	}
	wg.Wait()

	s.Equal(1, wins)
	stored, err := s.reqs.GetByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(winner, stored.Status)
}
