package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/halalbiye/halalbiye-server/src/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	usersCollection    = "users"
	requestsCollection = "requests"
)

// Store is the MongoDB backend. It owns the client and closes it on Close.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *UserStore
	requests *RequestStore
	log      *zap.Logger
}

var _ store.Backend = (*Store)(nil)

// New prepares the collections of database dbName and ensures their indexes.
// Every store call is bounded by timeout.
func New(ctx context.Context, client *mongo.Client, dbName string, timeout time.Duration, log *zap.Logger) (*Store, error) {
	db := client.Database(dbName)
	s := &Store{
		client:   client,
		db:       db,
		users:    &UserStore{c: db.Collection(usersCollection), timeout: timeout},
		requests: &RequestStore{c: db.Collection(requestsCollection), timeout: timeout},
		log:      log,
	}

	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	log.Info("mongo indexes ensured", zap.String("database", dbName))
	return s, nil
}

func (s *Store) Users() store.UserStore       { return s.users }
func (s *Store) Requests() store.RequestStore { return s.requests }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// toMS truncates t to the millisecond precision of BSON dates.
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
