package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	models.Profile `bson:",inline"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Password:  d.Password,
		Profile:   d.Profile,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var summaryProjection = bson.M{"password": 0, "createdAt": 0, "updatedAt": 0}

// UserStore implements store.UserStore on the users collection.
type UserStore struct {
	c       *mongo.Collection
	timeout time.Duration
}

var _ store.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := toMS(time.Now())
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Email:     u.Email,
		Password:  u.Password,
		Profile:   u.Profile,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %q: %w", u.Email, store.ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc userDoc
	if err := s.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *UserStore) Summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		out[doc.ID.Hex()] = doc.toModel().Summary()
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, email string, patch models.Profile) (*models.User, error) {
	set := bson.M{"updatedAt": toMS(time.Now())}
	for k, v := range patch.Values() {
		set[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err := s.c.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toModel(), nil
}

func userFilter(q models.UserQuery) bson.M {
	filter := bson.M{}
	for k, v := range q.Match.Values() {
		filter[k] = v
	}
	if q.ExcludeEmail != "" {
		filter["email"] = bson.M{"$ne": q.ExcludeEmail}
	}
	return filter
}

func (s *UserStore) List(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := s.c.Find(ctx, userFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toModel())
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context, q models.UserQuery) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.c.CountDocuments(ctx, userFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
