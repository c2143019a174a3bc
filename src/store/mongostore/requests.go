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

type requestDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	FromUser  primitive.ObjectID   `bson:"fromUser"`
	ToUser    primitive.ObjectID   `bson:"toUser"`
	Status    models.RequestStatus `bson:"status"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d requestDoc) toModel() *models.ConnectionRequest {
	return &models.ConnectionRequest{
		ID:        d.ID.Hex(),
		FromUser:  d.FromUser.Hex(),
		ToUser:    d.ToUser.Hex(),
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// RequestStore implements store.RequestStore on the requests collection.
type RequestStore struct {
	c       *mongo.Collection
	timeout time.Duration
}

var _ store.RequestStore = (*RequestStore)(nil)

func parseIDs(ids ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(ids))
	for i, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, store.ErrInvalidID
		}
		out[i] = oid
	}
	return out, nil
}

func (s *RequestStore) Create(ctx context.Context, r *models.ConnectionRequest) error {
	oids, err := parseIDs(r.FromUser, r.ToUser)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := toMS(time.Now())
	doc := requestDoc{
		ID:        primitive.NewObjectID(),
		FromUser:  oids[0],
		ToUser:    oids[1],
		Status:    r.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Status == "" {
		doc.Status = models.RequestStatusPending
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create request: %w", store.ErrDuplicate)
		}
		return fmt.Errorf("create request: %w", err)
	}

	*r = *doc.toModel()
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	oids, err := parseIDs(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oids[0]})
}

func (s *RequestStore) FindByPair(ctx context.Context, fromUser, toUser string) (*models.ConnectionRequest, error) {
	oids, err := parseIDs(fromUser, toUser)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"fromUser": oids[0], "toUser": oids[1]})
}

func (s *RequestStore) findOne(ctx context.Context, filter bson.M) (*models.ConnectionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc requestDoc
	if err := s.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return doc.toModel(), nil
}

func (s *RequestStore) ListIncoming(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	oids, err := parseIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{"toUser": oids[0]})
}

func (s *RequestStore) ListOutgoing(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	oids, err := parseIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{"fromUser": oids[0]})
}

func (s *RequestStore) ListInvolving(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	oids, err := parseIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"fromUser": oids[0]},
		bson.M{"toUser": oids[0]},
	}})
}

func (s *RequestStore) find(ctx context.Context, filter bson.M) ([]models.ConnectionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer cur.Close(ctx)

	var docs []requestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}

	out := make([]models.ConnectionRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toModel())
	}
	return out, nil
}

func (s *RequestStore) TransitionFromPending(ctx context.Context, id, toUser string, status models.RequestStatus) (*models.ConnectionRequest, error) {
	oids, err := parseIDs(id, toUser)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{
		"_id":    oids[0],
		"toUser": oids[1],
		"status": models.RequestStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": toMS(time.Now()),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc requestDoc
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrConflictingUpdate
		}
		return nil, fmt.Errorf("transition request: %w", err)
	}
	return doc.toModel(), nil
}
