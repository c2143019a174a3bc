package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
//   - users: unique email
//   - requests: unique (fromUser, toUser), plus toUser/fromUser by recency for listings
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("created_asc"),
		},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("ensure users indexes: %w", err)
	}

	requestIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fromUser", Value: 1}, {Key: "toUser", Value: 1}},
			Options: options.Index().SetName("uniq_from_to").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "toUser", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("to_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "fromUser", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("from_created_desc"),
		},
	}
	if _, err := db.Collection(requestsCollection).Indexes().CreateMany(ctx, requestIdx); err != nil {
		return fmt.Errorf("ensure requests indexes: %w", err)
	}
	return nil
}
