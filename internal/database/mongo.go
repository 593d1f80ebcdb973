package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookish/account-service/internal/repository"
)

// tokenTTL is how long a verification or reset token stays alive.  The
// store enforces expiry itself via a TTL index, so workflow code never
// has to check timestamps.
const tokenTTL = time.Hour

// Open connects to MongoDB and verifies the connection.
func Open(uri, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(name), nil
}

// EnsureIndexes creates the indexes the data model relies on: the unique
// email index on users, the unique owner index on authors, and the TTL
// plus unique-owner indexes on both one-time token collections.  Index
// creation is idempotent, so this runs on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection(repository.UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(repository.AuthorsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	for _, name := range []string{
		repository.VerificationTokensCollection,
		repository.ResetTokensCollection,
	} {
		col := db.Collection(name)
		_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "owner", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32(tokenTTL.Seconds())),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
