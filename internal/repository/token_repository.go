package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookish/account-service/internal/model"
)

// Collection names for the two one-time token kinds.  Both share the
// same document shape and TTL policy and differ only in scope.
const (
	VerificationTokensCollection = "email_verification_tokens"
	ResetTokensCollection        = "password_reset_tokens"
)

// TokenStore persists one-time tokens keyed by owner.
type TokenStore interface {
	Replace(ctx context.Context, owner primitive.ObjectID, hash string) error
	GetByOwner(ctx context.Context, owner primitive.ObjectID) (*model.OneTimeToken, error)
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error
}

// TokenRepo is the mongo-backed TokenStore.  One instance serves the
// verification collection, another the reset collection.
type TokenRepo struct{ col *mongo.Collection }

func NewTokenRepo(db *mongo.Database, collection string) *TokenRepo {
	return &TokenRepo{col: db.Collection(collection)}
}

// Replace atomically upserts the owner's token record.  A single
// ReplaceOne keyed by owner leaves no window in which two live tokens
// exist, unlike a delete-then-create pair.
func (r *TokenRepo) Replace(ctx context.Context, owner primitive.ObjectID, hash string) error {
	doc := model.OneTimeToken{
		Owner:     owner,
		Token:     hash,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"owner": owner}, doc, options.Replace().SetUpsert(true))
	return err
}

// GetByOwner fetches the live token record for an owner.  The TTL index
// removes expired records, so absence covers both "never issued" and
// "expired".
func (r *TokenRepo) GetByOwner(ctx context.Context, owner primitive.ObjectID) (*model.OneTimeToken, error) {
	var t model.OneTimeToken
	err := r.col.FindOne(ctx, bson.M{"owner": owner}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// DeleteByOwner consumes the owner's token record.
func (r *TokenRepo) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"owner": owner})
	return err
}
