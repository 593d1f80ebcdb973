package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookish/account-service/internal/model"
)

// AuthorsCollection is the name of the author profile collection.
const AuthorsCollection = "authors"

// AuthorStore persists the author role extension.
type AuthorStore interface {
	Create(ctx context.Context, a *model.Author) error
	GetByOwner(ctx context.Context, owner primitive.ObjectID) (*model.Author, error)
	Update(ctx context.Context, owner primitive.ObjectID, bio string, category model.AuthorCategory) error
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error
}

// AuthorRepo is the mongo-backed AuthorStore.
type AuthorRepo struct{ col *mongo.Collection }

func NewAuthorRepo(db *mongo.Database) *AuthorRepo {
	return &AuthorRepo{col: db.Collection(AuthorsCollection)}
}

// Create inserts the profile document.  The unique index on owner keeps
// the one-to-one relation with the account.
func (r *AuthorRepo) Create(ctx context.Context, a *model.Author) error {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	if a.Category == "" {
		a.Category = model.CategoryOthers
	}
	if a.Products == nil {
		a.Products = []primitive.ObjectID{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, a)
	return err
}

// GetByOwner fetches the profile owned by the given account.
func (r *AuthorRepo) GetByOwner(ctx context.Context, owner primitive.ObjectID) (*model.Author, error) {
	var a model.Author
	err := r.col.FindOne(ctx, bson.M{"owner": owner}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Update sets bio and category on the owner's profile.
func (r *AuthorRepo) Update(ctx context.Context, owner primitive.ObjectID, bio string, category model.AuthorCategory) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"owner": owner}, bson.M{"$set": bson.M{
		"bio":       bio,
		"category":  category,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes the profile, used when the owning account is
// rolled back.
func (r *AuthorRepo) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"owner": owner})
	return err
}
