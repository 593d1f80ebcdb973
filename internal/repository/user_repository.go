package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookish/account-service/internal/model"
)

// UsersCollection is the name of the account collection.
const UsersCollection = "users"

// UserStore is the persistence capability handlers depend on.  The mongo
// implementation lives below; tests substitute an in-memory double.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username, email string) error
	SetActivationToken(ctx context.Context, id primitive.ObjectID, token string) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	PushToken(ctx context.Context, id primitive.ObjectID, token string) error
	PullToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepo is the mongo-backed UserStore.
type UserRepo struct{ col *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection(UsersCollection)}
}

// Create inserts an account document and returns its id.  The caller
// hashes the password beforehand; Verified is forced false here no
// matter what the caller set, per the registration invariant.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Verified = false
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Tokens == nil {
		u.Tokens = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if isDuplicateKey(err) {
			return primitive.NilObjectID, ErrEmailExists
		}
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sets a new username and email.  The unique index on
// email still applies, so a conflicting address surfaces as ErrEmailExists.
func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.update(ctx, id, bson.M{"username": username, "email": email})
	if isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// SetActivationToken stores a fresh plaintext activation code on the
// account, replacing any previous one.
func (r *UserRepo) SetActivationToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.update(ctx, id, bson.M{"activationToken": token})
}

// MarkVerified flips the account to verified and clears the activation
// token in the same write.
func (r *UserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"verified": true, "activationToken": ""})
}

// UpdatePassword stores a new bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.update(ctx, id, bson.M{"password": hash})
}

// PushToken appends a session token.  Concurrent logins interleave as
// independent $push operations.
func (r *UserRepo) PushToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullToken removes one session token.  Removing an absent token is a
// no-op success, which makes sign-out idempotent.
func (r *UserRepo) PullToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// ClearTokens ends every session of the account.
func (r *UserRepo) ClearTokens(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"tokens": []string{}})
}

// Delete hard-removes the account.  Used only as a compensating action
// when a post-creation side effect fails.
func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *UserRepo) update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
