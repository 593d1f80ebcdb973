package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account categories.  It gates the author
// profile endpoints; anything outside the set is normalized at parse
// time so handlers never compare raw strings.
type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
)

// ParseRole maps a request value onto a Role.  Unknown or empty values
// fall back to RoleUser, mirroring how registration treats the field as
// optional.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAuthor:
		return RoleAuthor
	default:
		return RoleUser
	}
}

// User is an account document in the `users` collection.
//
// Password only ever holds a bcrypt hash; hashing happens at the handler
// boundary before the document is persisted.  ActivationToken keeps the
// plaintext one-time code for display and testing while the hashed copy
// lives in the verification token collection; it is cleared once the
// email is verified.  Tokens holds the signed session tokens of all
// concurrent logins.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Username        string               `bson:"username"`
	Email           string               `bson:"email"`
	Password        string               `bson:"password"`
	UserType        Role                 `bson:"userType"`
	Verified        bool                 `bson:"verified"`
	ActivationToken string               `bson:"activationToken,omitempty"`
	Tokens          []string             `bson:"tokens"`
	Favorites       []primitive.ObjectID `bson:"favorites"`
	Avatar          string               `bson:"avatar,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

// HasSession reports whether the given session token is still active for
// this user.  Signature verification alone does not prove a session; the
// token must also be present in this list.
func (u *User) HasSession(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}
