package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OneTimeToken is an ephemeral credential document, used for both the
// email verification and the password reset collections.  Token holds a
// bcrypt hash of the emailed plaintext, so a leaked database does not
// disclose usable codes.  CreatedAt drives the TTL index that expires
// records one hour after issuance.  At most one live token exists per
// owner; issuing replaces any prior record.
type OneTimeToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     primitive.ObjectID `bson:"owner"`
	Token     string             `bson:"token"`
	CreatedAt time.Time          `bson:"createdAt"`
}
