// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no document. Handlers
// translate this into 403/404 responses depending on the endpoint.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email. Handlers translate this into HTTP 422.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a mongo unique-index violation.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
