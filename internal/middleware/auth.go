package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookish/account-service/internal/model"
	"github.com/bookish/account-service/internal/utils"
)

// Context keys under which Authenticate stores the caller.
const (
	ContextUserKey  = "user"
	ContextTokenKey = "sessionToken"
)

// UserFinder is the slice of the user store the middleware needs.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Authenticate returns an Echo middleware that validates a Bearer
// session token.  A token is accepted only when its signature verifies
// AND it is still present in the owning account's session list; this
// double check lets individual sessions be revoked by list removal
// without a separate revocation store.  Every failure, whatever the
// cause, yields the same generic 403 so callers cannot probe which
// check rejected them.  On success the user document and the raw token
// are stored in the request context.
func Authenticate(secret string, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return unauthorized(c)
			}
			oid, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				return unauthorized(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, oid)
			if err != nil {
				return unauthorized(c)
			}
			if !u.HasSession(raw) {
				return unauthorized(c)
			}

			c.Set(ContextUserKey, u)
			c.Set(ContextTokenKey, raw)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized request!"})
}

// UserFromContext returns the authenticated user stored by Authenticate.
func UserFromContext(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}

// TokenFromContext returns the raw session token stored by Authenticate.
func TokenFromContext(c echo.Context) string {
	t, _ := c.Get(ContextTokenKey).(string)
	return t
}
