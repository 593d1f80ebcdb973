package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookish/account-service/internal/model"
)

// RequireAuthor enforces that the authenticated caller's own role is
// author.  It assumes Authenticate ran earlier and stored the user in
// the context; a missing user or a plain user account is rejected with
// the profile-type error the API has always returned.
func RequireAuthor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := UserFromContext(c)
		if u == nil || u.UserType != model.RoleAuthor {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid request, invalid userType/profile!"})
		}
		return next(c)
	}
}
