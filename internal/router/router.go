package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/bookish/account-service/internal/handler"
	"github.com/bookish/account-service/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to any feature
// group.  Currently it exposes only a health check, which load
// balancers and monitoring systems use to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints.  The credential
// lifecycle operations (signup, verification, password reset, signin)
// are public; session-bound operations take the Authenticate middleware
// which requires a live bearer session token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authMW echo.MiddlewareFunc) {
	e.POST("/signup", a.SignUp)
	e.POST("/verify-email", a.VerifyEmail)
	e.POST("/reverify-email", a.ResendVerification)
	e.POST("/reset-password", a.ResetPassword)
	e.POST("/verify-password-reset", a.VerifyPasswordReset)
	e.PUT("/update-password", a.UpdatePassword)
	e.POST("/signin", a.SignIn)

	e.GET("/is-auth", a.Profile, authMW)
	e.PUT("/update-profile", a.UpdateProfile, authMW)
	e.POST("/logout", a.LogOut, authMW)
}

// RegisterProfile registers the author profile endpoints.  Reads go
// through the response cache; the update route additionally requires
// the caller's own role to be author.
func RegisterProfile(e *echo.Echo, p *handler.ProfileHandler, authMW, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/profile")
	g.Use(authMW)
	g.GET("/author/:authorId", p.GetAuthorProfile, cacheMW)
	g.POST("/author/update-profile", p.UpdateAuthorProfile, middleware.RequireAuthor)
}
