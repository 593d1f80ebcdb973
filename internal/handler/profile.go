package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookish/account-service/internal/middleware"
	"github.com/bookish/account-service/internal/model"
	"github.com/bookish/account-service/internal/repository"
)

// ProfileHandler bundles dependencies for the author profile endpoints.
type ProfileHandler struct {
	Users   repository.UserStore
	Authors repository.AuthorStore
}

func NewProfileHandler(users repository.UserStore, authors repository.AuthorStore) *ProfileHandler {
	return &ProfileHandler{Users: users, Authors: authors}
}

type authorUpdateReq struct {
	Bio      string `json:"bio"`
	Category string `json:"category"`
}

// GetAuthorProfile returns the restricted projection of an author
// account.  The caller must be authenticated; the target must exist and
// carry the author role.
func (h *ProfileHandler) GetAuthorProfile(c echo.Context) error {
	authorID := c.Param("authorId")
	if authorID == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid request"})
	}
	oid, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invalid request, invalid userType/profile"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, oid)
	if err != nil || u.UserType != model.RoleAuthor {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invalid request, invalid userType/profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile": authorProfileResp{
			ID:       u.ID.Hex(),
			Username: u.Username,
			Email:    u.Email,
			UserType: u.UserType,
		},
	})
}

// UpdateAuthorProfile updates the caller's own author document.  The
// RequireAuthor middleware has already rejected non-author callers.
func (h *ProfileHandler) UpdateAuthorProfile(c echo.Context) error {
	u := middleware.UserFromContext(c)

	var req authorUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	category := model.ParseAuthorCategory(req.Category)
	if err := h.Authors.Update(ctx, u.ID, strings.TrimSpace(req.Bio), category); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated."})
}
