package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookish/account-service/internal/middleware"
	"github.com/bookish/account-service/internal/model"
	"github.com/bookish/account-service/internal/repository"
	"github.com/bookish/account-service/internal/utils"
)

type stubUsers struct {
	user *model.User
}

func (s *stubUsers) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repository.ErrNotFound
}

const secret = "middleware-secret"

func runAuth(t *testing.T, users middleware.UserFinder, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := middleware.Authenticate(secret, users)(func(c echo.Context) error {
		u := middleware.UserFromContext(c)
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID.Hex()})
	})

	req := httptest.NewRequest(http.MethodGet, "/is-auth", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	require.NoError(t, err)
	return rec
}

func TestAuthenticateMissingBearer(t *testing.T) {
	rec := runAuth(t, &stubUsers{}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized request!"}`, rec.Body.String())
}

func TestAuthenticateBadSignature(t *testing.T) {
	token, err := utils.NewSessionToken("other-secret", primitive.NewObjectID().Hex())
	require.NoError(t, err)
	rec := runAuth(t, &stubUsers{}, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized request!"}`, rec.Body.String())
}

func TestAuthenticateRevokedSession(t *testing.T) {
	// Signature verifies but the token is not in the session list.
	u := &model.User{ID: primitive.NewObjectID(), Tokens: []string{}}
	token, err := utils.NewSessionToken(secret, u.ID.Hex())
	require.NoError(t, err)

	rec := runAuth(t, &stubUsers{user: u}, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized request!"}`, rec.Body.String())
}

func TestAuthenticateActiveSession(t *testing.T) {
	u := &model.User{ID: primitive.NewObjectID()}
	token, err := utils.NewSessionToken(secret, u.ID.Hex())
	require.NoError(t, err)
	u.Tokens = []string{token}

	rec := runAuth(t, &stubUsers{user: u}, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.ID.Hex())
}
