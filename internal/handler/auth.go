package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookish/account-service/internal/config"
	"github.com/bookish/account-service/internal/email"
	"github.com/bookish/account-service/internal/middleware"
	"github.com/bookish/account-service/internal/model"
	"github.com/bookish/account-service/internal/queue"
	"github.com/bookish/account-service/internal/repository"
	"github.com/bookish/account-service/internal/utils"
	"github.com/bookish/account-service/internal/validate"
)

// AuthHandler bundles dependencies for the account endpoints.  Every
// collaborator is an injected capability, so tests run the full HTTP
// flow against in-memory doubles.
type AuthHandler struct {
	Cfg           config.Config
	Users         repository.UserStore
	Authors       repository.AuthorStore
	Verifications repository.TokenStore
	Resets        repository.TokenStore
	Mail          email.Sender
	Events        queue.Publisher // optional; nil disables event publishing
}

func NewAuthHandler(
	cfg config.Config,
	users repository.UserStore,
	authors repository.AuthorStore,
	verifications, resets repository.TokenStore,
	mail email.Sender,
	events queue.Publisher,
) *AuthHandler {
	return &AuthHandler{
		Cfg:           cfg,
		Users:         users,
		Authors:       authors,
		Verifications: verifications,
		Resets:        resets,
		Mail:          mail,
		Events:        events,
	}
}

// ----- DTOs -----

type signUpReq struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
	UserType string `json:"userType"`
	Bio      string `json:"bio"`
}

type signInReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenAndIDReq struct {
	Token  string `json:"token" validate:"required"`
	UserID string `json:"userId" validate:"required,objectid"`
}

type userIDReq struct {
	UserID string `json:"userId"`
}

type emailReq struct {
	Email string `json:"email"`
}

type passwordAndIDReq struct {
	Password string `json:"password" validate:"required,min=8,password"`
	UserID   string `json:"userId" validate:"required,objectid"`
}

type updateProfileReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=20"`
}

const dbTimeout = 5 * time.Second

// SignUp creates an account with a hashed password, an author profile
// when the role asks for one, and a hashed activation token, then
// emails the plaintext token.  Registration is all-or-nothing: if the
// email cannot be delivered, every document created here is removed
// again and the call fails.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}
	role := model.ParseRole(req.UserType)

	hash, err := utils.HashSecret(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	otp, err := utils.GenerateOTP(6)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user := &model.User{
		Username:        req.Username,
		Email:           req.Email,
		Password:        hash,
		UserType:        role,
		ActivationToken: otp,
	}
	uid, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Email already in use!"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if role == model.RoleAuthor {
		author := &model.Author{
			Owner:    uid,
			Bio:      strings.TrimSpace(req.Bio),
			Category: model.CategoryOthers,
		}
		if err := h.Authors.Create(ctx, author); err != nil {
			_ = h.Users.Delete(ctx, uid)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	}

	otpHash, err := utils.HashSecret(otp, h.Cfg.BcryptCost)
	if err == nil {
		err = h.Verifications.Replace(ctx, uid, otpHash)
	}
	if err != nil {
		h.rollbackAccount(ctx, uid, role)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if err := h.Mail.Send(ctx, req.Email, email.ActivationSubject, email.ActivationBody(otp)); err != nil {
		h.rollbackAccount(ctx, uid, role)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Email failure"})
	}

	h.publish(ctx, queue.EventAccountCreated, uid, user)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created!",
		"user": echo.Map{
			"id":       uid.Hex(),
			"username": req.Username,
			"email":    req.Email,
		},
	})
}

// VerifyEmail consumes a live activation token.  The record disappears
// after one successful use, so a replayed token fails like a bogus one.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req tokenAndIDReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}
	owner, _ := primitive.ObjectIDFromHex(req.UserID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tok, err := h.Verifications.GetByOwner(ctx, owner)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid token!"})
	}
	if !utils.VerifySecret(req.Token, tok.Token) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid token!"})
	}

	if err := h.Users.MarkVerified(ctx, owner); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	_ = h.Verifications.DeleteByOwner(ctx, owner)

	return c.JSON(http.StatusCreated, echo.Map{"message": "Your email is verified."})
}

// ResendVerification issues a fresh activation token, replacing any
// prior one, and emails it.  The same all-or-nothing policy applies as
// for registration: an undeliverable email removes the account again.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req userIDReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	owner, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid request!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, owner)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid request!"})
	}

	otp, err := utils.GenerateOTP(6)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	otpHash, err := utils.HashSecret(otp, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Users.SetActivationToken(ctx, owner, otp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Verifications.Replace(ctx, owner, otpHash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	if err := h.Mail.Send(ctx, u.Email, email.ActivationSubject, email.ActivationBody(otp)); err != nil {
		h.rollbackAccount(ctx, owner, u.UserType)
		h.publish(ctx, queue.EventAccountDeleted, owner, u)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Email failure"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Please check your email."})
}

// ResetPassword issues a high-entropy reset token for the account
// matching the email and sends a link embedding it.  An unknown email
// gets a generic unauthorized response.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized request"})
	}

	token, err := utils.RandomHex(36)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	hash, err := utils.HashSecret(token, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Resets.Replace(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	link := h.Cfg.PasswordResetLink + "?token=" + token + "&userId=" + u.ID.Hex()
	if err := h.Mail.Send(ctx, u.Email, email.ResetSubject, email.ResetBody(link)); err != nil {
		// Roll back the token so a half-issued reset leaves no state behind.
		_ = h.Resets.DeleteByOwner(ctx, u.ID)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Email failure"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Check your registered email"})
}

// VerifyPasswordReset checks a reset token without consuming it.  It
// gates the client's password form; the token stays live until the
// password is actually updated.
func (h *AuthHandler) VerifyPasswordReset(c echo.Context) error {
	var req tokenAndIDReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}
	owner, _ := primitive.ObjectIDFromHex(req.UserID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tok, err := h.Resets.GetByOwner(ctx, owner)
	if err != nil || !utils.VerifySecret(req.Token, tok.Token) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized access, invalid user"})
	}

	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// UpdatePassword sets a new password and consumes the reset token.  The
// reuse check is scoped to the account's own current password.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req passwordAndIDReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}
	owner, _ := primitive.ObjectIDFromHex(req.UserID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, owner)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized access, invalid user"})
	}
	if utils.VerifySecret(req.Password, u.Password) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Try another password"})
	}

	hash, err := utils.HashSecret(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	if err := h.Users.UpdatePassword(ctx, owner, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	_ = h.Resets.DeleteByOwner(ctx, owner)

	h.publish(ctx, queue.EventPasswordChanged, owner, u)

	return c.JSON(http.StatusOK, echo.Map{"message": "Your password has been updated"})
}

// SignIn verifies credentials and mints a session token.  An unknown
// email and a wrong password produce the identical response, so the
// endpoint cannot be used to enumerate accounts.  Verification is not a
// sign-in precondition.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email/password"})
	}
	if !utils.VerifySecret(req.Password, u.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email/password"})
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID.Hex())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Users.PushToken(ctx, u.ID, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save token failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile": formatProfile(u),
		"token":   token,
	})
}

// LogOut revokes the presented session, or every session when
// ?fromAll=yes.  Removing an already-removed token is a no-op success,
// so repeated sign-outs are harmless.
func (h *AuthHandler) LogOut(c echo.Context) error {
	u := middleware.UserFromContext(c)
	token := middleware.TokenFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var err error
	if c.QueryParam("fromAll") == "yes" {
		err = h.Users.ClearTokens(ctx, u.ID)
	} else {
		err = h.Users.PullToken(ctx, u.ID, token)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Profile returns the authenticated caller's own profile projection.
func (h *AuthHandler) Profile(c echo.Context) error {
	u := middleware.UserFromContext(c)
	return c.JSON(http.StatusOK, echo.Map{"profile": formatProfile(u)})
}

// UpdateProfile changes the caller's email and username.  Both fields
// are validated independently so a request with two bad fields reports
// both at once.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u := middleware.UserFromContext(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if verrs := validate.Struct(req); verrs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"validationErrors": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, req.Username, req.Email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Email already in use!"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	updated := *u
	updated.Username = req.Username
	updated.Email = req.Email
	return c.JSON(http.StatusOK, echo.Map{"profile": formatProfile(&updated)})
}

// rollbackAccount undoes a partially created registration: the account
// document, the author profile when one was created, and any pending
// verification token.
func (h *AuthHandler) rollbackAccount(ctx context.Context, id primitive.ObjectID, role model.Role) {
	_ = h.Verifications.DeleteByOwner(ctx, id)
	if role == model.RoleAuthor {
		_ = h.Authors.DeleteByOwner(ctx, id)
	}
	_ = h.Users.Delete(ctx, id)
}

// publish sends an account lifecycle event.  Failures are logged by the
// publisher and deliberately ignored here.
func (h *AuthHandler) publish(ctx context.Context, eventType string, id primitive.ObjectID, u *model.User) {
	if h.Events == nil {
		return
	}
	_ = h.Events.PublishAccountEvent(ctx, queue.AccountEvent{
		Type:       eventType,
		UserID:     id.Hex(),
		Email:      u.Email,
		Username:   u.Username,
		UserType:   string(u.UserType),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
