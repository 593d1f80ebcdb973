package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseSessionToken when the token cannot
// be verified against the signing secret.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT carrying the account id
// and a random token id.  The jti makes every mint distinct, so each
// sign-in adds its own removable entry to the account's session list.
// Session tokens deliberately have no expiration: a session ends when
// its token is removed from the list, so an exp claim would add
// nothing.
func NewSessionToken(secret, userID string) (string, error) {
	jti, err := RandomHex(16)
	if err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"jti":    jti,
	})
	return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature of a session token and
// returns the embedded account id.  A valid signature alone does not
// prove an active session; callers must additionally check that the
// token is present in the account's session list.
func ParseSessionToken(secret, token string) (string, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
