package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/deppfellow/pages-api/internal/server"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any bearer token that cannot be trusted:
// bad signature, wrong issuer, expired, or a subject that is not a user id.
var ErrInvalidToken = errors.New("invalid token")

// AuthService issues and verifies the HS256 bearer tokens that identify callers.
//
// The token subject carries the numeric user id; every page operation is
// scoped to it.
type AuthService struct {
	server *server.Server
	secret []byte
	now    func() time.Time
}

func NewAuthService(s *server.Server) *AuthService {
	return &AuthService{
		server: s,
		secret: []byte(s.Config.Auth.SecretKey),
		now:    time.Now,
	}
}

// IssueToken signs a token for userID that expires after the configured TTL.
func (a *AuthService) IssueToken(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("issuing token: user id must be positive, got %d", userID)
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    a.server.Config.Auth.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.server.Config.Auth.TokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies tokenString and returns the user id it was issued for.
func (a *AuthService) ParseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.server.Config.Auth.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}

	return userID, nil
}
