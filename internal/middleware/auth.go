package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/labstack/echo/v4"
)

// TokenParser resolves a bearer token to the id of the user it was issued for.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AuthMiddleware holds the app Server so middleware can access shared deps
// like Logger and Config.
type AuthMiddleware struct {
	server *server.Server
	tokens TokenParser
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(s *server.Server, tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// RequireAuth is an Echo middleware that enforces bearer token authentication.
//
//  1. It reads "Authorization: Bearer <token>".
//  2. A missing or invalid token is returned as a 401 HTTPError, which the
//     global error handler writes.
//  3. On success the user id is stored in Echo context (user_id) and added
//     to the request logger.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		logger := GetLogger(c)

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			logger.Warn().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("missing bearer token")

			return errs.NewUnauthorizedError("Unauthorized")
		}

		userID, err := auth.tokens.ParseToken(token)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("could not verify bearer token")

			return errs.NewUnauthorizedError("Unauthorized")
		}

		c.Set(UserIDKey, userID)
		setLogger(c, logger.With().Int64("user_id", userID).Logger())

		GetLogger(c).Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
