// Package auth identifies the learner behind a request. Two modes:
// "none" trusts an optional X-Learner header, "jwt" requires a signed
// HS256 bearer token.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// LearnerKey is the echo context key the middleware stores the learner
// id under.
const LearnerKey = "learner"

// AnonymousLearner is used when no identity is presented in open mode.
const AnonymousLearner = "anonymous"

// Claims are the token claims issued for a learner.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Config selects the auth mode. SigningKey is required for mode "jwt".
type Config struct {
	Mode       string
	SigningKey []byte
}

// Middleware returns the learner identification middleware for the
// configured mode.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Mode == "jwt" {
		return jwtMiddleware(cfg.SigningKey)
	}
	return openMiddleware()
}

// openMiddleware accepts every request, taking the learner id from the
// X-Learner header when present.
func openMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			learner := c.Request().Header.Get("X-Learner")
			if learner == "" {
				learner = AnonymousLearner
			}
			c.Set(LearnerKey, learner)
			return next(c)
		}
	}
}

func jwtMiddleware(signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			c.Set(LearnerKey, claims.Subject)
			return next(c)
		}
	}
}

// LearnerFromContext returns the learner id set by the middleware.
func LearnerFromContext(c echo.Context) string {
	if learner, ok := c.Get(LearnerKey).(string); ok {
		return learner
	}
	return AnonymousLearner
}

// IssueToken signs a learner token, used by the token CLI command and
// by tests.
func IssueToken(signingKey []byte, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}
