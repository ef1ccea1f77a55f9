package middleware

import (
	"errors"
	"net/http"
	"strings"
	"subscription-tracker/internal/service"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// AuthMiddleware verifies the HS256 bearer token and stores the caller's
// identity on the context. The token's subject is the user id.
func AuthMiddleware(secret []byte, identities service.IdentityService) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := jwt.RegisteredClaims{}
			token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			identity, err := identities.Resolve(c.Request().Context(), strings.TrimSpace(claims.Subject))
			if errors.Is(err, service.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, "subject claim missing")
			}
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !Identity(c).IsAdmin() {
				return &service.AuthorizationError{Action: "access admin routes"}
			}
			return next(c)
		}
	}
}

// Identity returns the identity stored by AuthMiddleware, or the zero value.
func Identity(c echo.Context) service.Identity {
	identity, _ := c.Get(identityKey).(service.Identity)
	return identity
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}

	return token, true
}
