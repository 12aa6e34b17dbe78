package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/utils"
)

// TokenVerifier checks a raw session token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and stores the caller's identity in the context: the claims under
// "claims", the numeric user id under "user_id" and the role under "role".
// Requests without a valid token get 401.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := v.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}
