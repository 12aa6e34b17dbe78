package middleware

// identity.go keeps the context keys JWTAuth writes and the helpers that
// read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/utils"
)

const (
	ctxClaims = "claims"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

func setIdentity(c echo.Context, claims *utils.Claims) {
	c.Set(ctxClaims, claims)
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
}

// ClaimsFrom returns the verified claims of the caller, or nil on routes
// that JWTAuth does not guard.
func ClaimsFrom(c echo.Context) *utils.Claims {
	claims, _ := c.Get(ctxClaims).(*utils.Claims)
	return claims
}

// UserID returns the caller's user id and whether the request is
// authenticated.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxUserID).(int64)
	return id, ok && id > 0
}

// rateLimitSubject identifies the caller for rate limit keys; anonymous
// callers share "anon".
func rateLimitSubject(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
