package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
	"github.com/recordhub/records-system/internal/core/service"
)

// Context keys set by Auth.
const (
	KeyUserID   = "user_id"
	KeyRole     = "role"
	KeyTokenID  = "token_id"
	KeyTokenExp = "token_exp"
)

// Auth validates the bearer token, rejects revoked tokens and injects the
// caller identity into context. denylist may be nil.
func Auth(jwtSecret string, denylist ports.TokenDenylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := service.ParseToken(jwtSecret, strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if denylist != nil && claims.ID != "" {
				revoked, err := denylist.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					return err
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
			}

			c.Set(KeyUserID, claims.Subject)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyTokenID, claims.ID)
			c.Set(KeyTokenExp, claims.ExpiresAt.Time)

			return next(c)
		}
	}
}

// ActorFrom returns the identity injected by Auth.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	id, _ := c.Get(KeyUserID).(string)
	role, _ := c.Get(KeyRole).(domain.Role)
	if id == "" || role == "" {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: id, Role: role}, true
}

// TokenFrom returns the id and expiry of the presented token.
func TokenFrom(c echo.Context) (string, time.Time) {
	id, _ := c.Get(KeyTokenID).(string)
	exp, _ := c.Get(KeyTokenExp).(time.Time)
	return id, exp
}
