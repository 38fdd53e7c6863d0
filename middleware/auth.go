package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// ContextKeyPrincipal is the context key for the verified staff identity
	ContextKeyPrincipal = "principal"
	// ContextKeyUser is the context key for the mirrored staff user row
	ContextKeyUser = "user"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireStaff verifies the bearer token and requires the staff claim.
// A missing or invalid token is 401, a token without the claim is 403.
func RequireStaff(verifier identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, identity.ErrNotConfigured.Error())
			}

			token := bearerToken(c)
			if token == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="staff"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			principal, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, identity.ErrInvalidToken) {
					logging.Log.Debug("Staff token rejected", zap.Error(err))
				}
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="staff", error="invalid_token"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			if !principal.IsStaffMember() {
				return echo.NewHTTPError(http.StatusForbidden, "Staff access required")
			}

			c.Set(ContextKeyPrincipal, principal)

			if db.DB != nil {
				user, err := services.SyncStaffUser(db.DB, principal, time.Now())
				if err != nil {
					logging.Log.Warn("Failed to sync staff user",
						zap.String("subject", principal.Subject),
						zap.Error(err))
				} else {
					c.Set(ContextKeyUser, user)
				}
			}

			return next(c)
		}
	}
}

// RequireSuperuser requires the superuser claim. It must run after RequireStaff.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := GetPrincipal(c)
			if principal == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !principal.CanAdminister() {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// GetPrincipal retrieves the verified staff identity from context
func GetPrincipal(c echo.Context) *identity.Principal {
	principal, ok := c.Get(ContextKeyPrincipal).(*identity.Principal)
	if !ok {
		return nil
	}
	return principal
}

// GetCurrentUser retrieves the mirrored staff user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
