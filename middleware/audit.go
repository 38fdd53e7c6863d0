package middleware

import (
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditContext is middleware that extracts staff info for audit logging
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := services.AuditContext{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}

			if principal := GetPrincipal(c); principal != nil {
				ctx.UserID = principal.Subject
				ctx.UserName = principal.DisplayName()
				ctx.UserEmail = principal.Email
			}

			c.Set(ContextKeyAuditContext, ctx)
			return next(c)
		}
	}
}

// GetAuditContext retrieves the audit context from the request
func GetAuditContext(c echo.Context) services.AuditContext {
	if ctx, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return ctx
	}
	return services.AuditContext{}
}

// StaffActivity records successful staff GET requests as page visits.
// It must run after AuditContext.
func StaffActivity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || db.DB == nil || c.Request().Method != http.MethodGet {
				return err
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			ctx := GetAuditContext(c)
			if ctx.UserID == "" {
				return nil
			}
			services.LogAuditEvent(db.DB, ctx, services.AuditEntry{
				Action:       models.AuditActionView,
				ResourceType: models.AuditResourcePage,
				ResourceID:   c.Path(),
				ResourceName: c.Request().URL.Path,
				Description:  "Visited " + c.Request().URL.RequestURI(),
			})
			return nil
		}
	}
}
