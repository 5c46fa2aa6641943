package middleware

import (
	"github.com/labstack/echo/v4"

	"craftopia/internal/authz"
	"craftopia/internal/model"
)

// RequireRoles admits callers whose role is one of roles. It must run after
// Authenticate.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return errNoIdentity
			}
			if !authz.HasAnyRole(identity.Role, roles...) {
				return errInsufficient
			}
			return next(c)
		}
	}
}

// AdminOrAbove admits admin and super_admin.
func AdminOrAbove() echo.MiddlewareFunc {
	return RequireRoles(authz.AdminOrAbove...)
}

// SuperAdminOnly admits super_admin.
func SuperAdminOnly() echo.MiddlewareFunc {
	return RequireRoles(authz.SuperAdminOnly...)
}
