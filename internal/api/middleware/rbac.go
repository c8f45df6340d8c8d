package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RBAC admits requests whose role, as set by Auth, is one of allowedRoles.
// No role at all is a 401; the wrong role is a 403.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	roles := slices.Clone(allowedRoles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			switch {
			case role == "":
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			case !slices.Contains(roles, role):
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
