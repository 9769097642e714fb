package middleware

import "github.com/labstack/echo/v4"

// RoleHeader carries the client-held role string. It is a presentation hint
// used by the UI to hide affordances; it is never an authorization decision
// and no handler may branch on it for access control.
const RoleHeader = "X-Class-Role"

const roleContextKey = "classxp.role"

// RoleHint copies the role header into the request context so handlers can
// echo it back to the UI.
func RoleHint(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(roleContextKey, c.Request().Header.Get(RoleHeader))
		return next(c)
	}
}

// RoleFromContext returns the role hint for the request, if any.
func RoleFromContext(c echo.Context) string {
	v, _ := c.Get(roleContextKey).(string)
	return v
}
