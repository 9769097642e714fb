package middleware

import "github.com/labstack/echo/v4"

// NoStore sets strict no-cache headers on every response so the dashboard
// never renders stale aggregates after a save.
func NoStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		return next(c)
	}
}
