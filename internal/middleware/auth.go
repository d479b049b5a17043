package middleware

import (
	"slate-api/internal/shared"

	"github.com/labstack/echo/v4"
)

// RequireMetricsKey gates a route behind the configured metrics bearer key.
// An empty key leaves the route open. It runs outside Track, so it only sees
// the bare echo context.
func RequireMetricsKey(metricsAPIKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if metricsAPIKey == "" {
				return next(c)
			}

			apiKey, err := shared.ExtractAPIKey(c)
			if err != nil {
				return c.String(401, "Missing or invalid API key")
			}

			if apiKey != metricsAPIKey {
				return c.String(401, "Unauthorized API key")
			}
			return next(c)
		}
	}
}
