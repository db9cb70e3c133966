package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Throttle applies a process-wide inbound rate limit. It rejects excess load
// before it reaches admission control or the pipeline.
func Throttle(rps float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = int(rps)
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Too Many Requests",
				})
			}
			return next(c)
		}
	}
}
