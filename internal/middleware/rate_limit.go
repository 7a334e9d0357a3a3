package middleware

import (
	"hortifood/pkg/logger"
	"net/http"
	"time"

	jsonres "hortifood/pkg/response"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// AuthRateLimiter throttles the credential endpoints per client IP.
func AuthRateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Error("failed to identify client for rate limit", err)
			return c.JSON(http.StatusForbidden, jsonres.Error(
				"FORBIDDEN", "Unable to identify client", nil,
			))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("rate limit exceeded", "ip", identifier)
			return c.JSON(http.StatusTooManyRequests, jsonres.Error(
				"TOO_MANY_REQUESTS", "Too many requests, try again later", nil,
			))
		},
	})
}
