package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"thumbs/config"
	"thumbs/di"
	middleware_custom "thumbs/middleware"
	"thumbs/utils/logger"
	"thumbs/utils/validator"
)

func RegisterRoutes(e *echo.Echo, container *di.ApplicationComponents, cfg *config.Config) {
	e.Validator = validator.New()

	// 1. Request ID first so every log line and span can be correlated
	e.Use(middleware_custom.RequestIDMiddleware())

	// 2. Recovery early
	e.Use(middleware.Recover())

	// 3. Tracing, then span status from the final response code
	e.Use(otelecho.Middleware(cfg.OTel.ServiceName, otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == "/health" || c.Path() == "/metrics"
	})))
	e.Use(middleware_custom.OTelStatusMiddleware())

	// 4. CORS: thumbnails are embedded from any site
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	// 5. Request timeout
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.Server.RequestTimeout,
	}))

	// 6. Logging last so it sees the final status
	e.Use(middleware_custom.LoggingMiddleware(logger.Current()))

	registerHealthRoutes(e, container)
	registerThumbnailRoutes(e, container, cfg)
}
