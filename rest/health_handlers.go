package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thumbs/di"
)

func registerHealthRoutes(e *echo.Echo, container *di.ApplicationComponents) {
	e.GET("/health", func(c echo.Context) error {
		body := map[string]string{"status": "ok"}
		if container.OriginGateway != nil {
			body["origin_breaker"] = string(container.OriginGateway.BreakerState())
		}
		return c.JSON(http.StatusOK, body)
	})

	if container.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(container.Metrics.Handler()))
	}
}
