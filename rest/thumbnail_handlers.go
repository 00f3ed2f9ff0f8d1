package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"thumbs/config"
	"thumbs/di"
	"thumbs/utils/conditional"
	"thumbs/utils/errors"
	"thumbs/utils/logger"
)

const cacheStatusHeader = "X-Thumbnail-Cache"

type thumbnailQuery struct {
	Image string `query:"image" validate:"required,max=1024,no_nul"`
	Size  int    `query:"size" validate:"gte=0"`
}

// registerThumbnailRoutes registers the thumbnail endpoint and its legacy alias.
func registerThumbnailRoutes(e *echo.Echo, container *di.ApplicationComponents, cfg *config.Config) {
	handler := handleThumbnail(container, cfg)
	e.GET("/thumbnail", handler)
	e.GET("/thumbs.php", handler)
}

func handleThumbnail(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	uc := container.ThumbnailUsecase
	m := container.Metrics

	return func(c echo.Context) error {
		ctx := c.Request().Context()
		c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")

		var q thumbnailQuery
		if err := echo.QueryParamsBinder(c).
			String("image", &q.Image).
			Int("size", &q.Size).
			BindError(); err != nil {
			m.RecordRequest(ctx, "not_found")
			logger.SafeWarnContext(ctx, "invalid thumbnail query", "error", err)
			return c.NoContent(http.StatusNotFound)
		}
		if err := c.Validate(&q); err != nil {
			m.RecordRequest(ctx, "not_found")
			logger.SafeWarnContext(ctx, "invalid thumbnail query", "error", err)
			return c.NoContent(http.StatusNotFound)
		}

		req, err := uc.NewRequest(q.Image, q.Size)
		if err != nil {
			m.RecordRequest(ctx, "not_found")
			logger.SafeWarnContext(ctx, "rejected image reference", "image", q.Image, "error", err)
			return c.NoContent(errors.HTTPStatus(err))
		}

		etag := uc.ETagFor(req)
		if conditional.Matches(c.Request().Header.Get("If-None-Match"), etag) {
			conditional.ApplyHeaders(c.Response().Header(), etag, cfg.Cache.MaxAge)
			m.RecordRequest(ctx, "not_modified")
			return c.NoContent(http.StatusNotModified)
		}

		result, err := uc.GetThumbnail(ctx, req)
		if err != nil {
			status := errors.HTTPStatus(err)
			if status == http.StatusNotFound {
				m.RecordRequest(ctx, "not_found")
				logger.SafeWarnContext(ctx, "thumbnail unavailable", "image", req.Ref.String(), "error", err)
			} else {
				m.RecordRequest(ctx, "error")
				logger.SafeErrorContext(ctx, "thumbnail failed", "image", req.Ref.String(), "error", err)
			}
			return c.NoContent(status)
		}

		h := c.Response().Header()
		conditional.ApplyHeaders(h, result.ETag, cfg.Cache.MaxAge)
		h.Set(echo.HeaderContentLength, strconv.Itoa(len(result.Artifact.Data)))
		if result.CacheHit {
			h.Set(cacheStatusHeader, "HIT")
			m.RecordRequest(ctx, "hit")
		} else {
			h.Set(cacheStatusHeader, "MISS")
			m.RecordRequest(ctx, "miss")
		}

		return c.Blob(http.StatusOK, result.Artifact.ContentType, result.Artifact.Data)
	}
}
