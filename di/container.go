package di

import (
	"fmt"
	"net/http"

	"thumbs/config"
	"thumbs/driver/artifact_store"
	"thumbs/gateway/origin_fetch_gateway"
	"thumbs/gateway/thumbnail_gateway"
	"thumbs/usecase/thumbnail_usecase"
	"thumbs/utils/metrics"
)

type ApplicationComponents struct {
	ThumbnailUsecase *thumbnail_usecase.ThumbnailUsecase
	Metrics          *metrics.ThumbnailMetrics
	CacheGateway     *thumbnail_gateway.CacheGateway
	OriginGateway    *origin_fetch_gateway.OriginFetchGateway
	DiskStore        *artifact_store.DiskStore
}

// NewApplicationComponents wires the application. httpClient may be nil.
func NewApplicationComponents(cfg *config.Config, httpClient *http.Client) (*ApplicationComponents, error) {
	// Storage
	diskStore, err := artifact_store.NewDiskStore(cfg.Cache.Dir, artifact_store.WithShardPrefixLen(cfg.Cache.ShardPrefix))
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	memoryTier, err := artifact_store.NewMemoryTier(cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory tier: %w", err)
	}
	cacheGatewayImpl := thumbnail_gateway.NewCacheGateway(diskStore, memoryTier)

	// Origin
	originGatewayImpl := origin_fetch_gateway.NewOriginFetchGateway(httpClient, origin_fetch_gateway.Options{
		BaseURL:          cfg.Origin.BaseURL,
		Timeout:          cfg.Origin.Timeout,
		MaxBytes:         cfg.Origin.MaxBytes,
		RateInterval:     cfg.Origin.RateInterval,
		FailureThreshold: cfg.Origin.FailureThreshold,
		ResetTimeout:     cfg.Origin.ResetTimeout,
	})

	transcodeGatewayImpl := thumbnail_gateway.NewTranscodeGateway(cfg.Thumbnail.MaxPixels)

	// Metrics
	thumbnailMetrics, err := metrics.NewThumbnailMetrics()
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}
	if err := thumbnailMetrics.RegisterStoreGauge(cacheGatewayImpl.SizeBytes); err != nil {
		return nil, fmt.Errorf("register store gauge: %w", err)
	}

	thumbnailUsecase := thumbnail_usecase.NewThumbnailUsecase(
		cacheGatewayImpl,
		originGatewayImpl,
		transcodeGatewayImpl,
		thumbnailMetrics,
		thumbnail_usecase.Options{
			DefaultSize:  cfg.Thumbnail.DefaultSize,
			BuildTimeout: cfg.Thumbnail.BuildTimeout,
		},
	)

	return &ApplicationComponents{
		ThumbnailUsecase: thumbnailUsecase,
		Metrics:          thumbnailMetrics,
		CacheGateway:     cacheGatewayImpl,
		OriginGateway:    originGatewayImpl,
		DiskStore:        diskStore,
	}, nil
}
