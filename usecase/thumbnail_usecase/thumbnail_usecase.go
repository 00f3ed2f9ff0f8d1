package thumbnail_usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"thumbs/domain"
	"thumbs/port/thumbnail_port"
	"thumbs/utils/conditional"
	"thumbs/utils/errors"
	"thumbs/utils/logger"
	"thumbs/utils/metrics"
)

// Options tunes request normalisation and build limits.
type Options struct {
	DefaultSize  int
	BuildTimeout time.Duration
}

// ThumbnailUsecase resolves a thumbnail request to a servable artifact, building it at most
// once per cache key no matter how many requests ask for it concurrently.
type ThumbnailUsecase struct {
	cache      thumbnail_port.ArtifactCachePort
	origin     thumbnail_port.OriginFetchPort
	transcoder thumbnail_port.TranscodePort
	metrics    *metrics.ThumbnailMetrics
	perf       *logger.PerformanceLogger
	tracer     trace.Tracer
	builds     singleflight.Group
	opts       Options
}

// NewThumbnailUsecase creates a new ThumbnailUsecase. m may be nil.
func NewThumbnailUsecase(
	cache thumbnail_port.ArtifactCachePort,
	origin thumbnail_port.OriginFetchPort,
	transcoder thumbnail_port.TranscodePort,
	m *metrics.ThumbnailMetrics,
	opts Options,
) *ThumbnailUsecase {
	if opts.DefaultSize <= 0 {
		opts.DefaultSize = domain.DefaultTargetSize
	}
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = 30 * time.Second
	}
	return &ThumbnailUsecase{
		cache:      cache,
		origin:     origin,
		transcoder: transcoder,
		metrics:    m,
		perf:       logger.NewPerformanceLogger(logger.Current()),
		tracer:     otel.Tracer("thumbs/usecase/thumbnail"),
		opts:       opts,
	}
}

// NewRequest sanitizes rawImage and normalises size: 0 selects the default size.
func (u *ThumbnailUsecase) NewRequest(rawImage string, size int) (domain.ThumbnailRequest, error) {
	if size == 0 {
		size = u.opts.DefaultSize
	}
	return domain.NewThumbnailRequest(rawImage, size)
}

// ETagFor returns the validator for req without touching the cache or the origin.
func (u *ThumbnailUsecase) ETagFor(req domain.ThumbnailRequest) string {
	return conditional.ComputeETag(u.origin.OriginURL(req.Ref), req.Size)
}

type buildOutcome struct {
	artifact *domain.CachedArtifact
	cacheHit bool
	degraded bool
}

// GetThumbnail returns the artifact for req, building and persisting it on a miss.
// Origin failures, and the caller's context ending while it waits, surface as
// errors.ErrOriginUnavailable. errors.ErrUnservable means no bytes can be served at all.
func (u *ThumbnailUsecase) GetThumbnail(ctx context.Context, req domain.ThumbnailRequest) (*domain.ThumbnailResult, error) {
	key := req.CacheKey()

	ctx, span := u.tracer.Start(ctx, "thumbnail.get", trace.WithAttributes(
		attribute.String("thumbnail.ref", req.Ref.String()),
		attribute.Int("thumbnail.size", req.Size),
		attribute.String("thumbnail.key", key.String()),
	))
	defer span.End()

	etag := u.ETagFor(req)

	artifact, found, err := u.cache.Lookup(ctx, key)
	if err != nil {
		logger.SafeWarnContext(ctx, "artifact lookup failed, treating as miss", "key", key.FileName(), "error", err)
	}
	if found && artifact != nil {
		span.SetAttributes(attribute.Bool("thumbnail.cache_hit", true))
		return &domain.ThumbnailResult{Artifact: artifact, ETag: etag, CacheHit: true}, nil
	}

	ch := u.builds.DoChan(key.FileName(), func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.opts.BuildTimeout)
		defer cancel()
		return u.build(buildCtx, req, key)
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "request context ended while waiting for build")
		return nil, errors.NewOriginUnavailableError("request ended before the thumbnail was ready", "usecase", "ThumbnailUsecase", "wait_build", ctx.Err(), map[string]interface{}{
			"key": key.FileName(),
		})
	case res := <-ch:
		if res.Shared {
			u.metrics.RecordSharedBuild(ctx)
		}
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "build failed")
			return nil, res.Err
		}
		outcome := res.Val.(*buildOutcome)
		span.SetAttributes(
			attribute.Bool("thumbnail.cache_hit", outcome.cacheHit),
			attribute.Bool("thumbnail.degraded", outcome.degraded),
		)
		return &domain.ThumbnailResult{
			Artifact: outcome.artifact,
			ETag:     etag,
			CacheHit: outcome.cacheHit,
			Degraded: outcome.degraded,
		}, nil
	}
}

// build runs detached from any single request.
func (u *ThumbnailUsecase) build(ctx context.Context, req domain.ThumbnailRequest, key domain.CacheKey) (*buildOutcome, error) {
	timer := u.perf.StartTimer(ctx, "thumbnail_build")
	start := time.Now()
	defer func() { u.metrics.ObserveBuild(ctx, time.Since(start)) }()

	// Another flight for this key may have finished between our lookup and this build.
	if artifact, found, err := u.cache.Lookup(ctx, key); err == nil && found && artifact != nil {
		timer.End()
		return &buildOutcome{artifact: artifact, cacheHit: true}, nil
	}

	origin, err := u.origin.FetchOrigin(ctx, req.Ref)
	if err != nil {
		u.metrics.RecordOriginFetch(ctx, originResult(err))
		timer.EndWithError(err)
		return nil, err
	}
	u.metrics.RecordOriginFetch(ctx, "ok")

	result, err := u.transcoder.Transcode(ctx, origin.Data, req.Size)
	if err != nil {
		if !errors.IsDecodeFailure(err) {
			timer.EndWithError(err)
			return nil, fmt.Errorf("transcode %s: %w", req.Ref, err)
		}
		u.metrics.RecordTranscode(ctx, "unknown", "decode_failure")
		logger.SafeWarnContext(ctx, "decode failed, serving original bytes", "ref", req.Ref.String(), "error", err)
		outcome, perr := u.persistRaw(ctx, key, origin.Data)
		if perr != nil {
			timer.EndWithError(perr)
			return nil, perr
		}
		timer.End()
		return outcome, nil
	}

	mode := "resized"
	if result.Passthrough {
		mode = "passthrough"
	}
	u.metrics.RecordTranscode(ctx, string(result.Format), mode)

	if len(result.Data) == 0 {
		err := errors.NewUnservableError("origin returned no bytes", "usecase", "ThumbnailUsecase", "build", nil, map[string]interface{}{
			"ref": req.Ref.String(),
		})
		timer.EndWithError(err)
		return nil, err
	}

	artifact, err := u.cache.Store(ctx, key, result.Data, result.ContentType)
	if err != nil {
		u.reportPersistFailure(ctx, key, err)
		timer.End()
		return &buildOutcome{
			artifact: domain.NewCachedArtifact(key, result.Data, result.ContentType),
			degraded: true,
		}, nil
	}

	timer.End()
	return &buildOutcome{artifact: artifact}, nil
}

// persistRaw stores undecodable origin bytes as the artifact. Unlike the other build paths,
// a write failure here is fatal.
func (u *ThumbnailUsecase) persistRaw(ctx context.Context, key domain.CacheKey, raw []byte) (*buildOutcome, error) {
	if len(raw) == 0 {
		return nil, errors.NewUnservableError("origin returned no bytes", "usecase", "ThumbnailUsecase", "persist_raw", nil, map[string]interface{}{
			"key": key.FileName(),
		})
	}

	artifact, err := u.cache.Store(ctx, key, raw, mimetype.Detect(raw).String())
	if err != nil {
		u.reportPersistFailure(ctx, key, err)
		return nil, errors.NewUnservableError("undecodable image could not be persisted", "usecase", "ThumbnailUsecase", "persist_raw", err, map[string]interface{}{
			"key": key.FileName(),
		})
	}
	return &buildOutcome{artifact: artifact}, nil
}

func (u *ThumbnailUsecase) reportPersistFailure(ctx context.Context, key domain.CacheKey, err error) {
	u.metrics.RecordPersistFailure(ctx)
	logger.SafeErrorContext(ctx, "failed to persist artifact", "key", key.FileName(), "error", err)
}

func originResult(err error) string {
	if errors.IsCircuitOpen(err) {
		return "circuit_open"
	}
	return "error"
}
