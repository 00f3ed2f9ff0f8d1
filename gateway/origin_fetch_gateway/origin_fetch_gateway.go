package origin_fetch_gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"thumbs/domain"
	"thumbs/utils/errors"
	"thumbs/utils/logger"
	"thumbs/utils/rate_limiter"
	"thumbs/utils/resilience"
)

const userAgent = "thumbs/1.0"

// statusError carries a non-2xx origin status so the breaker can tell a missing image from
// an unhealthy origin.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status code: %d", e.code)
}

// isBreakerFailure counts transport errors and 5xx. A 4xx means the origin is up.
func isBreakerFailure(err error) bool {
	var se *statusError
	if stderrors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	var tooLarge *bodyTooLargeError
	return !stderrors.As(err, &tooLarge)
}

type bodyTooLargeError struct {
	limit int64
}

func (e *bodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.limit)
}

// Options configures an OriginFetchGateway.
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	MaxBytes         int64
	RateInterval     time.Duration
	FailureThreshold int
	ResetTimeout     time.Duration
}

// OriginFetchGateway implements thumbnail_port.OriginFetchPort over plain HTTP GET.
type OriginFetchGateway struct {
	httpClient  *http.Client
	baseURL     string
	maxBytes    int64
	rateLimiter *rate_limiter.HostRateLimiter
	breaker     *resilience.SimpleCircuitBreaker
	tracer      trace.Tracer
}

// NewOriginFetchGateway builds a gateway. A nil httpClient gets one with opts.Timeout.
func NewOriginFetchGateway(httpClient *http.Client, opts Options) *OriginFetchGateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = domain.ThumbnailMaxOriginBytes
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()
	if opts.FailureThreshold > 0 {
		breakerCfg.FailureThreshold = opts.FailureThreshold
	}
	if opts.ResetTimeout > 0 {
		breakerCfg.ResetTimeout = opts.ResetTimeout
	}
	breakerCfg.IsFailure = isBreakerFailure

	return &OriginFetchGateway{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		maxBytes:    opts.MaxBytes,
		rateLimiter: rate_limiter.NewHostRateLimiter(opts.RateInterval),
		breaker:     resilience.NewSimpleCircuitBreaker(breakerCfg),
		tracer:      otel.Tracer("thumbs/gateway/origin_fetch"),
	}
}

// OriginURL joins the base URL with the escaped reference.
func (g *OriginFetchGateway) OriginURL(ref domain.OriginImageRef) string {
	return g.baseURL + "/" + url.PathEscape(ref.String())
}

// BreakerState exposes the breaker state reported by /health.
func (g *OriginFetchGateway) BreakerState() resilience.CircuitBreakerState {
	return g.breaker.GetState()
}

// FetchOrigin retrieves the source image. Every failure is reported as
// errors.ErrOriginUnavailable with the underlying cause attached.
func (g *OriginFetchGateway) FetchOrigin(ctx context.Context, ref domain.OriginImageRef) (*domain.OriginImage, error) {
	originURL := g.OriginURL(ref)

	ctx, span := g.tracer.Start(ctx, "origin.fetch", trace.WithAttributes(
		attribute.String("origin.url", originURL),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, g.fail(span, "context done before fetch", "fetch", err, originURL)
	}

	if err := g.rateLimiter.WaitForHost(ctx, originURL); err != nil {
		return nil, g.fail(span, "origin rate limit wait failed", "rate_limit", err, originURL)
	}

	var result *domain.OriginImage
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		img, err := g.doFetch(ctx, originURL)
		if err != nil {
			return err
		}
		result = img
		return nil
	})
	if err != nil {
		if errors.IsCircuitOpen(err) {
			logger.SafeWarnContext(ctx, "origin circuit breaker open, skipping fetch", "url", originURL)
			return nil, g.fail(span, "origin circuit breaker open", "circuit_breaker", err, originURL)
		}
		return nil, g.fail(span, "origin fetch failed", "http_request", err, originURL)
	}

	span.SetAttributes(
		attribute.Int("origin.bytes", len(result.Data)),
		attribute.String("origin.content_type", result.ContentType),
	)
	return result, nil
}

func (g *OriginFetchGateway) doFetch(ctx context.Context, originURL string) (*domain.OriginImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, originURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}

	if resp.ContentLength > g.maxBytes {
		return nil, &bodyTooLargeError{limit: g.maxBytes}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read origin body: %w", err)
	}
	if int64(len(data)) > g.maxBytes {
		return nil, &bodyTooLargeError{limit: g.maxBytes}
	}

	return &domain.OriginImage{
		URL:         originURL,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
		FetchedAt:   time.Now(),
	}, nil
}

func (g *OriginFetchGateway) fail(span trace.Span, message, operation string, cause error, originURL string) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, message)

	details := map[string]interface{}{"url": originURL}
	var se *statusError
	if stderrors.As(cause, &se) {
		details["status_code"] = se.code
		span.SetAttributes(attribute.Int("http.response.status_code", se.code))
	}
	return errors.NewOriginUnavailableError(message, "gateway", "OriginFetchGateway", operation, cause, details)
}
