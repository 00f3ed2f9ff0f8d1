package thumbnail_gateway

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/image/draw"

	"thumbs/domain"
	"thumbs/utils/errors"
)

// TranscodeGateway implements thumbnail_port.TranscodePort with pure Go codecs.
type TranscodeGateway struct {
	maxPixels int64
	tracer    trace.Tracer
}

// NewTranscodeGateway creates a TranscodeGateway. maxPixels <= 0 uses the domain default.
func NewTranscodeGateway(maxPixels int64) *TranscodeGateway {
	if maxPixels <= 0 {
		maxPixels = domain.ThumbnailMaxPixels
	}
	return &TranscodeGateway{
		maxPixels: maxPixels,
		tracer:    otel.Tracer("thumbs/gateway/transcode"),
	}
}

// Transcode scales data so the governing edge fits targetSize and re-encodes it in the
// source format. Bytes in an unrecognised or encode-less format come back unchanged with
// Passthrough set. Recognised but undecodable bytes yield errors.ErrDecodeFailure.
func (g *TranscodeGateway) Transcode(ctx context.Context, data []byte, targetSize int) (*domain.TranscodeResult, error) {
	ctx, span := g.tracer.Start(ctx, "thumbnail.transcode", trace.WithAttributes(
		attribute.Int("thumbnail.target_size", targetSize),
		attribute.Int("thumbnail.input_bytes", len(data)),
	))
	defer span.End()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if stderrors.Is(err, image.ErrFormat) {
			span.SetAttributes(attribute.String("thumbnail.mode", "passthrough"))
			return passthrough(data, 0, 0), nil
		}
		return nil, g.decodeFailure(span, "failed to read image header", err, format)
	}
	span.SetAttributes(attribute.String("thumbnail.format", format))

	c, ok := codecs[format]
	if !ok {
		span.SetAttributes(attribute.String("thumbnail.mode", "passthrough"))
		return passthrough(data, cfg.Width, cfg.Height), nil
	}

	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > g.maxPixels || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, g.decodeFailure(span, "image dimensions out of bounds",
			fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, g.maxPixels), format)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, g.decodeFailure(span, "failed to decode image", err, format)
	}

	bounds := src.Bounds()
	newWidth, newHeight := domain.ScaleDimensions(bounds.Dx(), bounds.Dy(), targetSize)

	// Src keeps the alpha channel intact on a transparent canvas.
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf, dst, src); err != nil {
		return nil, g.decodeFailure(span, "failed to encode image", err, format)
	}

	span.SetAttributes(
		attribute.String("thumbnail.mode", "resized"),
		attribute.Int("thumbnail.width", newWidth),
		attribute.Int("thumbnail.height", newHeight),
	)

	return &domain.TranscodeResult{
		Data:           buf.Bytes(),
		ContentType:    c.ContentType(),
		Format:         c.Format(),
		Width:          newWidth,
		Height:         newHeight,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}, nil
}

func passthrough(data []byte, width, height int) *domain.TranscodeResult {
	return &domain.TranscodeResult{
		Data:           data,
		ContentType:    mimetype.Detect(data).String(),
		Format:         domain.ImageFormatUnsupported,
		Width:          width,
		Height:         height,
		OriginalWidth:  width,
		OriginalHeight: height,
		Passthrough:    true,
	}
}

func (g *TranscodeGateway) decodeFailure(span trace.Span, message string, cause error, format string) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, message)
	return errors.NewDecodeFailureError(message, "gateway", "TranscodeGateway", "transcode", cause, map[string]interface{}{
		"format": format,
	})
}
