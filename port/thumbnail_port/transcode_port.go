//go:generate go run go.uber.org/mock/mockgen -source=transcode_port.go -destination=../../mocks/mock_transcode_port.go -package=mocks

package thumbnail_port

import (
	"context"

	"thumbs/domain"
)

// TranscodePort resizes image bytes so the longest edge fits targetSize.
// Unsupported formats come back with Passthrough set instead of an error.
type TranscodePort interface {
	Transcode(ctx context.Context, data []byte, targetSize int) (*domain.TranscodeResult, error)
}
