//go:generate go run go.uber.org/mock/mockgen -source=origin_fetch_port.go -destination=../../mocks/mock_origin_fetch_port.go -package=mocks

package thumbnail_port

import (
	"context"

	"thumbs/domain"
)

// OriginFetchPort retrieves source images from the remote origin.
type OriginFetchPort interface {
	FetchOrigin(ctx context.Context, ref domain.OriginImageRef) (*domain.OriginImage, error)
	OriginURL(ref domain.OriginImageRef) string
}
