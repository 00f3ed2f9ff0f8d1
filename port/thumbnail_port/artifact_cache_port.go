//go:generate go run go.uber.org/mock/mockgen -source=artifact_cache_port.go -destination=../../mocks/mock_artifact_cache_port.go -package=mocks

package thumbnail_port

import (
	"context"

	"thumbs/domain"
)

// ArtifactCachePort persists built thumbnails keyed by CacheKey.
// Store must make an artifact visible only once its payload is complete.
type ArtifactCachePort interface {
	Lookup(ctx context.Context, key domain.CacheKey) (*domain.CachedArtifact, bool, error)
	Store(ctx context.Context, key domain.CacheKey, data []byte, contentType string) (*domain.CachedArtifact, error)
}
