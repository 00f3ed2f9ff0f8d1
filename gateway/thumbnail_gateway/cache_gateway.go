package thumbnail_gateway

import (
	"context"

	"github.com/gabriel-vasile/mimetype"

	"thumbs/domain"
	"thumbs/driver/artifact_store"
	"thumbs/utils/errors"
)

// CacheGateway implements thumbnail_port.ArtifactCachePort over the disk store, with an
// optional in-process memory tier in front of it.
type CacheGateway struct {
	disk   *artifact_store.DiskStore
	memory *artifact_store.MemoryTier
}

// NewCacheGateway creates a new CacheGateway. memory may be nil.
func NewCacheGateway(disk *artifact_store.DiskStore, memory *artifact_store.MemoryTier) *CacheGateway {
	return &CacheGateway{disk: disk, memory: memory}
}

func (g *CacheGateway) Lookup(ctx context.Context, key domain.CacheKey) (*domain.CachedArtifact, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	name := key.FileName()
	if e, ok := g.memory.Get(name); ok {
		return domain.NewCachedArtifact(key, e.Data, e.ContentType), true, nil
	}

	data, found, err := g.disk.Read(name)
	if err != nil {
		return nil, false, errors.NewAppContextError(errors.CodeUnknown, "failed to read artifact", "gateway", "CacheGateway", "lookup", err, map[string]interface{}{
			"key": name,
		})
	}
	if !found {
		return nil, false, nil
	}

	contentType := mimetype.Detect(data).String()
	g.memory.Add(name, artifact_store.Entry{Data: data, ContentType: contentType})
	return domain.NewCachedArtifact(key, data, contentType), true, nil
}

func (g *CacheGateway) Store(ctx context.Context, key domain.CacheKey, data []byte, contentType string) (*domain.CachedArtifact, error) {
	artifact := domain.NewCachedArtifact(key, data, contentType)

	name := key.FileName()
	if err := g.disk.Write(name, data); err != nil {
		return artifact, errors.NewPersistFailureError("failed to persist artifact", "gateway", "CacheGateway", "store", err, map[string]interface{}{
			"key":  name,
			"size": len(data),
		})
	}

	g.memory.Add(name, artifact_store.Entry{Data: data, ContentType: contentType})
	return artifact, nil
}

// SizeBytes reports the disk footprint of persisted artifacts.
func (g *CacheGateway) SizeBytes() int64 {
	return g.disk.SizeBytes()
}
