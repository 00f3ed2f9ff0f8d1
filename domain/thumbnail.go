package domain

import (
	_ "crypto/sha256"
	"fmt"
	"path"
	"time"

	"github.com/opencontainers/go-digest"
)

const (
	// DefaultTargetSize is applied when the request does not carry a size.
	DefaultTargetSize = 500

	// ThumbnailCacheMaxAge is the max-age advertised to clients and intermediaries.
	ThumbnailCacheMaxAge = 24 * time.Hour

	// ThumbnailJPEGQuality is the fixed JPEG re-encode quality (0-100).
	ThumbnailJPEGQuality = 85

	// ThumbnailMaxOriginBytes bounds the body read from the origin (20MB).
	ThumbnailMaxOriginBytes = 20 * 1024 * 1024

	// ThumbnailMaxPixels bounds decoded images (width*height) to guard against decompression bombs.
	ThumbnailMaxPixels = 50_000_000
)

// ThumbnailRequest is a sanitized image reference plus the requested bounding size in pixels.
type ThumbnailRequest struct {
	Ref  OriginImageRef
	Size int
}

// NewThumbnailRequest sanitizes the raw identifier and applies the default size when size is 0.
func NewThumbnailRequest(rawImage string, size int) (ThumbnailRequest, error) {
	ref, err := SanitizeImageRef(rawImage)
	if err != nil {
		return ThumbnailRequest{}, err
	}
	if size == 0 {
		size = DefaultTargetSize
	}
	if size < 0 {
		return ThumbnailRequest{}, newInvalidRequest("size must be positive", map[string]interface{}{
			"size": size,
		})
	}
	return ThumbnailRequest{Ref: ref, Size: size}, nil
}

// CacheKey derives the content address of the artifact built for this request.
func (r ThumbnailRequest) CacheKey() CacheKey {
	d := digest.FromString(fmt.Sprintf("%s_%d", r.Ref, r.Size))
	return CacheKey{hex: d.Encoded(), ext: r.Ref.Extension()}
}

// CacheKey addresses a CachedArtifact. It carries the extension of the original file so that
// persisted artifacts keep a recognizable suffix.
type CacheKey struct {
	hex string
	ext string
}

// String returns the hex digest.
func (k CacheKey) String() string {
	return k.hex
}

// Ext returns the original extension, including the leading dot.
func (k CacheKey) Ext() string {
	return k.ext
}

// FileName is the on-disk name of the artifact: digest plus original extension.
func (k CacheKey) FileName() string {
	return k.hex + k.ext
}

// IsZero reports whether the key was never computed.
func (k CacheKey) IsZero() bool {
	return k.hex == ""
}

// CachedArtifact is an already-sized image ready to serve. It is never mutated after creation.
type CachedArtifact struct {
	Key         CacheKey
	Data        []byte
	ContentType string
	Size        int
}

// NewCachedArtifact builds an artifact, deriving Size from the payload.
func NewCachedArtifact(key CacheKey, data []byte, contentType string) *CachedArtifact {
	return &CachedArtifact{
		Key:         key,
		Data:        data,
		ContentType: contentType,
		Size:        len(data),
	}
}

// ThumbnailResult is what the orchestrator hands to the HTTP layer.
type ThumbnailResult struct {
	Artifact *CachedArtifact
	ETag     string
	CacheHit bool
	// Degraded is set when the artifact was built but could not be persisted.
	Degraded bool
}

// OriginImage is the raw payload retrieved from the origin.
type OriginImage struct {
	URL         string
	ContentType string
	Data        []byte
	FetchedAt   time.Time
}

// maxExtensionLen bounds the suffix carried into artifact file names.
const maxExtensionLen = 16

// Extension returns the extension of the reference, including the leading dot. Extensions
// longer than maxExtensionLen are dropped so artifact names stay within filesystem limits.
func (r OriginImageRef) Extension() string {
	ext := path.Ext(string(r))
	if len(ext) > maxExtensionLen {
		return ""
	}
	return ext
}
