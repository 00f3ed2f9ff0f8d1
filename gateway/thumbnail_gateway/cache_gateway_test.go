package thumbnail_gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumbs/domain"
	"thumbs/driver/artifact_store"
	"thumbs/utils/errors"
)

func newCacheGateway(t *testing.T, memEntries int) (*CacheGateway, string) {
	t.Helper()
	dir := t.TempDir()
	disk, err := artifact_store.NewDiskStore(dir)
	require.NoError(t, err)
	mem, err := artifact_store.NewMemoryTier(memEntries)
	require.NoError(t, err)
	return NewCacheGateway(disk, mem), dir
}

func TestCacheGateway_StoreThenLookup(t *testing.T) {
	gw, dir := newCacheGateway(t, 0)
	ctx := context.Background()
	key := domain.ThumbnailRequest{Ref: "photo.png", Size: 100}.CacheKey()
	data := encodePNG(t, createTestImage(10, 10))

	_, found, err := gw.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	stored, err := gw.Store(ctx, key, data, "image/png")
	require.NoError(t, err)
	assert.Equal(t, len(data), stored.Size)

	_, err = os.Stat(filepath.Join(dir, key.FileName()))
	require.NoError(t, err)

	got, found, err := gw.Lookup(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, data, got.Data)
	assert.Equal(t, "image/png", got.ContentType, "content type sniffed from bytes")
	assert.Equal(t, key, got.Key)
	assert.Equal(t, int64(len(data)), gw.SizeBytes())
}

func TestCacheGateway_SurvivesRestart(t *testing.T) {
	gw, dir := newCacheGateway(t, 8)
	ctx := context.Background()
	key := domain.ThumbnailRequest{Ref: "a.jpg", Size: 300}.CacheKey()
	data := encodeJPEG(t, createTestImage(20, 20))

	_, err := gw.Store(ctx, key, data, "image/jpeg")
	require.NoError(t, err)

	disk, err := artifact_store.NewDiskStore(dir)
	require.NoError(t, err)
	fresh := NewCacheGateway(disk, nil)

	got, found, err := fresh.Lookup(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "image/jpeg", got.ContentType)
}

func TestCacheGateway_MemoryTierServesWithoutDisk(t *testing.T) {
	gw, dir := newCacheGateway(t, 8)
	ctx := context.Background()
	key := domain.ThumbnailRequest{Ref: "a.gif", Size: 50}.CacheKey()

	_, err := gw.Store(ctx, key, []byte("GIF89a..."), "image/gif")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, key.FileName())))

	got, found, err := gw.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "image/gif", got.ContentType)
}

func TestCacheGateway_PersistFailure(t *testing.T) {
	gw, dir := newCacheGateway(t, 8)
	ctx := context.Background()
	key := domain.ThumbnailRequest{Ref: "a.jpg", Size: 10}.CacheKey()

	// Replacing the root directory with a plain file makes every write fail.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o644))

	artifact, err := gw.Store(ctx, key, []byte("data"), "image/jpeg")
	require.Error(t, err)
	assert.True(t, errors.IsPersistFailure(err))
	require.NotNil(t, artifact, "bytes are still handed back for degraded serving")
	assert.Equal(t, []byte("data"), artifact.Data)
}

func TestCacheGateway_LookupCancelled(t *testing.T) {
	gw, _ := newCacheGateway(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gw.Lookup(ctx, domain.ThumbnailRequest{Ref: "a.jpg", Size: 10}.CacheKey())
	assert.ErrorIs(t, err, context.Canceled)
}
