package thumbnail_usecase

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"thumbs/domain"
	"thumbs/mocks"
	"thumbs/utils/errors"
)

// memoryCache is a hand-written ArtifactCachePort that remembers what was stored.
type memoryCache struct {
	mu        sync.Mutex
	items     map[string]*domain.CachedArtifact
	failStore bool
	lookups   atomic.Int32
	stores    atomic.Int32
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*domain.CachedArtifact)}
}

func (c *memoryCache) Lookup(ctx context.Context, key domain.CacheKey) (*domain.CachedArtifact, bool, error) {
	c.lookups.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.items[key.FileName()]
	return a, ok, nil
}

func (c *memoryCache) Store(ctx context.Context, key domain.CacheKey, data []byte, contentType string) (*domain.CachedArtifact, error) {
	c.stores.Add(1)
	artifact := domain.NewCachedArtifact(key, data, contentType)
	if c.failStore {
		return artifact, errors.NewPersistFailureError("disk full", "test", "memoryCache", "store", stderrors.New("ENOSPC"), nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key.FileName()] = artifact
	return artifact, nil
}

const originBase = "https://origin.test/imgs/"

type fixture struct {
	cache      *memoryCache
	origin     *mocks.MockOriginFetchPort
	transcoder *mocks.MockTranscodePort
	usecase    *ThumbnailUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		cache:      newMemoryCache(),
		origin:     mocks.NewMockOriginFetchPort(ctrl),
		transcoder: mocks.NewMockTranscodePort(ctrl),
	}
	f.origin.EXPECT().OriginURL(gomock.Any()).DoAndReturn(func(ref domain.OriginImageRef) string {
		return originBase + ref.String()
	}).AnyTimes()
	f.usecase = NewThumbnailUsecase(f.cache, f.origin, f.transcoder, nil, Options{
		DefaultSize:  500,
		BuildTimeout: 5 * time.Second,
	})
	return f
}

func originImage(data []byte) *domain.OriginImage {
	return &domain.OriginImage{URL: originBase + "x", Data: data, FetchedAt: time.Now()}
}

func resized(data []byte) *domain.TranscodeResult {
	return &domain.TranscodeResult{Data: data, ContentType: "image/jpeg", Format: domain.ImageFormatJPEG, Width: 300, Height: 225}
}

func mustRequest(t *testing.T, u *ThumbnailUsecase, image string, size int) domain.ThumbnailRequest {
	t.Helper()
	req, err := u.NewRequest(image, size)
	require.NoError(t, err)
	return req
}

func TestNewRequest_Normalisation(t *testing.T) {
	f := newFixture(t)

	req := mustRequest(t, f.usecase, "../a/photo.jpg", 0)
	assert.Equal(t, domain.OriginImageRef("photo.jpg"), req.Ref)
	assert.Equal(t, 500, req.Size)

	req = mustRequest(t, f.usecase, "photo.jpg", 50000)
	assert.Equal(t, 50000, req.Size, "large sizes are kept so the original is never shrunk")

	_, err := f.usecase.NewRequest("photo.jpg", -3)
	assert.True(t, errors.IsInvalidRequest(err))

	_, err = f.usecase.NewRequest("..", 100)
	assert.True(t, errors.IsInvalidRequest(err))
}

func TestETagFor_IndependentOfArtifact(t *testing.T) {
	f := newFixture(t)
	a := f.usecase.ETagFor(mustRequest(t, f.usecase, "photo.jpg", 300))
	b := f.usecase.ETagFor(mustRequest(t, f.usecase, "dir/photo.jpg", 300))
	c := f.usecase.ETagFor(mustRequest(t, f.usecase, "photo.jpg", 301))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGetThumbnail_MissThenHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := mustRequest(t, f.usecase, "photo.jpg", 300)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), domain.OriginImageRef("photo.jpg")).Return(originImage([]byte("raw")), nil).Times(1)
	f.transcoder.EXPECT().Transcode(gomock.Any(), []byte("raw"), 300).Return(resized([]byte("thumb")), nil).Times(1)

	first, err := f.usecase.GetThumbnail(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.False(t, first.Degraded)
	assert.Equal(t, []byte("thumb"), first.Artifact.Data)
	assert.Equal(t, "image/jpeg", first.Artifact.ContentType)
	assert.Equal(t, f.usecase.ETagFor(req), first.ETag)

	second, err := f.usecase.GetThumbnail(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Artifact.Data, second.Artifact.Data)
	assert.Equal(t, first.ETag, second.ETag)
}

func TestGetThumbnail_SingleFlight(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "photo.jpg", 300)

	release := make(chan struct{})
	var fetches atomic.Int32
	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ref domain.OriginImageRef) (*domain.OriginImage, error) {
			fetches.Add(1)
			<-release
			return originImage([]byte("raw")), nil
		}).Times(1)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 300).Return(resized([]byte("thumb")), nil).Times(1)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*domain.ThumbnailResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.usecase.GetThumbnail(context.Background(), req)
		}()
	}

	require.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []byte("thumb"), results[i].Artifact.Data)
	}
	assert.Equal(t, int32(1), f.cache.stores.Load())
}

func TestGetThumbnail_DistinctKeysBuildIndependently(t *testing.T) {
	f := newFixture(t)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), domain.OriginImageRef("photo.jpg")).Return(originImage([]byte("raw")), nil).Times(2)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 100).Return(resized([]byte("small")), nil)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 200).Return(resized([]byte("large")), nil)

	small, err := f.usecase.GetThumbnail(context.Background(), mustRequest(t, f.usecase, "photo.jpg", 100))
	require.NoError(t, err)
	large, err := f.usecase.GetThumbnail(context.Background(), mustRequest(t, f.usecase, "photo.jpg", 200))
	require.NoError(t, err)

	assert.Equal(t, []byte("small"), small.Artifact.Data)
	assert.Equal(t, []byte("large"), large.Artifact.Data)
}

func TestGetThumbnail_OriginUnavailable(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "missing.jpg", 300)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(nil,
		errors.NewOriginUnavailableError("fetch failed", "gateway", "OriginFetchGateway", "http_request", stderrors.New("status code: 404"), nil))

	result, err := f.usecase.GetThumbnail(context.Background(), req)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsOriginUnavailable(err))
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatus(err))
	assert.Equal(t, int32(0), f.cache.stores.Load(), "nothing persisted")
}

func TestGetThumbnail_PersistFailureServesDegraded(t *testing.T) {
	f := newFixture(t)
	f.cache.failStore = true
	req := mustRequest(t, f.usecase, "photo.jpg", 300)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(originImage([]byte("raw")), nil).Times(2)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 300).Return(resized([]byte("thumb")), nil).Times(2)

	for i := 0; i < 2; i++ {
		result, err := f.usecase.GetThumbnail(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.Degraded)
		assert.False(t, result.CacheHit)
		assert.Equal(t, []byte("thumb"), result.Artifact.Data)
	}
}

func TestGetThumbnail_UnsupportedPassthrough(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "doc.webp", 300)
	raw := []byte("RIFF....WEBPVP8 ")

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(originImage(raw), nil)
	f.transcoder.EXPECT().Transcode(gomock.Any(), raw, 300).Return(&domain.TranscodeResult{
		Data: raw, ContentType: "image/webp", Format: domain.ImageFormatUnsupported, Passthrough: true,
	}, nil)

	result, err := f.usecase.GetThumbnail(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, raw, result.Artifact.Data)
	assert.Equal(t, "image/webp", result.Artifact.ContentType)
	assert.Equal(t, int32(1), f.cache.stores.Load())
}

func TestGetThumbnail_EmptyOriginBodyIsUnservable(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "empty.jpg", 300)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(originImage(nil), nil)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 300).Return(&domain.TranscodeResult{
		Format: domain.ImageFormatUnsupported, Passthrough: true,
	}, nil)

	_, err := f.usecase.GetThumbnail(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsUnservable(err))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))
}

func TestGetThumbnail_DecodeFailurePersistsRaw(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "broken.png", 300)
	raw := []byte("\x89PNG\r\n\x1a\n truncated")

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(originImage(raw), nil)
	f.transcoder.EXPECT().Transcode(gomock.Any(), raw, 300).Return(nil,
		errors.NewDecodeFailureError("failed to decode image", "gateway", "TranscodeGateway", "transcode", stderrors.New("unexpected EOF"), nil))

	result, err := f.usecase.GetThumbnail(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, raw, result.Artifact.Data)
	assert.Equal(t, "image/png", result.Artifact.ContentType)
	assert.False(t, result.Degraded)
}

func TestGetThumbnail_DecodeFailureWithPersistFailureIs500(t *testing.T) {
	f := newFixture(t)
	f.cache.failStore = true
	req := mustRequest(t, f.usecase, "broken.png", 300)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).Return(originImage([]byte("\x89PNG garbage")), nil)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 300).Return(nil,
		errors.NewDecodeFailureError("failed to decode image", "gateway", "TranscodeGateway", "transcode", nil, nil))

	_, err := f.usecase.GetThumbnail(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsUnservable(err))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))
}

func TestGetThumbnail_WaiterCancellationDoesNotAbortBuild(t *testing.T) {
	f := newFixture(t)
	req := mustRequest(t, f.usecase, "slow.jpg", 300)

	release := make(chan struct{})
	built := make(chan struct{})
	f.origin.EXPECT().FetchOrigin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ref domain.OriginImageRef) (*domain.OriginImage, error) {
			<-release
			assert.NoError(t, ctx.Err(), "build context must outlive the abandoned request")
			return originImage([]byte("raw")), nil
		}).Times(1)
	f.transcoder.EXPECT().Transcode(gomock.Any(), gomock.Any(), 300).DoAndReturn(
		func(ctx context.Context, data []byte, size int) (*domain.TranscodeResult, error) {
			defer close(built)
			return resized([]byte("thumb")), nil
		}).Times(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := f.usecase.GetThumbnail(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.IsOriginUnavailable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	select {
	case <-built:
	case <-time.After(2 * time.Second):
		t.Fatal("build did not complete after the waiter left")
	}

	require.Eventually(t, func() bool { return f.cache.stores.Load() == 1 }, time.Second, time.Millisecond)

	result, err := f.usecase.GetThumbnail(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.CacheHit)
}

func TestWarmCache(t *testing.T) {
	f := newFixture(t)

	f.origin.EXPECT().FetchOrigin(gomock.Any(), domain.OriginImageRef("a.jpg")).Return(originImage([]byte("a")), nil)
	f.origin.EXPECT().FetchOrigin(gomock.Any(), domain.OriginImageRef("b.jpg")).Return(nil,
		errors.NewOriginUnavailableError("fetch failed", "gateway", "OriginFetchGateway", "http_request", nil, nil))
	f.transcoder.EXPECT().Transcode(gomock.Any(), []byte("a"), 120).Return(resized([]byte("thumb-a")), nil)

	results := f.usecase.WarmCache(context.Background(), []string{"a.jpg", "b.jpg", ""}, 120, 2)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, len("thumb-a"), results[0].Bytes)
	assert.NotEmpty(t, results[0].Key)

	assert.True(t, errors.IsOriginUnavailable(results[1].Err))
	assert.True(t, errors.IsInvalidRequest(results[2].Err))
}
