package thumbnail_usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"thumbs/utils/logger"
)

// WarmResult reports the outcome of warming a single image.
type WarmResult struct {
	Image    string
	Key      string
	Bytes    int
	CacheHit bool
	Err      error
}

// WarmCache builds artifacts for images at size through the same path as live requests.
// Failures are reported per image and never abort the remaining work.
func (u *ThumbnailUsecase) WarmCache(ctx context.Context, images []string, size int, concurrency int) []WarmResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]WarmResult, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, image := range images {
		g.Go(func() error {
			results[i] = u.warmOne(gctx, image, size)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (u *ThumbnailUsecase) warmOne(ctx context.Context, image string, size int) WarmResult {
	res := WarmResult{Image: image}

	req, err := u.NewRequest(image, size)
	if err != nil {
		res.Err = err
		return res
	}
	res.Key = req.CacheKey().FileName()

	out, err := u.GetThumbnail(ctx, req)
	if err != nil {
		logger.SafeWarnContext(ctx, "warm failed", "image", image, "error", err)
		res.Err = err
		return res
	}
	res.Bytes = out.Artifact.Size
	res.CacheHit = out.CacheHit
	return res
}
