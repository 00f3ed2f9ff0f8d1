package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"thumbs/di"
	"thumbs/utils/logger"
)

var (
	warmSize        int
	warmConcurrency int
)

var warmCmd = &cobra.Command{
	Use:   "warm <image>...",
	Short: "Build and persist thumbnails ahead of traffic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWarm,
}

func init() {
	warmCmd.Flags().IntVar(&warmSize, "size", 0, "target size, 0 selects the configured default")
	warmCmd.Flags().IntVar(&warmConcurrency, "concurrency", 4, "number of thumbnails built in parallel")
}

func runWarm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, shutdownTelemetry, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	container, err := di.NewApplicationComponents(cfg, nil)
	if err != nil {
		return err
	}

	results := container.ThumbnailUsecase.WarmCache(ctx, args, warmSize, warmConcurrency)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Logger.Error("Warm failed", "image", r.Image, "error", r.Err)
			continue
		}
		logger.Logger.Info("Warmed", "image", r.Image, "key", r.Key, "bytes", r.Bytes, "cache_hit", r.CacheHit)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "warmed %d/%d thumbnails\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d thumbnails failed", failed, len(results))
	}
	return nil
}
