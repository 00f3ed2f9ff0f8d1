package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"thumbs/config"
	"thumbs/di"
	"thumbs/rest"
	"thumbs/utils/logger"
	"thumbs/utils/otel"
)

const shutdownTimeout = 10 * time.Second

var envFile string

var rootCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Thumbnail cache and transcode service",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(warmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs logging and telemetry.
func bootstrap(ctx context.Context) (*config.Config, otel.ShutdownFunc, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}

	shutdown, err := otel.InitProvider(ctx, otel.Config{
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.OTel.ServiceVersion,
		Environment:    cfg.OTel.Environment,
		OTLPEndpoint:   cfg.OTel.OTLPEndpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.TraceSampleRatio,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry: %w", err)
	}

	logger.Init(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		EnableOTel:  cfg.OTel.Enabled,
		ServiceName: cfg.OTel.ServiceName,
	})

	return cfg, shutdown, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, shutdownTelemetry, err := bootstrap(ctx)
	if err != nil {
		slog.Error("Failed to start", "error", err)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	container, err := di.NewApplicationComponents(cfg, nil)
	if err != nil {
		logger.Logger.Error("Failed to build application", "error", err)
		return err
	}
	defer func() {
		if err := container.Metrics.Shutdown(context.Background()); err != nil {
			logger.Logger.Error("Failed to shutdown metrics", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	rest.RegisterRoutes(e, container, cfg)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("Starting server",
			"addr", addr,
			"origin", cfg.Origin.BaseURL,
			"cache_dir", container.DiskStore.Dir(),
			"cache_bytes", container.DiskStore.SizeBytes(),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Logger.Error("Error starting server", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
