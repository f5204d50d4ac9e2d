package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
	"github.com/mikey/spam-detective/internal/di"
	"github.com/mikey/spam-detective/internal/engine"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	eng *engine.Engine,
	repo core.AccountRepository,
	cacheStore core.CacheStore,
) error {
	defer logger.Sync()

	interval, err := cfg.GetDuration("batch.interval")
	if err != nil {
		logger.Fatal("Invalid batch interval", zap.Error(err))
		return err
	}
	limit := cfg.GetInt("batch.limit")

	// Expose metrics when a listen address is configured
	var metricsServer *http.Server
	if addr := cfg.GetString("metrics.listen_address"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: addr, Handler: mux}
		go func() {
			logger.Info("Starting metrics listener", zap.String("address", addr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics listener failed", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Starting scan loop", zap.Duration("interval", interval), zap.Int("limit", limit))
	runScan(ctx, eng, cacheStore, logger, limit)

	for {
		select {
		case <-ticker.C:
			runScan(ctx, eng, cacheStore, logger, limit)
		case <-sigCh:
			logger.Info("Shutting down...")
			cancel()

			if metricsServer != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					logger.Error("Failed to stop metrics listener", zap.Error(err))
				}
				shutdownCancel()
			}

			// Stop the cache if needed
			if stopper, ok := cacheStore.(interface{ Stop() }); ok {
				stopper.Stop()
			}

			// Close any resources that need closing
			if closer, ok := repo.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close account repository", zap.Error(err))
				}
			}

			logger.Info("Shutdown complete")
			return nil
		}
	}
}

func runScan(ctx context.Context, eng *engine.Engine, cacheStore core.CacheStore, logger *zap.Logger, limit int) {
	report, err := eng.AnalyzeBatch(ctx, limit)
	if err != nil {
		logger.Error("Batch scan failed", zap.Error(err))
		return
	}
	for _, result := range report.Results {
		logger.Info("Suspicious account",
			zap.Int64("account_id", result.AccountID),
			zap.Int("score", result.Score),
			zap.String("risk_level", string(result.RiskLevel)),
			zap.Strings("reasons", result.Reasons))
	}

	if statser, ok := cacheStore.(interface {
		Stats(context.Context) (int, int, error)
	}); ok {
		if total, expired, err := statser.Stats(ctx); err == nil {
			logger.Debug("Cache stats", zap.Int("total", total), zap.Int("expired", expired))
		}
	}
}
