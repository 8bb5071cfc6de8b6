// cmd/suggester-server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/catalog"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/database"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/llm"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/recommend"
	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting product suggester...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Warn("observability init failed, continuing without otel metrics", zap.Error(err))
		obs = observability.NewNoop()
	}

	ctx := context.Background()

	// --- Init PostgreSQL ---
	// An unreachable catalog degrades to empty recommendations, so startup continues.
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres pool init failed", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		return pg.Ping(ctx, 5*time.Second)
	}, 3, time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Warn("postgres unreachable, catalog loads will return no products", zap.Error(err))
	} else {
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Admission control ---
	limiter, closeLimiter, err := newLimiter(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("admission limiter init failed", zap.Error(err))
	}
	defer closeLimiter()

	// --- Recommendation pipeline ---
	llmClient := llm.NewClient(llm.LoadConfig(cfg), limiter, log, obs)
	loader := catalog.NewLoader(catalog.LoadConfig(cfg), pg.DB, log, obs)
	svc := recommend.NewService(recommend.LoadConfig(cfg), loader, llmClient, log, obs)

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("tool registry load failed", zap.Error(err))
	}

	mcpSrv, err := newMCPServer(cfg, reg, svc, log, obs)
	if err != nil {
		zapLog.Fatal("mcp server init failed", zap.Error(err))
	}
	httpSrv := newHTTPServer(cfg, mcpSrv)

	// --- Health & Metrics Server ---
	var admin *http.Server
	if cfg.Metrics.Enabled {
		admin = newAdminServer(cfg.Metrics.Addr)
		go func() {
			zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		zapLog.Info("MCP server listening",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("path", cfg.Server.Path),
		)
		if err := httpSrv.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("MCP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping MCP server", zap.Error(err))
	}
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Product suggester stopped gracefully")
}

// newLimiter builds the admission limiter for the configured backend. The
// returned func releases any connection the limiter owns.
func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Limiter, func(), error) {
	adm := cfg.LLM.Admission

	if adm.Backend != config.AdmissionRedis {
		log.Info("using in-process admission limiter", zap.Int("maxConcurrency", adm.MaxConcurrency))
		return llm.NewLocalLimiter(adm.MaxConcurrency), func() {}, nil
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 5, 2*time.Second, log, "Redis connection")
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	log.Info("Redis connected successfully",
		zap.String("key", adm.RedisKey),
		zap.Int("maxConcurrency", adm.MaxConcurrency),
	)

	limiter := llm.NewRedisLimiter(rdb.GetClient(), adm.RedisKey, adm.MaxConcurrency,
		config.GetDuration(adm.LeaseTTL), config.GetDuration(adm.PollInterval), logger.NewZapAdapter(log))
	return limiter, func() { rdb.Close() }, nil
}

func newAdminServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
