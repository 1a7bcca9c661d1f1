package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradewatch/whale-data/internal/api"
	"github.com/tradewatch/whale-data/internal/config"
	"github.com/tradewatch/whale-data/internal/database"
	"github.com/tradewatch/whale-data/internal/feed"
	"github.com/tradewatch/whale-data/internal/market"
	"github.com/tradewatch/whale-data/internal/metrics"
	"github.com/tradewatch/whale-data/internal/pipeline"
	"github.com/tradewatch/whale-data/internal/poll"
	"github.com/tradewatch/whale-data/internal/sink"
	"github.com/tradewatch/whale-data/internal/stats"
	"github.com/tradewatch/whale-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/watcher.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting whale watcher",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
		"feed_url", cfg.Feed.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	m := metrics.New("whale_watch")

	// Data API client, shared by the registry and the poll collector
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Market registry: top-volume list plus title cache
	registry := market.NewRegistry(market.Config{
		RefreshInterval: cfg.Poller.MarketsRefresh,
		TopMarkets:      cfg.Poller.TopMarkets,
		RequestTimeout:  cfg.Poller.RequestTimeout,
	}, apiClient, logger)

	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start market registry", "error", err)
		os.Exit(1)
	}

	// Optional sinks
	var sinks []pipeline.Sink
	var pool *pgxpool.Pool

	if cfg.Database.Postgres.Host != "" {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)

		pool, err = database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgSink := sink.NewPostgres(sink.PostgresConfig{
			BatchSize:     cfg.Writer.BatchSize,
			FlushInterval: cfg.Writer.FlushInterval,
		}, pool, logger)
		if err := pgSink.Start(ctx); err != nil {
			logger.Error("failed to start postgres sink", "error", err)
			os.Exit(1)
		}
		defer stopComponent(pgSink.Stop, logger, "postgres sink")

		sinks = append(sinks, pgSink)
	}

	if cfg.Redis.URL != "" {
		redisSink, err := sink.NewRedis(cfg.Redis.URL, cfg.Redis.Channel, logger)
		if err != nil {
			logger.Error("failed to create redis sink", "error", err)
			os.Exit(1)
		}
		if err := redisSink.Start(ctx); err != nil {
			logger.Error("failed to start redis sink", "error", err)
			os.Exit(1)
		}
		defer stopComponent(redisSink.Stop, logger, "redis sink")

		sinks = append(sinks, redisSink)
	}

	// Classification pipeline
	engine := stats.NewEngine(stats.Config{
		GlobalWindow: cfg.Stats.GlobalWindow,
		MarketWindow: cfg.Stats.MarketWindow,
		MinSamples:   cfg.Stats.MinSamples,
	})

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.DedupMax = cfg.Dedup.MaxEntries
	pipeCfg.DedupTrimTo = cfg.Dedup.TrimTo

	pipe := pipeline.New(pipeCfg, engine, sinks, logger, m)
	if err := pipe.Start(ctx); err != nil {
		logger.Error("failed to start pipeline", "error", err)
		os.Exit(1)
	}
	defer stopComponent(pipe.Stop, logger, "pipeline")

	// Push feed
	connector := feed.NewConnector(feed.ConnectorConfig{
		URL:               cfg.Feed.URL,
		ReconnectDelay:    cfg.Feed.ReconnectDelay,
		HeartbeatInterval: cfg.Feed.HeartbeatInterval,
		WriteTimeout:      cfg.Feed.WriteTimeout,
		BufferSize:        cfg.Feed.BufferSize,
	}, registry, registry, pipe, logger, m)

	if err := connector.Start(ctx); err != nil {
		logger.Error("failed to start feed connector", "error", err)
		os.Exit(1)
	}
	defer stopComponent(connector.Stop, logger, "feed connector")

	// Polling feed
	collector := poll.New(poll.Config{
		Interval:  cfg.Poller.Interval,
		PageLimit: cfg.Poller.PageLimit,
		Timeout:   cfg.Poller.RequestTimeout,
	}, apiClient, registry, registry, pipe, logger, m)

	if err := collector.Start(ctx); err != nil {
		logger.Error("failed to start trade collector", "error", err)
		os.Exit(1)
	}
	defer stopComponent(collector.Stop, logger, "trade collector")

	defer stopComponent(registry.Stop, logger, "market registry")

	// Ops HTTP surface
	opsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Ops.Port),
		Handler: newOpsRouter(cfg, pool, registry, pipe),
	}

	go func() {
		logger.Info("starting ops server", "port", cfg.Ops.Port)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	logger.Info("whale watcher running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Ops.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	opsServer.Shutdown(shutdownCtx)

	// Deferred stops run in reverse wiring order from here.
}

// stopComponent runs a component's Stop with a bounded timeout.
func stopComponent(stop func(context.Context) error, logger *slog.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := stop(ctx); err != nil {
		logger.Warn("component stop failed", "component", name, "error", err)
	}
}

// newOpsRouter builds the health, metrics, and debug endpoints.
func newOpsRouter(cfg *config.WatcherConfig, pool *pgxpool.Pool, registry *market.Registry, pipe *pipeline.Orchestrator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle(cfg.Ops.MetricsPath, promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		top := registry.TopMarkets()
		health.Components["market_registry"] = map[string]interface{}{
			"top_markets": len(top),
		}
		if len(top) == 0 {
			health.Status = "degraded"
		}

		health.Components["pipeline"] = pipe.Stats()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	r.Get("/debug/anomalies", func(w http.ResponseWriter, req *http.Request) {
		recent := pipe.RecentAnomalies()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":     len(recent),
			"anomalies": recent,
		})
	})

	r.Get("/debug/markets", func(w http.ResponseWriter, req *http.Request) {
		top := registry.TopMarkets()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   len(top),
			"markets": top,
		})
	})

	return r
}
