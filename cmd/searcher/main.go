package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/redis"
)

func main() {
	flags := pflag.NewFlagSet("searcher", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "configs/development.yaml", "path to config file")
	port := flags.IntP("port", "p", 0, "HTTP port (overrides server.port)")
	noCache := flags.Bool("no-cache", false, "disable the Redis result cache")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"docs_dir", cfg.Retrieval.DocsDir,
		"index_file", cfg.Retrieval.IndexFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	rc := retrieval.New(cfg.Retrieval, retrieval.WithMetrics(m))
	go func() {
		if err := rc.Init(ctx, cfg.Retrieval.DocsDir, cfg.Retrieval.IndexFile); err != nil {
			slog.Error("failed to load retrieval context", "error", err)
			return
		}
		slog.Info("retrieval context ready")
	}()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if !*noCache {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, cache.Namespace(cfg.Retrieval))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("retrieval", health.StateCheck(rc.State, retrieval.StateReady, retrieval.StateLoading))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping))
	}

	h := handler.New(rc, queryCache, m, cfg.Retrieval.Limit)

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Metrics(m),
		middleware.Timeout(cfg.Server.WriteTimeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
