// Command pathtracer-api serves the HTTP/JSON surface spec.md §6.3
// describes, wiring internal/walker over the on-disk collected-data
// cache and a YAML-backed inventory, grounded on lake/api/main.go's
// startup and graceful-shutdown sequence.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"

	"github.com/malbeclabs/pathtracer/internal/apiserver"
	"github.com/malbeclabs/pathtracer/internal/collected"
	"github.com/malbeclabs/pathtracer/internal/collector"
	"github.com/malbeclabs/pathtracer/internal/config"
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/plugin"
	"github.com/malbeclabs/pathtracer/internal/walker"
)

// Set by LDFLAGS.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownGrace = 30 * time.Second

func main() {
	_ = godotenv.Load()

	verbose := os.Getenv("PATHTRACER_VERBOSE") == "true"
	log := newLogger(verbose)
	log.Info("starting pathtracer-api", "version", version, "commit", commit, "date", date)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	inv, err := inventory.NewStore(cfg.InventoryPath)
	if err != nil {
		log.Error("failed to load inventory", "error", err)
		os.Exit(1)
	}

	fileCache, err := collector.NewFileCache(collector.FileCacheConfig{
		Root:        cfg.CollectedRoot,
		MaxAttempts: cfg.CollectorMaxAttempts,
		Log:         log,
	})
	if err != nil {
		log.Error("failed to build file-cache collector", "error", err)
		os.Exit(1)
	}

	collectedCache, err := collected.New(collected.Config{
		Root: cfg.CollectedRoot,
		TTL:  cfg.CollectedCacheTTL,
	})
	if err != nil {
		log.Error("failed to build collected-data cache", "error", err)
		os.Exit(1)
	}

	plugins := plugin.NewRegistry(log, plugin.OIDAIDDecoder{})

	w := walker.New(fileCache, inv, plugins, log, walker.Config{
		MaxHops:         cfg.MaxHops,
		MaxECMPBranches: cfg.MaxECMPBranches,
		MaxTotalPaths:   cfg.MaxTotalPaths,
		ECMPPoolSize:    cfg.ECMPPoolSize,
	})

	srv := apiserver.New(apiserver.Deps{
		Walker:      w,
		Inventory:   inv,
		Graph:       inv,
		Collected:   collectedCache,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		Version:     version,
		Commit:      commit,
		Date:        date,
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		listener, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			log.Warn("failed to start metrics listener", "error", err)
		} else {
			log.Info("metrics listening", "address", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsServer = &http.Server{Handler: mux}
			go func() {
				if err := metricsServer.Serve(listener); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server error", "error", err)
				}
			}()
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("listening", "address", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-shutdown
	log.Info("received signal, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx, httpServer); err != nil {
		log.Error("graceful shutdown error", "error", err)
	} else {
		log.Info("server stopped gracefully")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error("metrics server shutdown error", "error", err)
		}
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
