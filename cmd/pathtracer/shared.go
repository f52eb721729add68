package main

import (
	"fmt"
	"log/slog"

	"github.com/malbeclabs/pathtracer/internal/collected"
	"github.com/malbeclabs/pathtracer/internal/collector"
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/plugin"
	"github.com/malbeclabs/pathtracer/internal/walker"
)

// coreDeps bundles the components every subcommand needs. Built fresh
// per invocation — the CLI is a one-shot process, unlike the long-lived
// API server.
type coreDeps struct {
	inv    *inventory.Store
	walker *walker.Walker
	log    *slog.Logger
}

func buildCoreDeps() (*coreDeps, error) {
	log := newLogger()

	inv, err := inventory.NewStore(inventoryPath)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	fileCache, err := collector.NewFileCache(collector.FileCacheConfig{
		Root: collectedRoot,
		Log:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("build file-cache collector: %w", err)
	}

	plugins := plugin.NewRegistry(log, plugin.OIDAIDDecoder{})

	w := walker.New(fileCache, inv, plugins, log, walker.Config{})

	return &coreDeps{inv: inv, walker: w, log: log}, nil
}

// buildCollectedCache is only needed by subcommands that inspect cache
// staleness directly rather than through the Walker.
func buildCollectedCache() (*collected.Cache, error) {
	return collected.New(collected.Config{Root: collectedRoot})
}
