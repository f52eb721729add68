package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

// cachedTable is the on-disk shape of <root>/<device>/{bgp,mpls,isis}-rib.json
// (spec.md §6.4): a collection timestamp plus the routes collected at that
// time.
type cachedTable struct {
	CollectedAt time.Time          `json:"collected_at"`
	Routes      []routeentry.Entry `json:"routes"`
}

var ribFiles = [...]string{"bgp-rib.json", "mpls-rib.json", "isis-rib.json"}

// FileCacheConfig configures a FileCache Collector.
type FileCacheConfig struct {
	// Root is the directory containing one subdirectory per device.
	Root string
	// MaxAttempts bounds retries against transient read failures.
	// Defaults to 3.
	MaxAttempts uint64
	// Log receives warnings about malformed or unreadable cache files.
	Log *slog.Logger
}

func (c *FileCacheConfig) validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	return nil
}

// FileCache is the reference Collector adapter: it reads the bulk
// collector's on-disk JSON cache (spec.md §6.4) rather than talking to a
// live device. It groups every route in a device's *-rib.json files by
// prefix and returns the longest covering match's entries, filtered to
// vrf. A device directory or rib file that doesn't exist is treated as
// "no routes", not an error — only an I/O failure on a file that does
// exist is retried and surfaced as a CollectorError.
type FileCache struct {
	cfg FileCacheConfig
}

// NewFileCache builds a FileCache collector rooted at cfg.Root.
func NewFileCache(cfg FileCacheConfig) (*FileCache, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid file cache config: %w", err)
	}
	return &FileCache{cfg: cfg}, nil
}

func (fc *FileCache) Collect(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error) {
	var table routeentry.Table
	op := func() error {
		t, err := fc.loadDeviceTable(device)
		if err != nil {
			return err
		}
		table = t
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fc.cfg.MaxAttempts-1), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, &CollectorError{Op: "collect", Device: device, Prefix: prefix, Err: err}
	}

	matches := routeentry.LongestMatch(table, prefix)
	if len(matches) == 0 {
		return nil, nil
	}

	out := make([]routeentry.Entry, 0, len(matches))
	for _, e := range matches {
		if vrf != "" && e.VRF != vrf {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// loadDeviceTable reads and merges every rib file under root/device into
// one prefix-keyed table.
func (fc *FileCache) loadDeviceTable(device string) (routeentry.Table, error) {
	deviceDir := filepath.Join(fc.cfg.Root, device)
	if _, err := os.Stat(deviceDir); os.IsNotExist(err) {
		return routeentry.Table{}, nil
	}

	table := routeentry.Table{}
	for _, name := range ribFiles {
		path := filepath.Join(deviceDir, name)
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var cached cachedTable
		if err := json.Unmarshal(raw, &cached); err != nil {
			fc.cfg.Log.Warn("malformed collected-data cache file, skipping", "path", path, "error", err)
			continue
		}

		if time.Since(cached.CollectedAt) > staleAfter {
			fc.cfg.Log.Warn("collected-data cache entry is stale", "path", path, "collectedAt", cached.CollectedAt)
		}

		for _, route := range cached.Routes {
			table[route.Prefix] = append(table[route.Prefix], route)
		}
	}
	return table, nil
}

// staleAfter is the staleness window from spec.md §6.4.
const staleAfter = time.Hour

// CollectorError reports a transport/read failure talking to a device's
// collected data. The Walker maps this to an "unreachable" hop (spec.md
// §7).
type CollectorError struct {
	Op     string
	Device string
	Prefix string
	Err    error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collector: %s device=%s prefix=%s: %v", e.Op, e.Device, e.Prefix, e.Err)
}

func (e *CollectorError) Unwrap() error { return e.Err }
