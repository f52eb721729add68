// Package config loads pathtracer's runtime configuration from the
// environment, the way lake/api/config/config.go and config/env.go do it:
// a plain struct, a Load() that reads os.Getenv with defaults, and a
// Validate() that rejects anything required but missing.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr     = ":8080"
	defaultMetricsAddr    = "0.0.0.0:0"
	defaultCollectedTTL   = 30 * time.Second
	defaultMaxHops        = 20
	defaultMaxECMP        = 8
	defaultECMPPoolSize   = 16
	defaultCollectorTries = 3
)

// Config is the pathtracer API server's full runtime configuration.
type Config struct {
	// ListenAddr is where the HTTP API listens, e.g. ":8080".
	ListenAddr string
	// MetricsAddr is where the prometheus /metrics endpoint listens.
	// Empty disables the metrics listener.
	MetricsAddr string
	// InventoryPath is the device/domain/boundary YAML file (spec.md §3).
	InventoryPath string
	// CollectedRoot is the root of the on-disk collected-data cache
	// (spec.md §6.4): <root>/<device>/{bgp,mpls,isis}-rib.json.
	CollectedRoot string
	// CollectedCacheTTL bounds how long internal/collected's in-memory
	// status cache may serve a stale read before re-checking disk.
	CollectedCacheTTL time.Duration
	// CORSOrigins is the allowed origin list for the HTTP API. A single
	// "*" allows all origins.
	CORSOrigins []string
	// MaxHops, MaxECMPBranches, MaxTotalPaths, ECMPPoolSize tune
	// internal/walker.Config (spec.md §4.D, §5).
	MaxHops         int
	MaxECMPBranches int
	MaxTotalPaths   int
	ECMPPoolSize    int
	// CollectorMaxAttempts bounds the backoff retry count around a single
	// device's file-cache collection (spec.md §5).
	CollectorMaxAttempts uint64
}

// Load reads configuration from the environment, applying defaults for
// anything unset, and returns the result of Validate on it.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:           getenv("PATHTRACER_LISTEN_ADDR", defaultListenAddr),
		MetricsAddr:          getenv("PATHTRACER_METRICS_ADDR", defaultMetricsAddr),
		InventoryPath:        os.Getenv("PATHTRACER_INVENTORY_PATH"),
		CollectedRoot:        os.Getenv("PATHTRACER_COLLECTED_ROOT"),
		CollectedCacheTTL:    defaultCollectedTTL,
		CORSOrigins:          []string{"*"},
		MaxHops:              defaultMaxHops,
		MaxECMPBranches:      defaultMaxECMP,
		ECMPPoolSize:         defaultECMPPoolSize,
		CollectorMaxAttempts: defaultCollectorTries,
	}

	if origins := os.Getenv("PATHTRACER_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	if v := os.Getenv("PATHTRACER_COLLECTED_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_COLLECTED_CACHE_TTL: invalid duration: " + err.Error())
		}
		cfg.CollectedCacheTTL = d
	}

	if v := os.Getenv("PATHTRACER_MAX_HOPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_MAX_HOPS: invalid int: " + err.Error())
		}
		cfg.MaxHops = n
	}
	if v := os.Getenv("PATHTRACER_MAX_ECMP_BRANCHES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_MAX_ECMP_BRANCHES: invalid int: " + err.Error())
		}
		cfg.MaxECMPBranches = n
	}
	if v := os.Getenv("PATHTRACER_MAX_TOTAL_PATHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_MAX_TOTAL_PATHS: invalid int: " + err.Error())
		}
		cfg.MaxTotalPaths = n
	}
	if v := os.Getenv("PATHTRACER_ECMP_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_ECMP_POOL_SIZE: invalid int: " + err.Error())
		}
		cfg.ECMPPoolSize = n
	}
	if v := os.Getenv("PATHTRACER_COLLECTOR_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, errors.New("PATHTRACER_COLLECTOR_MAX_ATTEMPTS: invalid uint: " + err.Error())
		}
		cfg.CollectorMaxAttempts = n
	}

	return cfg, cfg.Validate()
}

// Validate rejects a Config missing a required field. Defaults are
// already applied by Load; Validate only checks what has no sane default.
func (c Config) Validate() error {
	if c.InventoryPath == "" {
		return errors.New("PATHTRACER_INVENTORY_PATH is required")
	}
	if c.CollectedRoot == "" {
		return errors.New("PATHTRACER_COLLECTED_ROOT is required")
	}
	if c.ListenAddr == "" {
		return errors.New("PATHTRACER_LISTEN_ADDR is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
