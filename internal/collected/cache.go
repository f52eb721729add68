// Package collected inspects the bulk collector's on-disk JSON cache
// (spec.md §6.4) for the GET /api/collected endpoint: per-device,
// per-protocol-table collection timestamps and staleness warnings. It
// reads the same <root>/<device>/{bgp,mpls,isis}-rib.json layout the
// Walker's FileCache collector reads, fronted by an in-memory ttlcache
// so repeated API polling doesn't hammer disk.
package collected

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// StaleAfter is the staleness window from spec.md §6.4: a cache file
// older than this SHOULD surface a staleness warning.
const StaleAfter = time.Hour

var tables = [...]string{"bgp", "mpls", "isis"}

// TableStatus reports one protocol table's collection state for a device.
type TableStatus struct {
	Table       string    `json:"table"`
	Exists      bool      `json:"exists"`
	CollectedAt time.Time `json:"collected_at,omitempty"`
	RouteCount  int       `json:"route_count"`
	Stale       bool      `json:"stale"`
}

// DeviceStatus is the full collected-data snapshot for one device.
type DeviceStatus struct {
	Device string        `json:"device"`
	Tables []TableStatus `json:"tables"`
}

// Config configures a Cache.
type Config struct {
	// Root is the directory containing one subdirectory per device.
	Root string
	// TTL bounds how long a DeviceStatus is served from memory before
	// it's re-read from disk. Defaults to 30s.
	TTL time.Duration
}

func (c *Config) validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.TTL == 0 {
		c.TTL = 30 * time.Second
	}
	return nil
}

// Cache serves DeviceStatus lookups, backed by disk reads of the
// collected-data cache and fronted by a short-lived in-memory cache.
type Cache struct {
	cfg Config

	cache   *ttlcache.Cache[string, DeviceStatus]
	cacheMu sync.RWMutex
}

// New builds a Cache rooted at cfg.Root.
func New(cfg Config) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid collected cache config: %w", err)
	}
	return &Cache{
		cfg:   cfg,
		cache: ttlcache.New(ttlcache.WithTTL[string, DeviceStatus](cfg.TTL)),
	}, nil
}

// Status returns device's collected-data snapshot, reading from disk on
// a cache miss.
func (c *Cache) Status(device string) (DeviceStatus, error) {
	if cached := c.getCached(device); cached != nil {
		return *cached, nil
	}

	status, err := c.readFromDisk(device)
	if err != nil {
		return DeviceStatus{}, err
	}
	c.setCached(device, status)
	return status, nil
}

// Invalidate drops device's cached snapshot, forcing the next Status
// call to re-read disk. Useful after a manual re-collection.
func (c *Cache) Invalidate(device string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache.Delete(device)
}

func (c *Cache) getCached(device string) *DeviceStatus {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	item := c.cache.Get(device)
	if item == nil {
		return nil
	}
	v := item.Value()
	return &v
}

func (c *Cache) setCached(device string, status DeviceStatus) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache.Set(device, status, c.cfg.TTL)
}

func (c *Cache) readFromDisk(device string) (DeviceStatus, error) {
	status := DeviceStatus{Device: device}
	deviceDir := filepath.Join(c.cfg.Root, device)

	for _, table := range tables {
		path := filepath.Join(deviceDir, table+"-rib.json")
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			status.Tables = append(status.Tables, TableStatus{Table: table, Exists: false})
			continue
		}
		if err != nil {
			return DeviceStatus{}, fmt.Errorf("read %s: %w", path, err)
		}

		var decoded struct {
			CollectedAt time.Time `json:"collected_at"`
			Routes      []json.RawMessage
		}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return DeviceStatus{}, fmt.Errorf("parse %s: %w", path, err)
		}

		status.Tables = append(status.Tables, TableStatus{
			Table:       table,
			Exists:      true,
			CollectedAt: decoded.CollectedAt,
			RouteCount:  len(decoded.Routes),
			Stale:       time.Since(decoded.CollectedAt) > StaleAfter,
		})
	}

	return status, nil
}
