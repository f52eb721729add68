package collector

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

func writeRIB(t *testing.T, root, device, file string, table cachedTable) {
	t.Helper()
	dir := filepath.Join(root, device)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	raw, err := json.Marshal(table)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), raw, 0o644))
}

func TestFileCache_ExactPrefixMatch(t *testing.T) {
	root := t.TempDir()
	writeRIB(t, root, "pe1", "bgp-rib.json", cachedTable{
		CollectedAt: time.Now(),
		Routes: []routeentry.Entry{
			{Prefix: "10.0.0.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.1", VRF: "default", Active: true},
		},
	})

	fc, err := NewFileCache(FileCacheConfig{Root: root})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "pe1", "10.0.0.0/24", "default")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "10.1.1.1", entries[0].NextHop)
}

func TestFileCache_LongestCoveringMatch(t *testing.T) {
	root := t.TempDir()
	writeRIB(t, root, "pe1", "bgp-rib.json", cachedTable{
		CollectedAt: time.Now(),
		Routes: []routeentry.Entry{
			{Prefix: "10.0.0.0/8", Protocol: routeentry.ProtocolBGP, NextHop: "10.2.2.2", VRF: "default", Active: true},
			{Prefix: "10.0.0.0/16", Protocol: routeentry.ProtocolBGP, NextHop: "10.3.3.3", VRF: "default", Active: true},
		},
	})

	fc, err := NewFileCache(FileCacheConfig{Root: root})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "pe1", "10.0.5.5", "default")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "10.3.3.3", entries[0].NextHop)
}

func TestFileCache_MergesMultipleRIBFiles(t *testing.T) {
	root := t.TempDir()
	writeRIB(t, root, "pe1", "bgp-rib.json", cachedTable{
		Routes: []routeentry.Entry{{Prefix: "10.0.0.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.1", VRF: "default"}},
	})
	writeRIB(t, root, "pe1", "mpls-rib.json", cachedTable{
		Routes: []routeentry.Entry{{Prefix: "10.0.0.0/24", Protocol: routeentry.ProtocolStatic, NextHop: "10.1.1.2", VRF: "default"}},
	})

	fc, err := NewFileCache(FileCacheConfig{Root: root})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "pe1", "10.0.0.0/24", "default")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestFileCache_FiltersByVRF(t *testing.T) {
	root := t.TempDir()
	writeRIB(t, root, "pe1", "bgp-rib.json", cachedTable{
		Routes: []routeentry.Entry{
			{Prefix: "10.0.0.0/24", NextHop: "10.1.1.1", VRF: "default"},
			{Prefix: "10.0.0.0/24", NextHop: "10.1.1.9", VRF: "customer-a"},
		},
	})

	fc, err := NewFileCache(FileCacheConfig{Root: root})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "pe1", "10.0.0.0/24", "customer-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "10.1.1.9", entries[0].NextHop)
}

func TestFileCache_UnknownDeviceReturnsEmptyNotError(t *testing.T) {
	fc, err := NewFileCache(FileCacheConfig{Root: t.TempDir()})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "ghost", "10.0.0.0/24", "default")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFileCache_NoCoveringPrefixReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	writeRIB(t, root, "pe1", "bgp-rib.json", cachedTable{
		Routes: []routeentry.Entry{{Prefix: "192.168.0.0/24", NextHop: "10.1.1.1", VRF: "default"}},
	})

	fc, err := NewFileCache(FileCacheConfig{Root: root})
	require.NoError(t, err)

	entries, err := fc.Collect(context.Background(), "pe1", "10.0.0.0/24", "default")
	require.NoError(t, err)
	require.Empty(t, entries)
}
