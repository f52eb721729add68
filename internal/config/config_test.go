package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_RequiresInventoryPath(t *testing.T) {
	cfg := Config{CollectedRoot: "/tmp", ListenAddr: ":8080"}
	require.Error(t, cfg.Validate())
}

func TestValidate_RequiresCollectedRoot(t *testing.T) {
	cfg := Config{InventoryPath: "inventory.yaml", ListenAddr: ":8080"}
	require.Error(t, cfg.Validate())
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	cfg := Config{InventoryPath: "inventory.yaml", CollectedRoot: "/tmp", ListenAddr: ":8080"}
	require.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("PATHTRACER_INVENTORY_PATH", "inventory.yaml")
	t.Setenv("PATHTRACER_COLLECTED_ROOT", "/tmp/collected")
	t.Setenv("PATHTRACER_LISTEN_ADDR", "")
	t.Setenv("PATHTRACER_MAX_HOPS", "")
	t.Setenv("PATHTRACER_CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaultListenAddr, cfg.ListenAddr)
	require.Equal(t, defaultMaxHops, cfg.MaxHops)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("PATHTRACER_INVENTORY_PATH", "inventory.yaml")
	t.Setenv("PATHTRACER_COLLECTED_ROOT", "/tmp/collected")
	t.Setenv("PATHTRACER_MAX_HOPS", "5")
	t.Setenv("PATHTRACER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.MaxHops)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_RejectsInvalidDuration(t *testing.T) {
	t.Setenv("PATHTRACER_INVENTORY_PATH", "inventory.yaml")
	t.Setenv("PATHTRACER_COLLECTED_ROOT", "/tmp/collected")
	t.Setenv("PATHTRACER_COLLECTED_CACHE_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
