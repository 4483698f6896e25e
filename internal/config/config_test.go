package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
name = "testrealm"
tick_rate = "100ms"

[network]
bind_address = ":7777"

[database]
dsn = "postgres://game:game@db:5432/game"
conn_max_lifetime = "5m"

[gameplay]
stacking = "oldschool"
swap = "classic"

[mail]
depot_locker_id = 2589
max_depot_items = 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testrealm", cfg.Server.Name)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, ":7777", cfg.Network.BindAddress)
	assert.Equal(t, "postgres://game:game@db:5432/game", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "oldschool", cfg.Gameplay.Stacking)
	assert.Equal(t, "classic", cfg.Gameplay.Swap)
	assert.Equal(t, 500, cfg.Mail.MaxDepotItems)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, ":7172", cfg.Network.BindAddress)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "modern", cfg.Gameplay.Stacking)
	assert.Equal(t, "modern", cfg.Gameplay.Swap)
	assert.Equal(t, 1000, cfg.World.TileItemLimit)
	assert.Equal(t, 2589, cfg.Mail.DepotLockerID)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadPartialOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[world]
tile_item_limit = 250
`))
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.World.TileItemLimit)
	assert.Equal(t, "data/items.yaml", cfg.World.ItemsFile, "untouched keys keep their defaults")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad stacking", "[gameplay]\nstacking = \"vintage\"", "gameplay.stacking"},
		{"bad swap", "[gameplay]\nswap = \"retro\"", "gameplay.swap"},
		{"zero tick rate", "[server]\ntick_rate = \"0s\"", "tick_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nname ="))
	require.Error(t, err)
}
