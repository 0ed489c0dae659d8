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

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/server.toml")
	require.NoError(t, err)

	assert.Equal(t, "base1", cfg.Server.Map)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.Quarantine)
	assert.True(t, cfg.Rules.Coop)
	assert.True(t, cfg.Features.Medic)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.Autosave)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[features]
medic = false

[rules]
skill = 3
`))
	require.NoError(t, err)

	assert.False(t, cfg.Features.Medic)
	assert.True(t, cfg.Features.Flyer)
	assert.Equal(t, 3, cfg.Rules.Skill)
	assert.Equal(t, 1024, cfg.Simulation.MaxObjects)
	assert.Equal(t, "data/yaml/monster_list.yaml", cfg.Data.MonsterList)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", `[server`, "parse config"},
		{"zero tick", "[simulation]\ntick_rate = \"0s\"", "tick_rate"},
		{"slots", "[simulation]\nmax_objects = 8\nreserved_player_slots = 8", "must exceed"},
		{"skill", "[rules]\nskill = 4", "out of range"},
		{"driver", "[database]\ndriver = \"mysql\"", "database.driver"},
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
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPathOverride(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "config/server.toml", Path("config/server.toml"))
	t.Setenv(EnvPath, "/etc/fragd.toml")
	assert.Equal(t, "/etc/fragd.toml", Path("config/server.toml"))
}

func TestTickFrames(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, 0, cfg.TickFrames(0))
	assert.Equal(t, 1, cfg.TickFrames(time.Millisecond))
	assert.Equal(t, 3000, cfg.TickFrames(5*time.Minute))
}
