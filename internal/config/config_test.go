package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
table "main" {
  small_blind = 1
  big_blind   = 2
}

bot "alice" {
  strategy = "random"
}
`), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Server.LogLevel)
	timeout, err := cfg.Server.TurnTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
	assert.Nil(t, cfg.Server.Seed)

	table := cfg.Table("main")
	require.NotNil(t, table)
	assert.Equal(t, 6, table.MaxPlayers)
	assert.Equal(t, 100, table.BuyInMin)
	assert.Equal(t, 1000, table.BuyInMax)

	require.Len(t, cfg.Bots, 1)
	assert.Equal(t, []string{"main"}, cfg.Bots[0].Tables)
	assert.Equal(t, 200, cfg.Bots[0].BuyIn)
}

func TestParseFullFile(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
server {
  log_level       = "debug"
  snapshot_dir    = "/var/lib/holdem"
  turn_timeout    = "5s"
  next_hand_delay = "0s"
  chip_value      = "0.05"
  seed            = 42
}

table "high" {
  max_players = 4
  small_blind = 5
  big_blind   = 10
  hand_limit  = 100
}

table "low" {
  small_blind = 1
  big_blind   = 2
}

bot "shark" {
  strategy = "aggressive"
  tables   = ["high"]
  buy_in   = 500
}
`), "full.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.Server.Seed)
	assert.EqualValues(t, 42, *cfg.Server.Seed)
	value, err := cfg.Server.ChipValueDecimal()
	require.NoError(t, err)
	assert.Equal(t, "0.05", value.String())

	assert.Equal(t, 4, cfg.Table("high").GameConfig().MaxSeats)
	assert.Len(t, cfg.BotsFor("high"), 1)
	assert.Empty(t, cfg.BotsFor("low"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"no tables", `server { log_level = "info" }`},
		{"bad blinds", `table "t" {
  small_blind = 2
  big_blind   = 2
}`},
		{"too many seats", `table "t" {
  small_blind = 1
  big_blind   = 2
  max_players = 9
}`},
		{"bad timeout", `server { turn_timeout = "soon" }
table "t" {
  small_blind = 1
  big_blind   = 2
}`},
		{"bad chip value", `server { chip_value = "-1" }
table "t" {
  small_blind = 1
  big_blind   = 2
}`},
		{"unknown strategy", `table "t" {
  small_blind = 1
  big_blind   = 2
}
bot "b" { strategy = "psychic" }`},
		{"unknown table", `table "t" {
  small_blind = 1
  big_blind   = 2
}
bot "b" { tables = ["nope"] }`},
		{"duplicate table", `table "t" {
  small_blind = 1
  big_blind   = 2
}
table "t" {
  small_blind = 1
  big_blind   = 2
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse([]byte(tt.src), "bad.hcl")
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseRejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`table "t" { small_blind = `), "broken.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte(`table "t" { big_blind = 2 }`), "missing.hcl")
	assert.Error(t, err, "small_blind is required")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`table "solo" {
  small_blind = 25
  big_blind   = 50
}`), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Table("solo"))
}
