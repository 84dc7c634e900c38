// Package config loads the HCL file describing the server and its tables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/lox/holdemtable/internal/game"
)

// Strategies are the bot strategies a config may name
var Strategies = []string{"call", "fold", "random", "aggressive", "tight"}

// Config is the complete file
type Config struct {
	Server *Server `hcl:"server,block"`
	Tables []Table  `hcl:"table,block"`
	Bots   []Bot    `hcl:"bot,block"`
}

// Server holds process-wide settings
type Server struct {
	LogLevel      string `hcl:"log_level,optional"`
	SnapshotDir   string `hcl:"snapshot_dir,optional"`
	TurnTimeout   string `hcl:"turn_timeout,optional"`
	NextHandDelay string `hcl:"next_hand_delay,optional"`
	ChipValue     string `hcl:"chip_value,optional"`
	Seed          *int64 `hcl:"seed,optional"`
}

// Table defines one table to run
type Table struct {
	Name       string `hcl:"name,label"`
	MaxPlayers int    `hcl:"max_players,optional"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	BuyInMin   int    `hcl:"buy_in_min,optional"`
	BuyInMax   int    `hcl:"buy_in_max,optional"`
	HandLimit  int    `hcl:"hand_limit,optional"`
}

// Bot seats a scripted player at one or more tables
type Bot struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy,optional"`
	Tables   []string `hcl:"tables,optional"`
	BuyIn    int      `hcl:"buy_in,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{
		Tables: []Table{{Name: "main", SmallBlind: 1, BigBlind: 2}},
		Bots: []Bot{
			{Name: "caller", Strategy: "call"},
			{Name: "shark", Strategy: "aggressive"},
			{Name: "rock", Strategy: "tight"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads an HCL file. A missing file yields Default().
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.TurnTimeout == "" {
		c.Server.TurnTimeout = "30s"
	}
	if c.Server.NextHandDelay == "" {
		c.Server.NextHandDelay = "2s"
	}
	if c.Server.ChipValue == "" {
		c.Server.ChipValue = "0.01"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = game.DefaultMaxSeats
		}
		if t.BuyInMin == 0 {
			t.BuyInMin = t.BigBlind * 50
		}
		if t.BuyInMax == 0 {
			t.BuyInMax = t.BigBlind * 500
		}
	}

	for i := range c.Bots {
		b := &c.Bots[i]
		if b.Strategy == "" {
			b.Strategy = "call"
		}
		if len(b.Tables) == 0 {
			for _, t := range c.Tables {
				b.Tables = append(b.Tables, t.Name)
			}
		}
		if b.BuyIn == 0 && len(b.Tables) > 0 {
			if t := c.Table(b.Tables[0]); t != nil {
				b.BuyIn = t.BigBlind * 100
			}
		}
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if _, err := c.Server.TurnTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Server.NextHandDelayDuration(); err != nil {
		return err
	}
	if _, err := c.Server.ChipValueDecimal(); err != nil {
		return err
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind <= t.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", t.Name)
		}
		if t.MaxPlayers < 2 || t.MaxPlayers > game.DefaultMaxSeats {
			return fmt.Errorf("table %s: max players must be between 2 and %d", t.Name, game.DefaultMaxSeats)
		}
		if t.BuyInMin >= t.BuyInMax {
			return fmt.Errorf("table %s: buy-in minimum must be less than maximum", t.Name)
		}
		if t.HandLimit < 0 {
			return fmt.Errorf("table %s: hand limit cannot be negative", t.Name)
		}
	}

	seats := make(map[string]int)
	for _, b := range c.Bots {
		if !slices.Contains(Strategies, b.Strategy) {
			return fmt.Errorf("bot %s: invalid strategy %s", b.Name, b.Strategy)
		}
		if b.BuyIn <= 0 {
			return fmt.Errorf("bot %s: buy-in must be positive", b.Name)
		}
		for _, name := range b.Tables {
			t := c.Table(name)
			if t == nil {
				return fmt.Errorf("bot %s: unknown table %s", b.Name, name)
			}
			seats[name]++
			if seats[name] > t.MaxPlayers {
				return fmt.Errorf("table %s: more bots than seats", name)
			}
		}
	}
	return nil
}

// Table returns a table definition by name
func (c *Config) Table(name string) *Table {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// BotsFor returns every bot seated at a table
func (c *Config) BotsFor(table string) []Bot {
	var bots []Bot
	for _, b := range c.Bots {
		if slices.Contains(b.Tables, table) {
			bots = append(bots, b)
		}
	}
	return bots
}

// GameConfig converts the table definition for the engine
func (t Table) GameConfig() game.Config {
	return game.Config{SmallBlind: t.SmallBlind, BigBlind: t.BigBlind, MaxSeats: t.MaxPlayers}
}

// TurnTimeoutDuration parses turn_timeout
func (s Server) TurnTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.TurnTimeout)
	if err != nil {
		return 0, fmt.Errorf("server: invalid turn_timeout %q: %w", s.TurnTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("server: turn_timeout must be positive")
	}
	return d, nil
}

// NextHandDelayDuration parses next_hand_delay
func (s Server) NextHandDelayDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.NextHandDelay)
	if err != nil {
		return 0, fmt.Errorf("server: invalid next_hand_delay %q: %w", s.NextHandDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("server: next_hand_delay cannot be negative")
	}
	return d, nil
}

// ChipValueDecimal parses chip_value, the currency worth of one chip
func (s Server) ChipValueDecimal() (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s.ChipValue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("server: invalid chip_value %q: %w", s.ChipValue, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("server: chip_value must be positive")
	}
	return v, nil
}
