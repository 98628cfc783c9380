// Package config loads the analysis run configuration from YAML.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"token-holder-lab/internal/domain"
)

// Defaults applied when the YAML omits a field.
var (
	DefaultTopNCuts       = []int{10, 20, 50}
	DefaultWhaleThreshold = 0.05
	DefaultExchangeTypes  = []string{"cex", "dex", "yield", "misc"}
)

// Config describes one concentration analysis run.
type Config struct {
	Token string `yaml:"token"`
	Chain string `yaml:"chain"`

	TotalSupply          float64  `yaml:"total_supply"`
	LockedSupply         float64  `yaml:"locked_supply"`
	LockedAddresses      []string `yaml:"locked_addresses"`
	MarketMakerAddresses []string `yaml:"market_maker_addresses"`

	ExchangeTypes  []string `yaml:"exchange_types"`
	WhaleThreshold float64  `yaml:"whale_threshold"`
	TopNCuts       []int    `yaml:"top_n_cuts"`

	OutputDir string `yaml:"output_dir"`

	HoldersAPIURL string `yaml:"holders_api_url"`
	HoldersAPIKey string `yaml:"holders_api_key"`

	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.TopNCuts) == 0 {
		c.TopNCuts = append([]int(nil), DefaultTopNCuts...)
	}
	if c.WhaleThreshold == 0 {
		c.WhaleThreshold = DefaultWhaleThreshold
	}
	if len(c.ExchangeTypes) == 0 {
		c.ExchangeTypes = append([]string(nil), DefaultExchangeTypes...)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
}

// Validate checks the config against the analysis invariants.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	chain := domain.Chain(c.Chain)
	if !chain.IsValid() {
		return fmt.Errorf("unknown chain %q", c.Chain)
	}
	if err := chain.ValidateAddress(c.Token); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if c.TotalSupply <= 0 {
		return fmt.Errorf("total_supply must be positive, got %f", c.TotalSupply)
	}
	if c.LockedSupply < 0 {
		return fmt.Errorf("locked_supply must be non-negative, got %f", c.LockedSupply)
	}
	if c.LockedSupply >= c.TotalSupply {
		return fmt.Errorf("locked_supply %f must be below total_supply %f", c.LockedSupply, c.TotalSupply)
	}
	if c.WhaleThreshold <= 0 || c.WhaleThreshold >= 1 {
		return fmt.Errorf("whale_threshold must be in (0,1), got %f", c.WhaleThreshold)
	}

	cuts := append([]int(nil), c.TopNCuts...)
	sort.Ints(cuts)
	for i, n := range cuts {
		if n <= 0 {
			return fmt.Errorf("top_n_cuts must be positive, got %d", n)
		}
		if i > 0 && cuts[i-1] == n {
			return fmt.Errorf("duplicate top_n cut %d", n)
		}
	}
	return nil
}

// ChainID returns the validated chain identifier.
func (c *Config) ChainID() domain.Chain {
	return domain.Chain(c.Chain)
}

// SupplyContext builds the domain supply context from the config.
func (c *Config) SupplyContext() domain.SupplyContext {
	return domain.NewSupplyContext(c.TotalSupply, c.LockedSupply,
		c.LockedAddresses, c.MarketMakerAddresses)
}
