package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config describes one settlement-core deployment: where state lives, who
// administers it, and the default timing of the release window.
type Config struct {
	DataDir        string `toml:"DataDir"`
	LedgerPath     string `toml:"LedgerPath"`
	ArchivePath    string `toml:"ArchivePath"`
	Owner          string `toml:"Owner"`
	DisputeOracle  string `toml:"DisputeOracle"`
	Vault          string `toml:"Vault"`
	TimeoutDelay   uint64 `toml:"TimeoutDelay"`
	Environment    string `toml:"Environment"`
}

// Load reads the configuration from the given path. A missing file yields
// the defaults; decode errors are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./fixpay-data"
	}
	if c.LedgerPath == "" {
		c.LedgerPath = filepath.Join(c.DataDir, "ledger.db")
	}
	if c.ArchivePath == "" {
		c.ArchivePath = filepath.Join(c.DataDir, "audit-archive.db")
	}
	if c.Vault == "" {
		c.Vault = "escrow-vault"
	}
	if c.TimeoutDelay == 0 {
		c.TimeoutDelay = 144
	}
	if c.Environment == "" {
		c.Environment = "local"
	}
}
