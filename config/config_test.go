package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Vault != "escrow-vault" {
		t.Fatalf("unexpected vault default: %s", cfg.Vault)
	}
	if cfg.TimeoutDelay == 0 {
		t.Fatalf("expected non-zero timeout default")
	}
	if cfg.LedgerPath != filepath.Join(cfg.DataDir, "ledger.db") {
		t.Fatalf("unexpected ledger path: %s", cfg.LedgerPath)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixpay.toml")
	contents := `
DataDir = "/var/lib/fixpay"
Owner = "owner-principal"
DisputeOracle = "oracle-principal"
TimeoutDelay = 288
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Owner != "owner-principal" || cfg.TimeoutDelay != 288 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LedgerPath != filepath.Join("/var/lib/fixpay", "ledger.db") {
		t.Fatalf("defaults must follow DataDir: %s", cfg.LedgerPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"missing owner", func(c *Config) { c.Owner = " " }, true},
		{"missing vault", func(c *Config) { c.Vault = "" }, true},
		{"vault is owner", func(c *Config) { c.Vault = c.Owner }, true},
		{"vault is oracle", func(c *Config) { c.Vault = c.DisputeOracle }, true},
		{"zero timeout", func(c *Config) { c.TimeoutDelay = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Owner = "owner-principal"
			cfg.DisputeOracle = "oracle-principal"
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
