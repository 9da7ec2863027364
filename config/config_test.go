package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" {
		t.Fatalf("unexpected default address: %s", cfg.RPCAddress)
	}
	if cfg.StakeGracePeriod != 86_400 {
		t.Fatalf("unexpected default grace period: %d", cfg.StakeGracePeriod)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}

	// The written file round-trips.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *reloaded != *cfg {
		t.Fatalf("reloaded config differs: %+v vs %+v", reloaded, cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	payload := []byte("RPCAddress = \":9000\"\nPlatformFeeBps = 100\nConfirmLatencyMs = 0\n")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":9000" {
		t.Fatalf("override ignored: %s", cfg.RPCAddress)
	}
	if cfg.PlatformFeeBps != 100 {
		t.Fatalf("override ignored: %d", cfg.PlatformFeeBps)
	}
	// Unset keys keep their defaults.
	if cfg.StakeGracePeriod != 86_400 {
		t.Fatalf("default lost: %d", cfg.StakeGracePeriod)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.RPCAddress = " " }},
		{"fee out of range", func(c *Config) { c.PlatformFeeBps = 10_001 }},
		{"zero grace period", func(c *Config) { c.StakeGracePeriod = 0 }},
		{"negative latency", func(c *Config) { c.ReadLatencyMs = -1 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("StakeGracePeriod = -5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation failure")
	}
}
