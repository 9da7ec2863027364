package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the daemon settings. Latencies are in milliseconds; the
// staking grace period is in seconds and is the single authority for how
// long a selected freelancer has to deposit collateral.
type Config struct {
	RPCAddress         string `toml:"RPCAddress"`
	DataDir            string `toml:"DataDir"`
	NetworkName        string `toml:"NetworkName"`
	PlatformFeeBps     uint32 `toml:"PlatformFeeBps"`
	StakeGracePeriod   int64  `toml:"StakeGracePeriod"`
	ConfirmLatencyMs   int64  `toml:"ConfirmLatencyMs"`
	ReadLatencyMs      int64  `toml:"ReadLatencyMs"`
	LogFile            string `toml:"LogFile"`
	LogMaxSizeMB       int    `toml:"LogMaxSizeMB"`
	LogMaxBackups      int    `toml:"LogMaxBackups"`
	MetricsEnabled     bool   `toml:"MetricsEnabled"`
	EventBufferPerSub  int    `toml:"EventBufferPerSub"`
	PersistenceEnabled bool   `toml:"PersistenceEnabled"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		RPCAddress:         ":8645",
		DataDir:            "./data",
		NetworkName:        "gigchain-local",
		PlatformFeeBps:     250,
		StakeGracePeriod:   86_400,
		ConfirmLatencyMs:   1_500,
		ReadLatencyMs:      50,
		LogMaxSizeMB:       64,
		LogMaxBackups:      4,
		MetricsEnabled:     true,
		EventBufferPerSub:  64,
		PersistenceEnabled: true,
	}
}

// Load loads the configuration from the given path, writing the defaults
// when the file does not exist yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress required")
	}
	if c.PlatformFeeBps > 10_000 {
		return fmt.Errorf("config: PlatformFeeBps out of range: %d", c.PlatformFeeBps)
	}
	if c.StakeGracePeriod <= 0 {
		return fmt.Errorf("config: StakeGracePeriod must be positive")
	}
	if c.ConfirmLatencyMs < 0 || c.ReadLatencyMs < 0 {
		return fmt.Errorf("config: latencies must be non-negative")
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: write defaults: %w", err)
	}
	return cfg, nil
}
