package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"gigchain/config"
	"gigchain/core"
	"gigchain/observability/logging"
	"gigchain/rpc"
	"gigchain/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Setup("gigchaind", cfg.NetworkName, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	var db storage.Database = storage.NewMemDB()
	if cfg.PersistenceEnabled {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatalf("Failed to create data dir: %v", err)
		}
		db, err = storage.NewBoltDB(filepath.Join(cfg.DataDir, "gigchain.db"))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
	}
	defer db.Close()

	node, err := core.NewNode(db, core.Params{
		PlatformFeeBps:   cfg.PlatformFeeBps,
		StakeGracePeriod: cfg.StakeGracePeriod,
		ConfirmLatency:   time.Duration(cfg.ConfirmLatencyMs) * time.Millisecond,
		ReadLatency:      time.Duration(cfg.ReadLatencyMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("Failed to initialize node: %v", err)
	}

	server := rpc.NewServer(node, logger)
	server.SetEventBuffer(cfg.EventBufferPerSub)
	server.SetMetricsEnabled(cfg.MetricsEnabled)
	logger.Info("node ready",
		"network", cfg.NetworkName,
		"feeBps", cfg.PlatformFeeBps,
		"stakeGracePeriod", cfg.StakeGracePeriod,
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		log.Fatalf("RPC server stopped: %v", err)
	}
}
