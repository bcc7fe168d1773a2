package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/strixcraft/server/internal/server"
	"github.com/strixcraft/server/internal/server/config"
	"github.com/strixcraft/server/internal/server/storage"
)

func main() {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.ChunkLoadDistance, "load-distance", cfg.ChunkLoadDistance, "view radius in chunks around spawn")
	flag.IntVar(&cfg.MaxCachedChunks, "max-chunks", cfg.MaxCachedChunks, "cached chunk count that triggers eviction")
	flag.IntVar(&cfg.ChunkTTLSeconds, "chunk-ttl", cfg.ChunkTTLSeconds, "seconds before an idle unmodified chunk may be evicted")
	flag.IntVar(&cfg.FlushIntervalSeconds, "flush-interval", cfg.FlushIntervalSeconds, "seconds between persistence flush cycles")
	flag.IntVar(&cfg.SweepIntervalSeconds, "sweep-interval", cfg.SweepIntervalSeconds, "seconds between background eviction sweeps")
	flag.Float64Var(&cfg.FlushRateLimit, "flush-rate", cfg.FlushRateLimit, "max chunk saves per second during a flush, 0 = unlimited")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed for new worlds")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, `terrain generator ("noise" or "flat")`)
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, `chunk persistence backend ("file" or "sqlite")`)
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := storage.New(cfg.DataDir, log)
	if err != nil {
		log.Error("open data directory", "error", err)
		os.Exit(1)
	}
	fileCfg := config.DefaultConfig()
	if err := st.LoadConfig(fileCfg); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fileCfg, explicit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("start server", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
