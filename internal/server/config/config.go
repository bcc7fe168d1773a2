package config

import "time"

// Config holds the server configuration.
type Config struct {
	ChunkLoadDistance    int     `json:"chunk_load_distance"`    // radius in chunks for view queries
	MaxCachedChunks      int     `json:"max_cached_chunks"`      // eviction trigger threshold
	ChunkTTLSeconds      int     `json:"chunk_ttl_seconds"`      // staleness threshold for eviction
	FlushIntervalSeconds int     `json:"flush_interval_seconds"` // period of the persistence cycle
	SweepIntervalSeconds int     `json:"sweep_interval_seconds"` // period of the background eviction sweep
	FlushRateLimit       float64 `json:"flush_rate_limit"`       // sink saves per second, 0 = unlimited
	Seed                 int64   `json:"seed"`
	GeneratorType        string  `json:"generator_type"` // "noise" or "flat"
	StorageBackend       string  `json:"storage"`        // "file" or "sqlite"
	DataDir              string  `json:"data_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ChunkLoadDistance:    8,
		MaxCachedChunks:      1000,
		ChunkTTLSeconds:      300,
		FlushIntervalSeconds: 300,
		SweepIntervalSeconds: 60,
		GeneratorType:        "noise",
		StorageBackend:       "file",
		DataDir:              "data",
	}
}

// TTL returns the chunk staleness threshold as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.ChunkTTLSeconds) * time.Second
}

// FlushInterval returns the persistence cycle period as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSeconds) * time.Second
}

// SweepInterval returns the background sweep period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["load-distance"] {
		cfg.ChunkLoadDistance = fromFile.ChunkLoadDistance
	}
	if !explicitFlags["max-chunks"] {
		cfg.MaxCachedChunks = fromFile.MaxCachedChunks
	}
	if !explicitFlags["chunk-ttl"] {
		cfg.ChunkTTLSeconds = fromFile.ChunkTTLSeconds
	}
	if !explicitFlags["flush-interval"] {
		cfg.FlushIntervalSeconds = fromFile.FlushIntervalSeconds
	}
	if !explicitFlags["sweep-interval"] {
		cfg.SweepIntervalSeconds = fromFile.SweepIntervalSeconds
	}
	if !explicitFlags["flush-rate"] {
		cfg.FlushRateLimit = fromFile.FlushRateLimit
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["storage"] {
		cfg.StorageBackend = fromFile.StorageBackend
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
}
