package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/strixcraft/server/internal/server/config"
)

// Storage handles file-based persistence rooted at a data directory:
// server config, world identity, and chunk snapshots (via FileSink or
// SQLiteSink).
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "world"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig reads config.json into cfg. If the file does not exist, cfg
// is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	return s.atomicWriteJSON(filepath.Join(s.dir, "config.json"), cfg)
}

// ChunkSink builds the chunk persistence sink for the file backend,
// rooted under world/chunks.
func (s *Storage) ChunkSink() (*FileSink, error) {
	return NewFileSink(filepath.Join(s.dir, "world", "chunks"))
}

// SQLitePath returns the path of the chunk database for the sqlite
// backend.
func (s *Storage) SQLitePath() string {
	return filepath.Join(s.dir, "world", "chunks.db")
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a
// temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
