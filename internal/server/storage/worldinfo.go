package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// WorldInfo identifies a world directory across runs. The seed recorded
// here wins over the configured one, so regenerating a chunk after a
// restart reproduces the same terrain.
type WorldInfo struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

// WorldInfo reads world/world.json, creating it with a fresh UUID and the
// given seed on first run.
func (s *Storage) WorldInfo(seed int64) (*WorldInfo, error) {
	path := filepath.Join(s.dir, "world", "world.json")

	data, err := os.ReadFile(path)
	if err == nil {
		var info WorldInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("parse world info: %w", err)
		}
		return &info, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read world info: %w", err)
	}

	info := &WorldInfo{
		ID:        uuid.NewString(),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.atomicWriteJSON(path, info); err != nil {
		return nil, err
	}
	s.log.Info("created world", "id", info.ID, "seed", info.Seed)
	return info, nil
}
