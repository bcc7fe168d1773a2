package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strixcraft/server/internal/server/world"
)

// FileSink persists one compressed snapshot file per chunk under a
// directory, written atomically via a temp file + rename so a crashed
// save never leaves a torn chunk on disk.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory %s: %w", dir, err)
	}
	return &FileSink{dir: dir}, nil
}

// Save implements world.Sink. Re-saving a chunk overwrites the previous
// file, so identical content is a harmless no-op.
func (s *FileSink) Save(ctx context.Context, pos world.ChunkPos, snap *world.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := EncodeSnapshot(snap)
	path := s.chunkPath(pos)
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

// Load reads a previously saved snapshot, or nil if the chunk was never
// persisted.
func (s *FileSink) Load(pos world.ChunkPos) (*world.Snapshot, error) {
	data, err := os.ReadFile(s.chunkPath(pos))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chunk (%d,%d): %w", pos.X, pos.Z, err)
	}
	return DecodeSnapshot(data)
}

func (s *FileSink) chunkPath(pos world.ChunkPos) string {
	return filepath.Join(s.dir, fmt.Sprintf("c.%d.%d.bin", pos.X, pos.Z))
}
