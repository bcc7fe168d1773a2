package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/strixcraft/server/internal/server/world"
)

// SQLiteSink persists chunk snapshots in a single chunks table, one row
// per coordinate. Saves are UPSERTs, so re-saving identical content is
// idempotent.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path and ensures the
// chunks table exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		cx       INTEGER NOT NULL,
		cz       INTEGER NOT NULL,
		data     BLOB    NOT NULL,
		saved_at INTEGER NOT NULL,
		PRIMARY KEY (cx, cz)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create chunks table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Save implements world.Sink.
func (s *SQLiteSink) Save(ctx context.Context, pos world.ChunkPos, snap *world.Snapshot) error {
	data := EncodeSnapshot(snap)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (cx, cz, data, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cx, cz) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		pos.X, pos.Z, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert chunk (%d,%d): %w", pos.X, pos.Z, err)
	}
	return nil
}

// Load reads a previously saved snapshot, or nil if the chunk was never
// persisted.
func (s *SQLiteSink) Load(ctx context.Context, pos world.ChunkPos) (*world.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM chunks WHERE cx = ? AND cz = ?`, pos.X, pos.Z).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chunk (%d,%d): %w", pos.X, pos.Z, err)
	}
	return DecodeSnapshot(data)
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
