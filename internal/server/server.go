package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/strixcraft/server/internal/server/config"
	"github.com/strixcraft/server/internal/server/storage"
	"github.com/strixcraft/server/internal/server/world"
	"github.com/strixcraft/server/internal/server/world/gen"
)

// flatSurface is the surface height of superflat worlds: bedrock at y=0,
// stone below, dirt, grass cap at y=4.
const flatSurface = 4

// Server owns the world store and its background maintenance: the
// periodic persistence flush and the eviction sweep. The store lives as
// long as the server; teardown flushes outstanding writes one last time.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *world.Store
	flusher *world.Flusher
	closer  io.Closer // sink teardown, nil for the file backend
}

// New wires a Server from config: height source, chunk store, and the
// configured persistence sink.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	st, err := storage.New(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	info, err := st.WorldInfo(cfg.Seed)
	if err != nil {
		return nil, err
	}

	var src gen.HeightSource
	switch cfg.GeneratorType {
	case "flat":
		src = gen.NewFlat(flatSurface)
	default:
		src = gen.NewNoise(info.Seed)
	}

	var (
		sink   world.Sink
		closer io.Closer
	)
	switch cfg.StorageBackend {
	case "sqlite":
		sq, err := storage.NewSQLiteSink(st.SQLitePath())
		if err != nil {
			return nil, err
		}
		sink, closer = sq, sq
	default:
		fs, err := st.ChunkSink()
		if err != nil {
			return nil, err
		}
		sink = fs
	}

	store := world.NewStore(src, log, world.Options{
		MaxChunks: cfg.MaxCachedChunks,
		TTL:       cfg.TTL(),
	})

	log.Info("world loaded",
		"id", info.ID,
		"seed", info.Seed,
		"generator", cfg.GeneratorType,
		"storage", cfg.StorageBackend,
	)

	return &Server{
		cfg:     cfg,
		log:     log,
		store:   store,
		flusher: world.NewFlusher(store, sink, log, cfg.FlushRateLimit),
		closer:  closer,
	}, nil
}

// World exposes the chunk store to collaborators (session handlers,
// simulation ticks).
func (s *Server) World() *world.Store {
	return s.store
}

// Run pre-generates the spawn area and keeps the world maintained until
// ctx is cancelled, then performs a final flush before returning.
func (s *Server) Run(ctx context.Context) error {
	start := time.Now()
	if _, err := s.store.GetRadius(ctx, 0, 0, int32(s.cfg.ChunkLoadDistance)); err != nil {
		return fmt.Errorf("pre-generate spawn area: %w", err)
	}
	s.log.Info("spawn area ready", "chunks", s.store.Len(), "took", time.Since(start))

	flushTick := time.NewTicker(s.cfg.FlushInterval())
	defer flushTick.Stop()
	sweepTick := time.NewTicker(s.cfg.SweepInterval())
	defer sweepTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()

		case <-flushTick.C:
			if n, err := s.flusher.Flush(ctx); err != nil {
				s.log.Error("flush cycle", "written", n, "error", err)
			}
			st := s.store.Stats()
			s.log.Info("world stats",
				"chunks", st.Total,
				"modified", st.Modified,
				"generated", st.Generated,
				"capacity", st.Capacity,
			)

		case <-sweepTick.C:
			s.store.Sweep(time.Now())
		}
	}
}

// shutdown flushes one last time with its own deadline (the run context
// is already cancelled) and closes the sink.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.flusher.Flush(ctx)
	s.log.Info("final flush", "written", n)

	if s.closer != nil {
		if cerr := s.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
