package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// Sink receives chunk snapshots for persistence. Save must be idempotent:
// re-saving identical content is safe. Implementations live in
// internal/server/storage.
type Sink interface {
	Save(ctx context.Context, pos ChunkPos, snap *Snapshot) error
}

// Flusher writes modified chunks out to a Sink. One chunk's failure never
// aborts the cycle: the chunk stays dirty and is retried on the next
// flush. Persistence only clears flags, it never removes chunks.
type Flusher struct {
	store   *Store
	sink    Sink
	log     *slog.Logger
	limiter *rate.Limiter // nil = unthrottled
}

// NewFlusher creates a Flusher. savesPerSec > 0 throttles sink calls to
// that rate, keeping a large backlog from saturating the sink.
func NewFlusher(store *Store, sink Sink, log *slog.Logger, savesPerSec float64) *Flusher {
	if log == nil {
		log = slog.Default()
	}
	f := &Flusher{store: store, sink: sink, log: log}
	if savesPerSec > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(savesPerSec), 1)
	}
	return f
}

// Flush persists every modified chunk and clears its dirty flag on
// success. Returns how many chunks were written; the error joins the
// individual per-chunk failures, if any.
func (f *Flusher) Flush(ctx context.Context) (int, error) {
	var dirty []*Chunk
	f.store.forEach(func(c *Chunk) {
		if c.Modified() {
			dirty = append(dirty, c)
		}
	})

	written := 0
	var errs []error
	for _, c := range dirty {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				errs = append(errs, err)
				break
			}
		}

		snap := c.Snapshot()
		if err := f.sink.Save(ctx, c.Coord, snap); err != nil {
			f.log.Error("save chunk", "cx", c.Coord.X, "cz", c.Coord.Z, "error", err)
			errs = append(errs, fmt.Errorf("chunk (%d,%d): %w", c.Coord.X, c.Coord.Z, err))
			continue
		}

		// A write that landed after the snapshot keeps the chunk dirty
		// so the next cycle picks it up again.
		c.clearModified(snap.version)
		written++
	}

	if written > 0 {
		f.log.Info("flushed modified chunks", "written", written, "dirty", len(dirty))
	}
	return written, errors.Join(errs...)
}
