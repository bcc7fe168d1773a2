package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/strixcraft/server/internal/server/world/gen"
)

// ErrInvalidCoordinate reports a vertical coordinate outside [0,256).
// It marks a caller contract violation, distinct from the silent
// not-cached results of ReadBlock and WriteBlock.
var ErrInvalidCoordinate = errors.New("world: block y coordinate out of range")

const shardCount = 32

// Options tunes a Store. Zero values fall back to defaults.
type Options struct {
	// MaxChunks is the cache size that triggers an eviction sweep after
	// inserts. Default 1000.
	MaxChunks int
	// TTL is how long an unmodified chunk may sit unread before the
	// sweeper may drop it. Default 5 minutes.
	TTL time.Duration
	// MaxConcurrentGen bounds how many chunk generations run at once.
	// Default 8.
	MaxConcurrentGen int64
}

type shard struct {
	mu     sync.RWMutex
	chunks map[ChunkPos]*Chunk
}

// Store owns every cached chunk of one world. Chunks are sharded by a
// hash of their coordinates so access to distinct chunks does not
// contend, and generation is deduplicated per coordinate: exactly one
// caller generates while concurrent callers for the same chunk wait for
// its result. One Store instance lives as long as the world it backs.
type Store struct {
	src  gen.HeightSource
	log  *slog.Logger
	opts Options

	shards [shardCount]*shard
	count  atomic.Int64 // cached chunks across all shards

	genGroup singleflight.Group
	genSem   *semaphore.Weighted

	now func() time.Time // swapped out by sweeper tests
}

// NewStore creates a Store generating terrain from src.
func NewStore(src gen.HeightSource, log *slog.Logger, opts Options) *Store {
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = 1000
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxConcurrentGen <= 0 {
		opts.MaxConcurrentGen = 8
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		src:    src,
		log:    log,
		opts:   opts,
		genSem: semaphore.NewWeighted(opts.MaxConcurrentGen),
		now:    time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{chunks: make(map[ChunkPos]*Chunk)}
	}
	return s
}

// shardFor selects the shard owning pos by a spatial hash of the
// coordinates.
func (s *Store) shardFor(pos ChunkPos) *shard {
	h := uint32(pos.X)*73856093 ^ uint32(pos.Z)*19349663
	return s.shards[h%shardCount]
}

// lookup returns the cached chunk for pos, if present.
func (s *Store) lookup(pos ChunkPos) (*Chunk, bool) {
	sh := s.shardFor(pos)
	sh.mu.RLock()
	c, ok := sh.chunks[pos]
	sh.mu.RUnlock()
	return c, ok
}

// Get returns the chunk at (cx, cz), generating it on first access. At
// most one generation runs per coordinate: concurrent callers for the
// same chunk share the first caller's result, or its error. A failed
// generation caches nothing and releases the per-key guard, so a later
// call may retry.
func (s *Store) Get(ctx context.Context, cx, cz int32) (*Chunk, error) {
	pos := ChunkPos{X: cx, Z: cz}

	if c, ok := s.lookup(pos); ok {
		c.touch(s.now())
		return c, nil
	}

	v, err, _ := s.genGroup.Do(genKey(pos), func() (any, error) {
		// A previous flight may have inserted the chunk between our
		// miss and this call.
		if c, ok := s.lookup(pos); ok {
			return c, nil
		}

		if err := s.genSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.genSem.Release(1)

		c, err := generateChunk(ctx, pos, s.src)
		if err != nil {
			return nil, fmt.Errorf("generate chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		c.touch(s.now())

		sh := s.shardFor(pos)
		sh.mu.Lock()
		sh.chunks[pos] = c
		sh.mu.Unlock()

		if int(s.count.Inc()) > s.opts.MaxChunks {
			s.Sweep(s.now())
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	c := v.(*Chunk)
	c.touch(s.now())
	return c, nil
}

func genKey(pos ChunkPos) string {
	return strconv.FormatInt(int64(pos.X), 10) + "," + strconv.FormatInt(int64(pos.Z), 10)
}

// WriteBlock sets the block at absolute world coordinates. The write
// applies only when the owning chunk is already cached: reads load
// chunks, writes do not, so a write into uncached terrain is a no-op.
// Callers that need the chunk resident call Get first.
//
// The shard read lock is held across the write. Sweep removes chunks
// under the shard write lock, so a chunk found here cannot be evicted
// before it is marked dirty: a returned write is always visible to
// readers and to the flusher.
func (s *Store) WriteBlock(x, y, z int32, b Block) error {
	if y < 0 || y >= ChunkHeight {
		return fmt.Errorf("%w: y=%d", ErrInvalidCoordinate, y)
	}

	cx, cz := ChunkOf(x, z)
	pos := ChunkPos{X: cx, Z: cz}

	sh := s.shardFor(pos)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	c, ok := sh.chunks[pos]
	if !ok {
		return nil
	}

	lx, lz := LocalOf(x, z)
	c.setBlock(lx, int(y), lz, b)
	c.touch(s.now())
	return nil
}

// ReadBlock returns the block at absolute world coordinates. The second
// return is false when the owning chunk is not cached: a pure read, it
// never triggers generation.
func (s *Store) ReadBlock(x, y, z int32) (Block, bool, error) {
	if y < 0 || y >= ChunkHeight {
		return Air, false, fmt.Errorf("%w: y=%d", ErrInvalidCoordinate, y)
	}

	cx, cz := ChunkOf(x, z)
	c, ok := s.lookup(ChunkPos{X: cx, Z: cz})
	if !ok {
		return Air, false, nil
	}

	lx, lz := LocalOf(x, z)
	c.touch(s.now())
	return c.Block(lx, int(y), lz), true, nil
}

// Len returns the number of cached chunks.
func (s *Store) Len() int {
	return int(s.count.Load())
}

// forEach calls fn for every cached chunk, shard by shard, under each
// shard's read lock.
func (s *Store) forEach(fn func(*Chunk)) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, c := range sh.chunks {
			fn(c)
		}
		sh.mu.RUnlock()
	}
}

// Stats is a point-in-time aggregate over the cache.
type Stats struct {
	Total     int
	Modified  int
	Generated int
	Capacity  int
}

// Stats counts cached, modified and generated chunks. Pure snapshot, no
// side effects.
func (s *Store) Stats() Stats {
	st := Stats{Capacity: s.opts.MaxChunks}
	s.forEach(func(c *Chunk) {
		st.Total++
		if c.Modified() {
			st.Modified++
		}
		if c.Generated() {
			st.Generated++
		}
	})
	return st
}
