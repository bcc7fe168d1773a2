package world

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Chunk is a 16×16×256 column of the world: the unit of generation,
// caching and persistence. The buffers keep their length for the lifetime
// of the chunk. The embedded mutex guards the buffers; flags and
// timestamps are atomics so the sweeper and the flusher can inspect a
// chunk without taking its lock.
type Chunk struct {
	Coord ChunkPos

	mu        sync.RWMutex
	blocks    []uint8 // len ChunkVolume, block type per cell
	metadata  []uint8 // len ChunkVolume, per-block variant data
	light     []uint8 // len ChunkVolume, light level per cell
	heightMap []uint8 // len 256, topmost solid block per (x,z) column

	generated    atomic.Bool
	modified     atomic.Bool
	lastAccessed atomic.Int64  // unix nanoseconds of last read or write
	version      atomic.Uint64 // bumped on every block write
}

func newChunk(pos ChunkPos) *Chunk {
	return &Chunk{
		Coord:     pos,
		blocks:    make([]uint8, ChunkVolume),
		metadata:  make([]uint8, ChunkVolume),
		light:     make([]uint8, ChunkVolume),
		heightMap: make([]uint8, ChunkWidth*ChunkWidth),
	}
}

// touch records an access for eviction bookkeeping.
func (c *Chunk) touch(now time.Time) {
	c.lastAccessed.Store(now.UnixNano())
}

// Generated reports whether terrain synthesis has completed. Chunks are
// only ever published to the store fully generated.
func (c *Chunk) Generated() bool { return c.generated.Load() }

// Modified reports whether the chunk holds block writes not yet persisted.
func (c *Chunk) Modified() bool { return c.modified.Load() }

// LastAccessed returns the time of the most recent read or write.
func (c *Chunk) LastAccessed() time.Time { return time.Unix(0, c.lastAccessed.Load()) }

// Block returns the block at local coordinates. lx, lz must be in [0,16)
// and y in [0,256).
func (c *Chunk) Block(lx, y, lz int) Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Block(c.blocks[BlockIndex(lx, y, lz)])
}

// setBlock writes one cell, bumps the write version and marks the chunk
// dirty. Version and flag change under the lock so the flusher can
// clear-if-unchanged without losing a concurrent write.
func (c *Chunk) setBlock(lx, y, lz int, b Block) {
	c.mu.Lock()
	c.blocks[BlockIndex(lx, y, lz)] = uint8(b)
	c.version.Inc()
	c.modified.Store(true)
	c.mu.Unlock()
}

// Height returns the height-map entry for a local column.
func (c *Chunk) Height(lx, lz int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.heightMap[lz*ChunkWidth+lx])
}

// clearModified drops the dirty flag, but only if no write landed since
// the snapshot with the given version was taken.
func (c *Chunk) clearModified(version uint64) {
	c.mu.Lock()
	if c.version.Load() == version {
		c.modified.Store(false)
	}
	c.mu.Unlock()
}

// Snapshot is an immutable copy of a chunk's persistent state, the value
// handed to a persistence Sink. Buffer lengths match the live chunk.
type Snapshot struct {
	Coord     ChunkPos
	Blocks    []uint8
	Metadata  []uint8
	Light     []uint8
	HeightMap []uint8
	Generated bool
	Modified  bool

	version uint64
}

// Snapshot copies the chunk's buffers under its read lock, so the copy is
// consistent even while writers are active on other goroutines.
func (c *Chunk) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Snapshot{
		Coord:     c.Coord,
		Blocks:    append([]uint8(nil), c.blocks...),
		Metadata:  append([]uint8(nil), c.metadata...),
		Light:     append([]uint8(nil), c.light...),
		HeightMap: append([]uint8(nil), c.heightMap...),
		Generated: c.generated.Load(),
		Modified:  c.modified.Load(),
		version:   c.version.Load(),
	}
}
