package world

import (
	"context"
	"fmt"

	"github.com/strixcraft/server/internal/server/world/gen"
)

// generateChunk synthesizes the full column for pos, querying the terrain
// height source once per (x,z) column and filling vertically: bedrock
// floor, stone body, four layers of dirt, a grass cap, air above. The
// chunk is not published to the store until this returns, so callers
// never observe partially filled buffers.
func generateChunk(ctx context.Context, pos ChunkPos, src gen.HeightSource) (*Chunk, error) {
	c := newChunk(pos)

	// Full illumination until a lighting pass exists.
	for i := range c.light {
		c.light[i] = 15
	}

	for lz := 0; lz < ChunkWidth; lz++ {
		for lx := 0; lx < ChunkWidth; lx++ {
			wx := pos.X*ChunkWidth + int32(lx)
			wz := pos.Z*ChunkWidth + int32(lz)

			h, err := src.Height(ctx, wx, wz)
			if err != nil {
				return nil, fmt.Errorf("height at (%d,%d): %w", wx, wz, err)
			}
			if h < 0 || h >= ChunkHeight {
				return nil, fmt.Errorf("height source returned %d at (%d,%d), want [0,%d]", h, wx, wz, ChunkHeight-1)
			}
			c.heightMap[lz*ChunkWidth+lx] = uint8(h)

			for y := 0; y <= h; y++ {
				c.blocks[BlockIndex(lx, y, lz)] = uint8(columnBlock(y, h))
			}
		}
	}

	c.generated.Store(true)
	return c, nil
}

// columnBlock picks the block for elevation y in a column whose surface
// sits at height. Cells above the surface stay air.
func columnBlock(y, height int) Block {
	switch {
	case y == 0:
		return Bedrock
	case y < height-4:
		return Stone
	case y < height:
		return Dirt
	case y == height:
		return Grass
	default:
		return Air
	}
}
