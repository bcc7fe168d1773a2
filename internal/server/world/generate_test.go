package world

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/strixcraft/server/internal/server/world/gen"
)

func TestGenerateColumnLayout(t *testing.T) {
	// Constant height 64 must yield, for every column: bedrock at y=0,
	// stone for y=1..59, dirt for y=60..63, grass at y=64, air above.
	c, err := generateChunk(context.Background(), ChunkPos{}, gen.NewFlat(64))
	if err != nil {
		t.Fatalf("generateChunk: %v", err)
	}

	for lz := 0; lz < ChunkWidth; lz++ {
		for lx := 0; lx < ChunkWidth; lx++ {
			if h := c.Height(lx, lz); h != 64 {
				t.Fatalf("height map at (%d,%d) = %d, want 64", lx, lz, h)
			}
			for y := 0; y < ChunkHeight; y++ {
				var want Block
				switch {
				case y == 0:
					want = Bedrock
				case y <= 59:
					want = Stone
				case y <= 63:
					want = Dirt
				case y == 64:
					want = Grass
				default:
					want = Air
				}
				if got := c.Block(lx, y, lz); got != want {
					t.Fatalf("block at (%d,%d,%d) = %v, want %v", lx, y, lz, got, want)
				}
			}
		}
	}
}

func TestGenerateFlagsAndBuffers(t *testing.T) {
	c, err := generateChunk(context.Background(), ChunkPos{X: 3, Z: -2}, gen.NewFlat(10))
	if err != nil {
		t.Fatalf("generateChunk: %v", err)
	}

	if !c.Generated() {
		t.Error("generated flag not set")
	}
	if c.Modified() {
		t.Error("fresh chunk reports modified")
	}
	if c.Coord != (ChunkPos{X: 3, Z: -2}) {
		t.Errorf("coord = %+v", c.Coord)
	}

	snap := c.Snapshot()
	if len(snap.Blocks) != ChunkVolume || len(snap.Metadata) != ChunkVolume || len(snap.Light) != ChunkVolume {
		t.Fatalf("buffer lengths %d/%d/%d, want %d", len(snap.Blocks), len(snap.Metadata), len(snap.Light), ChunkVolume)
	}
	for i, l := range snap.Light {
		if l != 15 {
			t.Fatalf("light[%d] = %d, want 15", i, l)
		}
	}
	for i, m := range snap.Metadata {
		if m != 0 {
			t.Fatalf("metadata[%d] = %d, want 0", i, m)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := generateChunk(ctx, ChunkPos{X: -7, Z: 11}, gen.NewNoise(42))
	if err != nil {
		t.Fatalf("generateChunk: %v", err)
	}
	b, err := generateChunk(ctx, ChunkPos{X: -7, Z: 11}, gen.NewNoise(42))
	if err != nil {
		t.Fatalf("generateChunk: %v", err)
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if !bytes.Equal(sa.Blocks, sb.Blocks) || !bytes.Equal(sa.HeightMap, sb.HeightMap) {
		t.Error("same seed and coordinate produced different chunk content")
	}
}

// failingSource fails every height query.
type failingSource struct{}

func (failingSource) Height(context.Context, int32, int32) (int, error) {
	return 0, errors.New("terrain backend down")
}

func TestGenerateHeightSourceError(t *testing.T) {
	_, err := generateChunk(context.Background(), ChunkPos{}, failingSource{})
	if err == nil {
		t.Fatal("expected error from failing height source")
	}
}

// wildSource returns heights outside the world.
type wildSource struct{ h int }

func (w wildSource) Height(context.Context, int32, int32) (int, error) {
	return w.h, nil
}

func TestGenerateHeightOutOfRange(t *testing.T) {
	for _, h := range []int{-1, 256, 10000} {
		_, err := generateChunk(context.Background(), ChunkPos{}, wildSource{h: h})
		if err == nil {
			t.Errorf("height %d: expected out-of-range error", h)
		}
	}
}

func TestColumnBlockBoundaries(t *testing.T) {
	tests := []struct {
		y, height int
		want      Block
	}{
		{0, 64, Bedrock},
		{1, 64, Stone},
		{59, 64, Stone},
		{60, 64, Dirt},
		{63, 64, Dirt},
		{64, 64, Grass},
		{65, 64, Air},
		{255, 64, Air},
		{0, 0, Bedrock}, // bedrock wins at the floor even when it is the surface
		{1, 1, Grass},
	}
	for _, tt := range tests {
		if got := columnBlock(tt.y, tt.height); got != tt.want {
			t.Errorf("columnBlock(%d, %d) = %v, want %v", tt.y, tt.height, got, tt.want)
		}
	}
}

// ExampleStore_Get keeps the read path honest in the docs.
func ExampleStore_Get() {
	s := NewStore(gen.NewFlat(64), nil, Options{})
	c, _ := s.Get(context.Background(), 0, 0)
	fmt.Println(c.Block(0, 64, 0))
	// Output: grass
}
