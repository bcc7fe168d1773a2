package world

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/strixcraft/server/internal/server/world/gen"
)

func newTestStore(t *testing.T, src gen.HeightSource, opts Options) *Store {
	t.Helper()
	if src == nil {
		src = gen.NewFlat(64)
	}
	return NewStore(src, nil, opts)
}

func TestGetCachesChunk(t *testing.T) {
	s := newTestStore(t, nil, Options{})
	ctx := context.Background()

	a, err := s.Get(ctx, 3, -2)
	require.NoError(t, err)
	b, err := s.Get(ctx, 3, -2)
	require.NoError(t, err)

	assert.Same(t, a, b, "second Get should serve the cached chunk")
	assert.Equal(t, 1, s.Len())
	assert.True(t, a.Generated())
	assert.False(t, a.Modified())
}

func TestGetIdempotentContent(t *testing.T) {
	// Two stores over the same seed must produce bitwise-identical
	// chunks: generation is pure given (coordinate, terrain source).
	ctx := context.Background()
	s1 := newTestStore(t, gen.NewNoise(7), Options{})
	s2 := newTestStore(t, gen.NewNoise(7), Options{})

	a, err := s1.Get(ctx, -4, 9)
	require.NoError(t, err)
	b, err := s2.Get(ctx, -4, 9)
	require.NoError(t, err)

	sa, sb := a.Snapshot(), b.Snapshot()
	assert.True(t, bytes.Equal(sa.Blocks, sb.Blocks))
	assert.True(t, bytes.Equal(sa.Metadata, sb.Metadata))
	assert.True(t, bytes.Equal(sa.Light, sb.Light))
	assert.True(t, bytes.Equal(sa.HeightMap, sb.HeightMap))
}

func TestWriteThenReadCached(t *testing.T) {
	s := newTestStore(t, nil, Options{})
	ctx := context.Background()

	// Load the owning chunk first; writes only land on cached chunks.
	_, err := s.Get(ctx, 0, 0)
	require.NoError(t, err)

	require.NoError(t, s.WriteBlock(5, 70, 11, Stone))

	b, ok, err := s.ReadBlock(5, 70, 11)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Stone, b)

	c, _ := s.Get(ctx, 0, 0)
	assert.True(t, c.Modified(), "write should mark the chunk dirty")
}

func TestWriteUncachedIsNoOp(t *testing.T) {
	// Writes do not load or generate chunks; this asymmetry with the
	// read path is intentional and callers rely on it.
	s := newTestStore(t, nil, Options{})

	require.NoError(t, s.WriteBlock(1000, 70, 1000, Stone))
	assert.Equal(t, 0, s.Len(), "write must not generate the chunk")

	_, ok, err := s.ReadBlock(1000, 70, 1000)
	require.NoError(t, err)
	assert.False(t, ok, "chunk should still be uncached after the write")
}

func TestReadBlockNeverGenerates(t *testing.T) {
	s := newTestStore(t, nil, Options{})

	_, ok, err := s.ReadBlock(0, 64, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestInvalidVerticalCoordinate(t *testing.T) {
	s := newTestStore(t, nil, Options{})
	ctx := context.Background()
	_, err := s.Get(ctx, 0, 0)
	require.NoError(t, err)

	for _, y := range []int32{-1, 256, 4096} {
		_, _, err := s.ReadBlock(0, y, 0)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, "read y=%d", y)

		err = s.WriteBlock(0, y, 0, Stone)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, "write y=%d", y)
	}
}

func TestNegativeWorldCoordinates(t *testing.T) {
	s := newTestStore(t, nil, Options{})
	ctx := context.Background()

	// Block (-1, y, -1) lives in chunk (-1,-1) at local (15,15).
	_, err := s.Get(ctx, -1, -1)
	require.NoError(t, err)

	require.NoError(t, s.WriteBlock(-1, 80, -1, Dirt))
	b, ok, err := s.ReadBlock(-1, 80, -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Dirt, b)

	// The neighbouring positive-quadrant chunk is untouched.
	_, ok, err = s.ReadBlock(0, 80, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

// gatedSource blocks every height query until released, and counts them.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int64
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedSource) Height(ctx context.Context, _, _ int32) (int, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	g.calls.Inc()
	return 64, nil
}

func TestConcurrentGetGeneratesOnce(t *testing.T) {
	src := newGatedSource()
	s := newTestStore(t, src, Options{})
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Chunk, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Get(ctx, 0, 0)
		}(i)
	}

	// Wait until the first caller is inside generation, give the rest
	// time to pile onto the same flight, then let generation finish.
	<-src.started
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i], "all callers should share one generated chunk")
	}
	assert.Equal(t, int64(ChunkWidth*ChunkWidth), src.calls.Load(),
		"exactly one generation (256 height queries) should have run")
	assert.Equal(t, 1, s.Len())
}

// flakySource fails until recovered.
type flakySource struct {
	failing atomic.Bool
}

func (f *flakySource) Height(context.Context, int32, int32) (int, error) {
	if f.failing.Load() {
		return 0, errors.New("terrain backend down")
	}
	return 64, nil
}

func TestGenerationFailureAllowsRetry(t *testing.T) {
	src := &flakySource{}
	src.failing.Store(true)
	s := newTestStore(t, src, Options{})
	ctx := context.Background()

	_, err := s.Get(ctx, 0, 0)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len(), "failed generation must cache nothing")

	// The per-key guard must be released: once the source recovers the
	// same coordinate generates fine.
	src.failing.Store(false)
	c, err := s.Get(ctx, 0, 0)
	require.NoError(t, err)
	assert.True(t, c.Generated())
	assert.Equal(t, 1, s.Len())
}

func TestStats(t *testing.T) {
	s := newTestStore(t, nil, Options{MaxChunks: 50})
	ctx := context.Background()

	for cx := int32(0); cx < 3; cx++ {
		_, err := s.Get(ctx, cx, 0)
		require.NoError(t, err)
	}
	require.NoError(t, s.WriteBlock(0, 70, 0, Stone))
	require.NoError(t, s.WriteBlock(16, 70, 0, Stone))

	st := s.Stats()
	assert.Equal(t, Stats{Total: 3, Modified: 2, Generated: 3, Capacity: 50}, st)
}
