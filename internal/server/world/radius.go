package world

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GetRadius returns every chunk in the inclusive square window of the
// given chunk radius around (centerX, centerZ), generating misses
// concurrently. The result is in row-major order (x outer, z inner),
// stable across calls.
func (s *Store) GetRadius(ctx context.Context, centerX, centerZ, radius int32) ([]*Chunk, error) {
	if radius < 0 {
		radius = 0
	}
	side := int(radius)*2 + 1
	out := make([]*Chunk, side*side)

	g, ctx := errgroup.WithContext(ctx)
	i := 0
	for cx := centerX - radius; cx <= centerX+radius; cx++ {
		for cz := centerZ - radius; cz <= centerZ+radius; cz++ {
			idx, cx, cz := i, cx, cz
			i++
			g.Go(func() error {
				c, err := s.Get(ctx, cx, cz)
				if err != nil {
					return err
				}
				out[idx] = c
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
