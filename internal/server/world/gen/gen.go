// Package gen provides terrain height sources for chunk generation.
//
// A HeightSource is the contract between the world store and whatever
// decides terrain shape: given absolute block coordinates it answers with
// the y of the topmost solid block. The store never cares how that height
// is computed, only that it is deterministic for a fixed seed.
package gen

import "context"

// HeightSource yields terrain surface heights. Height may block on compute
// or IO, must return a value in [0,255], and must be reproducible for the
// same coordinates and seed.
type HeightSource interface {
	Height(ctx context.Context, worldX, worldZ int32) (int, error)
}

// Flat is a HeightSource with the same surface height everywhere,
// producing a classic superflat world.
type Flat struct {
	Surface int
}

// NewFlat returns a flat source with the surface at y.
func NewFlat(y int) *Flat {
	return &Flat{Surface: y}
}

// Height implements HeightSource.
func (f *Flat) Height(context.Context, int32, int32) (int, error) {
	return f.Surface, nil
}
