package world

// ChunkPos identifies a chunk column by its X and Z coordinates.
type ChunkPos struct {
	X, Z int32
}

const (
	// ChunkWidth is the horizontal extent of a chunk in blocks.
	ChunkWidth = 16
	// ChunkHeight is the vertical extent of a chunk in blocks.
	ChunkHeight = 256
	// ChunkVolume is the number of cells in one chunk column.
	ChunkVolume = ChunkWidth * ChunkWidth * ChunkHeight
)

// ChunkOf maps absolute block coordinates to the coordinates of the chunk
// containing them. The arithmetic shift keeps floor-division semantics for
// negative inputs: block -1 belongs to chunk -1, not chunk 0.
func ChunkOf(worldX, worldZ int32) (cx, cz int32) {
	return worldX >> 4, worldZ >> 4
}

// LocalOf maps absolute block coordinates to local in-chunk coordinates,
// always in [0,16) regardless of sign.
func LocalOf(worldX, worldZ int32) (lx, lz int) {
	return int(worldX & 0xF), int(worldZ & 0xF)
}

// BlockIndex converts local coordinates to the flat buffer index.
// y must be in [0,256) and lx, lz in [0,16): the store validates y before
// calling and the generator only produces in-range locals, so an
// out-of-range index here is a programming error and panics on the
// buffer access rather than wrapping silently.
func BlockIndex(lx, y, lz int) int {
	return y*ChunkWidth*ChunkWidth + lz*ChunkWidth + lx
}
