package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/strixcraft/server/internal/server/world"
)

// Chunk snapshots are framed as:
//
//	magic "SCWC" | version u8 | cx i32 | cz i32 | flags u8 |
//	heightMap [256]u8 | payloadLen u32 | zstd(blocks ++ metadata ++ light)
//
// all integers little-endian. The payload concatenates the three
// fixed-length buffers; zstd folds the long air/stone runs down to a few
// kilobytes per chunk.

const (
	codecMagic   = "SCWC"
	codecVersion = 1

	flagGenerated = 1 << 0
	flagModified  = 1 << 1

	headerLen = 4 + 1 + 4 + 4 + 1 + world.ChunkWidth*world.ChunkWidth + 4
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeSnapshot serializes a chunk snapshot to the framed binary format.
// Buffer length mismatches are programming errors and panic.
func EncodeSnapshot(snap *world.Snapshot) []byte {
	if len(snap.Blocks) != world.ChunkVolume ||
		len(snap.Metadata) != world.ChunkVolume ||
		len(snap.Light) != world.ChunkVolume ||
		len(snap.HeightMap) != world.ChunkWidth*world.ChunkWidth {
		panic(fmt.Sprintf("storage: snapshot for chunk (%d,%d) has malformed buffers",
			snap.Coord.X, snap.Coord.Z))
	}

	raw := make([]byte, 0, 3*world.ChunkVolume)
	raw = append(raw, snap.Blocks...)
	raw = append(raw, snap.Metadata...)
	raw = append(raw, snap.Light...)
	payload := zstdEncoder.EncodeAll(raw, nil)

	out := make([]byte, 0, headerLen+len(payload))
	out = append(out, codecMagic...)
	out = append(out, codecVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(snap.Coord.X))
	out = binary.LittleEndian.AppendUint32(out, uint32(snap.Coord.Z))

	var flags byte
	if snap.Generated {
		flags |= flagGenerated
	}
	if snap.Modified {
		flags |= flagModified
	}
	out = append(out, flags)
	out = append(out, snap.HeightMap...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	return out
}

// DecodeSnapshot parses data produced by EncodeSnapshot. Any framing or
// length violation is an error; a decoded snapshot always carries
// full-length buffers.
func DecodeSnapshot(data []byte) (*world.Snapshot, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("storage: snapshot frame truncated (%d bytes)", len(data))
	}
	if string(data[:4]) != codecMagic {
		return nil, fmt.Errorf("storage: bad snapshot magic %q", data[:4])
	}
	if data[4] != codecVersion {
		return nil, fmt.Errorf("storage: unsupported snapshot version %d", data[4])
	}

	snap := &world.Snapshot{
		Coord: world.ChunkPos{
			X: int32(binary.LittleEndian.Uint32(data[5:9])),
			Z: int32(binary.LittleEndian.Uint32(data[9:13])),
		},
	}
	flags := data[13]
	snap.Generated = flags&flagGenerated != 0
	snap.Modified = flags&flagModified != 0

	const hmLen = world.ChunkWidth * world.ChunkWidth
	snap.HeightMap = append([]uint8(nil), data[14:14+hmLen]...)

	payloadLen := binary.LittleEndian.Uint32(data[14+hmLen : headerLen])
	payload := data[headerLen:]
	if uint32(len(payload)) != payloadLen {
		return nil, fmt.Errorf("storage: snapshot payload length %d, frame says %d", len(payload), payloadLen)
	}

	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress snapshot payload: %w", err)
	}
	if len(raw) != 3*world.ChunkVolume {
		return nil, fmt.Errorf("storage: snapshot payload decompressed to %d bytes, want %d", len(raw), 3*world.ChunkVolume)
	}

	snap.Blocks = append([]uint8(nil), raw[:world.ChunkVolume]...)
	snap.Metadata = append([]uint8(nil), raw[world.ChunkVolume:2*world.ChunkVolume]...)
	snap.Light = append([]uint8(nil), raw[2*world.ChunkVolume:]...)
	return snap, nil
}
