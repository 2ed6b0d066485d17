// Package terrain turns a tile grid into renderable surface geometry: a
// chunked, incrementally re-meshed group of chunk models, a whole-grid
// surface builder, and the Terrain facade used by game logic.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mountainhome/pkg/grid"
)

// DefaultChunkSize is the edge length of a cubic chunk in tiles.
const DefaultChunkSize = 16

// indexBits is the width of each chunk coordinate in a packed chunk index.
const indexBits = 10

// MaxChunksPerAxis bounds the number of chunks along any axis.
const MaxChunksPerAxis = 1 << indexBits

// Terrain errors.
var (
	ErrChunkSize      = errors.New("chunk size must be a power of two between 2 and 256")
	ErrTooManyChunks  = errors.New("grid needs more chunks than a chunk index can address")
	ErrUnknownBackend = errors.New("unknown grid backend")
	ErrEmptyTile      = errors.New("tile is empty")
)

// ChunkCoord identifies a chunk by its floor-divided tile coordinates.
type ChunkCoord struct {
	X, Y, Z int
}

// ChunkAt returns the coordinate of the chunk holding the tile position.
func ChunkAt(x, y, z, size int) ChunkCoord {
	return ChunkCoord{X: x / size, Y: y / size, Z: z / size}
}

// Index packs the coordinate into a single chunk index.
func (c ChunkCoord) Index() uint32 {
	return uint32(c.X)<<(2*indexBits) | uint32(c.Y)<<indexBits | uint32(c.Z)
}

// Name returns the scene entity name of the chunk.
func (c ChunkCoord) Name() string {
	return fmt.Sprintf("chunk:%d,%d,%d", c.X, c.Y, c.Z)
}

// String implements fmt.Stringer.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// ValidChunkSize reports whether size is a power of two in [2, 256].
func ValidChunkSize(size int) bool {
	return size >= 2 && size <= 256 && size&(size-1) == 0
}

func chunksAlong(extent, size int) int {
	return (extent + size - 1) / size
}

// checkChunkGrid verifies that every chunk of g can be addressed.
func checkChunkGrid(g grid.Grid, size int) error {
	if !ValidChunkSize(size) {
		return fmt.Errorf("%w: %d", ErrChunkSize, size)
	}
	for _, extent := range []int{g.Width(), g.Height(), g.Depth()} {
		if chunksAlong(extent, size) > MaxChunksPerAxis {
			return fmt.Errorf("%w: %dx%dx%d with chunk size %d",
				ErrTooManyChunks, g.Width(), g.Height(), g.Depth(), size)
		}
	}
	return nil
}
