// Package grid provides tile grids: a sparse octree-backed grid and a dense
// array grid behind one storage-agnostic contract, plus their save formats.
package grid

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/pkg/tile"
)

// Grid errors.
var (
	ErrOutOfBounds       = errors.New("tile coordinate out of bounds")
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrDimensionMismatch = errors.New("grid dimensions differ")
	ErrTruncatedSave     = errors.New("truncated terrain save")
	ErrCorruptSave       = errors.New("corrupt terrain save")
	ErrOctantPlacement   = errors.New("octant cannot be placed")
	ErrValueOutOfRange   = errors.New("tile value does not fit cell")
)

// MaxDimension bounds each axis of a loaded grid.
const MaxDimension = 1 << 16

// MaxCells bounds the cell count of a dense grid.
const MaxCells = 1 << 28

// Grid is the contract shared by every tile grid representation.
//
// Tile, SetTile, SurfaceLevel and the range queries panic with ErrOutOfBounds
// for coordinates outside the grid; callers check InBounds first.
type Grid interface {
	Width() int
	Height() int
	Depth() int
	InBounds(x, y, z int) bool

	Tile(x, y, z int) tile.Type
	SetTile(x, y, z int, t tile.Type)

	// SurfaceLevel returns the topmost non-empty z of the column, or -1.
	SurfaceLevel(x, y int) int
	EmptyRanges(x, y int) []Range
	FilledRanges(x, y int) []Range

	// Empty returns the value treated as "no tile" by this grid.
	Empty() tile.Type
	Clear()

	Save(w io.Writer) error
	Load(r io.Reader) error
}

// Option configures a grid.
type Option func(*options)

type options struct {
	empty tile.Type
	log   *zap.Logger
}

func defaultOptions() options {
	return options{empty: tile.Empty, log: zap.NewNop()}
}

// WithEmpty sets the value treated as empty (default tile.Empty).
func WithEmpty(t tile.Type) Option {
	return func(o *options) { o.empty = t }
}

// WithLogger sets the logger used for warnings and load/save diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validDimensions(w, h, d int) bool {
	return w > 0 && h > 0 && d > 0 && w <= MaxDimension && h <= MaxDimension && d <= MaxDimension
}

func mustValidDimensions(w, h, d int) {
	if !validDimensions(w, h, d) {
		panic(fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, w, h, d))
	}
}

func inBounds(g Grid, x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Width() && y < g.Height() && z < g.Depth()
}

func mustInBounds(g Grid, x, y, z int) {
	if !inBounds(g, x, y, z) {
		panic(fmt.Errorf("%w: (%d, %d, %d) outside %dx%dx%d",
			ErrOutOfBounds, x, y, z, g.Width(), g.Height(), g.Depth()))
	}
}

func mustColumnInBounds(g Grid, x, y int) {
	mustInBounds(g, x, y, 0)
}

// Copy writes every tile of src into dst. Both grids must have the same
// dimensions.
func Copy(dst, src Grid) error {
	if dst.Width() != src.Width() || dst.Height() != src.Height() || dst.Depth() != src.Depth() {
		return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrDimensionMismatch,
			dst.Width(), dst.Height(), dst.Depth(), src.Width(), src.Height(), src.Depth())
	}
	dst.Clear()
	for z := 0; z < src.Depth(); z++ {
		for y := 0; y < src.Height(); y++ {
			for x := 0; x < src.Width(); x++ {
				t := src.Tile(x, y, z)
				if t == src.Empty() {
					t = dst.Empty()
				}
				dst.SetTile(x, y, z, t)
			}
		}
	}
	return nil
}
