package grid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/pkg/tile"
)

// Matrix is a dense Grid storing one byte per tile, indexed
// z*width*height + y*width + x. It suits small or densely varied worlds
// where octree overhead is not justified.
type Matrix struct {
	width, height, depth int
	cells                []int8
	empty                tile.Type
	log                  *zap.Logger
}

// NewMatrix creates a dense grid filled with the empty value. Panics on
// invalid dimensions or an empty value that does not fit a cell.
func NewMatrix(width, height, depth int, opts ...Option) *Matrix {
	mustValidDimensions(width, height, depth)
	if width*height*depth > MaxCells {
		panic(fmt.Errorf("%w: %dx%dx%d exceeds %d cells", ErrInvalidDimensions, width, height, depth, MaxCells))
	}
	o := buildOptions(opts)
	if !fitsCell(o.empty) {
		panic(fmt.Errorf("%w: empty value %d", ErrValueOutOfRange, o.empty))
	}
	m := &Matrix{
		width:  width,
		height: height,
		depth:  depth,
		cells:  make([]int8, width*height*depth),
		empty:  o.empty,
		log:    o.log,
	}
	m.Clear()
	return m
}

func fitsCell(t tile.Type) bool {
	return t >= math.MinInt8 && t <= math.MaxInt8
}

// Width returns the x extent.
func (m *Matrix) Width() int { return m.width }

// Height returns the y extent.
func (m *Matrix) Height() int { return m.height }

// Depth returns the z extent.
func (m *Matrix) Depth() int { return m.depth }

// Empty returns the value treated as empty.
func (m *Matrix) Empty() tile.Type { return m.empty }

// InBounds reports whether the position lies inside the grid.
func (m *Matrix) InBounds(x, y, z int) bool { return inBounds(m, x, y, z) }

func (m *Matrix) index(x, y, z int) int {
	return z*m.width*m.height + y*m.width + x
}

// Tile returns the value at the position.
func (m *Matrix) Tile(x, y, z int) tile.Type {
	mustInBounds(m, x, y, z)
	return tile.Type(m.cells[m.index(x, y, z)])
}

// SetTile sets the value at the position. A value that does not fit in one
// byte is logged and ignored.
func (m *Matrix) SetTile(x, y, z int, t tile.Type) {
	mustInBounds(m, x, y, z)
	if !fitsCell(t) {
		m.log.Warn("tile value does not fit dense grid cell, ignoring",
			zap.Int("x", x), zap.Int("y", y), zap.Int("z", z), zap.Int16("value", int16(t)))
		return
	}
	m.cells[m.index(x, y, z)] = int8(t)
}

// SurfaceLevel returns the topmost non-empty z of the column, or -1.
func (m *Matrix) SurfaceLevel(x, y int) int {
	mustColumnInBounds(m, x, y)
	for z := m.depth - 1; z >= 0; z-- {
		if tile.Type(m.cells[m.index(x, y, z)]) != m.empty {
			return z
		}
	}
	return -1
}

// EmptyRanges returns the maximal runs of empty tiles in the column.
func (m *Matrix) EmptyRanges(x, y int) []Range {
	mustColumnInBounds(m, x, y)
	return emptyRanges(m.column(x, y), m.empty)
}

// FilledRanges returns the maximal runs of non-empty tiles in the column.
func (m *Matrix) FilledRanges(x, y int) []Range {
	mustColumnInBounds(m, x, y)
	return filledRanges(m.column(x, y), m.empty)
}

func (m *Matrix) column(x, y int) columnVisitor {
	return func(yield func(z0, z1 int, t tile.Type)) {
		for z := 0; z < m.depth; z++ {
			yield(z, z, tile.Type(m.cells[m.index(x, y, z)]))
		}
	}
}

// Clear resets every tile to empty.
func (m *Matrix) Clear() {
	e := int8(m.empty)
	for i := range m.cells {
		m.cells[i] = e
	}
}

// Save writes int32 width, height, depth followed by the raw cells.
func (m *Matrix) Save(w io.Writer) error {
	header := [3]int32{int32(m.width), int32(m.height), int32(m.depth)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing grid header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.cells); err != nil {
		return fmt.Errorf("writing grid cells: %w", err)
	}
	m.log.Debug("dense grid saved", zap.Int("cells", len(m.cells)))
	return nil
}

// Load replaces the grid contents, and possibly its dimensions, with data read
// from r. On failure the grid is left unchanged.
func (m *Matrix) Load(r io.Reader) error {
	var header [3]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: reading grid header: %v", ErrTruncatedSave, err)
	}
	w, h, d := int(header[0]), int(header[1]), int(header[2])
	if !validDimensions(w, h, d) || w*h*d > MaxCells {
		return fmt.Errorf("%w: %dx%dx%d", ErrCorruptSave, w, h, d)
	}

	cells := make([]int8, w*h*d)
	if err := binary.Read(r, binary.LittleEndian, cells); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: expected %d cells", ErrTruncatedSave, len(cells))
		}
		return fmt.Errorf("reading grid cells: %w", err)
	}

	m.width, m.height, m.depth = w, h, d
	m.cells = cells
	m.log.Debug("dense grid loaded", zap.Int("width", w), zap.Int("height", h), zap.Int("depth", d))
	return nil
}
