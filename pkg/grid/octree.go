package grid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/pkg/tile"
)

// Octree is a Grid backed by a single root Node. Memory is proportional to the
// number of boundaries between differently valued regions.
type Octree struct {
	root  *Node
	empty tile.Type
	log   *zap.Logger
}

// NewOctree creates an octree grid of the given size filled with the empty
// value. Panics on non-positive or oversized dimensions.
func NewOctree(width, height, depth int, opts ...Option) *Octree {
	mustValidDimensions(width, height, depth)
	o := buildOptions(opts)
	return &Octree{
		root:  NewNode([3]int{}, [3]int{width, height, depth}, o.empty),
		empty: o.empty,
		log:   o.log,
	}
}

// Root returns the root node.
func (o *Octree) Root() *Node { return o.root }

// Width returns the x extent.
func (o *Octree) Width() int { return o.root.dims[0] }

// Height returns the y extent.
func (o *Octree) Height() int { return o.root.dims[1] }

// Depth returns the z extent.
func (o *Octree) Depth() int { return o.root.dims[2] }

// Empty returns the value treated as empty.
func (o *Octree) Empty() tile.Type { return o.empty }

// InBounds reports whether the position lies inside the grid.
func (o *Octree) InBounds(x, y, z int) bool { return inBounds(o, x, y, z) }

// Tile returns the value at the position.
func (o *Octree) Tile(x, y, z int) tile.Type {
	mustInBounds(o, x, y, z)
	return o.root.Tile(x, y, z)
}

// SetTile sets the value at the position.
func (o *Octree) SetTile(x, y, z int, t tile.Type) {
	mustInBounds(o, x, y, z)
	o.root.set(x, y, z, t)
}

// SurfaceLevel returns the topmost non-empty z of the column, or -1.
func (o *Octree) SurfaceLevel(x, y int) int {
	mustColumnInBounds(o, x, y)
	return o.root.SurfaceLevel(x, y, o.empty)
}

// EmptyRanges returns the maximal runs of empty tiles in the column.
func (o *Octree) EmptyRanges(x, y int) []Range {
	mustColumnInBounds(o, x, y)
	return emptyRanges(o.column(x, y), o.empty)
}

// FilledRanges returns the maximal runs of non-empty tiles in the column.
func (o *Octree) FilledRanges(x, y int) []Range {
	mustColumnInBounds(o, x, y)
	return filledRanges(o.column(x, y), o.empty)
}

func (o *Octree) column(x, y int) columnVisitor {
	return func(yield func(z0, z1 int, t tile.Type)) {
		o.root.visitColumn(x, y, yield)
	}
}

// Clear resets every tile to empty.
func (o *Octree) Clear() {
	o.root.ClearChildren(o.empty)
}

// NodeCount returns the number of nodes in the tree.
func (o *Octree) NodeCount() int { return o.root.NodeCount() }

// LeafCount returns the number of uniform nodes in the tree.
func (o *Octree) LeafCount() int { return o.root.LeafCount() }

// Save writes the tree as an int32 node count followed by pre-order node
// records. When w can seek, the count slot is reserved and patched after the
// body is written; otherwise the body is buffered first.
func (o *Octree) Save(w io.Writer) error {
	if ws, ok := w.(io.WriteSeeker); ok {
		return o.saveSeeking(ws)
	}

	var body bytes.Buffer
	count, err := o.root.Write(&body)
	if err != nil {
		return fmt.Errorf("writing octree nodes: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(count)); err != nil {
		return fmt.Errorf("writing node count: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("writing octree nodes: %w", err)
	}
	o.log.Debug("octree saved", zap.Int("nodes", count))
	return nil
}

func (o *Octree) saveSeeking(ws io.WriteSeeker) error {
	countPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating count slot: %w", err)
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return fmt.Errorf("reserving count slot: %w", err)
	}

	bw := bufio.NewWriter(ws)
	count, err := o.root.Write(bw)
	if err != nil {
		return fmt.Errorf("writing octree nodes: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing octree nodes: %w", err)
	}

	endPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating end of body: %w", err)
	}
	if _, err := ws.Seek(countPos, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to count slot: %w", err)
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(count)); err != nil {
		return fmt.Errorf("patching node count: %w", err)
	}
	if _, err := ws.Seek(endPos, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to end of body: %w", err)
	}
	o.log.Debug("octree saved", zap.Int("nodes", count))
	return nil
}

// Load replaces the tree with one read from r. The first record defines the
// grid extent; every later record is placed with AddOctant. On any failure the
// current tree is kept and an error is returned.
func (o *Octree) Load(r io.Reader) error {
	root, err := ReadOctree(r)
	if err != nil {
		return err
	}
	o.root = root
	o.log.Debug("octree loaded",
		zap.Int("width", o.Width()),
		zap.Int("height", o.Height()),
		zap.Int("depth", o.Depth()),
		zap.Int("nodes", root.NodeCount()))
	return nil
}

// ReadOctree reconstructs a fully merged tree from the octree save format.
// It returns nil and an error if any record is missing or cannot be placed.
func ReadOctree(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)

	var count int32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading node count: %v", ErrTruncatedSave, err)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: node count %d", ErrCorruptSave, count)
	}

	var root *Node
	for i := int32(0); i < count; i++ {
		var rec nodeRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: record %d of %d", ErrTruncatedSave, i, count)
			}
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}

		var origin, dims [3]int
		for a := 0; a < 3; a++ {
			origin[a] = int(rec.Origin[a])
			dims[a] = int(rec.Dims[a])
		}
		t := tile.Type(rec.Type)

		if root == nil {
			if origin != [3]int{} || !validDimensions(dims[0], dims[1], dims[2]) {
				return nil, fmt.Errorf("%w: root box %v+%v", ErrCorruptSave, origin, dims)
			}
			root = NewNode(origin, dims, t)
			continue
		}
		if !root.AddOctant(origin, dims, t) {
			return nil, fmt.Errorf("%w: record %d box %v+%v", ErrOctantPlacement, i, origin, dims)
		}
	}

	root.mergeAll()
	return root, nil
}
