package grid

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Faultbox/mountainhome/pkg/tile"
)

// Node is an octree node covering an axis-aligned box of tiles. A node is
// either uniform (one tile value for its whole volume) or split into eight
// octant slots. Octant i holds the upper half along x when bit 0 is set, y for
// bit 1 and z for bit 2. The lower half of an axis of extent d spans
// ceil(d/2) tiles; a slot whose clamped box has no volume is nil.
//
// Nodes own their children exclusively. After every mutation the tree is
// re-merged top-down along the mutated path, so no split node ever has
// children that are all uniform with one shared value.
type Node struct {
	origin   [3]int
	dims     [3]int
	typ      tile.Type
	children []*Node
}

// NewNode creates a uniform node.
func NewNode(origin, dims [3]int, t tile.Type) *Node {
	return &Node{origin: origin, dims: dims, typ: t}
}

// Origin returns the minimum corner of the node's box.
func (n *Node) Origin() [3]int { return n.origin }

// Dims returns the per-axis extent of the node's box.
func (n *Node) Dims() [3]int { return n.dims }

// Type returns the node's tile value. For split nodes this is the value the
// node held when it was split.
func (n *Node) Type() tile.Type { return n.typ }

// Uniform reports whether the node holds a single value for its whole box.
func (n *Node) Uniform() bool { return n.children == nil }

// Children returns the eight octant slots of a split node, or nil.
func (n *Node) Children() []*Node { return n.children }

// Volume returns the number of tiles covered by the node.
func (n *Node) Volume() int { return n.dims[0] * n.dims[1] * n.dims[2] }

// Contains reports whether the tile position lies inside the node's box.
func (n *Node) Contains(x, y, z int) bool {
	return x >= n.origin[0] && x < n.origin[0]+n.dims[0] &&
		y >= n.origin[1] && y < n.origin[1]+n.dims[1] &&
		z >= n.origin[2] && z < n.origin[2]+n.dims[2]
}

func (n *Node) containsBox(origin, dims [3]int) bool {
	for a := 0; a < 3; a++ {
		if dims[a] <= 0 || origin[a] < n.origin[a] || origin[a]+dims[a] > n.origin[a]+n.dims[a] {
			return false
		}
	}
	return true
}

func lowerExtent(d int) int { return (d + 1) / 2 }

// octant returns the slot index whose box contains the position.
func (n *Node) octant(x, y, z int) int {
	p := [3]int{x, y, z}
	idx := 0
	for a := 0; a < 3; a++ {
		if p[a] >= n.origin[a]+lowerExtent(n.dims[a]) {
			idx |= 1 << a
		}
	}
	return idx
}

func (n *Node) split() {
	n.children = make([]*Node, 8)
	for i := range n.children {
		var origin, dims [3]int
		vacant := false
		for a := 0; a < 3; a++ {
			lo := lowerExtent(n.dims[a])
			if i&(1<<a) == 0 {
				origin[a] = n.origin[a]
				dims[a] = lo
			} else {
				origin[a] = n.origin[a] + lo
				dims[a] = n.dims[a] - lo
			}
			if dims[a] == 0 {
				vacant = true
			}
		}
		if !vacant {
			n.children[i] = NewNode(origin, dims, n.typ)
		}
	}
}

// tryMerge collapses a split node whose children are all uniform with the
// same value. It reports whether the node is uniform afterwards.
func (n *Node) tryMerge() bool {
	if n.children == nil {
		return true
	}
	var t tile.Type
	first := true
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if c.children != nil {
			return false
		}
		if first {
			t = c.typ
			first = false
		} else if c.typ != t {
			return false
		}
	}
	n.children = nil
	n.typ = t
	return true
}

// mergeAll re-merges the whole subtree bottom-up.
func (n *Node) mergeAll() {
	for _, c := range n.children {
		if c != nil {
			c.mergeAll()
		}
	}
	n.tryMerge()
}

// Tile returns the value at the position. Panics if the position is outside
// the node.
func (n *Node) Tile(x, y, z int) tile.Type {
	if !n.Contains(x, y, z) {
		panic(fmt.Errorf("%w: (%d, %d, %d) outside node %v+%v", ErrOutOfBounds, x, y, z, n.origin, n.dims))
	}
	cur := n
	for cur.children != nil {
		cur = cur.children[cur.octant(x, y, z)]
	}
	return cur.typ
}

// SetTile sets the value at the position, splitting uniform nodes along the
// path and re-merging on the way back up. Panics if the position is outside
// the node.
func (n *Node) SetTile(x, y, z int, t tile.Type) {
	if !n.Contains(x, y, z) {
		panic(fmt.Errorf("%w: (%d, %d, %d) outside node %v+%v", ErrOutOfBounds, x, y, z, n.origin, n.dims))
	}
	n.set(x, y, z, t)
}

func (n *Node) set(x, y, z int, t tile.Type) {
	if n.children == nil {
		if n.typ == t {
			return
		}
		if n.Volume() == 1 {
			n.typ = t
			return
		}
		n.split()
	}
	n.children[n.octant(x, y, z)].set(x, y, z, t)
	n.tryMerge()
}

// SurfaceLevel returns the topmost z in the column whose value is not empty,
// or -1 when the column holds nothing but empty.
func (n *Node) SurfaceLevel(x, y int, empty tile.Type) int {
	if n.children == nil {
		if n.typ == empty {
			return -1
		}
		return n.origin[2] + n.dims[2] - 1
	}
	column := n.octant(x, y, n.origin[2])
	if upper := n.children[column|4]; upper != nil {
		if z := upper.SurfaceLevel(x, y, empty); z >= 0 {
			return z
		}
	}
	if lower := n.children[column]; lower != nil {
		return lower.SurfaceLevel(x, y, empty)
	}
	return -1
}

// visitColumn yields the uniform z runs crossing column (x, y) bottom to top.
func (n *Node) visitColumn(x, y int, yield func(z0, z1 int, t tile.Type)) {
	if n.children == nil {
		yield(n.origin[2], n.origin[2]+n.dims[2]-1, n.typ)
		return
	}
	column := n.octant(x, y, n.origin[2])
	if lower := n.children[column]; lower != nil {
		lower.visitColumn(x, y, yield)
	}
	if upper := n.children[column|4]; upper != nil {
		upper.visitColumn(x, y, yield)
	}
}

// ClearChildren drops the subtree and makes the node uniform with t.
func (n *Node) ClearChildren(t tile.Type) {
	n.children = nil
	n.typ = t
}

// AddOctant places a uniform box into the tree during streaming
// reconstruction. The box must lie inside this node. A box equal to a uniform
// node overwrites its value; a smaller box splits uniform nodes on the way
// down and must fit entirely inside one octant at every level. It reports
// false when the box cannot be placed consistently.
func (n *Node) AddOctant(origin, dims [3]int, t tile.Type) bool {
	if !n.containsBox(origin, dims) {
		return false
	}
	if origin == n.origin && dims == n.dims {
		if n.children != nil {
			return false
		}
		n.typ = t
		return true
	}
	if n.children == nil {
		n.split()
	}
	c := n.children[n.octant(origin[0], origin[1], origin[2])]
	if c == nil {
		return false
	}
	return c.AddOctant(origin, dims, t)
}

// nodeRecord is the on-disk layout of one node.
type nodeRecord struct {
	Origin [3]int32
	Dims   [3]int32
	Type   int16
}

const nodeRecordSize = 3*4 + 3*4 + 2

// Write emits the subtree depth-first in pre-order and returns the number of
// node records written.
func (n *Node) Write(w io.Writer) (int, error) {
	rec := nodeRecord{Type: int16(n.typ)}
	for a := 0; a < 3; a++ {
		rec.Origin[a] = int32(n.origin[a])
		rec.Dims[a] = int32(n.dims[a])
	}
	if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
		return 0, err
	}

	count := 1
	for _, c := range n.children {
		if c == nil {
			continue
		}
		written, err := c.Write(w)
		count += written
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// NodeCount returns the number of nodes in the subtree.
func (n *Node) NodeCount() int {
	count := 1
	for _, c := range n.children {
		if c != nil {
			count += c.NodeCount()
		}
	}
	return count
}

// LeafCount returns the number of uniform nodes in the subtree.
func (n *Node) LeafCount() int {
	if n.children == nil {
		return 1
	}
	count := 0
	for _, c := range n.children {
		if c != nil {
			count += c.LeafCount()
		}
	}
	return count
}

// Depth returns the number of tree levels below and including this node.
func (n *Node) Depth() int {
	deepest := 0
	for _, c := range n.children {
		if c != nil {
			if h := c.Depth(); h > deepest {
				deepest = h
			}
		}
	}
	return deepest + 1
}
