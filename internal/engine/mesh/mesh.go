// Package mesh holds indexed triangle meshes produced by terrain builders and
// consumed by the simplifier, the scene registry, and the GPU renderer.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh validation errors.
var (
	ErrIndexRange     = errors.New("mesh index out of range")
	ErrIndexCount     = errors.New("mesh index count not a multiple of 3")
	ErrAttributeCount = errors.New("mesh attribute count differs from vertex count")
)

// Mesh is an indexed triangle list with CCW winding. Normals and TexCoords
// are optional; when present they have one entry per position.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 { return b.Max.Sub(b.Min) }

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles described by the indices.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool { return len(m.Indices) == 0 }

// Validate checks that indices form whole triangles referencing existing
// vertices and that optional attributes match the vertex count.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at slot %d, %d vertices", ErrIndexRange, idx, i, n)
		}
	}
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrAttributeCount, len(m.Normals), len(m.Positions))
	}
	if m.TexCoords != nil && len(m.TexCoords) != len(m.Positions) {
		return fmt.Errorf("%w: %d texcoords for %d positions", ErrAttributeCount, len(m.TexCoords), len(m.Positions))
	}
	return nil
}

// Bounds returns the bounding box of all positions, referenced or not. An
// empty mesh yields the zero box.
func (m *Mesh) Bounds() Bounds {
	return BoundsOf(m.Positions)
}

// BoundsOf returns the bounding box of the given points.
func BoundsOf(points []mgl32.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for a := 0; a < 3; a++ {
			if p[a] < b.Min[a] {
				b.Min[a] = p[a]
			}
			if p[a] > b.Max[a] {
				b.Max[a] = p[a]
			}
		}
	}
	return b
}

// ReferencedVertices returns how many distinct vertices the indices use.
func (m *Mesh) ReferencedVertices() int {
	seen := make(map[uint32]struct{}, len(m.Positions))
	for _, idx := range m.Indices {
		seen[idx] = struct{}{}
	}
	return len(seen)
}

// FaceNormal returns the normalized CCW normal of triangle (a, b, c), or the
// zero vector for a degenerate triangle.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// ComputeNormals returns per-vertex normals: the normalized sum of the face
// normals of every triangle using the vertex. Vertices not used by any
// triangle, or whose face normals cancel out, get the zero vector.
func ComputeNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := FaceNormal(positions[a], positions[b], positions[c])
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}

// RecomputeNormals replaces the mesh normals from its current indices.
func (m *Mesh) RecomputeNormals() {
	m.Normals = ComputeNormals(m.Positions, m.Indices)
}
