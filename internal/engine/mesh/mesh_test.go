package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func quad() *Mesh {
	return &Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Indices:   []uint32{0, 1, 2, 2, 1, 3},
	}
}

func TestMesh_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Mesh)
		want   error
	}{
		{"valid", func(m *Mesh) {}, nil},
		{"partial triangle", func(m *Mesh) { m.Indices = append(m.Indices, 0) }, ErrIndexCount},
		{"index past end", func(m *Mesh) { m.Indices[4] = 4 }, ErrIndexRange},
		{"short normals", func(m *Mesh) { m.Normals = make([]mgl32.Vec3, 3) }, ErrAttributeCount},
		{"long texcoords", func(m *Mesh) { m.TexCoords = make([]mgl32.Vec2, 5) }, ErrAttributeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.modify(m)
			err := m.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected valid mesh, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMesh_Counts(t *testing.T) {
	m := quad()
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}
	m.Positions = append(m.Positions, mgl32.Vec3{5, 5, 5})
	if m.ReferencedVertices() != 4 {
		t.Errorf("expected 4 referenced vertices, got %d", m.ReferencedVertices())
	}
	if !(&Mesh{}).Empty() {
		t.Error("expected zero mesh to be empty")
	}
}

func TestMesh_Bounds(t *testing.T) {
	m := &Mesh{Positions: []mgl32.Vec3{{1, -2, 3}, {-1, 4, 0}, {0, 0, 7}}}
	b := m.Bounds()
	if b.Min != (mgl32.Vec3{-1, -2, 0}) || b.Max != (mgl32.Vec3{1, 4, 7}) {
		t.Errorf("unexpected bounds %v", b)
	}
	if b.Size() != (mgl32.Vec3{2, 6, 7}) {
		t.Errorf("unexpected size %v", b.Size())
	}
	if (&Mesh{}).Bounds() != (Bounds{}) {
		t.Error("expected zero bounds for empty mesh")
	}
}

func TestComputeNormals_Flat(t *testing.T) {
	m := quad()
	normals := ComputeNormals(m.Positions, m.Indices)
	for i, n := range normals {
		if !n.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, n)
		}
	}
}

func TestComputeNormals_UnreferencedVertexStaysZero(t *testing.T) {
	m := quad()
	m.Positions = append(m.Positions, mgl32.Vec3{9, 9, 9})
	normals := ComputeNormals(m.Positions, m.Indices)

	if normals[4] != (mgl32.Vec3{}) {
		t.Errorf("expected zero normal for unused vertex, got %v", normals[4])
	}
	for i, n := range normals {
		for a := 0; a < 3; a++ {
			if math.IsNaN(float64(n[a])) {
				t.Fatalf("vertex %d has NaN normal", i)
			}
		}
	}
}

func TestComputeNormals_DegenerateTriangle(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	normals := ComputeNormals(positions, []uint32{0, 1, 2})
	for i, n := range normals {
		if n != (mgl32.Vec3{}) {
			t.Errorf("vertex %d: expected zero normal, got %v", i, n)
		}
	}
}

func TestComputeNormals_Averages(t *testing.T) {
	// Two faces folded along the shared edge 1-2: one facing +Z, one facing +X.
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {1, 0, -1}}
	indices := []uint32{0, 1, 2, 1, 3, 2}
	normals := ComputeNormals(positions, indices)

	want := mgl32.Vec3{1, 0, 1}.Normalize()
	if normals[1].Sub(want).Len() > 1e-5 {
		t.Errorf("expected shared vertex normal %v, got %v", want, normals[1])
	}
	if !normals[0].ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected +Z at vertex 0, got %v", normals[0])
	}
}
