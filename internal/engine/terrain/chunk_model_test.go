package terrain

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/pkg/grid"
)

func TestChunkCoord_IndexAndName(t *testing.T) {
	c := ChunkCoord{X: 1, Y: 2, Z: 3}
	if got, want := c.Index(), uint32(1<<20|2<<10|3); got != want {
		t.Errorf("Index() = %d, want %d", got, want)
	}
	if got := c.Name(); got != "chunk:1,2,3" {
		t.Errorf("Name() = %q", got)
	}
	if got := ChunkAt(17, 3, 32, 16); got != (ChunkCoord{X: 1, Y: 0, Z: 2}) {
		t.Errorf("ChunkAt = %v", got)
	}
}

func TestValidChunkSize(t *testing.T) {
	tests := []struct {
		size int
		want bool
	}{
		{1, false},
		{2, true},
		{3, false},
		{16, true},
		{256, true},
		{512, false},
		{0, false},
		{-4, false},
	}
	for _, tt := range tests {
		if got := ValidChunkSize(tt.size); got != tt.want {
			t.Errorf("ValidChunkSize(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestChunkModel_Lattice(t *testing.T) {
	g := grid.NewOctree(4, 4, 4)
	g.SetTile(0, 0, 0, 1)

	c := NewChunkModel(g, ChunkCoord{}, 2, lod.DefaultOptions(), nil)
	if got := c.Update(false); got != 2 {
		t.Fatalf("Update() = %d triangles, want 2", got)
	}
	m := c.Mesh()
	if m.VertexCount() != 9 {
		t.Fatalf("VertexCount() = %d, want 9", m.VertexCount())
	}
	if m.Positions[0] != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("vertex 0 = %v, want on top of the tile", m.Positions[0])
	}
	if m.Positions[1] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("vertex 1 = %v, want on the floor", m.Positions[1])
	}
	if m.TexCoords[4] != (mgl32.Vec2{1, 1}) {
		t.Errorf("texcoord 4 = %v", m.TexCoords[4])
	}

	want := []uint32{0, 1, 3, 3, 1, 4}
	if len(m.Indices) != len(want) {
		t.Fatalf("Indices = %v, want %v", m.Indices, want)
	}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", m.Indices, want)
		}
	}
	if len(m.Normals) != m.VertexCount() {
		t.Errorf("len(Normals) = %d", len(m.Normals))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if c.Rebuilds() != 1 {
		t.Errorf("Rebuilds() = %d", c.Rebuilds())
	}
}

func TestChunkModel_SurfaceOutsideRange(t *testing.T) {
	g := grid.NewOctree(4, 4, 4)
	g.SetTile(0, 0, 3, 1)

	low := NewChunkModel(g, ChunkCoord{Z: 0}, 2, lod.DefaultOptions(), nil)
	if got := low.Update(false); got != 0 {
		t.Errorf("lower chunk Update() = %d, want 0", got)
	}
	high := NewChunkModel(g, ChunkCoord{Z: 1}, 2, lod.DefaultOptions(), nil)
	if got := high.Update(false); got != 2 {
		t.Errorf("upper chunk Update() = %d, want 2", got)
	}
	if z := high.Mesh().Positions[0].Z(); z != 4 {
		t.Errorf("surface vertex height = %v, want 4", z)
	}
}

func TestChunkModel_ClampsAtGridEdge(t *testing.T) {
	g := grid.NewMatrix(2, 2, 2)
	g.SetTile(1, 1, 0, 1)

	c := NewChunkModel(g, ChunkCoord{}, 2, lod.DefaultOptions(), nil)
	if got := c.Update(false); got != 2 {
		t.Fatalf("Update() = %d, want 2", got)
	}
	// Vertex (2, 2) lies past the grid and reuses column (1, 1).
	if z := c.Mesh().Positions[8].Z(); z != 1 {
		t.Errorf("far corner height = %v, want 1", z)
	}
}

func TestChunkModel_PolyReduction(t *testing.T) {
	g := grid.NewOctree(8, 8, 8)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			g.SetTile(x, y, 0, 1)
		}
	}

	c := NewChunkModel(g, ChunkCoord{}, 4, lod.DefaultOptions(), nil)
	full := c.Update(false)
	if full != 32 {
		t.Fatalf("unreduced triangles = %d, want 32", full)
	}
	reduced := c.Update(true)
	if reduced == 0 || reduced >= full {
		t.Errorf("reduced triangles = %d, want in (0, %d)", reduced, full)
	}
	if err := c.Mesh().Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuildSurfaceMesh(t *testing.T) {
	g := grid.NewOctree(3, 2, 4)
	g.SetTile(0, 0, 2, 1)

	m := BuildSurfaceMesh(g, SurfaceOptions{})
	if m.VertexCount() != 12 {
		t.Fatalf("VertexCount() = %d, want 12", m.VertexCount())
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("TriangleCount() = %d, want 12", m.TriangleCount())
	}
	if m.Positions[0] != (mgl32.Vec3{0, 0, 3}) {
		t.Errorf("vertex 0 = %v", m.Positions[0])
	}
	if m.Positions[3] != (mgl32.Vec3{3, 0, 0}) {
		t.Errorf("vertex 3 = %v", m.Positions[3])
	}
	if len(m.Normals) != 12 {
		t.Errorf("len(Normals) = %d", len(m.Normals))
	}
}

func TestHeightmap(t *testing.T) {
	g := grid.NewOctree(2, 2, 4)
	g.SetTile(1, 0, 2, 5)

	hm := BuildHeightmap(g)
	if got := hm.SurfaceLevel(1, 0); got != 2 {
		t.Errorf("SurfaceLevel(1, 0) = %d", got)
	}
	if got := hm.SurfaceLevel(9, -3); got != 2 {
		t.Errorf("clamped SurfaceLevel = %d, want 2", got)
	}
	if got := hm.VertexHeight(0, 0); got != 0 {
		t.Errorf("empty column height = %v", got)
	}
	if got := hm.VertexHeight(1, 0); got != 3 {
		t.Errorf("VertexHeight(1, 0) = %v", got)
	}
}
