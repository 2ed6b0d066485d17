package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
)

func TestInterleave(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 1, 0}},
		TexCoords: []mgl32.Vec2{{7, 8}, {9, 10}},
		Indices:   []uint32{0, 1, 0},
	}
	got := interleave(m)
	want := []float32{
		1, 2, 3, 0, 0, 1, 7, 8,
		4, 5, 6, 0, 1, 0, 9, 10,
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("float %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInterleave_MissingAttributes(t *testing.T) {
	m := &mesh.Mesh{Positions: []mgl32.Vec3{{1, 1, 1}}}
	got := interleave(m)
	if len(got) != floatsPerVertex {
		t.Fatalf("len = %d, want %d", len(got), floatsPerVertex)
	}
	for i := 3; i < floatsPerVertex; i++ {
		if got[i] != 0 {
			t.Errorf("float %d = %v, want 0", i, got[i])
		}
	}
}

func TestRenderer_AspectGuardsZeroHeight(t *testing.T) {
	r := &Renderer{config: Config{Width: 800, Height: 0}}
	if got := r.Aspect(); got != 1 {
		t.Errorf("Aspect() = %v, want 1", got)
	}
	r.config.Height = 400
	if got := r.Aspect(); got != 2 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
}
