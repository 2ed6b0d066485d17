package lod

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
)

// lattice builds a (cells+1)^2 vertex heightfield with two triangles per cell.
func lattice(cells int, height func(x, y int) float32) ([]mgl32.Vec3, []uint32) {
	n := cells + 1
	positions := make([]mgl32.Vec3, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			positions = append(positions, mgl32.Vec3{float32(x), float32(y), height(x, y)})
		}
	}
	var indices []uint32
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			sw := uint32(y*n + x)
			se := sw + 1
			nw := sw + uint32(n)
			ne := nw + 1
			indices = append(indices, sw, se, nw, nw, se, ne)
		}
	}
	return positions, indices
}

func flat(x, y int) float32 { return 0 }

func referenced(indices []uint32) map[uint32]bool {
	used := make(map[uint32]bool)
	for _, i := range indices {
		used[i] = true
	}
	return used
}

func assertNoFlips(t *testing.T, positions []mgl32.Vec3, indices []uint32) {
	t.Helper()
	for i := 0; i+2 < len(indices); i += 3 {
		n := mesh.FaceNormal(positions[indices[i]], positions[indices[i+1]], positions[indices[i+2]])
		if n.Z() <= 0 {
			t.Errorf("triangle %d faces %v", i/3, n)
		}
	}
}

func TestSimplify_FlatQuadGrid(t *testing.T) {
	positions, indices := lattice(2, flat)

	res, err := Simplify(positions, indices, DefaultOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}

	used := referenced(res.Indices)
	if used[4] {
		t.Error("expected center vertex to be collapsed")
	}
	for v := uint32(0); v < 9; v++ {
		if v != 4 && !used[v] {
			t.Errorf("boundary vertex %d lost", v)
		}
	}
	if res.TrianglesAfter != 6 || len(res.Indices) != 18 {
		t.Errorf("expected 6 triangles, got %d", res.TrianglesAfter)
	}
	if res.TrianglesBefore != 8 || res.Collapses != 1 || res.Passes != 2 {
		t.Errorf("unexpected stats %+v", res)
	}
	assertNoFlips(t, positions, res.Indices)
}

func TestSimplify_DoesNotModifyInput(t *testing.T) {
	positions, indices := lattice(2, flat)
	orig := append([]uint32(nil), indices...)

	if _, err := Simplify(positions, indices, DefaultOptions()); err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	for i := range orig {
		if indices[i] != orig[i] {
			t.Fatalf("input index %d changed", i)
		}
	}
}

func TestSimplify_LargeFlatGridKeepsBoundary(t *testing.T) {
	const cells = 6
	positions, indices := lattice(cells, flat)

	res, err := Simplify(positions, indices, DefaultOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}

	used := referenced(res.Indices)
	interior := 0
	for y := 0; y <= cells; y++ {
		for x := 0; x <= cells; x++ {
			v := uint32(y*(cells+1) + x)
			edge := x == 0 || y == 0 || x == cells || y == cells
			if edge && !used[v] {
				t.Errorf("boundary vertex (%d,%d) lost", x, y)
			}
			if !edge && used[v] {
				interior++
			}
		}
	}
	if interior >= (cells-1)*(cells-1) {
		t.Errorf("expected interior vertices to collapse, %d remain", interior)
	}
	if res.TrianglesAfter >= res.TrianglesBefore {
		t.Errorf("expected fewer triangles, %d -> %d", res.TrianglesBefore, res.TrianglesAfter)
	}
	assertNoFlips(t, positions, res.Indices)

	var area float32
	for i := 0; i+2 < len(res.Indices); i += 3 {
		a, b, c := positions[res.Indices[i]], positions[res.Indices[i+1]], positions[res.Indices[i+2]]
		area += b.Sub(a).Cross(c.Sub(a)).Z() / 2
	}
	if area < cells*cells-1e-3 || area > cells*cells+1e-3 {
		t.Errorf("expected covered area %d, got %f", cells*cells, area)
	}
}

func TestSimplify_SlidingBoundary(t *testing.T) {
	positions, indices := lattice(2, flat)
	opts := DefaultOptions()
	opts.PreserveBoundary = false

	res, err := Simplify(positions, indices, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	used := referenced(res.Indices)
	for _, corner := range []uint32{0, 2, 6, 8} {
		if !used[corner] {
			t.Errorf("corner %d lost", corner)
		}
	}
	if res.TrianglesAfter >= 6 {
		t.Errorf("expected edge midpoints to slide away, %d triangles remain", res.TrianglesAfter)
	}
	assertNoFlips(t, positions, res.Indices)
}

func TestSimplify_SparseLatticeKeepsBoundary(t *testing.T) {
	// Only cell (0,1) of a 4x4 lattice is triangulated, along the min-x edge.
	positions, all := lattice(4, flat)
	cell := (1*4 + 0) * 6
	indices := append([]uint32(nil), all[cell:cell+6]...)

	for _, preserve := range []bool{true, false} {
		opts := DefaultOptions()
		opts.PreserveBoundary = preserve
		res, err := Simplify(positions, indices, opts)
		if err != nil {
			t.Fatalf("Simplify failed: %v", err)
		}
		if res.TrianglesAfter == 0 {
			t.Fatalf("preserve=%v: every triangle collapsed", preserve)
		}
		used := referenced(res.Indices)
		if preserve && (!used[5] || !used[10]) {
			t.Errorf("boundary vertices lost, indices %v", res.Indices)
		}
		assertNoFlips(t, positions, res.Indices)
	}
}

func TestSimplify_MidpointCollapseKeepsTriangle(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {1, 1, 0}}
	indices := []uint32{0, 1, 3, 0, 3, 2}
	opts := DefaultOptions()
	opts.PreserveBoundary = false

	res, err := Simplify(positions, indices, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if res.TrianglesAfter == 0 {
		t.Fatal("simplification removed the whole surface")
	}
	used := referenced(res.Indices)
	for _, corner := range []uint32{0, 1, 2} {
		if !used[corner] {
			t.Errorf("vertex %d lost, indices %v", corner, res.Indices)
		}
	}
}

func TestSimplify_PeakSurvivesDefaultCost(t *testing.T) {
	peak := func(x, y int) float32 {
		if x == 1 && y == 1 {
			return 1
		}
		return 0
	}
	positions, indices := lattice(2, peak)

	res, err := Simplify(positions, indices, DefaultOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if !referenced(res.Indices)[4] || res.TrianglesAfter != 8 {
		t.Errorf("expected peak to survive, %d triangles remain", res.TrianglesAfter)
	}

	opts := DefaultOptions()
	opts.MaxCost = 10
	res, err = Simplify(positions, indices, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if referenced(res.Indices)[4] {
		t.Error("expected peak to collapse with a generous cost limit")
	}
}

func TestSimplify_InvalidInput(t *testing.T) {
	positions, indices := lattice(1, flat)

	_, err := Simplify(positions, indices[:4], DefaultOptions())
	if !errors.Is(err, mesh.ErrIndexCount) {
		t.Errorf("expected ErrIndexCount, got %v", err)
	}
	bad := append([]uint32(nil), indices...)
	bad[0] = 99
	_, err = Simplify(positions, bad, DefaultOptions())
	if !errors.Is(err, mesh.ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestSimplify_EmptyMesh(t *testing.T) {
	res, err := Simplify(nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(res.Indices) != 0 || res.Passes != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBoundaryTolerance(t *testing.T) {
	r := &reducer{
		positions: []mgl32.Vec3{{0, 0, 0}, {4, 4, 0}, {3.9999, 2, 0}, {2, 2, 0}},
		bounds:    mesh.Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{4, 4, 0}},
	}
	if r.onBoundary(2) {
		t.Error("exact comparison should not see vertex 2 on the boundary")
	}

	r.opts.Epsilon = 1e-3
	if !r.onBoundary(2) {
		t.Error("tolerant comparison should see vertex 2 on the boundary")
	}
	if r.onBoundary(3) || r.onCorner(2) || !r.onCorner(1) {
		t.Error("unexpected boundary classification")
	}
}
