// Package lod reduces the triangle count of generated terrain surfaces by
// greedy edge collapse.
//
// Vertices are never removed from the vertex array. A collapsed vertex is
// simply no longer referenced by the returned index slice, so positions,
// normals and texture coordinates can be shared with the unreduced mesh.
package lod

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
)

// DefaultMaxCost is the largest collapse cost accepted by DefaultOptions.
const DefaultMaxCost float32 = 0.05

// Options controls a simplification run. Start from DefaultOptions; the zero
// value only accepts zero-cost collapses and lets boundary vertices slide.
type Options struct {
	// MaxCost is the largest edgeLength*curvature accepted for a collapse.
	MaxCost float32

	// Epsilon is the tolerance used when testing whether a coordinate lies on
	// the bounding box. Zero means exact comparison, which is safe for meshes
	// built on integer tile coordinates.
	Epsilon float32

	// PreserveBoundary keeps every vertex on the x/y bounding rectangle. When
	// false, a boundary vertex may still collapse into a neighbor lying on the
	// same boundary edge.
	PreserveBoundary bool

	Logger *zap.Logger
}

// DefaultOptions returns the settings used for chunk meshes.
func DefaultOptions() Options {
	return Options{
		MaxCost:          DefaultMaxCost,
		PreserveBoundary: true,
		Logger:           zap.NewNop(),
	}
}

// Result is the outcome of Simplify.
type Result struct {
	Indices []uint32

	Passes          int
	Collapses       int
	TrianglesBefore int
	TrianglesAfter  int
}

type face struct {
	v      [3]uint32
	normal mgl32.Vec3
}

func (f *face) has(v uint32) bool {
	return f.v[0] == v || f.v[1] == v || f.v[2] == v
}

type reducer struct {
	positions []mgl32.Vec3
	indices   []uint32
	bounds    mesh.Bounds
	opts      Options

	faces    []face
	byVertex map[uint32][]int
}

// Simplify collapses low-cost edges of the triangle list until a full pass
// makes no change. The input slice is not modified. An invalid triangle list
// is reported with the mesh package's validation errors.
func Simplify(positions []mgl32.Vec3, indices []uint32, opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	check := mesh.Mesh{Positions: positions, Indices: indices}
	if err := check.Validate(); err != nil {
		return Result{}, err
	}

	r := &reducer{
		positions: positions,
		indices:   append([]uint32(nil), indices...),
		bounds:    mesh.BoundsOf(positions),
		opts:      opts,
	}
	res := Result{TrianglesBefore: len(indices) / 3}

	r.rebuild()
	for {
		res.Passes++
		n := r.pass()
		res.Collapses += n
		if n == 0 {
			break
		}
	}

	res.Indices = r.indices
	res.TrianglesAfter = len(r.indices) / 3
	opts.Logger.Debug("mesh simplified",
		zap.Int("triangles_before", res.TrianglesBefore),
		zap.Int("triangles_after", res.TrianglesAfter),
		zap.Int("collapses", res.Collapses),
		zap.Int("passes", res.Passes))
	return res, nil
}

// rebuild recreates faces and the vertex-to-face map from the index slice,
// dropping faces whose normal has zero length.
func (r *reducer) rebuild() {
	r.faces = r.faces[:0]
	kept := r.indices[:0]
	for i := 0; i+2 < len(r.indices); i += 3 {
		f := face{v: [3]uint32{r.indices[i], r.indices[i+1], r.indices[i+2]}}
		f.normal = mesh.FaceNormal(r.positions[f.v[0]], r.positions[f.v[1]], r.positions[f.v[2]])
		if f.normal == (mgl32.Vec3{}) {
			continue
		}
		r.faces = append(r.faces, f)
		kept = append(kept, f.v[0], f.v[1], f.v[2])
	}
	r.indices = kept

	r.byVertex = make(map[uint32][]int, len(r.positions))
	for fi := range r.faces {
		for _, v := range r.faces[fi].v {
			r.byVertex[v] = append(r.byVertex[v], fi)
		}
	}
}

// pass visits every index slot once, collapsing its vertex when a cheap
// partner exists. It returns the number of collapses made.
func (r *reducer) pass() int {
	collapses := 0
	for slot := 0; slot < len(r.indices); slot++ {
		src := r.indices[slot]
		dst, ok := r.partner(src)
		if !ok {
			continue
		}
		for i, v := range r.indices {
			if v == src {
				r.indices[i] = dst
			}
		}
		r.rebuild()
		collapses++
	}
	return collapses
}

// partner returns the cheapest vertex src may collapse into. Ties go to the
// candidate found last.
func (r *reducer) partner(src uint32) (uint32, bool) {
	if r.onCorner(src) {
		return 0, false
	}
	boundary := r.onBoundary(src)
	if boundary && r.opts.PreserveBoundary {
		return 0, false
	}

	minCost := r.opts.MaxCost
	var best uint32
	found := false
	for _, fi := range r.byVertex[src] {
		for _, v := range r.faces[fi].v {
			if v == src {
				continue
			}
			if boundary && !r.shareBoundary(src, v) {
				continue
			}
			cost := r.cost(src, v)
			if cost < 0 || cost > minCost {
				continue
			}
			if r.foldsOver(src, v) || r.orphans(src, v) {
				continue
			}
			best, minCost, found = v, cost, true
		}
	}
	return best, found
}

// cost weighs the length of edge a-b by the curvature around a.
func (r *reducer) cost(a, b uint32) float32 {
	return r.positions[a].Sub(r.positions[b]).Len() * r.curvature(a, b)
}

// curvature is the largest, over the faces of a, of the smallest normal
// deviation to a face on edge a-b. Flat regions and straight creases along
// the edge score zero.
func (r *reducer) curvature(a, b uint32) float32 {
	aFaces := r.byVertex[a]
	var shared []int
	for _, fi := range aFaces {
		if r.faces[fi].has(b) {
			shared = append(shared, fi)
		}
	}

	var total float32
	for _, fa := range aFaces {
		least := float32(1)
		for _, fb := range shared {
			c := (1 - r.faces[fa].normal.Dot(r.faces[fb].normal)) / 2
			if c < least {
				least = c
			}
		}
		if least > total {
			total = least
		}
	}
	return total
}

// foldsOver reports whether moving src onto dst would turn any surviving
// face of src to face away from its current orientation.
func (r *reducer) foldsOver(src, dst uint32) bool {
	for _, fi := range r.byVertex[src] {
		f := r.faces[fi]
		if f.has(dst) {
			continue
		}
		var p [3]mgl32.Vec3
		for i, v := range f.v {
			if v == src {
				v = dst
			}
			p[i] = r.positions[v]
		}
		n := mesh.FaceNormal(p[0], p[1], p[2])
		if n.Dot(f.normal) < 0 {
			return true
		}
	}
	return false
}

// orphans reports whether moving src onto dst would leave another vertex of
// src's faces without a non-degenerate face. Only src may stop being
// referenced by a collapse.
func (r *reducer) orphans(src, dst uint32) bool {
	for _, fi := range r.byVertex[src] {
		for _, v := range r.faces[fi].v {
			if v == src {
				continue
			}
			if !r.keepsFace(v, src, dst) {
				return true
			}
		}
	}
	return false
}

// keepsFace reports whether v is still referenced after the collapse. Faces
// of src that survive the move reference dst in its place.
func (r *reducer) keepsFace(v, src, dst uint32) bool {
	for _, fi := range r.byVertex[v] {
		if r.survives(fi, src, dst) {
			return true
		}
	}
	if v != dst {
		return false
	}
	for _, fi := range r.byVertex[src] {
		if r.survives(fi, src, dst) {
			return true
		}
	}
	return false
}

// survives reports whether face fi keeps a non-zero area once src moves onto dst.
func (r *reducer) survives(fi int, src, dst uint32) bool {
	f := r.faces[fi]
	if !f.has(src) {
		return true
	}
	var p [3]mgl32.Vec3
	for i, v := range f.v {
		if v == src {
			v = dst
		}
		p[i] = r.positions[v]
	}
	return mesh.FaceNormal(p[0], p[1], p[2]) != (mgl32.Vec3{})
}

func (r *reducer) near(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= r.opts.Epsilon
}

func (r *reducer) onBoundary(v uint32) bool {
	p := r.positions[v]
	return r.near(p.X(), r.bounds.Min.X()) || r.near(p.X(), r.bounds.Max.X()) ||
		r.near(p.Y(), r.bounds.Min.Y()) || r.near(p.Y(), r.bounds.Max.Y())
}

func (r *reducer) onCorner(v uint32) bool {
	p := r.positions[v]
	onX := r.near(p.X(), r.bounds.Min.X()) || r.near(p.X(), r.bounds.Max.X())
	onY := r.near(p.Y(), r.bounds.Min.Y()) || r.near(p.Y(), r.bounds.Max.Y())
	return onX && onY
}

func (r *reducer) shareBoundary(a, b uint32) bool {
	pa, pb := r.positions[a], r.positions[b]
	lo, hi := r.bounds.Min, r.bounds.Max
	return (r.near(pa.X(), lo.X()) && r.near(pb.X(), lo.X())) ||
		(r.near(pa.X(), hi.X()) && r.near(pb.X(), hi.X())) ||
		(r.near(pa.Y(), lo.Y()) && r.near(pb.Y(), lo.Y())) ||
		(r.near(pa.Y(), hi.Y()) && r.near(pb.Y(), hi.Y()))
}
