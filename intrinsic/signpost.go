// Package intrinsic maintains a signpost intrinsic triangulation over
// a closed manifold extrinsic mesh. The triangulation starts as a copy
// of the input connectivity with the input edge lengths and is refined
// by intrinsic edge flips; per-vertex angular bookkeeping (signposts)
// lets any intrinsic halfedge be traced as a path across the original
// triangles.
package intrinsic

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/tufted"
)

// delaunayEPS is the slack on the opposite-angle test. Edges within
// the tolerance of the flat configuration are left alone, which keeps
// the flip loop from oscillating on cocircular vertices.
const delaunayEPS = 1e-8

// SignpostTriangulation layers an intrinsic triangulation over a fixed
// extrinsic mesh. Mesh and EdgeLengths are mutated by flips;
// everything derived from the input geometry is immutable.
type SignpostTriangulation struct {
	// Input is the extrinsic mesh the triangulation sits on. Its
	// edge lengths (possibly mollified) seed the intrinsic lengths
	// and define the geometry traced over.
	Input *tufted.Geometry
	// Mesh is the intrinsic connectivity. Initially a copy of
	// Input.Mesh with identical handle numbering; flips rewire it in
	// place without renumbering.
	Mesh *tufted.Mesh
	// EdgeLengths holds the intrinsic length of every intrinsic edge.
	EdgeLengths []float64

	// directions[h] is the angle of intrinsic halfedge h at its tail
	// vertex, in that vertex's rescaled coordinates (total angle
	// normalized to 2π).
	directions []float64
	// inputAngles[h] is the rescaled angular coordinate of input
	// halfedge h at its tail, fixed at construction.
	inputAngles []float64
	// angleSums[v] is the total corner angle around v. Flips preserve
	// it, so it is computed once from the input geometry.
	angleSums []float64
}

// New builds the identity signpost triangulation over the input
// geometry: same connectivity, same lengths, signpost angles laid out
// by walking each vertex's outgoing halfedges counterclockwise.
func New(input *tufted.Geometry) (*SignpostTriangulation, error) {
	m := input.Mesh
	tri := &SignpostTriangulation{
		Input:       input,
		Mesh:        m.Copy(),
		EdgeLengths: append([]float64(nil), input.EdgeLengths...),
		directions:  make([]float64, m.NumHalfedges()),
		inputAngles: make([]float64, m.NumHalfedges()),
		angleSums:   make([]float64, m.NumVertices()),
	}
	for v := tufted.Vertex(0); v < tufted.Vertex(m.NumVertices()); v++ {
		sum := input.VertexAngleSum(v)
		if sum <= 0 || math.IsNaN(sum) {
			return nil, fmt.Errorf("intrinsic: vertex %d has degenerate angle sum %g", v, sum)
		}
		tri.angleSums[v] = sum
		scale := 2 * math.Pi / sum
		phi := 0.0
		m.ForEachOutgoing(v, func(h tufted.Halfedge) {
			tri.inputAngles[h] = phi
			tri.directions[h] = phi
			phi += scale * input.CornerAngle(h)
		})
	}
	return tri, nil
}

// vertexScale converts true angles at v into rescaled coordinates.
func (tri *SignpostTriangulation) vertexScale(v tufted.Vertex) float64 {
	return 2 * math.Pi / tri.angleSums[v]
}

func (tri *SignpostTriangulation) length(h tufted.Halfedge) float64 {
	return tri.EdgeLengths[tri.Mesh.EdgeOf(h)]
}

// oppositeAngle returns the angle opposite h in its face.
func (tri *SignpostTriangulation) oppositeAngle(h tufted.Halfedge) float64 {
	m := tri.Mesh
	return angleFromLengths(tri.length(m.Next(h)), tri.length(m.Prev(h)), tri.length(h))
}

// Delaunay reports whether edge e satisfies the local Delaunay
// condition: the two angles opposite it sum to at most π.
func (tri *SignpostTriangulation) Delaunay(e tufted.Edge) bool {
	he := tri.Mesh.EdgeHalfedge(e)
	alpha := tri.oppositeAngle(he)
	beta := tri.oppositeAngle(tri.Mesh.Twin(he))
	return alpha+beta <= math.Pi+delaunayEPS
}

// FlipToDelaunay flips edges until every intrinsic edge is locally
// Delaunay and returns the number of flips performed. Each flip
// strictly decreases a scalar potential of the triangulation, so the
// loop terminates on any valid input; the iteration cap only guards
// against a corrupted structure, which is reported as an error.
// Calling it again on a refined triangulation performs zero flips.
func (tri *SignpostTriangulation) FlipToDelaunay() (int, error) {
	nE := tri.Mesh.NumEdges()
	queue := make([]tufted.Edge, 0, nE)
	inQueue := make([]bool, nE)
	for e := tufted.Edge(0); e < tufted.Edge(nE); e++ {
		queue = append(queue, e)
		inQueue[e] = true
	}
	flips := 0
	maxFlips := 100*nE + 1000
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		inQueue[e] = false
		if tri.Delaunay(e) {
			continue
		}
		if !tri.flipEdge(e) {
			continue
		}
		flips++
		if flips > maxFlips {
			return flips, errors.New("intrinsic: flip loop exceeded iteration bound; triangulation is inconsistent")
		}
		he := tri.Mesh.EdgeHalfedge(e)
		ht := tri.Mesh.Twin(he)
		for _, h := range [4]tufted.Halfedge{
			tri.Mesh.Next(he), tri.Mesh.Prev(he),
			tri.Mesh.Next(ht), tri.Mesh.Prev(ht),
		} {
			ne := tri.Mesh.EdgeOf(h)
			if !inQueue[ne] {
				queue = append(queue, ne)
				inQueue[ne] = true
			}
		}
	}
	return flips, nil
}

// flipEdge flips e, updating the intrinsic length of the new diagonal
// and the signpost angles of its two halfedges. Returns false and
// leaves all state untouched when the flip would produce a degenerate
// triangle.
func (tri *SignpostTriangulation) flipEdge(e tufted.Edge) bool {
	m := tri.Mesh
	he := m.EdgeHalfedge(e) // a->b
	ht := m.Twin(he)        // b->a
	h1 := m.Next(he)        // b->c
	h2 := m.Prev(he)        // c->a
	h3 := m.Next(ht)        // a->d
	h4 := m.Prev(ht)        // d->b

	l := tri.length(he)
	lbc := tri.length(h1)
	lca := tri.length(h2)
	lad := tri.length(h3)
	ldb := tri.length(h4)

	// Unfold the two triangles into the plane across the shared
	// diagonal: a at the origin, b on the x axis, c above, d below.
	xc := (l*l + lca*lca - lbc*lbc) / (2 * l)
	yc := math.Sqrt(math.Max(0, lca*lca-xc*xc))
	xd := (l*l + lad*lad - ldb*ldb) / (2 * l)
	yd := -math.Sqrt(math.Max(0, lad*lad-xd*xd))
	if yc <= 0 || yd >= 0 {
		return false
	}
	newLen := math.Hypot(xc-xd, yc-yd)
	if !strictTriangle(newLen, lca, lad) || !strictTriangle(newLen, ldb, lbc) {
		return false
	}
	if !m.FlipEdge(e) {
		return false
	}
	tri.EdgeLengths[e] = newLen

	// he is now d->c in face (d,c,a); ht is c->d in face (c,d,b).
	// Each new halfedge sits one corner counterclockwise from a
	// surviving neighbor whose signpost is still valid.
	c := m.Tail(ht)
	d := m.Tail(he)
	tri.directions[he] = normAngle(tri.directions[h4] + tri.vertexScale(d)*angleFromLengths(ldb, newLen, lbc))
	tri.directions[ht] = normAngle(tri.directions[h2] + tri.vertexScale(c)*angleFromLengths(lca, newLen, lad))
	return true
}

// VertexLocation returns where intrinsic vertex v sits on the input
// mesh. Refinement here only flips edges, never inserts vertices, so
// every intrinsic vertex is the input vertex with the same handle.
func (tri *SignpostTriangulation) VertexLocation(v tufted.Vertex) tufted.SurfacePoint {
	return tufted.VertexPoint(v)
}

// angleFromLengths returns the angle between sides a and b opposite a
// side of length c, clamped against roundoff.
func angleFromLengths(a, b, c float64) float64 {
	q := (a*a + b*b - c*c) / (2 * a * b)
	if q > 1 {
		q = 1
	} else if q < -1 {
		q = -1
	}
	return math.Acos(q)
}

func strictTriangle(a, b, c float64) bool {
	return a+b > c && b+c > a && c+a > b
}

func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
