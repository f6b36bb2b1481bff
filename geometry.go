package tufted

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry pairs a mesh with an extrinsic embedding and the intrinsic
// edge lengths derived from it. The positions are used only for
// rendering and for deriving the initial lengths; the lengths alone
// drive every triangulation decision and may be perturbed (see
// Mollify) independently of the positions.
type Geometry struct {
	Mesh            *Mesh
	VertexPositions []r3.Vec
	EdgeLengths     []float64
}

// NewGeometry derives edge lengths from vertex positions.
func NewGeometry(m *Mesh, positions []r3.Vec) *Geometry {
	g := &Geometry{
		Mesh:            m,
		VertexPositions: positions,
		EdgeLengths:     make([]float64, m.NumEdges()),
	}
	for e := Edge(0); e < Edge(m.NumEdges()); e++ {
		vs := m.EdgeVertices(e)
		g.EdgeLengths[e] = r3.Norm(r3.Sub(positions[vs[1]], positions[vs[0]]))
	}
	return g
}

// HalfedgeLength returns the length of the halfedge's edge.
func (g *Geometry) HalfedgeLength(h Halfedge) float64 {
	return g.EdgeLengths[g.Mesh.EdgeOf(h)]
}

// MeanEdgeLength returns the average edge length.
func (g *Geometry) MeanEdgeLength() float64 {
	if len(g.EdgeLengths) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range g.EdgeLengths {
		sum += l
	}
	return sum / float64(len(g.EdgeLengths))
}

// cornerAngleFromLengths returns the angle between sides of length a
// and b opposite a side of length c, clamped against roundoff.
func cornerAngleFromLengths(a, b, c float64) float64 {
	q := (a*a + b*b - c*c) / (2 * a * b)
	if q > 1 {
		q = 1
	} else if q < -1 {
		q = -1
	}
	return math.Acos(q)
}

// CornerAngle returns the interior angle at the tail corner of h,
// computed intrinsically from edge lengths.
func (g *Geometry) CornerAngle(h Halfedge) float64 {
	m := g.Mesh
	a := g.HalfedgeLength(h)
	b := g.HalfedgeLength(m.Prev(h))
	c := g.HalfedgeLength(m.Next(h))
	return cornerAngleFromLengths(a, b, c)
}

// VertexAngleSum returns the total interior angle around v. It is 2π
// at a flat interior vertex and differs at cone points, which the
// tufted cover produces wherever sheets were separated.
func (g *Geometry) VertexAngleSum(v Vertex) float64 {
	sum := 0.0
	g.Mesh.ForEachOutgoing(v, func(h Halfedge) {
		sum += g.CornerAngle(h)
	})
	return sum
}

// FaceArea returns the face area from edge lengths (Heron).
func (g *Geometry) FaceArea(f Face) float64 {
	hs := g.Mesh.FaceHalfedges(f)
	a := g.EdgeLengths[g.Mesh.EdgeOf(hs[0])]
	b := g.EdgeLengths[g.Mesh.EdgeOf(hs[1])]
	c := g.EdgeLengths[g.Mesh.EdgeOf(hs[2])]
	s := (a + b + c) / 2
	q := s * (s - a) * (s - b) * (s - c)
	if q < 0 {
		q = 0
	}
	return math.Sqrt(q)
}

// FaceNormal returns the unit normal of the face's extrinsic embedding.
func (g *Geometry) FaceNormal(f Face) r3.Vec {
	vs := g.Mesh.FaceVertices(f)
	p0 := g.VertexPositions[vs[0]]
	e1 := r3.Sub(g.VertexPositions[vs[1]], p0)
	e2 := r3.Sub(g.VertexPositions[vs[2]], p0)
	n := r3.Cross(e1, e2)
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// FaceMeanEdgeLength returns the mean extrinsic side length of f,
// a local geometric scale.
func (g *Geometry) FaceMeanEdgeLength(f Face) float64 {
	vs := g.Mesh.FaceVertices(f)
	p0 := g.VertexPositions[vs[0]]
	p1 := g.VertexPositions[vs[1]]
	p2 := g.VertexPositions[vs[2]]
	return (r3.Norm(r3.Sub(p1, p0)) + r3.Norm(r3.Sub(p2, p1)) + r3.Norm(r3.Sub(p0, p2))) / 3
}

// Position maps a SurfacePoint to its extrinsic 3D position by
// barycentric interpolation of the vertex positions.
func (g *Geometry) Position(p SurfacePoint) r3.Vec {
	q := p.InSomeFace(g.Mesh)
	vs := g.Mesh.FaceVertices(q.Face)
	pos := r3.Scale(q.Bary[0], g.VertexPositions[vs[0]])
	pos = r3.Add(pos, r3.Scale(q.Bary[1], g.VertexPositions[vs[1]]))
	pos = r3.Add(pos, r3.Scale(q.Bary[2], g.VertexPositions[vs[2]]))
	return pos
}
