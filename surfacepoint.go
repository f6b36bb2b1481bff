package tufted

import "fmt"

// SurfacePointType tags which element a SurfacePoint lives on.
type SurfacePointType uint8

const (
	VertexPointType SurfacePointType = iota
	EdgePointType
	FacePointType
)

// SurfacePoint is a location on a surface expressed relative to a
// vertex, an edge (with a scalar position along the edge's canonical
// halfedge), or a face (with barycentric coordinates in face corner
// order). Barycentric coordinates sum to 1 and are non-negative for
// interior points.
type SurfacePoint struct {
	Type   SurfacePointType
	Vertex Vertex
	Edge   Edge
	T      float64 // edge parameter in [0,1] along EdgeHalfedge(Edge)
	Face   Face
	Bary   [3]float64
}

// VertexPoint returns the SurfacePoint at vertex v.
func VertexPoint(v Vertex) SurfacePoint {
	return SurfacePoint{Type: VertexPointType, Vertex: v}
}

// EdgePoint returns the SurfacePoint at parameter t along edge e.
func EdgePoint(e Edge, t float64) SurfacePoint {
	return SurfacePoint{Type: EdgePointType, Edge: e, T: t}
}

// FacePoint returns the SurfacePoint at barycentric coordinates bary
// inside face f.
func FacePoint(f Face, bary [3]float64) SurfacePoint {
	return SurfacePoint{Type: FacePointType, Face: f, Bary: bary}
}

func (p SurfacePoint) String() string {
	switch p.Type {
	case VertexPointType:
		return fmt.Sprintf("vertex %d", p.Vertex)
	case EdgePointType:
		return fmt.Sprintf("edge %d @ %g", p.Edge, p.T)
	default:
		return fmt.Sprintf("face %d @ %v", p.Face, p.Bary)
	}
}

// IncidentToFace reports whether p lies on face f of m.
func (p SurfacePoint) IncidentToFace(m *Mesh, f Face) bool {
	switch p.Type {
	case VertexPointType:
		return m.VertexIncidentToFace(p.Vertex, f)
	case EdgePointType:
		h := m.EdgeHalfedge(p.Edge)
		return m.FaceOf(h) == f || m.FaceOf(m.Twin(h)) == f
	default:
		return p.Face == f
	}
}

// InFace reinterprets p as barycentric coordinates of face f. The
// conversion is lossless: a vertex becomes a corner, an edge point
// splits its parameter between the edge's two corners. Fails when p
// is not incident to f.
func (p SurfacePoint) InFace(m *Mesh, f Face) (SurfacePoint, error) {
	switch p.Type {
	case VertexPointType:
		vs := m.FaceVertices(f)
		for k := 0; k < 3; k++ {
			if vs[k] == p.Vertex {
				var bary [3]float64
				bary[k] = 1
				return FacePoint(f, bary), nil
			}
		}
	case EdgePointType:
		h := m.EdgeHalfedge(p.Edge)
		t := p.T
		if m.FaceOf(h) != f {
			if m.FaceOf(m.Twin(h)) != f {
				break
			}
			h = m.Twin(h)
			t = 1 - t
		}
		hs := m.FaceHalfedges(f)
		for k := 0; k < 3; k++ {
			if hs[k] == h {
				var bary [3]float64
				bary[k] = 1 - t
				bary[(k+1)%3] = t
				return FacePoint(f, bary), nil
			}
		}
	default:
		if p.Face == f {
			return p, nil
		}
	}
	return SurfacePoint{}, fmt.Errorf("tufted: point %v is not incident to face %d", p, f)
}

// InSomeFace reinterprets p into an arbitrary (but deterministic)
// incident face.
func (p SurfacePoint) InSomeFace(m *Mesh) SurfacePoint {
	var f Face
	switch p.Type {
	case VertexPointType:
		f = m.FaceOf(m.VertexHalfedge(p.Vertex))
	case EdgePointType:
		f = m.FaceOf(m.EdgeHalfedge(p.Edge))
	default:
		return p
	}
	q, err := p.InFace(m, f)
	if err != nil {
		panic(err) // incidence is guaranteed by construction
	}
	return q
}

// SharedFace finds a face incident to both points, scanning a's
// candidate faces in deterministic order. There may be several; the
// first is returned. ok is false when the points share no face.
func SharedFace(m *Mesh, a, b SurfacePoint) (f Face, ok bool) {
	found := InvalidFace
	check := func(cand Face) bool {
		if found == InvalidFace && b.IncidentToFace(m, cand) {
			found = cand
		}
		return found != InvalidFace
	}
	switch a.Type {
	case VertexPointType:
		m.ForEachOutgoing(a.Vertex, func(h Halfedge) {
			check(m.FaceOf(h))
		})
	case EdgePointType:
		h := m.EdgeHalfedge(a.Edge)
		if !check(m.FaceOf(h)) {
			check(m.FaceOf(m.Twin(h)))
		}
	default:
		check(a.Face)
	}
	if found == InvalidFace {
		return InvalidFace, false
	}
	return found, true
}
