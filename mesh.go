// Package tufted builds closed, manifold "tufted double covers" over
// triangle meshes that may have boundary or nonmanifold connectivity,
// and provides the intrinsic surface types layered over them.
//
// Connectivity is stored as flat index-backed tables. Vertices, edges,
// faces and halfedges are opaque integer handles into those tables;
// all adjacency (twin, next, face) is handle-to-handle, so mutation
// (edge flips, vertex separation) never leaves dangling references.
// Halfedge indices are stable across edge flips: a flip rewires the
// six halfedges of the two incident faces but never renumbers them,
// which lets per-halfedge quantities (signpost angles) survive.
package tufted

import (
	"errors"
	"fmt"
)

// Handle types index into the mesh tables. A negative handle is invalid.
type (
	Vertex   int
	Edge     int
	Face     int
	Halfedge int
)

const (
	InvalidVertex   Vertex   = -1
	InvalidEdge     Edge     = -1
	InvalidFace     Face     = -1
	InvalidHalfedge Halfedge = -1
)

// Mesh is a closed, manifold triangle mesh in halfedge representation.
type Mesh struct {
	heNext    []Halfedge
	heTwin    []Halfedge
	heVertex  []Vertex // tail vertex of each halfedge
	heEdge    []Edge
	heFace    []Face
	vHalfedge []Halfedge // one outgoing halfedge per vertex
	eHalfedge []Halfedge // canonical halfedge per edge
	fHalfedge []Halfedge // one halfedge per face
}

// NewManifoldMesh builds a mesh from a closed, consistently oriented
// triangle list. Every ordered side (a,b) must be matched by exactly
// one opposite side (b,a); anything else is a structural error.
func NewManifoldMesh(nVertices int, faces [][3]int) (*Mesh, error) {
	sideOf := make(map[[2]int]Halfedge, 3*len(faces))
	for f, tri := range faces {
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a < 0 || b < 0 || a >= nVertices || b >= nVertices {
				return nil, fmt.Errorf("tufted: face %d references vertex out of range", f)
			}
			if a == b {
				return nil, fmt.Errorf("tufted: face %d has a repeated vertex", f)
			}
			key := [2]int{a, b}
			if _, ok := sideOf[key]; ok {
				return nil, fmt.Errorf("tufted: duplicate oriented side %d->%d", a, b)
			}
			sideOf[key] = Halfedge(3*f + k)
		}
	}
	twins := make([]Halfedge, 3*len(faces))
	for f, tri := range faces {
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			t, ok := sideOf[[2]int{b, a}]
			if !ok {
				return nil, fmt.Errorf("tufted: side %d->%d has no opposite; mesh is not closed or not consistently oriented", a, b)
			}
			twins[3*f+k] = t
		}
	}
	return newMeshFromTables(nVertices, faces, twins)
}

// newMeshFromTables assembles and validates the halfedge tables from a
// triangle list and a per-side twin assignment. Halfedge 3f+k is side
// k of face f.
func newMeshFromTables(nVertices int, faces [][3]int, twins []Halfedge) (*Mesh, error) {
	nHE := 3 * len(faces)
	m := &Mesh{
		heNext:    make([]Halfedge, nHE),
		heTwin:    twins,
		heVertex:  make([]Vertex, nHE),
		heEdge:    make([]Edge, nHE),
		heFace:    make([]Face, nHE),
		vHalfedge: make([]Halfedge, nVertices),
		fHalfedge: make([]Halfedge, len(faces)),
	}
	for i := range m.vHalfedge {
		m.vHalfedge[i] = InvalidHalfedge
	}
	for f, tri := range faces {
		m.fHalfedge[f] = Halfedge(3 * f)
		for k := 0; k < 3; k++ {
			h := Halfedge(3*f + k)
			v := Vertex(tri[k])
			m.heNext[h] = Halfedge(3*f + (k+1)%3)
			m.heVertex[h] = v
			m.heEdge[h] = InvalidEdge
			m.heFace[h] = Face(f)
			if m.vHalfedge[v] == InvalidHalfedge {
				m.vHalfedge[v] = h
			}
		}
	}
	// One edge per twin pair.
	for h := Halfedge(0); h < Halfedge(nHE); h++ {
		if m.heEdge[h] != InvalidEdge {
			continue
		}
		t := m.heTwin[h]
		if t < 0 || int(t) >= nHE {
			return nil, fmt.Errorf("tufted: halfedge %d has out of range twin", h)
		}
		e := Edge(len(m.eHalfedge))
		m.heEdge[h] = e
		m.heEdge[t] = e
		m.eHalfedge = append(m.eHalfedge, h)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) NumVertices() int  { return len(m.vHalfedge) }
func (m *Mesh) NumEdges() int     { return len(m.eHalfedge) }
func (m *Mesh) NumFaces() int     { return len(m.fHalfedge) }
func (m *Mesh) NumHalfedges() int { return len(m.heTwin) }

// Next returns the next halfedge in the face cycle.
func (m *Mesh) Next(h Halfedge) Halfedge { return m.heNext[h] }

// Prev returns the previous halfedge in the face cycle.
func (m *Mesh) Prev(h Halfedge) Halfedge { return m.heNext[m.heNext[h]] }

func (m *Mesh) Twin(h Halfedge) Halfedge { return m.heTwin[h] }

// Tail returns the vertex the halfedge leaves from.
func (m *Mesh) Tail(h Halfedge) Vertex { return m.heVertex[h] }

// Tip returns the vertex the halfedge points at.
func (m *Mesh) Tip(h Halfedge) Vertex { return m.heVertex[m.heNext[h]] }

func (m *Mesh) EdgeOf(h Halfedge) Edge { return m.heEdge[h] }
func (m *Mesh) FaceOf(h Halfedge) Face { return m.heFace[h] }

func (m *Mesh) VertexHalfedge(v Vertex) Halfedge { return m.vHalfedge[v] }
func (m *Mesh) EdgeHalfedge(e Edge) Halfedge     { return m.eHalfedge[e] }
func (m *Mesh) FaceHalfedge(f Face) Halfedge     { return m.fHalfedge[f] }

// EdgeVertices returns the two endpoints of an edge, canonical
// halfedge tail first.
func (m *Mesh) EdgeVertices(e Edge) [2]Vertex {
	h := m.eHalfedge[e]
	return [2]Vertex{m.Tail(h), m.Tip(h)}
}

// FaceVertices returns the face corners in cycle order.
func (m *Mesh) FaceVertices(f Face) [3]Vertex {
	h := m.fHalfedge[f]
	return [3]Vertex{m.Tail(h), m.Tail(m.Next(h)), m.Tail(m.Prev(h))}
}

// FaceHalfedges returns the face's halfedges in cycle order.
func (m *Mesh) FaceHalfedges(f Face) [3]Halfedge {
	h := m.fHalfedge[f]
	return [3]Halfedge{h, m.Next(h), m.Prev(h)}
}

// NextOutgoing rotates counterclockwise around the tail vertex of h
// and returns the next outgoing halfedge.
func (m *Mesh) NextOutgoing(h Halfedge) Halfedge { return m.Twin(m.Prev(h)) }

// ForEachOutgoing visits every halfedge leaving v in counterclockwise
// order, starting at the vertex's reference halfedge.
func (m *Mesh) ForEachOutgoing(v Vertex, fn func(h Halfedge)) {
	h0 := m.vHalfedge[v]
	h := h0
	for {
		fn(h)
		h = m.NextOutgoing(h)
		if h == h0 {
			return
		}
	}
}

// VertexDegree counts halfedges leaving v.
func (m *Mesh) VertexDegree(v Vertex) int {
	n := 0
	m.ForEachOutgoing(v, func(Halfedge) { n++ })
	return n
}

// VertexIncidentToFace reports whether v is a corner of f.
func (m *Mesh) VertexIncidentToFace(v Vertex, f Face) bool {
	vs := m.FaceVertices(f)
	return vs[0] == v || vs[1] == v || vs[2] == v
}

// FlipEdge rewires the connectivity so that e connects the two
// vertices opposite it in its incident faces. All six halfedges keep
// their indices; only adjacency changes. Returns false without
// mutating when the two incident faces coincide, in which case the
// flip would degenerate the complex. Geometric state (lengths,
// signposts) is the caller's to update.
func (m *Mesh) FlipEdge(e Edge) bool {
	he := m.eHalfedge[e] // a->b
	ht := m.heTwin[he]   // b->a
	fa := m.heFace[he]
	fb := m.heFace[ht]
	if fa == fb {
		return false
	}
	h1 := m.heNext[he] // b->c
	h2 := m.heNext[h1] // c->a
	h3 := m.heNext[ht] // a->d
	h4 := m.heNext[h3] // d->b
	a := m.heVertex[he]
	b := m.heVertex[ht]
	c := m.heVertex[h2]
	d := m.heVertex[h4]

	// New cycles: fa = he(d->c), h2(c->a), h3(a->d)
	//             fb = ht(c->d), h4(d->b), h1(b->c)
	m.heVertex[he] = d
	m.heVertex[ht] = c
	m.heNext[he] = h2
	m.heNext[h2] = h3
	m.heNext[h3] = he
	m.heNext[ht] = h4
	m.heNext[h4] = h1
	m.heNext[h1] = ht
	m.heFace[h3] = fa
	m.heFace[h1] = fb
	m.fHalfedge[fa] = he
	m.fHalfedge[fb] = ht
	// a and b may have referenced he/ht as their outgoing halfedge.
	m.vHalfedge[a] = h3
	m.vHalfedge[b] = h1
	m.vHalfedge[c] = h2
	m.vHalfedge[d] = h4
	return true
}

// Copy returns a deep copy sharing no state with m.
func (m *Mesh) Copy() *Mesh {
	return &Mesh{
		heNext:    append([]Halfedge(nil), m.heNext...),
		heTwin:    append([]Halfedge(nil), m.heTwin...),
		heVertex:  append([]Vertex(nil), m.heVertex...),
		heEdge:    append([]Edge(nil), m.heEdge...),
		heFace:    append([]Face(nil), m.heFace...),
		vHalfedge: append([]Halfedge(nil), m.vHalfedge...),
		eHalfedge: append([]Halfedge(nil), m.eHalfedge...),
		fHalfedge: append([]Halfedge(nil), m.fHalfedge...),
	}
}

// Validate checks the structural invariants: twin is an involution
// without fixed points, edges pair exactly two halfedges, face cycles
// have length three, and every vertex's outgoing halfedges form a
// single orbit.
func (m *Mesh) Validate() error {
	nHE := len(m.heTwin)
	if nHE != 3*len(m.fHalfedge) {
		return errors.New("tufted: halfedge count is not three per face")
	}
	edgeCount := make([]int, len(m.eHalfedge))
	for h := Halfedge(0); h < Halfedge(nHE); h++ {
		t := m.heTwin[h]
		if t < 0 || int(t) >= nHE || t == h {
			return fmt.Errorf("tufted: halfedge %d has invalid twin %d", h, t)
		}
		if m.heTwin[t] != h {
			return fmt.Errorf("tufted: twin of halfedge %d is not an involution", h)
		}
		if m.heEdge[h] != m.heEdge[t] {
			return fmt.Errorf("tufted: halfedge %d and its twin disagree on edge", h)
		}
		if m.heVertex[h] != m.Tip(t) || m.heVertex[t] != m.Tip(h) {
			return fmt.Errorf("tufted: halfedge %d and its twin do not traverse opposite directions", h)
		}
		if m.heNext[m.heNext[m.heNext[h]]] != h {
			return fmt.Errorf("tufted: halfedge %d is not on a 3-cycle", h)
		}
		if m.heFace[m.heNext[h]] != m.heFace[h] {
			return fmt.Errorf("tufted: halfedge %d and its next disagree on face", h)
		}
		edgeCount[m.heEdge[h]]++
	}
	for e, n := range edgeCount {
		if n != 2 {
			return fmt.Errorf("tufted: edge %d has %d halfedges, want 2", e, n)
		}
	}
	// Outgoing counts per vertex must match the orbit length, or a
	// vertex link is disconnected (nonmanifold vertex).
	outgoing := make([]int, len(m.vHalfedge))
	for h := Halfedge(0); h < Halfedge(nHE); h++ {
		outgoing[m.heVertex[h]]++
	}
	for v := Vertex(0); v < Vertex(len(m.vHalfedge)); v++ {
		if m.vHalfedge[v] == InvalidHalfedge {
			if outgoing[v] != 0 {
				return fmt.Errorf("tufted: vertex %d has halfedges but no reference", v)
			}
			continue
		}
		if got := m.VertexDegree(v); got != outgoing[v] {
			return fmt.Errorf("tufted: vertex %d link is disconnected: orbit %d of %d halfedges", v, got, outgoing[v])
		}
	}
	return nil
}

// EulerCharacteristic returns V - E + F.
func (m *Mesh) EulerCharacteristic() int {
	return m.NumVertices() - m.NumEdges() + m.NumFaces()
}

// Statistics returns a one-line structural summary.
func (m *Mesh) Statistics() string {
	return fmt.Sprintf("manifold mesh: %d vertices, %d edges, %d faces, euler characteristic %d",
		m.NumVertices(), m.NumEdges(), m.NumFaces(), m.EulerCharacteristic())
}
