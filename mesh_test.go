package tufted

import "testing"

// tetrahedron is the smallest closed oriented triangle mesh.
func tetrahedron(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewManifoldMesh(4, [][3]int{
		{0, 1, 2},
		{0, 2, 3},
		{0, 3, 1},
		{1, 3, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// octahedron: apexes 0 and 5, equator 1,2,3,4.
func octahedron(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewManifoldMesh(6, [][3]int{
		{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {0, 4, 1},
		{5, 2, 1}, {5, 3, 2}, {5, 4, 3}, {5, 1, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTetrahedronStructure(t *testing.T) {
	m := tetrahedron(t)
	if got := m.NumVertices(); got != 4 {
		t.Errorf("vertices: got %d, want 4", got)
	}
	if got := m.NumEdges(); got != 6 {
		t.Errorf("edges: got %d, want 6", got)
	}
	if got := m.NumFaces(); got != 4 {
		t.Errorf("faces: got %d, want 4", got)
	}
	if got := m.EulerCharacteristic(); got != 2 {
		t.Errorf("euler characteristic: got %d, want 2", got)
	}
	for v := Vertex(0); v < 4; v++ {
		if got := m.VertexDegree(v); got != 3 {
			t.Errorf("vertex %d degree: got %d, want 3", v, got)
		}
	}
	for h := Halfedge(0); h < Halfedge(m.NumHalfedges()); h++ {
		if m.Tail(h) != m.Tip(m.Twin(h)) || m.Tip(h) != m.Tail(m.Twin(h)) {
			t.Errorf("halfedge %d and twin do not oppose", h)
		}
		if m.Next(m.Prev(h)) != h {
			t.Errorf("halfedge %d: next of prev is not identity", h)
		}
	}
}

func TestNewManifoldMeshErrors(t *testing.T) {
	for _, test := range []struct {
		name      string
		nVertices int
		faces     [][3]int
	}{
		{"open disk", 3, [][3]int{{0, 1, 2}}},
		{"out of range", 2, [][3]int{{0, 1, 2}}},
		{"repeated vertex", 3, [][3]int{{0, 1, 1}}},
		{"inconsistent orientation", 4, [][3]int{{0, 1, 2}, {0, 1, 3}}},
	} {
		if _, err := NewManifoldMesh(test.nVertices, test.faces); err == nil {
			t.Errorf("%s: expected construction error", test.name)
		}
	}
}

func TestFlipEdge(t *testing.T) {
	m := octahedron(t)
	nV, nE, nF := m.NumVertices(), m.NumEdges(), m.NumFaces()

	// Find the equator edge 1-2; its flip connects the apexes.
	flipped := InvalidEdge
	for e := Edge(0); e < Edge(nE); e++ {
		vs := m.EdgeVertices(e)
		if (vs[0] == 1 && vs[1] == 2) || (vs[0] == 2 && vs[1] == 1) {
			flipped = e
			break
		}
	}
	if flipped == InvalidEdge {
		t.Fatal("octahedron has no edge 1-2")
	}
	he := m.EdgeHalfedge(flipped)
	if !m.FlipEdge(flipped) {
		t.Fatal("flip refused")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("mesh invalid after flip: %v", err)
	}
	if m.NumVertices() != nV || m.NumEdges() != nE || m.NumFaces() != nF {
		t.Error("flip changed element counts")
	}
	// Halfedge identity and edge assignment survive the flip.
	if m.EdgeHalfedge(flipped) != he || m.EdgeOf(he) != flipped {
		t.Error("flip renumbered the edge's halfedge")
	}
	vs := m.EdgeVertices(flipped)
	if !(vs[0] == 0 && vs[1] == 5 || vs[0] == 5 && vs[1] == 0) {
		t.Errorf("flipped edge connects %v, want apexes 0 and 5", vs)
	}
}

func TestFlipEdgeTwiceStaysValid(t *testing.T) {
	m := tetrahedron(t)
	e := Edge(0)
	if !m.FlipEdge(e) {
		t.Fatal("first flip refused")
	}
	if !m.FlipEdge(e) {
		t.Fatal("second flip refused")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("mesh invalid after double flip: %v", err)
	}
}

func TestCopyIsDeep(t *testing.T) {
	m := octahedron(t)
	c := m.Copy()
	if !m.FlipEdge(Edge(0)) {
		t.Fatal("flip refused")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("copy corrupted by flip on original: %v", err)
	}
	if c.EdgeVertices(Edge(0)) == m.EdgeVertices(Edge(0)) {
		t.Error("copy shares connectivity with original")
	}
}
