package tufted

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// equilateralPillow builds the double cover of a single unit
// equilateral triangle.
func equilateralPillow(t *testing.T) *Geometry {
	t.Helper()
	positions := []r3.Vec{{}, {X: 1}, {X: 0.5, Y: math.Sqrt(3) / 2}}
	cover, err := BuildTuftedCover([][3]int{{0, 1, 2}}, positions)
	if err != nil {
		t.Fatal(err)
	}
	cover.SeparateNonmanifoldVertices()
	m, err := cover.ToManifold()
	if err != nil {
		t.Fatal(err)
	}
	return NewGeometry(m, cover.SeparatedPositions(positions))
}

func TestGeometryEquilateral(t *testing.T) {
	g := equilateralPillow(t)
	for e, l := range g.EdgeLengths {
		if math.Abs(l-1) > 1e-12 {
			t.Errorf("edge %d length: got %g, want 1", e, l)
		}
	}
	for h := Halfedge(0); h < Halfedge(g.Mesh.NumHalfedges()); h++ {
		if a := g.CornerAngle(h); math.Abs(a-math.Pi/3) > 1e-12 {
			t.Errorf("halfedge %d corner angle: got %g, want pi/3", h, a)
		}
	}
	// Both sheets contribute at every pillow vertex.
	for v := Vertex(0); v < Vertex(g.Mesh.NumVertices()); v++ {
		if s := g.VertexAngleSum(v); math.Abs(s-2*math.Pi/3) > 1e-12 {
			t.Errorf("vertex %d angle sum: got %g, want 2pi/3", v, s)
		}
	}
	want := math.Sqrt(3) / 4
	for f := Face(0); f < Face(g.Mesh.NumFaces()); f++ {
		if a := g.FaceArea(f); math.Abs(a-want) > 1e-12 {
			t.Errorf("face %d area: got %g, want %g", f, a, want)
		}
	}
	if m := g.MeanEdgeLength(); math.Abs(m-1) > 1e-12 {
		t.Errorf("mean edge length: got %g, want 1", m)
	}
}

func TestGeometryFaceNormalsOppose(t *testing.T) {
	g := equilateralPillow(t)
	n0 := g.FaceNormal(0)
	n1 := g.FaceNormal(1)
	if d := r3.Dot(n0, n1); math.Abs(d+1) > 1e-12 {
		t.Errorf("mirrored faces should have opposite normals, dot = %g", d)
	}
}

func TestGeometryPosition(t *testing.T) {
	g := equilateralPillow(t)
	m := g.Mesh
	for v := Vertex(0); v < Vertex(m.NumVertices()); v++ {
		got := g.Position(VertexPoint(v))
		if r3.Norm(r3.Sub(got, g.VertexPositions[v])) > 1e-15 {
			t.Errorf("vertex %d position mismatch", v)
		}
	}
	e := Edge(0)
	vs := m.EdgeVertices(e)
	mid := r3.Scale(0.5, r3.Add(g.VertexPositions[vs[0]], g.VertexPositions[vs[1]]))
	if got := g.Position(EdgePoint(e, 0.5)); r3.Norm(r3.Sub(got, mid)) > 1e-12 {
		t.Errorf("edge midpoint: got %v, want %v", got, mid)
	}
	f := Face(0)
	fvs := m.FaceVertices(f)
	centroid := r3.Scale(1.0/3, r3.Add(g.VertexPositions[fvs[0]],
		r3.Add(g.VertexPositions[fvs[1]], g.VertexPositions[fvs[2]])))
	got := g.Position(FacePoint(f, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}))
	if r3.Norm(r3.Sub(got, centroid)) > 1e-12 {
		t.Errorf("centroid: got %v, want %v", got, centroid)
	}
}
