package meshio

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestReadOBJ(t *testing.T) {
	const src = `# comment
v 0 0 0
v 1.0 0 0
v 0 1 0
v 1 1 0.5
f 1 2 3
f 2/7 4/1/2 3//5
f -3 -2 -1
`
	pm, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(pm.VertexCoordinates) != 4 {
		t.Fatalf("got %d vertices, want 4", len(pm.VertexCoordinates))
	}
	if len(pm.Polygons) != 3 {
		t.Fatalf("got %d polygons, want 3", len(pm.Polygons))
	}
	want := [][]int{{0, 1, 2}, {1, 3, 2}, {1, 2, 3}}
	for i := range want {
		for k := range want[i] {
			if pm.Polygons[i][k] != want[i][k] {
				t.Errorf("polygon %d: got %v, want %v", i, pm.Polygons[i], want[i])
				break
			}
		}
	}
	if got := pm.VertexCoordinates[3]; got != (r3.Vec{X: 1, Y: 1, Z: 0.5}) {
		t.Errorf("vertex 3: got %v", got)
	}
}

func TestReadOBJErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
	}{
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"bad coordinate", "v 0 zero 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	} {
		if _, err := ReadOBJ(strings.NewReader(test.src)); err == nil {
			t.Errorf("%s: expected parse error", test.name)
		}
	}
}

func TestReadOFF(t *testing.T) {
	const src = `OFF
# a quad and a triangle
5 2 7
0 0 0
1 0 0
1 1 0
0 1 0
2 2 1
4 0 1 2 3
3 1 4 2
`
	pm, err := ReadOFF(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(pm.VertexCoordinates) != 5 || len(pm.Polygons) != 2 {
		t.Fatalf("got %d vertices, %d polygons", len(pm.VertexCoordinates), len(pm.Polygons))
	}
	if len(pm.Polygons[0]) != 4 {
		t.Errorf("first polygon has %d sides, want 4", len(pm.Polygons[0]))
	}
	pm.Triangulate()
	if len(pm.Polygons) != 3 {
		t.Errorf("after triangulation: %d polygons, want 3", len(pm.Polygons))
	}
	if _, err := pm.TriangleFaces(); err != nil {
		t.Fatal(err)
	}
}

func TestStripFacesWithDuplicateVertices(t *testing.T) {
	pm := &PolygonMesh{
		VertexCoordinates: []r3.Vec{{}, {X: 1}, {Y: 1}},
		Polygons:          [][]int{{0, 1, 2}, {0, 1, 1}, {2, 2, 2}},
	}
	if n := pm.StripFacesWithDuplicateVertices(); n != 2 {
		t.Errorf("removed %d faces, want 2", n)
	}
	if len(pm.Polygons) != 1 {
		t.Errorf("%d polygons left, want 1", len(pm.Polygons))
	}
}

func TestStripUnusedVertices(t *testing.T) {
	pm := &PolygonMesh{
		VertexCoordinates: []r3.Vec{{}, {X: 9}, {X: 1}, {Y: 1}},
		Polygons:          [][]int{{0, 2, 3}},
	}
	if n := pm.StripUnusedVertices(); n != 1 {
		t.Errorf("removed %d vertices, want 1", n)
	}
	if len(pm.VertexCoordinates) != 3 {
		t.Fatalf("%d vertices left, want 3", len(pm.VertexCoordinates))
	}
	if got := pm.Polygons[0]; got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("polygon remapped to %v, want [0 1 2]", got)
	}
	if pm.VertexCoordinates[1] != (r3.Vec{X: 1}) {
		t.Error("surviving vertex coordinates shifted incorrectly")
	}
}

func TestMergeIdenticalVertices(t *testing.T) {
	// Two triangles written as disconnected soup sharing an edge.
	pm := &PolygonMesh{
		VertexCoordinates: []r3.Vec{
			{}, {X: 1}, {Y: 1},
			{X: 1}, {}, {Z: -1},
		},
		Polygons: [][]int{{0, 1, 2}, {3, 4, 5}},
	}
	if n := pm.MergeIdenticalVertices(0); n != 2 {
		t.Errorf("removed %d vertices, want 2", n)
	}
	if len(pm.VertexCoordinates) != 4 {
		t.Fatalf("%d vertices left, want 4", len(pm.VertexCoordinates))
	}
	if got := pm.Polygons[1]; got[0] != 1 || got[1] != 0 {
		t.Errorf("second polygon %v does not reuse shared vertices", got)
	}
}

func TestMergeIdenticalVerticesTolerance(t *testing.T) {
	const tol = 1e-6
	pm := &PolygonMesh{
		VertexCoordinates: []r3.Vec{
			{}, {X: 1}, {Y: 1},
			{X: 1 + tol/10}, {X: tol / 10}, {Z: -1},
		},
		Polygons: [][]int{{0, 1, 2}, {3, 4, 5}},
	}
	before := len(pm.VertexCoordinates)
	n := pm.MergeIdenticalVertices(tol)
	if n != 2 {
		t.Errorf("removed %d vertices, want 2", n)
	}
	if len(pm.VertexCoordinates) != before-n {
		t.Error("vertex count inconsistent with removal count")
	}
	// Distinct vertices farther than tol stay distinct.
	for i, p := range pm.VertexCoordinates {
		for j := i + 1; j < len(pm.VertexCoordinates); j++ {
			if r3.Norm(r3.Sub(p, pm.VertexCoordinates[j])) <= tol {
				t.Errorf("vertices %d and %d within tolerance after merge", i, j)
			}
		}
	}
	if math.IsNaN(pm.VertexCoordinates[0].X) {
		t.Fatal("corrupted coordinates")
	}
}
