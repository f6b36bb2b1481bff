package meshio_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/tufted/meshio"
	"github.com/soypat/tufted/render"
)

func octahedronTriangles() []render.Triangle3 {
	apexT := r3.Vec{Z: 1}
	apexB := r3.Vec{Z: -1}
	eq := []r3.Vec{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}
	var tris []render.Triangle3
	for i := 0; i < 4; i++ {
		a, b := eq[i], eq[(i+1)%4]
		tris = append(tris,
			render.Triangle3{apexT, a, b},
			render.Triangle3{apexB, b, a},
		)
	}
	return tris
}

func TestSTLRoundTrip(t *testing.T) {
	tris := octahedronTriangles()
	var buf bytes.Buffer
	if err := render.WriteSTL(&buf, tris); err != nil {
		t.Fatal(err)
	}
	pm, err := meshio.ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pm.Polygons) != len(tris) {
		t.Fatalf("got %d polygons, want %d", len(pm.Polygons), len(tris))
	}
	for i, poly := range pm.Polygons {
		for k := 0; k < 3; k++ {
			got := pm.VertexCoordinates[poly[k]]
			want := tris[i][k]
			if math.Abs(got.X-want.X) > 1e-6 ||
				math.Abs(got.Y-want.Y) > 1e-6 ||
				math.Abs(got.Z-want.Z) > 1e-6 {
				t.Errorf("triangle %d vertex %d: got %v, want %v", i, k, got, want)
			}
		}
	}
}

func TestLoadSTLRecoversConnectivity(t *testing.T) {
	tris := octahedronTriangles()
	path := filepath.Join(t.TempDir(), "octa.stl")
	f := mustCreate(t, path)
	if err := render.WriteSTL(f, tris); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	pm, err := meshio.LoadSTL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pm.VertexCoordinates) != 6 {
		t.Errorf("got %d vertices after merge, want 6", len(pm.VertexCoordinates))
	}
	if len(pm.Polygons) != 8 {
		t.Errorf("got %d polygons, want 8", len(pm.Polygons))
	}
}

func mustCreate(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestReadSTLRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := render.WriteSTL(&buf, nil); err == nil {
		t.Error("expected write error for empty model")
	}
	if _, err := meshio.ReadSTL(bytes.NewReader(make([]byte, 84))); err == nil {
		t.Error("expected read error for zero-triangle STL")
	}
}
