package render_test

import (
	"testing"

	"github.com/soypat/tufted/render"
)

func TestSubdivideRoundedCounts(t *testing.T) {
	g := rightTrianglePillow(t)
	bo := render.NewBubbleOffset(g, 0.2)
	for _, test := range []struct {
		rounds            int
		vertsPer, trisPer int
	}{
		{0, 3, 1},
		{1, 6, 4},
		{2, 15, 16},
		{3, 45, 64},
	} {
		pm := render.SubdivideRounded(bo, test.rounds)
		nF := g.Mesh.NumFaces()
		if got := len(pm.VertexCoordinates); got != nF*test.vertsPer {
			t.Errorf("rounds %d: %d vertices, want %d", test.rounds, got, nF*test.vertsPer)
		}
		if got := len(pm.Polygons); got != nF*test.trisPer {
			t.Errorf("rounds %d: %d triangles, want %d", test.rounds, got, nF*test.trisPer)
		}
		if err := pm.Validate(); err != nil {
			t.Errorf("rounds %d: %v", test.rounds, err)
		}
	}
}

func TestSubdivideRoundedZeroScaleStaysFlat(t *testing.T) {
	g := rightTrianglePillow(t)
	bo := render.NewBubbleOffset(g, 0)
	pm := render.SubdivideRounded(bo, 3)
	for i, p := range pm.VertexCoordinates {
		if p.Z != 0 {
			t.Fatalf("vertex %d at z=%g on a flat pillow with zero offset", i, p.Z)
		}
	}
}

func TestSoupRenderer(t *testing.T) {
	g := rightTrianglePillow(t)
	bo := render.NewBubbleOffset(g, 0.2)
	pm := render.SubdivideRounded(bo, 2)
	tris, err := render.RenderAll(render.SoupRenderer(pm))
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != len(pm.Polygons) {
		t.Errorf("renderer produced %d triangles, want %d", len(tris), len(pm.Polygons))
	}
}
