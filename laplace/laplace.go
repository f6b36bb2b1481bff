// Package laplace assembles the tufted cotangent Laplacian and lumped
// mass matrix of a triangle mesh. The operators come from the mesh's
// tufted double cover, so they are well defined and symmetric
// positive semidefinite even when the input has boundary, nonmanifold
// edges, or nonmanifold vertices.
package laplace

import (
	"errors"
	"math"

	"github.com/soypat/tufted"
	"gonum.org/v1/gonum/spatial/r3"
)

// BuildTufted assembles the cotangent Laplacian L and the lumped mass
// matrix M of the triangle mesh, both n x n over the input vertices.
// Every cover face contributes with weight one half, so on an already
// closed manifold mesh the operators agree with the ordinary cotan
// assembly. Edge lengths are mollified by mollifyFactor before the
// cotangents are evaluated; pass zero or less to use raw lengths.
//
// L follows the positive semidefinite sign convention: positive
// diagonal, nonpositive off-diagonal entries.
func BuildTufted(triangles [][3]int, positions []r3.Vec, mollifyFactor float64) (L, M *Coo, err error) {
	cover, err := tufted.BuildTuftedCover(triangles, positions)
	if err != nil {
		return nil, nil, err
	}
	cover.SeparateNonmanifoldVertices()
	m, err := cover.ToManifold()
	if err != nil {
		return nil, nil, err
	}
	geom := tufted.NewGeometry(m, cover.SeparatedPositions(positions))
	tufted.Mollify(m, geom.EdgeLengths, mollifyFactor)

	n := len(positions)
	parent := cover.Parent()
	L = NewCoo(n, n)
	M = NewCoo(n, n)
	for f := tufted.Face(0); f < tufted.Face(m.NumFaces()); f++ {
		area := geom.FaceArea(f)
		if area <= 0 {
			continue
		}
		hs := m.FaceHalfedges(f)
		var l [3]float64
		for k := 0; k < 3; k++ {
			l[k] = geom.HalfedgeLength(hs[k])
		}
		for k := 0; k < 3; k++ {
			// Halfedge hs[k] is opposed by the corner between the
			// other two sides; cot from lengths and Heron area.
			a, b, c := l[(k+1)%3], l[(k+2)%3], l[k]
			cot := (a*a + b*b - c*c) / (4 * area)
			// Half weight per halfedge, halved again for the cover.
			w := cot / 4
			i := parent[int(m.Tail(hs[k]))]
			j := parent[int(m.Tip(hs[k]))]
			L.Add(i, i, w)
			L.Add(j, j, w)
			L.Add(i, j, -w)
			L.Add(j, i, -w)

			M.Add(i, i, area/6)
		}
	}
	if !checkFinite(L) || !checkFinite(M) {
		return nil, nil, errors.New("laplace: assembled operator has nonfinite entries")
	}
	return L, M, nil
}

// VertexAreas returns the lumped vertex areas of the tufted cover,
// the diagonal of the mass matrix from BuildTufted.
func VertexAreas(M *Coo) []float64 {
	n, _ := M.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = M.At(i, i)
	}
	return out
}

// checkFinite reports whether every stored entry is finite.
func checkFinite(m *Coo) bool {
	for _, t := range m.Triplets() {
		if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
			return false
		}
	}
	return true
}
