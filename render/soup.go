package render

import (
	"io"

	"github.com/soypat/tufted"
	"github.com/soypat/tufted/meshio"
)

// SubdivideRounded samples every face of the bubble offset on a
// regular barycentric grid with 2^rounds rows and returns the result
// as an unindexed soup: each face gets its own block of vertices, so
// coincident sheets of a cover stay separate surfaces. With rounds
// zero the output is the input triangles, offset applied (a no-op on
// corner points).
func SubdivideRounded(bo *BubbleOffset, rounds int) *meshio.PolygonMesh {
	n := 1 << uint(rounds)
	m := bo.Geometry.Mesh
	out := &meshio.PolygonMesh{}

	// Lattice point (i,j) of a face has barycentric coordinates
	// ((n-i-j)/n, i/n, j/n); rows are stored j-major per i.
	rowStart := make([]int, n+2)
	for i := 0; i <= n; i++ {
		rowStart[i+1] = rowStart[i] + (n - i + 1)
	}
	idx := func(base, i, j int) int { return base + rowStart[i] + j }

	for f := tufted.Face(0); f < tufted.Face(m.NumFaces()); f++ {
		base := len(out.VertexCoordinates)
		for i := 0; i <= n; i++ {
			for j := 0; j <= n-i; j++ {
				bary := [3]float64{
					float64(n-i-j) / float64(n),
					float64(i) / float64(n),
					float64(j) / float64(n),
				}
				p := tufted.FacePoint(f, bary)
				out.VertexCoordinates = append(out.VertexCoordinates, bo.QueryPoint(p))
			}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n-i; j++ {
				out.Polygons = append(out.Polygons, []int{
					idx(base, i, j), idx(base, i+1, j), idx(base, i, j+1),
				})
				if j < n-i-1 {
					out.Polygons = append(out.Polygons, []int{
						idx(base, i+1, j), idx(base, i+1, j+1), idx(base, i, j+1),
					})
				}
			}
		}
	}
	return out
}

// SoupRenderer streams the triangles of a polygon soup. Non-triangle
// polygons are fanned.
func SoupRenderer(pm *meshio.PolygonMesh) Renderer {
	var buf triangle3Buffer
	tmp := make([]Triangle3, 1)
	for _, poly := range pm.Polygons {
		for k := 1; k+1 < len(poly); k++ {
			tmp[0] = Triangle3{
				pm.VertexCoordinates[poly[0]],
				pm.VertexCoordinates[poly[k]],
				pm.VertexCoordinates[poly[k+1]],
			}
			buf.Write(tmp)
		}
	}
	return &soupRenderer{buf: buf}
}

type soupRenderer struct {
	buf triangle3Buffer
}

func (s *soupRenderer) ReadTriangles(t []Triangle3) (int, error) {
	if s.buf.Len() == 0 {
		return 0, io.EOF
	}
	return s.buf.Read(t), nil
}
