// Package render turns a tufted cover and its intrinsic triangulation
// into inspectable artifacts: a bubbled offset surface that pulls the
// cover's coincident sheets apart, the traced intrinsic edges as 3D
// polylines, STL and OBJ files, and a rasterized PNG snapshot.
package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a triangle in 3D space.
type Triangle3 = r3.Triangle

// Renderer is a streaming source of triangles.
type Renderer interface {
	// ReadTriangles fills t with triangles and returns the number
	// read. io.EOF signals the source is exhausted.
	ReadTriangles(t []Triangle3) (int, error)
}
