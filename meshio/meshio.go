// Package meshio loads polygon meshes from common interchange formats
// and prepares them as triangle soup. Loaders make no manifoldness or
// orientation assumptions; the sanitizing helpers remove the defects
// (degenerate faces, unreferenced or duplicated vertices) that the
// cover construction refuses to accept.
package meshio

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// PolygonMesh is an indexed polygon soup as read from disk. Polygons
// may have any number of sides and reference vertices in any order.
type PolygonMesh struct {
	VertexCoordinates []r3.Vec
	Polygons          [][]int
}

// Load reads a mesh file, dispatching on the filename extension.
// Supported: .obj, .off, .stl.
func Load(filename string) (*PolygonMesh, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj":
		return LoadOBJ(filename)
	case ".off":
		return LoadOFF(filename)
	case ".stl":
		return LoadSTL(filename)
	default:
		return nil, fmt.Errorf("meshio: unrecognized mesh extension %q", ext)
	}
}

func vec3(p [3]float64) r3.Vec { return r3.Vec{X: p[0], Y: p[1], Z: p[2]} }

// Validate checks that every polygon index is in range and every
// polygon has at least three sides.
func (pm *PolygonMesh) Validate() error {
	n := len(pm.VertexCoordinates)
	for i, poly := range pm.Polygons {
		if len(poly) < 3 {
			return fmt.Errorf("meshio: polygon %d has %d vertices, want at least 3", i, len(poly))
		}
		for _, v := range poly {
			if v < 0 || v >= n {
				return fmt.Errorf("meshio: polygon %d references vertex %d of %d", i, v, n)
			}
		}
	}
	return nil
}

// Triangulate fans every polygon around its first vertex, in place.
// Triangles pass through untouched.
func (pm *PolygonMesh) Triangulate() {
	tris := make([][]int, 0, len(pm.Polygons))
	for _, poly := range pm.Polygons {
		for k := 1; k+1 < len(poly); k++ {
			tris = append(tris, []int{poly[0], poly[k], poly[k+1]})
		}
	}
	pm.Polygons = tris
}

// TriangleFaces returns the polygons as a fixed-arity triangle list.
// Call Triangulate first if the mesh may contain larger polygons.
func (pm *PolygonMesh) TriangleFaces() ([][3]int, error) {
	tris := make([][3]int, len(pm.Polygons))
	for i, poly := range pm.Polygons {
		if len(poly) != 3 {
			return nil, fmt.Errorf("meshio: polygon %d has %d vertices, want 3", i, len(poly))
		}
		tris[i] = [3]int{poly[0], poly[1], poly[2]}
	}
	return tris, nil
}

// StripFacesWithDuplicateVertices removes polygons that reference any
// vertex more than once and returns how many were removed.
func (pm *PolygonMesh) StripFacesWithDuplicateVertices() int {
	kept := pm.Polygons[:0]
	removed := 0
	for _, poly := range pm.Polygons {
		ok := true
	scan:
		for i := 0; i < len(poly); i++ {
			for j := i + 1; j < len(poly); j++ {
				if poly[i] == poly[j] {
					ok = false
					break scan
				}
			}
		}
		if ok {
			kept = append(kept, poly)
		} else {
			removed++
		}
	}
	pm.Polygons = kept
	return removed
}

// StripUnusedVertices removes vertices referenced by no polygon,
// renumbering the survivors densely, and returns how many were removed.
func (pm *PolygonMesh) StripUnusedVertices() int {
	used := make([]bool, len(pm.VertexCoordinates))
	for _, poly := range pm.Polygons {
		for _, v := range poly {
			used[v] = true
		}
	}
	remap := make([]int, len(pm.VertexCoordinates))
	kept := pm.VertexCoordinates[:0]
	for v, u := range used {
		if !u {
			remap[v] = -1
			continue
		}
		remap[v] = len(kept)
		kept = append(kept, pm.VertexCoordinates[v])
	}
	removed := len(pm.VertexCoordinates) - len(kept)
	pm.VertexCoordinates = kept
	for _, poly := range pm.Polygons {
		for k, v := range poly {
			poly[k] = remap[v]
		}
	}
	return removed
}
