package meshio

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// MergeIdenticalVertices collapses vertices closer than tol onto the
// lowest-indexed member of their cluster and drops the now unused
// copies. A tol of zero merges only exactly coincident vertices, which
// is what unindexed formats like STL need to recover connectivity.
// Returns the number of vertices removed.
//
// Neighbor lookup goes through a k-d tree over the vertices, so the
// pass stays near-linear on large soups.
func (pm *PolygonMesh) MergeIdenticalVertices(tol float64) int {
	if len(pm.VertexCoordinates) == 0 {
		return 0
	}
	pts := make(mergePoints, len(pm.VertexCoordinates))
	for i, p := range pm.VertexCoordinates {
		pts[i] = mergePoint{Vec: p, index: i}
	}
	tree := kdtree.New(append(mergePoints(nil), pts...), true)

	// canon[i] points to a lower-indexed vertex within tol, or i.
	canon := make([]int, len(pts))
	for i := range canon {
		canon[i] = i
	}
	for i := range pts {
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, pts[i])
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			if j := c.Comparable.(mergePoint).index; j < canon[i] {
				canon[i] = j
			}
		}
	}
	// Chains of nearby clusters resolve to their lowest member.
	for i := range canon {
		for canon[canon[i]] != canon[i] {
			canon[i] = canon[canon[i]]
		}
	}
	for _, poly := range pm.Polygons {
		for k, v := range poly {
			poly[k] = canon[v]
		}
	}
	return pm.StripUnusedVertices()
}

// mergePoint is one vertex in the k-d tree.
type mergePoint struct {
	r3.Vec
	index int
}

func (p mergePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(mergePoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (p mergePoint) Dims() int { return 3 }

func (p mergePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(mergePoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

// mergePoints implements kdtree.Interface.
type mergePoints []mergePoint

func (pts mergePoints) Index(i int) kdtree.Comparable { return pts[i] }
func (pts mergePoints) Len() int                      { return len(pts) }
func (pts mergePoints) Pivot(d kdtree.Dim) int {
	p := mergePlane{dim: d, points: pts}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (pts mergePoints) Slice(start, end int) kdtree.Interface { return pts[start:end] }

type mergePlane struct {
	dim    kdtree.Dim
	points mergePoints
}

func (p mergePlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p mergePlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p mergePlane) Len() int {
	return len(p.points)
}
func (p mergePlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
