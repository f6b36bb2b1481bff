package render

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/tufted"
)

// BubbleOffset inflates surface points away from their face along the
// face normal, with a cubic bump that vanishes on edges and vertices.
// The two mirrored sheets of a tufted cover have opposite normals, so
// the offset pulls them apart into visible pillows while the shared
// edges and vertices stay glued.
type BubbleOffset struct {
	Geometry *tufted.Geometry
	// RelativeScale sizes the bump as a fraction of the local mean
	// edge length. Zero disables the offset entirely.
	RelativeScale float64
}

// NewBubbleOffset returns a bubble offset over g.
func NewBubbleOffset(g *tufted.Geometry, relativeScale float64) *BubbleOffset {
	return &BubbleOffset{Geometry: g, RelativeScale: relativeScale}
}

// QueryPoint returns the offset 3D position of a surface point. The
// bump 27*b0*b1*b2 is zero on the face boundary and one at the
// centroid, so points on edges and vertices map to their exact
// embedded position.
func (bo *BubbleOffset) QueryPoint(p tufted.SurfacePoint) r3.Vec {
	g := bo.Geometry
	q := p.InSomeFace(g.Mesh)
	pos := g.Position(q)
	if bo.RelativeScale == 0 {
		return pos
	}
	bump := 27 * q.Bary[0] * q.Bary[1] * q.Bary[2]
	if bump == 0 {
		return pos
	}
	h := bo.RelativeScale * g.FaceMeanEdgeLength(q.Face) * bump
	return r3.Add(pos, r3.Scale(h, g.FaceNormal(q.Face)))
}
