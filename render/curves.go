package render

import (
	"bufio"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/tufted"
	"github.com/soypat/tufted/intrinsic"
)

// edgeNudge shortens an intrinsic edge before tracing so the march
// terminates strictly inside a face instead of landing exactly on the
// far vertex, where the exit test is ill conditioned. The exact length
// is restored afterwards.
const edgeNudge = 0.999

// TraceEdges traces every intrinsic edge across the input mesh and
// returns one polyline per edge, sampled through the bubble offset.
// Each traced segment between consecutive surface points (endpoint
// vertices and edge crossings) is refined with pointsPerEdge
// interpolated samples so the curve follows the bubbled surface.
func TraceEdges(tri *intrinsic.SignpostTriangulation, bo *BubbleOffset, pointsPerEdge int) ([][]r3.Vec, error) {
	m := tri.Mesh
	out := make([][]r3.Vec, 0, m.NumEdges())
	for e := tufted.Edge(0); e < tufted.Edge(m.NumEdges()); e++ {
		he := m.EdgeHalfedge(e)
		exact := tri.EdgeLengths[e]
		tri.EdgeLengths[e] = edgeNudge * exact
		raw, err := tri.TraceHalfedge(he)
		tri.EdgeLengths[e] = exact
		if err != nil {
			return nil, fmt.Errorf("render: tracing edge %d: %w", e, err)
		}
		poly, err := sampleTrace(tri.Input, bo, raw, m.Tip(he), pointsPerEdge)
		if err != nil {
			return nil, fmt.Errorf("render: sampling edge %d: %w", e, err)
		}
		out = append(out, poly)
	}
	return out, nil
}

// sampleTrace converts a raw trace (tail vertex, crossings, trailing
// face point) into 3D samples. The trailing face point is an artifact
// of the shortened trace; it is replaced by the true tip vertex and
// only consulted to pick the face the final span runs through.
func sampleTrace(g *tufted.Geometry, bo *BubbleOffset, raw []tufted.SurfacePoint, tip tufted.Vertex, pointsPerEdge int) ([]r3.Vec, error) {
	im := g.Mesh
	if len(raw) < 2 {
		return nil, fmt.Errorf("trace has %d points", len(raw))
	}
	last := raw[len(raw)-1]
	points := append(raw[:len(raw)-1:len(raw)-1], tufted.VertexPoint(tip))

	poly := make([]r3.Vec, 0, (len(points)-1)*(pointsPerEdge+1)+1)
	poly = append(poly, bo.QueryPoint(points[0]))
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		f, ok := spanFace(im, a, b, last)
		if !ok {
			return nil, fmt.Errorf("consecutive trace points %v and %v share no face", a, b)
		}
		fa, err := a.InFace(im, f)
		if err != nil {
			return nil, err
		}
		fb, err := b.InFace(im, f)
		if err != nil {
			return nil, err
		}
		for k := 0; k < pointsPerEdge; k++ {
			t := float64(k+1) / float64(pointsPerEdge+1)
			var bary [3]float64
			for c := 0; c < 3; c++ {
				bary[c] = (1-t)*fa.Bary[c] + t*fb.Bary[c]
			}
			poly = append(poly, bo.QueryPoint(tufted.FacePoint(f, bary)))
		}
		poly = append(poly, bo.QueryPoint(b))
	}
	return poly, nil
}

// spanFace picks the face a trace span runs through. For the final
// span the raw trailing face point disambiguates between the faces the
// tip vertex touches; earlier spans have a unique shared face.
func spanFace(m *tufted.Mesh, a, b, last tufted.SurfacePoint) (tufted.Face, bool) {
	if b.Type == tufted.VertexPointType && last.Type == tufted.FacePointType &&
		a.IncidentToFace(m, last.Face) && b.IncidentToFace(m, last.Face) {
		return last.Face, true
	}
	return tufted.SharedFace(m, a, b)
}

// WriteEdgeOBJ saves polylines as a Wavefront OBJ line set: v records
// for every sample and one l record per polyline.
func WriteEdgeOBJ(filename string, polylines [][]r3.Vec) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	base := 1
	for _, poly := range polylines {
		for _, p := range poly {
			fmt.Fprintf(w, "v %.17g %.17g %.17g\n", p.X, p.Y, p.Z)
		}
	}
	for _, poly := range polylines {
		fmt.Fprint(w, "l")
		for i := range poly {
			fmt.Fprintf(w, " %d", base+i)
		}
		fmt.Fprintln(w)
		base += len(poly)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
