package intrinsic

import (
	"fmt"
	"math"

	"github.com/soypat/tufted"
	"gonum.org/v1/gonum/spatial/r2"
)

// TraceHalfedge walks intrinsic halfedge h across the input mesh and
// returns its path as surface points on the input mesh: the tail
// vertex, one edge point per input edge crossed, and a final face
// point where the intrinsic length runs out. The march unfolds one
// input triangle at a time into the plane, so accuracy does not decay
// with path length the way chained angle arithmetic would.
func (tri *SignpostTriangulation) TraceHalfedge(h tufted.Halfedge) ([]tufted.SurfacePoint, error) {
	im := tri.Input.Mesh
	v := tri.Mesh.Tail(h)
	remaining := tri.length(h)
	if remaining <= 0 {
		return nil, fmt.Errorf("intrinsic: halfedge %d has nonpositive length %g", h, remaining)
	}

	// Locate the input wedge at v containing the signpost direction,
	// then recover the true (unscaled) angle within that wedge.
	wedge, theta := tri.locateWedge(v, tri.directions[h])

	points := []tufted.SurfacePoint{tufted.VertexPoint(v)}

	// Lay out the wedge's face with the wedge halfedge on the +x axis.
	// Faces are placed counterclockwise, matching the orientation the
	// angular coordinates were accumulated in.
	hs, p := tri.layoutFirst(wedge)
	q := p[0]
	dir := r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}

	entrySide := -1
	maxSteps := 10*im.NumFaces() + 100
	for step := 0; ; step++ {
		if step > maxSteps {
			return nil, fmt.Errorf("intrinsic: tracing halfedge %d exceeded %d steps", h, maxSteps)
		}
		side, t, s := exitSide(p, q, dir, entrySide)
		if side < 0 || t >= remaining {
			end := r2.Add(q, r2.Scale(remaining, dir))
			f := im.FaceOf(hs[0])
			points = append(points, tufted.FacePoint(f, canonicalBary(im, f, hs[0], planarBary(p, end))))
			return points, nil
		}

		hCross := hs[side]
		e := im.EdgeOf(hCross)
		tEdge := s
		if im.EdgeHalfedge(e) != hCross {
			tEdge = 1 - s
		}
		points = append(points, tufted.EdgePoint(e, tEdge))

		q = r2.Add(p[side], r2.Scale(s, r2.Sub(p[(side+1)%3], p[side])))
		remaining -= t

		// Unfold the neighboring face across the crossed side. Its
		// first two corners coincide with the crossed side reversed;
		// the third is placed by its two side lengths, on the far
		// side of the crossing.
		hNew := im.Twin(hCross)
		p0 := p[(side+1)%3]
		p1 := p[side]
		third, err := unfoldThird(p0, p1,
			tri.Input.HalfedgeLength(im.Prev(hNew)),
			tri.Input.HalfedgeLength(im.Next(hNew)))
		if err != nil {
			return nil, fmt.Errorf("intrinsic: tracing halfedge %d: %w", h, err)
		}
		hs = [3]tufted.Halfedge{hNew, im.Next(hNew), im.Prev(hNew)}
		p = [3]r2.Vec{p0, p1, third}
		entrySide = 0
	}
}

// locateWedge finds the input halfedge at v whose angular wedge
// contains the rescaled direction phi, and returns the true angle of
// phi within that wedge. Roundoff at the wrap-around is absorbed by
// picking the wedge with the largest coordinate not exceeding phi and
// clamping into it.
func (tri *SignpostTriangulation) locateWedge(v tufted.Vertex, phi float64) (tufted.Halfedge, float64) {
	im := tri.Input.Mesh
	scale := tri.vertexScale(v)
	best := tufted.InvalidHalfedge
	bestA := -1.0
	im.ForEachOutgoing(v, func(h tufted.Halfedge) {
		if a := tri.inputAngles[h]; a <= phi && a > bestA {
			best = h
			bestA = a
		}
	})
	if best == tufted.InvalidHalfedge {
		// phi < 0 cannot happen after normalization; be safe anyway.
		best = im.VertexHalfedge(v)
		bestA = tri.inputAngles[best]
	}
	theta := (phi - bestA) / scale
	if width := tri.Input.CornerAngle(best); theta > width {
		theta = width
	}
	if theta < 0 {
		theta = 0
	}
	return best, theta
}

// layoutFirst places the face of h in the plane with h's tail at the
// origin and h along +x, corners in cycle order starting from h.
func (tri *SignpostTriangulation) layoutFirst(h tufted.Halfedge) ([3]tufted.Halfedge, [3]r2.Vec) {
	im := tri.Input.Mesh
	l := tri.Input.HalfedgeLength(h)
	lp := tri.Input.HalfedgeLength(im.Prev(h))
	gamma := tri.Input.CornerAngle(h)
	hs := [3]tufted.Halfedge{h, im.Next(h), im.Prev(h)}
	p := [3]r2.Vec{
		{},
		{X: l},
		{X: lp * math.Cos(gamma), Y: lp * math.Sin(gamma)},
	}
	return hs, p
}

// exitSide intersects the ray q+t*dir with the triangle's sides,
// skipping the side it entered through, and returns the first side hit
// with its ray parameter t and side parameter s in [0,1]. side is -1
// when no forward crossing exists, which means the ray dies inside the
// triangle.
func exitSide(p [3]r2.Vec, q, dir r2.Vec, entrySide int) (side int, t, s float64) {
	const sTol = 1e-9
	side = -1
	t = math.Inf(1)
	for k := 0; k < 3; k++ {
		if k == entrySide {
			continue
		}
		a := p[k]
		ev := r2.Sub(p[(k+1)%3], a)
		denom := r2.Cross(dir, ev)
		if math.Abs(denom) < 1e-300 {
			continue
		}
		diff := r2.Sub(a, q)
		tk := r2.Cross(diff, ev) / denom
		sk := r2.Cross(diff, dir) / denom
		if tk <= 0 || sk < -sTol || sk > 1+sTol {
			continue
		}
		if tk < t {
			side = k
			t = tk
			s = math.Min(1, math.Max(0, sk))
		}
	}
	return side, t, s
}

// unfoldThird places the apex of the next triangle across a shared
// side from p0 to p1, on the left of the directed side, given its
// distances to p0 and p1.
func unfoldThird(p0, p1 r2.Vec, lb, la float64) (r2.Vec, error) {
	u := r2.Sub(p1, p0)
	lu := r2.Norm(u)
	if lu < 1e-300 {
		return r2.Vec{}, fmt.Errorf("unfolding across zero-length side")
	}
	uh := r2.Scale(1/lu, u)
	nh := r2.Vec{X: -uh.Y, Y: uh.X}
	x := (lu*lu + lb*lb - la*la) / (2 * lu)
	y := math.Sqrt(math.Max(0, lb*lb-x*x))
	return r2.Add(p0, r2.Add(r2.Scale(x, uh), r2.Scale(y, nh))), nil
}

// planarBary returns the barycentric coordinates of q in the planar
// triangle p, clamped to the closed simplex.
func planarBary(p [3]r2.Vec, q r2.Vec) [3]float64 {
	e1 := r2.Sub(p[1], p[0])
	e2 := r2.Sub(p[2], p[0])
	denom := r2.Cross(e1, e2)
	var b [3]float64
	if denom == 0 {
		b[0] = 1
		return b
	}
	d := r2.Sub(q, p[0])
	b[2] = r2.Cross(e1, d) / denom
	b[1] = r2.Cross(d, e2) / denom
	b[0] = 1 - b[1] - b[2]
	sum := 0.0
	for k := 0; k < 3; k++ {
		if b[k] < 0 {
			b[k] = 0
		}
		sum += b[k]
	}
	for k := 0; k < 3; k++ {
		b[k] /= sum
	}
	return b
}

// canonicalBary rotates barycentric coordinates expressed relative to
// reference halfedge ref into the face's canonical corner order.
func canonicalBary(m *tufted.Mesh, f tufted.Face, ref tufted.Halfedge, b [3]float64) [3]float64 {
	hs := m.FaceHalfedges(f)
	for r := 0; r < 3; r++ {
		if hs[r] == ref {
			var out [3]float64
			for k := 0; k < 3; k++ {
				out[(r+k)%3] = b[k]
			}
			return out
		}
	}
	// ref always belongs to f.
	panic("intrinsic: reference halfedge not on face")
}
