package tufted

// Mollify adds a uniform constant to every edge length so that each
// face satisfies the triangle inequality with margin at least
// factor times the mean edge length. The smallest sufficient constant
// is used, so healthy meshes far from degeneracy may be left
// unchanged. A factor of zero or less leaves every length bit
// identical to its input. Returns the constant that was added.
//
// This is a one-time, irreversible transformation: positions are not
// touched, so mollified lengths no longer agree with the embedding.
func Mollify(m *Mesh, edgeLengths []float64, factor float64) float64 {
	if factor <= 0 {
		return 0
	}
	mean := 0.0
	for _, l := range edgeLengths {
		mean += l
	}
	mean /= float64(len(edgeLengths))
	eps := factor * mean

	delta := 0.0
	for h := Halfedge(0); h < Halfedge(m.NumHalfedges()); h++ {
		c := edgeLengths[m.EdgeOf(h)]
		a := edgeLengths[m.EdgeOf(m.Next(h))]
		b := edgeLengths[m.EdgeOf(m.Prev(h))]
		if need := eps - (a + b - c); need > delta {
			delta = need
		}
	}
	if delta > 0 {
		for e := range edgeLengths {
			edgeLengths[e] += delta
		}
	}
	return delta
}
