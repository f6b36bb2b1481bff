package tufted

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cover is a tufted double cover under construction: every input
// triangle doubled with a mirrored copy, and the copies glued around
// each input edge so that every cover edge is shared by exactly two
// triangle sheets. The glued structure is closed and edge-manifold,
// but vertices where several sheets meet stay nonmanifold until
// SeparateNonmanifoldVertices splits them.
type Cover struct {
	nVertices int
	faces     [][3]int   // 2F triangles; face F+f is face f reversed
	twins     []Halfedge // per side 3f+k, the glued opposite side
	parent    []int      // cover vertex -> input vertex
	separated bool
}

// BuildTuftedCover doubles the triangle soup across boundary and
// nonmanifold edges. Around every input edge the incident triangle
// sheets are ordered by dihedral angle about the edge axis and glued
// to their angular neighbors, the standard tufting construction;
// with degenerate geometry the input order is kept, which still
// yields a valid (if arbitrary) gluing.
func BuildTuftedCover(triangles [][3]int, positions []r3.Vec) (*Cover, error) {
	if len(triangles) == 0 {
		return nil, errors.New("tufted: cannot build cover of empty triangle list")
	}
	nInput := len(positions)
	nF := len(triangles)
	faces := make([][3]int, 2*nF)
	for f, t := range triangles {
		for k := 0; k < 3; k++ {
			if t[k] < 0 || t[k] >= nInput {
				return nil, fmt.Errorf("tufted: face %d references vertex out of range", f)
			}
		}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			return nil, fmt.Errorf("tufted: face %d has a repeated vertex; sanitize the input first", f)
		}
		faces[f] = t
		faces[nF+f] = [3]int{t[0], t[2], t[1]}
	}

	groups := make(map[[2]int][]sheet)
	for f, t := range triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			key := [2]int{a, b}
			fwd := true
			if a > b {
				key = [2]int{b, a}
				fwd = false
			}
			groups[key] = append(groups[key], sheet{f: f, k: k, forward: fwd})
		}
	}

	// Front copy of side (f,k) is halfedge 3f+k; the mirrored face
	// nF+f lists the vertices reversed, so the mirror of side k is
	// side 2-k of face nF+f and traverses the opposite direction.
	copyTraversing := func(s sheet, wantForward bool) Halfedge {
		if s.forward == wantForward {
			return Halfedge(3*s.f + s.k)
		}
		return Halfedge(3*(nF+s.f) + (2 - s.k))
	}

	twins := make([]Halfedge, 6*nF)
	for i := range twins {
		twins[i] = InvalidHalfedge
	}
	for key, sheets := range groups {
		if len(sheets) > 1 {
			sortSheetsByDihedral(sheets, key, triangles, positions)
		}
		d := len(sheets)
		for i := 0; i < d; i++ {
			// A triangle traversing a->b has its oriented normal on
			// the counterclockwise side of the edge axis, so gluing
			// the a->b copy of each sheet to the b->a copy of its
			// angular successor pairs geometrically adjacent sheets
			// with opposite traversal directions.
			hab := copyTraversing(sheets[i], true)
			hba := copyTraversing(sheets[(i+1)%d], false)
			twins[hab] = hba
			twins[hba] = hab
		}
	}
	for h, t := range twins {
		if t == InvalidHalfedge {
			return nil, fmt.Errorf("tufted: cover gluing left side %d unmatched", h)
		}
	}

	parent := make([]int, nInput)
	for i := range parent {
		parent[i] = i
	}
	return &Cover{
		nVertices: nInput,
		faces:     faces,
		twins:     twins,
		parent:    parent,
	}, nil
}

// sheet is one original triangle side incident to an input edge.
type sheet struct {
	f, k    int  // original face side: faces[f][k] -> faces[f][k+1]
	forward bool // side traverses a->b in canonical (a<b) order
	theta   float64
}

// sortSheetsByDihedral orders the incident sheets of edge key by the
// dihedral angle of each triangle's apex around the edge axis. Ties
// and degenerate configurations (zero-length edge, apex on the axis)
// fall back to input order, kept stable by the sort.
func sortSheetsByDihedral(sheets []sheet, key [2]int, triangles [][3]int, positions []r3.Vec) {
	pa := positions[key[0]]
	pb := positions[key[1]]
	axis := r3.Sub(pb, pa)
	n := r3.Norm(axis)
	if n < 1e-300 {
		return
	}
	u := r3.Scale(1/n, axis)
	var xref r3.Vec
	ok := true
	for i := range sheets {
		w := triangles[sheets[i].f][(sheets[i].k+2)%3]
		dw := r3.Sub(positions[w], pa)
		perp := r3.Sub(dw, r3.Scale(r3.Dot(dw, u), u))
		np := r3.Norm(perp)
		if np < 1e-300 {
			ok = false
			break
		}
		perp = r3.Scale(1/np, perp)
		if i == 0 {
			xref = perp
			sheets[i].theta = 0
			continue
		}
		yref := r3.Cross(u, xref)
		sheets[i].theta = math.Atan2(r3.Dot(perp, yref), r3.Dot(perp, xref))
		if sheets[i].theta < 0 {
			sheets[i].theta += 2 * math.Pi
		}
	}
	if !ok {
		return
	}
	sort.SliceStable(sheets, func(i, j int) bool { return sheets[i].theta < sheets[j].theta })
}

// SeparateNonmanifoldVertices splits every vertex into one copy per
// incident fan of glued faces. Walking twin-of-incoming-side around a
// vertex visits exactly one fan; each orbit gets a fresh vertex whose
// parent records the input vertex it was split from. Purely
// combinatorial: positions are the caller's to copy (see
// SeparatedPositions).
func (c *Cover) SeparateNonmanifoldVertices() {
	if c.separated {
		return
	}
	nHE := 3 * len(c.faces)
	newID := make([]int, nHE)
	for i := range newID {
		newID[i] = -1
	}
	var parent []int
	for h0 := 0; h0 < nHE; h0++ {
		if newID[h0] != -1 {
			continue
		}
		id := len(parent)
		parent = append(parent, c.parent[c.faces[h0/3][h0%3]])
		for h := h0; newID[h] == -1; {
			newID[h] = id
			prev := h - h%3 + (h+2)%3 // incoming side at the same corner
			h = int(c.twins[prev])
		}
	}
	for f := range c.faces {
		for k := 0; k < 3; k++ {
			c.faces[f][k] = newID[3*f+k]
		}
	}
	c.parent = parent
	c.nVertices = len(parent)
	c.separated = true
}

// SeparatedPositions copies each cover vertex's position from the
// input vertex it descends from.
func (c *Cover) SeparatedPositions(inputPositions []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, c.nVertices)
	for i, p := range c.parent {
		out[i] = inputPositions[p]
	}
	return out
}

// ToManifold converts the cover into the canonical halfedge
// representation, validating all structural invariants. Without prior
// vertex separation a nonmanifold vertex makes this fail; that is a
// fatal condition for the caller.
func (c *Cover) ToManifold() (*Mesh, error) {
	m, err := newMeshFromTables(c.nVertices, c.faces, append([]Halfedge(nil), c.twins...))
	if err != nil {
		return nil, fmt.Errorf("tufted: cover is not manifold: %w", err)
	}
	return m, nil
}

// NumVertices returns the current cover vertex count.
func (c *Cover) NumVertices() int { return c.nVertices }

// NumFaces returns the doubled face count.
func (c *Cover) NumFaces() int { return len(c.faces) }

// Faces exposes the doubled triangle list. The slice is owned by the
// cover; callers must not mutate it.
func (c *Cover) Faces() [][3]int { return c.faces }

// Parent maps each cover vertex to the input vertex it descends from.
func (c *Cover) Parent() []int { return c.parent }
