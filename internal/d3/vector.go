package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector/box manipulation routines shared by the mesh and render
// packages.

// Elem returns a vector with all components set to sides.
func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

// MinElem returns a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem returns a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Box is a 3d bounding box.
type Box r3.Box

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of the 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of the 3d box.
func (a Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(a.Min, a.Max))
}

// BoundingBox returns the smallest box containing all points. It
// returns the zero box for an empty slice.
func BoundingBox(points []r3.Vec) Box {
	if len(points) == 0 {
		return Box{}
	}
	bb := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bb = bb.Include(p)
	}
	return bb
}
