package render

import (
	"errors"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/tufted/internal/d3"
	"github.com/soypat/tufted/meshio"
)

// ViewConfig is the camera setup for Snapshot.
type ViewConfig struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	EyePos r3.Vec
	Far    float64
	Near   float64
	// output size in pixels
	Width, Height int
}

// DefaultView frames geometry normalized to the bi-unit cube.
func DefaultView() ViewConfig {
	return ViewConfig{
		Up:     r3.Vec{Z: 1},
		EyePos: d3.Elem(3),
		Near:   1,
		Far:    10,
		Width:  1920,
		Height: 1080,
	}
}

// Snapshot rasterizes the bubbled surface and the traced edge
// polylines into a PNG. The scene is normalized to a bi-unit cube
// centered at the origin before the camera is applied; the surface is
// lit with a Phong shader, edges drawn on top in a flat dark color.
func Snapshot(filename string, surface *meshio.PolygonMesh, polylines [][]r3.Vec, view ViewConfig) error {
	if len(surface.Polygons) == 0 {
		return errors.New("render: snapshot of empty surface")
	}
	norm := sceneNormalizer(surface, polylines)

	const (
		scale = 1  // optional supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	var (
		eye    = fauxgl.V(view.EyePos.X, view.EyePos.Y, view.EyePos.Z)
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)

	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)

	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	mesh := fauxgl.NewEmptyMesh()
	for _, poly := range surface.Polygons {
		for k := 1; k+1 < len(poly); k++ {
			mesh.Triangles = append(mesh.Triangles, fauxgl.NewTriangleForPoints(
				fglVec(norm(surface.VertexCoordinates[poly[0]])),
				fglVec(norm(surface.VertexCoordinates[poly[k]])),
				fglVec(norm(surface.VertexCoordinates[poly[k+1]])),
			))
		}
	}
	context.DrawMesh(mesh)

	context.Shader = fauxgl.NewSolidColorShader(matrix, fauxgl.HexColor("#2B2B2B"))
	var lines []*fauxgl.Line
	for _, poly := range polylines {
		for i := 0; i+1 < len(poly); i++ {
			lines = append(lines, fauxgl.NewLineForPoints(
				fglVec(norm(poly[i])), fglVec(norm(poly[i+1]))))
		}
	}
	context.DrawLines(lines)

	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(view.Width), uint(view.Height), image, resize.Bilinear)
	return fauxgl.SavePNG(filename, image)
}

// sceneNormalizer maps scene coordinates into the bi-unit cube
// centered at the origin, uniformly scaled.
func sceneNormalizer(surface *meshio.PolygonMesh, polylines [][]r3.Vec) func(r3.Vec) r3.Vec {
	pts := append([]r3.Vec(nil), surface.VertexCoordinates...)
	for _, poly := range polylines {
		pts = append(pts, poly...)
	}
	box := d3.BoundingBox(pts)
	c := box.Center()
	size := box.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	s := 1.0
	if maxDim > 0 {
		s = 2 / maxDim
	}
	return func(p r3.Vec) r3.Vec {
		return r3.Scale(s, r3.Sub(p, c))
	}
}

func fglVec(p r3.Vec) fauxgl.Vector {
	return fauxgl.V(p.X, p.Y, p.Z)
}
