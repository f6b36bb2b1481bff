// Command tufted builds the tufted double cover of a triangle mesh,
// flips its intrinsic triangulation to Delaunay, and optionally writes
// the tufted Laplace and mass matrices and a rendered view of the
// bubbled cover with its traced intrinsic edges.
//
// The input mesh may have boundary, nonmanifold edges, and nonmanifold
// vertices; the cover construction makes it closed and manifold.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/tufted"
	"github.com/soypat/tufted/intrinsic"
	"github.com/soypat/tufted/laplace"
	"github.com/soypat/tufted/meshio"
	"github.com/soypat/tufted/render"
)

type options struct {
	meshFile       string
	mollifyFactor  float64
	gui            bool
	outputPrefix   string
	writeLaplacian bool
	writeMass      bool
	bubbleScale    float64
	subdivRounds   int
	pointsPerEdge  int
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("tufted", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.Float64Var(&opts.mollifyFactor, "mollifyFactor", 1e-6, "intrinsic mollification relative to the mean edge length, zero disables")
	fs.BoolVar(&opts.gui, "gui", false, "write the bubbled cover surface, traced edges, and a rendered view")
	fs.StringVar(&opts.outputPrefix, "outputPrefix", "tufted_", "prefix prepended to all output file paths")
	fs.BoolVar(&opts.writeLaplacian, "writeLaplacian", false, "write the tufted cotan Laplacian to <prefix>laplacian.spmat")
	fs.BoolVar(&opts.writeMass, "writeMass", false, "write the tufted lumped mass matrix to <prefix>lumped_mass.spmat")
	fs.Float64Var(&opts.bubbleScale, "bubbleScale", 0.2, "bubble height relative to the local mean edge length")
	fs.IntVar(&opts.subdivRounds, "subdivRounds", 3, "rounds of per-face subdivision for the bubble surface")
	fs.IntVar(&opts.pointsPerEdge, "pointsPerEdge", 10, "interpolated samples per traced edge segment")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tufted [flags] mesh")
		fmt.Fprintln(stderr, "  mesh: input surface mesh (.obj, .off or .stl)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected one mesh file argument, got %d", fs.NArg())
	}
	opts.meshFile = fs.Arg(0)
	if opts.subdivRounds < 0 || opts.pointsPerEdge < 0 {
		return nil, errors.New("subdivRounds and pointsPerEdge must not be negative")
	}
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "tufted:", err)
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts *options) error {
	pm, err := meshio.Load(opts.meshFile)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: %d vertices, %d polygons", opts.meshFile, len(pm.VertexCoordinates), len(pm.Polygons))
	pm.Triangulate()
	if n := pm.StripFacesWithDuplicateVertices(); n > 0 {
		log.Printf("stripped %d faces with repeated vertices", n)
	}
	if n := pm.StripUnusedVertices(); n > 0 {
		log.Printf("stripped %d unreferenced vertices", n)
	}
	triangles, err := pm.TriangleFaces()
	if err != nil {
		return err
	}

	cover, err := tufted.BuildTuftedCover(triangles, pm.VertexCoordinates)
	if err != nil {
		return err
	}
	cover.SeparateNonmanifoldVertices()
	m, err := cover.ToManifold()
	if err != nil {
		return err
	}
	log.Println("tufted cover:", m.Statistics())

	geom := tufted.NewGeometry(m, cover.SeparatedPositions(pm.VertexCoordinates))
	if delta := tufted.Mollify(m, geom.EdgeLengths, opts.mollifyFactor); delta > 0 {
		log.Printf("mollified edge lengths by %g", delta)
	}
	tri, err := intrinsic.New(geom)
	if err != nil {
		return err
	}
	flips, err := tri.FlipToDelaunay()
	if err != nil {
		return err
	}
	log.Printf("intrinsic triangulation is Delaunay after %d flips", flips)

	if opts.writeLaplacian || opts.writeMass {
		L, M, err := laplace.BuildTufted(triangles, pm.VertexCoordinates, opts.mollifyFactor)
		if err != nil {
			return err
		}
		if opts.writeLaplacian {
			path := opts.outputPrefix + "laplacian.spmat"
			if err := laplace.SaveSpmat(path, L); err != nil {
				return err
			}
			log.Println("wrote", path)
		}
		if opts.writeMass {
			path := opts.outputPrefix + "lumped_mass.spmat"
			if err := laplace.SaveSpmat(path, M); err != nil {
				return err
			}
			log.Println("wrote", path)
		}
	}

	if opts.gui {
		ses := &session{
			geom: geom,
			tri:  tri,
			params: viewParams{
				bubbleScale:   opts.bubbleScale,
				subdivRounds:  opts.subdivRounds,
				pointsPerEdge: opts.pointsPerEdge,
			},
		}
		if err := ses.regenerate(); err != nil {
			return err
		}
		if err := ses.writeView(opts.outputPrefix); err != nil {
			return err
		}
	}
	return nil
}

// viewParams are the visualization knobs. Mutate them and call
// regenerate to rebuild the view from the current triangulation.
type viewParams struct {
	bubbleScale   float64
	subdivRounds  int
	pointsPerEdge int
}

// session owns the refined triangulation and the view geometry derived
// from it.
type session struct {
	geom   *tufted.Geometry
	tri    *intrinsic.SignpostTriangulation
	params viewParams

	surface *meshio.PolygonMesh
	curves  [][]r3.Vec
}

// regenerate rebuilds the bubble surface and traced edge curves from
// scratch. Calling it repeatedly with unchanged parameters yields the
// same geometry; tracing restores every intrinsic length it perturbs.
func (s *session) regenerate() error {
	bo := render.NewBubbleOffset(s.geom, s.params.bubbleScale)
	s.surface = render.SubdivideRounded(bo, s.params.subdivRounds)
	curves, err := render.TraceEdges(s.tri, bo, s.params.pointsPerEdge)
	if err != nil {
		return err
	}
	s.curves = curves
	return nil
}

// writeView saves the regenerated view: the cover inflated into
// bubbles so its coincident sheets separate, the intrinsic edges
// traced over it, and a PNG snapshot of both.
func (s *session) writeView(prefix string) error {
	stlPath := prefix + "bubble.stl"
	if err := render.CreateSTL(stlPath, render.SoupRenderer(s.surface)); err != nil {
		return err
	}
	log.Println("wrote", stlPath)

	objPath := prefix + "edges.obj"
	if err := render.WriteEdgeOBJ(objPath, s.curves); err != nil {
		return err
	}
	log.Println("wrote", objPath)

	pngPath := prefix + "view.png"
	if err := render.Snapshot(pngPath, s.surface, s.curves, render.DefaultView()); err != nil {
		return err
	}
	log.Println("wrote", pngPath)
	return nil
}
