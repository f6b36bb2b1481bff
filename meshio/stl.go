package meshio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadSTL reads a binary STL file. STL stores an unindexed triangle
// soup, so vertices at exactly coincident coordinates are merged to
// recover connectivity; without the merge every triangle would be its
// own component.
func LoadSTL(filename string) (*PolygonMesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pm, err := ReadSTL(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: reading %s: %w", filename, err)
	}
	pm.MergeIdenticalVertices(0)
	return pm, nil
}

// stlHeader defines the binary STL file header.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// stlTriangle is the 50-byte on-disk triangle record.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // attribute byte count
}

// ReadSTL parses binary STL from r into an unmerged triangle soup.
func ReadSTL(r io.Reader) (*PolygonMesh, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	out := &PolygonMesh{}
	var (
		buf [50]byte
		d   stlTriangle
	)
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, err)
		}
		d.get(buf[:])
		if bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, fmt.Errorf("STL triangle %d has an inf/NaN vertex", i)
		}
		base := len(out.VertexCoordinates)
		out.VertexCoordinates = append(out.VertexCoordinates,
			vec3From3F32(d.Vertex1), vec3From3F32(d.Vertex2), vec3From3F32(d.Vertex3))
		out.Polygons = append(out.Polygons, []int{base, base + 1, base + 2})
	}
	return out, nil
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func vec3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
