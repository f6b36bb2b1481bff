package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOBJ reads a Wavefront OBJ file. Only geometry is kept: v and f
// records. Texture/normal slots in face corners (v/vt/vn forms) are
// ignored, negative indices count back from the vertices read so far.
func LoadOBJ(filename string) (*PolygonMesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pm, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: reading %s: %w", filename, err)
	}
	return pm, nil
}

// ReadOBJ parses OBJ records from r.
func ReadOBJ(r io.Reader) (*PolygonMesh, error) {
	pm := &PolygonMesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex record with %d coordinates", lineno, len(fields)-1)
			}
			var p [3]float64
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseFloat(fields[1+k], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad coordinate %q", lineno, fields[1+k])
				}
				p[k] = v
			}
			pm.VertexCoordinates = append(pm.VertexCoordinates, vec3(p))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face record with %d corners", lineno, len(fields)-1)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				idx, err := parseOBJIndex(corner, len(pm.VertexCoordinates))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineno, err)
				}
				poly = append(poly, idx)
			}
			pm.Polygons = append(pm.Polygons, poly)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := pm.Validate(); err != nil {
		return nil, err
	}
	return pm, nil
}

// parseOBJIndex resolves one face corner ("7", "7/1", "7//3", "-2") to
// a zero-based vertex index.
func parseOBJIndex(corner string, nVertices int) (int, error) {
	if i := strings.IndexByte(corner, '/'); i >= 0 {
		corner = corner[:i]
	}
	idx, err := strconv.Atoi(corner)
	if err != nil || idx == 0 {
		return 0, fmt.Errorf("bad face index %q", corner)
	}
	if idx < 0 {
		idx += nVertices
	} else {
		idx--
	}
	if idx < 0 || idx >= nVertices {
		return 0, fmt.Errorf("face index %q out of range of %d vertices", corner, nVertices)
	}
	return idx, nil
}
