package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOFF reads an Object File Format mesh.
func LoadOFF(filename string) (*PolygonMesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pm, err := ReadOFF(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: reading %s: %w", filename, err)
	}
	return pm, nil
}

// ReadOFF parses an OFF mesh from r: an optional "OFF" header line,
// counts, vertex coordinates, then polygons each prefixed by their
// side count. Comment lines start with '#'.
func ReadOFF(r io.Reader) (*PolygonMesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	next := func() ([]string, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = strings.TrimSpace(line[:i])
			}
			if line == "" {
				continue
			}
			return strings.Fields(line), nil
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	fields, err := next()
	if err != nil {
		return nil, err
	}
	if len(fields) == 1 && strings.EqualFold(fields[0], "OFF") {
		fields, err = next()
		if err != nil {
			return nil, err
		}
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("bad OFF count line %v", fields)
	}
	nV, err1 := strconv.Atoi(fields[0])
	nF, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || nV < 0 || nF < 0 {
		return nil, fmt.Errorf("bad OFF count line %v", fields)
	}

	out := &PolygonMesh{}
	for i := 0; i < nV; i++ {
		fields, err = next()
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("vertex %d has %d coordinates", i, len(fields))
		}
		var p [3]float64
		for k := 0; k < 3; k++ {
			p[k], err = strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: bad coordinate %q", i, fields[k])
			}
		}
		out.VertexCoordinates = append(out.VertexCoordinates, vec3(p))
	}
	for i := 0; i < nF; i++ {
		fields, err = next()
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 || len(fields) < 1+n {
			return nil, fmt.Errorf("polygon %d has a bad side count %q", i, fields[0])
		}
		poly := make([]int, n)
		for k := 0; k < n; k++ {
			poly[k], err = strconv.Atoi(fields[1+k])
			if err != nil {
				return nil, fmt.Errorf("polygon %d: bad index %q", i, fields[1+k])
			}
		}
		out.Polygons = append(out.Polygons, poly)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
