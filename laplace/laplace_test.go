package laplace

import (
	"bytes"
	"math"
	"regexp"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// unitQuad is two right triangles tiling the unit square.
func unitQuad() ([][3]int, []r3.Vec) {
	return [][3]int{{0, 1, 2}, {0, 2, 3}},
		[]r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
}

// bowtie is two triangles meeting only at vertex 0.
func bowtie() ([][3]int, []r3.Vec) {
	return [][3]int{{0, 1, 2}, {0, 3, 4}},
		[]r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: -1}, {X: -1, Y: -1}}
}

func TestBuildTuftedQuad(t *testing.T) {
	faces, positions := unitQuad()
	L, M, err := BuildTufted(faces, positions, 0)
	if err != nil {
		t.Fatal(err)
	}
	n := len(positions)
	if r, c := L.Dims(); r != n || c != n {
		t.Fatalf("L dims %dx%d, want %dx%d", r, c, n, n)
	}

	// Row sums of a Laplacian vanish; symmetry holds entrywise.
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += L.At(i, j)
			if d := L.At(i, j) - L.At(j, i); math.Abs(d) > 1e-12 {
				t.Errorf("L[%d][%d] asymmetric by %g", i, j, d)
			}
		}
		if math.Abs(sum) > 1e-12 {
			t.Errorf("row %d sums to %g, want 0", i, sum)
		}
		if L.At(i, i) <= 0 {
			t.Errorf("diagonal L[%d][%d] = %g, want positive", i, i, L.At(i, i))
		}
	}

	// The cover doubles the surface and every face counts half, so
	// total mass equals the input area.
	total := 0.0
	for i := 0; i < n; i++ {
		if M.At(i, i) <= 0 {
			t.Errorf("vertex %d has nonpositive mass %g", i, M.At(i, i))
		}
		total += M.At(i, i)
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("total mass %g, want 1", total)
	}

	// On this flat quad the operator matches the ordinary cotan
	// Laplacian: the diagonal is opposed by two right angles (weight
	// 0), boundary edges by 45 degree angles on both cover sheets
	// (weight 1/2).
	if w := -L.At(0, 2); math.Abs(w) > 1e-12 {
		t.Errorf("diagonal edge weight %g, want 0", w)
	}
	if w := -L.At(0, 1); math.Abs(w-0.5) > 1e-12 {
		t.Errorf("boundary edge weight %g, want 0.5", w)
	}
	// Opposite corners of the square share no face.
	if w := L.At(1, 3); w != 0 {
		t.Errorf("non-adjacent entry %g, want 0", w)
	}
}

func TestBuildTuftedBowtie(t *testing.T) {
	faces, positions := bowtie()
	L, M, err := BuildTufted(faces, positions, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	n := len(positions)
	if r, _ := L.Dims(); r != n {
		t.Fatalf("L has %d rows, want %d", r, n)
	}
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += L.At(i, j)
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("row %d sums to %g", i, sum)
		}
	}
	// The shared vertex accumulates mass from both wings.
	areas := VertexAreas(M)
	if areas[0] <= areas[1] {
		t.Errorf("shared vertex mass %g not larger than wing vertex mass %g", areas[0], areas[1])
	}
}

func TestCooAssembly(t *testing.T) {
	m := NewCoo(3, 3)
	m.Add(0, 0, 1.5)
	m.Add(0, 0, 0.5)
	m.Add(2, 1, -1)
	if got := m.At(0, 0); got != 2 {
		t.Errorf("accumulated entry: got %g, want 2", got)
	}
	if got := m.At(1, 1); got != 0 {
		t.Errorf("unset entry: got %g, want 0", got)
	}
	ts := m.Triplets()
	if len(ts) != 2 {
		t.Fatalf("got %d triplets, want 2", len(ts))
	}
	if ts[0].Row != 0 || ts[1].Row != 2 {
		t.Error("triplets not sorted row-major")
	}
}

func TestWriteSpmatFormat(t *testing.T) {
	m := NewCoo(2, 2)
	m.Add(0, 0, 1.0/3.0)
	m.Add(1, 0, -0.25)
	var buf bytes.Buffer
	if err := m.WriteSpmat(&buf); err != nil {
		t.Fatal(err)
	}
	want := "1 1 0.3333333333333333\n2 1 -0.25\n"
	if got := buf.String(); got != want {
		t.Errorf("spmat output:\n%q\nwant:\n%q", got, want)
	}
	// One-indexed triplet lines only, no header.
	line := regexp.MustCompile(`^[1-9]\d* [1-9]\d* \S+$`)
	for _, l := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if !line.Match(l) {
			t.Errorf("malformed spmat line %q", l)
		}
	}
}
