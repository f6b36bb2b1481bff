package laplace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Coo is a sparse matrix in coordinate form with additive assembly:
// repeated Add calls to the same entry accumulate. Entry order is
// normalized on output, not on insertion.
type Coo struct {
	rows, cols int
	data       map[[2]int]float64
}

// Triplet is one explicit matrix entry.
type Triplet struct {
	Row, Col int
	Value    float64
}

// NewCoo returns an empty rows x cols matrix.
func NewCoo(rows, cols int) *Coo {
	return &Coo{rows: rows, cols: cols, data: make(map[[2]int]float64)}
}

// Dims returns the matrix dimensions.
func (m *Coo) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of explicit entries, including any that
// accumulated to zero.
func (m *Coo) NNZ() int { return len(m.data) }

// At returns the entry at (i, j), zero if never assembled.
func (m *Coo) At(i, j int) float64 { return m.data[[2]int{i, j}] }

// Add accumulates v into entry (i, j).
func (m *Coo) Add(i, j int, v float64) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("laplace: entry (%d,%d) outside %dx%d matrix", i, j, m.rows, m.cols))
	}
	m.data[[2]int{i, j}] += v
}

// Triplets returns the explicit entries sorted row-major.
func (m *Coo) Triplets() []Triplet {
	ts := make([]Triplet, 0, len(m.data))
	for k, v := range m.data {
		ts = append(ts, Triplet{Row: k[0], Col: k[1], Value: v})
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Row != ts[j].Row {
			return ts[i].Row < ts[j].Row
		}
		return ts[i].Col < ts[j].Col
	})
	return ts
}

// WriteSpmat writes the matrix as whitespace-separated triplets, one
// entry per line, with 1-indexed row and column and the value at 16
// significant digits. No header or size line is written.
func (m *Coo) WriteSpmat(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range m.Triplets() {
		if _, err := fmt.Fprintf(bw, "%d %d %.16g\n", t.Row+1, t.Col+1, t.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveSpmat writes the matrix in spmat triplet form to a file.
func SaveSpmat(filename string, m *Coo) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := m.WriteSpmat(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
