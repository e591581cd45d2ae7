package runtime

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense two-dimensional numeric array backed by gonum.
type Matrix struct {
	d *mat.Dense
}

// NewMatrix builds a matrix by concatenation. When the first element is a
// *Matrix the remaining elements are stacked under it as rows. Otherwise
// every element must be a *Vector (one row each) or every element must be
// a scalar (a single row).
func NewMatrix(elems ...any) (*Matrix, error) {
	if len(elems) == 0 {
		return &Matrix{d: &mat.Dense{}}, nil
	}
	if head, ok := elems[0].(*Matrix); ok {
		rest, err := NewMatrix(elems[1:]...)
		if err != nil {
			return nil, err
		}
		return stack(head, rest)
	}

	if _, ok := elems[0].(*Vector); ok {
		var rows [][]float64
		for _, e := range elems {
			v, ok := e.(*Vector)
			if !ok {
				return nil, fmt.Errorf("%w: cannot mix rows and scalars", ErrDimension)
			}
			row, err := floats(v.items)
			if err != nil {
				return nil, err
			}
			if len(rows) > 0 && len(row) != len(rows[0]) {
				return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, len(rows)+1, len(row), len(rows[0]))
			}
			rows = append(rows, row)
		}
		return fromRows(rows), nil
	}

	row, err := floats(elems)
	if err != nil {
		return nil, err
	}
	return fromRows([][]float64{row}), nil
}

func fromRows(rows [][]float64) *Matrix {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return &Matrix{d: &mat.Dense{}}
	}
	data := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		data = append(data, r...)
	}
	return &Matrix{d: mat.NewDense(len(rows), len(rows[0]), data)}
}

func stack(top, bottom *Matrix) (*Matrix, error) {
	if top.d.IsEmpty() {
		return bottom.clone(), nil
	}
	if bottom.d.IsEmpty() {
		return top.clone(), nil
	}
	_, tc := top.d.Dims()
	_, bc := bottom.d.Dims()
	if tc != bc {
		return nil, fmt.Errorf("%w: cannot stack %d columns under %d", ErrDimension, bc, tc)
	}
	var out mat.Dense
	out.Stack(top.d, bottom.d)
	return &Matrix{d: &out}, nil
}

func (m *Matrix) clone() *Matrix {
	if m.d.IsEmpty() {
		return &Matrix{d: &mat.Dense{}}
	}
	return &Matrix{d: mat.DenseCopyOf(m.d)}
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	if m.d.IsEmpty() {
		return 0, 0
	}
	return m.d.Dims()
}

// Len returns the number of elements.
func (m *Matrix) Len() int {
	r, c := m.Dims()
	return r * c
}

// At reads one element. A single index addresses elements in column-major
// order; two indices address row and column.
func (m *Matrix) At(idx ...Index) (float64, error) {
	i, j, err := m.locate(idx, false)
	if err != nil {
		return 0, err
	}
	return m.d.At(i, j), nil
}

// Set writes one element. An End{} index grows the matrix: a linear append
// extends a row vector by a column and a column vector by a row.
func (m *Matrix) Set(v float64, idx ...Index) error {
	i, j, err := m.locate(idx, true)
	if err != nil {
		return err
	}
	r, c := m.Dims()
	if i >= r || j >= c {
		m.d = m.d.Grow(max(i+1-r, 0), max(j+1-c, 0)).(*mat.Dense)
	}
	m.d.Set(i, j, v)
	return nil
}

func (m *Matrix) locate(idx []Index, write bool) (row, col int, err error) {
	r, c := m.Dims()
	switch len(idx) {
	case 1:
		n, err := idx[0].Resolve(r*c, write)
		if err != nil {
			return 0, 0, err
		}
		if n < r*c {
			return n % r, n / r, nil
		}
		// Append through a linear index.
		switch {
		case r == 0:
			return 0, 0, nil
		case r == 1:
			return 0, c, nil
		case c == 1:
			return r, 0, nil
		}
		return 0, 0, fmt.Errorf("%w: cannot append to a %dx%d matrix with one index", ErrDimension, r, c)
	case 2:
		i, err := idx[0].Resolve(r, write)
		if err != nil {
			return 0, 0, err
		}
		j, err := idx[1].Resolve(c, write)
		if err != nil {
			return 0, 0, err
		}
		return i, j, nil
	}
	return 0, 0, fmt.Errorf("%w: %d indices into a matrix", ErrDimension, len(idx))
}

func (m *Matrix) String() string {
	if m.d.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("%v", mat.Formatted(m.d, mat.Squeeze()))
}

// floats converts numeric values to float64.
func floats(xs []any) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		switch v := x.(type) {
		case float64:
			out[i] = v
		case float32:
			out[i] = float64(v)
		case int:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		case bool:
			if v {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("%w: %T is not numeric", ErrDimension, x)
		}
	}
	return out, nil
}
