package runtime

import "fmt"

// Index addresses one element of a container.
type Index interface {
	// Resolve converts the index into a position for a container of the
	// given length. A write may resolve to length, meaning append.
	Resolve(length int, write bool) (int, error)
}

// Pos is an absolute 0-based index.
type Pos int

// Resolve implements Index.
func (p Pos) Resolve(length int, _ bool) (int, error) {
	if p < 0 || int(p) >= length {
		return 0, fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, int(p), length)
	}
	return int(p), nil
}

// End is an index relative to the end of a container.
type End struct {
	Offset int
}

// EndIndex is the bare end sentinel.
var EndIndex = End{}

// Add returns the sentinel moved n positions forward.
func (e End) Add(n int) End { return End{Offset: e.Offset + n} }

// Sub returns the sentinel moved n positions back.
func (e End) Sub(n int) End { return End{Offset: e.Offset - n} }

// Resolve implements Index. For writes, offset 0 appends and negative
// offsets count back from the length. Reads only accept negative offsets.
func (e End) Resolve(length int, write bool) (int, error) {
	switch {
	case e.Offset < 0:
		i := length + e.Offset
		if i < 0 {
			return 0, fmt.Errorf("%w: %s (length %d)", ErrOutOfRange, e, length)
		}
		return i, nil
	case e.Offset == 0 && write:
		return length, nil
	}
	return 0, fmt.Errorf("%w: %s (length %d)", ErrOutOfRange, e, length)
}

func (e End) String() string {
	switch {
	case e.Offset > 0:
		return fmt.Sprintf("end+%d", e.Offset)
	case e.Offset < 0:
		return fmt.Sprintf("end%d", e.Offset)
	}
	return "end"
}
