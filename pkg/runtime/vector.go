package runtime

import (
	"fmt"
	"strings"
)

// Vector is a growable one-dimensional sequence of arbitrary values.
type Vector struct {
	items []any
}

// NewVector creates a vector holding items.
func NewVector(items ...any) *Vector {
	return &Vector{items: append([]any(nil), items...)}
}

// Len returns the number of elements.
func (v *Vector) Len() int { return len(v.items) }

// Get reads one element.
func (v *Vector) Get(i Index) (any, error) {
	n, err := i.Resolve(len(v.items), false)
	if err != nil {
		return nil, err
	}
	return v.items[n], nil
}

// Set writes one element. Writing at End{} appends.
func (v *Vector) Set(i Index, x any) error {
	n, err := i.Resolve(len(v.items), true)
	if err != nil {
		return err
	}
	if n == len(v.items) {
		v.items = append(v.items, x)
		return nil
	}
	v.items[n] = x
	return nil
}

// Slice returns a copy of the elements from lo through hi inclusive. An
// inverted range yields an empty vector.
func (v *Vector) Slice(lo, hi Index) (*Vector, error) {
	l, err := lo.Resolve(len(v.items), false)
	if err != nil {
		return nil, err
	}
	h, err := hi.Resolve(len(v.items), false)
	if err != nil {
		return nil, err
	}
	if h < l {
		return NewVector(), nil
	}
	return NewVector(v.items[l : h+1]...), nil
}

// Items returns a copy of the elements.
func (v *Vector) Items() []any {
	return append([]any(nil), v.items...)
}

func (v *Vector) String() string {
	parts := make([]string, len(v.items))
	for i, x := range v.items {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
