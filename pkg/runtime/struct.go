package runtime

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Struct is a record with named fields kept in insertion order.
type Struct struct {
	fields *linkedhashmap.Map
}

// NewStruct builds a struct from alternating field names and values.
func NewStruct(args ...any) (*Struct, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: struct needs name/value pairs, got %d arguments", ErrDimension, len(args))
	}
	s := &Struct{fields: linkedhashmap.New()}
	for i := 0; i < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("struct field name must be a string, got %T", args[i])
		}
		s.fields.Put(name, args[i+1])
	}
	return s, nil
}

// Get returns the value of a field.
func (s *Struct) Get(name string) (any, bool) {
	return s.fields.Get(name)
}

// Has reports whether the struct has a field.
func (s *Struct) Has(name string) bool {
	_, ok := s.fields.Get(name)
	return ok
}

// SetField creates or replaces a field. New fields go last.
func (s *Struct) SetField(name string, v any) {
	s.fields.Put(name, v)
}

// Len returns the number of fields.
func (s *Struct) Len() int { return s.fields.Size() }

// Fields returns the field names in insertion order.
func (s *Struct) Fields() []string {
	keys := s.fields.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// At reads the field at a position in insertion order.
func (s *Struct) At(i Index) (any, error) {
	n, err := i.Resolve(s.fields.Size(), false)
	if err != nil {
		return nil, err
	}
	return s.fields.Values()[n], nil
}

// SetAt replaces the field at a position in insertion order. Appending is
// rejected since a new field needs a name.
func (s *Struct) SetAt(i Index, v any) error {
	n, err := i.Resolve(s.fields.Size(), true)
	if err != nil {
		return err
	}
	if n == s.fields.Size() {
		return fmt.Errorf("%w: cannot append an unnamed struct field", ErrOutOfRange)
	}
	s.fields.Put(s.Fields()[n], v)
	return nil
}

func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString("struct(")
	it := s.fields.Iterator()
	first := true
	for it.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %v", it.Key(), it.Value())
	}
	b.WriteString(")")
	return b.String()
}
