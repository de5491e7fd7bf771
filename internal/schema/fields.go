package schema

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// Field describes one mappable field of a record type.
type Field struct {
	// Name is the Go field name, used verbatim as the entity property name.
	Name string

	// Type is the declared field type.
	Type reflect.Type

	// Index is the index sequence for reflect.Value.FieldByIndex. Fields
	// promoted from embedded structs have more than one element.
	Index []int
}

// Get returns the field of rec, which must be a struct value of the
// described type.
func (f Field) Get(rec reflect.Value) reflect.Value {
	return rec.FieldByIndex(f.Index)
}

// Set assigns v to the field of rec. rec must be addressable. Values of a
// different but compatible type (same kind family) are converted; numbers
// only when the value fits the field exactly.
func (f Field) Set(rec reflect.Value, v reflect.Value) error {
	dst := rec.FieldByIndex(f.Index)
	if !dst.CanSet() {
		return fmt.Errorf("field %s is not settable", f.Name)
	}
	if !v.IsValid() {
		dst.Set(reflect.Zero(f.Type))
		return nil
	}
	if v.Type().AssignableTo(f.Type) {
		dst.Set(v)
		return nil
	}
	if isNumericKind(v.Kind()) && isNumericKind(f.Type.Kind()) {
		out, err := convertNumber(v, f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		dst.Set(out)
		return nil
	}
	if compatibleKinds(v.Type(), f.Type) && v.Type().ConvertibleTo(f.Type) {
		dst.Set(v.Convert(f.Type))
		return nil
	}
	return fmt.Errorf("cannot assign %s to field %s of type %s", v.Type(), f.Name, f.Type)
}

// FieldList is an ordered set of fields.
type FieldList []Field

// Find returns the field with the given name.
func (fl FieldList) Find(name string) (Field, bool) {
	for _, f := range fl {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Without returns a copy of the list minus the named field.
func (fl FieldList) Without(name string) FieldList {
	out := make(FieldList, 0, len(fl))
	for _, f := range fl {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the field names in order.
func (fl FieldList) Names() []string {
	names := make([]string, len(fl))
	for i, f := range fl {
		names[i] = f.Name
	}
	return names
}

// TypeDescriptor is the cached field layout of one record type.
type TypeDescriptor struct {
	Type   reflect.Type
	Fields FieldList
}

// TypeRegistry caches TypeDescriptors per record type. It is safe for
// concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*TypeDescriptor
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types: make(map[reflect.Type]*TypeDescriptor),
	}
}

// Describe returns the descriptor for t, enumerating it on first use.
// Pointer types are dereferenced; anything other than a struct is a
// configuration error.
func (r *TypeRegistry) Describe(t reflect.Type) (*TypeDescriptor, error) {
	if t == nil {
		return nil, core.NewConfigurationError("", "record type cannot be nil")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, core.NewConfigurationError("", "record type must be a struct, got %s", t)
	}

	r.mu.RLock()
	desc, exists := r.types[t]
	r.mu.RUnlock()
	if exists {
		return desc, nil
	}

	desc = &TypeDescriptor{Type: t, Fields: enumerate(t)}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.types[t]; exists {
		return existing, nil
	}
	r.types[t] = desc
	return desc, nil
}

// Len returns the number of cached types.
func (r *TypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

var defaultRegistry = NewTypeRegistry()

// Fields returns the eligible fields of t in declaration order. The returned
// list is a copy and may be modified by the caller.
func Fields(t reflect.Type) (FieldList, error) {
	desc, err := defaultRegistry.Describe(t)
	if err != nil {
		return nil, err
	}
	out := make(FieldList, len(desc.Fields))
	copy(out, desc.Fields)
	return out, nil
}

type candidate struct {
	field Field
	depth int
}

// enumerate lists exported, writable fields. Fields of embedded structs are
// promoted; on a name clash the shallowest field wins and equally deep
// duplicates cancel out, as in Go selector resolution.
func enumerate(t reflect.Type) FieldList {
	var cands []candidate
	collect(t, nil, 0, &cands)

	minDepth := make(map[string]int)
	count := make(map[string]int)
	for _, c := range cands {
		d, seen := minDepth[c.field.Name]
		switch {
		case !seen || c.depth < d:
			minDepth[c.field.Name] = c.depth
			count[c.field.Name] = 1
		case c.depth == d:
			count[c.field.Name]++
		}
	}

	fields := make(FieldList, 0, len(cands))
	for _, c := range cands {
		if c.depth == minDepth[c.field.Name] && count[c.field.Name] == 1 {
			fields = append(fields, c.field)
		}
	}
	return fields
}

func collect(t reflect.Type, index []int, depth int, cands *[]candidate) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := core.ParseTag(sf)
		if tag.Skip || tag.ReadOnly {
			continue
		}

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collect(sf.Type, idx, depth+1, cands)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		*cands = append(*cands, candidate{
			field: Field{Name: sf.Name, Type: sf.Type, Index: idx},
			depth: depth,
		})
	}
}

// convertNumber converts v to t, failing on overflow, on a lost fractional
// part and on integers a float cannot hold exactly.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch {
	case isIntKind(v.Kind()):
		i := v.Int()
		switch {
		case isIntKind(t.Kind()):
			if out.OverflowInt(i) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", i, t)
			}
			out.SetInt(i)
		case isUintKind(t.Kind()):
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", i, t)
			}
			out.SetUint(uint64(i))
		default:
			out.SetFloat(float64(i))
			if f := out.Float(); f >= math.MaxInt64 || int64(f) != i {
				return reflect.Value{}, fmt.Errorf("value %d cannot be represented exactly as %s", i, t)
			}
		}
	case isUintKind(v.Kind()):
		u := v.Uint()
		switch {
		case isIntKind(t.Kind()):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", u, t)
			}
			out.SetInt(int64(u))
		case isUintKind(t.Kind()):
			if out.OverflowUint(u) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", u, t)
			}
			out.SetUint(u)
		default:
			out.SetFloat(float64(u))
			if f := out.Float(); f >= math.MaxUint64 || uint64(f) != u {
				return reflect.Value{}, fmt.Errorf("value %d cannot be represented exactly as %s", u, t)
			}
		}
	default:
		f := v.Float()
		switch {
		case isIntKind(t.Kind()):
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return reflect.Value{}, fmt.Errorf("value %g cannot be represented as %s", f, t)
			}
			out.SetInt(int64(f))
		case isUintKind(t.Kind()):
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return reflect.Value{}, fmt.Errorf("value %g cannot be represented as %s", f, t)
			}
			out.SetUint(uint64(f))
		default:
			if out.OverflowFloat(f) {
				return reflect.Value{}, fmt.Errorf("value %g overflows %s", f, t)
			}
			out.SetFloat(f)
		}
	}
	return out, nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func compatibleKinds(from, to reflect.Type) bool {
	if isNumericKind(from.Kind()) && isNumericKind(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
