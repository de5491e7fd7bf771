package core

import (
	"reflect"
	"strings"
)

// JSONSuffix is appended to a field name to form the property name under
// which a complex value is stored as structured text.
const JSONSuffix = "Json"

// TimestampField is the record field name that receives the entity's
// storage-assigned timestamp on reverse mapping.
const TimestampField = "Timestamp"

// PropertyConverter overrides default handling of one record field in both
// directions. Both functions are required.
type PropertyConverter struct {
	// ToEntityProperty produces the value stored under the field's plain
	// name. rec is the addressable record struct.
	ToEntityProperty func(rec reflect.Value) (interface{}, error)

	// SetRecordProperty applies a raw entity value to the record. rec is the
	// addressable record struct being built.
	SetRecordProperty func(rec reflect.Value, value interface{}) error
}

// Codec encodes and decodes the structured text used for complex fields.
// Implementations carry their own options.
type Codec interface {
	// Encode renders v as structured text.
	Encode(v interface{}) (string, error)

	// Decode parses text into a new value of type t.
	Decode(text string, t reflect.Type) (reflect.Value, error)
}

// TagName is the struct tag consulted for field eligibility.
//
//	Secret   string `table:"-"`         // never mapped
//	Computed string `table:",readonly"` // readable but not writable
const TagName = "table"

// TagOptions holds the parsed options of a `table` struct tag.
type TagOptions struct {
	Skip     bool
	ReadOnly bool
}

// ParseTag parses the `table` tag of a struct field.
func ParseTag(field reflect.StructField) TagOptions {
	var opts TagOptions
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return opts
	}
	for i, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part == "-":
			opts.Skip = true
		case part == "readonly":
			opts.ReadOnly = true
		}
	}
	return opts
}
