package tableentity

import (
	"reflect"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// Converter overrides the default handling of a single field. Both
// functions are required.
type Converter[T any] struct {
	// ToEntityProperty returns the value to store under the field's name.
	ToEntityProperty func(rec *T) interface{}

	// SetRecordProperty applies the stored value to the record being built.
	SetRecordProperty func(rec *T, value interface{}) error
}

// Converters maps field names to their converters.
type Converters[T any] map[string]Converter[T]

func (cs Converters[T]) untyped() map[string]core.PropertyConverter {
	if len(cs) == 0 {
		return nil
	}
	out := make(map[string]core.PropertyConverter, len(cs))
	for name, c := range cs {
		var pc core.PropertyConverter
		if c.ToEntityProperty != nil {
			to := c.ToEntityProperty
			pc.ToEntityProperty = func(rec reflect.Value) (interface{}, error) {
				return to(rec.Addr().Interface().(*T)), nil
			}
		}
		if c.SetRecordProperty != nil {
			set := c.SetRecordProperty
			pc.SetRecordProperty = func(rec reflect.Value, value interface{}) error {
				return set(rec.Addr().Interface().(*T), value)
			}
		}
		out[name] = pc
	}
	return out
}
