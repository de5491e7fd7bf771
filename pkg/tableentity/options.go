package tableentity

import (
	"reflect"

	"github.com/rzpsarthak13/tableentity/internal/codec"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/rzpsarthak13/tableentity/internal/schema"
)

// Options carries the optional parts of a conversion call.
type Options[T any] struct {
	// JSON overrides the process-wide JSON options. nil uses the default
	// that is current at call time.
	JSON *JSONOptions

	// Converters override default handling for individual fields.
	Converters Converters[T]

	// Ignore names fields left out of the entity. Forward mapping only.
	Ignore []string
}

var translator = schema.NewTranslator()

func recordType[T any]() (reflect.Type, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, core.NewConfigurationError("", "record type must be a struct, got %s", t)
	}
	return t, nil
}

func (o Options[T]) codec() core.Codec {
	return codec.Resolve(o.JSON)
}
