package tableentity

import (
	"reflect"

	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/rzpsarthak13/tableentity/internal/schema"
)

// ToEntity converts rec into an entity with literal partition and row keys.
// Fields named in ignored are left out.
func ToEntity[T any](rec T, partitionKey, rowKey string, ignored ...string) (*Entity, error) {
	return ToEntityWithOptions(rec, partitionKey, rowKey, Options[T]{Ignore: ignored})
}

// ToEntityWithOptions is ToEntity with explicit JSON options, converters and
// ignore list.
func ToEntityWithOptions[T any](rec T, partitionKey, rowKey string, opts Options[T]) (*Entity, error) {
	if _, err := recordType[T](); err != nil {
		return nil, err
	}
	return translator.ToEntity(schema.ToEntityInput{
		Record:       reflect.ValueOf(&rec),
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Ignore:       opts.Ignore,
		Converters:   opts.Converters.untyped(),
		Codec:        opts.codec(),
	})
}

// ToEntityByFields converts rec into an entity whose partition and row keys
// are the text of the named fields. Key fields are not written as
// properties.
func ToEntityByFields[T any](rec T, partitionField, rowField string, ignored ...string) (*Entity, error) {
	return ToEntityByFieldsWithOptions(rec, partitionField, rowField, Options[T]{Ignore: ignored})
}

// ToEntityByFieldsWithOptions is ToEntityByFields with explicit JSON
// options, converters and ignore list.
func ToEntityByFieldsWithOptions[T any](rec T, partitionField, rowField string, opts Options[T]) (*Entity, error) {
	if _, err := recordType[T](); err != nil {
		return nil, err
	}
	return translator.ToEntity(schema.ToEntityInput{
		Record:         reflect.ValueOf(&rec),
		PartitionField: partitionField,
		RowField:       rowField,
		KeysFromFields: true,
		Ignore:         opts.Ignore,
		Converters:     opts.Converters.untyped(),
		Codec:          opts.codec(),
	})
}

// FromEntity builds a new T from e. No record field receives the entity
// keys.
func FromEntity[T any](e *Entity) (*T, error) {
	return FromEntityWithOptions(e, Options[T]{})
}

// FromEntityWithOptions is FromEntity with explicit JSON options and
// converters.
func FromEntityWithOptions[T any](e *Entity, opts Options[T]) (*T, error) {
	return fromEntity(e, schema.KeyBinding{}, schema.KeyBinding{}, opts)
}

// FromEntityByFields builds a new T from e and writes the partition and row
// keys back into the named fields, parsed according to each field's
// declared type. An empty field name leaves that key unbound.
func FromEntityByFields[T any](e *Entity, partitionField, rowField string) (*T, error) {
	return FromEntityByFieldsWithOptions(e, partitionField, rowField, Options[T]{})
}

// FromEntityByFieldsWithOptions is FromEntityByFields with explicit JSON
// options and converters.
func FromEntityByFieldsWithOptions[T any](e *Entity, partitionField, rowField string, opts Options[T]) (*T, error) {
	t, err := recordType[T]()
	if err != nil {
		return nil, err
	}
	fields, err := schema.Fields(t)
	if err != nil {
		return nil, err
	}
	pk, err := defaultBinding(fields, partitionField)
	if err != nil {
		return nil, err
	}
	rk, err := defaultBinding(fields, rowField)
	if err != nil {
		return nil, err
	}
	return fromEntity(e, pk, rk, opts)
}

// FromEntityWithKeyParsers builds a new T from e and writes the keys back
// using the supplied parsers. A key slot is restored only when both its
// field name and its parser are given.
func FromEntityWithKeyParsers[T, P, R any](
	e *Entity,
	partitionField string, parsePartition func(string) (P, error),
	rowField string, parseRow func(string) (R, error),
	opts Options[T],
) (*T, error) {
	pk := schema.KeyBinding{Field: partitionField}
	if parsePartition != nil {
		pk.Parse = typedParser(parsePartition)
	}
	rk := schema.KeyBinding{Field: rowField}
	if parseRow != nil {
		rk.Parse = typedParser(parseRow)
	}
	return fromEntity(e, pk, rk, opts)
}

func fromEntity[T any](e *Entity, pk, rk schema.KeyBinding, opts Options[T]) (*T, error) {
	t, err := recordType[T]()
	if err != nil {
		return nil, err
	}
	out, err := translator.FromEntity(schema.FromEntityInput{
		Entity:       e,
		Type:         t,
		PartitionKey: pk,
		RowKey:       rk,
		Converters:   opts.Converters.untyped(),
		Codec:        opts.codec(),
	})
	if err != nil {
		return nil, err
	}
	return out.Interface().(*T), nil
}

// defaultBinding binds name to a parser for its declared type.
func defaultBinding(fields schema.FieldList, name string) (schema.KeyBinding, error) {
	if name == "" {
		return schema.KeyBinding{}, nil
	}
	field, ok := fields.Find(name)
	if !ok {
		return schema.KeyBinding{}, core.NewConfigurationError(name, "key designator does not name an eligible field")
	}
	return schema.KeyBinding{Field: name, Parse: schema.DefaultKeyParser(field.Type)}, nil
}

func typedParser[V any](parse func(string) (V, error)) schema.KeyParser {
	return func(text string) (interface{}, error) {
		v, err := parse(text)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
