package schema

import (
	"reflect"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// KeyParser converts raw key text from an entity into a value for a record
// field.
type KeyParser func(text string) (interface{}, error)

// KeyBinding ties an entity key slot to a record field. The slot is only
// restored on reverse mapping when both Field and Parse are set.
type KeyBinding struct {
	Field string
	Parse KeyParser
}

// Bound reports whether the binding restores a record field.
func (b KeyBinding) Bound() bool {
	return b.Field != "" && b.Parse != nil
}

// DefaultKeyParser returns a parser that coerces key text to t using
// primitive conversion rules. Unique identifiers are parsed as such.
func DefaultKeyParser(t reflect.Type) KeyParser {
	mapper := NewTypeMapper()
	return func(text string) (interface{}, error) {
		v, err := mapper.ParseText(text, t)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}
}

// ResolveKeys extracts the partition and row key text from the designated
// fields of rec and returns fields without them.
func ResolveKeys(fields FieldList, rec reflect.Value, partitionField, rowField string) (string, string, FieldList, error) {
	mapper := NewTypeMapper()

	partition, ok := fields.Find(partitionField)
	if !ok {
		return "", "", nil, core.NewConfigurationError(partitionField, "partition key designator does not name an eligible field")
	}
	row, ok := fields.Find(rowField)
	if !ok {
		return "", "", nil, core.NewConfigurationError(rowField, "row key designator does not name an eligible field")
	}

	pk, err := mapper.FormatText(partition.Get(rec))
	if err != nil {
		return "", "", nil, core.NewFormatError(partitionField, "", err)
	}
	rk, err := mapper.FormatText(row.Get(rec))
	if err != nil {
		return "", "", nil, core.NewFormatError(rowField, "", err)
	}

	return pk, rk, fields.Without(partitionField).Without(rowField), nil
}

// RestoreKey parses raw key text with the binding and writes it into rec.
// Unbound slots are left untouched and fields is returned unchanged;
// otherwise the restored field is removed from the returned list.
func RestoreKey(fields FieldList, rec reflect.Value, b KeyBinding, raw string) (FieldList, error) {
	if !b.Bound() {
		return fields, nil
	}

	field, ok := fields.Find(b.Field)
	if !ok {
		return nil, core.NewConfigurationError(b.Field, "key designator does not name an eligible field")
	}

	value, err := b.Parse(raw)
	if err != nil {
		return nil, core.NewFormatError(b.Field, raw, err)
	}
	if err := field.Set(rec, reflect.ValueOf(value)); err != nil {
		return nil, core.NewConfigurationError(b.Field, "%v", err)
	}

	return fields.Without(b.Field), nil
}
