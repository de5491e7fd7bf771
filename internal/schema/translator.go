package schema

import (
	"fmt"
	"reflect"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// ToEntityInput describes one forward conversion.
type ToEntityInput struct {
	// Record is the source struct or pointer to struct. It is not modified.
	Record reflect.Value

	// PartitionKey and RowKey are literal keys, used unless KeysFromFields
	// is set.
	PartitionKey string
	RowKey       string

	// PartitionField and RowField name the key fields when KeysFromFields
	// is set. Key fields are not written as properties.
	PartitionField string
	RowField       string
	KeysFromFields bool

	// Ignore names fields that are left out of the entity entirely.
	Ignore []string

	Converters map[string]core.PropertyConverter
	Codec      core.Codec
}

// FromEntityInput describes one reverse conversion.
type FromEntityInput struct {
	Entity *core.Entity

	// Type is the record struct type to build.
	Type reflect.Type

	PartitionKey KeyBinding
	RowKey       KeyBinding

	Converters map[string]core.PropertyConverter
	Codec      core.Codec
}

// Translator maps records to entities and back.
type Translator struct {
	registry *TypeRegistry
	mapper   *TypeMapper
}

// NewTranslator creates a translator backed by the shared type registry.
func NewTranslator() *Translator {
	return &Translator{
		registry: defaultRegistry,
		mapper:   NewTypeMapper(),
	}
}

// NewTranslatorWithRegistry creates a translator with its own type cache.
func NewTranslatorWithRegistry(registry *TypeRegistry) *Translator {
	return &Translator{
		registry: registry,
		mapper:   NewTypeMapper(),
	}
}

// ToEntity converts a record into an entity.
func (t *Translator) ToEntity(in ToEntityInput) (*core.Entity, error) {
	if in.Codec == nil {
		return nil, core.NewConfigurationError("", "codec cannot be nil")
	}

	rec, err := t.recordCopy(in.Record)
	if err != nil {
		return nil, err
	}
	fields, err := t.fields(rec.Type())
	if err != nil {
		return nil, err
	}
	if err := validateConverters(fields, in.Converters); err != nil {
		return nil, err
	}

	for _, name := range in.Ignore {
		if _, ok := fields.Find(name); !ok {
			return nil, core.NewConfigurationError(name, "ignored field designator does not name an eligible field")
		}
	}

	pk, rk := in.PartitionKey, in.RowKey
	if in.KeysFromFields {
		pk, rk, fields, err = ResolveKeys(fields, rec, in.PartitionField, in.RowField)
		if err != nil {
			return nil, err
		}
	}

	// Ignoring a key field or naming a field twice is a no-op.
	for _, name := range in.Ignore {
		fields = fields.Without(name)
	}

	entity := core.NewEntity(pk, rk)
	for _, field := range fields {
		if conv, ok := in.Converters[field.Name]; ok {
			value, err := conv.ToEntityProperty(rec)
			if err != nil {
				return nil, fmt.Errorf("converter for field %s: %w", field.Name, err)
			}
			entity.Set(field.Name, value)
			continue
		}

		value, kind := core.Native(field.Get(rec).Interface())
		if kind.IsNative() {
			entity.Set(field.Name, value)
			continue
		}

		text, err := in.Codec.Encode(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", field.Name, err)
		}
		entity.Set(field.Name+core.JSONSuffix, text)
	}

	return entity, nil
}

// FromEntity builds a new record of in.Type from an entity and returns a
// pointer to it.
func (t *Translator) FromEntity(in FromEntityInput) (reflect.Value, error) {
	if in.Entity == nil {
		return reflect.Value{}, core.NewConfigurationError("", "entity cannot be nil")
	}
	if in.Codec == nil {
		return reflect.Value{}, core.NewConfigurationError("", "codec cannot be nil")
	}

	desc, err := t.registry.Describe(in.Type)
	if err != nil {
		return reflect.Value{}, err
	}
	fields := make(FieldList, len(desc.Fields))
	copy(fields, desc.Fields)
	if err := validateConverters(fields, in.Converters); err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(desc.Type)
	rec := ptr.Elem()

	fields, err = RestoreKey(fields, rec, in.PartitionKey, in.Entity.PartitionKey)
	if err != nil {
		return reflect.Value{}, err
	}
	fields, err = RestoreKey(fields, rec, in.RowKey, in.Entity.RowKey)
	if err != nil {
		return reflect.Value{}, err
	}

	if ts, ok := fields.Find(core.TimestampField); ok {
		setTimestamp(rec, ts, in.Entity)
		fields = fields.Without(core.TimestampField)
	}

	for _, field := range fields {
		if conv, ok := in.Converters[field.Name]; ok && in.Entity.Has(field.Name) {
			raw, _ := in.Entity.Get(field.Name)
			if err := conv.SetRecordProperty(rec, raw); err != nil {
				return reflect.Value{}, fmt.Errorf("converter for field %s: %w", field.Name, err)
			}
			continue
		}

		if in.Entity.Has(field.Name) {
			value, ok, err := t.mapper.FromEntityProperty(in.Entity, field.Name, field.Type)
			if err != nil {
				return reflect.Value{}, core.NewFormatError(field.Name, "", err)
			}
			if !ok {
				continue
			}
			if err := field.Set(rec, value); err != nil {
				return reflect.Value{}, core.NewFormatError(field.Name, "", err)
			}
			continue
		}

		jsonName := field.Name + core.JSONSuffix
		if !in.Entity.Has(jsonName) {
			continue
		}
		raw, _ := in.Entity.Get(jsonName)
		if raw == nil {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			return reflect.Value{}, core.NewFormatError(field.Name, "", fmt.Errorf("property %s holds %T, not string", jsonName, raw))
		}
		value, err := in.Codec.Decode(text, field.Type)
		if err != nil {
			return reflect.Value{}, core.NewFormatError(field.Name, text, err)
		}
		if err := field.Set(rec, value); err != nil {
			return reflect.Value{}, core.NewFormatError(field.Name, text, err)
		}
	}

	return ptr, nil
}

func (t *Translator) fields(rt reflect.Type) (FieldList, error) {
	desc, err := t.registry.Describe(rt)
	if err != nil {
		return nil, err
	}
	out := make(FieldList, len(desc.Fields))
	copy(out, desc.Fields)
	return out, nil
}

// recordCopy returns an addressable copy of the record struct so converters
// can take its address without touching the caller's value.
func (t *Translator) recordCopy(v reflect.Value) (reflect.Value, error) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, core.NewConfigurationError("", "record cannot be nil")
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, core.NewConfigurationError("", "record cannot be nil")
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, core.NewConfigurationError("", "record must be a struct, got %s", v.Type())
	}
	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	return out, nil
}

func validateConverters(fields FieldList, converters map[string]core.PropertyConverter) error {
	for name, conv := range converters {
		if conv.ToEntityProperty == nil || conv.SetRecordProperty == nil {
			return core.NewConfigurationError(name, "converter must provide both directions")
		}
		if _, ok := fields.Find(name); !ok {
			return core.NewConfigurationError(name, "converter does not name an eligible field")
		}
	}
	return nil
}

// setTimestamp copies the entity timestamp into the record's Timestamp
// field according to its declared type: time.Time in UTC, *time.Time with
// the stored offset, string as time.Time.String. Other types are left
// untouched.
func setTimestamp(rec reflect.Value, field Field, e *core.Entity) {
	ts := e.Timestamp()
	if ts == nil {
		return
	}
	dst := rec.FieldByIndex(field.Index)
	switch {
	case field.Type == timeType:
		dst.Set(reflect.ValueOf(ts.UTC()))
	case field.Type == reflect.PointerTo(timeType):
		dst.Set(reflect.ValueOf(ts))
	case field.Type.Kind() == reflect.String:
		dst.SetString(ts.String())
	}
}
