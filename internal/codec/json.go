package codec

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// JSONCodec implements core.Codec with encoding/json semantics plus the
// field omission rules of Options.
type JSONCodec struct {
	opts Options
}

var _ core.Codec = (*JSONCodec)(nil)

// New creates a codec bound to opts.
func New(opts Options) *JSONCodec {
	return &JSONCodec{opts: opts}
}

// Options returns the options the codec was built with.
func (c *JSONCodec) Options() Options {
	return c.opts
}

// Encode renders v as JSON.
func (c *JSONCodec) Encode(v interface{}) (string, error) {
	var buf bytes.Buffer
	if err := c.encode(&buf, reflect.ValueOf(v)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Decode parses text into a new value of type t.
func (c *JSONCodec) Decode(text string, t reflect.Type) (reflect.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	if c.opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}

	ptr := reflect.New(t)
	if err := dec.Decode(ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot decode JSON into %s: %w", t, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return reflect.Value{}, fmt.Errorf("cannot decode JSON into %s: trailing data", t)
	}
	return ptr.Elem(), nil
}

func (c *JSONCodec) encode(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		buf.WriteString("null")
		return nil
	}

	if hasCustomMarshaler(v.Type()) {
		return marshalInto(buf, addressable(v))
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return c.encode(buf, v.Elem())
	case reflect.Struct:
		return c.encodeStruct(buf, v)
	case reflect.Map:
		return c.encodeMap(buf, v)
	case reflect.Slice:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return marshalInto(buf, v)
		}
		return c.encodeList(buf, v)
	case reflect.Array:
		return c.encodeList(buf, v)
	default:
		return marshalInto(buf, v)
	}
}

func (c *JSONCodec) encodeStruct(buf *bytes.Buffer, v reflect.Value) error {
	buf.WriteByte('{')
	first := true
	for _, field := range cachedFields(v.Type()) {
		fv, ok := fieldValue(v, field.index)
		if !ok {
			continue
		}
		if c.opts.IgnoreReadOnly && field.readOnly {
			continue
		}
		if field.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if c.opts.OmitDefault && fv.IsZero() {
			continue
		}
		if c.opts.OmitNull && isNil(fv) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := marshalInto(buf, reflect.ValueOf(field.name)); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := c.encode(buf, fv); err != nil {
			return fmt.Errorf("field %s: %w", field.name, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func (c *JSONCodec) encodeMap(buf *bytes.Buffer, v reflect.Value) error {
	if v.IsNil() {
		buf.WriteString("null")
		return nil
	}

	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKeyString(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: key, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalInto(buf, reflect.ValueOf(e.key)); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := c.encode(buf, e.val); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (c *JSONCodec) encodeList(buf *bytes.Buffer, v reflect.Value) error {
	buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.encode(buf, v.Index(i)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func mapKeyString(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.Type().Implements(textMarshalerType) {
		text, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}

func hasCustomMarshaler(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	for _, m := range []reflect.Type{jsonMarshalerType, textMarshalerType} {
		if t.Implements(m) || reflect.PointerTo(t).Implements(m) {
			return true
		}
	}
	return false
}

// addressable returns a pointer to a copy of v when only *T implements a
// marshaler, so pointer-receiver methods are honoured.
func addressable(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr || v.Type().Implements(jsonMarshalerType) || v.Type().Implements(textMarshalerType) {
		return v
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func marshalInto(buf *bytes.Buffer, v reflect.Value) error {
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
