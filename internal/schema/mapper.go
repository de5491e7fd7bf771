package schema

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rzpsarthak13/tableentity/internal/core"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	guidType            = reflect.TypeOf(uuid.UUID{})
	bytesType           = reflect.TypeOf([]byte(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// defaultTimeLayout is the layout produced by time.Time.String, the default
// text rendering of a date used for keys and string timestamps.
const defaultTimeLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

// TypeMapper converts between entity storage kinds and declared Go field
// types.
type TypeMapper struct{}

// NewTypeMapper creates a new type mapper.
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// FromEntityProperty reads property name from e and coerces it to t. The
// boolean result is false when the stored value is null, in which case the
// field keeps its zero value.
func (tm *TypeMapper) FromEntityProperty(e *core.Entity, name string, t reflect.Type) (reflect.Value, bool, error) {
	raw, exists := e.Get(name)
	if !exists || raw == nil {
		return reflect.Value{}, false, nil
	}

	if t.Kind() == reflect.Ptr {
		inner, ok, err := tm.FromEntityProperty(e, name, t.Elem())
		if err != nil || !ok {
			return reflect.Value{}, ok, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, true, nil
	}

	switch {
	case t == timeType:
		v, err := e.GetDateTime(name)
		return reflect.ValueOf(v), err == nil, err
	case t == guidType:
		v, err := e.GetGUID(name)
		return reflect.ValueOf(v), err == nil, err
	case t == bytesType:
		v, err := e.GetBinary(name)
		return reflect.ValueOf(v), err == nil, err
	}

	switch t.Kind() {
	case reflect.Int32:
		v, err := e.GetInt32(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(v).Convert(t), true, nil
	case reflect.Int, reflect.Int64, reflect.Int8, reflect.Int16:
		v, err := e.GetInt64(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return tm.toInt(v, t)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := e.GetInt64(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return tm.toUint(v, t)
	case reflect.Float32, reflect.Float64:
		v, err := e.GetDouble(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowFloat(v) {
			return reflect.Value{}, false, fmt.Errorf("value %g overflows %s", v, t)
		}
		out.SetFloat(v)
		return out, true, nil
	case reflect.Bool:
		v, err := e.GetBool(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(v).Convert(t), true, nil
	case reflect.String:
		v, err := e.GetString(name)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return reflect.ValueOf(v).Convert(t), true, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, true, nil
	}
	return reflect.Value{}, false, fmt.Errorf("cannot convert %T to %s", raw, t)
}

// ParseText converts key text to a value of type t. Pointer types are
// allocated; encoding.TextUnmarshaler implementations are honoured.
func (tm *TypeMapper) ParseText(text string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Ptr {
		inner, err := tm.ParseText(text, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	switch {
	case t == guidType:
		id, err := uuid.Parse(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot parse %q as uuid: %w", text, err)
		}
		return reflect.ValueOf(id), nil
	case t == timeType:
		v, err := tm.parseTime(text)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, fmt.Errorf("cannot parse %q as %s: %w", text, t, err)
		}
		return p.Elem(), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert string to %s: %w", t, err)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(text), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert string to %s: %w", t, err)
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert string to %s: %w", t, err)
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert string to bool: %w", err)
		}
		out.SetBool(b)
	default:
		return reflect.Value{}, fmt.Errorf("cannot convert string to %s", t)
	}
	return out, nil
}

// FormatText renders a key value using its default text representation.
// Pointers are dereferenced; a nil value is an error.
func (tm *TypeMapper) FormatText(v reflect.Value) (string, error) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return "", fmt.Errorf("value is nil")
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "", fmt.Errorf("value is nil")
	}
	if t, ok := v.Interface().(time.Time); ok {
		// Drop the monotonic clock reading so the text parses back.
		return t.Round(0).String(), nil
	}
	return fmt.Sprint(v.Interface()), nil
}

func (tm *TypeMapper) toInt(v int64, t reflect.Type) (reflect.Value, bool, error) {
	out := reflect.New(t).Elem()
	if out.OverflowInt(v) {
		return reflect.Value{}, false, fmt.Errorf("value %d overflows %s", v, t)
	}
	out.SetInt(v)
	return out, true, nil
}

func (tm *TypeMapper) toUint(v int64, t reflect.Type) (reflect.Value, bool, error) {
	out := reflect.New(t).Elem()
	if v < 0 || out.OverflowUint(uint64(v)) {
		return reflect.Value{}, false, fmt.Errorf("value %d overflows %s", v, t)
	}
	out.SetUint(uint64(v))
	return out, true, nil
}

func (tm *TypeMapper) parseTime(text string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		defaultTimeLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time string: %s", text)
}
