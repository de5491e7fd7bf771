package core

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Kind is the storage kind of an entity property value.
type Kind int

const (
	// KindNull is an absent value.
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindDouble
	KindString
	KindBinary
	KindDateTime
	KindGUID

	// KindComplex is any value with no native storage representation. Such
	// values are stored as structured text under "<Name>Json".
	KindComplex
)

var kindNames = [...]string{
	KindNull:     "Null",
	KindBool:     "Bool",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindDouble:   "Double",
	KindString:   "String",
	KindBinary:   "Binary",
	KindDateTime: "DateTime",
	KindGUID:     "GUID",
	KindComplex:  "Complex",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsNative reports whether values of this kind are stored directly.
func (k Kind) IsNative() bool {
	return k != KindComplex
}

// Classify returns the storage kind of v. Pointers and interfaces are
// classified by the value they hold; nil pointers, slices and maps are
// KindNull.
func Classify(v interface{}) Kind {
	_, kind := Native(v)
	return kind
}

// Native dereferences v and returns the value to store together with its
// kind. For KindComplex the original value is returned unchanged.
func Native(v interface{}) (interface{}, Kind) {
	switch x := v.(type) {
	case nil:
		return nil, KindNull
	case bool:
		return x, KindBool
	case int8, int16, int32, uint8:
		return x, KindInt32
	case int, int64:
		return x, KindInt64
	case float32, float64:
		return x, KindDouble
	case string:
		return x, KindString
	case []byte:
		return x, KindBinary
	case time.Time:
		return x, KindDateTime
	case uuid.UUID:
		return x, KindGUID
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return nil, KindNull
		}
	}
	if rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, KindNull
		}
		inner, kind := Native(rv.Elem().Interface())
		if kind == KindComplex {
			return v, KindComplex
		}
		return inner, kind
	}
	return v, KindComplex
}
