package kvstore

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// storageValue normalises an entity property to its wire representation:
// all integers become int64 and all floats float64. Values without a
// native kind cannot be written to a store.
func storageValue(name string, v interface{}) (interface{}, core.Kind, error) {
	native, kind := core.Native(v)
	switch kind {
	case core.KindComplex:
		return nil, kind, core.NewFormatError(name, "", fmt.Errorf("property holds %T, which has no storage representation", v))
	case core.KindInt32, core.KindInt64:
		rv := reflect.ValueOf(native)
		if rv.Kind() == reflect.Uint8 {
			return int64(rv.Uint()), kind, nil
		}
		return rv.Int(), kind, nil
	case core.KindDouble:
		return reflect.ValueOf(native).Float(), kind, nil
	}
	return native, kind, nil
}

// checkPropertyName rejects property names that collide with the reserved
// attributes of a format or with its annotation syntax.
func checkPropertyName(name string, reserved ...string) error {
	if name == "" {
		return core.NewFormatError(name, "", fmt.Errorf("property name cannot be empty"))
	}
	if strings.Contains(name, "@") {
		return core.NewFormatError(name, "", fmt.Errorf("property name cannot contain '@'"))
	}
	for _, r := range reserved {
		if name == r {
			return core.NewFormatError(name, "", fmt.Errorf("property name collides with reserved attribute %s", r))
		}
	}
	return nil
}
