package codec

import (
	"reflect"
	"strings"
	"sync"

	"github.com/rzpsarthak13/tableentity/internal/core"
)

// jsonField is one member of the JSON object written for a struct type.
type jsonField struct {
	name      string
	index     []int
	omitEmpty bool
	readOnly  bool
	tagged    bool
}

type fieldCandidate struct {
	field jsonField
	depth int
}

// fieldCache maps reflect.Type to []jsonField.
var fieldCache sync.Map

func cachedFields(t reflect.Type) []jsonField {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]jsonField)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return f.([]jsonField)
}

// typeFields lists the JSON members of t in index order. Untagged embedded
// structs, exported or not, are inlined. On a name clash the shallowest
// field wins; among equally shallow fields a single tagged one wins,
// otherwise all of them are dropped. These are the encoding/json rules, so
// Decode reads back what Encode writes.
func typeFields(t reflect.Type) []jsonField {
	var cands []fieldCandidate
	collectFields(t, nil, 0, map[reflect.Type]bool{t: true}, &cands)

	byName := make(map[string][]fieldCandidate)
	for _, c := range cands {
		byName[c.field.name] = append(byName[c.field.name], c)
	}

	fields := make([]jsonField, 0, len(cands))
	for _, c := range cands {
		if dominant(byName[c.field.name], c) {
			fields = append(fields, c.field)
		}
	}
	return fields
}

// dominant reports whether c survives among the candidates sharing its name.
func dominant(group []fieldCandidate, c fieldCandidate) bool {
	minDepth := group[0].depth
	for _, g := range group[1:] {
		if g.depth < minDepth {
			minDepth = g.depth
		}
	}
	if c.depth != minDepth {
		return false
	}

	var shallow, tagged int
	for _, g := range group {
		if g.depth != minDepth {
			continue
		}
		shallow++
		if g.field.tagged {
			tagged++
		}
	}
	if shallow == 1 {
		return true
	}
	return tagged == 1 && c.field.tagged
}

// collectFields walks t depth first. path holds the struct types on the
// current embedding chain so recursive embedding terminates.
func collectFields(t reflect.Type, index []int, depth int, path map[reflect.Type]bool, cands *[]fieldCandidate) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			et := sf.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if !sf.IsExported() && et.Kind() != reflect.Struct {
				continue
			}
		} else if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		ft := sf.Type
		if ft.Name() == "" && ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if name == "" && sf.Anonymous && ft.Kind() == reflect.Struct {
			if path[ft] {
				continue
			}
			path[ft] = true
			collectFields(ft, idx, depth+1, path, cands)
			delete(path, ft)
			continue
		}

		field := jsonField{
			name:     sf.Name,
			index:    idx,
			readOnly: core.ParseTag(sf).ReadOnly,
			tagged:   name != "",
		}
		if name != "" {
			field.name = name
		}
		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" {
				field.omitEmpty = true
			}
		}
		*cands = append(*cands, fieldCandidate{field: field, depth: depth})
	}
}

// fieldValue follows index from v. It reports false when a nil embedded
// pointer lies on the way.
func fieldValue(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
