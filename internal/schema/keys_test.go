package schema

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyedRecord struct {
	Tenant  uuid.UUID
	Seq     int64
	Name    *string
	Created time.Time
	Label   string
}

func TestResolveKeys(t *testing.T) {
	id := uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	rec := reflect.ValueOf(keyedRecord{Tenant: id, Seq: 42})
	fields, err := Fields(rec.Type())
	require.NoError(t, err)

	pk, rk, rest, err := ResolveKeys(fields, rec, "Tenant", "Seq")
	require.NoError(t, err)
	assert.Equal(t, id.String(), pk)
	assert.Equal(t, "42", rk)
	assert.Equal(t, []string{"Name", "Created", "Label"}, rest.Names())
}

func TestResolveKeysErrors(t *testing.T) {
	rec := reflect.ValueOf(keyedRecord{})
	fields, err := Fields(rec.Type())
	require.NoError(t, err)

	_, _, _, err = ResolveKeys(fields, rec, "Missing", "Seq")
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	_, _, _, err = ResolveKeys(fields, rec, "Tenant", "Missing")
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	_, _, _, err = ResolveKeys(fields, rec, "Name", "Seq")
	assert.True(t, errors.Is(err, core.ErrFormat), "nil key value")
}

func TestRestoreKey(t *testing.T) {
	typ := reflect.TypeOf(keyedRecord{})
	fields, err := Fields(typ)
	require.NoError(t, err)

	tests := []struct {
		name    string
		binding KeyBinding
		raw     string
		check   func(t *testing.T, rec keyedRecord)
		wantErr error
		rest    int
	}{
		{
			name:    "uuid default parser",
			binding: KeyBinding{Field: "Tenant", Parse: DefaultKeyParser(reflect.TypeOf(uuid.UUID{}))},
			raw:     "f81d4fae-7dec-11d0-a765-00a0c91e6bf6",
			check: func(t *testing.T, rec keyedRecord) {
				assert.Equal(t, uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"), rec.Tenant)
			},
			rest: 4,
		},
		{
			name:    "pointer field",
			binding: KeyBinding{Field: "Name", Parse: DefaultKeyParser(reflect.TypeOf((*string)(nil)))},
			raw:     "alice",
			check: func(t *testing.T, rec keyedRecord) {
				require.NotNil(t, rec.Name)
				assert.Equal(t, "alice", *rec.Name)
			},
			rest: 4,
		},
		{
			name: "custom parser",
			binding: KeyBinding{Field: "Seq", Parse: func(s string) (interface{}, error) {
				return strconv.ParseInt(s[1:], 10, 64)
			}},
			raw: "#17",
			check: func(t *testing.T, rec keyedRecord) {
				assert.Equal(t, int64(17), rec.Seq)
			},
			rest: 4,
		},
		{
			name:    "unbound without parser",
			binding: KeyBinding{Field: "Seq"},
			raw:     "17",
			check: func(t *testing.T, rec keyedRecord) {
				assert.Zero(t, rec.Seq)
			},
			rest: 5,
		},
		{
			name:    "unbound without field",
			binding: KeyBinding{Parse: DefaultKeyParser(reflect.TypeOf(""))},
			raw:     "x",
			check:   func(t *testing.T, rec keyedRecord) { assert.Equal(t, keyedRecord{}, rec) },
			rest:    5,
		},
		{
			name:    "bad uuid",
			binding: KeyBinding{Field: "Tenant", Parse: DefaultKeyParser(reflect.TypeOf(uuid.UUID{}))},
			raw:     "not-a-guid",
			wantErr: core.ErrFormat,
		},
		{
			name:    "unknown field",
			binding: KeyBinding{Field: "Nope", Parse: DefaultKeyParser(reflect.TypeOf(""))},
			raw:     "x",
			wantErr: core.ErrConfiguration,
		},
		{
			name: "parser returns wrong type",
			binding: KeyBinding{Field: "Created", Parse: func(s string) (interface{}, error) {
				return s, nil
			}},
			raw:     "x",
			wantErr: core.ErrConfiguration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptr := reflect.New(typ)
			rest, err := RestoreKey(fields, ptr.Elem(), tt.binding, tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rest, tt.rest)
			tt.check(t, ptr.Elem().Interface().(keyedRecord))
		})
	}
}

func TestDefaultKeyParserTimeRoundTrip(t *testing.T) {
	created := time.Date(2021, 6, 7, 8, 9, 10, 11, time.UTC)
	text, err := NewTypeMapper().FormatText(reflect.ValueOf(created))
	require.NoError(t, err)

	v, err := DefaultKeyParser(reflect.TypeOf(time.Time{}))(text)
	require.NoError(t, err)
	assert.True(t, created.Equal(v.(time.Time)))
}

type narrowKeys struct {
	Small int32
	Count uint16
	Ratio float32
}

func TestRestoreKeyNumericConversion(t *testing.T) {
	typ := reflect.TypeOf(narrowKeys{})
	fields, err := Fields(typ)
	require.NoError(t, err)

	returning := func(v interface{}) KeyParser {
		return func(string) (interface{}, error) { return v, nil }
	}

	tests := []struct {
		name    string
		field   string
		value   interface{}
		want    narrowKeys
		wantErr bool
	}{
		{name: "whole float to int32", field: "Small", value: 7.0, want: narrowKeys{Small: 7}},
		{name: "int64 in range", field: "Small", value: int64(-12), want: narrowKeys{Small: -12}},
		{name: "fractional float", field: "Small", value: 5000000000.75, wantErr: true},
		{name: "float fraction in range", field: "Small", value: 1.5, wantErr: true},
		{name: "int64 overflow", field: "Small", value: int64(5000000000), wantErr: true},
		{name: "negative to unsigned", field: "Count", value: -1, wantErr: true},
		{name: "unsigned overflow", field: "Count", value: uint64(70000), wantErr: true},
		{name: "int to unsigned", field: "Count", value: 65535, want: narrowKeys{Count: 65535}},
		{name: "double to float32", field: "Ratio", value: 0.5, want: narrowKeys{Ratio: 0.5}},
		{name: "double overflows float32", field: "Ratio", value: 1e300, wantErr: true},
		{name: "inexact integer as float32", field: "Ratio", value: int64(16777217), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptr := reflect.New(typ)
			_, err := RestoreKey(fields, ptr.Elem(), KeyBinding{Field: tt.field, Parse: returning(tt.value)}, "raw")
			if tt.wantErr {
				assert.True(t, errors.Is(err, core.ErrConfiguration), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ptr.Elem().Interface().(narrowKeys))
		})
	}
}
