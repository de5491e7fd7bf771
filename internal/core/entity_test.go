package core

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityKeepsInsertionOrder(t *testing.T) {
	e := NewEntity("pk", "rk")
	e.Set("b", 1)
	e.Set("a", 2)
	e.Set("c", 3)
	e.Set("a", 4)

	assert.Equal(t, []string{"b", "a", "c"}, e.Keys())
	v, ok := e.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	e.Remove("a")
	e.Remove("missing")
	assert.Equal(t, []string{"b", "c"}, e.Keys())
	assert.Equal(t, 2, e.Len())
	assert.False(t, e.Has("a"))
}

func TestEntityTimestamp(t *testing.T) {
	e := NewEntity("pk", "rk")
	assert.Nil(t, e.Timestamp())

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e.SetTimestamp(ts)
	got := e.Timestamp()
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))

	*got = got.Add(time.Hour)
	assert.True(t, ts.Equal(*e.Timestamp()), "Timestamp must return a copy")
}

func TestEntityPropertiesIsACopy(t *testing.T) {
	e := NewEntity("pk", "rk")
	e.Set("Name", "x")
	props := e.Properties()
	props["Name"] = "y"
	props["Other"] = 1

	name, err := e.GetString("Name")
	require.NoError(t, err)
	assert.Equal(t, "x", name)
	assert.False(t, e.Has("Other"))
}

func TestEntityNumericGetters(t *testing.T) {
	e := NewEntity("pk", "rk")
	e.Set("small", int16(-7))
	e.Set("byte", uint8(200))
	e.Set("wide", int64(42))
	e.Set("huge", int64(math.MaxInt32)+1)
	e.Set("float", float32(1.5))
	e.Set("text", "12")

	i32, err := e.GetInt32("small")
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i32)

	i32, err = e.GetInt32("byte")
	require.NoError(t, err)
	assert.Equal(t, int32(200), i32)

	i32, err = e.GetInt32("wide")
	require.NoError(t, err)
	assert.Equal(t, int32(42), i32)

	_, err = e.GetInt32("huge")
	assert.Error(t, err)

	i64, err := e.GetInt64("small")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i64)

	f, err := e.GetDouble("float")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	f, err = e.GetDouble("wide")
	require.NoError(t, err)
	assert.Equal(t, 42.0, f)

	i64, err = e.GetInt64("text")
	require.NoError(t, err)
	assert.Equal(t, int64(12), i64)
}

func TestEntityGetDateTimeAndGUID(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	ts := time.Date(2023, 11, 5, 8, 30, 0, 0, time.FixedZone("CET", 3600))

	e := NewEntity("pk", "rk")
	e.Set("when", ts)
	e.Set("whenText", ts.Format(time.RFC3339Nano))
	e.Set("id", id)
	e.Set("idText", id.String())
	e.Set("idBytes", id[:])

	got, err := e.GetDateTime("when")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = e.GetDateTime("whenText")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	for _, name := range []string{"id", "idText", "idBytes"} {
		g, err := e.GetGUID(name)
		require.NoError(t, err, name)
		assert.Equal(t, id, g, name)
	}
}

func TestEntityGetterErrors(t *testing.T) {
	e := NewEntity("pk", "rk")
	e.Set("null", nil)
	e.Set("text", "not a number")
	e.Set("flag", true)

	tests := []struct {
		name string
		get  func() error
	}{
		{"missing", func() error { _, err := e.GetString("missing"); return err }},
		{"null", func() error { _, err := e.GetInt64("null"); return err }},
		{"bad int", func() error { _, err := e.GetInt32("text"); return err }},
		{"bad double", func() error { _, err := e.GetDouble("flag"); return err }},
		{"bad guid", func() error { _, err := e.GetGUID("text"); return err }},
		{"bad time", func() error { _, err := e.GetDateTime("text"); return err }},
		{"bad bool", func() error { _, err := e.GetBool("text"); return err }},
		{"bad binary", func() error { _, err := e.GetBinary("text"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.get())
		})
	}
}
