package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audit struct {
	CreatedBy string
	Name      string
}

type Tracked struct {
	Revision int
}

type fieldsRecord struct {
	ID       int
	Name     string
	secret   string
	Skipped  string `table:"-"`
	Computed string `table:",readonly"`
	audit
	*Tracked
	Score float64
}

func TestFieldsEligibility(t *testing.T) {
	fields, err := Fields(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)

	want := []string{"ID", "Name", "CreatedBy", "Tracked", "Score"}
	if diff := cmp.Diff(want, fields.Names()); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}

	created, ok := fields.Find("CreatedBy")
	require.True(t, ok)
	assert.Equal(t, []int{5, 0}, created.Index)
}

func TestFieldsAcceptsPointerAndIsDeterministic(t *testing.T) {
	a, err := Fields(reflect.TypeOf(&fieldsRecord{}))
	require.NoError(t, err)
	b, err := Fields(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)
	assert.Equal(t, a.Names(), b.Names())

	a[0].Name = "changed"
	c, err := Fields(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)
	assert.Equal(t, "ID", c[0].Name, "callers must receive a copy")
}

func TestFieldsRejectsNonStruct(t *testing.T) {
	_, err := Fields(reflect.TypeOf(42))
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	_, err = Fields(nil)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestTypeRegistryCaches(t *testing.T) {
	r := NewTypeRegistry()
	d1, err := r.Describe(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)
	d2, err := r.Describe(reflect.TypeOf(&fieldsRecord{}))
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, 1, r.Len())
}

func TestFieldGetSet(t *testing.T) {
	fields, err := Fields(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)
	rec := reflect.New(reflect.TypeOf(fieldsRecord{})).Elem()

	id, _ := fields.Find("ID")
	require.NoError(t, id.Set(rec, reflect.ValueOf(int32(7))))
	assert.Equal(t, 7, id.Get(rec).Interface())

	name, _ := fields.Find("Name")
	assert.Error(t, name.Set(rec, reflect.ValueOf(3)))

	require.NoError(t, name.Set(rec, reflect.ValueOf("n")))
	require.NoError(t, name.Set(rec, reflect.Value{}))
	assert.Equal(t, "", name.Get(rec).Interface())
}

func TestFieldListWithout(t *testing.T) {
	fields, err := Fields(reflect.TypeOf(fieldsRecord{}))
	require.NoError(t, err)

	rest := fields.Without("Name").Without("missing")
	assert.Equal(t, []string{"ID", "CreatedBy", "Tracked", "Score"}, rest.Names())
	assert.Len(t, fields, 5)
}
